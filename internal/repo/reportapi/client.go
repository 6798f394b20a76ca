package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("peer not found")
	ErrRateLimited = errors.New("reporting gateway rate limit")
)

// Client talks to the reporting gateway that owns the messaging-platform
// session. It resolves handles and submits peer reports.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type RequestError struct {
	Op         string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewClient(baseURL string, token string, timeout time.Duration) (*Client, error) {
	trimmedBaseURL := strings.TrimSpace(baseURL)
	trimmedToken := strings.TrimSpace(token)
	if trimmedBaseURL == "" || trimmedToken == "" {
		return nil, &RequestError{
			Op:  "create report api client",
			Err: errors.New("report api url or token is empty"),
		}
	}

	parsed, err := url.Parse(trimmedBaseURL)
	if err != nil {
		return nil, &RequestError{Op: "parse report api url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{
			Op:  "validate report api url",
			Err: fmt.Errorf("invalid report api url: %s", trimmedBaseURL),
		}
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(trimmedBaseURL, "/"),
		token:   trimmedToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, requestBody interface{}, responseBody interface{}) error {
	var payload []byte
	if requestBody != nil {
		rawPayload, err := json.Marshal(requestBody)
		if err != nil {
			return &RequestError{Op: "marshal request body", Err: err}
		}
		payload = rawPayload
	}

	statusCode, responseBytes, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if responseBody == nil || len(responseBytes) == 0 {
		return nil
	}

	if err := json.Unmarshal(responseBytes, responseBody); err != nil {
		return &RequestError{Op: "decode http response", StatusCode: statusCode, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte) (int, []byte, error) {
	if c == nil || c.httpClient == nil {
		return 0, nil, &RequestError{
			Op:  "do request",
			Err: errors.New("report api client is not initialized"),
		}
	}
	if strings.TrimSpace(method) == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+ensureLeadingSlash(path), bodyReader)
	if err != nil {
		return 0, nil, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{Op: "execute http request", Err: err}
	}
	defer resp.Body.Close()

	responseBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return resp.StatusCode, nil, &RequestError{Op: "read http response", StatusCode: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, responseBytes, statusError(resp, responseBytes)
	}
	return resp.StatusCode, responseBytes, nil
}

func statusError(resp *http.Response, body []byte) error {
	reqErr := &RequestError{Op: "unexpected http status", StatusCode: resp.StatusCode}

	switch resp.StatusCode {
	case http.StatusNotFound:
		reqErr.Err = ErrNotFound
	case http.StatusTooManyRequests:
		reqErr.Err = ErrRateLimited
		reqErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	default:
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		reqErr.Err = errors.New(message)
	}
	return reqErr
}

func parseRetryAfter(raw string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func ensureLeadingSlash(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	return "/" + trimmed
}
