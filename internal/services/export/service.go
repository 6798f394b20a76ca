package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"channel_reporter/internal/domain/model"
)

const (
	contentTypeCSV = "text/csv"
	keyPrefix      = "bulk"
	linkTTL        = 24 * time.Hour
)

var header = []string{"job_id", "position", "target", "peer_id", "reason", "outcome", "error"}

type Storage interface {
	Put(context.Context, string, io.Reader, int64, string) error
	PresignGet(context.Context, string, time.Duration) (string, error)
}

// Service writes the per-target outcome of a bulk job as CSV and returns a
// time-limited download link. A nil storage disables exports.
type Service struct {
	storage Storage
	nowFn   func() time.Time
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage, nowFn: time.Now}
}

func (s *Service) Export(ctx context.Context, summary model.BulkSummary) (string, error) {
	if s == nil || s.storage == nil || summary.Empty {
		return "", nil
	}

	body, err := renderCSV(summary)
	if err != nil {
		return "", fmt.Errorf("render export csv: %w", err)
	}

	key := objectKey(summary, s.nowFn())
	if err := s.storage.Put(ctx, key, bytes.NewReader(body), int64(len(body)), contentTypeCSV); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	link, err := s.storage.PresignGet(ctx, key, linkTTL)
	if err != nil {
		return "", fmt.Errorf("sign export link: %w", err)
	}
	return link, nil
}

func objectKey(summary model.BulkSummary, now time.Time) string {
	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = now
	}
	return fmt.Sprintf("%s/%s/%s.csv", keyPrefix, finished.UTC().Format("2006-01-02"), summary.JobID)
}

// Rows follow submission order; position is the 1-based index in the batch.
func renderCSV(summary model.BulkSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for i, result := range summary.Results {
		peerID := ""
		if result.Target.Peer != nil {
			peerID = strconv.FormatInt(result.Target.Peer.ID, 10)
		}
		outcome, errText := "success", ""
		if !result.Succeeded {
			outcome = "failure"
			if result.Err != nil {
				errText = result.Err.Error()
			}
		}
		row := []string{
			summary.JobID,
			strconv.Itoa(i + 1),
			result.Target.Label(),
			peerID,
			string(summary.Reason),
			outcome,
			errText,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
