package reportapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

const (
	resolvePath = "/v1/peers/resolve"
	reportPath  = "/v1/peers/report"
)

type peerDTO struct {
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash,omitempty"`
	Username   string `json:"username,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

type resolveRequest struct {
	Handle string `json:"handle"`
}

type resolveResponse struct {
	Peer *peerDTO `json:"peer"`
}

type reportRequest struct {
	Peer    peerDTO `json:"peer"`
	Reason  string  `json:"reason"`
	Message string  `json:"message"`
}

type reportResponse struct {
	OK bool `json:"ok"`
}

func (c *Client) Resolve(ctx context.Context, handle string) (model.PeerRef, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return model.PeerRef{}, fmt.Errorf("resolve peer: %w", ErrNotFound)
	}

	var response resolveResponse
	if err := c.doJSON(ctx, http.MethodPost, resolvePath, resolveRequest{Handle: handle}, &response); err != nil {
		return model.PeerRef{}, fmt.Errorf("resolve peer %s: %w", handle, err)
	}
	if response.Peer == nil || response.Peer.ID == 0 {
		return model.PeerRef{}, fmt.Errorf("resolve peer %s: %w", handle, ErrNotFound)
	}

	return model.PeerRef{
		ID:         response.Peer.ID,
		AccessHash: response.Peer.AccessHash,
		Username:   response.Peer.Username,
		Kind:       response.Peer.Kind,
	}, nil
}

// Report submits one report and returns the gateway acknowledgement.
func (c *Client) Report(ctx context.Context, peer model.PeerRef, reason enums.ReportReason) (bool, error) {
	if !reason.Valid() {
		return false, fmt.Errorf("report peer: %w", enums.ErrUnknownReason)
	}
	if peer.ID == 0 && strings.TrimSpace(peer.Username) == "" {
		return false, errors.New("report peer: empty peer reference")
	}

	request := reportRequest{
		Peer: peerDTO{
			ID:         peer.ID,
			AccessHash: peer.AccessHash,
			Username:   peer.Username,
			Kind:       peer.Kind,
		},
		Reason: string(reason),
	}

	var response reportResponse
	if err := c.doJSON(ctx, http.MethodPost, reportPath, request, &response); err != nil {
		return false, fmt.Errorf("report peer %d: %w", peer.ID, err)
	}
	return response.OK, nil
}
