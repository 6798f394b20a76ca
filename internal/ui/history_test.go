package ui

import (
	"strings"
	"testing"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

func TestRenderHistory(t *testing.T) {
	t.Parallel()

	entries := []model.Audit{
		{
			ActorTGID: 7,
			Action:    enums.AuditActionReportSingle,
			Payload:   []byte(`{"target":"@a","reason":"spam","succeeded":true,"peer_id":1}`),
			CreatedAt: time.Date(2026, 4, 1, 10, 5, 0, 0, time.UTC),
		},
		{
			ActorTGID: 7,
			Action:    enums.AuditActionBotStart,
			Payload:   []byte(`{}`),
			CreatedAt: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	text := RenderHistory(entries)
	if !strings.Contains(text, "04-01 10:05 7 REPORT_SINGLE reason=spam succeeded=true target=@a") {
		t.Fatalf("unexpected history line:\n%s", text)
	}
	if !strings.Contains(text, "04-01 10:00 7 BOT_START\n") && !strings.HasSuffix(text, "04-01 10:00 7 BOT_START") {
		t.Fatalf("expected bare start line:\n%s", text)
	}
	if strings.Contains(text, "peer_id") {
		t.Fatalf("peer_id must not be shown:\n%s", text)
	}

	if RenderHistory(nil) != "📜 History is empty" {
		t.Fatalf("unexpected empty history text")
	}
}
