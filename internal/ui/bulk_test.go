package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

func manyTargets(prefix string, n int) []model.Target {
	targets := make([]model.Target, 0, n)
	for i := 1; i <= n; i++ {
		targets = append(targets, model.HandleTarget(fmt.Sprintf("@%s%d", prefix, i)))
	}
	return targets
}

func TestSummaryCapsSuccessAndFailedLists(t *testing.T) {
	t.Parallel()

	summary := model.BulkSummary{
		Total:          32,
		Processed:      32,
		Success:        20,
		Failure:        12,
		SuccessTargets: manyTargets("ok", 20),
		FailedTargets:  manyTargets("bad", 12),
		StartedAt:      time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:     time.Date(2026, 4, 1, 10, 4, 8, 0, time.UTC),
		Duration:       4*time.Minute + 8*time.Second,
	}

	text := BulkRenderer{}.Summary(summary)

	required := []string{
		"✅ Bulk Report Complete!",
		"• Total: 32 channels",
		"• Success: 20 ✅",
		"• Failed: 12 ❌",
		"• Success Rate: 62.5%",
		"• Performance: ⚖️ Average",
		"• Duration: 4m 8s",
		"• @ok15",
		"• ... and 5 more",
		"• @bad10",
		"• ... and 2 more",
	}
	for _, token := range required {
		if !strings.Contains(text, token) {
			t.Fatalf("expected summary to contain %q; got:\n%s", token, text)
		}
	}
	for _, token := range []string{"@ok16", "@bad11"} {
		if strings.Contains(text, token) {
			t.Fatalf("summary must not list %q; got:\n%s", token, text)
		}
	}
}

func TestSummaryPerformanceTiers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		success int
		want    string
	}{
		{success: 10, want: "🏆 Excellent"},
		{success: 9, want: "🏆 Excellent"},
		{success: 8, want: "👍 Good"},
		{success: 5, want: "⚖️ Average"},
		{success: 4, want: "🔁 Needs retry"},
	}
	for _, tc := range testCases {
		summary := model.BulkSummary{Total: 10, Processed: 10, Success: tc.success, Failure: 10 - tc.success}
		text := BulkRenderer{}.Summary(summary)
		if !strings.Contains(text, "• Performance: "+tc.want) {
			t.Fatalf("success=%d: expected tier %q; got:\n%s", tc.success, tc.want, text)
		}
	}
}

func TestSummaryCanceledAndExport(t *testing.T) {
	t.Parallel()

	text := BulkRenderer{}.Summary(model.BulkSummary{
		Total:     5,
		Processed: 2,
		Success:   2,
		Canceled:  true,
		ExportURL: "https://files.local/job.csv",
	})
	for _, token := range []string{"⏹️ Bulk Report Stopped", "• Processed: 2", "• Success Rate: 100.0%", "📎 Full results: https://files.local/job.csv"} {
		if !strings.Contains(text, token) {
			t.Fatalf("expected %q; got:\n%s", token, text)
		}
	}
}

func TestProgressRendering(t *testing.T) {
	t.Parallel()

	progress := model.BulkProgress{
		Index:   2,
		Total:   4,
		Current: model.HandleTarget("@second"),
		Success: 1,
		Elapsed: 10 * time.Second,
	}
	before := BulkRenderer{}.BeforeItem(progress)
	if !strings.Contains(before, "[2/4] - 25.0%") || !strings.Contains(before, "Reporting @second") {
		t.Fatalf("unexpected before text:\n%s", before)
	}

	progress.Reported = true
	progress.LastOK = false
	progress.Failure = 1
	progress.SuccessRate = 50
	progress.ETA = 20 * time.Second
	after := BulkRenderer{}.AfterItem(progress)
	for _, token := range []string{"[2/4] - 50.0%", "❌ @second - FAILED", "📈 Success Rate: 50.0%", "🕐 ETA: 20s", "⏳ Processing..."} {
		if !strings.Contains(after, token) {
			t.Fatalf("expected %q; got:\n%s", token, after)
		}
	}

	progress.Index = 4
	progress.LastOK = true
	if done := (BulkRenderer{}).AfterItem(progress); !strings.Contains(done, "✅ COMPLETE!") {
		t.Fatalf("expected completion footer; got:\n%s", done)
	}
}

func TestBatchConfirmation(t *testing.T) {
	t.Parallel()

	text := RenderBatchConfirmation(BatchConfirmation{
		Reason:   enums.ReportReasonFakeNews,
		Accepted: 2,
		Rejected: []string{"bad!!"},
		Delay:    8 * time.Second,
	})
	for _, token := range []string{"📰 Fake News", "✅ Accepted: 2", "⚠️ Unparseable, skipped: 1", "• bad!!", "Estimated time: 8s"} {
		if !strings.Contains(text, token) {
			t.Fatalf("expected %q; got:\n%s", token, text)
		}
	}

	empty := RenderBatchConfirmation(BatchConfirmation{Reason: enums.ReportReasonSpam, Rejected: []string{"x!"}})
	if !strings.Contains(empty, "Nothing to report") {
		t.Fatalf("expected nothing-to-report hint; got:\n%s", empty)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	testCases := map[time.Duration]string{
		0:                            "0s",
		-time.Second:                 "0s",
		8 * time.Second:              "8s",
		1500 * time.Millisecond:      "2s",
		75 * time.Second:             "1m 15s",
		61*time.Minute + time.Second: "61m 1s",
	}
	for d, want := range testCases {
		if got := formatDuration(d); got != want {
			t.Fatalf("formatDuration(%s): expected %q, got %q", d, want, got)
		}
	}
}
