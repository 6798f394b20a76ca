package ui

import (
	"fmt"
	"strings"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

const (
	summarySuccessShown = 15
	summaryFailedShown  = 10
	rejectedLinesShown  = 10
)

func BulkPrompt(reason enums.ReportReason, count int) string {
	lines := []string{
		"📋 Bulk Mode: " + reason.Label(),
		"",
		"Send channel list (one per line):",
		"@channel1",
		"@channel2",
		"t.me/channel3",
	}
	if count > 0 {
		lines = append(lines, "", fmt.Sprintf("Only the first %d valid channels will be reported.", count))
	}
	return strings.Join(lines, "\n")
}

func BulkReplacedNote() string {
	return "♻️ The previous bulk mode was replaced."
}

func BulkBusyMessage() string {
	return "⏳ A bulk job is already running. Wait for it to finish before starting another."
}

// BulkListDeferredMessage answers a target list sent while another job runs.
// The armed mode is kept so the list can be resent.
func BulkListDeferredMessage() string {
	return "⏳ A bulk job is already running. Your bulk mode is still armed: send the list again once the current job finishes."
}

func ReportBusyMessage() string {
	return "⏳ A bulk job is running and reports go out one at a time. Try again once it finishes."
}

// BatchConfirmation is shown once the target list is parsed, before any
// report goes out.
type BatchConfirmation struct {
	Reason   enums.ReportReason
	Accepted int
	Rejected []string
	Ignored  int
	Delay    time.Duration
}

func RenderBatchConfirmation(c BatchConfirmation) string {
	lines := []string{
		"📋 Bulk batch: " + c.Reason.Label(),
		fmt.Sprintf("✅ Accepted: %d", c.Accepted),
	}
	if c.Ignored > 0 {
		lines = append(lines, fmt.Sprintf("✂️ Over the requested count, ignored: %d", c.Ignored))
	}
	if len(c.Rejected) > 0 {
		lines = append(lines, fmt.Sprintf("⚠️ Unparseable, skipped: %d", len(c.Rejected)))
		lines = append(lines, cappedList(c.Rejected, rejectedLinesShown)...)
	}
	if c.Accepted == 0 {
		lines = append(lines, "", "Nothing to report. Send /bulk again with a valid list.")
		return strings.Join(lines, "\n")
	}
	estimate := time.Duration(c.Accepted-1) * c.Delay
	lines = append(lines, fmt.Sprintf("⏱️ Estimated time: %s", formatDuration(estimate)))
	return strings.Join(lines, "\n")
}

func BulkStarting(total int, delay time.Duration, startedAt time.Time) string {
	return strings.Join([]string{
		"🚀 Bulk Report Started",
		"",
		fmt.Sprintf("📊 Total Channels: %d", total),
		fmt.Sprintf("⏱️ Delay: %s per channel", formatDuration(delay)),
		"🕐 Started: " + startedAt.Format("15:04:05"),
		"",
		"⏳ Initializing...",
	}, "\n")
}

// BulkRenderer renders the live status message of a bulk job.
type BulkRenderer struct{}

func (BulkRenderer) BeforeItem(p model.BulkProgress) string {
	return strings.Join([]string{
		"🔄 Bulk Report In Progress",
		"",
		fmt.Sprintf("📍 Current: [%d/%d] - %.1f%%", p.Index, p.Total, p.Percent()),
		"🎯 Reporting " + p.Current.Label() + "...",
		"",
		fmt.Sprintf("✅ Success: %d", p.Success),
		fmt.Sprintf("❌ Failed: %d", p.Failure),
		"⏳ Elapsed: " + formatDuration(p.Elapsed),
	}, "\n")
}

func (BulkRenderer) AfterItem(p model.BulkProgress) string {
	mark, status := "✅", "SUCCESS"
	if !p.LastOK {
		mark, status = "❌", "FAILED"
	}
	footer := "⏳ Processing..."
	if p.Index == p.Total {
		footer = "✅ COMPLETE!"
	}
	return strings.Join([]string{
		"🔄 Bulk Report In Progress",
		"",
		fmt.Sprintf("📍 Current: [%d/%d] - %.1f%%", p.Index, p.Total, p.Percent()),
		fmt.Sprintf("%s %s - %s", mark, p.Current.Label(), status),
		"",
		"📊 Statistics:",
		fmt.Sprintf("✅ Success: %d", p.Success),
		fmt.Sprintf("❌ Failed: %d", p.Failure),
		fmt.Sprintf("📈 Success Rate: %.1f%%", p.SuccessRate),
		"",
		"⏱️ Timing:",
		"⏳ Elapsed: " + formatDuration(p.Elapsed),
		"🕐 ETA: " + formatDuration(p.ETA),
		"",
		footer,
	}, "\n")
}

func (BulkRenderer) Summary(s model.BulkSummary) string {
	if s.Empty {
		return "📭 Bulk batch is empty, nothing was reported."
	}

	title := "✅ Bulk Report Complete!"
	if s.Canceled {
		title = "⏹️ Bulk Report Stopped"
	}
	rate := s.SuccessRate()
	lines := []string{
		title,
		"",
		"📊 Summary:",
		fmt.Sprintf("• Total: %d channels", s.Total),
	}
	if s.Canceled {
		lines = append(lines, fmt.Sprintf("• Processed: %d", s.Processed))
	}
	lines = append(lines,
		fmt.Sprintf("• Success: %d ✅", s.Success),
		fmt.Sprintf("• Failed: %d ❌", s.Failure),
		fmt.Sprintf("• Success Rate: %.1f%%", rate),
		"• Performance: "+tierLabel(model.TierForRate(rate)),
		"",
		"⏱️ Time:",
		"• Duration: "+formatDuration(s.Duration),
		"• Started: "+s.StartedAt.Format("15:04:05"),
		"• Finished: "+s.FinishedAt.Format("15:04:05"),
	)

	if len(s.SuccessTargets) > 0 {
		lines = append(lines, "", "✅ Successful Reports:")
		lines = append(lines, cappedList(targetLabels(s.SuccessTargets), summarySuccessShown)...)
	}
	if len(s.FailedTargets) > 0 {
		lines = append(lines, "", "❌ Failed Reports:")
		lines = append(lines, cappedList(targetLabels(s.FailedTargets), summaryFailedShown)...)
	}
	if s.ExportURL != "" {
		lines = append(lines, "", "📎 Full results: "+s.ExportURL)
	}
	return strings.Join(lines, "\n")
}

func tierLabel(tier model.PerformanceTier) string {
	switch tier {
	case model.TierExcellent:
		return "🏆 Excellent"
	case model.TierGood:
		return "👍 Good"
	case model.TierAverage:
		return "⚖️ Average"
	default:
		return "🔁 Needs retry"
	}
}

func cappedList(items []string, limit int) []string {
	lines := make([]string, 0, limit+1)
	for i, item := range items {
		if i == limit {
			lines = append(lines, fmt.Sprintf("• ... and %d more", len(items)-limit))
			break
		}
		lines = append(lines, "• "+item)
	}
	return lines
}

func targetLabels(targets []model.Target) []string {
	labels := make([]string, 0, len(targets))
	for _, target := range targets {
		labels = append(labels, target.Label())
	}
	return labels
}
