package ui

import (
	"fmt"
	"strings"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

func ReportPending(target model.Target, reason enums.ReportReason, quick bool) string {
	title := "🔄 Reporting Channel"
	if quick {
		title = "🔄 Quick Report"
	}
	return strings.Join([]string{
		title,
		"",
		"🎯 Channel: " + target.Label(),
		"⚠️ Reason: " + reason.Label(),
		"⏳ Processing...",
	}, "\n")
}

func ReportResult(result model.SubmissionResult, reason enums.ReportReason, elapsed time.Duration, total int64) string {
	if result.Succeeded {
		return strings.Join([]string{
			"✅ Report Successful!",
			"",
			"🎯 Channel: " + result.Target.Label(),
			"⚠️ Reason: " + reason.Label(),
			fmt.Sprintf("⏱️ Time: %.2fs", elapsed.Seconds()),
			fmt.Sprintf("📊 Total Reports: %d", total),
		}, "\n")
	}
	return strings.Join([]string{
		"❌ Report Failed",
		"",
		"🎯 Channel: " + result.Target.Label(),
		"⚠️ Reason: " + reason.Label(),
		fmt.Sprintf("⏱️ Time: %.2fs", elapsed.Seconds()),
		"",
		"💡 Possible reasons:",
		"• Channel doesn't exist",
		"• Already reported today",
		"• Rate limit reached",
	}, "\n")
}
