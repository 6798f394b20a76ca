package ui

import (
	"fmt"
	"strings"

	"channel_reporter/internal/domain/model"
)

const recentActivityShown = 5

// QuotaView is the daily cap state shown next to the statistics. Limit 0
// means the cap is disabled.
type QuotaView struct {
	Limit     int64
	Remaining int64
}

func RenderStats(snapshot model.StatsSnapshot, quota QuotaView) string {
	lines := []string{
		"📊 Bot Statistics",
		"",
		fmt.Sprintf("⏱️ Uptime: %s", formatUptime(snapshot.Uptime())),
		fmt.Sprintf("📈 Total Reports: %d", snapshot.Total),
		fmt.Sprintf("✅ Successful: %d", snapshot.Success),
		fmt.Sprintf("❌ Failed: %d", snapshot.Failure),
		fmt.Sprintf("📊 Success Rate: %.1f%%", snapshot.SuccessRate()),
		fmt.Sprintf("📅 Today: %d", snapshot.Day),
	}
	if quota.Limit > 0 {
		lines = append(lines, fmt.Sprintf("🎫 Remaining today: %d/%d", quota.Remaining, quota.Limit))
	}
	lines = append(lines, "", fmt.Sprintf("🕐 Started: %s", snapshot.StartedAt.Format("2006-01-02 15:04")))

	if len(snapshot.Recent) > 0 {
		lines = append(lines, "", "Recent activity:")
		start := len(snapshot.Recent) - recentActivityShown
		if start < 0 {
			start = 0
		}
		for i := len(snapshot.Recent) - 1; i >= start; i-- {
			entry := snapshot.Recent[i]
			mark := "✅"
			if !entry.Succeeded {
				mark = "❌"
			}
			lines = append(lines, fmt.Sprintf("%s %s %s", mark, entry.At.Format("15:04:05"), entry.Target.Label()))
		}
	}
	return strings.Join(lines, "\n")
}
