package ui

import (
	"fmt"
	"strings"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

func StartMessage(snapshot model.StatsSnapshot) string {
	lines := []string{
		"🤖 Channel Reporter Bot",
		"",
		"📊 Status: Online ✅",
		fmt.Sprintf("⏱️ Uptime: %s", formatUptime(snapshot.Uptime())),
		fmt.Sprintf("📈 Reports: %d", snapshot.Total),
		"",
		"Commands:",
		"/report @channel spam - report one channel",
		"/bulk spam [count] - start bulk mode",
		"/stats - view statistics",
		"/history - recent operator actions",
		"/help - show help",
		"",
		"Quick report (reply to a forwarded channel message):",
		"/spam /fake /violence /copyright /porn /drugs",
	}
	return strings.Join(lines, "\n")
}

func HelpMessage(delay time.Duration, dailyLimit int) string {
	limitLine := "✅ No daily report cap"
	if dailyLimit > 0 {
		limitLine = fmt.Sprintf("✅ Max %d reports/day", dailyLimit)
	}
	lines := []string{
		"📚 Help",
		"",
		"Single report:",
		"/report @channel spam",
		"/report t.me/channel fake",
		"",
		"Bulk report:",
		"1. /bulk spam (optionally /bulk spam 20 to cap the list)",
		"2. Send the channel list, one per line",
		"3. Reports run automatically with live progress",
		"",
		"Quick report: reply to a forwarded channel message with",
		"/spam /fake /violence /copyright /porn /drugs",
		"",
		"Reasons: " + ValidReasons(),
		"",
		fmt.Sprintf("✅ %s delay between reports", formatDuration(delay)),
		limitLine,
	}
	return strings.Join(lines, "\n")
}

func ValidReasons() string {
	return strings.Join(enums.ReasonTokens, ", ")
}

func InvalidReasonMessage(token string) string {
	return fmt.Sprintf("❌ Invalid reason %q. Use: %s", token, ValidReasons())
}

func ReportUsageMessage() string {
	return "❌ Usage: /report @channel reason"
}

func BulkUsageMessage() string {
	return "❌ Usage: /bulk reason [count]"
}

func InvalidTargetMessage(raw string) string {
	return fmt.Sprintf("❌ %q is not a valid channel. Use @name or a t.me link.", raw)
}

func QuickReportNeedsReplyMessage() string {
	return "⚠️ Reply to a channel message to report"
}

func QuickReportNoPeerMessage() string {
	return "⚠️ Could not find the channel behind that message. Forward a post from the channel and reply to it."
}

func QuotaExceededMessage(requested int, remaining int64) string {
	return fmt.Sprintf("⛔ Daily report limit reached: requested %d, remaining today %d", requested, remaining)
}

func InternalErrorMessage() string {
	return "❌ Something went wrong, check the bot logs"
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second) / time.Second)
	minutes := total / 60
	seconds := total % 60
	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func formatUptime(d time.Duration) string {
	hours := int64(d / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func UnknownCommandMessage() string {
	return "Unknown command. Use /help"
}

func NoBulkModeMessage() string {
	return "ℹ️ Nothing is waiting for a channel list. Start with /bulk reason"
}

// StartMenu is the reply keyboard attached to /start.
func StartMenu() [][]string {
	return [][]string{
		{"/stats", "/help"},
		{"/bulk spam", "/history"},
	}
}
