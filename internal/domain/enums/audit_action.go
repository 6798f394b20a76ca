package enums

type AuditAction string

const (
	AuditActionBotStart      AuditAction = "BOT_START"
	AuditActionReportSingle  AuditAction = "REPORT_SINGLE"
	AuditActionReportQuick   AuditAction = "REPORT_QUICK"
	AuditActionBulkArmed     AuditAction = "BULK_ARMED"
	AuditActionBulkStarted   AuditAction = "BULK_STARTED"
	AuditActionBulkCompleted AuditAction = "BULK_COMPLETED"
	AuditActionStatsViewed   AuditAction = "STATS_VIEWED"
	AuditActionHistoryViewed AuditAction = "HISTORY_VIEWED"
)

// ReportAuditActions are the entries that record submissions, as opposed to
// operators browsing the bot.
func ReportAuditActions() []AuditAction {
	return []AuditAction{
		AuditActionReportSingle,
		AuditActionReportQuick,
		AuditActionBulkStarted,
		AuditActionBulkCompleted,
	}
}
