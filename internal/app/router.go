package app

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
	"channel_reporter/internal/services/targets"
	"channel_reporter/internal/ui"
)

const historyEntriesShown = 15

// Quick report commands map to reasons through the regular reason tokens.
var quickCommands = map[string]struct{}{
	"spam":      {},
	"fake":      {},
	"violence":  {},
	"copyright": {},
	"porn":      {},
	"drugs":     {},
}

func (a *App) routeUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		a.routeMessage(ctx, update.Message)
	}
}

func (a *App) routeMessage(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}
	if !a.access.IsOperator(message.From.ID) {
		a.logger.Debug("ignoring message from non-operator", "tg_id", message.From.ID)
		return
	}

	if message.IsCommand() {
		// Command() drops the @botname suffix.
		command := strings.ToLower(message.Command())
		switch command {
		case "start":
			a.handleStart(ctx, message)
		case "help":
			a.handleHelp(message)
		case "stats":
			a.handleStats(ctx, message)
		case "history":
			a.handleHistory(ctx, message)
		case "report":
			a.handleReport(ctx, message)
		case "bulk":
			a.handleBulk(ctx, message)
		default:
			if _, ok := quickCommands[command]; ok {
				a.handleQuickReport(ctx, message, command)
				return
			}
			a.reply(message, ui.UnknownCommandMessage())
		}
		return
	}

	if strings.TrimSpace(message.Text) == "" {
		return
	}
	if a.jobs.Running() && a.pending.Has(message.From.ID) {
		a.reply(message, ui.BulkListDeferredMessage())
		return
	}
	if pending, ok := a.pending.Take(message.From.ID); ok {
		a.handleBulkList(ctx, message, pending)
		return
	}
	a.reply(message, ui.NoBulkModeMessage())
}

func (a *App) handleStart(ctx context.Context, message *tgbotapi.Message) {
	if err := a.messenger.SendMenu(message.Chat.ID, ui.StartMessage(a.tracker.Snapshot()), ui.StartMenu()); err != nil {
		a.logger.Error("send /start response", "error", err)
	}
	if err := a.audit.LogStart(ctx, message.From.ID); err != nil {
		a.logger.Warn("write audit log", "error", err)
	}
}

func (a *App) handleHelp(message *tgbotapi.Message) {
	a.reply(message, ui.HelpMessage(a.delay, int(a.quota.Limit())))
}

func (a *App) handleStats(ctx context.Context, message *tgbotapi.Message) {
	view := ui.QuotaView{Limit: a.quota.Limit()}
	if view.Limit > 0 {
		remaining, err := a.quota.Remaining(ctx)
		if err != nil {
			a.logger.Warn("read daily quota", "error", err)
			view = ui.QuotaView{}
		} else {
			view.Remaining = remaining
		}
	}
	a.reply(message, ui.RenderStats(a.tracker.Snapshot(), view))
	if err := a.audit.LogStatsViewed(ctx, message.From.ID); err != nil {
		a.logger.Warn("write audit log", "error", err)
	}
}

func (a *App) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	if !a.audit.Enabled() {
		a.reply(message, ui.HistoryDisabledMessage())
		return
	}
	entries, err := a.audit.ListReports(ctx, historyEntriesShown)
	if err != nil {
		a.logger.Warn("list audit history", "error", err)
		a.reply(message, ui.InternalErrorMessage())
		return
	}
	a.reply(message, ui.RenderHistory(entries))
	if err := a.audit.LogHistoryViewed(ctx, message.From.ID); err != nil {
		a.logger.Warn("write audit log", "error", err)
	}
}

func (a *App) handleReport(ctx context.Context, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		a.reply(message, ui.ReportUsageMessage())
		return
	}

	target, ok := targets.Normalize(args[0])
	if !ok {
		a.metrics.ObserveUnparseable(1)
		a.reply(message, ui.InvalidTargetMessage(args[0]))
		return
	}
	reason, err := enums.ParseReportReason(args[1])
	if err != nil {
		a.reply(message, ui.InvalidReasonMessage(args[1]))
		return
	}

	a.submitSingle(ctx, message, target, reason, false)
}

func (a *App) handleQuickReport(ctx context.Context, message *tgbotapi.Message, command string) {
	reason, err := enums.ParseReportReason(command)
	if err != nil {
		a.reply(message, ui.InvalidReasonMessage(command))
		return
	}
	if message.ReplyToMessage == nil {
		a.reply(message, ui.QuickReportNeedsReplyMessage())
		return
	}
	peer, ok := quickReportPeer(message.ReplyToMessage)
	if !ok {
		a.reply(message, ui.QuickReportNoPeerMessage())
		return
	}

	a.submitSingle(ctx, message, model.PeerTarget(peer), reason, true)
}

// quickReportPeer finds the channel behind a replied-to message: the chat a
// post was forwarded from, then the chat it was sent on behalf of, then the
// forwarded user.
func quickReportPeer(replied *tgbotapi.Message) (model.PeerRef, bool) {
	switch {
	case replied.ForwardFromChat != nil:
		return chatPeer(replied.ForwardFromChat), true
	case replied.SenderChat != nil:
		return chatPeer(replied.SenderChat), true
	case replied.ForwardFrom != nil:
		return model.PeerRef{
			ID:       replied.ForwardFrom.ID,
			Username: replied.ForwardFrom.UserName,
			Kind:     "user",
		}, true
	default:
		return model.PeerRef{}, false
	}
}

func chatPeer(chat *tgbotapi.Chat) model.PeerRef {
	return model.PeerRef{ID: chat.ID, Username: chat.UserName, Kind: chat.Type}
}

func (a *App) submitSingle(ctx context.Context, message *tgbotapi.Message, target model.Target, reason enums.ReportReason, quick bool) {
	// Single reports run on the polling goroutine and would otherwise wait
	// for the whole bulk job on the submitter's gateway lock.
	if a.jobs.Running() {
		a.reply(message, ui.ReportBusyMessage())
		return
	}
	if !a.reserveQuota(ctx, message, 1) {
		return
	}

	statusID, err := a.messenger.SendText(message.Chat.ID, message.MessageID, ui.ReportPending(target, reason, quick))
	if err != nil {
		a.logger.Warn("send report status", "error", err, "chat_id", message.Chat.ID)
	}

	started := a.nowFn()
	result := a.submitter.Submit(ctx, target, reason)
	text := ui.ReportResult(result, reason, a.nowFn().Sub(started), a.tracker.Snapshot().Total)
	a.editOrSend(message, statusID, text)

	if err := a.audit.LogReport(ctx, message.From.ID, quick, result, reason); err != nil {
		a.logger.Warn("write audit log", "error", err)
	}
}

func (a *App) handleBulk(ctx context.Context, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) == 0 || len(args) > 2 {
		a.reply(message, ui.BulkUsageMessage())
		return
	}
	reason, err := enums.ParseReportReason(args[0])
	if err != nil {
		a.reply(message, ui.InvalidReasonMessage(args[0]))
		return
	}
	count := 0
	if len(args) == 2 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count <= 0 {
			a.reply(message, ui.BulkUsageMessage())
			return
		}
	}
	if a.jobs.Running() {
		a.reply(message, ui.BulkBusyMessage())
		return
	}

	_, replaced := a.pending.Arm(message.From.ID, reason, count)
	text := ui.BulkPrompt(reason, count)
	if replaced {
		text = ui.BulkReplacedNote() + "\n\n" + text
	}
	a.reply(message, text)

	if err := a.audit.LogBulkArmed(ctx, message.From.ID, reason, count); err != nil {
		a.logger.Warn("write audit log", "error", err)
	}
}

func (a *App) handleBulkList(ctx context.Context, message *tgbotapi.Message, pending pendingBulk) {
	parsed := targets.ParseList(message.Text)
	a.metrics.ObserveUnparseable(len(parsed.Rejected))

	valid := parsed.Valid
	ignored := 0
	if pending.Count > 0 && len(valid) > pending.Count {
		ignored = len(valid) - pending.Count
		valid = valid[:pending.Count]
	}

	if len(valid) > 0 && !a.jobs.TryStart() {
		a.pending.Restore(message.From.ID, pending)
		a.reply(message, ui.BulkListDeferredMessage())
		return
	}

	a.reply(message, ui.RenderBatchConfirmation(ui.BatchConfirmation{
		Reason:   pending.Reason,
		Accepted: len(valid),
		Rejected: parsed.Rejected,
		Ignored:  ignored,
		Delay:    a.delay,
	}))
	if len(valid) == 0 {
		return
	}

	if !a.reserveQuota(ctx, message, len(valid)) {
		a.jobs.Finish()
		return
	}

	statusID, err := a.messenger.SendText(message.Chat.ID, 0, ui.BulkStarting(len(valid), a.delay, a.nowFn()))
	if err != nil {
		a.logger.Error("open bulk status message", "error", err, "chat_id", message.Chat.ID)
		a.releaseQuota(ctx, len(valid))
		a.jobs.Finish()
		return
	}

	job := model.BulkJob{
		ID:         a.newJobID(),
		OperatorID: message.From.ID,
		Targets:    valid,
		Reason:     pending.Reason,
		Delay:      a.delay,
	}
	if err := a.audit.LogBulkStarted(ctx, job, len(parsed.Rejected)); err != nil {
		a.logger.Warn("write audit log", "error", err)
	}

	status := &statusMessage{messenger: a.messenger, chatID: message.Chat.ID, messageID: statusID}
	a.jobsWG.Add(1)
	go a.runBulkJob(ctx, job, status)
}

func (a *App) runBulkJob(ctx context.Context, job model.BulkJob, status *statusMessage) {
	defer a.jobsWG.Done()
	defer a.jobs.Finish()

	summary := a.orchestrator.Run(ctx, job, status)

	finalCtx := context.WithoutCancel(ctx)
	a.releaseQuota(finalCtx, len(job.Targets)-summary.Processed)
	if err := a.audit.LogBulkCompleted(finalCtx, job.OperatorID, summary); err != nil {
		a.logger.Warn("write audit log", "error", err)
	}
}

// reserveQuota replies with the refusal itself. A quota store failure does
// not block reporting.
func (a *App) reserveQuota(ctx context.Context, message *tgbotapi.Message, n int) bool {
	reservation, err := a.quota.Reserve(ctx, n)
	if err != nil {
		a.logger.Warn("daily quota unavailable, allowing request", "error", err, "requested", n)
		return true
	}
	if !reservation.Granted {
		a.reply(message, ui.QuotaExceededMessage(n, reservation.Remaining))
		return false
	}
	return true
}

func (a *App) releaseQuota(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	if err := a.quota.Release(ctx, n); err != nil {
		a.logger.Warn("release daily quota", "error", err, "count", n)
	}
}

func (a *App) editOrSend(message *tgbotapi.Message, statusID int, text string) {
	if statusID != 0 {
		err := a.messenger.EditText(message.Chat.ID, statusID, text)
		if err == nil {
			return
		}
		a.logger.Warn("edit status message", "error", err, "chat_id", message.Chat.ID)
	}
	a.reply(message, text)
}

func (a *App) reply(message *tgbotapi.Message, text string) {
	if _, err := a.messenger.SendText(message.Chat.ID, message.MessageID, text); err != nil {
		a.logger.Error("send message", "error", err, "chat_id", message.Chat.ID)
	}
}

// statusMessage is the single message a bulk job keeps editing.
type statusMessage struct {
	messenger Messenger
	chatID    int64
	messageID int
}

func (s *statusMessage) Update(_ context.Context, text string) error {
	return s.messenger.EditText(s.chatID, s.messageID, text)
}
