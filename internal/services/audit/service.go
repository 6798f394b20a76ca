package audit

import (
	"context"
	"encoding/json"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

type Repo interface {
	Save(context.Context, model.Audit) error
	ListRecent(context.Context, int, []enums.AuditAction) ([]model.Audit, error)
}

type Service struct {
	repo  Repo
	nowFn func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, nowFn: time.Now}
}

func (s *Service) LogStart(ctx context.Context, actorTGID int64) error {
	return s.logWithPayload(ctx, enums.AuditActionBotStart, actorTGID, map[string]interface{}{})
}

func (s *Service) LogReport(ctx context.Context, actorTGID int64, quick bool, result model.SubmissionResult, reason enums.ReportReason) error {
	action := enums.AuditActionReportSingle
	if quick {
		action = enums.AuditActionReportQuick
	}
	data := map[string]interface{}{
		"target":    result.Target.Label(),
		"reason":    string(reason),
		"succeeded": result.Succeeded,
	}
	if result.Target.Peer != nil {
		data["peer_id"] = result.Target.Peer.ID
	}
	if result.Err != nil {
		data["error"] = result.Err.Error()
	}
	return s.logWithPayload(ctx, action, actorTGID, data)
}

func (s *Service) LogBulkArmed(ctx context.Context, actorTGID int64, reason enums.ReportReason, count int) error {
	return s.logWithPayload(ctx, enums.AuditActionBulkArmed, actorTGID, map[string]interface{}{
		"reason": string(reason),
		"count":  count,
	})
}

func (s *Service) LogBulkStarted(ctx context.Context, job model.BulkJob, rejected int) error {
	return s.logWithPayload(ctx, enums.AuditActionBulkStarted, job.OperatorID, map[string]interface{}{
		"job_id":   job.ID,
		"reason":   string(job.Reason),
		"total":    len(job.Targets),
		"rejected": rejected,
		"delay_s":  int64(job.Delay / time.Second),
	})
}

func (s *Service) LogBulkCompleted(ctx context.Context, actorTGID int64, summary model.BulkSummary) error {
	return s.logWithPayload(ctx, enums.AuditActionBulkCompleted, actorTGID, map[string]interface{}{
		"job_id":     summary.JobID,
		"total":      summary.Total,
		"processed":  summary.Processed,
		"success":    summary.Success,
		"failure":    summary.Failure,
		"canceled":   summary.Canceled,
		"duration_s": int64(summary.Duration / time.Second),
		"export_url": summary.ExportURL,
	})
}

func (s *Service) LogStatsViewed(ctx context.Context, actorTGID int64) error {
	return s.logWithPayload(ctx, enums.AuditActionStatsViewed, actorTGID, map[string]interface{}{})
}

func (s *Service) LogHistoryViewed(ctx context.Context, actorTGID int64) error {
	return s.logWithPayload(ctx, enums.AuditActionHistoryViewed, actorTGID, map[string]interface{}{})
}

func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

func (s *Service) ListRecent(ctx context.Context, limit int, actions ...enums.AuditAction) ([]model.Audit, error) {
	if !s.Enabled() {
		return []model.Audit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit, actions)
}

// ListReports skips start and browsing entries so /history shows only
// submissions and bulk runs.
func (s *Service) ListReports(ctx context.Context, limit int) ([]model.Audit, error) {
	return s.ListRecent(ctx, limit, enums.ReportAuditActions()...)
}

func (s *Service) logWithPayload(ctx context.Context, action enums.AuditAction, actorTGID int64, data map[string]interface{}) error {
	if !s.Enabled() {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		payload = json.RawMessage(`{}`)
	}

	entry := model.Audit{
		ActorTGID: actorTGID,
		Action:    action,
		Payload:   payload,
		CreatedAt: s.nowFn().UTC(),
	}
	return s.repo.Save(ctx, entry)
}
