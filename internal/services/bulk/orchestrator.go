package bulk

import (
	"context"
	"log/slog"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

const DefaultDelay = 8 * time.Second

const (
	jobStatusCompleted = "completed"
	jobStatusCanceled  = "canceled"
	jobStatusEmpty     = "empty"
)

type Submitter interface {
	Submit(context.Context, model.Target, enums.ReportReason) model.SubmissionResult
}

// Status is the progressively edited message a job reports into.
type Status interface {
	Update(context.Context, string) error
}

type Renderer interface {
	BeforeItem(model.BulkProgress) string
	AfterItem(model.BulkProgress) string
	Summary(model.BulkSummary) string
}

type Exporter interface {
	Export(context.Context, model.BulkSummary) (string, error)
}

type Observer interface {
	ObserveStatusUpdateFailure()
	ObserveBulkJob(status string)
}

type Orchestrator struct {
	submitter Submitter
	renderer  Renderer
	exporter  Exporter
	observer  Observer
	logger    *slog.Logger
	nowFn     func() time.Time
	sleep     func(context.Context, time.Duration) error
}

func NewOrchestrator(submitter Submitter, renderer Renderer, exporter Exporter, observer Observer, logger *slog.Logger) *Orchestrator {
	return newOrchestrator(submitter, renderer, exporter, observer, logger, time.Now, sleepContext)
}

func newOrchestrator(
	submitter Submitter,
	renderer Renderer,
	exporter Exporter,
	observer Observer,
	logger *slog.Logger,
	nowFn func() time.Time,
	sleep func(context.Context, time.Duration) error,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if sleep == nil {
		sleep = sleepContext
	}
	return &Orchestrator{
		submitter: submitter,
		renderer:  renderer,
		exporter:  exporter,
		observer:  observer,
		logger:    logger,
		nowFn:     nowFn,
		sleep:     sleep,
	}
}

// Run submits job.Targets strictly in order, one at a time, waiting job.Delay
// between consecutive submissions. Cancelling ctx stops the job before the
// next item; the summary is still rendered.
func (o *Orchestrator) Run(ctx context.Context, job model.BulkJob, status Status) model.BulkSummary {
	total := len(job.Targets)
	if total == 0 {
		o.observeJob(jobStatusEmpty)
		return model.BulkSummary{JobID: job.ID, Reason: job.Reason, Empty: true}
	}

	delay := job.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	log := o.logger.With("job_id", job.ID, "operator_id", job.OperatorID)
	log.Info("bulk job started", "total", total, "reason", string(job.Reason), "delay", delay.String())

	startedAt := o.nowFn()
	summary := model.BulkSummary{
		JobID:          job.ID,
		Reason:         job.Reason,
		Total:          total,
		SuccessTargets: make([]model.Target, 0, total),
		FailedTargets:  make([]model.Target, 0),
		Results:        make([]model.SubmissionResult, 0, total),
		StartedAt:      startedAt,
	}

	for idx := 1; idx <= total; idx++ {
		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}

		target := job.Targets[idx-1]
		progress := model.BulkProgress{
			JobID:     job.ID,
			Reason:    job.Reason,
			Index:     idx,
			Total:     total,
			Current:   target,
			Success:   summary.Success,
			Failure:   summary.Failure,
			StartedAt: startedAt,
			Elapsed:   o.nowFn().Sub(startedAt),
		}
		if idx > 1 {
			progress.SuccessRate = float64(summary.Success) / float64(idx-1) * 100
		}
		o.update(ctx, log, status, o.renderer.BeforeItem(progress))

		result := o.submitter.Submit(ctx, target, job.Reason)
		summary.Processed = idx
		summary.Results = append(summary.Results, result)
		if result.Succeeded {
			summary.Success++
			summary.SuccessTargets = append(summary.SuccessTargets, target)
		} else {
			summary.Failure++
			summary.FailedTargets = append(summary.FailedTargets, target)
		}

		elapsed := o.nowFn().Sub(startedAt)
		avg := elapsed / time.Duration(idx)
		progress.Reported = true
		progress.LastOK = result.Succeeded
		progress.Success = summary.Success
		progress.Failure = summary.Failure
		progress.SuccessRate = float64(summary.Success) / float64(idx) * 100
		progress.Elapsed = elapsed
		progress.AvgPerItem = avg
		progress.ETA = time.Duration(total-idx) * (avg + delay)

		log.Info("bulk item done",
			"index", idx,
			"total", total,
			"target", target.Label(),
			"succeeded", result.Succeeded,
			"eta", progress.ETA.Round(time.Second).String(),
		)
		o.update(ctx, log, status, o.renderer.AfterItem(progress))

		if idx < total {
			if err := o.sleep(ctx, delay); err != nil {
				summary.Canceled = true
				break
			}
		}
	}

	summary.FinishedAt = o.nowFn()
	summary.Duration = summary.FinishedAt.Sub(startedAt)

	// The job may have been cancelled; the final summary still goes out.
	finalCtx := context.WithoutCancel(ctx)
	if o.exporter != nil {
		url, err := o.exporter.Export(finalCtx, summary)
		if err != nil {
			log.Warn("export bulk results", "error", err)
		} else {
			summary.ExportURL = url
		}
	}
	o.update(finalCtx, log, status, o.renderer.Summary(summary))

	if summary.Canceled {
		o.observeJob(jobStatusCanceled)
	} else {
		o.observeJob(jobStatusCompleted)
	}
	log.Info("bulk job finished",
		"processed", summary.Processed,
		"success", summary.Success,
		"failure", summary.Failure,
		"canceled", summary.Canceled,
		"duration", summary.Duration.Round(time.Second).String(),
	)
	return summary
}

func (o *Orchestrator) update(ctx context.Context, log *slog.Logger, status Status, text string) {
	if status == nil || text == "" {
		return
	}
	if err := status.Update(ctx, text); err != nil {
		log.Warn("status update skipped", "error", err)
		if o.observer != nil {
			o.observer.ObserveStatusUpdateFailure()
		}
	}
}

func (o *Orchestrator) observeJob(status string) {
	if o.observer != nil {
		o.observer.ObserveBulkJob(status)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
