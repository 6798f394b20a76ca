package submitter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

var ErrNotAcknowledged = errors.New("report was not acknowledged")

type Resolver interface {
	Resolve(context.Context, string) (model.PeerRef, error)
}

type Reporter interface {
	Report(context.Context, model.PeerRef, enums.ReportReason) (bool, error)
}

type Recorder interface {
	Record(model.SubmissionResult)
}

type Observer interface {
	ObserveSubmission(succeeded bool, seconds float64)
}

// Service is safe for concurrent use; calls reach the gateway one at a time.
type Service struct {
	// gatewayMu serialises gateway access across callers.
	gatewayMu sync.Mutex

	resolver Resolver
	reporter Reporter
	recorder Recorder
	observer Observer
	logger   *slog.Logger
	nowFn    func() time.Time
}

func NewService(resolver Resolver, reporter Reporter, recorder Recorder, observer Observer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: resolver,
		reporter: reporter,
		recorder: recorder,
		observer: observer,
		logger:   logger,
		nowFn:    time.Now,
	}
}

// Submit files one report for target. It never returns an error: every
// failure is folded into the result and recorded in the statistics.
func (s *Service) Submit(ctx context.Context, target model.Target, reason enums.ReportReason) model.SubmissionResult {
	s.gatewayMu.Lock()
	started := s.nowFn()
	err := s.submit(ctx, target, reason)
	s.gatewayMu.Unlock()

	result := model.SubmissionResult{
		Target:    target,
		Succeeded: err == nil,
		At:        s.nowFn(),
		Err:       err,
	}

	if s.recorder != nil {
		s.recorder.Record(result)
	}
	if s.observer != nil {
		s.observer.ObserveSubmission(result.Succeeded, result.At.Sub(started).Seconds())
	}

	if result.Succeeded {
		s.logger.Info("report submitted", "target", target.Label(), "reason", string(reason))
	} else {
		s.logger.Warn("report failed", "target", target.Label(), "reason", string(reason), "error", err)
	}
	return result
}

func (s *Service) submit(ctx context.Context, target model.Target, reason enums.ReportReason) error {
	if s.reporter == nil {
		return errors.New("reporter is not configured")
	}

	var peer model.PeerRef
	if target.IsResolved() {
		peer = *target.Peer
	} else {
		if s.resolver == nil {
			return errors.New("resolver is not configured")
		}
		resolved, err := s.resolver.Resolve(ctx, target.Handle)
		if err != nil {
			return err
		}
		peer = resolved
	}

	ok, err := s.reporter.Report(ctx, peer, reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAcknowledged
	}
	return nil
}
