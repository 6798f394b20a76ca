package model

import (
	"time"

	"channel_reporter/internal/domain/enums"
)

type BulkJob struct {
	ID         string
	OperatorID int64
	Targets    []Target
	Reason     enums.ReportReason
	Delay      time.Duration
}

// BulkProgress is the running state rendered into the status message.
type BulkProgress struct {
	JobID       string
	Reason      enums.ReportReason
	Index       int
	Total       int
	Current     Target
	Reported    bool
	LastOK      bool
	Success     int
	Failure     int
	SuccessRate float64
	Elapsed     time.Duration
	AvgPerItem  time.Duration
	ETA         time.Duration
	StartedAt   time.Time
}

func (p BulkProgress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	completed := p.Index
	if !p.Reported {
		completed--
	}
	if completed < 0 {
		completed = 0
	}
	return float64(completed) / float64(p.Total) * 100
}

type BulkSummary struct {
	JobID          string
	Reason         enums.ReportReason
	Total          int
	Processed      int
	Success        int
	Failure        int
	SuccessTargets []Target
	FailedTargets  []Target
	// Results holds one entry per processed target in submission order.
	Results        []SubmissionResult
	StartedAt      time.Time
	FinishedAt     time.Time
	Duration       time.Duration
	ExportURL      string
	Empty          bool
	Canceled       bool
}

func (s BulkSummary) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Processed) * 100
}

type PerformanceTier string

const (
	TierExcellent  PerformanceTier = "excellent"
	TierGood       PerformanceTier = "good"
	TierAverage    PerformanceTier = "average"
	TierNeedsRetry PerformanceTier = "needs retry"
)

// TierForRate maps a success rate in percent to a fixed performance tier.
func TierForRate(rate float64) PerformanceTier {
	switch {
	case rate >= 90:
		return TierExcellent
	case rate >= 75:
		return TierGood
	case rate >= 50:
		return TierAverage
	default:
		return TierNeedsRetry
	}
}
