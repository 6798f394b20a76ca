package model

import "time"

type SubmissionResult struct {
	Target    Target
	Succeeded bool
	At        time.Time
	// Err carries the diagnostic for a failed submission. It is never returned
	// as an error to callers.
	Err error
}

type StatsSnapshot struct {
	Total       int64
	Success     int64
	Failure     int64
	Day         int64
	DayBoundary time.Time
	StartedAt   time.Time
	TakenAt     time.Time
	Recent      []SubmissionResult
}

func (s StatsSnapshot) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total) * 100
}

func (s StatsSnapshot) Uptime() time.Duration {
	if s.StartedAt.IsZero() || s.TakenAt.Before(s.StartedAt) {
		return 0
	}
	return s.TakenAt.Sub(s.StartedAt)
}
