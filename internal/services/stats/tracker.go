package stats

import (
	"sync"
	"time"

	"channel_reporter/internal/domain/model"
)

const RecentActivityLimit = 100

// Tracker holds the process-wide submission counters. All methods are safe
// for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	nowFn func() time.Time
	loc   *time.Location

	total       int64
	success     int64
	failure     int64
	day         int64
	dayBoundary time.Time
	startedAt   time.Time
	recent      []model.SubmissionResult
}

func NewTracker(loc *time.Location) *Tracker {
	return newTracker(time.Now, loc)
}

func newTracker(nowFn func() time.Time, loc *time.Location) *Tracker {
	if nowFn == nil {
		nowFn = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	now := nowFn()
	return &Tracker{
		nowFn:       nowFn,
		loc:         loc,
		dayBoundary: startOfDay(now, loc),
		startedAt:   now,
		recent:      make([]model.SubmissionResult, 0, RecentActivityLimit),
	}
}

// LoadLocation resolves the configured stats time zone, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (t *Tracker) Record(result model.SubmissionResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollDayLocked()

	t.total++
	t.day++
	if result.Succeeded {
		t.success++
	} else {
		t.failure++
	}

	if result.At.IsZero() {
		result.At = t.nowFn()
	}
	if len(t.recent) >= RecentActivityLimit {
		copy(t.recent, t.recent[1:])
		t.recent = t.recent[:len(t.recent)-1]
	}
	t.recent = append(t.recent, result)
}

func (t *Tracker) Snapshot() model.StatsSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollDayLocked()

	recent := make([]model.SubmissionResult, len(t.recent))
	copy(recent, t.recent)

	return model.StatsSnapshot{
		Total:       t.total,
		Success:     t.success,
		Failure:     t.failure,
		Day:         t.day,
		DayBoundary: t.dayBoundary,
		StartedAt:   t.startedAt,
		TakenAt:     t.nowFn(),
		Recent:      recent,
	}
}

// MaybeRollDay resets the per-day counter once the local date has moved past
// the stored boundary. Calling it repeatedly within a day is a no-op.
func (t *Tracker) MaybeRollDay() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollDayLocked()
}

func (t *Tracker) rollDayLocked() {
	today := startOfDay(t.nowFn(), t.loc)
	if !today.After(t.dayBoundary) {
		return
	}
	t.day = 0
	t.dayBoundary = today
}

func startOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	year, month, day := local.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
