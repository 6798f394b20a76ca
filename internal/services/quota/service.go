package quota

import (
	"context"
	"fmt"
	"time"
)

const keyPrefix = "quota:reports:"

// keyGrace keeps yesterday's counter around briefly for late reads.
const keyGrace = time.Hour

type Store interface {
	Reserve(ctx context.Context, key string, n, limit int64, ttl time.Duration) (int64, bool, error)
	Release(ctx context.Context, key string, n int64) error
	Used(ctx context.Context, key string) (int64, error)
}

type Reservation struct {
	Granted   bool
	Requested int64
	Remaining int64
}

// Service enforces the daily cap shared by every operator, since all reports
// go out through one reporting account. Days follow the statistics time zone.
type Service struct {
	store Store
	limit int64
	loc   *time.Location
	nowFn func() time.Time
}

func NewService(store Store, limit int, loc *time.Location) *Service {
	return newService(store, limit, loc, time.Now)
}

func newService(store Store, limit int, loc *time.Location, nowFn func() time.Time) *Service {
	if limit < 0 {
		limit = 0
	}
	if loc == nil {
		loc = time.UTC
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{store: store, limit: int64(limit), loc: loc, nowFn: nowFn}
}

func (s *Service) Enabled() bool {
	return s != nil && s.limit > 0
}

func (s *Service) Limit() int64 {
	if !s.Enabled() {
		return 0
	}
	return s.limit
}

// Reserve claims n reports from today's allowance, all or nothing.
func (s *Service) Reserve(ctx context.Context, n int) (Reservation, error) {
	if n <= 0 {
		return Reservation{}, fmt.Errorf("invalid quota request %d", n)
	}
	requested := int64(n)
	if !s.Enabled() {
		return Reservation{Granted: true, Requested: requested}, nil
	}

	key, ttl := s.dayKey()
	used, granted, err := s.store.Reserve(ctx, key, requested, s.limit, ttl)
	if err != nil {
		return Reservation{}, fmt.Errorf("reserve daily quota: %w", err)
	}
	return Reservation{
		Granted:   granted,
		Requested: requested,
		Remaining: remaining(s.limit, used),
	}, nil
}

// Release hands back reports that were reserved but never submitted.
func (s *Service) Release(ctx context.Context, n int) error {
	if !s.Enabled() || n <= 0 {
		return nil
	}
	key, _ := s.dayKey()
	if err := s.store.Release(ctx, key, int64(n)); err != nil {
		return fmt.Errorf("release daily quota: %w", err)
	}
	return nil
}

func (s *Service) Remaining(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	key, _ := s.dayKey()
	used, err := s.store.Used(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read daily quota: %w", err)
	}
	return remaining(s.limit, used), nil
}

func (s *Service) dayKey() (string, time.Duration) {
	now := s.nowFn().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	next := start.AddDate(0, 0, 1)
	return keyPrefix + start.Format("2006-01-02"), next.Sub(now) + keyGrace
}

func remaining(limit, used int64) int64 {
	if used >= limit {
		return 0
	}
	if used < 0 {
		return limit
	}
	return limit - used
}
