package app

import (
	"sync"
	"sync/atomic"
	"time"

	"channel_reporter/internal/domain/enums"
)

// pendingBulk is an armed bulk mode waiting for the operator's target list.
type pendingBulk struct {
	Reason  enums.ReportReason
	Count   int
	ArmedAt time.Time
}

// pendingStore keeps at most one armed bulk mode per operator. Arming again
// replaces the previous one.
type pendingStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	nowFn      func() time.Time
	byOperator map[int64]pendingBulk
}

func newPendingStore(ttl time.Duration, nowFn func() time.Time) *pendingStore {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &pendingStore{
		ttl:        ttl,
		nowFn:      nowFn,
		byOperator: make(map[int64]pendingBulk),
	}
}

func (s *pendingStore) Arm(operatorID int64, reason enums.ReportReason, count int) (pendingBulk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced := s.activeLocked(operatorID)
	entry := pendingBulk{Reason: reason, Count: count, ArmedAt: s.nowFn()}
	s.byOperator[operatorID] = entry
	return entry, replaced
}

// Take removes and returns the armed mode, if it has not expired.
func (s *pendingStore) Take(operatorID int64) (pendingBulk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.activeLocked(operatorID)
	delete(s.byOperator, operatorID)
	return entry, ok
}

// Restore puts back a mode taken by Take unless the operator armed a new
// one in the meantime.
func (s *pendingStore) Restore(operatorID int64, entry pendingBulk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeLocked(operatorID); ok {
		return
	}
	s.byOperator[operatorID] = entry
}

func (s *pendingStore) Has(operatorID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.activeLocked(operatorID)
	return ok
}

func (s *pendingStore) activeLocked(operatorID int64) (pendingBulk, bool) {
	entry, ok := s.byOperator[operatorID]
	if !ok {
		return pendingBulk{}, false
	}
	if s.ttl > 0 && s.nowFn().Sub(entry.ArmedAt) >= s.ttl {
		delete(s.byOperator, operatorID)
		return pendingBulk{}, false
	}
	return entry, true
}

// jobGuard admits one bulk job at a time: every job goes out through the
// same reporting account and shares its rate limit.
type jobGuard struct {
	running atomic.Bool
}

func (g *jobGuard) TryStart() bool {
	return g.running.CompareAndSwap(false, true)
}

func (g *jobGuard) Finish() {
	g.running.Store(false)
}

func (g *jobGuard) Running() bool {
	return g.running.Load()
}
