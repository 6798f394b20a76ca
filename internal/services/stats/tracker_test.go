package stats

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"channel_reporter/internal/domain/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func result(handle string, ok bool) model.SubmissionResult {
	res := model.SubmissionResult{Target: model.HandleTarget(handle), Succeeded: ok}
	if !ok {
		res.Err = errors.New("rejected")
	}
	return res
}

func TestRecordKeepsTotalsConsistent(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTracker(clock.Now, time.UTC)

	outcomes := []bool{true, false, true, true, false}
	for i, ok := range outcomes {
		tracker.Record(result(fmt.Sprintf("@chan%d", i), ok))

		snap := tracker.Snapshot()
		if snap.Total != snap.Success+snap.Failure {
			t.Fatalf("total %d != success %d + failure %d", snap.Total, snap.Success, snap.Failure)
		}
		if snap.Day > snap.Total {
			t.Fatalf("day %d exceeds total %d", snap.Day, snap.Total)
		}
	}

	snap := tracker.Snapshot()
	if snap.Total != 5 || snap.Success != 3 || snap.Failure != 2 || snap.Day != 5 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if got := snap.SuccessRate(); got != 60 {
		t.Fatalf("expected success rate 60, got %v", got)
	}
}

func TestRecordAppendsRecentActivity(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tracker := newTracker(func() time.Time { return at }, time.UTC)

	tracker.Record(model.SubmissionResult{Target: model.HandleTarget("@testchannel"), Succeeded: true})

	snap := tracker.Snapshot()
	if len(snap.Recent) != 1 {
		t.Fatalf("expected 1 recent entry, got %d", len(snap.Recent))
	}
	last := snap.Recent[len(snap.Recent)-1]
	if last.Target.Handle != "@testchannel" || !last.Succeeded {
		t.Fatalf("unexpected last entry: %+v", last)
	}
	if !last.At.Equal(at) {
		t.Fatalf("expected timestamp %s, got %s", at, last.At)
	}
}

func TestRecentActivityEvictsOldest(t *testing.T) {
	t.Parallel()

	tracker := newTracker(nil, time.UTC)
	for i := 0; i < RecentActivityLimit+5; i++ {
		tracker.Record(result(fmt.Sprintf("@chan%d", i), true))
	}

	snap := tracker.Snapshot()
	if len(snap.Recent) != RecentActivityLimit {
		t.Fatalf("expected %d recent entries, got %d", RecentActivityLimit, len(snap.Recent))
	}
	if snap.Recent[0].Target.Handle != "@chan5" {
		t.Fatalf("expected oldest retained @chan5, got %s", snap.Recent[0].Target.Handle)
	}
	if snap.Recent[len(snap.Recent)-1].Target.Handle != fmt.Sprintf("@chan%d", RecentActivityLimit+4) {
		t.Fatalf("unexpected newest entry: %s", snap.Recent[len(snap.Recent)-1].Target.Handle)
	}
	if snap.Total != int64(RecentActivityLimit+5) {
		t.Fatalf("eviction must not touch counters, total=%d", snap.Total)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	tracker := newTracker(nil, time.UTC)
	tracker.Record(result("@first", true))

	snap := tracker.Snapshot()
	snap.Recent[0].Target.Handle = "@mutated"

	if got := tracker.Snapshot().Recent[0].Target.Handle; got != "@first" {
		t.Fatalf("snapshot mutation leaked into tracker: %s", got)
	}
}

func TestDayRollover(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)}
	tracker := newTracker(clock.Now, time.UTC)

	tracker.Record(result("@before", true))
	tracker.Record(result("@before2", false))

	clock.Set(time.Date(2026, 3, 11, 0, 0, 1, 0, time.UTC))

	snap := tracker.Snapshot()
	if snap.Day != 0 {
		t.Fatalf("expected day count reset to 0, got %d", snap.Day)
	}
	if snap.Total != 2 || snap.Success != 1 || snap.Failure != 1 {
		t.Fatalf("rollover must preserve totals: %+v", snap)
	}
	if !snap.DayBoundary.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day boundary %s", snap.DayBoundary)
	}

	tracker.Record(result("@after", true))
	if snap := tracker.Snapshot(); snap.Day != 1 || snap.Total != 3 {
		t.Fatalf("unexpected counters after rollover: %+v", snap)
	}
}

func TestMaybeRollDayIsIdempotent(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	tracker := newTracker(clock.Now, time.UTC)
	tracker.Record(result("@x1", true))

	tracker.MaybeRollDay()
	tracker.MaybeRollDay()
	if snap := tracker.Snapshot(); snap.Day != 1 {
		t.Fatalf("same-day roll must not reset, day=%d", snap.Day)
	}

	clock.Set(clock.Now().Add(48 * time.Hour))
	tracker.MaybeRollDay()
	tracker.MaybeRollDay()
	if snap := tracker.Snapshot(); snap.Day != 0 || snap.Total != 1 {
		t.Fatalf("unexpected counters after two-day jump: %+v", snap)
	}
}

func TestDayBoundaryFollowsLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*3600)
	// 22:30 UTC is already the next day in UTC+3.
	clock := &fakeClock{now: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)}
	tracker := newTracker(clock.Now, loc)
	tracker.Record(result("@evening", true))

	clock.Set(time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC))
	if snap := tracker.Snapshot(); snap.Day != 0 {
		t.Fatalf("expected rollover at local midnight, day=%d", snap.Day)
	}
}

func TestConcurrentRecord(t *testing.T) {
	t.Parallel()

	tracker := newTracker(nil, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tracker.Record(result("@c", (i+j)%2 == 0))
			}
		}(i)
	}
	wg.Wait()

	snap := tracker.Snapshot()
	if snap.Total != 1000 || snap.Success+snap.Failure != 1000 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
}
