package submitter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
	"channel_reporter/internal/services/stats"
)

type fakeGateway struct {
	peers      map[string]model.PeerRef
	resolveErr error
	ack        bool
	reportErr  error
	resolved   []string
	reported   []model.PeerRef
	reasons    []enums.ReportReason
}

func (g *fakeGateway) Resolve(_ context.Context, handle string) (model.PeerRef, error) {
	g.resolved = append(g.resolved, handle)
	if g.resolveErr != nil {
		return model.PeerRef{}, g.resolveErr
	}
	peer, ok := g.peers[handle]
	if !ok {
		return model.PeerRef{}, errors.New("peer not found")
	}
	return peer, nil
}

func (g *fakeGateway) Report(_ context.Context, peer model.PeerRef, reason enums.ReportReason) (bool, error) {
	g.reported = append(g.reported, peer)
	g.reasons = append(g.reasons, reason)
	return g.ack, g.reportErr
}

type countingObserver struct {
	success int
	failure int
}

func (o *countingObserver) ObserveSubmission(succeeded bool, _ float64) {
	if succeeded {
		o.success++
	} else {
		o.failure++
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitSuccessUpdatesStats(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{
		peers: map[string]model.PeerRef{"@testchannel": {ID: 500, Username: "testchannel"}},
		ack:   true,
	}
	tracker := stats.NewTracker(nil)
	observer := &countingObserver{}
	svc := NewService(gateway, gateway, tracker, observer, quietLogger())

	before := tracker.Snapshot()
	res := svc.Submit(context.Background(), model.HandleTarget("@testchannel"), enums.ReportReasonSpam)
	if !res.Succeeded || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}

	after := tracker.Snapshot()
	if after.Total != before.Total+1 || after.Success != before.Success+1 || after.Failure != before.Failure {
		t.Fatalf("unexpected counters: before=%+v after=%+v", before, after)
	}
	last := after.Recent[len(after.Recent)-1]
	if last.Target.Handle != "@testchannel" || !last.Succeeded {
		t.Fatalf("unexpected last activity: %+v", last)
	}
	if len(gateway.reported) != 1 || gateway.reported[0].ID != 500 || gateway.reasons[0] != enums.ReportReasonSpam {
		t.Fatalf("unexpected report calls: %+v %+v", gateway.reported, gateway.reasons)
	}
	if observer.success != 1 || observer.failure != 0 {
		t.Fatalf("unexpected observer counts: %+v", observer)
	}
}

func TestSubmitFailureModes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		gateway     *fakeGateway
		wantReports int
		wantErr     error
	}{
		{
			name:        "not acknowledged",
			gateway:     &fakeGateway{peers: map[string]model.PeerRef{"@chan": {ID: 1}}, ack: false},
			wantReports: 1,
			wantErr:     ErrNotAcknowledged,
		},
		{
			name:        "transport error",
			gateway:     &fakeGateway{peers: map[string]model.PeerRef{"@chan": {ID: 1}}, reportErr: errors.New("connection reset")},
			wantReports: 1,
		},
		{
			name:        "resolution fails",
			gateway:     &fakeGateway{resolveErr: errors.New("username not occupied")},
			wantReports: 0,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tracker := stats.NewTracker(nil)
			svc := NewService(tc.gateway, tc.gateway, tracker, nil, quietLogger())

			res := svc.Submit(context.Background(), model.HandleTarget("@chan"), enums.ReportReasonOther)
			if res.Succeeded {
				t.Fatal("expected failure")
			}
			if res.Err == nil {
				t.Fatal("expected diagnostic error on failure")
			}
			if tc.wantErr != nil && !errors.Is(res.Err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, res.Err)
			}
			if len(tc.gateway.reported) != tc.wantReports {
				t.Fatalf("expected %d report calls, got %d", tc.wantReports, len(tc.gateway.reported))
			}

			snap := tracker.Snapshot()
			if snap.Total != 1 || snap.Failure != 1 || snap.Success != 0 || snap.Day != 1 {
				t.Fatalf("unexpected counters: %+v", snap)
			}
			if len(snap.Recent) != 1 || snap.Recent[0].Succeeded {
				t.Fatalf("unexpected recent log: %+v", snap.Recent)
			}
		})
	}
}

func TestSubmitResolvedPeerSkipsResolution(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{ack: true}
	svc := NewService(gateway, gateway, stats.NewTracker(nil), nil, quietLogger())

	target := model.PeerTarget(model.PeerRef{ID: -100777, Username: "replied"})
	res := svc.Submit(context.Background(), target, enums.ReportReasonViolence)
	if !res.Succeeded {
		t.Fatalf("expected success, got %+v", res)
	}
	if len(gateway.resolved) != 0 {
		t.Fatalf("resolver must not be called for a resolved peer, got %v", gateway.resolved)
	}
	if len(gateway.reported) != 1 || gateway.reported[0].ID != -100777 {
		t.Fatalf("unexpected report calls: %+v", gateway.reported)
	}
}

func TestSubmitWithoutReporterFails(t *testing.T) {
	t.Parallel()

	tracker := stats.NewTracker(nil)
	svc := NewService(nil, nil, tracker, nil, quietLogger())

	res := svc.Submit(context.Background(), model.HandleTarget("@chan"), enums.ReportReasonSpam)
	if res.Succeeded || res.Err == nil {
		t.Fatalf("expected failure, got %+v", res)
	}
	if tracker.Snapshot().Failure != 1 {
		t.Fatal("failure must still be recorded")
	}
}

type blockingGateway struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	release  chan struct{}
	entered  chan struct{}
}

func (g *blockingGateway) Resolve(_ context.Context, handle string) (model.PeerRef, error) {
	return model.PeerRef{ID: 1, Username: handle}, nil
}

func (g *blockingGateway) Report(context.Context, model.PeerRef, enums.ReportReason) (bool, error) {
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.peak {
		g.peak = g.inFlight
	}
	g.mu.Unlock()

	g.entered <- struct{}{}
	<-g.release

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
	return true, nil
}

func TestSubmitSerialisesGatewayAccess(t *testing.T) {
	gateway := &blockingGateway{release: make(chan struct{}), entered: make(chan struct{}, 3)}
	tracker := stats.NewTracker(nil)
	svc := NewService(gateway, gateway, tracker, nil, quietLogger())

	var wg sync.WaitGroup
	for _, handle := range []string{"@a", "@b", "@c"} {
		wg.Add(1)
		go func(handle string) {
			defer wg.Done()
			svc.Submit(context.Background(), model.HandleTarget(handle), enums.ReportReasonSpam)
		}(handle)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-gateway.entered:
		case <-time.After(2 * time.Second):
			t.Fatalf("submission %d never reached the gateway", i+1)
		}
		// Give any unserialised caller a chance to enter as well.
		time.Sleep(20 * time.Millisecond)
		gateway.release <- struct{}{}
	}
	wg.Wait()

	if gateway.peak != 1 {
		t.Fatalf("expected at most one in-flight report, got %d", gateway.peak)
	}
	if tracker.Snapshot().Total != 3 {
		t.Fatalf("expected 3 recorded submissions, got %d", tracker.Snapshot().Total)
	}
}
