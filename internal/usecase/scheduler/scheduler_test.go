package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
	"github.com/kailas-cloud/influencersphere/internal/usecase/alerting"
	"github.com/kailas-cloud/influencersphere/internal/usecase/scoring"
)

// --- Mocks ---

type mockEvaluator struct {
	calls atomic.Int32
	fn    func(ctx context.Context, call int32) (alerting.Evaluation, error)
}

func (m *mockEvaluator) EvaluateAll(ctx context.Context) (alerting.Evaluation, error) {
	n := m.calls.Add(1)
	if m.fn != nil {
		return m.fn(ctx, n)
	}
	return alerting.Evaluation{}, nil
}

type stubRules struct{ lists atomic.Int32 }

func (s *stubRules) Tenants(_ context.Context) ([]string, error) { return []string{"service"}, nil }

func (s *stubRules) List(_ context.Context, _ string) ([]alert.Rule, error) {
	s.lists.Add(1)
	return nil, nil
}

type stubProfiles struct{}

func (stubProfiles) List(_ context.Context) ([]profile.Profile, error) { return nil, nil }

// --- Helpers ---

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// --- Tests ---

func TestShutdown_IdleIsNoop(t *testing.T) {
	s := New(&mockEvaluator{}, Config{Interval: time.Hour, Grace: time.Second}, nil)

	start := time.Now()
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown idle: %v", err)
	}
	if d := time.Since(start); d > 50*time.Millisecond {
		t.Errorf("idle shutdown blocked for %v", d)
	}
	if s.State() != Idle {
		t.Errorf("state = %v", s.State())
	}
}

func TestStartShutdown_Lifecycle(t *testing.T) {
	ev := &mockEvaluator{}
	s := New(ev, Config{Interval: time.Hour, Grace: time.Second}, nil)

	s.Start()
	if s.State() != Running {
		t.Fatalf("state after start = %v", s.State())
	}
	if got := testutil.ToFloat64(metrics.SchedulerState); got != float64(Running) {
		t.Errorf("state gauge = %v", got)
	}
	waitFor(t, time.Second, func() bool { return ev.calls.Load() == 1 })

	start := time.Now()
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if d := time.Since(start); d > time.Second+50*time.Millisecond {
		t.Errorf("shutdown took %v", d)
	}
	if s.State() != Idle {
		t.Errorf("state after shutdown = %v", s.State())
	}
	if got := testutil.ToFloat64(metrics.SchedulerState); got != float64(Idle) {
		t.Errorf("state gauge = %v", got)
	}
}

func TestStart_SecondCallIsNoop(t *testing.T) {
	ev := &mockEvaluator{}
	s := New(ev, Config{Interval: time.Hour, Grace: time.Second}, nil)

	s.Start()
	s.Start()
	waitFor(t, time.Second, func() bool { return ev.calls.Load() >= 1 })
	time.Sleep(20 * time.Millisecond)
	if got := ev.calls.Load(); got != 1 {
		t.Errorf("expected a single loop, got %d calls", got)
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestRun_RepeatsEveryInterval(t *testing.T) {
	ev := &mockEvaluator{}
	s := New(ev, Config{Interval: 5 * time.Millisecond, Grace: time.Second}, nil)

	s.Start()
	waitFor(t, 2*time.Second, func() bool { return ev.calls.Load() >= 3 })
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestRun_SurvivesErrorsAndPanics(t *testing.T) {
	ev := &mockEvaluator{fn: func(_ context.Context, call int32) (alerting.Evaluation, error) {
		switch call {
		case 1:
			return alerting.Evaluation{}, errors.New("store down")
		case 2:
			panic("boom")
		default:
			return alerting.Evaluation{}, nil
		}
	}}
	s := New(ev, Config{Interval: 5 * time.Millisecond, Grace: time.Second}, nil)

	s.Start()
	waitFor(t, 2*time.Second, func() bool { return ev.calls.Load() >= 3 })
	if s.State() != Running {
		t.Errorf("loop must keep running after failures, state = %v", s.State())
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestShutdown_InterruptsBackoff(t *testing.T) {
	ev := &mockEvaluator{fn: func(context.Context, int32) (alerting.Evaluation, error) {
		return alerting.Evaluation{}, errors.New("store down")
	}}
	s := New(ev, Config{Interval: time.Hour, Grace: time.Second}, nil)

	s.Start()
	waitFor(t, time.Second, func() bool { return ev.calls.Load() == 1 })

	start := time.Now()
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Errorf("backoff wait was not interrupted, shutdown took %v", d)
	}
}

func TestShutdown_TimeoutWhenCycleIgnoresCancel(t *testing.T) {
	release := make(chan struct{})
	ev := &mockEvaluator{fn: func(context.Context, int32) (alerting.Evaluation, error) {
		<-release
		return alerting.Evaluation{}, nil
	}}
	grace := 20 * time.Millisecond
	s := New(ev, Config{Interval: time.Hour, Grace: grace}, nil)

	s.Start()
	waitFor(t, time.Second, func() bool { return ev.calls.Load() == 1 })

	start := time.Now()
	err := s.Shutdown()
	if !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("expected ErrShutdownTimeout, got %v", err)
	}
	if d := time.Since(start); d > grace+100*time.Millisecond {
		t.Errorf("shutdown exceeded grace: %v", d)
	}
	if s.State() != Stopping {
		t.Errorf("state = %v, want stopping", s.State())
	}

	close(release)
	waitFor(t, time.Second, func() bool { return s.State() == Idle })
}

func TestRun_EngineGateWithFakeClock(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rules := &stubRules{}
	engine := alerting.New(rules, stubProfiles{}, scoring.NewHeuristic(),
		alerting.Config{Interval: time.Hour, Now: func() time.Time { return now }}, nil)

	s := New(engine, Config{Interval: 2 * time.Millisecond, Grace: time.Second}, nil)
	s.Start()
	time.Sleep(30 * time.Millisecond)
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := rules.lists.Load(); got != 1 {
		t.Errorf("frozen clock must allow a single full scan, got %d", got)
	}
}
