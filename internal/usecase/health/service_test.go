package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockBreaker struct{ open bool }

func (m mockBreaker) BreakerOpen() bool { return m.open }

type mockScheduler struct{ state string }

func (m mockScheduler) StateName() string { return m.state }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}).
		WithEmbedding(&mockEmbeddingChecker{}).
		WithScoring(mockBreaker{}).
		WithScheduler(mockScheduler{state: "running"})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"database", "embedding", "scoring"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
	if r.Scheduler != "running" {
		t.Errorf("scheduler = %q", r.Scheduler)
	}
}

func TestCheck_DBErrorIsUnhealthy(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}).WithEmbedding(&mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if r.Checks["embedding"] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks["embedding"])
	}
}

func TestCheck_OptionalComponentDegrades(t *testing.T) {
	tests := []struct {
		name   string
		svc    *Service
		failed string
	}{
		{"embedding", New(&mockDBPinger{}).WithEmbedding(&mockEmbeddingChecker{err: errors.New("timeout")}), "embedding"},
		{"scoring breaker open", New(&mockDBPinger{}).WithScoring(mockBreaker{open: true}), "scoring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.svc.Check(context.Background())
			if r.Status != Degraded {
				t.Errorf("expected %q, got %q", Degraded, r.Status)
			}
			if r.Checks[tt.failed] != CheckError {
				t.Errorf("expected %s error", tt.failed)
			}
		})
	}
}

func TestCheck_OnlyDatabase(t *testing.T) {
	r := New(&mockDBPinger{}).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 {
		t.Errorf("expected only the database check, got %v", r.Checks)
	}
	if r.Scheduler != "" {
		t.Errorf("scheduler = %q, want empty", r.Scheduler)
	}
}
