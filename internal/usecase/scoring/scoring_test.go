package scoring

import (
	"context"
	"errors"
	"math"
	"os"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type mockScorer struct {
	calls atomic.Int32
	fn    func(features map[string]any) (score.Score, error)
}

func (m *mockScorer) Score(_ context.Context, features map[string]any) (score.Score, error) {
	m.calls.Add(1)
	if m.fn != nil {
		return m.fn(features)
	}
	return score.New(50), nil
}

// --- Heuristic ---

func TestHeuristic_Defaults(t *testing.T) {
	s, err := NewHeuristic().Score(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0.05*500 + 3*10 + 40 = 95
	if s.Value() != 95 {
		t.Errorf("Value() = %v, want 95", s.Value())
	}
	if s.Tier() != score.TierAList {
		t.Errorf("Tier() = %q", s.Tier())
	}
}

func TestHeuristic_Formula(t *testing.T) {
	tests := []struct {
		growth, engagement float64
		want               float64
		tier               score.Tier
	}{
		{0, 2, 60, score.TierScouting},
		{0.01, 2.5, 70, score.TierHighGrowth},
		{0.2, 8, 100, score.TierAList},
		{0, -10, 1, score.TierScouting},
	}
	for _, tc := range tests {
		s, _ := NewHeuristic().Score(context.Background(), map[string]any{
			"follower_growth_rate":    tc.growth,
			"average_engagement_rate": tc.engagement,
		})
		if math.Abs(s.Value()-tc.want) > 1e-9 || s.Tier() != tc.tier {
			t.Errorf("growth=%v engagement=%v: got %v %q, want %v %q",
				tc.growth, tc.engagement, s.Value(), s.Tier(), tc.want, tc.tier)
		}
	}
}

// --- Cached ---

func TestCached_HitsOnEqualFeatures(t *testing.T) {
	inner := &mockScorer{}
	c := NewCached(inner, 16)
	ctx := context.Background()

	hitsBefore := testutil.ToFloat64(metrics.ScoreCacheTotal.WithLabelValues("hit"))

	for range 3 {
		if _, err := c.Score(ctx, map[string]any{"a": 1.0, "b": 2.0}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// same content, different insertion order
	_, _ = c.Score(ctx, map[string]any{"b": 2.0, "a": 1.0})

	if n := inner.calls.Load(); n != 1 {
		t.Errorf("expected 1 inner call, got %d", n)
	}
	if hits := testutil.ToFloat64(metrics.ScoreCacheTotal.WithLabelValues("hit")) - hitsBefore; hits != 3 {
		t.Errorf("expected 3 cache hits, got %v", hits)
	}
}

func TestCached_DistinctFeatures(t *testing.T) {
	inner := &mockScorer{}
	c := NewCached(inner, 16)

	_, _ = c.Score(context.Background(), map[string]any{"a": 1.0})
	_, _ = c.Score(context.Background(), map[string]any{"a": 2.0})

	if n := inner.calls.Load(); n != 2 {
		t.Errorf("expected 2 inner calls, got %d", n)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 cached entries, got %d", c.Len())
	}
}

func TestCached_ErrorsNotCached(t *testing.T) {
	inner := &mockScorer{fn: func(map[string]any) (score.Score, error) {
		return score.Score{}, errors.New("model offline")
	}}
	c := NewCached(inner, 16)

	for range 2 {
		if _, err := c.Score(context.Background(), map[string]any{"a": 1.0}); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("expected failures to bypass the cache, got %d calls", n)
	}
}

func TestCached_Evicts(t *testing.T) {
	c := NewCached(&mockScorer{}, 2)
	for i := range 5 {
		_, _ = c.Score(context.Background(), map[string]any{"i": float64(i)})
	}
	if c.Len() != 2 {
		t.Errorf("expected cache bounded at 2, got %d", c.Len())
	}
}

// --- Instrumented ---

func TestInstrumented_WrapsFailure(t *testing.T) {
	cause := errors.New("timeout")
	s := NewInstrumented(&mockScorer{fn: func(map[string]any) (score.Score, error) {
		return score.Score{}, cause
	}}, "test", zap.NewNop())

	before := testutil.ToFloat64(metrics.ScoringRequestsTotal.WithLabelValues("test", "error"))
	_, err := s.Score(context.Background(), nil)
	if !errors.Is(err, domain.ErrScoringUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected ErrScoringUnavailable wrapping cause, got %v", err)
	}
	if after := testutil.ToFloat64(metrics.ScoringRequestsTotal.WithLabelValues("test", "error")); after-before != 1 {
		t.Errorf("expected error counter +1, got %v", after-before)
	}
}

func TestInstrumented_Success(t *testing.T) {
	s := NewInstrumented(NewHeuristic(), "heuristic-test", zap.NewNop())
	got, err := s.Score(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value() != 95 {
		t.Errorf("Value() = %v", got.Value())
	}
	if v := testutil.ToFloat64(metrics.ScoringRequestsTotal.WithLabelValues("heuristic-test", "success")); v != 1 {
		t.Errorf("expected success counter 1, got %v", v)
	}
}
