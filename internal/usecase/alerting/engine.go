// Package alerting matches alert rules against the public profile pool.
package alerting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
)

// DefaultInterval is the minimum spacing between evaluation cycles.
const DefaultInterval = 300 * time.Second

// Evaluation is the outcome of one EvaluateAll call.
type Evaluation struct {
	Alerts          []alert.Triggered
	Skipped         bool
	RulesEvaluated  int
	ProfilesScanned int
	CheckedAt       time.Time
}

// Config configures an Engine.
type Config struct {
	Interval time.Duration
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Engine evaluates every active rule once per cycle.
// EvaluateAll is driven from a single loop; LastCheck may be read concurrently.
type Engine struct {
	rules    RuleSource
	profiles ProfileSource
	scorer   Scorer
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu        sync.Mutex
	lastCheck time.Time
}

// New creates an evaluation engine.
func New(rules RuleSource, profiles ProfileSource, scorer Scorer, cfg Config, logger *zap.Logger) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rules:    rules,
		profiles: profiles,
		scorer:   scorer,
		interval: cfg.Interval,
		now:      cfg.Now,
		logger:   logger,
	}
}

// Interval returns the minimum spacing between cycles.
func (e *Engine) Interval() time.Duration { return e.interval }

// LastCheck returns the time of the last cycle that passed the gate, zero if none.
func (e *Engine) LastCheck() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastCheck
}

// EvaluateAll runs one evaluation cycle. When less than the interval has passed
// since the last cycle it returns a skipped Evaluation without reading the store.
// A store failure aborts the cycle.
func (e *Engine) EvaluateAll(ctx context.Context) (Evaluation, error) {
	now := e.now()
	if !e.pass(now) {
		metrics.EvaluationCyclesTotal.WithLabelValues("skipped").Inc()
		return Evaluation{Skipped: true, CheckedAt: now}, nil
	}

	start := time.Now()
	ev, err := e.evaluate(ctx, now)
	if err != nil {
		metrics.EvaluationCyclesTotal.WithLabelValues("failed").Inc()
		return Evaluation{CheckedAt: now}, err
	}
	metrics.EvaluationCyclesTotal.WithLabelValues("completed").Inc()
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	for _, a := range ev.Alerts {
		metrics.TriggeredAlertsTotal.WithLabelValues(string(a.Condition)).Inc()
	}
	return ev, nil
}

// pass applies the interval gate and records the check time when it opens.
func (e *Engine) pass(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.lastCheck.IsZero() && now.Sub(e.lastCheck) < e.interval {
		return false
	}
	e.lastCheck = now
	return true
}

func (e *Engine) evaluate(ctx context.Context, now time.Time) (Evaluation, error) {
	var (
		rules    []alert.Rule
		profiles []profile.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = e.activeRules(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		profiles, err = e.profiles.List(gctx)
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}

	profiles = keyByID(profiles)
	scores := newScoreMemo(e.scorer)
	ev := Evaluation{ProfilesScanned: len(profiles), CheckedAt: now}
	for _, r := range rules {
		if !r.Evaluable() {
			e.logger.Debug("Skipping incomplete rule",
				zap.String("rule_id", r.ID()), zap.String("tenant_id", r.TenantID()))
			continue
		}
		ev.RulesEvaluated++
		if p, ok := e.firstMatch(ctx, r, profiles, scores); ok {
			ev.Alerts = append(ev.Alerts, alert.NewTriggered(r, p, now))
		}
	}

	e.logger.Info("Evaluation cycle completed",
		zap.Int("rules", ev.RulesEvaluated),
		zap.Int("profiles", ev.ProfilesScanned),
		zap.Int("alerts", len(ev.Alerts)),
		zap.Int("scored", scores.calls),
	)
	return ev, nil
}

// activeRules collects active rules across every reachable tenant partition.
func (e *Engine) activeRules(ctx context.Context) ([]alert.Rule, error) {
	tenants, err := e.rules.Tenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}
	var out []alert.Rule
	for _, t := range tenants {
		rules, err := e.rules.List(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("load rules of %s: %w", t, err)
		}
		for _, r := range rules {
			if r.IsActive() {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// keyByID keys the pool by profile id. A repeated id keeps its first position
// and takes the later record, so store order still drives first match.
func keyByID(profiles []profile.Profile) []profile.Profile {
	pos := make(map[string]int, len(profiles))
	pool := make([]profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		if i, ok := pos[p.ID()]; ok {
			pool[i] = p
			continue
		}
		pos[p.ID()] = len(pool)
		pool = append(pool, p)
	}
	return pool
}

// firstMatch returns the first profile in pool order satisfying r.
func (e *Engine) firstMatch(ctx context.Context, r alert.Rule, profiles []profile.Profile, scores *scoreMemo,
) (profile.Profile, bool) {
	threshold, _ := r.Threshold()
	for _, p := range profiles {
		if !r.MatchesNiche(p.NicheLabel()) {
			continue
		}
		switch r.Condition() {
		case alert.ConditionMinEngagementRate:
			if p.EngagementRate() >= threshold {
				return p, true
			}
		case alert.ConditionMinMarketScore:
			s, ok := scores.get(ctx, p)
			if !ok {
				e.logger.Debug("Score unavailable, treating as no match",
					zap.String("rule_id", r.ID()), zap.String("profile_id", p.ID()))
				continue
			}
			if s.Value() >= threshold {
				return p, true
			}
		default:
			e.logger.Warn("Unsupported condition type",
				zap.String("rule_id", r.ID()), zap.String("condition_type", string(r.Condition())))
			return profile.Profile{}, false
		}
	}
	return profile.Profile{}, false
}

type memoEntry struct {
	score score.Score
	ok    bool
}

// scoreMemo scores each profile at most once per cycle.
type scoreMemo struct {
	scorer  Scorer
	entries map[string]memoEntry
	calls   int
}

func newScoreMemo(s Scorer) *scoreMemo {
	return &scoreMemo{scorer: s, entries: make(map[string]memoEntry)}
}

func (m *scoreMemo) get(ctx context.Context, p profile.Profile) (score.Score, bool) {
	if e, ok := m.entries[p.ID()]; ok {
		return e.score, e.ok
	}
	m.calls++
	s, err := m.scorer.Score(ctx, p.Features())
	e := memoEntry{score: s, ok: err == nil}
	m.entries[p.ID()] = e
	return e.score, e.ok
}
