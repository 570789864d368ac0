// Package scheduler drives alert evaluation on a fixed cadence in the background.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/metrics"
	"github.com/kailas-cloud/influencersphere/internal/usecase/alerting"
)

// Defaults for Config.
const (
	DefaultInterval = 300 * time.Second
	DefaultGrace    = 5 * time.Second
)

// ErrShutdownTimeout is returned when the loop does not exit within the grace period.
var ErrShutdownTimeout = errors.New("scheduler shutdown timed out")

// State is the scheduler lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Evaluator runs one evaluation cycle.
type Evaluator interface {
	EvaluateAll(ctx context.Context) (alerting.Evaluation, error)
}

// Config configures a Scheduler.
type Config struct {
	// Interval between cycles. Also the backoff after a failed cycle.
	Interval time.Duration
	// Grace bounds how long Shutdown waits for the loop to exit.
	Grace time.Duration
}

// Scheduler owns the background evaluation loop.
type Scheduler struct {
	eval     Evaluator
	interval time.Duration
	grace    time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle scheduler.
func New(eval Evaluator, cfg Config, logger *zap.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		eval:     eval,
		interval: cfg.Interval,
		grace:    cfg.Grace,
		logger:   logger,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StateName returns the current state as a string.
func (s *Scheduler) StateName() string { return s.State().String() }

// Start launches the loop. It is a no-op unless the scheduler is Idle.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		s.logger.Warn("Scheduler already started", zap.Stringer("state", s.state))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.setState(Running)

	s.logger.Info("Starting scheduler", zap.Duration("interval", s.interval))
	go s.run(ctx, s.done)
}

// Shutdown stops the loop and waits up to the grace period for it to exit.
// It is a no-op unless the scheduler is Running.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	if s.state != Running {
		s.logger.Warn("Scheduler not running", zap.Stringer("state", s.state))
		s.mu.Unlock()
		return nil
	}
	s.setState(Stopping)
	s.cancel()
	done := s.done
	s.mu.Unlock()

	timer := time.NewTimer(s.grace)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-timer.C:
		s.logger.Warn("Scheduler did not stop within grace period", zap.Duration("grace", s.grace))
		return ErrShutdownTimeout
	}
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.setState(Idle)
		s.mu.Unlock()
		close(done)
	}()

	for {
		if err := s.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("Evaluation cycle failed, backing off",
				zap.Duration("backoff", s.interval), zap.Error(err))
		}

		if !s.wait(ctx, s.interval) {
			return
		}
	}
}

// cycle runs one evaluation. Panics are recovered and reported as errors.
func (s *Scheduler) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluation panic: %v", r)
		}
	}()

	ev, err := s.eval.EvaluateAll(ctx)
	if err != nil {
		return err
	}
	if ev.Skipped {
		s.logger.Debug("Evaluation skipped, interval not elapsed")
		return nil
	}
	for _, a := range ev.Alerts {
		s.logger.Info(a.Message,
			zap.String("rule_id", a.RuleID),
			zap.String("tenant_id", a.TenantID),
			zap.String("profile_id", a.ProfileID),
			zap.String("profile_link", a.ProfileLink),
		)
	}
	return nil
}

// wait blocks for d or until ctx is done. It reports whether the loop should continue.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// setState must be called with mu held.
func (s *Scheduler) setState(st State) {
	s.state = st
	metrics.SchedulerState.Set(float64(st))
}
