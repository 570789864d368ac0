package health

import "context"

// DBPinger checks document store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks the niche embedding provider.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// BreakerReporter exposes the remote scorer's circuit breaker.
type BreakerReporter interface {
	BreakerOpen() bool
}

// SchedulerReporter exposes the background scheduler's lifecycle state.
type SchedulerReporter interface {
	StateName() string
}
