package health

import "context"

// Status is the aggregated health status.
type Status string

const (
	// Healthy: every component is operational.
	Healthy Status = "ok"
	// Degraded: the store is up but an optional component failed.
	Degraded Status = "degraded"
	// Unhealthy: the document store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is one component's outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report aggregates check results. Scheduler is empty when no scheduler runs in-process.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Scheduler string
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	scoring   BreakerReporter
	scheduler SchedulerReporter
}

// New creates a Service over the document store.
func New(db DBPinger) *Service {
	return &Service{db: db}
}

// WithEmbedding adds the embedding provider check.
func (s *Service) WithEmbedding(e EmbeddingChecker) *Service {
	s.embedding = e
	return s
}

// WithScoring adds the remote scorer breaker check.
func (s *Service) WithScoring(b BreakerReporter) *Service {
	s.scoring = b
	return s
}

// WithScheduler reports the scheduler state.
func (s *Service) WithScheduler(r SchedulerReporter) *Service {
	s.scheduler = r
	return s
}

// Check runs every configured check.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["database"] = result(s.db.Ping(ctx) == nil)
	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx) == nil)
	}
	if s.scoring != nil {
		checks["scoring"] = result(!s.scoring.BreakerOpen())
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}

	r := Report{Status: status, Checks: checks}
	if s.scheduler != nil {
		r.Scheduler = s.scheduler.StateName()
	}
	return r
}

func result(ok bool) CheckResult {
	if ok {
		return CheckOK
	}
	return CheckError
}
