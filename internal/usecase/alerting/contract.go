package alerting

import (
	"context"

	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
)

// RuleSource enumerates the tenant partitions reachable to the evaluator and their rules.
type RuleSource interface {
	Tenants(ctx context.Context) ([]string, error)
	List(ctx context.Context, tenantID string) ([]alert.Rule, error)
}

// ProfileSource lists the public profile pool.
type ProfileSource interface {
	List(ctx context.Context) ([]profile.Profile, error)
}

// Scorer computes market scores. It must be the same scorer search uses.
type Scorer interface {
	Score(ctx context.Context, features map[string]any) (score.Score, error)
}
