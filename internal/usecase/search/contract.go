package search

import (
	"context"

	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
)

// ProfileSource reads the public profile pool.
type ProfileSource interface {
	List(ctx context.Context) ([]profile.Profile, error)
	Get(ctx context.Context, id string) (profile.Profile, error)
}

// Scorer computes market scores.
type Scorer interface {
	Score(ctx context.Context, features map[string]any) (score.Score, error)
}
