package scoring

import (
	"context"

	"github.com/kailas-cloud/influencersphere/internal/domain/score"
)

// Scorer computes a market score from a profile's numeric features.
// Implementations wrap failures with domain.ErrScoringUnavailable.
type Scorer interface {
	Score(ctx context.Context, features map[string]any) (score.Score, error)
}
