// Package scoring provides market score implementations and their decorators.
package scoring

import (
	"context"

	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
)

// Heuristic feature defaults for profiles lacking the field.
const (
	DefaultGrowthRate     = 0.05
	DefaultEngagementRate = 3.0
)

// Heuristic is the deterministic fallback scorer:
//
//	growth*500 + engagement*10 + 40
//
// clamped to [1, 100].
type Heuristic struct{}

// NewHeuristic creates the heuristic scorer.
func NewHeuristic() Heuristic { return Heuristic{} }

// Score never fails.
func (Heuristic) Score(_ context.Context, features map[string]any) (score.Score, error) {
	growth, ok := profile.Number(features[profile.FieldFollowerGrowthRate])
	if !ok {
		growth = DefaultGrowthRate
	}
	engagement, ok := profile.Number(features[profile.FieldEngagementRate])
	if !ok {
		engagement = DefaultEngagementRate
	}
	return score.New(growth*500 + engagement*10 + 40), nil
}
