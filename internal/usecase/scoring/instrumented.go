package scoring

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
)

// Instrumented wraps a Scorer with metrics and debug logging.
type Instrumented struct {
	inner    Scorer
	provider string
	logger   *zap.Logger
}

// NewInstrumented wraps inner. provider labels the metrics.
func NewInstrumented(inner Scorer, provider string, logger *zap.Logger) *Instrumented {
	return &Instrumented{inner: inner, provider: provider, logger: logger}
}

// Score delegates to inner and records the outcome.
func (s *Instrumented) Score(ctx context.Context, features map[string]any) (score.Score, error) {
	start := time.Now()
	result, err := s.inner.Score(ctx, features)
	duration := time.Since(start)

	metrics.ScoringDuration.WithLabelValues(s.provider).Observe(duration.Seconds())
	if err != nil {
		metrics.ScoringRequestsTotal.WithLabelValues(s.provider, "error").Inc()
		s.logger.Debug("Scoring failed",
			zap.String("provider", s.provider),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return score.Score{}, fmt.Errorf("score (%s): %w: %w", s.provider, domain.ErrScoringUnavailable, err)
	}

	metrics.ScoringRequestsTotal.WithLabelValues(s.provider, "success").Inc()
	s.logger.Debug("Scoring completed",
		zap.String("provider", s.provider),
		zap.Duration("duration", duration),
		zap.Float64("score", result.Value()),
		zap.String("tier", string(result.Tier())),
	)
	return result, nil
}
