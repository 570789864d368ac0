package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/domain/search/request"
	"github.com/kailas-cloud/influencersphere/internal/domain/search/result"
	"github.com/kailas-cloud/influencersphere/internal/logger"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
)

// DefaultWorkers bounds concurrent scoring calls per search.
const DefaultWorkers = 4

// Options tune paging and scoring concurrency. Zero values use defaults.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Workers         int
}

// Service filters, scores, ranks and paginates the public profile pool.
type Service struct {
	profiles ProfileSource
	scorer   Scorer
	opts     Options
}

// New creates a search service.
func New(profiles ProfileSource, scorer Scorer, opts Options) *Service {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = request.DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = request.MaxPageSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Service{profiles: profiles, scorer: scorer, opts: opts}
}

// Search returns one page of matching profiles ranked by market score, highest first.
// Profiles whose scoring fails are left out of the ranking.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Page, error) {
	start := time.Now()
	page, err := s.search(ctx, req)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Page{}, err
	}
	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	return page, nil
}

func (s *Service) search(ctx context.Context, req request.Request) (result.Page, error) {
	pool, err := s.profiles.List(ctx)
	if err != nil {
		return result.Page{}, fmt.Errorf("search: %w", err)
	}

	criteria := req.Criteria()
	matched := make([]profile.Profile, 0, len(pool))
	for _, p := range pool {
		if criteria.Matches(p) {
			matched = append(matched, p)
		}
	}

	ranked, err := s.scoreAll(ctx, matched)
	if err != nil {
		return result.Page{}, err
	}
	slices.SortStableFunc(ranked, func(a, b result.ScoredProfile) int {
		return cmp.Compare(b.Score().Value(), a.Score().Value())
	})

	pageNum, size, offset := req.Window(s.opts.DefaultPageSize, s.opts.MaxPageSize)
	items := []result.ScoredProfile{}
	if offset < len(ranked) {
		items = ranked[offset:min(offset+size, len(ranked))]
	}
	return result.Page{Items: items, Total: len(ranked), Page: pageNum, PageSize: size}, nil
}

// scoreAll scores profiles with bounded concurrency, keeping input order
// and dropping profiles that fail to score.
func (s *Service) scoreAll(ctx context.Context, profiles []profile.Profile) ([]result.ScoredProfile, error) {
	scored := make([]result.ScoredProfile, len(profiles))
	ok := make([]bool, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, p := range profiles {
		g.Go(func() error {
			sc, err := s.scorer.Score(gctx, p.Features())
			if err != nil {
				metrics.SearchExcludedTotal.Inc()
				logger.FromContext(ctx).Warn("Excluding profile from search results",
					zap.String("profile_id", p.ID()),
					zap.Error(err),
				)
				return nil
			}
			scored[i] = result.New(p, sc)
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]result.ScoredProfile, 0, len(profiles))
	for i := range scored {
		if ok[i] {
			out = append(out, scored[i])
		}
	}
	return out, nil
}

// Profile returns one profile with its live market score.
func (s *Service) Profile(ctx context.Context, id string) (result.ScoredProfile, error) {
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return result.ScoredProfile{}, err
	}
	sc, err := s.scorer.Score(ctx, p.Features())
	if err != nil {
		return result.ScoredProfile{}, fmt.Errorf("score profile %s: %w", id, err)
	}
	return result.New(p, sc), nil
}
