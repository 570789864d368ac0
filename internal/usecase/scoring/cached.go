package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/influencersphere/internal/domain/score"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
)

// DefaultCacheSize is the number of feature sets whose scores are kept.
const DefaultCacheSize = 4096

// Cached memoizes scores by feature set. Failures are not cached.
type Cached struct {
	inner Scorer
	cache *lru.Cache[string, score.Score]
}

// NewCached wraps inner with an LRU of the given size.
func NewCached(inner Scorer, size int) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, score.Score](size)
	return &Cached{inner: inner, cache: cache}
}

// Score returns the cached score for features or computes and stores it.
func (c *Cached) Score(ctx context.Context, features map[string]any) (score.Score, error) {
	key, err := cacheKey(features)
	if err != nil {
		return c.inner.Score(ctx, features)
	}

	if s, ok := c.cache.Get(key); ok {
		metrics.ScoreCacheTotal.WithLabelValues("hit").Inc()
		return s, nil
	}
	metrics.ScoreCacheTotal.WithLabelValues("miss").Inc()

	s, err := c.inner.Score(ctx, features)
	if err != nil {
		return score.Score{}, err
	}
	c.cache.Add(key, s)
	return s, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int { return c.cache.Len() }

// cacheKey hashes the canonical JSON of features; encoding/json sorts map keys.
func cacheKey(features map[string]any) (string, error) {
	data, err := json.Marshal(features)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
