package niche

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/domain"
)

const instruction = "Represent the content niche of this creator: "

// Anchor is a niche label with the description its reference vector is embedded from.
type Anchor struct {
	Label       string
	Description string
}

// DefaultAnchors cover every label the keyword profiler produces.
var DefaultAnchors = []Anchor{
	{Cooking, "food, recipes, home cooking, meal prep, simple kitchen"},
	{Fitness, "workouts, fitness, home training, exercise routines, strength"},
	{Lifestyle, "daily life, travel, fashion, personal vlogs, home and family"},
}

// Embedding labels a creator with the anchor nearest by cosine similarity.
// Provider failures fall back to the keyword profiler.
type Embedding struct {
	embedder domain.Embedder
	anchors  []Anchor
	fallback Profiler
	logger   *zap.Logger

	mu      sync.Mutex
	vectors [][]float32
}

// NewEmbedding creates an embedding profiler. Nil anchors use DefaultAnchors.
func NewEmbedding(e domain.Embedder, anchors []Anchor, logger *zap.Logger) *Embedding {
	if len(anchors) == 0 {
		anchors = DefaultAnchors
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedding{
		embedder: domain.NewInstructionEmbedder(e, instruction),
		anchors:  anchors,
		fallback: NewKeyword(),
		logger:   logger,
	}
}

// Label implements Profiler.
func (p *Embedding) Label(ctx context.Context, bio string, captions []string) (string, error) {
	text := corpus(bio, captions)
	if text == "" {
		return p.fallback.Label(ctx, bio, captions)
	}

	label, err := p.nearest(ctx, text)
	if err != nil {
		p.logger.Warn("Embedding niche profiler failed, using keywords", zap.Error(err))
		return p.fallback.Label(ctx, bio, captions)
	}
	return label, nil
}

func (p *Embedding) nearest(ctx context.Context, text string) (string, error) {
	anchors, err := p.anchorVectors(ctx)
	if err != nil {
		return "", err
	}
	res, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return "", err
	}

	best, bestSim := -1, math.Inf(-1)
	for i, v := range anchors {
		sim, ok := cosine(res.Embedding, v)
		if ok && sim > bestSim {
			best, bestSim = i, sim
		}
	}
	if best < 0 {
		return "", fmt.Errorf("no comparable anchor: %w", domain.ErrEmbeddingProvider)
	}
	return p.anchors[best].Label, nil
}

// anchorVectors embeds the anchors once and caches them.
func (p *Embedding) anchorVectors(ctx context.Context) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vectors != nil {
		return p.vectors, nil
	}

	texts := make([]string, len(p.anchors))
	for i, a := range p.anchors {
		texts[i] = a.Description
	}
	res, err := domain.EmbedAll(ctx, p.embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("embed anchors: %w", err)
	}
	p.vectors = res.Embeddings
	return p.vectors, nil
}

// cosine returns the cosine similarity of a and b. ok is false for
// mismatched dimensions or zero vectors.
func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
