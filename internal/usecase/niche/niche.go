// Package niche assigns a content niche label to a creator from their bio and captions.
package niche

import (
	"context"
	"strings"
)

// Niche labels.
const (
	Cooking   = "Minimalist Cooking"
	Fitness   = "Home Fitness"
	Lifestyle = "Lifestyle"
)

// Profiler labels a creator's niche.
type Profiler interface {
	Label(ctx context.Context, bio string, captions []string) (string, error)
}

// Keyword labels niches by keyword presence. Cooking keywords win over fitness ones.
type Keyword struct{}

// NewKeyword creates a keyword profiler.
func NewKeyword() Keyword { return Keyword{} }

// Label implements Profiler. It never fails.
func (Keyword) Label(_ context.Context, bio string, captions []string) (string, error) {
	return keywordLabel(corpus(bio, captions)), nil
}

func keywordLabel(text string) string {
	switch {
	case strings.Contains(text, "food") || strings.Contains(text, "recipe"):
		return Cooking
	case strings.Contains(text, "workout") || strings.Contains(text, "fitness"):
		return Fitness
	default:
		return Lifestyle
	}
}

func corpus(bio string, captions []string) string {
	parts := make([]string, 0, len(captions)+1)
	if bio != "" {
		parts = append(parts, bio)
	}
	for _, c := range captions {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}
