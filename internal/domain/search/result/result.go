// Package result holds scored search output.
package result

import (
	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
)

// ScoredProfile is a profile with its market score.
type ScoredProfile struct {
	profile profile.Profile
	score   score.Score
}

// New creates a scored profile.
func New(p profile.Profile, s score.Score) ScoredProfile {
	return ScoredProfile{profile: p, score: s}
}

// Profile returns the underlying profile.
func (r ScoredProfile) Profile() profile.Profile { return r.profile }

// Score returns the market score.
func (r ScoredProfile) Score() score.Score { return r.score }

// Record returns the profile attributes plus market_score, market_tier and estimated_post_value.
func (r ScoredProfile) Record() map[string]any {
	rec := r.profile.Record()
	rec["market_score"] = r.score.Value()
	rec["market_tier"] = string(r.score.Tier())
	rec["estimated_post_value"] = r.score.EstimatedValue()
	return rec
}

// Page is one page of ranked results.
type Page struct {
	Items    []ScoredProfile
	Total    int
	Page     int
	PageSize int
}

// HasMore reports whether later pages hold further results.
func (p Page) HasMore() bool {
	if p.PageSize <= 0 {
		return false
	}
	pages := (p.Total + p.PageSize - 1) / p.PageSize
	return p.Page < pages
}
