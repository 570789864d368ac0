// Package filter holds the profile predicates applied by search.
package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
)

// MaxTextLength is the maximum free-text query length.
const MaxTextLength = 256

// Criteria is a conjunction of optional profile predicates.
type Criteria struct {
	niche         string
	minEngagement *float64
	followers     Range
	text          string
}

// New validates and creates Criteria. Empty/nil arguments disable their predicate.
func New(niche string, minEngagement *float64, minFollowers, maxFollowers *int64, text string) (Criteria, error) {
	if minEngagement != nil && *minEngagement < 0 {
		return Criteria{}, fmt.Errorf("min_engagement must be non-negative")
	}
	if len(text) > MaxTextLength {
		return Criteria{}, fmt.Errorf("query too long (max %d chars)", MaxTextLength)
	}
	followers, err := NewRange(minFollowers, maxFollowers)
	if err != nil {
		return Criteria{}, err
	}
	return Criteria{
		niche:         niche,
		minEngagement: minEngagement,
		followers:     followers,
		text:          strings.ToLower(strings.TrimSpace(text)),
	}, nil
}

// Niche returns the required niche ("" if unset).
func (c Criteria) Niche() string { return c.niche }

// MinEngagement returns the engagement floor, or nil if unset.
func (c Criteria) MinEngagement() *float64 { return c.minEngagement }

// Followers returns the follower count range.
func (c Criteria) Followers() Range { return c.followers }

// Text returns the normalized free-text query.
func (c Criteria) Text() string { return c.text }

// IsEmpty reports whether no predicate is set.
func (c Criteria) IsEmpty() bool {
	return c.niche == "" && c.minEngagement == nil && c.followers.IsUnbounded() && c.text == ""
}

// Matches reports whether p passes every predicate. Stops at the first failure.
func (c Criteria) Matches(p profile.Profile) bool {
	if c.niche != "" && p.NicheLabel() != c.niche {
		return false
	}
	if c.minEngagement != nil && p.EngagementRate() < *c.minEngagement {
		return false
	}
	if !c.followers.Contains(p.FollowerCount()) {
		return false
	}
	if c.text != "" &&
		!strings.Contains(strings.ToLower(p.Username()), c.text) &&
		!strings.Contains(strings.ToLower(p.BioSummary()), c.text) {
		return false
	}
	return true
}

// Range is an inclusive follower count range. Nil bounds are open.
type Range struct {
	gte *int64
	lte *int64
}

// NewRange validates and creates a Range.
func NewRange(gte, lte *int64) (Range, error) {
	if gte != nil && *gte < 0 {
		return Range{}, fmt.Errorf("min_followers must be non-negative")
	}
	if lte != nil && *lte < 0 {
		return Range{}, fmt.Errorf("max_followers must be non-negative")
	}
	if gte != nil && lte != nil && *gte > *lte {
		return Range{}, fmt.Errorf("min_followers must not exceed max_followers")
	}
	return Range{gte: gte, lte: lte}, nil
}

// GTE returns the lower inclusive bound.
func (r Range) GTE() *int64 { return r.gte }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *int64 { return r.lte }

// IsUnbounded reports whether neither bound is set.
func (r Range) IsUnbounded() bool { return r.gte == nil && r.lte == nil }

// Contains reports whether v lies within the range.
func (r Range) Contains(v int64) bool {
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}
