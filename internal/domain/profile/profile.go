// Package profile holds the public creator profile aggregate.
package profile

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// Collection is the public collection holding profiles.
const Collection = "influencers"

// Record attribute names.
const (
	FieldID                 = "id"
	FieldUsername           = "username"
	FieldPlatform           = "platform"
	FieldFollowerCount      = "follower_count"
	FieldEngagementRate     = "average_engagement_rate"
	FieldNicheLabel         = "niche_label"
	FieldLastUpdated        = "last_updated"
	FieldBioSummary         = "bio_summary"
	FieldHistoricalDataLink = "historical_data_link"
	FieldFollowerGrowthRate = "follower_growth_rate"
)

// Profile is a creator profile (immutable value object).
// Attributes keeps every stored field, including auxiliary scoring features.
type Profile struct {
	id             string
	username       string
	platform       string
	followerCount  int64
	engagementRate float64
	nicheLabel     string
	lastUpdated    float64
	bioSummary     string
	attributes     map[string]any
}

// Params are the inputs for a freshly built profile.
type Params struct {
	Username       string
	Platform       string
	FollowerCount  int64
	EngagementRate float64
	NicheLabel     string
	LastUpdated    float64
	BioSummary     string
	Extra          map[string]any
}

// ID derives the profile id from platform and username.
func ID(platform, username string) string {
	return strings.ToLower(platform + "_" + username)
}

// New validates params and builds a profile with a derived id.
func New(p Params) (Profile, error) {
	if p.Username == "" {
		return Profile{}, fmt.Errorf("username is required")
	}
	if p.Platform == "" {
		return Profile{}, fmt.Errorf("platform is required")
	}
	if strings.ContainsRune(p.Username, '/') || strings.ContainsRune(p.Platform, '/') {
		return Profile{}, fmt.Errorf("username and platform must not contain '/'")
	}
	if p.FollowerCount < 0 {
		return Profile{}, fmt.Errorf("follower_count must be non-negative")
	}

	id := ID(p.Platform, p.Username)
	attrs := make(map[string]any, len(p.Extra)+9)
	maps.Copy(attrs, p.Extra)
	attrs[FieldID] = id
	attrs[FieldUsername] = p.Username
	attrs[FieldPlatform] = p.Platform
	attrs[FieldFollowerCount] = p.FollowerCount
	attrs[FieldEngagementRate] = p.EngagementRate
	attrs[FieldNicheLabel] = p.NicheLabel
	attrs[FieldLastUpdated] = p.LastUpdated
	attrs[FieldBioSummary] = p.BioSummary
	attrs[FieldHistoricalDataLink] = "/data/" + id + "/history"

	return Profile{
		id:             id,
		username:       p.Username,
		platform:       p.Platform,
		followerCount:  p.FollowerCount,
		engagementRate: p.EngagementRate,
		nicheLabel:     p.NicheLabel,
		lastUpdated:    p.LastUpdated,
		bioSummary:     p.BioSummary,
		attributes:     attrs,
	}, nil
}

// FromRecord hydrates a profile from a stored record. Missing or mistyped
// fields read as zero values.
func FromRecord(id string, rec map[string]any) Profile {
	attrs := maps.Clone(rec)
	if attrs == nil {
		attrs = make(map[string]any)
	}
	attrs[FieldID] = id
	followers, _ := Number(rec[FieldFollowerCount])
	engagement, _ := Number(rec[FieldEngagementRate])
	updated, _ := Number(rec[FieldLastUpdated])
	return Profile{
		id:             id,
		username:       str(rec[FieldUsername]),
		platform:       str(rec[FieldPlatform]),
		followerCount:  int64(followers),
		engagementRate: engagement,
		nicheLabel:     str(rec[FieldNicheLabel]),
		lastUpdated:    updated,
		bioSummary:     str(rec[FieldBioSummary]),
		attributes:     attrs,
	}
}

// ID returns the profile identifier.
func (p Profile) ID() string { return p.id }

// Username returns the creator handle.
func (p Profile) Username() string { return p.username }

// Platform returns the source platform.
func (p Profile) Platform() string { return p.platform }

// FollowerCount returns the follower count.
func (p Profile) FollowerCount() int64 { return p.followerCount }

// EngagementRate returns the average engagement rate in percent.
func (p Profile) EngagementRate() float64 { return p.engagementRate }

// NicheLabel returns the assigned niche.
func (p Profile) NicheLabel() string { return p.nicheLabel }

// LastUpdated returns the last ingestion time in epoch seconds.
func (p Profile) LastUpdated() float64 { return p.lastUpdated }

// BioSummary returns the first line of the bio.
func (p Profile) BioSummary() string { return p.bioSummary }

// Record returns a copy of every stored attribute.
func (p Profile) Record() map[string]any { return maps.Clone(p.attributes) }

// Features returns the numeric attributes used for scoring.
// last_updated is excluded so that re-ingesting unchanged metrics yields the same features.
func (p Profile) Features() map[string]any {
	out := make(map[string]any)
	for k, v := range p.attributes {
		if k == FieldLastUpdated {
			continue
		}
		if n, ok := Number(v); ok {
			out[k] = n
		}
	}
	return out
}

// Number converts a decoded JSON value to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
