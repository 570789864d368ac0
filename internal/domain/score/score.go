// Package score holds the market score value object.
package score

import "math"

// Score bounds.
const (
	Min = 1.0
	Max = 100.0
)

// Tier is the market tier derived from a score.
type Tier string

const (
	TierAList      Tier = "A-List Talent"
	TierHighGrowth Tier = "High-Growth Asset"
	TierScouting   Tier = "Scouting Target"
)

// Score is a clamped market score with its tier and estimated post value.
type Score struct {
	value          float64
	tier           Tier
	estimatedValue float64
}

// New clamps raw to [Min, Max], rounds it to two decimals and derives the tier.
// NaN clamps to Min.
func New(raw float64) Score {
	v := raw
	switch {
	case math.IsNaN(v) || v < Min:
		v = Min
	case v > Max:
		v = Max
	}
	v = math.Round(v*100) / 100

	var (
		tier Tier
		est  float64
	)
	switch {
	case v >= 90:
		tier, est = TierAList, 5000+v*150
	case v >= 70:
		tier, est = TierHighGrowth, 2000+v*75
	default:
		tier, est = TierScouting, 500+v*30
	}
	return Score{value: v, tier: tier, estimatedValue: math.Round(est*100) / 100}
}

// Value returns the score in [Min, Max].
func (s Score) Value() float64 { return s.value }

// Tier returns the market tier.
func (s Score) Tier() Tier { return s.tier }

// EstimatedValue returns the estimated value of a sponsored post.
func (s Score) EstimatedValue() float64 { return s.estimatedValue }
