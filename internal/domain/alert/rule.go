// Package alert holds alert rules and the alerts they trigger.
package alert

import (
	"fmt"
	"math"
	"time"
)

// Collection is the private collection holding a tenant's rules.
const Collection = "user_alerts"

// ConditionType names the profile metric a rule compares against its threshold.
type ConditionType string

const (
	// ConditionMinEngagementRate triggers when engagement rate >= threshold.
	ConditionMinEngagementRate ConditionType = "min_engagement_rate"
	// ConditionMinMarketScore triggers when market score >= threshold.
	ConditionMinMarketScore ConditionType = "min_market_score"
)

// IsValid reports whether the condition type is known.
func (c ConditionType) IsValid() bool {
	switch c {
	case ConditionMinEngagementRate, ConditionMinMarketScore:
		return true
	}
	return false
}

// Rule is a tenant's threshold rule (immutable value object).
type Rule struct {
	id           string
	tenantID     string
	condition    ConditionType
	threshold    float64
	hasThreshold bool
	nicheFilter  string
	active       bool
	createdAt    float64
}

// NewRule validates and creates an active rule stamped with createdAt.
func NewRule(tenantID string, condition ConditionType, threshold *float64, nicheFilter string, active *bool,
	createdAt time.Time,
) (Rule, error) {
	if tenantID == "" {
		return Rule{}, fmt.Errorf("tenant is required")
	}
	if err := validateCondition(condition); err != nil {
		return Rule{}, err
	}
	if err := validateThreshold(threshold); err != nil {
		return Rule{}, err
	}
	isActive := true
	if active != nil {
		isActive = *active
	}
	return Rule{
		tenantID:     tenantID,
		condition:    condition,
		threshold:    *threshold,
		hasThreshold: true,
		nicheFilter:  nicheFilter,
		active:       isActive,
		createdAt:    float64(createdAt.UnixNano()) / 1e9,
	}, nil
}

// Reconstruct creates a Rule without validation (storage hydration).
// threshold is nil when the stored record lacks one.
func Reconstruct(id, tenantID string, condition ConditionType, threshold *float64, nicheFilter string,
	active bool, createdAt float64,
) Rule {
	r := Rule{
		id: id, tenantID: tenantID, condition: condition, nicheFilter: nicheFilter,
		active: active, createdAt: createdAt,
	}
	if threshold != nil {
		r.threshold, r.hasThreshold = *threshold, true
	}
	return r
}

// WithID returns a copy carrying the store-assigned id.
func (r Rule) WithID(id string) Rule {
	r.id = id
	return r
}

// ID returns the store-assigned identifier.
func (r Rule) ID() string { return r.id }

// TenantID returns the owning tenant.
func (r Rule) TenantID() string { return r.tenantID }

// Condition returns the condition type.
func (r Rule) Condition() ConditionType { return r.condition }

// Threshold returns the threshold and whether one is set.
func (r Rule) Threshold() (float64, bool) { return r.threshold, r.hasThreshold }

// NicheFilter returns the niche restriction ("" matches any niche).
func (r Rule) NicheFilter() string { return r.nicheFilter }

// IsActive reports whether the rule takes part in evaluation.
func (r Rule) IsActive() bool { return r.active }

// CreatedAt returns the creation time in epoch seconds.
func (r Rule) CreatedAt() float64 { return r.createdAt }

// Evaluable reports whether the rule carries both a condition and a threshold.
func (r Rule) Evaluable() bool { return r.condition != "" && r.hasThreshold }

// MatchesNiche reports whether a profile niche passes the rule's niche filter.
func (r Rule) MatchesNiche(niche string) bool {
	return r.nicheFilter == "" || r.nicheFilter == niche
}

// Apply returns a copy with the patch fields overlaid.
func (r Rule) Apply(p Patch) Rule {
	if p.condition != nil {
		r.condition = *p.condition
	}
	if p.threshold != nil {
		r.threshold, r.hasThreshold = *p.threshold, true
	}
	if p.nicheFilter != nil {
		r.nicheFilter = *p.nicheFilter
	}
	if p.active != nil {
		r.active = *p.active
	}
	return r
}

func validateCondition(c ConditionType) error {
	if c == "" {
		return fmt.Errorf("condition_type is required")
	}
	if !c.IsValid() {
		return fmt.Errorf("unknown condition_type %q", c)
	}
	return nil
}

func validateThreshold(v *float64) error {
	if v == nil {
		return fmt.Errorf("threshold_value is required")
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fmt.Errorf("threshold_value must be finite")
	}
	return nil
}
