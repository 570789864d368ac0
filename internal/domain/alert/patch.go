package alert

import "fmt"

// Patch is a partial rule update. Nil fields are unchanged.
type Patch struct {
	condition   *ConditionType
	threshold   *float64
	nicheFilter *string
	active      *bool
}

// NewPatch validates and creates a Patch. At least one field must be provided.
func NewPatch(condition *ConditionType, threshold *float64, nicheFilter *string, active *bool) (Patch, error) {
	if condition == nil && threshold == nil && nicheFilter == nil && active == nil {
		return Patch{}, fmt.Errorf("at least one field must be provided")
	}
	if condition != nil {
		if err := validateCondition(*condition); err != nil {
			return Patch{}, err
		}
	}
	if threshold != nil {
		if err := validateThreshold(threshold); err != nil {
			return Patch{}, err
		}
	}
	return Patch{condition: condition, threshold: threshold, nicheFilter: nicheFilter, active: active}, nil
}

// Condition returns the new condition, or nil if unchanged.
func (p Patch) Condition() *ConditionType { return p.condition }

// Threshold returns the new threshold, or nil if unchanged.
func (p Patch) Threshold() *float64 { return p.threshold }

// NicheFilter returns the new niche filter, or nil if unchanged.
func (p Patch) NicheFilter() *string { return p.nicheFilter }

// Active returns the new active flag, or nil if unchanged.
func (p Patch) Active() *bool { return p.active }
