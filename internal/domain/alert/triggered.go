package alert

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
)

// Triggered is an alert produced by one evaluation cycle. It is not persisted.
type Triggered struct {
	RuleID      string        `json:"rule_id"`
	TenantID    string        `json:"tenant_id"`
	ProfileID   string        `json:"profile_id"`
	Username    string        `json:"triggered_on"`
	Condition   ConditionType `json:"condition_type"`
	Threshold   float64       `json:"threshold_value"`
	Message     string        `json:"message"`
	ProfileLink string        `json:"profile_link"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NewTriggered builds the alert emitted when p satisfies r.
func NewTriggered(r Rule, p profile.Profile, at time.Time) Triggered {
	threshold, _ := r.Threshold()
	return Triggered{
		RuleID:    r.ID(),
		TenantID:  r.TenantID(),
		ProfileID: p.ID(),
		Username:  p.Username(),
		Condition: r.Condition(),
		Threshold: threshold,
		Message: fmt.Sprintf("Market alert triggered! Influencer %s meets your criteria (%s >= %s).",
			p.Username(), r.Condition(), strconv.FormatFloat(threshold, 'f', -1, 64)),
		ProfileLink: "/influencers/" + p.ID(),
		GeneratedAt: at,
	}
}
