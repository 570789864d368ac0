package alertrule

import (
	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/repository/scoped"
)

// Record attribute names. The legacy* names are read as fallbacks only.
const (
	fieldTenantID    = "tenant_id"
	fieldCondition   = "condition_type"
	fieldThreshold   = "threshold_value"
	fieldNicheFilter = "niche_filter"
	fieldIsActive    = "is_active"
	fieldCreatedAt   = "created_at"

	legacyTenantID  = "user_id"
	legacyThreshold = "value"
	legacyNiche     = "niche"
)

func ruleToRecord(r alert.Rule) scoped.Record {
	rec := scoped.Record{
		fieldTenantID:    r.TenantID(),
		fieldCondition:   string(r.Condition()),
		fieldNicheFilter: r.NicheFilter(),
		fieldIsActive:    r.IsActive(),
		fieldCreatedAt:   r.CreatedAt(),
	}
	if v, ok := r.Threshold(); ok {
		rec[fieldThreshold] = v
	}
	return rec
}

func patchToRecord(p alert.Patch) scoped.Record {
	rec := scoped.Record{}
	if c := p.Condition(); c != nil {
		rec[fieldCondition] = string(*c)
	}
	if v := p.Threshold(); v != nil {
		rec[fieldThreshold] = *v
	}
	if n := p.NicheFilter(); n != nil {
		rec[fieldNicheFilter] = *n
	}
	if a := p.Active(); a != nil {
		rec[fieldIsActive] = *a
	}
	return rec
}

// recordToRule hydrates a rule. The owning tenant falls back to the partition it was read from.
func recordToRule(tenantID string, rec scoped.Record) alert.Rule {
	owner := firstString(rec, fieldTenantID, legacyTenantID)
	if owner == "" {
		owner = tenantID
	}

	var threshold *float64
	for _, key := range []string{fieldThreshold, legacyThreshold} {
		if v, ok := profile.Number(rec[key]); ok {
			threshold = &v
			break
		}
	}

	active := true
	if b, ok := rec[fieldIsActive].(bool); ok {
		active = b
	}
	createdAt, _ := profile.Number(rec[fieldCreatedAt])

	return alert.Reconstruct(
		rec.ID(),
		owner,
		alert.ConditionType(firstString(rec, fieldCondition)),
		threshold,
		firstString(rec, fieldNicheFilter, legacyNiche),
		active,
		createdAt,
	)
}

func firstString(rec scoped.Record, keys ...string) string {
	for _, k := range keys {
		if s, ok := rec[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
