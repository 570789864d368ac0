// Package alertrule persists alert rules in their owner's private partition.
package alertrule

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
	"github.com/kailas-cloud/influencersphere/internal/domain/scope"
	"github.com/kailas-cloud/influencersphere/internal/repository/scoped"
)

// TenantsCollection is the evaluation principal's private registry of rule owners.
const TenantsCollection = "alert_tenants"

// scopedStore is the consumer interface for the scoped store (ISP).
type scopedStore interface {
	Get(ctx context.Context, collection, id string, sc scope.Scope) (scoped.Record, bool, error)
	List(ctx context.Context, collection string, sc scope.Scope) ([]scoped.Record, error)
	Put(ctx context.Context, collection, id string, data scoped.Record, sc scope.Scope, merge bool) error
	Add(ctx context.Context, collection string, data scoped.Record, sc scope.Scope) (string, error)
	Delete(ctx context.Context, collection, id string, sc scope.Scope) error
}

// Repo implements usecase/alertrule.Repository and usecase/alerting.RuleSource.
type Repo struct {
	store     scopedStore
	principal string
}

// New creates an alert rule repository. principal owns the tenant registry.
func New(s scopedStore, principal string) *Repo {
	return &Repo{store: s, principal: principal}
}

// Create stores a new rule in its owner's partition and returns it with its id.
func (r *Repo) Create(ctx context.Context, rule alert.Rule) (alert.Rule, error) {
	id, err := r.store.Add(ctx, alert.Collection, ruleToRecord(rule), scope.Private(rule.TenantID()))
	if err != nil {
		return alert.Rule{}, fmt.Errorf("create rule: %w", err)
	}
	return rule.WithID(id), nil
}

// List returns every rule in the tenant's partition, active or not.
func (r *Repo) List(ctx context.Context, tenantID string) ([]alert.Rule, error) {
	recs, err := r.store.List(ctx, alert.Collection, scope.Private(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	rules := make([]alert.Rule, 0, len(recs))
	for _, rec := range recs {
		rules = append(rules, recordToRule(tenantID, rec))
	}
	return rules, nil
}

// Get returns one rule or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, tenantID, id string) (alert.Rule, error) {
	rec, ok, err := r.store.Get(ctx, alert.Collection, id, scope.Private(tenantID))
	if err != nil {
		return alert.Rule{}, fmt.Errorf("get rule %s: %w", id, err)
	}
	if !ok {
		return alert.Rule{}, fmt.Errorf("rule %s: %w", id, domain.ErrNotFound)
	}
	return recordToRule(tenantID, rec), nil
}

// Update merge-writes the patch fields onto an existing rule.
func (r *Repo) Update(ctx context.Context, tenantID, id string, p alert.Patch) (alert.Rule, error) {
	current, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return alert.Rule{}, err
	}
	if err := r.store.Put(ctx, alert.Collection, id, patchToRecord(p), scope.Private(tenantID), true); err != nil {
		return alert.Rule{}, fmt.Errorf("update rule %s: %w", id, err)
	}
	return current.Apply(p), nil
}

// Delete removes a rule from the tenant's partition.
func (r *Repo) Delete(ctx context.Context, tenantID, id string) error {
	if err := r.store.Delete(ctx, alert.Collection, id, scope.Private(tenantID)); err != nil {
		return fmt.Errorf("delete rule %s: %w", id, err)
	}
	return nil
}

// RegisterTenant records tenantID in the principal's registry. Idempotent.
func (r *Repo) RegisterTenant(ctx context.Context, tenantID string) error {
	if tenantID == r.principal {
		return nil
	}
	rec := scoped.Record{"tenant_id": tenantID}
	if err := r.store.Put(ctx, TenantsCollection, tenantID, rec, scope.Private(r.principal), false); err != nil {
		return fmt.Errorf("register tenant: %w", err)
	}
	return nil
}

// Tenants returns the partitions reachable to the principal: itself first, then the registry in store order.
func (r *Repo) Tenants(ctx context.Context) ([]string, error) {
	recs, err := r.store.List(ctx, TenantsCollection, scope.Private(r.principal))
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	out := []string{r.principal}
	seen := map[string]bool{r.principal: true}
	for _, rec := range recs {
		id := rec.ID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
