package alertrule

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
)

// CreateParams are the caller-supplied fields of a new rule.
type CreateParams struct {
	Condition   alert.ConditionType
	Threshold   *float64
	NicheFilter string
	Active      *bool
}

// Service manages the calling tenant's alert rules.
// The tenant is taken from the request context.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates an alert rule service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create validates and stores a rule, then records its owner for evaluation.
func (s *Service) Create(ctx context.Context, p CreateParams) (alert.Rule, error) {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return alert.Rule{}, err
	}

	rule, err := alert.NewRule(tenant, p.Condition, p.Threshold, p.NicheFilter, p.Active, s.now())
	if err != nil {
		return alert.Rule{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	created, err := s.repo.Create(ctx, rule)
	if err != nil {
		return alert.Rule{}, err
	}
	if err := s.repo.RegisterTenant(ctx, tenant); err != nil {
		return alert.Rule{}, err
	}
	return created, nil
}

// List returns the caller's rules.
func (s *Service) List(ctx context.Context) ([]alert.Rule, error) {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenant)
}

// Get returns one of the caller's rules or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (alert.Rule, error) {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return alert.Rule{}, err
	}
	return s.repo.Get(ctx, tenant, id)
}

// Update merge-writes the supplied fields.
func (s *Service) Update(
	ctx context.Context, id string,
	condition *alert.ConditionType, threshold *float64, nicheFilter *string, active *bool,
) (alert.Rule, error) {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return alert.Rule{}, err
	}

	patch, err := alert.NewPatch(condition, threshold, nicheFilter, active)
	if err != nil {
		return alert.Rule{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return s.repo.Update(ctx, tenant, id, patch)
}

// Delete removes one of the caller's rules. Deleting a missing rule succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, tenant, id)
}

func tenantOf(ctx context.Context) (string, error) {
	tenant := domain.TenantFromContext(ctx)
	if tenant == "" {
		return "", fmt.Errorf("alert rules: no tenant bound: %w", domain.ErrUnauthorized)
	}
	return tenant, nil
}
