package alertrule

import (
	"context"

	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
)

// Repository defines the storage contract for alert rules.
type Repository interface {
	Create(ctx context.Context, rule alert.Rule) (alert.Rule, error)
	List(ctx context.Context, tenantID string) ([]alert.Rule, error)
	Get(ctx context.Context, tenantID, id string) (alert.Rule, error)
	Update(ctx context.Context, tenantID, id string, p alert.Patch) (alert.Rule, error)
	Delete(ctx context.Context, tenantID, id string) error
	RegisterTenant(ctx context.Context, tenantID string) error
}
