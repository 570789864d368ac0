package domain

import "context"

type tenantKey struct{}

// ContextWithTenant binds a tenant identity to the context.
// An empty tenant leaves the context unbound.
func ContextWithTenant(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		return ctx
	}
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// TenantFromContext returns the bound tenant identity, or "" if none is bound.
func TenantFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tenantKey{}).(string)
	return t
}
