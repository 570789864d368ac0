// Package scope models where a record lives: the shared public pool or a tenant-private partition.
package scope

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/influencersphere/internal/domain"
)

// Kind distinguishes public from private scopes.
type Kind string

const (
	// KindPublic is the shared pool visible to every caller.
	KindPublic Kind = "public"
	// KindPrivate is a single tenant's partition.
	KindPrivate Kind = "private"
)

// Scope is either Public or Private(tenant). The zero value is an unbound private scope.
type Scope struct {
	kind     Kind
	tenantID string
}

// Public returns the shared scope.
func Public() Scope { return Scope{kind: KindPublic} }

// Private returns the partition of the given tenant.
func Private(tenantID string) Scope { return Scope{kind: KindPrivate, tenantID: tenantID} }

// FromContext returns Private for the tenant bound to ctx.
// Resolution fails later if no tenant is bound.
func FromContext(ctx context.Context) Scope {
	return Private(domain.TenantFromContext(ctx))
}

// Kind returns the scope kind.
func (s Scope) Kind() Kind {
	if s.kind == "" {
		return KindPrivate
	}
	return s.kind
}

// IsPublic reports whether the scope is the shared pool.
func (s Scope) IsPublic() bool { return s.kind == KindPublic }

// TenantID returns the owning tenant ("" for public).
func (s Scope) TenantID() string { return s.tenantID }

func (s Scope) String() string {
	if s.IsPublic() {
		return string(KindPublic)
	}
	return fmt.Sprintf("%s(%s)", KindPrivate, s.tenantID)
}

// Path is a resolved collection location in the backing store.
type Path string

func (p Path) String() string { return string(p) }

const rootPrefix = "artifacts"

// Resolve derives the collection path for a scope.
//
//	private: artifacts/<app>/users/<tenant>/<collection>
//	public:  artifacts/<app>/public/data/<collection>
func Resolve(appID string, s Scope, collection string) (Path, error) {
	if err := ValidateSegment("app id", appID); err != nil {
		return "", err
	}
	if err := ValidateSegment("collection", collection); err != nil {
		return "", err
	}
	if s.IsPublic() {
		return Path(strings.Join([]string{rootPrefix, appID, "public", "data", collection}, "/")), nil
	}
	if s.tenantID == "" {
		return "", fmt.Errorf("private collection %q requires a tenant identity: %w", collection, domain.ErrUnauthorized)
	}
	if strings.ContainsRune(s.tenantID, '/') {
		return "", fmt.Errorf("malformed tenant identity: %w", domain.ErrUnauthorized)
	}
	return Path(strings.Join([]string{rootPrefix, appID, "users", s.tenantID, collection}, "/")), nil
}

// Resolver binds Resolve to a single application id.
type Resolver struct {
	appID string
}

// NewResolver creates a resolver for the given application.
func NewResolver(appID string) Resolver {
	return Resolver{appID: appID}
}

// Resolve derives the collection path for a scope.
func (r Resolver) Resolve(s Scope, collection string) (Path, error) {
	return Resolve(r.appID, s, collection)
}

// ValidateSegment rejects empty names and names that would escape their path segment.
func ValidateSegment(what, name string) error {
	if name == "" {
		return domain.NewFieldError(what, "is required")
	}
	if strings.ContainsRune(name, '/') {
		return domain.NewFieldError(what, "must not contain '/'")
	}
	return nil
}
