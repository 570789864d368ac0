package chi

import (
	"net/http"
	"strings"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/logger"
)

// TenantHeader binds the tenant when no API keys are configured.
const TenantHeader = "X-Tenant-ID"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// TenantAuthMiddleware resolves the caller's tenant and binds it to the request context.
// tenants maps API key to tenant id. With no keys configured the TenantHeader value is
// trusted as-is (development mode) and requests without it reach handlers unbound.
func TenantAuthMiddleware(tenants map[string]string) func(http.Handler) http.Handler {
	keys := make(map[string]string, len(tenants))
	for k, t := range tenants {
		if k != "" && t != "" {
			keys[k] = t
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, bindTenant(r, strings.TrimSpace(r.Header.Get(TenantHeader))))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			}

			tenant, ok := keys[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, bindTenant(r, tenant))
		})
	}
}

func bindTenant(r *http.Request, tenant string) *http.Request {
	if tenant == "" {
		return r
	}
	ctx := domain.ContextWithTenant(r.Context(), tenant)
	return r.WithContext(logger.WithTenant(ctx, tenant))
}
