package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/influencersphere/internal/domain"
)

// tenantEcho writes the bound tenant (or "-") as the response body.
func tenantEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := domain.TenantFromContext(r.Context())
		if t == "" {
			t = "-"
		}
		_, _ = w.Write([]byte(t))
	})
}

func serveAuth(tenants map[string]string, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	TenantAuthMiddleware(tenants)(tenantEcho()).ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_NoKeys_HeaderBindsTenant(t *testing.T) {
	rr := serveAuth(nil, "/api/v1/alerts", map[string]string{TenantHeader: "alice"})
	if rr.Code != http.StatusOK || rr.Body.String() != "alice" {
		t.Errorf("got %d %q, want 200 alice", rr.Code, rr.Body.String())
	}
}

func TestAuthMiddleware_NoKeys_NoHeaderLeavesUnbound(t *testing.T) {
	rr := serveAuth(map[string]string{"": "ghost"}, "/api/v1/alerts", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "-" {
		t.Errorf("got %d %q, want 200 -", rr.Code, rr.Body.String())
	}
}

func TestAuthMiddleware_KeyBindsTenant(t *testing.T) {
	tenants := map[string]string{"key-a": "alice", "key-b": "bob"}
	rr := serveAuth(tenants, "/api/v1/alerts", map[string]string{
		"Authorization": "Bearer key-b",
		TenantHeader:    "alice",
	})
	if rr.Code != http.StatusOK || rr.Body.String() != "bob" {
		t.Errorf("got %d %q, want 200 bob (header must be ignored)", rr.Code, rr.Body.String())
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tenants := map[string]string{"secret": "alice"}
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"unknown key", "Bearer wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rr := serveAuth(tenants, "/api/v1/alerts", headers)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("got %d, want 401", rr.Code)
			}
			var errResp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != codeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, codeUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_ExemptPaths(t *testing.T) {
	tenants := map[string]string{"secret": "alice"}
	for _, path := range []string{"/health", "/metrics"} {
		rr := serveAuth(tenants, path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", path, rr.Code)
		}
	}
}

func TestRouter_AuthEnforcedOnAPI(t *testing.T) {
	api := newTestAPI(t, map[string]string{"secret": "alice"})

	rr := api.do(t, http.MethodGet, "/api/v1/search/influencers", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("without key: got %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with key: got %d, want 200", rec.Code)
	}
}
