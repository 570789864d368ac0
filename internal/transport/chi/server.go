package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
	"github.com/kailas-cloud/influencersphere/internal/domain/search/filter"
	"github.com/kailas-cloud/influencersphere/internal/domain/search/request"
	alertruleuc "github.com/kailas-cloud/influencersphere/internal/usecase/alertrule"
	healthuc "github.com/kailas-cloud/influencersphere/internal/usecase/health"
	ingestionuc "github.com/kailas-cloud/influencersphere/internal/usecase/ingestion"
	searchuc "github.com/kailas-cloud/influencersphere/internal/usecase/search"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the market API.
type Server struct {
	search        *searchuc.Service
	rules         *alertruleuc.Service
	ingestion     *ingestionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	rules *alertruleuc.Service,
	ingestion *ingestionuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:    search,
		rules:     rules,
		ingestion: ingestion,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
		sentinelHandler(domain.ErrScoringUnavailable, http.StatusServiceUnavailable, codeScoringUnavailable),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search/influencers", s.SearchInfluencers)
		r.Get("/influencers/{id}", s.GetInfluencer)

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", s.CreateAlert)
			r.Get("/", s.ListAlerts)
			r.Get("/{id}", s.GetAlert)
			r.Patch("/{id}", s.UpdateAlert)
			r.Delete("/{id}", s.DeleteAlert)
		})

		r.Post("/ingestion", s.Ingest)
	})
}

// SearchInfluencers handles GET /api/v1/search/influencers.
func (s *Server) SearchInfluencers(w http.ResponseWriter, r *http.Request) {
	var params searchParams
	query := r.URL.Query()
	for _, p := range []struct {
		name string
		dest any
	}{
		{"q", &params.Q},
		{"niche", &params.Niche},
		{"min_engagement", &params.MinEngagement},
		{"min_followers", &params.MinFollowers},
		{"max_followers", &params.MaxFollowers},
		{"page", &params.Page},
		{"limit", &params.Limit},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, query, p.dest); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid format for parameter "+p.name)
			return
		}
	}

	criteria, err := filter.New(deref(params.Niche), params.MinEngagement,
		params.MinFollowers, params.MaxFollowers, deref(params.Q))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	req, err := request.New(criteria, deref(params.Page), deref(params.Limit))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	page, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// GetInfluencer handles GET /api/v1/influencers/{id}.
func (s *Server) GetInfluencer(w http.ResponseWriter, r *http.Request) {
	sp, err := s.search.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sp.Record())
}

// CreateAlert handles POST /api/v1/alerts.
func (s *Server) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rule, err := s.rules.Create(r.Context(), alertruleuc.CreateParams{
		Condition:   alert.ConditionType(req.ConditionType),
		Threshold:   req.ThresholdValue,
		NicheFilter: req.NicheFilter,
		Active:      req.IsActive,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ruleToResponse(rule))
}

// ListAlerts handles GET /api/v1/alerts.
func (s *Server) ListAlerts(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]alertRuleResponse, len(rules))
	for i, rule := range rules {
		items[i] = ruleToResponse(rule)
	}
	writeJSON(w, http.StatusOK, alertRuleListResponse{Items: items, Count: len(items)})
}

// GetAlert handles GET /api/v1/alerts/{id}.
func (s *Server) GetAlert(w http.ResponseWriter, r *http.Request) {
	rule, err := s.rules.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleToResponse(rule))
}

// UpdateAlert handles PATCH /api/v1/alerts/{id}.
func (s *Server) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	var req patchAlertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var condition *alert.ConditionType
	if req.ConditionType != nil {
		c := alert.ConditionType(*req.ConditionType)
		condition = &c
	}

	rule, err := s.rules.Update(r.Context(), chi.URLParam(r, "id"),
		condition, req.ThresholdValue, req.NicheFilter, req.IsActive)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleToResponse(rule))
}

// DeleteAlert handles DELETE /api/v1/alerts/{id}.
func (s *Server) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.rules.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Ingest handles POST /api/v1/ingestion.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if !decodeBody(w, r, &raw) {
		return
	}

	id, err := s.ingestion.Ingest(r.Context(), raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ingestionResponse{Status: "success", ProfileID: id})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Scheduler: report.Scheduler,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrUnauthorized,
		domain.ErrNotFound,
		domain.ErrStoreUnavailable,
		domain.ErrScoringUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	// Validation messages name the offending field and carry no internals.
	if errors.Is(err, domain.ErrValidation) {
		msg = err.Error()
	}
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
