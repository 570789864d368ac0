package chi

import (
	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
	"github.com/kailas-cloud/influencersphere/internal/domain/search/result"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeStoreUnavailable   = "store_unavailable"
	codeScoringUnavailable = "scoring_unavailable"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// searchParams are the optional query parameters of the search endpoint.
type searchParams struct {
	Q             *string
	Niche         *string
	MinEngagement *float64
	MinFollowers  *int64
	MaxFollowers  *int64
	Page          *int
	Limit         *int
}

type searchResponse struct {
	Items   []map[string]any `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	HasMore bool             `json:"has_more"`
}

func pageToResponse(p result.Page) searchResponse {
	items := make([]map[string]any, len(p.Items))
	for i, it := range p.Items {
		items[i] = it.Record()
	}
	return searchResponse{
		Items:   items,
		Total:   p.Total,
		Page:    p.Page,
		Limit:   p.PageSize,
		HasMore: p.HasMore(),
	}
}

type createAlertRequest struct {
	ConditionType  string   `json:"condition_type"`
	ThresholdValue *float64 `json:"threshold_value"`
	NicheFilter    string   `json:"niche_filter"`
	IsActive       *bool    `json:"is_active"`
}

// patchAlertRequest carries only the fields to change.
type patchAlertRequest struct {
	ConditionType  *string  `json:"condition_type"`
	ThresholdValue *float64 `json:"threshold_value"`
	NicheFilter    *string  `json:"niche_filter"`
	IsActive       *bool    `json:"is_active"`
}

type alertRuleResponse struct {
	ID             string   `json:"id"`
	ConditionType  string   `json:"condition_type"`
	ThresholdValue *float64 `json:"threshold_value"`
	NicheFilter    string   `json:"niche_filter"`
	IsActive       bool     `json:"is_active"`
	CreatedAt      float64  `json:"created_at"`
}

type alertRuleListResponse struct {
	Items []alertRuleResponse `json:"items"`
	Count int                 `json:"count"`
}

func ruleToResponse(r alert.Rule) alertRuleResponse {
	resp := alertRuleResponse{
		ID:            r.ID(),
		ConditionType: string(r.Condition()),
		NicheFilter:   r.NicheFilter(),
		IsActive:      r.IsActive(),
		CreatedAt:     r.CreatedAt(),
	}
	if v, ok := r.Threshold(); ok {
		resp.ThresholdValue = &v
	}
	return resp
}

type ingestionResponse struct {
	Status    string `json:"status"`
	ProfileID string `json:"profile_id"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Scheduler string            `json:"scheduler,omitempty"`
}
