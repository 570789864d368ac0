// Package auditlog appends ingestion audit records to the tenant's private partition.
package auditlog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/influencersphere/internal/domain/ingestion"
	"github.com/kailas-cloud/influencersphere/internal/domain/scope"
	"github.com/kailas-cloud/influencersphere/internal/repository/scoped"
)

// scopedStore is the consumer interface for the scoped store (ISP).
type scopedStore interface {
	Add(ctx context.Context, collection string, data scoped.Record, sc scope.Scope) (string, error)
	List(ctx context.Context, collection string, sc scope.Scope) ([]scoped.Record, error)
}

// Repo stores audit records.
type Repo struct {
	store scopedStore
}

// New creates an audit log repository.
func New(s scopedStore) *Repo {
	return &Repo{store: s}
}

// Append stores an entry under a fresh id and returns it.
func (r *Repo) Append(ctx context.Context, tenantID string, e ingestion.LogEntry) (string, error) {
	rec := scoped.Record{
		"timestamp":            e.Timestamp,
		"status":               string(e.Status),
		"payload":              e.Payload,
		"processed_profile_id": nil,
	}
	if e.ProfileID != "" {
		rec["processed_profile_id"] = e.ProfileID
	}
	id, err := r.store.Add(ctx, ingestion.Collection, rec, scope.Private(tenantID))
	if err != nil {
		return "", fmt.Errorf("append audit log: %w", err)
	}
	return id, nil
}

// List returns the tenant's audit records in store order.
func (r *Repo) List(ctx context.Context, tenantID string) ([]ingestion.LogEntry, error) {
	recs, err := r.store.List(ctx, ingestion.Collection, scope.Private(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	out := make([]ingestion.LogEntry, 0, len(recs))
	for _, rec := range recs {
		ts, _ := rec["timestamp"].(float64)
		status, _ := rec["status"].(string)
		payload, _ := rec["payload"].(map[string]any)
		pid, _ := rec["processed_profile_id"].(string)
		out = append(out, ingestion.LogEntry{
			Timestamp: ts, Status: ingestion.Status(status), Payload: payload, ProfileID: pid,
		})
	}
	return out, nil
}
