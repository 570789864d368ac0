// Package profile persists creator profiles in the public partition.
package profile

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	domprofile "github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/domain/scope"
	"github.com/kailas-cloud/influencersphere/internal/repository/scoped"
)

// scopedStore is the consumer interface for the scoped store (ISP).
type scopedStore interface {
	Get(ctx context.Context, collection, id string, sc scope.Scope) (scoped.Record, bool, error)
	List(ctx context.Context, collection string, sc scope.Scope) ([]scoped.Record, error)
	Put(ctx context.Context, collection, id string, data scoped.Record, sc scope.Scope, merge bool) error
}

// Repo reads and writes the shared profile pool.
type Repo struct {
	store scopedStore
}

// New creates a profile repository.
func New(s scopedStore) *Repo {
	return &Repo{store: s}
}

// List returns the whole pool in store order.
func (r *Repo) List(ctx context.Context) ([]domprofile.Profile, error) {
	recs, err := r.store.List(ctx, domprofile.Collection, scope.Public())
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]domprofile.Profile, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domprofile.FromRecord(rec.ID(), rec))
	}
	return out, nil
}

// Get returns one profile or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domprofile.Profile, error) {
	rec, ok, err := r.store.Get(ctx, domprofile.Collection, id, scope.Public())
	if err != nil {
		return domprofile.Profile{}, fmt.Errorf("get profile %s: %w", id, err)
	}
	if !ok {
		return domprofile.Profile{}, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return domprofile.FromRecord(id, rec), nil
}

// Upsert merge-writes the profile attributes into the pool.
func (r *Repo) Upsert(ctx context.Context, p domprofile.Profile) error {
	if err := r.store.Put(ctx, domprofile.Collection, p.ID(), p.Record(), scope.Public(), true); err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.ID(), err)
	}
	return nil
}
