// Package scoped maps tenant-private and public collections onto a document store.
package scoped

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/db"
	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/scope"
	"github.com/kailas-cloud/influencersphere/internal/logger"
)

// IDField is the attribute every returned record carries its own id under.
const IDField = "id"

// Record is a schemaless stored record.
type Record map[string]any

// ID returns the record id.
func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

// store is the consumer interface for documents (ISP).
type store interface {
	GetDocument(ctx context.Context, collection, id string) ([]byte, error)
	PutDocument(ctx context.Context, collection, id string, data []byte) error
	ListDocuments(ctx context.Context, collection string) ([]db.Document, error)
	DeleteDocument(ctx context.Context, collection, id string) error
}

// Repo is the scoped store: every operation resolves its collection path from a scope first.
type Repo struct {
	store    store
	resolver scope.Resolver
	newID    func() string
}

// New creates a scoped repository for the given application id.
func New(s store, appID string) *Repo {
	return &Repo{
		store:    s,
		resolver: scope.NewResolver(appID),
		newID:    func() string { return uuid.New().String() },
	}
}

// Get returns one record. ok is false when the record does not exist.
func (r *Repo) Get(ctx context.Context, collection, id string, sc scope.Scope) (Record, bool, error) {
	path, err := r.locate(sc, collection, id)
	if err != nil {
		return nil, false, err
	}

	raw, err := r.store.GetDocument(ctx, path.String(), id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s/%s: %w: %w", path, id, domain.ErrStoreUnavailable, err)
	}

	rec, err := decode(id, raw)
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", path, id, err)
	}
	return rec, true, nil
}

// List returns every record of the collection in store order.
// Undecodable records are logged and skipped.
func (r *Repo) List(ctx context.Context, collection string, sc scope.Scope) ([]Record, error) {
	path, err := r.resolver.Resolve(sc, collection)
	if err != nil {
		return nil, err
	}

	docs, err := r.store.ListDocuments(ctx, path.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w: %w", path, domain.ErrStoreUnavailable, err)
	}

	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		rec, err := decode(d.ID, d.Data)
		if err != nil {
			logger.FromContext(ctx).Warn("skipping undecodable record",
				zap.String("path", path.String()), zap.String("id", d.ID), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Put writes a record under id. With merge, top-level attributes of data are
// overlaid onto the current record; otherwise the record is replaced.
func (r *Repo) Put(ctx context.Context, collection, id string, data Record, sc scope.Scope, merge bool) error {
	path, err := r.locate(sc, collection, id)
	if err != nil {
		return err
	}

	next := maps.Clone(data)
	if next == nil {
		next = Record{}
	}
	if merge {
		raw, err := r.store.GetDocument(ctx, path.String(), id)
		switch {
		case err == nil:
			current, derr := decode(id, raw)
			if derr != nil {
				return fmt.Errorf("merge %s/%s: %w", path, id, derr)
			}
			maps.Copy(current, data)
			next = current
		case errors.Is(err, db.ErrKeyNotFound):
		default:
			return fmt.Errorf("merge %s/%s: %w: %w", path, id, domain.ErrStoreUnavailable, err)
		}
	}

	return r.write(ctx, path, id, next)
}

// Add stores data under a fresh uuid and returns it.
func (r *Repo) Add(ctx context.Context, collection string, data Record, sc scope.Scope) (string, error) {
	path, err := r.resolver.Resolve(sc, collection)
	if err != nil {
		return "", err
	}
	id := r.newID()
	rec := maps.Clone(data)
	if rec == nil {
		rec = Record{}
	}
	if err := r.write(ctx, path, id, rec); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (r *Repo) Delete(ctx context.Context, collection, id string, sc scope.Scope) error {
	path, err := r.locate(sc, collection, id)
	if err != nil {
		return err
	}
	if err := r.store.DeleteDocument(ctx, path.String(), id); err != nil {
		return fmt.Errorf("delete %s/%s: %w: %w", path, id, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Repo) locate(sc scope.Scope, collection, id string) (scope.Path, error) {
	path, err := r.resolver.Resolve(sc, collection)
	if err != nil {
		return "", err
	}
	if err := scope.ValidateSegment("id", id); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Repo) write(ctx context.Context, path scope.Path, id string, rec Record) error {
	rec[IDField] = id
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w: %w", path, id, domain.ErrValidation, err)
	}
	if err := r.store.PutDocument(ctx, path.String(), id, data); err != nil {
		return fmt.Errorf("put %s/%s: %w: %w", path, id, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func decode(id string, raw []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec == nil {
		rec = Record{}
	}
	rec[IDField] = id
	return rec, nil
}
