package scoped

import (
	"context"
	"testing"

	"github.com/kailas-cloud/influencersphere/internal/db"
	"github.com/kailas-cloud/influencersphere/internal/db/memory"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn    func(ctx context.Context, collection, id string) ([]byte, error)
	putFn    func(ctx context.Context, collection, id string, data []byte) error
	listFn   func(ctx context.Context, collection string) ([]db.Document, error)
	deleteFn func(ctx context.Context, collection, id string) error
}

func (m *mockStore) GetDocument(ctx context.Context, collection, id string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) PutDocument(ctx context.Context, collection, id string, data []byte) error {
	if m.putFn != nil {
		return m.putFn(ctx, collection, id, data)
	}
	return nil
}

func (m *mockStore) ListDocuments(ctx context.Context, collection string) ([]db.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx, collection)
	}
	return nil, nil
}

func (m *mockStore) DeleteDocument(ctx context.Context, collection, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, collection, id)
	}
	return nil
}

func newMemoryRepo(t *testing.T) *Repo {
	t.Helper()
	return New(memory.NewStore(), "app")
}
