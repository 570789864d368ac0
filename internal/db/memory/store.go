// Package memory is an in-process document store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/influencersphere/internal/db"
)

var _ db.Store = (*Store)(nil)

type collection struct {
	docs  map[string][]byte
	order []string
}

// Store keeps documents in memory. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	closed      bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// Ping reports an error once the store is closed.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return db.ErrClosed
	}
	return nil
}

// Close marks the store closed. Data is retained.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// GetDocument returns a copy of the stored bytes or db.ErrKeyNotFound.
func (s *Store) GetDocument(_ context.Context, coll, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrClosed}
	}
	c, ok := s.collections[coll]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return clone(data), nil
}

// PutDocument stores a copy of data. Overwrites keep the original position.
func (s *Store) PutDocument(_ context.Context, coll, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpSet, Err: db.ErrClosed}
	}
	c, ok := s.collections[coll]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		s.collections[coll] = c
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = clone(data)
	return nil
}

// ListDocuments returns copies of all documents in insertion order.
func (s *Store) ListDocuments(_ context.Context, coll string) ([]db.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpZRange, Err: db.ErrClosed}
	}
	c, ok := s.collections[coll]
	if !ok {
		return nil, nil
	}
	docs := make([]db.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, db.Document{ID: id, Data: clone(c.docs[id])})
	}
	return docs, nil
}

// DeleteDocument removes a document. Missing ids are ignored.
func (s *Store) DeleteDocument(_ context.Context, coll, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpDel, Err: db.ErrClosed}
	}
	c, ok := s.collections[coll]
	if !ok {
		return nil
	}
	if _, exists := c.docs[id]; !exists {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
