package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	DocumentStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Document is a stored JSON payload with its id inside a collection path.
type Document struct {
	ID   string
	Data []byte
}

// DocumentStore provides document operations keyed by (collection path, id).
// ListDocuments returns documents in insertion order.
type DocumentStore interface {
	GetDocument(ctx context.Context, collection, id string) ([]byte, error)
	PutDocument(ctx context.Context, collection, id string, data []byte) error
	ListDocuments(ctx context.Context, collection string) ([]Document, error)
	DeleteDocument(ctx context.Context, collection, id string) error
}
