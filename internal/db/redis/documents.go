package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/influencersphere/internal/db"
)

// GetDocument returns the raw document or db.ErrKeyNotFound.
func (s *Store) GetDocument(ctx context.Context, collection, id string) ([]byte, error) {
	cmd := s.b().Get().Key(s.docKey(collection, id)).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// PutDocument writes the document and registers its id in the collection index.
// SET and ZADD NX go out as one pipelined batch on the collection's slot.
// Re-writing an existing id keeps its original position. Ids first written in the
// same nanosecond tie on score and list in lexicographic id order.
func (s *Store) PutDocument(ctx context.Context, collection, id string, data []byte) error {
	score := strconv.FormatInt(s.now().UnixNano(), 10)
	set := s.b().Set().Key(s.docKey(collection, id)).Value(string(data)).Build()
	zadd := s.b().Arbitrary("ZADD").Keys(s.indexKey(collection)).Args("NX", score, id).Build()

	res := s.client.DoMulti(ctx, set, zadd)
	if err := res[0].Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	if err := res[1].Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ListDocuments returns every document of a collection in insertion order.
// Index members whose document has vanished are skipped.
func (s *Store) ListDocuments(ctx context.Context, collection string) ([]db.Document, error) {
	zrange := s.b().Arbitrary("ZRANGE").Keys(s.indexKey(collection)).Args("0", "-1").Build()
	ids, err := s.do(ctx, zrange).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(collection, id)
	}

	mget := s.b().Mget().Key(keys...).Build()
	values, err := s.do(ctx, mget).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}
	if len(values) != len(ids) {
		return nil, &db.Error{Op: db.OpMGet, Err: fmt.Errorf("expected %d values, got %d", len(ids), len(values))}
	}

	docs := make([]db.Document, 0, len(ids))
	for i := range values {
		raw, err := values[i].ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, &db.Error{Op: db.OpMGet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		docs = append(docs, db.Document{ID: ids[i], Data: []byte(raw)})
	}
	return docs, nil
}

// DeleteDocument removes the document and its index entry. Missing ids are ignored.
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	del := s.b().Del().Key(s.docKey(collection, id)).Build()
	if err := s.do(ctx, del).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}

	zrem := s.b().Arbitrary("ZREM").Keys(s.indexKey(collection)).Args(id).Build()
	if err := s.do(ctx, zrem).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}
