package docstore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store used by tests and dev mode. WithTx
// stages writes and commits them only when fn succeeds, matching the
// Postgres store's atomicity.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[Collection][]json.RawMessage
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[Collection][]json.RawMessage)}
}

// Get reads the full collection, empty when absent.
func (s *MemoryStore) Get(ctx context.Context, c Collection) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDocs(s.collections[c]), nil
}

// Put replaces the full collection.
func (s *MemoryStore) Put(ctx context.Context, c Collection, docs []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[c] = cloneDocs(docs)
	return nil
}

// WithTx runs fn against a staging area and commits on success.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTx{store: s, staged: make(map[Collection][]json.RawMessage)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for c, docs := range tx.staged {
		s.collections[c] = docs
	}
	return nil
}

type memoryTx struct {
	store  *MemoryStore
	staged map[Collection][]json.RawMessage
}

func (t *memoryTx) Get(ctx context.Context, c Collection) ([]json.RawMessage, error) {
	if docs, ok := t.staged[c]; ok {
		return cloneDocs(docs), nil
	}
	return cloneDocs(t.store.collections[c]), nil
}

func (t *memoryTx) Put(ctx context.Context, c Collection, docs []json.RawMessage) error {
	t.staged[c] = cloneDocs(docs)
	return nil
}

func cloneDocs(docs []json.RawMessage) []json.RawMessage {
	if docs == nil {
		return nil
	}
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		cp := make(json.RawMessage, len(d))
		copy(cp, d)
		out[i] = cp
	}
	return out
}
