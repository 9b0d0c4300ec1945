package docstore

import (
	"context"
	"reflect"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process memory. It backs local development
// (DOCSTORE_DRIVER=memory) and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

func (m *MemoryStore) Put(ctx context.Context, collection, id string, doc Document) error {
	stored, err := normalize(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collection(collection)[id] = stored
	return nil
}

func (m *MemoryStore) Create(ctx context.Context, collection, id string, doc Document) error {
	stored, err := normalize(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collection(collection)
	if _, exists := docs[id]; exists {
		return ErrAlreadyExists
	}
	docs[id] = stored
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	doc, ok := m.collections[collection][id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return normalize(doc)
}

func (m *MemoryStore) Swap(ctx context.Context, collection, id string, prev, doc Document) error {
	want, err := normalize(prev)
	if err != nil {
		return err
	}
	stored, err := normalize(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	current, ok := docs[id]
	if !ok || !reflect.DeepEqual(current, want) {
		return ErrConflict
	}
	docs[id] = stored
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collections[collection]
	out := make([]Document, 0)
	for _, id := range sortedIDs(docs) {
		if !Matches(docs[id], filters) {
			continue
		}
		doc, err := normalize(docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	return m.Query(ctx, collection)
}

func (m *MemoryStore) Count(ctx context.Context, collection string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.collections[collection])), nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	if _, ok := docs[id]; !ok {
		return ErrNotFound
	}
	delete(docs, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close(ctx context.Context) error { return nil }

// collection must be called with the write lock held.
func (m *MemoryStore) collection(name string) map[string]Document {
	docs, ok := m.collections[name]
	if !ok {
		docs = make(map[string]Document)
		m.collections[name] = docs
	}
	return docs
}

func sortedIDs(docs map[string]Document) []string {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
