package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

type memoryEntry struct {
	doc Document
	seq uint64
}

// MemoryStore keeps collections in process memory. Used by the memory driver
// and by tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryEntry
	seq         uint64
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]*memoryEntry)}
}

// FindBy implements Store
func (s *MemoryStore) FindBy(ctx context.Context, collection, field string, value any) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, e := range s.sorted(collection) {
		if v, ok := e.doc.Data[field]; ok && ValuesEqual(v, value) {
			out = append(out, Document{ID: e.doc.ID, Data: cloneData(e.doc.Data)})
		}
	}
	return out, nil
}

// All implements Store
func (s *MemoryStore) All(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.sorted(collection)
	out := make([]Document, 0, len(entries))
	for _, e := range entries {
		out = append(out, Document{ID: e.doc.ID, Data: cloneData(e.doc.Data)})
	}
	return out, nil
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, apperrors.ErrResourceNotFound)
	}
	return &Document{ID: e.doc.ID, Data: cloneData(e.doc.Data)}, nil
}

// Add implements Store
func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.put(collection, id, data)
	return id, nil
}

// Put stores a document under a caller-chosen id, replacing any existing one.
// Tests use it to seed fixtures with stable ids.
func (s *MemoryStore) Put(collection, id string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, data)
}

// Remove deletes a document if present
func (s *MemoryStore) Remove(collection, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
}

func (s *MemoryStore) put(collection, id string, data map[string]any) {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]*memoryEntry)
		s.collections[collection] = coll
	}
	s.seq++
	coll[id] = &memoryEntry{
		doc: Document{ID: id, Data: cloneData(data)},
		seq: s.seq,
	}
}

// Update implements Store
func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, apperrors.ErrResourceNotFound)
	}
	for k, v := range fields {
		e.doc.Data[k] = v
	}
	return nil
}

// Count returns the number of documents in collection
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Close implements Store
func (s *MemoryStore) Close(context.Context) error {
	return nil
}

// sorted returns entries in insertion order; caller holds the lock
func (s *MemoryStore) sorted(collection string) []*memoryEntry {
	coll := s.collections[collection]
	entries := make([]*memoryEntry, 0, len(coll))
	for _, e := range coll {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return entries
}
