package kv

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value   []byte
	expires time.Time
}

// MemoryStore is a mutex-guarded map with lazy expiry
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.live(key)
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set implements Store. A zero ttl never expires.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expires = s.now().Add(ttl)
	}
	s.items[key] = item
	return nil
}

// Del implements Store
func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

// Exists implements Store
func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(key)
	return ok, nil
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}

// live returns the item if present and unexpired; caller holds the lock
func (s *MemoryStore) live(key string) (memoryItem, bool) {
	item, ok := s.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expires.IsZero() && !s.now().Before(item.expires) {
		delete(s.items, key)
		return memoryItem{}, false
	}
	return item, true
}
