package store

import (
	"context"
	"sync"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. Fields are deep-copied on the way in and out so callers never
// share slices with the stored documents.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Fields
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Fields{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Fields, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return CloneFields(record), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, fields Fields) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	s.records[key] = CloneFields(fields)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(_ context.Context, r Range) ([]Document, error) {
	s.mu.RLock()
	docs := make([]Document, 0, len(s.records))
	for key, fields := range s.records {
		if !r.Contains(key) {
			continue
		}
		docs = append(docs, Document{Key: key, Fields: CloneFields(fields)})
	}
	s.mu.RUnlock()
	return r.Select(docs), nil
}

// Keys lists every stored key in ascending order.
func (s *MemoryStore) Keys() []string {
	docs, _ := s.Query(context.Background(), Range{})
	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		keys = append(keys, doc.Key)
	}
	return keys
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
