// Package session provides persistence for terminal resolution records.
package session

import (
	"context"
	"sync"

	"veridoc/internal/resolution/ports"
)

// InMemoryStore keeps records in a map. Suitable for tests and single-node
// deployments without durability requirements.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]ports.SessionRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]ports.SessionRecord),
	}
}

// Save stores a terminal record, replacing any existing record with the same
// ID.
func (s *InMemoryStore) Save(_ context.Context, record ports.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// Get retrieves a record by session ID. Returns (nil, nil) when unknown.
func (s *InMemoryStore) Get(_ context.Context, id string) (*ports.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Len reports the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear removes all records.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]ports.SessionRecord)
}
