package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/profile"
)

// MemoryStore keeps scan records in process memory. It backs the server
// when no MongoDB is configured and the store tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ScanRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]ScanRecord)}
}

// Save persists a profile under a fresh UUID.
func (s *MemoryStore) Save(ctx context.Context, p *profile.RepositoryProfile) (*ScanRecord, error) {
	record := ScanRecord{
		ID:        uuid.NewString(),
		Root:      p.Root,
		CreatedAt: time.Now().UTC(),
		Profile:   *p,
	}

	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()
	return &record, nil
}

// Get returns the record with the given ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*ScanRecord, error) {
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeProfileNotFound, "scan not found: %s", id)
	}
	return &record, nil
}

// List returns up to limit records, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]ScanRecord, error) {
	s.mu.RLock()
	out := make([]ScanRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
