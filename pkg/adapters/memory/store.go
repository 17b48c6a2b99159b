package memory

import (
	"context"
	"sync"

	"github.com/aretw0/rewatch/pkg/domain"
)

// DefaultHistorySize is the number of records kept when no size is given.
const DefaultHistorySize = 100

// Store implements ports.HistoryStore in memory.
// Safe for concurrent use.
type Store struct {
	records []domain.RunRecord
	size    int
	mu      sync.RWMutex
}

// NewStore creates an in-memory store keeping the last size records.
func NewStore(size int) *Store {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Store{
		size: size,
	}
}

// Append stores a copy of the record, evicting the oldest when full.
func (s *Store) Append(ctx context.Context, record domain.RunRecord) error {
	copied := record
	copied.Commands = append([]domain.CommandOutcome(nil), record.Commands...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, copied)
	if over := len(s.records) - s.size; over > 0 {
		s.records = append(s.records[:0:0], s.records[over:]...)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]domain.RunRecord, 0, max(limit, 0))
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
