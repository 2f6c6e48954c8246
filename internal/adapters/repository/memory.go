package repository

import (
	"context"
	"sync"

	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/pkg/metrics"
)

// MemoryStore keeps the most recent records in a fixed-size ring.
// Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	buf      []model.PredictionRecord
	next     int // slot for the next write
	size     int
	closed   bool
}

// NewMemoryStore creates an empty ring store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.buf = make([]model.PredictionRecord, s.capacity)
	metrics.UpdateHistoryRecords(0)
	return s
}

// Save appends rec, evicting the oldest record when full.
func (s *MemoryStore) Save(_ context.Context, rec model.PredictionRecord) error { //nolint:gocritic // hugeParam: records are stored by value
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.buf[s.next] = rec
	s.next = (s.next + 1) % s.capacity
	if s.size < s.capacity {
		s.size++
	}
	metrics.UpdateHistoryRecords(s.size)
	return nil
}

// Recent returns up to n records, newest first.
func (s *MemoryStore) Recent(_ context.Context, n int) ([]model.PredictionRecord, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if n > s.size {
		n = s.size
	}
	out := make([]model.PredictionRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + s.capacity) % s.capacity
		out = append(out, s.buf[idx])
	}
	return out, nil
}

// Count returns the number of retained records.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size, nil
}

// Close drops all records.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.buf = nil
	s.size = 0
	return nil
}
