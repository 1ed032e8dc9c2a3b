package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/coachdesk/coachdesk/internal/types"
)

// InMemorySequenceStore advances counters under a single mutex, which
// gives the same atomicity the upsert-returning statement gives in
// postgres.
type InMemorySequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{
		counters: make(map[string]int64),
	}
}

func sequenceKey(tenantID string, periodKey types.PeriodKey) string {
	return fmt.Sprintf("%s:%s", tenantID, periodKey)
}

func (s *InMemorySequenceStore) Next(ctx context.Context, tenantID string, periodKey types.PeriodKey) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sequenceKey(tenantID, periodKey)
	s.counters[key]++
	return s.counters[key], nil
}

func (s *InMemorySequenceStore) Current(ctx context.Context, tenantID string, periodKey types.PeriodKey) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counters[sequenceKey(tenantID, periodKey)], nil
}

func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = make(map[string]int64)
}
