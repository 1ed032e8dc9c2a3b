package testutil

import (
	"context"
	"sync"

	"github.com/coachdesk/coachdesk/internal/types"
)

// InMemoryUsageSource fakes the authoritative resource counts that usage
// counters are reconciled against. Tests set the counts directly.
type InMemoryUsageSource struct {
	mu     sync.RWMutex
	counts map[string]map[types.ResourceType]int64
}

func NewInMemoryUsageSource() *InMemoryUsageSource {
	return &InMemoryUsageSource{
		counts: make(map[string]map[types.ResourceType]int64),
	}
}

func (s *InMemoryUsageSource) SetCount(tenantID string, resource types.ResourceType, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts[tenantID] == nil {
		s.counts[tenantID] = make(map[types.ResourceType]int64)
	}
	s.counts[tenantID][resource] = count
}

func (s *InMemoryUsageSource) CountActive(ctx context.Context, tenantID string, resource types.ResourceType) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.counts[tenantID][resource], nil
}

func (s *InMemoryUsageSource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts = make(map[string]map[types.ResourceType]int64)
}
