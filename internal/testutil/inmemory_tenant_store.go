package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
)

type InMemoryTenantStore struct {
	mu      sync.RWMutex
	tenants map[string]*tenant.Tenant
}

func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		tenants: make(map[string]*tenant.Tenant),
	}
}

func (s *InMemoryTenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	if t == nil {
		return ierr.NewError("tenant cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[t.ID]; exists {
		return ierr.NewError("tenant already exists").Mark(ierr.ErrAlreadyExists)
	}

	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = time.Now().UTC()
	s.tenants[t.ID] = t
	return nil
}

func (s *InMemoryTenantStore) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, exists := s.tenants[id]; exists {
		return t, nil
	}
	return nil, tenant.NewNotFoundError(id)
}

func (s *InMemoryTenantStore) Update(ctx context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[t.ID]; !exists {
		return tenant.NewNotFoundError(t.ID)
	}
	t.UpdatedAt = time.Now().UTC()
	s.tenants[t.ID] = t
	return nil
}

func (s *InMemoryTenantStore) List(ctx context.Context) ([]*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenants := make([]*tenant.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func (s *InMemoryTenantStore) ListChildren(ctx context.Context, parentID string) ([]*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var children []*tenant.Tenant
	for _, t := range s.tenants {
		if t.ParentID != nil && *t.ParentID == parentID {
			children = append(children, t)
		}
	}
	return children, nil
}

func (s *InMemoryTenantStore) ListAncestors(ctx context.Context, id string) ([]*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tenants[id]
	if !exists {
		return nil, tenant.NewNotFoundError(id)
	}

	var ancestors []*tenant.Tenant
	for t.ParentID != nil {
		parent, exists := s.tenants[*t.ParentID]
		if !exists {
			break
		}
		ancestors = append(ancestors, parent)
		t = parent
	}
	return ancestors, nil
}

func (s *InMemoryTenantStore) ListDescendants(ctx context.Context, id string) ([]*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.tenants[id]; !exists {
		return nil, tenant.NewNotFoundError(id)
	}

	var descendants []*tenant.Tenant
	frontier := []string{id}
	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]
		for _, t := range s.tenants {
			if t.ParentID != nil && *t.ParentID == next {
				descendants = append(descendants, t)
				frontier = append(frontier, t.ID)
			}
		}
	}
	return descendants, nil
}

func (s *InMemoryTenantStore) CountChildren(ctx context.Context, parentID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, t := range s.tenants {
		if t.ParentID != nil && *t.ParentID == parentID && t.Status == types.StatusActive {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryTenantStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tenants = make(map[string]*tenant.Tenant)
}
