package testutil

import (
	"context"
	"sync"

	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
)

type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	plans         map[string]*subscription.Plan
	subscriptions map[string]*subscription.Subscription
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		plans:         make(map[string]*subscription.Plan),
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (s *InMemorySubscriptionStore) CreatePlan(ctx context.Context, plan *subscription.Plan) error {
	if plan == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[plan.ID]; exists {
		return ierr.NewError("plan already exists").Mark(ierr.ErrAlreadyExists)
	}
	s.plans[plan.ID] = plan
	return nil
}

func (s *InMemorySubscriptionStore) GetPlan(ctx context.Context, id string) (*subscription.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, exists := s.plans[id]; exists {
		return p, nil
	}
	return nil, ierr.NewError("plan not found").
		WithHintf("plan not found for id: %s", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) ListPlans(ctx context.Context) ([]*subscription.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]*subscription.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, p)
	}
	return plans, nil
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subscriptions {
		if existing.TenantID == sub.TenantID {
			return ierr.NewError("tenant already has a subscription").Mark(ierr.ErrAlreadyExists)
		}
	}
	s.subscriptions[sub.ID] = sub
	return nil
}

func (s *InMemorySubscriptionStore) GetByTenant(ctx context.Context, tenantID string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscriptions {
		if sub.TenantID == tenantID {
			return sub, nil
		}
	}
	return nil, ierr.NewError("subscription not found").
		WithHintf("no subscription for tenant: %s", tenantID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; !exists {
		return ierr.NewError("subscription not found").
			WithHintf("subscription not found for id: %s", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	s.subscriptions[sub.ID] = sub
	return nil
}

func (s *InMemorySubscriptionStore) IncrementUsage(ctx context.Context, tenantID string, resource types.ResourceType, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		if sub.TenantID == tenantID {
			value := sub.Usage.Get(resource) + delta
			if value < 0 {
				value = 0
			}
			sub.Usage.Set(resource, value)
			return nil
		}
	}
	return ierr.NewError("subscription not found").
		WithHintf("no subscription for tenant: %s", tenantID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) UpdateUsage(ctx context.Context, tenantID string, usage subscription.Usage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		if sub.TenantID == tenantID {
			sub.Usage = usage
			return nil
		}
	}
	return ierr.NewError("subscription not found").
		WithHintf("no subscription for tenant: %s", tenantID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans = make(map[string]*subscription.Plan)
	s.subscriptions = make(map[string]*subscription.Subscription)
}
