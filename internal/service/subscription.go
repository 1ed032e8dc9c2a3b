package service

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
)

type SubscriptionService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, tenantID string) (*dto.SubscriptionResponse, error)

	// CheckLimit reports whether one more resource of the type may be
	// created under the tenant's plan. Call sites must check before the
	// creation write and bump the counter only after the write succeeds.
	// A tenant with no subscription row is unlimited; that is the
	// long-standing default policy, not an accident.
	CheckLimit(ctx context.Context, tenantID string, resource types.ResourceType) (*dto.CheckLimitResponse, error)
	// IncrementUsage bumps a counter after a successful creation write.
	IncrementUsage(ctx context.Context, tenantID string, resource types.ResourceType) error
	// DecrementUsage lowers a counter after a deletion, clamped at zero.
	DecrementUsage(ctx context.Context, tenantID string, resource types.ResourceType) error
	// ReconcileUsage recomputes every counter from the authoritative
	// resource tables and overwrites the stored values. Safe to run at
	// any time; required at least once per billing period rollover so
	// out-of-band deletions cannot leave the counters stale.
	ReconcileUsage(ctx context.Context, tenantID string) (*dto.UsageResponse, error)
	HasFeature(ctx context.Context, tenantID string, featureKey types.FeatureKey) (*dto.HasFeatureResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	plan := req.ToPlan(ctx)
	if err := s.SubscriptionRepo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return dto.NewPlanResponse(plan), nil
}

func (s *subscriptionService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	plan, err := s.SubscriptionRepo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPlanResponse(plan), nil
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.TenantRepo.Get(ctx, req.TenantID); err != nil {
		return nil, err
	}
	plan, err := s.SubscriptionRepo.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		TenantID:           req.TenantID,
		PlanID:             plan.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		PeriodStart:        now,
		PeriodEnd:          now.AddDate(0, 1, 0),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.Trial {
		sub.SubscriptionStatus = types.SubscriptionStatusTrial
		sub.PeriodEnd = now.AddDate(0, 0, plan.TrialDays)
	}

	if err := s.SubscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("created tenant subscription",
		"subscription_id", sub.ID,
		"tenant_id", sub.TenantID,
		"plan_id", sub.PlanID,
		"subscription_status", sub.SubscriptionStatus)

	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, tenantID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) CheckLimit(ctx context.Context, tenantID string, resource types.ResourceType) (*dto.CheckLimitResponse, error) {
	if err := resource.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriptionRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return &dto.CheckLimitResponse{Allowed: true, Limited: false}, nil
		}
		return nil, err
	}

	plan, err := s.SubscriptionRepo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	current := sub.Usage.Get(resource)
	max, limited := plan.Limits.Limit(resource)
	if !limited {
		return &dto.CheckLimitResponse{Allowed: true, Current: current, Limited: false}, nil
	}

	return &dto.CheckLimitResponse{
		Allowed: current < max,
		Current: current,
		Max:     max,
		Limited: true,
	}, nil
}

func (s *subscriptionService) IncrementUsage(ctx context.Context, tenantID string, resource types.ResourceType) error {
	if err := resource.Validate(); err != nil {
		return err
	}
	err := s.SubscriptionRepo.IncrementUsage(ctx, tenantID, resource, 1)
	if err != nil && ierr.IsNotFound(err) {
		// No subscription row means nothing to count against.
		return nil
	}
	return err
}

func (s *subscriptionService) DecrementUsage(ctx context.Context, tenantID string, resource types.ResourceType) error {
	if err := resource.Validate(); err != nil {
		return err
	}
	err := s.SubscriptionRepo.IncrementUsage(ctx, tenantID, resource, -1)
	if err != nil && ierr.IsNotFound(err) {
		return nil
	}
	return err
}

func (s *subscriptionService) ReconcileUsage(ctx context.Context, tenantID string) (*dto.UsageResponse, error) {
	sub, err := s.SubscriptionRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var usage subscription.Usage
	for _, resource := range types.AllResourceTypes() {
		var count int64
		// The hierarchy store is the authority on direct children; every
		// other resource is counted from its own table.
		if resource == types.ResourceTypeChildTenants {
			count, err = s.TenantRepo.CountChildren(ctx, tenantID)
		} else {
			count, err = s.UsageSource.CountActive(ctx, tenantID, resource)
		}
		if err != nil {
			return nil, err
		}
		usage.Set(resource, count)
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		return s.SubscriptionRepo.UpdateUsage(ctx, tenantID, usage)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("reconciled usage counters",
		"tenant_id", tenantID,
		"seats", usage.Seats,
		"groups", usage.Groups,
		"catalog_items", usage.CatalogItems,
		"messages_this_month", usage.MessagesThisMonth,
		"child_tenants", usage.ChildTenants,
		"previous_seats", sub.Usage.Seats)

	return &dto.UsageResponse{TenantID: tenantID, Usage: usage}, nil
}

func (s *subscriptionService) HasFeature(ctx context.Context, tenantID string, featureKey types.FeatureKey) (*dto.HasFeatureResponse, error) {
	resp := &dto.HasFeatureResponse{FeatureKey: featureKey}

	sub, err := s.SubscriptionRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return resp, nil
		}
		return nil, err
	}

	// Cancelled and expired subscriptions grant no features even though
	// their rows survive.
	if !sub.SubscriptionStatus.IsUsable() {
		return resp, nil
	}

	plan, err := s.SubscriptionRepo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	resp.Enabled = plan.HasFeature(featureKey)
	return resp, nil
}
