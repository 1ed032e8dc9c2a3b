package subscription

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/types"
)

type Repository interface {
	CreatePlan(ctx context.Context, plan *Plan) error
	GetPlan(ctx context.Context, id string) (*Plan, error)
	ListPlans(ctx context.Context) ([]*Plan, error)

	Create(ctx context.Context, sub *Subscription) error
	// GetByTenant returns the tenant's subscription, ErrNotFound when the
	// tenant has no subscription row at all.
	GetByTenant(ctx context.Context, tenantID string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	// IncrementUsage atomically adjusts one usage counter by delta,
	// clamped at zero. Used by resource-creation call sites after the
	// creation write succeeds.
	IncrementUsage(ctx context.Context, tenantID string, resource types.ResourceType, delta int64) error
	// UpdateUsage overwrites all counters with reconciled values.
	UpdateUsage(ctx context.Context, tenantID string, usage Usage) error
}

// UsageSource exposes the authoritative resource counts the usage
// counters are reconciled against. The counts come from the resource
// tables themselves, never from the counters.
type UsageSource interface {
	CountActive(ctx context.Context, tenantID string, resource types.ResourceType) (int64, error)
}
