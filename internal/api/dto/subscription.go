package dto

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/coachdesk/coachdesk/internal/validator"
)

type CreatePlanRequest struct {
	Name      string                  `json:"name" validate:"required"`
	Limits    subscription.PlanLimits `json:"limits"`
	Features  []types.FeatureKey      `json:"features,omitempty"`
	TrialDays int                     `json:"trial_days" validate:"min=0"`
}

func (r *CreatePlanRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context) *subscription.Plan {
	now := time.Now().UTC()
	return &subscription.Plan{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:      r.Name,
		Limits:    r.Limits,
		Features:  r.Features,
		TrialDays: r.TrialDays,
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type CreateSubscriptionRequest struct {
	TenantID string `json:"tenant_id" validate:"required"`
	PlanID   string `json:"plan_id" validate:"required"`
	// Trial starts the subscription in TRIAL using the plan's trial days
	// instead of a full billing period.
	Trial bool `json:"trial,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CheckLimitRequest struct {
	TenantID     string             `json:"tenant_id" validate:"required"`
	ResourceType types.ResourceType `json:"resource_type" validate:"required"`
}

func (r *CheckLimitRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.ResourceType.Validate()
}

// CheckLimitResponse reports whether one more resource of the type may
// be created. Limited is false when the tenant has no subscription row
// (legacy unlimited policy) or the plan does not cap the resource.
type CheckLimitResponse struct {
	Allowed bool  `json:"allowed"`
	Current int64 `json:"current"`
	Max     int64 `json:"max"`
	Limited bool  `json:"limited"`
}

type HasFeatureResponse struct {
	FeatureKey types.FeatureKey `json:"feature_key"`
	Enabled    bool             `json:"enabled"`
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

func NewSubscriptionResponse(s *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{Subscription: s}
}

type PlanResponse struct {
	*subscription.Plan
}

func NewPlanResponse(p *subscription.Plan) *PlanResponse {
	return &PlanResponse{Plan: p}
}

// UsageResponse is the reconciled usage counter snapshot
type UsageResponse struct {
	TenantID string             `json:"tenant_id"`
	Usage    subscription.Usage `json:"usage"`
}
