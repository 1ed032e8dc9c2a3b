package types

import (
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the lifecycle state of a tenant subscription
type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusTrial,
		SubscriptionStatusActive,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Please provide a valid subscription status").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsUsable reports whether the subscription still grants plan features.
// Cancelled and expired subscriptions keep their rows but grant nothing.
func (s SubscriptionStatus) IsUsable() bool {
	return s == SubscriptionStatusTrial || s == SubscriptionStatusActive
}

// ResourceType identifies a plan-limited resource class
type ResourceType string

const (
	ResourceTypeSeats        ResourceType = "seats"
	ResourceTypeGroups       ResourceType = "groups"
	ResourceTypeCatalogItems ResourceType = "catalog_items"
	ResourceTypeMessages     ResourceType = "messages_this_month"
	ResourceTypeChildTenants ResourceType = "child_tenants"
)

func (r ResourceType) String() string {
	return string(r)
}

func (r ResourceType) Validate() error {
	if !lo.Contains(AllResourceTypes(), r) {
		return ierr.NewError("invalid resource type").
			WithHintf("unknown resource type %q", r).
			WithReportableDetails(map[string]any{
				"allowed": AllResourceTypes(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func AllResourceTypes() []ResourceType {
	return []ResourceType{
		ResourceTypeSeats,
		ResourceTypeGroups,
		ResourceTypeCatalogItems,
		ResourceTypeMessages,
		ResourceTypeChildTenants,
	}
}

// FeatureKey identifies an optional plan feature, e.g. "tactical_board"
type FeatureKey string

func (f FeatureKey) String() string {
	return string(f)
}
