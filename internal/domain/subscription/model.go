package subscription

import (
	"time"

	"github.com/coachdesk/coachdesk/internal/types"
)

// PlanLimits holds the hard resource ceilings of a plan. A value below
// zero means the resource is unlimited on this plan.
type PlanLimits struct {
	MaxSeats            int64 `db:"max_seats" json:"max_seats"`
	MaxGroups           int64 `db:"max_groups" json:"max_groups"`
	MaxCatalogItems     int64 `db:"max_catalog_items" json:"max_catalog_items"`
	MaxMessagesPerMonth int64 `db:"max_messages_per_month" json:"max_messages_per_month"`
	MaxChildTenants     int64 `db:"max_child_tenants" json:"max_child_tenants"`
}

// Limit returns the ceiling for a resource type and whether the resource
// is limited at all on this plan.
func (l PlanLimits) Limit(resource types.ResourceType) (int64, bool) {
	var max int64
	switch resource {
	case types.ResourceTypeSeats:
		max = l.MaxSeats
	case types.ResourceTypeGroups:
		max = l.MaxGroups
	case types.ResourceTypeCatalogItems:
		max = l.MaxCatalogItems
	case types.ResourceTypeMessages:
		max = l.MaxMessagesPerMonth
	case types.ResourceTypeChildTenants:
		max = l.MaxChildTenants
	default:
		return 0, false
	}
	if max < 0 {
		return max, false
	}
	return max, true
}

// Plan is a subscription tier with resource ceilings and a feature set
type Plan struct {
	ID        string            `db:"id" json:"id"`
	Name      string            `db:"name" json:"name"`
	Limits    PlanLimits        `json:"limits"`
	Features  []types.FeatureKey `json:"features"`
	TrialDays int               `db:"trial_days" json:"trial_days"`
	Status    types.Status      `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// HasFeature is a membership test against the plan's feature set
func (p *Plan) HasFeature(key types.FeatureKey) bool {
	for _, f := range p.Features {
		if f == key {
			return true
		}
	}
	return false
}

// Usage holds the per-tenant usage counters. The counters are derived
// state: the authoritative resource tables are the source of truth, and
// the counters are periodically reconciled against them.
type Usage struct {
	Seats             int64 `db:"seats" json:"seats"`
	Groups            int64 `db:"groups" json:"groups"`
	CatalogItems      int64 `db:"catalog_items" json:"catalog_items"`
	MessagesThisMonth int64 `db:"messages_this_month" json:"messages_this_month"`
	ChildTenants      int64 `db:"child_tenants" json:"child_tenants"`
}

// Get returns the counter for a resource type
func (u Usage) Get(resource types.ResourceType) int64 {
	switch resource {
	case types.ResourceTypeSeats:
		return u.Seats
	case types.ResourceTypeGroups:
		return u.Groups
	case types.ResourceTypeCatalogItems:
		return u.CatalogItems
	case types.ResourceTypeMessages:
		return u.MessagesThisMonth
	case types.ResourceTypeChildTenants:
		return u.ChildTenants
	}
	return 0
}

// Set overwrites the counter for a resource type
func (u *Usage) Set(resource types.ResourceType, value int64) {
	switch resource {
	case types.ResourceTypeSeats:
		u.Seats = value
	case types.ResourceTypeGroups:
		u.Groups = value
	case types.ResourceTypeCatalogItems:
		u.CatalogItems = value
	case types.ResourceTypeMessages:
		u.MessagesThisMonth = value
	case types.ResourceTypeChildTenants:
		u.ChildTenants = value
	}
}

// Subscription binds a tenant to a plan for a billing period and carries
// the usage counters gated by the plan limits.
type Subscription struct {
	ID                 string                   `db:"id" json:"id"`
	TenantID           string                   `db:"tenant_id" json:"tenant_id"`
	PlanID             string                   `db:"plan_id" json:"plan_id"`
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	PeriodStart        time.Time                `db:"period_start" json:"period_start"`
	PeriodEnd          time.Time                `db:"period_end" json:"period_end"`
	Usage              Usage                    `json:"usage"`
	CreatedAt          time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time                `db:"updated_at" json:"updated_at"`
}
