package postgres

import (
	"context"
	"encoding/json"

	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	"github.com/coachdesk/coachdesk/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

// usageColumn maps a resource type to its counter column. The whitelist
// keeps resource names out of string-built SQL.
var usageColumn = map[types.ResourceType]string{
	types.ResourceTypeSeats:        "seats",
	types.ResourceTypeGroups:       "groups",
	types.ResourceTypeCatalogItems: "catalog_items",
	types.ResourceTypeMessages:     "messages_this_month",
	types.ResourceTypeChildTenants: "child_tenants",
}

func (r *subscriptionRepository) CreatePlan(ctx context.Context, plan *subscription.Plan) error {
	query := `
	INSERT INTO plans (
		id, name, max_seats, max_groups, max_catalog_items, max_messages_per_month,
		max_child_tenants, features, trial_days, status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	featuresJSON, err := json.Marshal(plan.Features)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to marshal plan features").
			Mark(ierr.ErrValidation)
	}

	_, err = r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Limits.MaxSeats,
		plan.Limits.MaxGroups,
		plan.Limits.MaxCatalogItems,
		plan.Limits.MaxMessagesPerMonth,
		plan.Limits.MaxChildTenants,
		featuresJSON,
		plan.TrialDays,
		plan.Status,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("plan %s already exists", plan.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("failed to create plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) scanPlan(row *subscription.Plan, featuresJSON []byte) error {
	if len(featuresJSON) > 0 {
		if err := json.Unmarshal(featuresJSON, &row.Features); err != nil {
			return ierr.WithError(err).
				WithHint("failed to unmarshal plan features").
				Mark(ierr.ErrSystem)
		}
	}
	return nil
}

func (r *subscriptionRepository) GetPlan(ctx context.Context, id string) (*subscription.Plan, error) {
	query := `
	SELECT id, name, max_seats, max_groups, max_catalog_items, max_messages_per_month,
		max_child_tenants, features, trial_days, status, created_at, updated_at
	FROM plans WHERE id = $1
	`

	var plan subscription.Plan
	var featuresJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Limits.MaxSeats,
		&plan.Limits.MaxGroups,
		&plan.Limits.MaxCatalogItems,
		&plan.Limits.MaxMessagesPerMonth,
		&plan.Limits.MaxChildTenants,
		&featuresJSON,
		&plan.TrialDays,
		&plan.Status,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("plan not found").
				WithHintf("plan not found for id: %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get plan").
			Mark(ierr.ErrDatabase)
	}
	if err := r.scanPlan(&plan, featuresJSON); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *subscriptionRepository) ListPlans(ctx context.Context) ([]*subscription.Plan, error) {
	query := `
	SELECT id, name, max_seats, max_groups, max_catalog_items, max_messages_per_month,
		max_child_tenants, features, trial_days, status, created_at, updated_at
	FROM plans WHERE status = $1 ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, types.StatusActive)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var plans []*subscription.Plan
	for rows.Next() {
		var plan subscription.Plan
		var featuresJSON []byte
		err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.Limits.MaxSeats,
			&plan.Limits.MaxGroups,
			&plan.Limits.MaxCatalogItems,
			&plan.Limits.MaxMessagesPerMonth,
			&plan.Limits.MaxChildTenants,
			&featuresJSON,
			&plan.TrialDays,
			&plan.Status,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("failed to scan plan").
				Mark(ierr.ErrDatabase)
		}
		if err := r.scanPlan(&plan, featuresJSON); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
	INSERT INTO subscriptions (
		id, tenant_id, plan_id, subscription_status, period_start, period_end,
		seats, groups, catalog_items, messages_this_month, child_tenants,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.TenantID,
		sub.PlanID,
		sub.SubscriptionStatus,
		sub.PeriodStart,
		sub.PeriodEnd,
		sub.Usage.Seats,
		sub.Usage.Groups,
		sub.Usage.CatalogItems,
		sub.Usage.MessagesThisMonth,
		sub.Usage.ChildTenants,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("tenant %s already has a subscription", sub.TenantID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("failed to create subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) GetByTenant(ctx context.Context, tenantID string) (*subscription.Subscription, error) {
	query := `
	SELECT id, tenant_id, plan_id, subscription_status, period_start, period_end,
		seats, groups, catalog_items, messages_this_month, child_tenants,
		created_at, updated_at
	FROM subscriptions WHERE tenant_id = $1
	`

	var sub subscription.Subscription
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&sub.ID,
		&sub.TenantID,
		&sub.PlanID,
		&sub.SubscriptionStatus,
		&sub.PeriodStart,
		&sub.PeriodEnd,
		&sub.Usage.Seats,
		&sub.Usage.Groups,
		&sub.Usage.CatalogItems,
		&sub.Usage.MessagesThisMonth,
		&sub.Usage.ChildTenants,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("no subscription for tenant: %s", tenantID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
	UPDATE subscriptions
	SET plan_id = $2, subscription_status = $3, period_start = $4, period_end = $5, updated_at = NOW()
	WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.PlanID,
		sub.SubscriptionStatus,
		sub.PeriodStart,
		sub.PeriodEnd,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("subscription not found").
			WithHintf("subscription not found for id: %s", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// IncrementUsage adjusts one counter in a single statement so concurrent
// creations never lose updates. GREATEST clamps the counter at zero.
func (r *subscriptionRepository) IncrementUsage(ctx context.Context, tenantID string, resource types.ResourceType, delta int64) error {
	column, ok := usageColumn[resource]
	if !ok {
		return ierr.NewError("unknown resource type").
			WithHintf("no usage counter for resource: %s", resource).
			Mark(ierr.ErrValidation)
	}

	query := `
	UPDATE subscriptions
	SET "` + column + `" = GREATEST("` + column + `" + $2, 0), updated_at = NOW()
	WHERE tenant_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, tenantID, delta)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to adjust usage counter").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to adjust usage counter").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("subscription not found").
			WithHintf("no subscription for tenant: %s", tenantID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) UpdateUsage(ctx context.Context, tenantID string, usage subscription.Usage) error {
	query := `
	UPDATE subscriptions
	SET seats = $2, groups = $3, catalog_items = $4, messages_this_month = $5, child_tenants = $6,
		updated_at = NOW()
	WHERE tenant_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		tenantID,
		usage.Seats,
		usage.Groups,
		usage.CatalogItems,
		usage.MessagesThisMonth,
		usage.ChildTenants,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to overwrite usage counters").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to overwrite usage counters").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("subscription not found").
			WithHintf("no subscription for tenant: %s", tenantID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
