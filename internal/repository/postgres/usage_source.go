package postgres

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	"github.com/coachdesk/coachdesk/internal/types"
)

type usageSource struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewUsageSource builds the reconciliation source that counts live rows
// in the resource tables. Counter drift is always corrected toward these
// counts, never the other way around. Child tenants are not counted
// here; the tenant repository owns that count.
func NewUsageSource(db *postgres.DB, logger *logger.Logger) subscription.UsageSource {
	return &usageSource{db: db, logger: logger}
}

func (s *usageSource) CountActive(ctx context.Context, tenantID string, resource types.ResourceType) (int64, error) {
	var query string
	args := []interface{}{tenantID, types.StatusActive}

	switch resource {
	case types.ResourceTypeSeats:
		query = `SELECT COUNT(*) FROM payers WHERE tenant_id = $1 AND status = $2`
	case types.ResourceTypeGroups:
		query = `SELECT COUNT(*) FROM groups WHERE tenant_id = $1 AND status = $2`
	case types.ResourceTypeCatalogItems:
		query = `SELECT COUNT(*) FROM catalog_items WHERE tenant_id = $1 AND status = $2`
	case types.ResourceTypeMessages:
		monthStart := time.Now().UTC()
		monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
		query = `SELECT COUNT(*) FROM messages WHERE tenant_id = $1 AND created_at >= $2`
		args = []interface{}{tenantID, monthStart}
	default:
		return 0, ierr.NewError("unknown resource type").
			WithHintf("no count source for resource: %s", resource).
			Mark(ierr.ErrValidation)
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHintf("failed to count %s for tenant %s", resource, tenantID).
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
