package postgres

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/domain/sequence"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	"github.com/coachdesk/coachdesk/internal/types"
)

type sequenceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSequenceRepository(db *postgres.DB, logger *logger.Logger) sequence.Repository {
	return &sequenceRepository{db: db, logger: logger}
}

// Next advances the counter in a single upsert-returning statement. The
// row lock taken by ON CONFLICT DO UPDATE serializes concurrent callers,
// so two transactions can never observe the same value.
func (r *sequenceRepository) Next(ctx context.Context, tenantID string, periodKey types.PeriodKey) (int64, error) {
	query := `
	INSERT INTO invoice_sequences (tenant_id, period_key, last_value, created_at, updated_at)
	VALUES ($1, $2, 1, NOW(), NOW())
	ON CONFLICT (tenant_id, period_key)
	DO UPDATE SET last_value = invoice_sequences.last_value + 1, updated_at = NOW()
	RETURNING last_value
	`

	var value int64
	err := r.db.QueryRowContext(ctx, query, tenantID, string(periodKey)).Scan(&value)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHintf("failed to advance invoice sequence for tenant %s period %s", tenantID, periodKey).
			Mark(ierr.ErrDatabase)
	}
	return value, nil
}

func (r *sequenceRepository) Current(ctx context.Context, tenantID string, periodKey types.PeriodKey) (int64, error) {
	query := `
	SELECT last_value FROM invoice_sequences
	WHERE tenant_id = $1 AND period_key = $2
	`

	var value int64
	err := r.db.QueryRowContext(ctx, query, tenantID, string(periodKey)).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, ierr.WithError(err).
			WithHint("failed to read invoice sequence").
			Mark(ierr.ErrDatabase)
	}
	return value, nil
}
