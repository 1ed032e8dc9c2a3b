package postgres

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/domain/payer"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	"github.com/coachdesk/coachdesk/internal/types"
)

type payerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPayerRepository(db *postgres.DB, logger *logger.Logger) payer.Repository {
	return &payerRepository{db: db, logger: logger}
}

const payerColumns = `id, name, email, recurring_fee, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *payerRepository) Create(ctx context.Context, p *payer.Payer) error {
	query := `
	INSERT INTO payers (` + payerColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Email,
		p.RecurringFee,
		p.TenantID,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
		p.CreatedBy,
		p.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("payer %s already exists", p.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("failed to create payer").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *payerRepository) Get(ctx context.Context, id string) (*payer.Payer, error) {
	query := `SELECT ` + payerColumns + ` FROM payers WHERE id = $1`

	var p payer.Payer
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("payer not found").
				WithHintf("payer not found for id: %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get payer").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *payerRepository) Update(ctx context.Context, p *payer.Payer) error {
	query := `
	UPDATE payers
	SET name = $2, email = $3, recurring_fee = $4, status = $5, updated_at = NOW(), updated_by = $6
	WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Email,
		p.RecurringFee,
		p.Status,
		p.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update payer").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update payer").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("payer not found").
			WithHintf("payer not found for id: %s", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *payerRepository) List(ctx context.Context) ([]*payer.Payer, error) {
	query := `SELECT ` + payerColumns + ` FROM payers WHERE tenant_id = $1 AND status != $2 ORDER BY created_at`

	var payers []*payer.Payer
	err := r.db.SelectContext(ctx, &payers, query, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list payers").
			Mark(ierr.ErrDatabase)
	}
	return payers, nil
}

// ListBillable spans all tenants; the monthly dues run bills every
// active payer with a positive recurring fee regardless of the caller's
// tenant.
func (r *payerRepository) ListBillable(ctx context.Context) ([]*payer.Payer, error) {
	query := `SELECT ` + payerColumns + ` FROM payers WHERE status = $1 AND recurring_fee > 0 ORDER BY created_at`

	var payers []*payer.Payer
	err := r.db.SelectContext(ctx, &payers, query, types.StatusActive)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list billable payers").
			Mark(ierr.ErrDatabase)
	}
	return payers, nil
}
