package postgres

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/domain/commission"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/lib/pq"
)

type commissionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCommissionRepository(db *postgres.DB, logger *logger.Logger) commission.Repository {
	return &commissionRepository{db: db, logger: logger}
}

const agreementColumns = `id, parent_tenant_id, child_tenant_id, rate_basis_points, fixed_fee, is_active, created_at, updated_at`

const transactionColumns = `id, agreement_id, sale_id, parent_tenant_id, child_tenant_id,
	sale_total, commission_amount, rate_basis_points, fixed_fee, commission_status, created_at, paid_at`

func (r *commissionRepository) CreateAgreement(ctx context.Context, a *commission.Agreement) error {
	query := `
	INSERT INTO commission_agreements (` + agreementColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.ParentTenantID,
		a.ChildTenantID,
		a.RateBasisPoints,
		a.FixedFee,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("active agreement already exists for parent %s and child %s", a.ParentTenantID, a.ChildTenantID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("failed to create commission agreement").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *commissionRepository) GetAgreement(ctx context.Context, id string) (*commission.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM commission_agreements WHERE id = $1`

	var a commission.Agreement
	err := r.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, commission.NewAgreementNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get commission agreement").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *commissionRepository) UpdateAgreement(ctx context.Context, a *commission.Agreement) error {
	query := `
	UPDATE commission_agreements
	SET rate_basis_points = $2, fixed_fee = $3, is_active = $4, updated_at = NOW()
	WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.RateBasisPoints,
		a.FixedFee,
		a.IsActive,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update commission agreement").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update commission agreement").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return commission.NewAgreementNotFoundError(a.ID)
	}
	return nil
}

func (r *commissionRepository) GetActiveAgreementForChild(ctx context.Context, childTenantID string) (*commission.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM commission_agreements WHERE child_tenant_id = $1 AND is_active = TRUE`

	var a commission.Agreement
	err := r.db.GetContext(ctx, &a, query, childTenantID)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("no active agreement for child tenant").
				WithHintf("no active agreement where %s is the child", childTenantID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get active commission agreement").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *commissionRepository) ListAgreements(ctx context.Context, parentTenantID string) ([]*commission.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM commission_agreements WHERE parent_tenant_id = $1 ORDER BY created_at`

	var agreements []*commission.Agreement
	if err := r.db.SelectContext(ctx, &agreements, query, parentTenantID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list commission agreements").
			Mark(ierr.ErrDatabase)
	}
	return agreements, nil
}

func (r *commissionRepository) CreateTransaction(ctx context.Context, txn *commission.Transaction) error {
	query := `
	INSERT INTO commission_transactions (` + transactionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.AgreementID,
		txn.SaleID,
		txn.ParentTenantID,
		txn.ChildTenantID,
		txn.SaleTotal,
		txn.CommissionAmount,
		txn.RateBasisPoints,
		txn.FixedFee,
		txn.CommissionStatus,
		txn.CreatedAt,
		txn.PaidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("sale %s already has a commission transaction", txn.SaleID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("failed to create commission transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *commissionRepository) GetTransaction(ctx context.Context, id string) (*commission.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM commission_transactions WHERE id = $1`

	var txn commission.Transaction
	err := r.db.GetContext(ctx, &txn, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, commission.NewTransactionNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get commission transaction").
			Mark(ierr.ErrDatabase)
	}
	return &txn, nil
}

func (r *commissionRepository) GetTransactionBySaleID(ctx context.Context, saleID string) (*commission.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM commission_transactions WHERE sale_id = $1`

	var txn commission.Transaction
	err := r.db.GetContext(ctx, &txn, query, saleID)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("transaction not found for sale").
				WithHintf("no commission transaction for sale: %s", saleID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get commission transaction by sale").
			Mark(ierr.ErrDatabase)
	}
	return &txn, nil
}

func (r *commissionRepository) UpdateTransaction(ctx context.Context, txn *commission.Transaction) error {
	query := `
	UPDATE commission_transactions
	SET commission_status = $2, paid_at = $3
	WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.CommissionStatus,
		txn.PaidAt,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update commission transaction").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update commission transaction").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return commission.NewTransactionNotFoundError(txn.ID)
	}
	return nil
}

func (r *commissionRepository) ListPendingTransactions(ctx context.Context, parentTenantID, childTenantID string) ([]*commission.Transaction, error) {
	query := `
	SELECT ` + transactionColumns + ` FROM commission_transactions
	WHERE parent_tenant_id = $1 AND child_tenant_id = $2 AND commission_status = $3
	ORDER BY created_at
	`

	var txns []*commission.Transaction
	err := r.db.SelectContext(ctx, &txns, query, parentTenantID, childTenantID, types.CommissionStatusPending)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list pending commission transactions").
			Mark(ierr.ErrDatabase)
	}
	return txns, nil
}

// MarkTransactionsPaid flips PENDING rows to PAID in one statement. The
// status guard in the WHERE clause keeps already paid rows untouched, and
// the returned count lets callers detect a concurrent payout of the same
// batch.
func (r *commissionRepository) MarkTransactionsPaid(ctx context.Context, ids []string, paidAt time.Time) (int64, error) {
	query := `
	UPDATE commission_transactions
	SET commission_status = $1, paid_at = $2
	WHERE id = ANY($3) AND commission_status = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		types.CommissionStatusPaid,
		paidAt,
		pq.Array(ids),
		types.CommissionStatusPending,
	)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to mark commission transactions paid").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to mark commission transactions paid").
			Mark(ierr.ErrDatabase)
	}
	return rows, nil
}
