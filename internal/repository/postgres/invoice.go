package postgres

import (
	"context"
	"strconv"

	"github.com/coachdesk/coachdesk/internal/domain/invoice"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	"github.com/coachdesk/coachdesk/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `id, payer_id, invoice_number, kind, invoice_status, period_month, period_year,
	subtotal, discount, tax, total, paid_amount, paid_at, due_date,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

const lineItemColumns = `id, invoice_id, description, quantity, unit_price, amount,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

// CreateWithLineItems inserts the invoice header and its line items in
// one transaction. The partial unique index on recurring dues and the
// unique invoice number index surface duplicate writes as
// ErrAlreadyExists, which callers treat as "someone else got there
// first".
func (r *invoiceRepository) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		`

		_, err := r.db.ExecContext(ctx, query,
			inv.ID,
			inv.PayerID,
			inv.InvoiceNumber,
			inv.Kind,
			inv.InvoiceStatus,
			inv.PeriodMonth,
			inv.PeriodYear,
			inv.Subtotal,
			inv.Discount,
			inv.Tax,
			inv.Total,
			inv.PaidAmount,
			inv.PaidAt,
			inv.DueDate,
			inv.TenantID,
			inv.Status,
			inv.CreatedAt,
			inv.UpdatedAt,
			inv.CreatedBy,
			inv.UpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ierr.WithError(err).
					WithHintf("invoice %s collides with an existing invoice number or dues period", inv.InvoiceNumber).
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("failed to create invoice").
				Mark(ierr.ErrDatabase)
		}

		for _, item := range inv.LineItems {
			if err := r.insertLineItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *invoiceRepository) insertLineItem(ctx context.Context, item *invoice.LineItem) error {
	query := `
	INSERT INTO invoice_line_items (` + lineItemColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.InvoiceID,
		item.Description,
		item.Quantity,
		item.UnitPrice,
		item.Amount,
		item.TenantID,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
		item.CreatedBy,
		item.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to create invoice line item").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var inv invoice.Invoice
	err := r.db.GetContext(ctx, &inv, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, invoice.NewNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	if err := r.loadLineItems(ctx, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) loadLineItems(ctx context.Context, inv *invoice.Invoice) error {
	query := `SELECT ` + lineItemColumns + ` FROM invoice_line_items WHERE invoice_id = $1 ORDER BY created_at`

	var items []*invoice.LineItem
	if err := r.db.SelectContext(ctx, &items, query, inv.ID); err != nil {
		return ierr.WithError(err).
			WithHint("failed to load invoice line items").
			Mark(ierr.ErrDatabase)
	}
	inv.LineItems = items
	return nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	UPDATE invoices
	SET invoice_status = $2, paid_amount = $3, paid_at = $4, due_date = $5,
		updated_at = NOW(), updated_by = $6
	WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.InvoiceStatus,
		inv.PaidAmount,
		inv.PaidAt,
		inv.DueDate,
		inv.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return invoice.NewNotFoundError(inv.ID)
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, id); err != nil {
			return ierr.WithError(err).
				WithHint("failed to delete invoice line items").
				Mark(ierr.ErrDatabase)
		}

		result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
		if err != nil {
			return ierr.WithError(err).
				WithHint("failed to delete invoice").
				Mark(ierr.ErrDatabase)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return ierr.WithError(err).
				WithHint("failed to delete invoice").
				Mark(ierr.ErrDatabase)
		}
		if rows == 0 {
			return invoice.NewNotFoundError(id)
		}
		return nil
	})
}

func (r *invoiceRepository) List(ctx context.Context, filter *invoice.Filter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []interface{}{}

	if filter != nil {
		if filter.PayerID != "" {
			args = append(args, filter.PayerID)
			query += ` AND payer_id = $` + strconv.Itoa(len(args))
		}
		if filter.InvoiceStatus != "" {
			args = append(args, filter.InvoiceStatus)
			query += ` AND invoice_status = $` + strconv.Itoa(len(args))
		}
		if filter.Kind != "" {
			args = append(args, filter.Kind)
			query += ` AND kind = $` + strconv.Itoa(len(args))
		}
		if filter.PeriodMonth != 0 {
			args = append(args, filter.PeriodMonth)
			query += ` AND period_month = $` + strconv.Itoa(len(args))
		}
		if filter.PeriodYear != 0 {
			args = append(args, filter.PeriodYear)
			query += ` AND period_year = $` + strconv.Itoa(len(args))
		}
	}
	query += ` ORDER BY created_at DESC`

	var invoices []*invoice.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	for _, inv := range invoices {
		if err := r.loadLineItems(ctx, inv); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (r *invoiceRepository) ExistsRecurringForPeriod(ctx context.Context, payerID string, month, year int) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM invoices
		WHERE payer_id = $1 AND period_month = $2 AND period_year = $3
			AND kind = $4 AND invoice_status != $5
	)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query,
		payerID, month, year,
		types.InvoiceKindRecurringDues, types.InvoiceStatusCancelled,
	).Scan(&exists)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("failed to check recurring dues invoice").
			Mark(ierr.ErrDatabase)
	}
	return exists, nil
}
