package invoice

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/types"
)

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	PayerID       string
	InvoiceStatus types.InvoiceStatus
	Kind          types.InvoiceKind
	PeriodMonth   int
	PeriodYear    int
}

type Repository interface {
	// CreateWithLineItems inserts the invoice and its line items in one
	// atomic unit. Returns ErrAlreadyExists when the recurring dues key
	// (payer, period month, period year) or the invoice number is already
	// taken, so concurrent duplicate runs surface as a skip instead of a
	// second row.
	CreateWithLineItems(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	// Delete removes the invoice and its line items atomically.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *Filter) ([]*Invoice, error)
	// ExistsRecurringForPeriod reports whether a non-cancelled recurring
	// dues invoice already exists for (payer, month, year).
	ExistsRecurringForPeriod(ctx context.Context, payerID string, month, year int) (bool, error)
}
