package invoice

import (
	"time"

	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is the billing document issued to a payer. The invoice number
// is globally unique and follows INV-{YYYYMM}-{sequence}. A PAID invoice
// is terminal: it can neither change status nor be deleted.
type Invoice struct {
	ID            string              `db:"id" json:"id"`
	PayerID       string              `db:"payer_id" json:"payer_id"`
	InvoiceNumber string              `db:"invoice_number" json:"invoice_number"`
	Kind          types.InvoiceKind   `db:"kind" json:"kind"`
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	PeriodMonth   int                 `db:"period_month" json:"period_month"`
	PeriodYear    int                 `db:"period_year" json:"period_year"`
	Subtotal      decimal.Decimal     `db:"subtotal" json:"subtotal"`
	Discount      decimal.Decimal     `db:"discount" json:"discount"`
	Tax           decimal.Decimal     `db:"tax" json:"tax"`
	Total         decimal.Decimal     `db:"total" json:"total"`
	PaidAmount    *decimal.Decimal    `db:"paid_amount" json:"paid_amount,omitempty"`
	PaidAt        *time.Time          `db:"paid_at" json:"paid_at,omitempty"`
	DueDate       time.Time           `db:"due_date" json:"due_date"`
	LineItems     []*LineItem         `json:"line_items"`

	types.BaseModel
}

// LineItem is a single charge on an invoice
type LineItem struct {
	ID          string          `db:"id" json:"id"`
	InvoiceID   string          `db:"invoice_id" json:"invoice_id"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`

	types.BaseModel
}

// PeriodKey returns the billing period key the invoice belongs to
func (i *Invoice) PeriodKey() types.PeriodKey {
	return types.NewPeriodKey(i.PeriodYear, time.Month(i.PeriodMonth))
}
