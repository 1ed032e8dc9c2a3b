package payer

import (
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/shopspring/decimal"
)

// Payer is a billable member (student or guardian) of a tenant. Payers
// with a non-zero recurring fee are picked up by the monthly dues run.
type Payer struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Email        string          `db:"email" json:"email"`
	RecurringFee decimal.Decimal `db:"recurring_fee" json:"recurring_fee"`

	types.BaseModel
}

// IsBillable reports whether the payer should receive a recurring dues
// invoice.
func (p *Payer) IsBillable() bool {
	return p.Status == types.StatusActive && p.RecurringFee.IsPositive()
}
