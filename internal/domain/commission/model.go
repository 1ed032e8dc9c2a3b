package commission

import (
	"time"

	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/shopspring/decimal"
)

// Agreement is a rate contract between a parent tenant and one of its
// direct children. At most one active agreement exists per
// (parent, child) pair. Commission only ever flows one hop, to the
// immediate parent; there is deliberately no multi-level roll-up.
type Agreement struct {
	ID              string          `db:"id" json:"id"`
	ParentTenantID  string          `db:"parent_tenant_id" json:"parent_tenant_id"`
	ChildTenantID   string          `db:"child_tenant_id" json:"child_tenant_id"`
	RateBasisPoints int64           `db:"rate_basis_points" json:"rate_basis_points"`
	FixedFee        decimal.Decimal `db:"fixed_fee" json:"fixed_fee"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction records the commission owed on one sale. Exactly one
// transaction exists per sale; the amount and the rate snapshot are
// immutable once created, and the status only ever moves PENDING -> PAID.
type Transaction struct {
	ID               string                 `db:"id" json:"id"`
	AgreementID      string                 `db:"agreement_id" json:"agreement_id"`
	SaleID           string                 `db:"sale_id" json:"sale_id"`
	ParentTenantID   string                 `db:"parent_tenant_id" json:"parent_tenant_id"`
	ChildTenantID    string                 `db:"child_tenant_id" json:"child_tenant_id"`
	SaleTotal        decimal.Decimal        `db:"sale_total" json:"sale_total"`
	CommissionAmount decimal.Decimal        `db:"commission_amount" json:"commission_amount"`
	RateBasisPoints  int64                  `db:"rate_basis_points" json:"rate_basis_points"`
	FixedFee         decimal.Decimal        `db:"fixed_fee" json:"fixed_fee"`
	CommissionStatus types.CommissionStatus `db:"commission_status" json:"commission_status"`
	CreatedAt        time.Time              `db:"created_at" json:"created_at"`
	PaidAt           *time.Time             `db:"paid_at" json:"paid_at,omitempty"`
}
