package types

import (
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CommissionStatus is the settlement state of a commission transaction.
// The status is monotonic: PENDING -> PAID only, never reversed.
type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "PENDING"
	CommissionStatusPaid    CommissionStatus = "PAID"
)

func (s CommissionStatus) String() string {
	return string(s)
}

func (s CommissionStatus) Validate() error {
	allowed := []CommissionStatus{CommissionStatusPending, CommissionStatusPaid}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid commission status").
			WithHint("Please provide a valid commission status").
			Mark(ierr.ErrValidation)
	}
	return nil
}

const basisPointsDenominator = 10000

// CalculateCommission computes the commission owed on a sale:
// saleTotal * rateBasisPoints/10000 + fixedFee. Rates are integer basis
// points (1/100 of a percent) so persisted rates never carry float drift.
func CalculateCommission(saleTotal decimal.Decimal, rateBasisPoints int64, fixedFee decimal.Decimal) decimal.Decimal {
	rate := decimal.NewFromInt(rateBasisPoints).Div(decimal.NewFromInt(basisPointsDenominator))
	return saleTotal.Mul(rate).Add(fixedFee).Round(2)
}
