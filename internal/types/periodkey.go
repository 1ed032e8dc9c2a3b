package types

import (
	"fmt"
	"time"

	ierr "github.com/coachdesk/coachdesk/internal/errors"
)

// PeriodKey identifies a billing period as YYYYMM, e.g. "202504".
// Invoice sequences are scoped to one (tenant, period key) pair.
type PeriodKey string

// NewPeriodKey builds a period key from a year and month.
func NewPeriodKey(year int, month time.Month) PeriodKey {
	return PeriodKey(fmt.Sprintf("%04d%02d", year, int(month)))
}

// PeriodKeyFromTime builds a period key from the month of t in UTC.
func PeriodKeyFromTime(t time.Time) PeriodKey {
	return PeriodKey(t.UTC().Format("200601"))
}

func (k PeriodKey) String() string {
	return string(k)
}

func (k PeriodKey) Validate() error {
	if _, err := time.Parse("200601", string(k)); err != nil {
		return ierr.NewError("invalid period key").
			WithHintf("period key must be YYYYMM, got %q", string(k)).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ValidateBillingPeriod validates a month/year pair coming from the API
// boundary before it is turned into a period key.
func ValidateBillingPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return ierr.NewError("invalid billing period").
			WithHintf("month must be between 1 and 12, got %d", month).
			Mark(ierr.ErrValidation)
	}
	if year < 2000 || year > 2200 {
		return ierr.NewError("invalid billing period").
			WithHintf("year must be between 2000 and 2200, got %d", year).
			Mark(ierr.ErrValidation)
	}
	return nil
}
