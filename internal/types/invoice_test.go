package types

import (
	"testing"
	"time"

	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceStatusTransitions(t *testing.T) {
	tests := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{InvoiceStatusDraft, InvoiceStatusSent, true},
		{InvoiceStatusDraft, InvoiceStatusCancelled, true},
		{InvoiceStatusDraft, InvoiceStatusPaid, false},
		{InvoiceStatusDraft, InvoiceStatusOverdue, false},
		{InvoiceStatusSent, InvoiceStatusPaid, true},
		{InvoiceStatusSent, InvoiceStatusOverdue, true},
		{InvoiceStatusSent, InvoiceStatusCancelled, true},
		{InvoiceStatusSent, InvoiceStatusDraft, false},
		{InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusCancelled, true},
		{InvoiceStatusOverdue, InvoiceStatusSent, false},
		{InvoiceStatusPaid, InvoiceStatusCancelled, false},
		{InvoiceStatusPaid, InvoiceStatusSent, false},
		{InvoiceStatusCancelled, InvoiceStatusSent, false},
		{InvoiceStatusCancelled, InvoiceStatusPaid, false},
	}

	for _, tt := range tests {
		err := tt.from.ValidateTransition(tt.to)
		if tt.allowed {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
		} else {
			assert.Error(t, err, "%s -> %s", tt.from, tt.to)
			assert.True(t, ierr.IsInvalidTransition(err))
		}
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	key := NewPeriodKey(2025, time.April)
	assert.Equal(t, "INV-202504-0001", FormatInvoiceNumber(key, 1, 4))
	assert.Equal(t, "INV-202504-0042", FormatInvoiceNumber(key, 42, 4))
	assert.Equal(t, "INV-202504-9999", FormatInvoiceNumber(key, 9999, 4))
	assert.Equal(t, "INV-202512-001", FormatInvoiceNumber(NewPeriodKey(2025, time.December), 1, 3))
}

func TestMaxSequenceForWidth(t *testing.T) {
	assert.Equal(t, int64(9), MaxSequenceForWidth(1))
	assert.Equal(t, int64(9999), MaxSequenceForWidth(4))
}

func TestPeriodKey(t *testing.T) {
	assert.Equal(t, PeriodKey("202504"), NewPeriodKey(2025, time.April))
	assert.Equal(t, PeriodKey("202512"), PeriodKeyFromTime(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)))

	assert.NoError(t, PeriodKey("202504").Validate())
	assert.Error(t, PeriodKey("2025-04").Validate())
	assert.Error(t, PeriodKey("202513").Validate())
}

func TestValidateBillingPeriod(t *testing.T) {
	assert.NoError(t, ValidateBillingPeriod(4, 2025))
	assert.Error(t, ValidateBillingPeriod(0, 2025))
	assert.Error(t, ValidateBillingPeriod(13, 2025))
	assert.Error(t, ValidateBillingPeriod(4, 1999))
}

func TestCalculateCommission(t *testing.T) {
	// 5% of 1000 plus a fixed 10.
	got := CalculateCommission(decimal.NewFromInt(1000), 500, decimal.NewFromInt(10))
	assert.True(t, got.Equal(decimal.NewFromInt(60)), "got %s", got)

	// Basis points keep fractional percentages exact: 2.5% of 1000.
	got = CalculateCommission(decimal.NewFromInt(1000), 250, decimal.Zero)
	assert.True(t, got.Equal(decimal.NewFromInt(25)), "got %s", got)

	got = CalculateCommission(decimal.Zero, 500, decimal.Zero)
	assert.True(t, got.IsZero(), "got %s", got)

	// Rounded to cents.
	got = CalculateCommission(decimal.RequireFromString("99.99"), 333, decimal.Zero)
	assert.True(t, got.Equal(decimal.RequireFromString("3.33")), "got %s", got)
}
