package types

import (
	"fmt"

	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusDraft indicates the invoice can still be modified or deleted
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	// InvoiceStatusSent indicates the invoice was issued to the payer
	InvoiceStatusSent InvoiceStatus = "SENT"
	// InvoiceStatusPaid is terminal: no further transitions and no deletion
	InvoiceStatusPaid InvoiceStatus = "PAID"
	// InvoiceStatusOverdue indicates the invoice passed its due date unpaid
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	// InvoiceStatusCancelled is terminal
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// invoiceStatusTransitions is the allowed transition set:
// DRAFT -> SENT -> PAID, DRAFT/SENT -> CANCELLED, SENT -> OVERDUE -> PAID.
// PAID and CANCELLED are terminal.
var invoiceStatusTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft: {
		InvoiceStatusSent,
		InvoiceStatusCancelled,
	},
	InvoiceStatusSent: {
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	},
	InvoiceStatusOverdue: {
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
	},
	InvoiceStatusPaid:      {},
	InvoiceStatusCancelled: {},
}

// ValidateTransition returns ErrInvalidTransition when moving from s to
// target is not in the allowed set.
func (s InvoiceStatus) ValidateTransition(target InvoiceStatus) error {
	allowed, ok := invoiceStatusTransitions[s]
	if !ok {
		return ierr.NewError("invalid current invoice status").
			WithHintf("unknown invoice status %s", s).
			Mark(ierr.ErrValidation)
	}
	if !lo.Contains(allowed, target) {
		return ierr.NewError("invoice status transition not allowed").
			WithHintf("cannot transition invoice from %s to %s", s, target).
			WithReportableDetails(map[string]any{
				"from":    s,
				"to":      target,
				"allowed": allowed,
			}).
			Mark(ierr.ErrInvalidTransition)
	}
	return nil
}

// InvoiceKind distinguishes manually created invoices from the recurring
// monthly dues invoices minted by the generator. The idempotency key for
// recurring billing (payer, period month, period year) only applies to
// the recurring kind.
type InvoiceKind string

const (
	InvoiceKindManual        InvoiceKind = "MANUAL"
	InvoiceKindRecurringDues InvoiceKind = "RECURRING_DUES"
)

func (k InvoiceKind) String() string {
	return string(k)
}

func (k InvoiceKind) Validate() error {
	allowed := []InvoiceKind{InvoiceKindManual, InvoiceKindRecurringDues}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid invoice kind").
			WithHint("Please provide a valid invoice kind").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// FormatInvoiceNumber renders the stable external invoice number format
// INV-{YYYYMM}-{sequence} with the sequence zero-padded to width digits,
// e.g. INV-202504-0001.
func FormatInvoiceNumber(key PeriodKey, sequence int64, width int) string {
	return fmt.Sprintf("INV-%s-%0*d", key, width, sequence)
}

// MaxSequenceForWidth returns the largest sequence value that still fits
// the zero-padded width, e.g. 9999 for width 4.
func MaxSequenceForWidth(width int) int64 {
	max := int64(1)
	for i := 0; i < width; i++ {
		max *= 10
	}
	return max - 1
}
