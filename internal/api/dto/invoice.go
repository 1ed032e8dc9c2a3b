package dto

import (
	"time"

	"github.com/coachdesk/coachdesk/internal/domain/invoice"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/coachdesk/coachdesk/internal/validator"
	"github.com/shopspring/decimal"
)

type InvoiceLineItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (r *InvoiceLineItemRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Quantity.IsNegative() || r.UnitPrice.IsNegative() {
		return ierr.NewError("invalid line item").
			WithHint("quantity and unit price cannot be negative").
			WithReportableDetails(map[string]any{
				"description": r.Description,
				"quantity":    r.Quantity,
				"unit_price":  r.UnitPrice,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type CreateInvoiceRequest struct {
	PayerID string                   `json:"payer_id" validate:"required"`
	Items   []InvoiceLineItemRequest `json:"items" validate:"required"`
	DueDate time.Time                `json:"due_date" validate:"required"`
	// Discount is an absolute amount subtracted from the subtotal before
	// tax is applied.
	Discount decimal.Decimal `json:"discount"`
	// TaxRatePercent is applied to the discounted subtotal, e.g. 10 for
	// a 10% tax.
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	// PeriodMonth/PeriodYear default to the issue month when zero.
	PeriodMonth int `json:"period_month,omitempty"`
	PeriodYear  int `json:"period_year,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if len(r.Items) == 0 {
		return ierr.NewError("invoice has no line items").
			WithHint("at least one line item is required").
			Mark(ierr.ErrValidation)
	}
	for i := range r.Items {
		if err := r.Items[i].Validate(); err != nil {
			return err
		}
	}
	if r.Discount.IsNegative() {
		return ierr.NewError("invalid discount").
			WithHint("discount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if r.TaxRatePercent.IsNegative() {
		return ierr.NewError("invalid tax rate").
			WithHint("tax rate cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if r.PeriodMonth != 0 || r.PeriodYear != 0 {
		if err := types.ValidateBillingPeriod(r.PeriodMonth, r.PeriodYear); err != nil {
			return err
		}
	}
	return nil
}

type UpdateInvoiceStatusRequest struct {
	InvoiceStatus types.InvoiceStatus `json:"invoice_status" validate:"required"`
	// PaidAmount defaults to the invoice total when transitioning to PAID.
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
}

func (r *UpdateInvoiceStatusRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.InvoiceStatus.Validate(); err != nil {
		return err
	}
	if r.PaidAmount != nil && r.PaidAmount.IsNegative() {
		return ierr.NewError("invalid paid amount").
			WithHint("paid amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type GenerateMonthlyDuesRequest struct {
	PeriodMonth int `json:"period_month" validate:"required"`
	PeriodYear  int `json:"period_year" validate:"required"`
}

func (r *GenerateMonthlyDuesRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return types.ValidateBillingPeriod(r.PeriodMonth, r.PeriodYear)
}

// GenerateMonthlyDuesResponse reports how the run went. Skipped counts
// payers that already had an invoice for the period, so a re-run of the
// same period reports created=0 rather than silently duplicating.
type GenerateMonthlyDuesResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}
