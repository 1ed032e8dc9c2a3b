package dto

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/domain/commission"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/coachdesk/coachdesk/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateAgreementRequest struct {
	ParentTenantID  string          `json:"parent_tenant_id" validate:"required"`
	ChildTenantID   string          `json:"child_tenant_id" validate:"required"`
	RateBasisPoints int64           `json:"rate_basis_points" validate:"min=0"`
	FixedFee        decimal.Decimal `json:"fixed_fee"`
}

func (r *CreateAgreementRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.ParentTenantID == r.ChildTenantID {
		return ierr.NewError("invalid agreement").
			WithHint("parent and child tenant must differ").
			Mark(ierr.ErrValidation)
	}
	if r.FixedFee.IsNegative() {
		return ierr.NewError("invalid fixed fee").
			WithHint("fixed fee cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateAgreementRequest) ToAgreement(ctx context.Context) *commission.Agreement {
	now := time.Now().UTC()
	return &commission.Agreement{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMMISSION_AGREEMENT),
		ParentTenantID:  r.ParentTenantID,
		ChildTenantID:   r.ChildTenantID,
		RateBasisPoints: r.RateBasisPoints,
		FixedFee:        r.FixedFee,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type SaleCompletedRequest struct {
	SaleID        string          `json:"sale_id" validate:"required"`
	ChildTenantID string          `json:"child_tenant_id" validate:"required"`
	SaleTotal     decimal.Decimal `json:"sale_total"`
}

func (r *SaleCompletedRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.SaleTotal.IsNegative() {
		return ierr.NewError("invalid sale total").
			WithHint("sale total cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type BulkPayoutRequest struct {
	ParentTenantID string `json:"parent_tenant_id" validate:"required"`
	ChildTenantID  string `json:"child_tenant_id" validate:"required"`
}

func (r *BulkPayoutRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// BulkPayoutResponse summarises one payout batch. Count and TotalAmount
// are computed from the same snapshot the batch update ran on.
type BulkPayoutResponse struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type AgreementResponse struct {
	*commission.Agreement
}

func NewAgreementResponse(a *commission.Agreement) *AgreementResponse {
	return &AgreementResponse{Agreement: a}
}

type CommissionTransactionResponse struct {
	*commission.Transaction
}

func NewCommissionTransactionResponse(t *commission.Transaction) *CommissionTransactionResponse {
	return &CommissionTransactionResponse{Transaction: t}
}
