package dto

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/domain/payer"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/coachdesk/coachdesk/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePayerRequest struct {
	Name         string          `json:"name" validate:"required"`
	Email        string          `json:"email" validate:"omitempty,email"`
	RecurringFee decimal.Decimal `json:"recurring_fee"`
}

func (r *CreatePayerRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.RecurringFee.IsNegative() {
		return ierr.NewError("invalid recurring fee").
			WithHint("recurring fee cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreatePayerRequest) ToPayer(ctx context.Context) *payer.Payer {
	return &payer.Payer{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYER),
		Name:         r.Name,
		Email:        r.Email,
		RecurringFee: r.RecurringFee,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

type PayerResponse struct {
	*payer.Payer
}

func NewPayerResponse(p *payer.Payer) *PayerResponse {
	return &PayerResponse{Payer: p}
}
