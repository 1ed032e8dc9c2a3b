package service

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/payer"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/samber/lo"
)

type PayerService interface {
	// CreatePayer registers a billable member under the context tenant.
	// Creation is gated by the tenant's seat ceiling: the limit is
	// checked before the write and the counter bumped only after the
	// write succeeds, so failed creations never count.
	CreatePayer(ctx context.Context, req dto.CreatePayerRequest) (*dto.PayerResponse, error)
	GetPayer(ctx context.Context, id string) (*dto.PayerResponse, error)
	ListPayers(ctx context.Context) ([]*dto.PayerResponse, error)
	DeactivatePayer(ctx context.Context, id string) (*dto.OperationResult, error)
}

type payerService struct {
	ServiceParams
	subscriptionService SubscriptionService
}

func NewPayerService(params ServiceParams) PayerService {
	return &payerService{
		ServiceParams:       params,
		subscriptionService: NewSubscriptionService(params),
	}
}

func (s *payerService) CreatePayer(ctx context.Context, req dto.CreatePayerRequest) (*dto.PayerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tenantID := types.GetTenantID(ctx)
	check, err := s.subscriptionService.CheckLimit(ctx, tenantID, types.ResourceTypeSeats)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, ierr.NewError("seat limit reached").
			WithHintf("tenant %s already uses %d of %d seats", tenantID, check.Current, check.Max).
			Mark(ierr.ErrInvalidOperation)
	}

	p := req.ToPayer(ctx)
	if err := s.PayerRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	if err := s.subscriptionService.IncrementUsage(ctx, tenantID, types.ResourceTypeSeats); err != nil {
		s.Logger.Errorw("failed to bump seat counter",
			"tenant_id", tenantID,
			"payer_id", p.ID,
			"error", err)
	}

	return dto.NewPayerResponse(p), nil
}

func (s *payerService) GetPayer(ctx context.Context, id string) (*dto.PayerResponse, error) {
	p, err := s.PayerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPayerResponse(p), nil
}

func (s *payerService) ListPayers(ctx context.Context) ([]*dto.PayerResponse, error) {
	payers, err := s.PayerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(payers, func(p *payer.Payer, _ int) *dto.PayerResponse {
		return dto.NewPayerResponse(p)
	}), nil
}

func (s *payerService) DeactivatePayer(ctx context.Context, id string) (*dto.OperationResult, error) {
	p, err := s.PayerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != types.StatusActive {
		return dto.NewSkippedResult("payer already inactive"), nil
	}

	p.Status = types.StatusInactive
	if err := s.PayerRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := s.subscriptionService.DecrementUsage(ctx, p.TenantID, types.ResourceTypeSeats); err != nil {
		s.Logger.Errorw("failed to lower seat counter",
			"tenant_id", p.TenantID,
			"payer_id", p.ID,
			"error", err)
	}

	return dto.NewOperationResult("payer deactivated", id), nil
}
