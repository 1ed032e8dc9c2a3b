package service

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/commission"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type CommissionService interface {
	CreateAgreement(ctx context.Context, req dto.CreateAgreementRequest) (*dto.AgreementResponse, error)
	GetAgreement(ctx context.Context, id string) (*dto.AgreementResponse, error)
	ListAgreements(ctx context.Context, parentTenantID string) ([]*dto.AgreementResponse, error)
	DeactivateAgreement(ctx context.Context, id string) (*dto.OperationResult, error)

	// OnSaleCompleted records the commission owed to the immediate
	// parent of the selling tenant. Exactly one transaction ever exists
	// per sale: replays and concurrent deliveries of the same sale event
	// come back as a visible skip, not a second row. Commission flows
	// one hop only, never further up the hierarchy.
	OnSaleCompleted(ctx context.Context, req dto.SaleCompletedRequest) (*dto.OperationResult, error)
	GetTransaction(ctx context.Context, id string) (*dto.CommissionTransactionResponse, error)
	ListPendingTransactions(ctx context.Context, parentTenantID, childTenantID string) ([]*dto.CommissionTransactionResponse, error)
	// MarkPaid settles a single transaction. Only the parent tenant on
	// the agreement may settle it.
	MarkPaid(ctx context.Context, transactionID string) (*dto.CommissionTransactionResponse, error)
	// BulkPayout settles every PENDING transaction for the pair as one
	// atomic batch and reports the settled count and amount from the
	// same snapshot.
	BulkPayout(ctx context.Context, req dto.BulkPayoutRequest) (*dto.BulkPayoutResponse, error)
}

type commissionService struct {
	ServiceParams
}

func NewCommissionService(params ServiceParams) CommissionService {
	return &commissionService{ServiceParams: params}
}

func (s *commissionService) CreateAgreement(ctx context.Context, req dto.CreateAgreementRequest) (*dto.AgreementResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	child, err := s.TenantRepo.Get(ctx, req.ChildTenantID)
	if err != nil {
		return nil, err
	}
	if _, err := s.TenantRepo.Get(ctx, req.ParentTenantID); err != nil {
		return nil, err
	}

	// Agreements only exist between a tenant and its immediate parent.
	if child.ParentID == nil || *child.ParentID != req.ParentTenantID {
		return nil, ierr.NewError("agreement parent is not the immediate parent").
			WithHintf("tenant %s is not the direct parent of %s", req.ParentTenantID, req.ChildTenantID).
			Mark(ierr.ErrInvalidOperation)
	}

	agreement := req.ToAgreement(ctx)
	if err := s.CommissionRepo.CreateAgreement(ctx, agreement); err != nil {
		return nil, err
	}

	s.Logger.Infow("created commission agreement",
		"agreement_id", agreement.ID,
		"parent_tenant_id", agreement.ParentTenantID,
		"child_tenant_id", agreement.ChildTenantID,
		"rate_basis_points", agreement.RateBasisPoints)

	return dto.NewAgreementResponse(agreement), nil
}

func (s *commissionService) GetAgreement(ctx context.Context, id string) (*dto.AgreementResponse, error) {
	agreement, err := s.CommissionRepo.GetAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewAgreementResponse(agreement), nil
}

func (s *commissionService) ListAgreements(ctx context.Context, parentTenantID string) ([]*dto.AgreementResponse, error) {
	agreements, err := s.CommissionRepo.ListAgreements(ctx, parentTenantID)
	if err != nil {
		return nil, err
	}
	return lo.Map(agreements, func(a *commission.Agreement, _ int) *dto.AgreementResponse {
		return dto.NewAgreementResponse(a)
	}), nil
}

func (s *commissionService) DeactivateAgreement(ctx context.Context, id string) (*dto.OperationResult, error) {
	agreement, err := s.CommissionRepo.GetAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	if !agreement.IsActive {
		return dto.NewSkippedResult("agreement already inactive"), nil
	}
	agreement.IsActive = false
	agreement.UpdatedAt = time.Now().UTC()
	if err := s.CommissionRepo.UpdateAgreement(ctx, agreement); err != nil {
		return nil, err
	}
	return dto.NewOperationResult("agreement deactivated", id), nil
}

func (s *commissionService) OnSaleCompleted(ctx context.Context, req dto.SaleCompletedRequest) (*dto.OperationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	agreement, err := s.CommissionRepo.GetActiveAgreementForChild(ctx, req.ChildTenantID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return dto.NewSkippedResult("no active commission agreement for tenant"), nil
		}
		return nil, err
	}

	// The tenant may have been re-parented since the agreement was set
	// up; commission only flows to the current immediate parent.
	child, err := s.TenantRepo.Get(ctx, req.ChildTenantID)
	if err != nil {
		return nil, err
	}
	if child.ParentID == nil || *child.ParentID != agreement.ParentTenantID {
		s.Logger.Warnw("active agreement no longer matches tenant parent, skipping commission",
			"agreement_id", agreement.ID,
			"child_tenant_id", req.ChildTenantID)
		return dto.NewSkippedResult("agreement parent is no longer the immediate parent"), nil
	}

	amount := types.CalculateCommission(req.SaleTotal, agreement.RateBasisPoints, agreement.FixedFee)
	if !amount.IsPositive() {
		return dto.NewSkippedResult("computed commission is not positive"), nil
	}

	txn := &commission.Transaction{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMMISSION_TRANSACTION),
		AgreementID:      agreement.ID,
		SaleID:           req.SaleID,
		ParentTenantID:   agreement.ParentTenantID,
		ChildTenantID:    agreement.ChildTenantID,
		SaleTotal:        req.SaleTotal,
		CommissionAmount: amount,
		RateBasisPoints:  agreement.RateBasisPoints,
		FixedFee:         agreement.FixedFee,
		CommissionStatus: types.CommissionStatusPending,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.CommissionRepo.CreateTransaction(ctx, txn); err != nil {
		// First writer wins on the sale id; replays observe the existing
		// transaction and report a no-op pointing at it.
		if ierr.IsAlreadyExists(err) {
			existing, lookupErr := s.CommissionRepo.GetTransactionBySaleID(ctx, req.SaleID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			result := dto.NewSkippedResult("commission already recorded for sale")
			result.ID = &existing.ID
			return result, nil
		}
		return nil, err
	}

	s.Logger.Infow("recorded commission transaction",
		"transaction_id", txn.ID,
		"sale_id", txn.SaleID,
		"parent_tenant_id", txn.ParentTenantID,
		"child_tenant_id", txn.ChildTenantID,
		"commission_amount", txn.CommissionAmount)

	return dto.NewOperationResult("commission recorded", txn.ID), nil
}

func (s *commissionService) GetTransaction(ctx context.Context, id string) (*dto.CommissionTransactionResponse, error) {
	txn, err := s.CommissionRepo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCommissionTransactionResponse(txn), nil
}

func (s *commissionService) ListPendingTransactions(ctx context.Context, parentTenantID, childTenantID string) ([]*dto.CommissionTransactionResponse, error) {
	txns, err := s.CommissionRepo.ListPendingTransactions(ctx, parentTenantID, childTenantID)
	if err != nil {
		return nil, err
	}
	return lo.Map(txns, func(t *commission.Transaction, _ int) *dto.CommissionTransactionResponse {
		return dto.NewCommissionTransactionResponse(t)
	}), nil
}

func (s *commissionService) MarkPaid(ctx context.Context, transactionID string) (*dto.CommissionTransactionResponse, error) {
	var txn *commission.Transaction
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.CommissionRepo.GetTransaction(ctx, transactionID)
		if err != nil {
			return err
		}

		// Settlement is the parent tenant's call alone; a caller with no
		// tenant identity at all is refused the same way.
		if callerTenant := types.GetTenantID(ctx); callerTenant != txn.ParentTenantID {
			return ierr.NewError("commission settlement denied").
				WithHint("only the parent tenant on the agreement can settle a commission").
				Mark(ierr.ErrPermissionDenied)
		}

		if txn.CommissionStatus == types.CommissionStatusPaid {
			return ierr.NewError("commission transaction already settled").
				WithHintf("transaction %s is already PAID", transactionID).
				Mark(ierr.ErrInvalidTransition)
		}

		now := time.Now().UTC()
		txn.CommissionStatus = types.CommissionStatusPaid
		txn.PaidAt = &now
		return s.CommissionRepo.UpdateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("settled commission transaction",
		"transaction_id", txn.ID,
		"commission_amount", txn.CommissionAmount)

	return dto.NewCommissionTransactionResponse(txn), nil
}

func (s *commissionService) BulkPayout(ctx context.Context, req dto.BulkPayoutRequest) (*dto.BulkPayoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp := &dto.BulkPayoutResponse{TotalAmount: decimal.Zero}
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		// One snapshot drives both the batch update and the summary;
		// transactions arriving mid-batch are left for the next run.
		pending, err := s.CommissionRepo.ListPendingTransactions(ctx, req.ParentTenantID, req.ChildTenantID)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return ierr.NewError("no pending commissions to pay out").
				WithHintf("no PENDING transactions for parent %s and child %s",
					req.ParentTenantID, req.ChildTenantID).
				Mark(ierr.ErrNothingToPay)
		}

		ids := make([]string, 0, len(pending))
		total := decimal.Zero
		for _, txn := range pending {
			ids = append(ids, txn.ID)
			total = total.Add(txn.CommissionAmount)
		}

		updated, err := s.CommissionRepo.MarkTransactionsPaid(ctx, ids, time.Now().UTC())
		if err != nil {
			return err
		}
		if updated != int64(len(ids)) {
			// A row left PENDING in our snapshot was settled elsewhere
			// mid-transaction; roll everything back and let the caller
			// retry against a clean state.
			return ierr.NewError("payout batch lost a settlement race").
				WithHintf("expected to settle %d transactions, settled %d", len(ids), updated).
				Mark(ierr.ErrConflict)
		}

		resp.Count = len(ids)
		resp.TotalAmount = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("bulk commission payout settled",
		"parent_tenant_id", req.ParentTenantID,
		"child_tenant_id", req.ChildTenantID,
		"count", resp.Count,
		"total_amount", resp.TotalAmount)

	return resp, nil
}
