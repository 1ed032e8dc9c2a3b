package service

import (
	"context"
	"testing"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/testutil"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CommissionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CommissionService
	params  ServiceParams

	parent *tenant.Tenant
	child  *tenant.Tenant
}

func TestCommissionService(t *testing.T) {
	suite.Run(t, new(CommissionServiceSuite))
}

func (s *CommissionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.params = ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		TenantRepo:       stores.TenantRepo,
		PayerRepo:        stores.PayerRepo,
		InvoiceRepo:      stores.InvoiceRepo,
		SequenceRepo:     stores.SequenceRepo,
		CommissionRepo:   stores.CommissionRepo,
		SubscriptionRepo: stores.SubscriptionRepo,
		UsageSource:      stores.UsageSource,
	}
	s.service = NewCommissionService(s.params)

	s.parent = s.createTenant("HQ", nil)
	s.child = s.createTenant("Franchise", &s.parent.ID)
}

func (s *CommissionServiceSuite) createTenant(name string, parentID *string) *tenant.Tenant {
	depth := 0
	if parentID != nil {
		p, err := s.GetStores().TenantRepo.Get(s.GetContext(), *parentID)
		s.NoError(err)
		depth = p.HierarchyDepth + 1
	}
	t := &tenant.Tenant{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TENANT),
		Name:           name,
		ParentID:       parentID,
		HierarchyDepth: depth,
		Status:         types.StatusActive,
	}
	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), t))
	return t
}

func (s *CommissionServiceSuite) createAgreement(rateBasisPoints int64, fixedFee decimal.Decimal) *dto.AgreementResponse {
	resp, err := s.service.CreateAgreement(s.GetContext(), dto.CreateAgreementRequest{
		ParentTenantID:  s.parent.ID,
		ChildTenantID:   s.child.ID,
		RateBasisPoints: rateBasisPoints,
		FixedFee:        fixedFee,
	})
	s.NoError(err)
	return resp
}

func (s *CommissionServiceSuite) TestCreateAgreement() {
	resp := s.createAgreement(500, decimal.NewFromInt(10))
	s.True(resp.IsActive)
	s.Equal(int64(500), resp.RateBasisPoints)
}

func (s *CommissionServiceSuite) TestCreateAgreementRequiresDirectParent() {
	grandchild := s.createTenant("Club", &s.child.ID)

	// HQ is the grandparent of the club, not its direct parent.
	_, err := s.service.CreateAgreement(s.GetContext(), dto.CreateAgreementRequest{
		ParentTenantID:  s.parent.ID,
		ChildTenantID:   grandchild.ID,
		RateBasisPoints: 500,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CommissionServiceSuite) TestCreateAgreementDuplicateActivePair() {
	s.createAgreement(500, decimal.Zero)

	_, err := s.service.CreateAgreement(s.GetContext(), dto.CreateAgreementRequest{
		ParentTenantID:  s.parent.ID,
		ChildTenantID:   s.child.ID,
		RateBasisPoints: 300,
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *CommissionServiceSuite) TestCreateAgreementAfterDeactivation() {
	first := s.createAgreement(500, decimal.Zero)

	result, err := s.service.DeactivateAgreement(s.GetContext(), first.ID)
	s.NoError(err)
	s.True(result.Success)

	// With the first agreement inactive, a replacement is allowed.
	s.createAgreement(300, decimal.Zero)
}

func (s *CommissionServiceSuite) TestOnSaleCompleted() {
	agreement := s.createAgreement(500, decimal.NewFromInt(10))

	// 5% of 1000 plus the 10 fixed fee.
	result, err := s.service.OnSaleCompleted(s.GetContext(), dto.SaleCompletedRequest{
		SaleID:        "sale-1",
		ChildTenantID: s.child.ID,
		SaleTotal:     decimal.NewFromInt(1000),
	})
	s.NoError(err)
	s.True(result.Success)
	s.False(result.Skipped)
	s.NotNil(result.ID)

	txn, err := s.service.GetTransaction(s.GetContext(), *result.ID)
	s.NoError(err)
	s.True(txn.CommissionAmount.Equal(decimal.NewFromInt(60)), "amount %s", txn.CommissionAmount)
	s.Equal(types.CommissionStatusPending, txn.CommissionStatus)
	s.Equal(agreement.ID, txn.AgreementID)
	s.Equal(int64(500), txn.RateBasisPoints)
}

func (s *CommissionServiceSuite) TestOnSaleCompletedExactlyOnce() {
	s.createAgreement(500, decimal.NewFromInt(10))

	req := dto.SaleCompletedRequest{
		SaleID:        "sale-1",
		ChildTenantID: s.child.ID,
		SaleTotal:     decimal.NewFromInt(1000),
	}

	first, err := s.service.OnSaleCompleted(s.GetContext(), req)
	s.NoError(err)
	s.False(first.Skipped)

	// A replay of the same sale event is a visible no-op that points at
	// the transaction the first delivery created.
	second, err := s.service.OnSaleCompleted(s.GetContext(), req)
	s.NoError(err)
	s.True(second.Skipped)
	s.NotNil(second.ID)
	s.Equal(*first.ID, *second.ID)

	pending, err := s.service.ListPendingTransactions(s.GetContext(), s.parent.ID, s.child.ID)
	s.NoError(err)
	s.Len(pending, 1)
}

func (s *CommissionServiceSuite) TestOnSaleCompletedWithoutAgreement() {
	result, err := s.service.OnSaleCompleted(s.GetContext(), dto.SaleCompletedRequest{
		SaleID:        "sale-1",
		ChildTenantID: s.child.ID,
		SaleTotal:     decimal.NewFromInt(1000),
	})
	s.NoError(err)
	s.True(result.Skipped)
}

func (s *CommissionServiceSuite) TestOnSaleCompletedZeroCommission() {
	s.createAgreement(0, decimal.Zero)

	result, err := s.service.OnSaleCompleted(s.GetContext(), dto.SaleCompletedRequest{
		SaleID:        "sale-1",
		ChildTenantID: s.child.ID,
		SaleTotal:     decimal.NewFromInt(1000),
	})
	s.NoError(err)
	s.True(result.Skipped)

	pending, err := s.service.ListPendingTransactions(s.GetContext(), s.parent.ID, s.child.ID)
	s.NoError(err)
	s.Empty(pending)
}

func (s *CommissionServiceSuite) TestOnSaleCompletedSkipsAfterReparent() {
	s.createAgreement(500, decimal.Zero)

	// Move the child away; the stale agreement must not pay the old
	// parent anymore.
	other := s.createTenant("Other HQ", nil)
	s.child.ParentID = &other.ID
	s.NoError(s.GetStores().TenantRepo.Update(s.GetContext(), s.child))

	result, err := s.service.OnSaleCompleted(s.GetContext(), dto.SaleCompletedRequest{
		SaleID:        "sale-1",
		ChildTenantID: s.child.ID,
		SaleTotal:     decimal.NewFromInt(1000),
	})
	s.NoError(err)
	s.True(result.Skipped)
}

func (s *CommissionServiceSuite) recordSale(saleID string, total int64) string {
	result, err := s.service.OnSaleCompleted(s.GetContext(), dto.SaleCompletedRequest{
		SaleID:        saleID,
		ChildTenantID: s.child.ID,
		SaleTotal:     decimal.NewFromInt(total),
	})
	s.NoError(err)
	s.False(result.Skipped)
	return *result.ID
}

func (s *CommissionServiceSuite) TestMarkPaid() {
	s.createAgreement(500, decimal.NewFromInt(10))
	txnID := s.recordSale("sale-1", 1000)

	ctx := types.SetTenantID(s.GetContext(), s.parent.ID)
	paid, err := s.service.MarkPaid(ctx, txnID)
	s.NoError(err)
	s.Equal(types.CommissionStatusPaid, paid.CommissionStatus)
	s.NotNil(paid.PaidAt)

	// Settling twice is an invalid transition.
	_, err = s.service.MarkPaid(ctx, txnID)
	s.Error(err)
	s.True(ierr.IsInvalidTransition(err))
}

func (s *CommissionServiceSuite) TestMarkPaidDeniedForNonParent() {
	s.createAgreement(500, decimal.Zero)
	txnID := s.recordSale("sale-1", 1000)

	ctx := types.SetTenantID(s.GetContext(), s.child.ID)
	_, err := s.service.MarkPaid(ctx, txnID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *CommissionServiceSuite) TestMarkPaidDeniedWithoutTenantIdentity() {
	s.createAgreement(500, decimal.Zero)
	txnID := s.recordSale("sale-1", 1000)

	// A caller that carries no tenant identity at all is refused; the
	// gate fails closed rather than treating anonymity as the parent.
	_, err := s.service.MarkPaid(context.Background(), txnID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	txn, err := s.service.GetTransaction(s.GetContext(), txnID)
	s.NoError(err)
	s.Equal(types.CommissionStatusPending, txn.CommissionStatus)
}

func (s *CommissionServiceSuite) TestBulkPayout() {
	s.createAgreement(500, decimal.NewFromInt(10))
	s.recordSale("sale-1", 1000) // 60
	s.recordSale("sale-2", 2000) // 110
	settledID := s.recordSale("sale-3", 400) // 30

	// One of the three is settled individually before the batch runs.
	ctx := types.SetTenantID(s.GetContext(), s.parent.ID)
	_, err := s.service.MarkPaid(ctx, settledID)
	s.NoError(err)

	resp, err := s.service.BulkPayout(s.GetContext(), dto.BulkPayoutRequest{
		ParentTenantID: s.parent.ID,
		ChildTenantID:  s.child.ID,
	})
	s.NoError(err)
	s.Equal(2, resp.Count)
	s.True(resp.TotalAmount.Equal(decimal.NewFromInt(170)), "total %s", resp.TotalAmount)

	pending, err := s.service.ListPendingTransactions(s.GetContext(), s.parent.ID, s.child.ID)
	s.NoError(err)
	s.Empty(pending)
}

func (s *CommissionServiceSuite) TestBulkPayoutNothingToPay() {
	s.createAgreement(500, decimal.Zero)

	_, err := s.service.BulkPayout(s.GetContext(), dto.BulkPayoutRequest{
		ParentTenantID: s.parent.ID,
		ChildTenantID:  s.child.ID,
	})
	s.Error(err)
	s.True(ierr.IsNothingToPay(err))
}
