package service

import (
	"testing"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/testutil"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PayerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PayerService
	params  ServiceParams
}

func TestPayerService(t *testing.T) {
	suite.Run(t, new(PayerServiceSuite))
}

func (s *PayerServiceSuite) SetupTest() {
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
	s.service = NewPayerService(s.params)

	// The context tenant needs a row so seat-limited plans can attach.
	t := &tenant.Tenant{
		ID:     types.DefaultTenantID,
		Name:   "Test Dojo",
		Status: types.StatusActive,
	}
	s.NoError(stores.TenantRepo.Create(s.GetContext(), t))
}

func (s *PayerServiceSuite) subscribeWithSeatLimit(maxSeats int64) {
	subscriptionService := NewSubscriptionService(s.params)
	plan, err := subscriptionService.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:   "Starter",
		Limits: subscription.PlanLimits{MaxSeats: maxSeats, MaxChildTenants: -1},
	})
	s.NoError(err)
	_, err = subscriptionService.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		TenantID: types.DefaultTenantID,
		PlanID:   plan.ID,
	})
	s.NoError(err)
}

func (s *PayerServiceSuite) TestCreatePayer() {
	resp, err := s.service.CreatePayer(s.GetContext(), dto.CreatePayerRequest{
		Name:         "Alice",
		Email:        "alice@example.com",
		RecurringFee: decimal.NewFromInt(100),
	})
	s.NoError(err)
	s.Equal(types.DefaultTenantID, resp.TenantID)
	s.Equal(types.StatusActive, resp.Status)
}

func (s *PayerServiceSuite) TestCreatePayerValidation() {
	_, err := s.service.CreatePayer(s.GetContext(), dto.CreatePayerRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreatePayer(s.GetContext(), dto.CreatePayerRequest{
		Name:         "Alice",
		RecurringFee: decimal.NewFromInt(-5),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PayerServiceSuite) TestCreatePayerSeatLimit() {
	s.subscribeWithSeatLimit(1)

	_, err := s.service.CreatePayer(s.GetContext(), dto.CreatePayerRequest{Name: "Alice"})
	s.NoError(err)

	_, err = s.service.CreatePayer(s.GetContext(), dto.CreatePayerRequest{Name: "Bob"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PayerServiceSuite) TestDeactivatePayerFreesSeat() {
	s.subscribeWithSeatLimit(1)

	created, err := s.service.CreatePayer(s.GetContext(), dto.CreatePayerRequest{Name: "Alice"})
	s.NoError(err)

	result, err := s.service.DeactivatePayer(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(result.Success)

	// The freed seat can be taken again.
	_, err = s.service.CreatePayer(s.GetContext(), dto.CreatePayerRequest{Name: "Bob"})
	s.NoError(err)

	// Deactivating twice is a visible no-op.
	result, err = s.service.DeactivatePayer(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(result.Skipped)
}
