package service

import (
	"testing"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/testutil"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
	params  ServiceParams

	testTenant *tenant.Tenant
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
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
	s.service = NewSubscriptionService(s.params)

	s.testTenant = &tenant.Tenant{
		ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TENANT),
		Name:   "Dojo",
		Status: types.StatusActive,
	}
	s.NoError(stores.TenantRepo.Create(s.GetContext(), s.testTenant))
}

func (s *SubscriptionServiceSuite) createPlan(limits subscription.PlanLimits, features ...types.FeatureKey) *dto.PlanResponse {
	plan, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:      "Pro",
		Limits:    limits,
		Features:  features,
		TrialDays: 14,
	})
	s.NoError(err)
	return plan
}

func (s *SubscriptionServiceSuite) subscribe(planID string) *dto.SubscriptionResponse {
	sub, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		TenantID: s.testTenant.ID,
		PlanID:   planID,
	})
	s.NoError(err)
	return sub
}

func (s *SubscriptionServiceSuite) TestCreateSubscription() {
	plan := s.createPlan(subscription.PlanLimits{MaxSeats: 10})

	sub := s.subscribe(plan.ID)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
	s.Equal(plan.ID, sub.PlanID)
	s.True(sub.PeriodEnd.After(sub.PeriodStart))
}

func (s *SubscriptionServiceSuite) TestCreateTrialSubscription() {
	plan := s.createPlan(subscription.PlanLimits{MaxSeats: 10})

	sub, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		TenantID: s.testTenant.ID,
		PlanID:   plan.ID,
		Trial:    true,
	})
	s.NoError(err)
	s.Equal(types.SubscriptionStatusTrial, sub.SubscriptionStatus)
	s.Equal(14, int(sub.PeriodEnd.Sub(sub.PeriodStart).Hours()/24))
}

func (s *SubscriptionServiceSuite) TestCheckLimitWithoutSubscription() {
	// No subscription row means unlimited; the long-standing default for
	// accounts that predate plans.
	resp, err := s.service.CheckLimit(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats)
	s.NoError(err)
	s.True(resp.Allowed)
	s.False(resp.Limited)
}

func (s *SubscriptionServiceSuite) TestCheckLimitBoundary() {
	plan := s.createPlan(subscription.PlanLimits{MaxSeats: 2})
	s.subscribe(plan.ID)

	resp, err := s.service.CheckLimit(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats)
	s.NoError(err)
	s.True(resp.Allowed)
	s.True(resp.Limited)
	s.Equal(int64(0), resp.Current)

	s.NoError(s.service.IncrementUsage(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats))
	resp, err = s.service.CheckLimit(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats)
	s.NoError(err)
	s.True(resp.Allowed, "1 of 2 seats used")

	// At the ceiling, the next creation is refused.
	s.NoError(s.service.IncrementUsage(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats))
	resp, err = s.service.CheckLimit(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats)
	s.NoError(err)
	s.False(resp.Allowed)
	s.Equal(int64(2), resp.Current)
	s.Equal(int64(2), resp.Max)
}

func (s *SubscriptionServiceSuite) TestCheckLimitUnlimitedResource() {
	plan := s.createPlan(subscription.PlanLimits{MaxSeats: -1, MaxGroups: 5})
	s.subscribe(plan.ID)

	resp, err := s.service.CheckLimit(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats)
	s.NoError(err)
	s.True(resp.Allowed)
	s.False(resp.Limited)
}

func (s *SubscriptionServiceSuite) TestDecrementUsageClampsAtZero() {
	plan := s.createPlan(subscription.PlanLimits{MaxSeats: 5})
	s.subscribe(plan.ID)

	s.NoError(s.service.DecrementUsage(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats))

	resp, err := s.service.CheckLimit(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats)
	s.NoError(err)
	s.Equal(int64(0), resp.Current)
}

func (s *SubscriptionServiceSuite) TestIncrementUsageWithoutSubscriptionIsNoop() {
	s.NoError(s.service.IncrementUsage(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats))
}

func (s *SubscriptionServiceSuite) TestReconcileUsage() {
	plan := s.createPlan(subscription.PlanLimits{MaxSeats: 100})
	s.subscribe(plan.ID)

	// Drift the counter: 50 counted, only 48 actually exist.
	for i := 0; i < 50; i++ {
		s.NoError(s.service.IncrementUsage(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats))
	}
	s.GetUsageSource().SetCount(s.testTenant.ID, types.ResourceTypeSeats, 48)
	s.GetUsageSource().SetCount(s.testTenant.ID, types.ResourceTypeGroups, 3)

	// Child tenants are counted from the hierarchy store, not the
	// generic usage source.
	parentID := s.testTenant.ID
	for _, name := range []string{"North", "South"} {
		s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), &tenant.Tenant{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TENANT),
			Name:           name,
			ParentID:       &parentID,
			HierarchyDepth: 1,
			Status:         types.StatusActive,
		}))
	}

	resp, err := s.service.ReconcileUsage(s.GetContext(), s.testTenant.ID)
	s.NoError(err)
	s.Equal(int64(48), resp.Usage.Seats)
	s.Equal(int64(3), resp.Usage.Groups)
	s.Equal(int64(2), resp.Usage.ChildTenants)

	check, err := s.service.CheckLimit(s.GetContext(), s.testTenant.ID, types.ResourceTypeSeats)
	s.NoError(err)
	s.Equal(int64(48), check.Current)
}

func (s *SubscriptionServiceSuite) TestReconcileUsageWithoutSubscription() {
	_, err := s.service.ReconcileUsage(s.GetContext(), s.testTenant.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestHasFeature() {
	plan := s.createPlan(subscription.PlanLimits{MaxSeats: 10}, types.FeatureKey("advanced_reports"))
	s.subscribe(plan.ID)

	resp, err := s.service.HasFeature(s.GetContext(), s.testTenant.ID, types.FeatureKey("advanced_reports"))
	s.NoError(err)
	s.True(resp.Enabled)

	resp, err = s.service.HasFeature(s.GetContext(), s.testTenant.ID, types.FeatureKey("white_label"))
	s.NoError(err)
	s.False(resp.Enabled)
}

func (s *SubscriptionServiceSuite) TestHasFeatureWithoutSubscription() {
	resp, err := s.service.HasFeature(s.GetContext(), s.testTenant.ID, types.FeatureKey("advanced_reports"))
	s.NoError(err)
	s.False(resp.Enabled)
}

func (s *SubscriptionServiceSuite) TestHasFeatureExpiredSubscription() {
	plan := s.createPlan(subscription.PlanLimits{MaxSeats: 10}, types.FeatureKey("advanced_reports"))
	sub := s.subscribe(plan.ID)

	sub.SubscriptionStatus = types.SubscriptionStatusExpired
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub.Subscription))

	resp, err := s.service.HasFeature(s.GetContext(), s.testTenant.ID, types.FeatureKey("advanced_reports"))
	s.NoError(err)
	s.False(resp.Enabled)
}
