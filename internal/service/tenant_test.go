package service

import (
	"testing"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type TenantServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TenantService
	params  ServiceParams
}

func TestTenantService(t *testing.T) {
	suite.Run(t, new(TenantServiceSuite))
}

func (s *TenantServiceSuite) SetupTest() {
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
	s.service = NewTenantService(s.params)
}

func (s *TenantServiceSuite) createTenant(name string, parentID *string) *dto.TenantResponse {
	resp, err := s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{
		Name:     name,
		ParentID: parentID,
	})
	s.NoError(err)
	return resp
}

func (s *TenantServiceSuite) TestCreateRootTenant() {
	resp := s.createTenant("HQ", nil)
	s.Nil(resp.ParentID)
	s.Equal(0, resp.HierarchyDepth)
}

func (s *TenantServiceSuite) TestCreateChildTenantDepth() {
	root := s.createTenant("HQ", nil)
	child := s.createTenant("Region", &root.ID)
	grandchild := s.createTenant("Club", &child.ID)

	s.Equal(1, child.HierarchyDepth)
	s.Equal(2, grandchild.HierarchyDepth)
}

func (s *TenantServiceSuite) TestCreateChildTenantUnknownParent() {
	missing := "tenant_missing"
	_, err := s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{
		Name:     "Orphan",
		ParentID: &missing,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *TenantServiceSuite) TestCreateChildTenantGatedByPlanLimit() {
	root := s.createTenant("HQ", nil)

	subscriptionService := NewSubscriptionService(s.params)
	plan, err := subscriptionService.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:   "Starter",
		Limits: subscription.PlanLimits{MaxSeats: -1, MaxChildTenants: 1},
	})
	s.NoError(err)
	_, err = subscriptionService.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		TenantID: root.ID,
		PlanID:   plan.ID,
	})
	s.NoError(err)

	s.createTenant("Region 1", &root.ID)

	_, err = s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{
		Name:     "Region 2",
		ParentID: &root.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TenantServiceSuite) TestListHierarchy() {
	root := s.createTenant("HQ", nil)
	region := s.createTenant("Region", &root.ID)
	clubA := s.createTenant("Club A", &region.ID)
	s.createTenant("Club B", &region.ID)

	children, err := s.service.ListChildren(s.GetContext(), region.ID)
	s.NoError(err)
	s.Len(children, 2)

	// Ancestors come back nearest first.
	ancestors, err := s.service.ListAncestors(s.GetContext(), clubA.ID)
	s.NoError(err)
	s.Len(ancestors, 2)
	s.Equal(region.ID, ancestors[0].ID)
	s.Equal(root.ID, ancestors[1].ID)

	descendants, err := s.service.ListDescendants(s.GetContext(), root.ID)
	s.NoError(err)
	s.Len(descendants, 3)
}

func (s *TenantServiceSuite) TestReparentTenant() {
	root := s.createTenant("HQ", nil)
	regionA := s.createTenant("Region A", &root.ID)
	regionB := s.createTenant("Region B", &root.ID)
	club := s.createTenant("Club", &regionA.ID)
	team := s.createTenant("Team", &club.ID)

	moved, err := s.service.ReparentTenant(s.GetContext(), club.ID, dto.ReparentTenantRequest{
		NewParentID: &regionB.ID,
	})
	s.NoError(err)
	s.Equal(regionB.ID, *moved.ParentID)
	s.Equal(2, moved.HierarchyDepth)

	// The subtree moved along and kept depth(parent)+1 == depth(child).
	got, err := s.service.GetTenant(s.GetContext(), team.ID)
	s.NoError(err)
	s.Equal(3, got.HierarchyDepth)
}

func (s *TenantServiceSuite) TestReparentTenantToRoot() {
	root := s.createTenant("HQ", nil)
	region := s.createTenant("Region", &root.ID)
	club := s.createTenant("Club", &region.ID)

	moved, err := s.service.ReparentTenant(s.GetContext(), region.ID, dto.ReparentTenantRequest{})
	s.NoError(err)
	s.Nil(moved.ParentID)
	s.Equal(0, moved.HierarchyDepth)

	got, err := s.service.GetTenant(s.GetContext(), club.ID)
	s.NoError(err)
	s.Equal(1, got.HierarchyDepth)
}

func (s *TenantServiceSuite) TestReparentTenantRejectsSelf() {
	root := s.createTenant("HQ", nil)

	_, err := s.service.ReparentTenant(s.GetContext(), root.ID, dto.ReparentTenantRequest{
		NewParentID: &root.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TenantServiceSuite) TestReparentTenantRejectsCycle() {
	root := s.createTenant("HQ", nil)
	region := s.createTenant("Region", &root.ID)
	club := s.createTenant("Club", &region.ID)

	// Moving the root under its own grandchild would close a cycle.
	_, err := s.service.ReparentTenant(s.GetContext(), root.ID, dto.ReparentTenantRequest{
		NewParentID: &club.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Nothing moved.
	got, err := s.service.GetTenant(s.GetContext(), root.ID)
	s.NoError(err)
	s.Nil(got.ParentID)
	s.Equal(0, got.HierarchyDepth)
}
