package service

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/samber/lo"
)

type TenantService interface {
	CreateTenant(ctx context.Context, req dto.CreateTenantRequest) (*dto.TenantResponse, error)
	GetTenant(ctx context.Context, id string) (*dto.TenantResponse, error)
	ListTenants(ctx context.Context) ([]*dto.TenantResponse, error)
	ListChildren(ctx context.Context, parentID string) ([]*dto.TenantResponse, error)
	ListAncestors(ctx context.Context, id string) ([]*dto.TenantResponse, error)
	ListDescendants(ctx context.Context, id string) ([]*dto.TenantResponse, error)
	// ReparentTenant moves a tenant (and its subtree) under a new parent,
	// refusing moves that would close a cycle and recomputing the cached
	// hierarchy depths of the whole subtree.
	ReparentTenant(ctx context.Context, id string, req dto.ReparentTenantRequest) (*dto.TenantResponse, error)
}

type tenantService struct {
	ServiceParams
	subscriptionService SubscriptionService
}

func NewTenantService(params ServiceParams) TenantService {
	return &tenantService{
		ServiceParams:       params,
		subscriptionService: NewSubscriptionService(params),
	}
}

func (s *tenantService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	newTenant := req.ToTenant(ctx)

	if req.ParentID != nil {
		parent, err := s.TenantRepo.Get(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		newTenant.HierarchyDepth = parent.HierarchyDepth + 1

		// Gate sub-tenant creation on the parent's plan ceiling before
		// the write, and bump the counter only once the write succeeded.
		check, err := s.subscriptionService.CheckLimit(ctx, parent.ID, types.ResourceTypeChildTenants)
		if err != nil {
			return nil, err
		}
		if !check.Allowed {
			return nil, ierr.NewError("child tenant limit reached").
				WithHintf("tenant %s already has %d of %d sub-tenants", parent.ID, check.Current, check.Max).
				Mark(ierr.ErrInvalidOperation)
		}
	}

	if err := s.TenantRepo.Create(ctx, newTenant); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if err := s.subscriptionService.IncrementUsage(ctx, *req.ParentID, types.ResourceTypeChildTenants); err != nil {
			s.Logger.Errorw("failed to bump child tenant counter",
				"parent_tenant_id", *req.ParentID,
				"error", err)
		}
	}

	s.Logger.Infow("created tenant",
		"tenant_id", newTenant.ID,
		"parent_id", newTenant.ParentID,
		"hierarchy_depth", newTenant.HierarchyDepth)

	return dto.NewTenantResponse(newTenant), nil
}

func (s *tenantService) GetTenant(ctx context.Context, id string) (*dto.TenantResponse, error) {
	t, err := s.TenantRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewTenantResponse(t), nil
}

func (s *tenantService) ListTenants(ctx context.Context) ([]*dto.TenantResponse, error) {
	tenants, err := s.TenantRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toTenantResponses(tenants), nil
}

func (s *tenantService) ListChildren(ctx context.Context, parentID string) ([]*dto.TenantResponse, error) {
	tenants, err := s.TenantRepo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return toTenantResponses(tenants), nil
}

func (s *tenantService) ListAncestors(ctx context.Context, id string) ([]*dto.TenantResponse, error) {
	tenants, err := s.TenantRepo.ListAncestors(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTenantResponses(tenants), nil
}

func (s *tenantService) ListDescendants(ctx context.Context, id string) ([]*dto.TenantResponse, error) {
	tenants, err := s.TenantRepo.ListDescendants(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTenantResponses(tenants), nil
}

func (s *tenantService) ReparentTenant(ctx context.Context, id string, req dto.ReparentTenantRequest) (*dto.TenantResponse, error) {
	var moved *tenant.Tenant
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.TenantRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		newDepth := 0
		if req.NewParentID != nil {
			if *req.NewParentID == id {
				return tenant.NewCycleError(id, *req.NewParentID)
			}

			parent, err := s.TenantRepo.Get(ctx, *req.NewParentID)
			if err != nil {
				return err
			}

			// Moving under one of our own descendants would close a
			// cycle.
			descendants, err := s.TenantRepo.ListDescendants(ctx, id)
			if err != nil {
				return err
			}
			for _, d := range descendants {
				if d.ID == parent.ID {
					return tenant.NewCycleError(id, parent.ID)
				}
			}

			newDepth = parent.HierarchyDepth + 1
		}

		depthDelta := newDepth - t.HierarchyDepth
		t.ParentID = req.NewParentID
		t.HierarchyDepth = newDepth
		t.UpdatedAt = time.Now().UTC()
		if err := s.TenantRepo.Update(ctx, t); err != nil {
			return err
		}

		// Keep depth(parent)+1 == depth(child) true for the whole moved
		// subtree.
		descendants, err := s.TenantRepo.ListDescendants(ctx, id)
		if err != nil {
			return err
		}
		for _, d := range descendants {
			d.HierarchyDepth += depthDelta
			d.UpdatedAt = time.Now().UTC()
			if err := s.TenantRepo.Update(ctx, d); err != nil {
				return err
			}
		}

		moved = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("re-parented tenant",
		"tenant_id", id,
		"new_parent_id", req.NewParentID,
		"hierarchy_depth", moved.HierarchyDepth)

	return dto.NewTenantResponse(moved), nil
}

func toTenantResponses(tenants []*tenant.Tenant) []*dto.TenantResponse {
	return lo.Map(tenants, func(t *tenant.Tenant, _ int) *dto.TenantResponse {
		return dto.NewTenantResponse(t)
	})
}
