package dto

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/coachdesk/coachdesk/internal/validator"
)

type CreateTenantRequest struct {
	Name     string  `json:"name" validate:"required"`
	ParentID *string `json:"parent_id,omitempty"`
}

func (r *CreateTenantRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateTenantRequest) ToTenant(ctx context.Context) *tenant.Tenant {
	base := types.GetDefaultBaseModel(ctx)
	return &tenant.Tenant{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TENANT),
		Name:      r.Name,
		ParentID:  r.ParentID,
		Status:    types.StatusActive,
		CreatedAt: base.CreatedAt,
		UpdatedAt: base.UpdatedAt,
	}
}

type ReparentTenantRequest struct {
	// NewParentID moves the tenant under another tenant; nil makes it a
	// root.
	NewParentID *string `json:"new_parent_id,omitempty"`
}

type TenantResponse struct {
	*tenant.Tenant
}

func NewTenantResponse(t *tenant.Tenant) *TenantResponse {
	return &TenantResponse{Tenant: t}
}
