package v1

import (
	"net/http"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	service service.TenantService
	log     *logger.Logger
}

func NewTenantHandler(service service.TenantService, log *logger.Logger) *TenantHandler {
	return &TenantHandler{service: service, log: log}
}

func (h *TenantHandler) CreateTenant(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTenant(ctx, req)
	if err != nil {
		h.log.Error("Failed to create tenant", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *TenantHandler) GetTenant(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetTenant(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenantHandler) ListTenants(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListTenants(ctx)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenantHandler) ListChildren(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListChildren(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenantHandler) ListAncestors(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListAncestors(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenantHandler) ListDescendants(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListDescendants(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenantHandler) ReparentTenant(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.ReparentTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ReparentTenant(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to re-parent tenant", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
