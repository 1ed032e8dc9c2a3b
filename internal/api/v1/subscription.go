package v1

import (
	"net/http"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/service"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePlan(ctx, req)
	if err != nil {
		h.log.Error("Failed to create plan", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *SubscriptionHandler) GetPlan(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetPlan(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSubscription(ctx, req)
	if err != nil {
		h.log.Error("Failed to create subscription", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetSubscription(ctx, c.Param("tenant_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) CheckLimit(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.CheckLimit(ctx, c.Param("tenant_id"), types.ResourceType(c.Query("resource")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) HasFeature(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.HasFeature(ctx, c.Param("tenant_id"), types.FeatureKey(c.Query("feature")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) ReconcileUsage(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ReconcileUsage(ctx, c.Param("tenant_id"))
	if err != nil {
		h.log.Error("Failed to reconcile usage", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
