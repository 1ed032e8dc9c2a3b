package v1

import (
	"net/http"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	service service.CommissionService
	log     *logger.Logger
}

func NewCommissionHandler(service service.CommissionService, log *logger.Logger) *CommissionHandler {
	return &CommissionHandler{service: service, log: log}
}

func (h *CommissionHandler) CreateAgreement(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateAgreement(ctx, req)
	if err != nil {
		h.log.Error("Failed to create commission agreement", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *CommissionHandler) GetAgreement(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetAgreement(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommissionHandler) ListAgreements(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListAgreements(ctx, c.Query("parent_tenant_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommissionHandler) DeactivateAgreement(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.DeactivateAgreement(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to deactivate commission agreement", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommissionHandler) OnSaleCompleted(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.SaleCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.OnSaleCompleted(ctx, req)
	if err != nil {
		h.log.Error("Failed to record sale commission", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CommissionHandler) GetTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetTransaction(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommissionHandler) ListPendingTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListPendingTransactions(ctx, c.Query("parent_tenant_id"), c.Query("child_tenant_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommissionHandler) MarkPaid(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.MarkPaid(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to settle commission transaction", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommissionHandler) BulkPayout(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.BulkPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.BulkPayout(ctx, req)
	if err != nil {
		h.log.Error("Failed to run bulk payout", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
