package v1

import (
	"net/http"
	"strconv"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/invoice"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/service"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, log: log}
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateInvoice(ctx, req)
	if err != nil {
		h.log.Error("Failed to create invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetInvoice(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	ctx := c.Request.Context()

	filter := &invoice.Filter{
		PayerID:       c.Query("payer_id"),
		InvoiceStatus: types.InvoiceStatus(c.Query("invoice_status")),
		Kind:          types.InvoiceKind(c.Query("kind")),
	}
	if v := c.Query("period_month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("period_month must be a number").
				Mark(ierr.ErrValidation))
			return
		}
		filter.PeriodMonth = month
	}
	if v := c.Query("period_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("period_year must be a number").
				Mark(ierr.ErrValidation))
			return
		}
		filter.PeriodYear = year
	}

	resp, err := h.service.ListInvoices(ctx, filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoiceHandler) GenerateMonthlyDues(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.GenerateMonthlyDuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GenerateMonthlyDues(ctx, req)
	if err != nil {
		h.log.Error("Failed to generate monthly dues", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *InvoiceHandler) UpdateInvoiceStatus(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateInvoiceStatus(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to update invoice status", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.DeleteInvoice(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to delete invoice", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
