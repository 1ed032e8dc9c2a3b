package v1

import (
	"net/http"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type PayerHandler struct {
	service service.PayerService
	log     *logger.Logger
}

func NewPayerHandler(service service.PayerService, log *logger.Logger) *PayerHandler {
	return &PayerHandler{service: service, log: log}
}

func (h *PayerHandler) CreatePayer(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreatePayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePayer(ctx, req)
	if err != nil {
		h.log.Error("Failed to create payer", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PayerHandler) GetPayer(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetPayer(ctx, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PayerHandler) ListPayers(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListPayers(ctx)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PayerHandler) DeactivatePayer(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.DeactivatePayer(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to deactivate payer", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
