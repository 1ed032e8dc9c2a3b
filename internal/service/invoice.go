package service

import (
	"context"
	"fmt"
	"time"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/invoice"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *invoice.Filter) (*dto.ListInvoicesResponse, error)
	// GenerateMonthlyDues creates one DRAFT recurring dues invoice per
	// billable payer for the period. The run is idempotent: payers that
	// already have a non-cancelled dues invoice for the period are
	// counted as skipped, and concurrent runs are de-duplicated by the
	// unique recurring key at insert time rather than by the prior
	// existence check.
	GenerateMonthlyDues(ctx context.Context, req dto.GenerateMonthlyDuesRequest) (*dto.GenerateMonthlyDuesResponse, error)
	UpdateInvoiceStatus(ctx context.Context, id string, req dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) (*dto.OperationResult, error)
}

type invoiceService struct {
	ServiceParams
	sequenceService SequenceService
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams:   params,
		sequenceService: NewSequenceService(params),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PayerRepo.Get(ctx, req.PayerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	periodMonth, periodYear := req.PeriodMonth, req.PeriodYear
	if periodMonth == 0 && periodYear == 0 {
		periodMonth = int(now.Month())
		periodYear = now.Year()
	}

	items := make([]*invoice.LineItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, item := range req.Items {
		amount := item.Quantity.Mul(item.UnitPrice).Round(2)
		subtotal = subtotal.Add(amount)
		items = append(items, &invoice.LineItem{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      amount,
			BaseModel:   types.GetDefaultBaseModel(ctx),
		})
	}

	discounted := subtotal.Sub(req.Discount)
	if discounted.IsNegative() {
		return nil, ierr.NewError("discount exceeds subtotal").
			WithHintf("discount %s is larger than subtotal %s", req.Discount, subtotal).
			Mark(ierr.ErrValidation)
	}

	// Tax applies to the discounted subtotal, not the raw one.
	tax := discounted.Mul(req.TaxRatePercent).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Sub(req.Discount).Add(tax)

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		PayerID:       p.ID,
		Kind:          types.InvoiceKindManual,
		InvoiceStatus: types.InvoiceStatusDraft,
		PeriodMonth:   periodMonth,
		PeriodYear:    periodYear,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		Tax:           tax,
		Total:         total,
		DueDate:       req.DueDate,
		LineItems:     items,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	inv.TenantID = p.TenantID
	for _, li := range items {
		li.InvoiceID = inv.ID
		li.TenantID = p.TenantID
	}

	// Number allocation and the insert share one transaction: a failed
	// insert rolls the counter advance back, keeping numbering gapless.
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Sequences are scoped to the issue month, which may differ from
		// the billed period.
		number, err := s.sequenceService.NextInvoiceNumber(ctx, p.TenantID, types.PeriodKeyFromTime(now))
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		return s.InvoiceRepo.CreateWithLineItems(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"tenant_id", inv.TenantID,
		"payer_id", inv.PayerID,
		"total", inv.Total)

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *invoice.Filter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = &invoice.Filter{}
	}
	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	})
	return &dto.ListInvoicesResponse{Items: items, Total: len(items)}, nil
}

func (s *invoiceService) GenerateMonthlyDues(ctx context.Context, req dto.GenerateMonthlyDuesRequest) (*dto.GenerateMonthlyDuesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payers, err := s.PayerRepo.ListBillable(ctx)
	if err != nil {
		return nil, err
	}

	periodKey := types.NewPeriodKey(req.PeriodYear, time.Month(req.PeriodMonth))
	dueDate := time.Date(req.PeriodYear, time.Month(req.PeriodMonth), s.Config.Billing.DuesDueDay, 0, 0, 0, 0, time.UTC)
	periodLabel := fmt.Sprintf("%04d-%02d", req.PeriodYear, req.PeriodMonth)
	description := fmt.Sprintf(s.Config.Billing.RecurringDuesDescription, periodLabel)

	resp := &dto.GenerateMonthlyDuesResponse{}
	for _, p := range payers {
		// Cheap pre-check; the unique recurring key on insert is what
		// actually guarantees at-most-once under concurrent runs.
		exists, err := s.InvoiceRepo.ExistsRecurringForPeriod(ctx, p.ID, req.PeriodMonth, req.PeriodYear)
		if err != nil {
			return nil, err
		}
		if exists {
			resp.Skipped++
			continue
		}

		inv := &invoice.Invoice{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
			PayerID:       p.ID,
			Kind:          types.InvoiceKindRecurringDues,
			InvoiceStatus: types.InvoiceStatusDraft,
			PeriodMonth:   req.PeriodMonth,
			PeriodYear:    req.PeriodYear,
			Subtotal:      p.RecurringFee,
			Discount:      decimal.Zero,
			Tax:           decimal.Zero,
			Total:         p.RecurringFee,
			DueDate:       dueDate,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}
		inv.TenantID = p.TenantID
		li := &invoice.LineItem{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:   inv.ID,
			Description: description,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   p.RecurringFee,
			Amount:      p.RecurringFee,
			BaseModel:   types.GetDefaultBaseModel(ctx),
		}
		li.TenantID = p.TenantID
		inv.LineItems = []*invoice.LineItem{li}

		err = s.DB.WithTx(ctx, func(ctx context.Context) error {
			number, err := s.sequenceService.NextInvoiceNumber(ctx, p.TenantID, periodKey)
			if err != nil {
				return err
			}
			inv.InvoiceNumber = number
			return s.InvoiceRepo.CreateWithLineItems(ctx, inv)
		})
		if err != nil {
			// A concurrent run won the insert race for this payer; the
			// invoice exists, so this is a skip, not a failure.
			if ierr.IsAlreadyExists(err) {
				resp.Skipped++
				continue
			}
			return nil, err
		}
		resp.Created++
	}

	s.Logger.Infow("monthly dues generation finished",
		"period_month", req.PeriodMonth,
		"period_year", req.PeriodYear,
		"created", resp.Created,
		"skipped", resp.Skipped)

	return resp, nil
}

func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, id string, req dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var inv *invoice.Invoice
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if err := inv.InvoiceStatus.ValidateTransition(req.InvoiceStatus); err != nil {
			return err
		}

		inv.InvoiceStatus = req.InvoiceStatus
		if req.InvoiceStatus == types.InvoiceStatusPaid {
			paidAmount := inv.Total
			if req.PaidAmount != nil {
				paidAmount = *req.PaidAmount
			}
			now := time.Now().UTC()
			inv.PaidAmount = &paidAmount
			inv.PaidAt = &now
		}
		inv.UpdatedAt = time.Now().UTC()
		inv.UpdatedBy = types.GetUserID(ctx)

		return s.InvoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated invoice status",
		"invoice_id", inv.ID,
		"invoice_status", inv.InvoiceStatus)

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) (*dto.OperationResult, error) {
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if inv.InvoiceStatus == types.InvoiceStatusPaid {
			return ierr.NewError("cannot delete a paid invoice").
				WithHintf("invoice %s is PAID and paid invoices are never deleted", id).
				Mark(ierr.ErrConflict)
		}

		// Invoice and line items go together in this transaction.
		return s.InvoiceRepo.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("deleted invoice", "invoice_id", id)
	return dto.NewOperationResult("invoice deleted", id), nil
}
