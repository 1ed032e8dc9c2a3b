package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/domain/payer"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/testutil"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   InvoiceService
	params    ServiceParams
	testPayer *payer.Payer
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
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
	s.service = NewInvoiceService(s.params)
	s.testPayer = s.createPayer("Alice", decimal.NewFromInt(100))
}

func (s *InvoiceServiceSuite) createPayer(name string, recurringFee decimal.Decimal) *payer.Payer {
	p := &payer.Payer{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYER),
		Name:         name,
		RecurringFee: recurringFee,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PayerRepo.Create(s.GetContext(), p))
	return p
}

func (s *InvoiceServiceSuite) TestCreateInvoiceTotals() {
	req := dto.CreateInvoiceRequest{
		PayerID: s.testPayer.ID,
		Items: []dto.InvoiceLineItemRequest{
			{Description: "Private lesson", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
			{Description: "Gear rental", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
		DueDate:        time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Discount:       decimal.NewFromInt(10),
		TaxRatePercent: decimal.NewFromInt(10),
	}

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)

	// Tax applies after the discount: (250 - 10) * 10% = 24.
	s.True(resp.Subtotal.Equal(decimal.NewFromInt(250)), "subtotal %s", resp.Subtotal)
	s.True(resp.Tax.Equal(decimal.NewFromInt(24)), "tax %s", resp.Tax)
	s.True(resp.Total.Equal(decimal.NewFromInt(264)), "total %s", resp.Total)
	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.Equal(types.InvoiceKindManual, resp.Kind)
	s.Len(resp.LineItems, 2)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceNumbering() {
	req := dto.CreateInvoiceRequest{
		PayerID: s.testPayer.ID,
		Items: []dto.InvoiceLineItemRequest{
			{Description: "Lesson", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
		},
		DueDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	period := types.PeriodKeyFromTime(time.Now().UTC())

	first, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)
	s.Equal(fmt.Sprintf("INV-%s-0001", period), first.InvoiceNumber)

	second, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)
	s.Equal(fmt.Sprintf("INV-%s-0002", period), second.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDiscountExceedsSubtotal() {
	req := dto.CreateInvoiceRequest{
		PayerID: s.testPayer.ID,
		Items: []dto.InvoiceLineItemRequest{
			{Description: "Lesson", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
		DueDate:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Discount: decimal.NewFromInt(60),
	}

	_, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceUnknownPayer() {
	req := dto.CreateInvoiceRequest{
		PayerID: "payer_missing",
		Items: []dto.InvoiceLineItemRequest{
			{Description: "Lesson", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
		DueDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyDues() {
	s.createPayer("Bob", decimal.NewFromInt(75))
	s.createPayer("Free rider", decimal.Zero)
	inactive := s.createPayer("Gone", decimal.NewFromInt(75))
	inactive.Status = types.StatusInactive
	s.NoError(s.GetStores().PayerRepo.Update(s.GetContext(), inactive))

	req := dto.GenerateMonthlyDuesRequest{PeriodMonth: 4, PeriodYear: 2025}
	resp, err := s.service.GenerateMonthlyDues(s.GetContext(), req)
	s.NoError(err)
	s.Equal(2, resp.Created)
	s.Equal(0, resp.Skipped)

	invoices, err := s.service.ListInvoices(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(2, invoices.Total)
	for _, inv := range invoices.Items {
		s.Equal(types.InvoiceKindRecurringDues, inv.Kind)
		s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)
		s.Equal(4, inv.PeriodMonth)
		s.Equal(2025, inv.PeriodYear)
		s.Equal(15, inv.DueDate.Day())
		s.Len(inv.LineItems, 1)
		s.True(inv.Total.Equal(inv.Subtotal))
	}
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyDuesIdempotent() {
	req := dto.GenerateMonthlyDuesRequest{PeriodMonth: 4, PeriodYear: 2025}

	first, err := s.service.GenerateMonthlyDues(s.GetContext(), req)
	s.NoError(err)
	s.Equal(1, first.Created)

	// A re-run for the same period creates nothing and says so.
	second, err := s.service.GenerateMonthlyDues(s.GetContext(), req)
	s.NoError(err)
	s.Equal(0, second.Created)
	s.Equal(1, second.Skipped)

	// A different period bills again.
	third, err := s.service.GenerateMonthlyDues(s.GetContext(), dto.GenerateMonthlyDuesRequest{PeriodMonth: 5, PeriodYear: 2025})
	s.NoError(err)
	s.Equal(1, third.Created)
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyDuesRejectsInvalidPeriod() {
	_, err := s.service.GenerateMonthlyDues(s.GetContext(), dto.GenerateMonthlyDuesRequest{PeriodMonth: 13, PeriodYear: 2025})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) createDraftInvoice() *dto.InvoiceResponse {
	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		PayerID: s.testPayer.ID,
		Items: []dto.InvoiceLineItemRequest{
			{Description: "Lesson", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
		},
		DueDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	s.NoError(err)
	return resp
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceStatusLifecycle() {
	inv := s.createDraftInvoice()

	sent, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{
		InvoiceStatus: types.InvoiceStatusSent,
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusSent, sent.InvoiceStatus)

	paid, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{
		InvoiceStatus: types.InvoiceStatusPaid,
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, paid.InvoiceStatus)
	s.NotNil(paid.PaidAt)
	s.NotNil(paid.PaidAmount)
	s.True(paid.PaidAmount.Equal(paid.Total))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceStatusOverduePath() {
	inv := s.createDraftInvoice()

	_, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{
		InvoiceStatus: types.InvoiceStatusSent,
	})
	s.NoError(err)

	overdue, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{
		InvoiceStatus: types.InvoiceStatusOverdue,
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, overdue.InvoiceStatus)

	partial := decimal.NewFromInt(40)
	paid, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{
		InvoiceStatus: types.InvoiceStatusPaid,
		PaidAmount:    &partial,
	})
	s.NoError(err)
	s.True(paid.PaidAmount.Equal(partial))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceStatusRejectsIllegalTransitions() {
	inv := s.createDraftInvoice()

	// DRAFT cannot jump straight to PAID.
	_, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{
		InvoiceStatus: types.InvoiceStatusPaid,
	})
	s.Error(err)
	s.True(ierr.IsInvalidTransition(err))

	// The invoice is untouched by the failed transition.
	got, err := s.service.GetInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusDraft, got.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestPaidInvoiceIsTerminal() {
	inv := s.createDraftInvoice()
	for _, status := range []types.InvoiceStatus{types.InvoiceStatusSent, types.InvoiceStatusPaid} {
		_, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{InvoiceStatus: status})
		s.NoError(err)
	}

	_, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{
		InvoiceStatus: types.InvoiceStatusCancelled,
	})
	s.Error(err)
	s.True(ierr.IsInvalidTransition(err))
}

func (s *InvoiceServiceSuite) TestDeleteInvoice() {
	inv := s.createDraftInvoice()

	result, err := s.service.DeleteInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.True(result.Success)

	_, err = s.service.GetInvoice(s.GetContext(), inv.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestDeletePaidInvoiceRefused() {
	inv := s.createDraftInvoice()
	for _, status := range []types.InvoiceStatus{types.InvoiceStatusSent, types.InvoiceStatusPaid} {
		_, err := s.service.UpdateInvoiceStatus(s.GetContext(), inv.ID, dto.UpdateInvoiceStatusRequest{InvoiceStatus: status})
		s.NoError(err)
	}

	_, err := s.service.DeleteInvoice(s.GetContext(), inv.ID)
	s.Error(err)
	s.True(ierr.IsConflict(err))

	// Still there.
	got, err := s.service.GetInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, got.InvoiceStatus)
}
