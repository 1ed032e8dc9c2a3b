package testutil

import (
	"context"
	"sync"

	"github.com/coachdesk/coachdesk/internal/domain/invoice"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
)

type InMemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*invoice.Invoice
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices: make(map[string]*invoice.Invoice),
	}
}

func (s *InMemoryInvoiceStore) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; exists {
		return ierr.NewError("invoice already exists").Mark(ierr.ErrAlreadyExists)
	}
	for _, existing := range s.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber && existing.TenantID == inv.TenantID {
			return ierr.NewError("invoice number already taken").
				WithHintf("invoice number %s already exists", inv.InvoiceNumber).
				Mark(ierr.ErrAlreadyExists)
		}
		if inv.Kind == types.InvoiceKindRecurringDues &&
			existing.Kind == types.InvoiceKindRecurringDues &&
			existing.InvoiceStatus != types.InvoiceStatusCancelled &&
			existing.PayerID == inv.PayerID &&
			existing.PeriodMonth == inv.PeriodMonth &&
			existing.PeriodYear == inv.PeriodYear {
			return ierr.NewError("recurring dues invoice already exists for period").
				WithHintf("payer %s already has dues for %04d-%02d", inv.PayerID, inv.PeriodYear, inv.PeriodMonth).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	s.invoices[inv.ID] = inv
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inv, exists := s.invoices[id]; exists {
		return inv, nil
	}
	return nil, invoice.NewNotFoundError(id)
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; !exists {
		return invoice.NewNotFoundError(inv.ID)
	}
	s.invoices[inv.ID] = inv
	return nil
}

func (s *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[id]; !exists {
		return invoice.NewNotFoundError(id)
	}
	delete(s.invoices, id)
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *invoice.Filter) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*invoice.Invoice
	for _, inv := range s.invoices {
		if filter != nil {
			if filter.PayerID != "" && inv.PayerID != filter.PayerID {
				continue
			}
			if filter.InvoiceStatus != "" && inv.InvoiceStatus != filter.InvoiceStatus {
				continue
			}
			if filter.Kind != "" && inv.Kind != filter.Kind {
				continue
			}
			if filter.PeriodMonth != 0 && inv.PeriodMonth != filter.PeriodMonth {
				continue
			}
			if filter.PeriodYear != 0 && inv.PeriodYear != filter.PeriodYear {
				continue
			}
		}
		result = append(result, inv)
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) ExistsRecurringForPeriod(ctx context.Context, payerID string, month, year int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invoices {
		if inv.Kind == types.InvoiceKindRecurringDues &&
			inv.InvoiceStatus != types.InvoiceStatusCancelled &&
			inv.PayerID == payerID &&
			inv.PeriodMonth == month &&
			inv.PeriodYear == year {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices = make(map[string]*invoice.Invoice)
}
