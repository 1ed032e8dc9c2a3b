package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/coachdesk/coachdesk/internal/domain/commission"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
)

type InMemoryCommissionStore struct {
	mu           sync.RWMutex
	agreements   map[string]*commission.Agreement
	transactions map[string]*commission.Transaction
}

func NewInMemoryCommissionStore() *InMemoryCommissionStore {
	return &InMemoryCommissionStore{
		agreements:   make(map[string]*commission.Agreement),
		transactions: make(map[string]*commission.Transaction),
	}
}

func (s *InMemoryCommissionStore) CreateAgreement(ctx context.Context, agreement *commission.Agreement) error {
	if agreement == nil {
		return ierr.NewError("agreement cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if agreement.IsActive {
		for _, existing := range s.agreements {
			if existing.IsActive &&
				existing.ParentTenantID == agreement.ParentTenantID &&
				existing.ChildTenantID == agreement.ChildTenantID {
				return ierr.NewError("active agreement already exists for tenant pair").
					Mark(ierr.ErrAlreadyExists)
			}
		}
	}
	s.agreements[agreement.ID] = agreement
	return nil
}

func (s *InMemoryCommissionStore) GetAgreement(ctx context.Context, id string) (*commission.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, exists := s.agreements[id]; exists {
		return a, nil
	}
	return nil, commission.NewAgreementNotFoundError(id)
}

func (s *InMemoryCommissionStore) UpdateAgreement(ctx context.Context, agreement *commission.Agreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agreements[agreement.ID]; !exists {
		return commission.NewAgreementNotFoundError(agreement.ID)
	}
	s.agreements[agreement.ID] = agreement
	return nil
}

func (s *InMemoryCommissionStore) GetActiveAgreementForChild(ctx context.Context, childTenantID string) (*commission.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.agreements {
		if a.IsActive && a.ChildTenantID == childTenantID {
			return a, nil
		}
	}
	return nil, ierr.NewError("no active agreement for child tenant").
		WithHintf("no active agreement where %s is the child", childTenantID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryCommissionStore) ListAgreements(ctx context.Context, parentTenantID string) ([]*commission.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*commission.Agreement
	for _, a := range s.agreements {
		if a.ParentTenantID == parentTenantID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *InMemoryCommissionStore) CreateTransaction(ctx context.Context, txn *commission.Transaction) error {
	if txn == nil {
		return ierr.NewError("transaction cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.transactions {
		if existing.SaleID == txn.SaleID {
			return ierr.NewError("transaction already exists for sale").
				WithHintf("sale %s already has a commission transaction", txn.SaleID).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	s.transactions[txn.ID] = txn
	return nil
}

func (s *InMemoryCommissionStore) GetTransaction(ctx context.Context, id string) (*commission.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, exists := s.transactions[id]; exists {
		return t, nil
	}
	return nil, commission.NewTransactionNotFoundError(id)
}

func (s *InMemoryCommissionStore) GetTransactionBySaleID(ctx context.Context, saleID string) (*commission.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.transactions {
		if t.SaleID == saleID {
			return t, nil
		}
	}
	return nil, ierr.NewError("transaction not found for sale").
		WithHintf("no commission transaction for sale: %s", saleID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryCommissionStore) UpdateTransaction(ctx context.Context, txn *commission.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[txn.ID]; !exists {
		return commission.NewTransactionNotFoundError(txn.ID)
	}
	s.transactions[txn.ID] = txn
	return nil
}

func (s *InMemoryCommissionStore) ListPendingTransactions(ctx context.Context, parentTenantID, childTenantID string) ([]*commission.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*commission.Transaction
	for _, t := range s.transactions {
		if t.CommissionStatus == types.CommissionStatusPending &&
			t.ParentTenantID == parentTenantID &&
			t.ChildTenantID == childTenantID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *InMemoryCommissionStore) MarkTransactionsPaid(ctx context.Context, ids []string, paidAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for _, id := range ids {
		t, exists := s.transactions[id]
		if !exists || t.CommissionStatus != types.CommissionStatusPending {
			continue
		}
		t.CommissionStatus = types.CommissionStatusPaid
		t.PaidAt = &paidAt
		updated++
	}
	return updated, nil
}

func (s *InMemoryCommissionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agreements = make(map[string]*commission.Agreement)
	s.transactions = make(map[string]*commission.Transaction)
}
