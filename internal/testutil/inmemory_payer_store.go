package testutil

import (
	"context"
	"sync"

	"github.com/coachdesk/coachdesk/internal/domain/payer"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
)

type InMemoryPayerStore struct {
	mu     sync.RWMutex
	payers map[string]*payer.Payer
}

func NewInMemoryPayerStore() *InMemoryPayerStore {
	return &InMemoryPayerStore{
		payers: make(map[string]*payer.Payer),
	}
}

func (s *InMemoryPayerStore) Create(ctx context.Context, p *payer.Payer) error {
	if p == nil {
		return ierr.NewError("payer cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payers[p.ID]; exists {
		return ierr.NewError("payer already exists").Mark(ierr.ErrAlreadyExists)
	}
	s.payers[p.ID] = p
	return nil
}

func (s *InMemoryPayerStore) Get(ctx context.Context, id string) (*payer.Payer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, exists := s.payers[id]; exists {
		return p, nil
	}
	return nil, ierr.NewError("payer not found").
		WithHintf("payer not found for id: %s", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPayerStore) Update(ctx context.Context, p *payer.Payer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payers[p.ID]; !exists {
		return ierr.NewError("payer not found").
			WithHintf("payer not found for id: %s", p.ID).
			Mark(ierr.ErrNotFound)
	}
	s.payers[p.ID] = p
	return nil
}

func (s *InMemoryPayerStore) List(ctx context.Context) ([]*payer.Payer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payers := make([]*payer.Payer, 0, len(s.payers))
	for _, p := range s.payers {
		payers = append(payers, p)
	}
	return payers, nil
}

func (s *InMemoryPayerStore) ListBillable(ctx context.Context) ([]*payer.Payer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var billable []*payer.Payer
	for _, p := range s.payers {
		if p.IsBillable() {
			billable = append(billable, p)
		}
	}
	return billable, nil
}

func (s *InMemoryPayerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payers = make(map[string]*payer.Payer)
}
