package commission

import (
	ierr "github.com/coachdesk/coachdesk/internal/errors"
)

func NewAgreementNotFoundError(id string) error {
	return ierr.NewError("commission agreement not found").
		WithHintf("commission agreement not found for id: %s", id).
		Mark(ierr.ErrNotFound)
}

func NewTransactionNotFoundError(id string) error {
	return ierr.NewError("commission transaction not found").
		WithHintf("commission transaction not found for id: %s", id).
		Mark(ierr.ErrNotFound)
}
