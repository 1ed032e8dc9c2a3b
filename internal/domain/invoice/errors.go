package invoice

import (
	ierr "github.com/coachdesk/coachdesk/internal/errors"
)

func NewNotFoundError(id string) error {
	return ierr.NewError("invoice not found").
		WithHintf("invoice not found for id: %s", id).
		Mark(ierr.ErrNotFound)
}
