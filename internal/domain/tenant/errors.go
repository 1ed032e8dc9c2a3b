package tenant

import (
	ierr "github.com/coachdesk/coachdesk/internal/errors"
)

func NewNotFoundError(id string) error {
	return ierr.NewError("tenant not found").
		WithHintf("tenant not found for id: %s", id).
		Mark(ierr.ErrNotFound)
}

func NewCycleError(id, newParentID string) error {
	return ierr.NewError("tenant hierarchy cycle").
		WithHintf("re-parenting tenant %s under %s would create a cycle", id, newParentID).
		WithReportableDetails(map[string]any{
			"tenant_id":     id,
			"new_parent_id": newParentID,
		}).
		Mark(ierr.ErrInvalidOperation)
}
