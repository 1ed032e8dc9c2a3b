package service

import (
	"context"

	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/types"
)

// SequenceService hands out invoice sequence numbers. Numbers are unique
// and strictly increasing per (tenant, period key), including under
// concurrent callers: the underlying repository advance is a single
// atomic read-increment-write, and lost races are retried here a bounded
// number of times before surfacing as a conflict.
type SequenceService interface {
	// Allocate returns the next sequence number for the tenant and
	// period.
	Allocate(ctx context.Context, tenantID string, periodKey types.PeriodKey) (int64, error)
	// NextInvoiceNumber allocates a sequence number and renders it as
	// the external invoice number.
	NextInvoiceNumber(ctx context.Context, tenantID string, periodKey types.PeriodKey) (string, error)
}

type sequenceService struct {
	ServiceParams
}

func NewSequenceService(params ServiceParams) SequenceService {
	return &sequenceService{ServiceParams: params}
}

func (s *sequenceService) Allocate(ctx context.Context, tenantID string, periodKey types.PeriodKey) (int64, error) {
	if err := periodKey.Validate(); err != nil {
		return 0, err
	}

	retries := s.Config.Billing.SequenceAllocationRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		seq, err := s.SequenceRepo.Next(ctx, tenantID, periodKey)
		if err != nil {
			// A lost compare-and-swap race is transient; anything else
			// is not worth retrying.
			if ierr.IsConflict(err) || ierr.IsAlreadyExists(err) {
				lastErr = err
				continue
			}
			return 0, err
		}

		if max := types.MaxSequenceForWidth(s.Config.Billing.SequencePadWidth); seq > max {
			return 0, ierr.NewError("invoice sequence exhausted").
				WithHintf("sequence %d exceeds the configured width of %d digits for period %s",
					seq, s.Config.Billing.SequencePadWidth, periodKey).
				WithReportableDetails(map[string]any{
					"tenant_id":  tenantID,
					"period_key": periodKey,
					"sequence":   seq,
					"max":        max,
				}).
				Mark(ierr.ErrSequenceExhausted)
		}

		s.Logger.Debugw("allocated invoice sequence",
			"tenant_id", tenantID,
			"period_key", periodKey,
			"sequence", seq)
		return seq, nil
	}

	return 0, ierr.WithError(lastErr).
		WithHintf("sequence allocation for period %s kept losing races, giving up after %d attempts",
			periodKey, retries).
		Mark(ierr.ErrConflict)
}

func (s *sequenceService) NextInvoiceNumber(ctx context.Context, tenantID string, periodKey types.PeriodKey) (string, error) {
	seq, err := s.Allocate(ctx, tenantID, periodKey)
	if err != nil {
		return "", err
	}
	return types.FormatInvoiceNumber(periodKey, seq, s.Config.Billing.SequencePadWidth), nil
}
