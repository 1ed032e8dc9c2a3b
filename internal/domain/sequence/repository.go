// Package sequence holds the invoice sequence counter contract. A counter
// row exists per (tenant, period key) and is only ever advanced through a
// single atomic read-increment-write; reading the last issued invoice and
// adding one is exactly the race this package exists to rule out.
package sequence

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/types"
)

type Repository interface {
	// Next advances the counter for (tenantID, periodKey) and returns the
	// new value. The first call for a key returns 1. Implementations must
	// make the advance atomic against concurrent callers: either a single
	// upsert-returning statement or a compare-and-swap loop, never a read
	// followed by an independent write.
	Next(ctx context.Context, tenantID string, periodKey types.PeriodKey) (int64, error)

	// Current returns the last issued value for the key, 0 when the
	// counter does not exist yet.
	Current(ctx context.Context, tenantID string, periodKey types.PeriodKey) (int64, error)
}
