package testutil

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/types"
)

// SetupContext creates a context with test tenant and user IDs
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetTenantID(ctx, types.DefaultTenantID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	return ctx
}
