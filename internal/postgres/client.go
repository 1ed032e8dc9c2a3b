package postgres

import (
	"context"
)

// IClient is the slice of DB the service layer depends on: the ability
// to run a function as one atomic unit against the store. Tests swap in
// a fake that simply runs the function.
type IClient interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ IClient = (*DB)(nil)
