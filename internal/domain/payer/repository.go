package payer

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, payer *Payer) error
	Get(ctx context.Context, id string) (*Payer, error)
	Update(ctx context.Context, payer *Payer) error
	List(ctx context.Context) ([]*Payer, error)
	// ListBillable returns the active payers with a non-zero recurring
	// fee across all tenants; input set of the monthly dues run.
	ListBillable(ctx context.Context) ([]*Payer, error)
}
