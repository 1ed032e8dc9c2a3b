package tenant

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	Get(ctx context.Context, id string) (*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
	List(ctx context.Context) ([]*Tenant, error)
	ListChildren(ctx context.Context, parentID string) ([]*Tenant, error)
	// ListAncestors returns the chain from the immediate parent up to the
	// root, nearest first.
	ListAncestors(ctx context.Context, id string) ([]*Tenant, error)
	// ListDescendants returns every tenant below id, in no particular order.
	ListDescendants(ctx context.Context, id string) ([]*Tenant, error)
	// CountChildren returns the number of active direct children.
	CountChildren(ctx context.Context, parentID string) (int64, error)
}
