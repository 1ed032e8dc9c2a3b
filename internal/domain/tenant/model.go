package tenant

import (
	"time"

	"github.com/coachdesk/coachdesk/internal/types"
)

// Tenant represents a dealer account. Tenants form a forest: each tenant
// has at most one parent, and HierarchyDepth caches the distance from the
// root of its tree. The invariant depth(parent)+1 == depth(child) holds at
// all times; it is recomputed for the whole subtree on re-parenting.
type Tenant struct {
	ID             string       `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	ParentID       *string      `db:"parent_id" json:"parent_id,omitempty"`
	HierarchyDepth int          `db:"hierarchy_depth" json:"hierarchy_depth"`
	Status         types.Status `db:"status" json:"status"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// IsRoot reports whether the tenant has no parent
func (t *Tenant) IsRoot() bool {
	return t.ParentID == nil
}
