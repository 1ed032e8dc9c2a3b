package postgres

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	"github.com/coachdesk/coachdesk/internal/types"
)

type tenantRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTenantRepository(db *postgres.DB, logger *logger.Logger) tenant.Repository {
	return &tenantRepository{db: db, logger: logger}
}

const tenantColumns = `id, name, parent_id, hierarchy_depth, status, created_at, updated_at`

func (r *tenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	query := `
	INSERT INTO tenants (id, name, parent_id, hierarchy_depth, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.ParentID,
		t.HierarchyDepth,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("tenant %s already exists", t.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("failed to create tenant").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *tenantRepository) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	var t tenant.Tenant
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, tenant.NewNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get tenant").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}

func (r *tenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	query := `
	UPDATE tenants
	SET name = $2, parent_id = $3, hierarchy_depth = $4, status = $5, updated_at = NOW()
	WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.ParentID,
		t.HierarchyDepth,
		t.Status,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update tenant").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update tenant").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return tenant.NewNotFoundError(t.ID)
	}
	return nil
}

func (r *tenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE status != $1 ORDER BY created_at`

	var tenants []*tenant.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list tenants").
			Mark(ierr.ErrDatabase)
	}
	return tenants, nil
}

func (r *tenantRepository) ListChildren(ctx context.Context, parentID string) ([]*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE parent_id = $1 ORDER BY created_at`

	var tenants []*tenant.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, parentID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list child tenants").
			Mark(ierr.ErrDatabase)
	}
	return tenants, nil
}

// ListAncestors walks parent pointers up to the root with a recursive
// CTE, nearest ancestor first.
func (r *tenantRepository) ListAncestors(ctx context.Context, id string) ([]*tenant.Tenant, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}

	query := `
	WITH RECURSIVE ancestors AS (
		SELECT t.*, 1 AS distance
		FROM tenants t
		JOIN tenants child ON child.parent_id = t.id
		WHERE child.id = $1
		UNION ALL
		SELECT t.*, a.distance + 1
		FROM tenants t
		JOIN ancestors a ON a.parent_id = t.id
	)
	SELECT ` + tenantColumns + ` FROM ancestors ORDER BY distance
	`

	var tenants []*tenant.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, id); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list ancestor tenants").
			Mark(ierr.ErrDatabase)
	}
	return tenants, nil
}

func (r *tenantRepository) ListDescendants(ctx context.Context, id string) ([]*tenant.Tenant, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}

	query := `
	WITH RECURSIVE descendants AS (
		SELECT t.* FROM tenants t WHERE t.parent_id = $1
		UNION ALL
		SELECT t.* FROM tenants t
		JOIN descendants d ON t.parent_id = d.id
	)
	SELECT ` + tenantColumns + ` FROM descendants
	`

	var tenants []*tenant.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, id); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list descendant tenants").
			Mark(ierr.ErrDatabase)
	}
	return tenants, nil
}

func (r *tenantRepository) CountChildren(ctx context.Context, parentID string) (int64, error) {
	query := `SELECT COUNT(*) FROM tenants WHERE parent_id = $1 AND status = $2`

	var count int64
	err := r.db.QueryRowContext(ctx, query, parentID, types.StatusActive).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to count child tenants").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
