package accesscontrol

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"parcelhub/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RoleStore interface {
	CreateFromTemplate(ctx context.Context, key TemplateKey, organizationID, createdBy, customName string) (string, error)
	CreateCustom(ctx context.Context, name, organizationID string, permissions PermissionPatch, createdBy, icon string) (string, error)
	Get(ctx context.Context, roleID string) (*Role, error)
	ListForOrganization(ctx context.Context, organizationID string) ([]Role, error)
	// Delete soft-deletes a role. Assignments that point at it stop resolving.
	Delete(ctx context.Context, roleID string) error
}

// permissionColumns renders the flag columns in canonical order, optionally
// qualified with a table alias.
func permissionColumns(alias string) string {
	cols := make([]string, 0, len(permissionKeys))
	for _, k := range permissionKeys {
		if alias != "" {
			cols = append(cols, alias+"."+k.Column())
			continue
		}
		cols = append(cols, k.Column())
	}
	return strings.Join(cols, ", ")
}

// placeholders renders $from..$from+n-1.
func placeholders(from, n int) string {
	ph := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ph = append(ph, fmt.Sprintf("$%d", from+i))
	}
	return strings.Join(ph, ", ")
}

var (
	insertRoleSQL = fmt.Sprintf(`
INSERT INTO roles (id, organization_id, name, icon, template_key, %s, created_by)
VALUES ($1, $2, $3, $4, $5, %s, $%d)
`, permissionColumns(""), placeholders(6, len(permissionKeys)), 6+len(permissionKeys))

	selectRoleSQL = fmt.Sprintf(`
SELECT id, organization_id, name, icon, template_key, %s, is_deleted, created_by, created_at, updated_at
FROM roles
`, permissionColumns(""))
)

type RoleRepository struct {
	db dbx.Querier
}

func NewRoleRepository(q dbx.Querier) *RoleRepository {
	return &RoleRepository{db: q}
}

var _ RoleStore = (*RoleRepository)(nil)

// CreateFromTemplate inserts a role seeded from the catalog and returns its id.
func (r *RoleRepository) CreateFromTemplate(ctx context.Context, key TemplateKey, organizationID, createdBy, customName string) (string, error) {
	role, err := RoleFromTemplate(key, organizationID, createdBy, customName)
	if err != nil {
		return "", err
	}
	if err := r.insert(ctx, role); err != nil {
		return "", err
	}
	return role.ID, nil
}

// CreateCustom inserts a role whose unspecified flags are denied.
func (r *RoleRepository) CreateCustom(ctx context.Context, name, organizationID string, permissions PermissionPatch, createdBy, icon string) (string, error) {
	role := CustomRole(name, organizationID, permissions, createdBy, icon)
	if err := r.insert(ctx, role); err != nil {
		return "", err
	}
	return role.ID, nil
}

func (r *RoleRepository) insert(ctx context.Context, role *Role) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	role.ID = uuid.NewString()

	var templateKey *string
	if role.TemplateKey != nil {
		k := string(*role.TemplateKey)
		templateKey = &k
	}

	args := []any{role.ID, role.OrganizationID, role.Name, role.Icon, templateKey}
	args = append(args, role.Permissions.args()...)
	args = append(args, role.CreatedBy)

	if _, err := r.db.Exec(ctx, insertRoleSQL, args...); err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// Get returns a non-deleted role.
func (r *RoleRepository) Get(ctx context.Context, roleID string) (*Role, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	role, err := scanRole(r.db.QueryRow(ctx, selectRoleSQL+`WHERE id = $1 AND is_deleted = false`, roleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// ListForOrganization returns the organization's non-deleted roles.
func (r *RoleRepository) ListForOrganization(ctx context.Context, organizationID string) ([]Role, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, selectRoleSQL+`WHERE organization_id = $1 AND is_deleted = false ORDER BY created_at`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := []Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

func scanRole(row pgx.Row) (*Role, error) {
	var role Role
	var templateKey *string

	dest := []any{&role.ID, &role.OrganizationID, &role.Name, &role.Icon, &templateKey}
	dest = append(dest, role.Permissions.scanTargets()...)
	dest = append(dest, &role.IsDeleted, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if templateKey != nil {
		k := TemplateKey(*templateKey)
		role.TemplateKey = &k
	}
	return &role, nil
}

func (r *RoleRepository) Delete(ctx context.Context, roleID string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE roles SET is_deleted = true, updated_at = now() WHERE id = $1 AND is_deleted = false`, roleID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
