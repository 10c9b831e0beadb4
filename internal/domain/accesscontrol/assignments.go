package accesscontrol

import (
	"context"
	"errors"
	"fmt"

	"parcelhub/internal/infra/dbx"
	"parcelhub/internal/params"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AssignmentStore interface {
	Assign(ctx context.Context, userID, organizationID, roleID, assignedBy string) (string, error)
	Revoke(ctx context.Context, userID, organizationID, removedBy string) error
	// GetActiveWithRole returns the active assignment joined to its live
	// role, or ErrNotFound when either is missing.
	GetActiveWithRole(ctx context.Context, userID, organizationID string) (*OrganizationAccess, *Role, error)
	ListUserOrganizations(ctx context.Context, userID string) ([]UserOrganization, error)
	ListMembers(ctx context.Context, organizationID string, p params.Pagination) ([]Member, int, error)
}

type AssignmentRepository struct {
	db dbx.Querier
}

func NewAssignmentRepository(q dbx.Querier) *AssignmentRepository {
	return &AssignmentRepository{db: q}
}

var _ AssignmentStore = (*AssignmentRepository)(nil)

// Assign upserts the single active assignment for (user, organization).
// A second call for the same pair changes role_id on the existing row.
// roleID is not checked against organizationID.
func (r *AssignmentRepository) Assign(ctx context.Context, userID, organizationID, roleID, assignedBy string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	// conflict target is the partial unique index uniq_active_organization_access
	q := `
INSERT INTO organization_access (id, user_id, organization_id, role_id, created_by, updated_by)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (user_id, organization_id) WHERE is_deleted = false
DO UPDATE SET role_id = EXCLUDED.role_id,
              updated_by = EXCLUDED.updated_by,
              updated_at = now()
RETURNING id
`
	var id string
	if err := r.db.QueryRow(ctx, q, uuid.NewString(), userID, organizationID, roleID, assignedBy).Scan(&id); err != nil {
		return "", fmt.Errorf("assign user to organization: %w", err)
	}
	return id, nil
}

// Revoke soft-deletes the active assignment.
func (r *AssignmentRepository) Revoke(ctx context.Context, userID, organizationID, removedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
UPDATE organization_access
SET is_deleted = true, deleted_by = $3, updated_by = $3, updated_at = now()
WHERE user_id = $1 AND organization_id = $2 AND is_deleted = false
`
	tag, err := r.db.Exec(ctx, q, userID, organizationID, removedBy)
	if err != nil {
		return fmt.Errorf("revoke organization access: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var selectActiveWithRoleSQL = fmt.Sprintf(`
SELECT oa.id, oa.user_id, oa.organization_id, oa.role_id, oa.created_by, oa.updated_by, oa.created_at, oa.updated_at,
       r.id, r.organization_id, r.name, r.icon, r.template_key, %s, r.is_deleted, r.created_by, r.created_at, r.updated_at
FROM organization_access oa
JOIN roles r ON r.id = oa.role_id AND r.is_deleted = false
WHERE oa.user_id = $1 AND oa.organization_id = $2 AND oa.is_deleted = false
`, permissionColumns("r"))

func (r *AssignmentRepository) GetActiveWithRole(ctx context.Context, userID, organizationID string) (*OrganizationAccess, *Role, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var access OrganizationAccess
	var role Role
	var templateKey *string

	dest := []any{
		&access.ID, &access.UserID, &access.OrganizationID, &access.RoleID,
		&access.CreatedBy, &access.UpdatedBy, &access.CreatedAt, &access.UpdatedAt,
		&role.ID, &role.OrganizationID, &role.Name, &role.Icon, &templateKey,
	}
	dest = append(dest, role.Permissions.scanTargets()...)
	dest = append(dest, &role.IsDeleted, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt)

	err := r.db.QueryRow(ctx, selectActiveWithRoleSQL, userID, organizationID).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get organization access: %w", err)
	}
	if templateKey != nil {
		k := TemplateKey(*templateKey)
		role.TemplateKey = &k
	}
	return &access, &role, nil
}

// ListUserOrganizations returns the user's active assignments whose role
// still exists, i.e. the organizations the user can actually act in.
func (r *AssignmentRepository) ListUserOrganizations(ctx context.Context, userID string) ([]UserOrganization, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
SELECT oa.id, oa.organization_id, COALESCE(o.name, ''), oa.role_id, r.name, oa.created_at
FROM organization_access oa
JOIN roles r ON r.id = oa.role_id AND r.is_deleted = false
LEFT JOIN organizations o ON o.id = oa.organization_id
WHERE oa.user_id = $1 AND oa.is_deleted = false
ORDER BY oa.created_at
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list user organizations: %w", err)
	}
	defer rows.Close()

	out := []UserOrganization{}
	for rows.Next() {
		var uo UserOrganization
		if err := rows.Scan(&uo.AccessID, &uo.OrganizationID, &uo.OrganizationName, &uo.RoleID, &uo.RoleName, &uo.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, uo)
	}
	return out, rows.Err()
}

// ListMembers pages through an organization's active assignments and
// returns the total count alongside.
func (r *AssignmentRepository) ListMembers(ctx context.Context, organizationID string, p params.Pagination) ([]Member, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	countQ := `SELECT COUNT(*) FROM organization_access WHERE organization_id = $1 AND is_deleted = false`
	if err := r.db.QueryRow(ctx, countQ, organizationID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	q := `
SELECT oa.id, oa.user_id, oa.role_id, COALESCE(r.name, ''), oa.created_at
FROM organization_access oa
LEFT JOIN roles r ON r.id = oa.role_id
WHERE oa.organization_id = $1 AND oa.is_deleted = false
ORDER BY oa.created_at, oa.id
LIMIT $2 OFFSET $3
`
	rows, err := r.db.Query(ctx, q, organizationID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.AccessID, &m.UserID, &m.RoleID, &m.RoleName, &m.AssignedAt); err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return members, total, nil
}
