package accesscontrol

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"parcelhub/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type OverrideStore interface {
	// Set upserts the override record for (user, organization). Only flags
	// defined in the patch are written; the rest keep their stored value.
	Set(ctx context.Context, userID, organizationID, roleID string, patch PermissionPatch, setBy string) error
	Get(ctx context.Context, userID, organizationID string) (*PermissionOverride, error)
	Clear(ctx context.Context, userID, organizationID string) error
}

type OverrideRepository struct {
	db dbx.Querier
}

func NewOverrideRepository(q dbx.Querier) *OverrideRepository {
	return &OverrideRepository{db: q}
}

var _ OverrideStore = (*OverrideRepository)(nil)

var upsertOverrideSQL = func() string {
	n := len(permissionKeys)
	merges := make([]string, 0, n)
	for _, k := range permissionKeys {
		c := k.Column()
		merges = append(merges, fmt.Sprintf("%s = COALESCE(EXCLUDED.%s, permission_overrides.%s)", c, c, c))
	}
	return fmt.Sprintf(`
INSERT INTO permission_overrides (id, user_id, organization_id, role_id, %s, created_by, updated_by)
VALUES ($1, $2, $3, $4, %s, $%d, $%d)
ON CONFLICT (user_id, organization_id)
DO UPDATE SET role_id = EXCLUDED.role_id,
              %s,
              updated_by = EXCLUDED.updated_by,
              updated_at = now()
`, permissionColumns(""), placeholders(5, n), 5+n, 5+n, strings.Join(merges, ",\n              "))
}()

var selectOverrideSQL = fmt.Sprintf(`
SELECT id, user_id, organization_id, role_id, %s, created_by, updated_by, created_at, updated_at
FROM permission_overrides
WHERE user_id = $1 AND organization_id = $2
`, permissionColumns(""))

func (r *OverrideRepository) Set(ctx context.Context, userID, organizationID, roleID string, patch PermissionPatch, setBy string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	args := []any{uuid.NewString(), userID, organizationID, roleID}
	args = append(args, patch.args()...)
	args = append(args, setBy)

	if _, err := r.db.Exec(ctx, upsertOverrideSQL, args...); err != nil {
		return fmt.Errorf("set permission overrides: %w", err)
	}
	return nil
}

func (r *OverrideRepository) Get(ctx context.Context, userID, organizationID string) (*PermissionOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var o PermissionOverride
	var flags [len(permissionKeys)]pgtype.Bool

	dest := []any{&o.ID, &o.UserID, &o.OrganizationID, &o.RoleID}
	for i := range flags {
		dest = append(dest, &flags[i])
	}
	dest = append(dest, &o.CreatedBy, &o.UpdatedBy, &o.CreatedAt, &o.UpdatedAt)

	if err := r.db.QueryRow(ctx, selectOverrideSQL, userID, organizationID).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get permission overrides: %w", err)
	}

	for i, k := range permissionKeys {
		if flags[i].Valid {
			o.Permissions.Set(k, flags[i].Bool)
		}
	}
	return &o, nil
}

// Clear removes the override record so resolution falls back to the role.
func (r *OverrideRepository) Clear(ctx context.Context, userID, organizationID string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM permission_overrides WHERE user_id = $1 AND organization_id = $2`, userID, organizationID)
	if err != nil {
		return fmt.Errorf("clear permission overrides: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
