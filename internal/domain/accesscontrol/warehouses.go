package accesscontrol

import (
	"context"
	"fmt"

	"parcelhub/internal/infra/dbx"

	"github.com/google/uuid"
)

type WarehouseStore interface {
	Assign(ctx context.Context, userID, organizationID, warehouseID, assignedBy string) (string, error)
	// Revoke soft-deletes the active (user, warehouse) rows. An empty
	// organizationID matches any organization.
	Revoke(ctx context.Context, userID, warehouseID, organizationID, removedBy string) error
	ListForUser(ctx context.Context, userID, organizationID string) ([]string, error)
	HasAccess(ctx context.Context, userID, organizationID, warehouseID string) (bool, error)
}

// WarehouseAllowed applies the scope rule: an empty list allows every
// warehouse, otherwise only listed ids are allowed.
func WarehouseAllowed(scope []string, warehouseID string) bool {
	if len(scope) == 0 {
		return true
	}
	for _, id := range scope {
		if id == warehouseID {
			return true
		}
	}
	return false
}

type WarehouseRepository struct {
	db dbx.Querier
}

func NewWarehouseRepository(q dbx.Querier) *WarehouseRepository {
	return &WarehouseRepository{db: q}
}

var _ WarehouseStore = (*WarehouseRepository)(nil)

// Assign is idempotent: an existing active row for (user, warehouse) is
// returned untouched.
func (r *WarehouseRepository) Assign(ctx context.Context, userID, organizationID, warehouseID, assignedBy string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	// DO UPDATE rather than DO NOTHING so RETURNING yields the existing id
	q := `
INSERT INTO warehouse_access (id, user_id, organization_id, warehouse_id, created_by, updated_by)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (user_id, warehouse_id) WHERE is_deleted = false
DO UPDATE SET warehouse_id = warehouse_access.warehouse_id
RETURNING id
`
	var id string
	if err := r.db.QueryRow(ctx, q, uuid.NewString(), userID, organizationID, warehouseID, assignedBy).Scan(&id); err != nil {
		return "", fmt.Errorf("assign user to warehouse: %w", err)
	}
	return id, nil
}

func (r *WarehouseRepository) Revoke(ctx context.Context, userID, warehouseID, organizationID, removedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
UPDATE warehouse_access
SET is_deleted = true, deleted_by = $4, updated_by = $4, updated_at = now()
WHERE user_id = $1 AND warehouse_id = $2 AND is_deleted = false
  AND ($3 = '' OR organization_id = $3)
`
	if _, err := r.db.Exec(ctx, q, userID, warehouseID, organizationID, removedBy); err != nil {
		return fmt.Errorf("revoke warehouse access: %w", err)
	}
	return nil
}

// ListForUser returns the warehouse ids the user is scoped to. Empty means
// unrestricted.
func (r *WarehouseRepository) ListForUser(ctx context.Context, userID, organizationID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
SELECT warehouse_id
FROM warehouse_access
WHERE user_id = $1 AND organization_id = $2 AND is_deleted = false
ORDER BY created_at, warehouse_id
`
	rows, err := r.db.Query(ctx, q, userID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list warehouse access: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *WarehouseRepository) HasAccess(ctx context.Context, userID, organizationID, warehouseID string) (bool, error) {
	scope, err := r.ListForUser(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	return WarehouseAllowed(scope, warehouseID), nil
}
