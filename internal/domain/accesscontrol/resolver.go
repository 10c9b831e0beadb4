package accesscontrol

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Resolver combines assignment, role, override and warehouse scope into the
// effective permissions of a user in an organization. It holds no state and
// recomputes on every call.
type Resolver struct {
	assignments AssignmentStore
	warehouses  WarehouseStore
	overrides   OverrideStore
	logger      *zap.SugaredLogger
}

func NewResolver(assignments AssignmentStore, warehouses WarehouseStore, overrides OverrideStore, logger *zap.SugaredLogger) *Resolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{
		assignments: assignments,
		warehouses:  warehouses,
		overrides:   overrides,
		logger:      logger,
	}
}

// GetEffectivePermissions returns nil, nil when the user has no active
// assignment in the organization or the assigned role no longer exists.
// Callers must treat nil as "unauthorized". Storage failures are returned
// as errors.
func (r *Resolver) GetEffectivePermissions(ctx context.Context, userID, organizationID string) (*EffectivePermissions, error) {
	access, role, err := r.assignments.GetActiveWithRole(ctx, userID, organizationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Debugw("no organization access", "user_id", userID, "organization_id", organizationID)
			return nil, nil
		}
		return nil, fmt.Errorf("resolve assignment: %w", err)
	}
	if role == nil {
		return nil, nil
	}

	scope, err := r.warehouses.ListForUser(ctx, userID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("resolve warehouse scope: %w", err)
	}

	permissions := role.Permissions
	override, err := r.overrides.Get(ctx, userID, organizationID)
	switch {
	case err == nil:
		permissions = permissions.Apply(override.Permissions)
	case errors.Is(err, ErrNotFound):
	default:
		return nil, fmt.Errorf("resolve overrides: %w", err)
	}

	if scope == nil {
		scope = []string{}
	}

	return &EffectivePermissions{
		RoleID:          access.RoleID,
		RoleName:        role.Name,
		OrganizationID:  organizationID,
		Permissions:     permissions,
		WarehouseAccess: scope,
	}, nil
}

// HasPermission validates the key and reports the resolved flag. A user with
// no access resolves to false.
func (r *Resolver) HasPermission(ctx context.Context, userID, organizationID, permissionKey string) (bool, error) {
	key, err := ParsePermissionKey(permissionKey)
	if err != nil {
		return false, err
	}

	eff, err := r.GetEffectivePermissions(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	if eff == nil {
		return false, nil
	}
	return eff.Permissions.Get(key), nil
}

// HasWarehouseAccess reports whether the user may act on the warehouse.
// Users without organization access are denied; users with an empty scope
// are allowed everywhere.
func (r *Resolver) HasWarehouseAccess(ctx context.Context, userID, organizationID, warehouseID string) (bool, error) {
	eff, err := r.GetEffectivePermissions(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	if eff == nil {
		return false, nil
	}
	return WarehouseAllowed(eff.WarehouseAccess, warehouseID), nil
}
