package accesscontrol

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(stores *MemoryStores) *Resolver {
	return NewResolver(stores.Assignments, stores.Warehouses, stores.Overrides, zap.NewNop().Sugar())
}

func TestResolver_GetEffectivePermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("no assignment resolves to nil", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := newTestResolver(stores)

		eff, err := resolver.GetEffectivePermissions(ctx, "user-1", "org-1")
		require.NoError(t, err)
		assert.Nil(t, eff)
	})

	t.Run("deleted role resolves to nil", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := newTestResolver(stores)

		roleID, err := stores.Roles.CreateFromTemplate(ctx, TemplateAgent, "org-1", "admin", "")
		require.NoError(t, err)
		_, err = stores.Assignments.Assign(ctx, "user-1", "org-1", roleID, "admin")
		require.NoError(t, err)
		require.NoError(t, stores.Roles.Delete(ctx, roleID))

		eff, err := resolver.GetEffectivePermissions(ctx, "user-1", "org-1")
		require.NoError(t, err)
		assert.Nil(t, eff)
	})

	t.Run("revoked assignment resolves to nil", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := newTestResolver(stores)

		roleID, _ := stores.Roles.CreateFromTemplate(ctx, TemplateOwner, "org-1", "admin", "")
		_, _ = stores.Assignments.Assign(ctx, "user-1", "org-1", roleID, "admin")
		require.NoError(t, stores.Assignments.Revoke(ctx, "user-1", "org-1", "admin"))

		eff, err := resolver.GetEffectivePermissions(ctx, "user-1", "org-1")
		require.NoError(t, err)
		assert.Nil(t, eff)
	})

	t.Run("role flags without override", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := newTestResolver(stores)

		roleID, _ := stores.Roles.CreateFromTemplate(ctx, TemplateViewer, "org-1", "admin", "")
		_, _ = stores.Assignments.Assign(ctx, "user-1", "org-1", roleID, "admin")

		eff, err := resolver.GetEffectivePermissions(ctx, "user-1", "org-1")
		require.NoError(t, err)
		require.NotNil(t, eff)

		viewer, _ := TemplateByKey(TemplateViewer)
		assert.Equal(t, roleID, eff.RoleID)
		assert.Equal(t, "Viewer", eff.RoleName)
		assert.Equal(t, "org-1", eff.OrganizationID)
		assert.Equal(t, viewer.Permissions, eff.Permissions)
		assert.NotNil(t, eff.WarehouseAccess)
		assert.Empty(t, eff.WarehouseAccess)
	})

	t.Run("partial override keeps unrelated grants", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := newTestResolver(stores)

		roleID, _ := stores.Roles.CreateCustom(ctx, "Receiver", "org-1", PermissionPatch{
			CanViewReceive:   boolPtr(true),
			CanUpdateReceive: boolPtr(true),
		}, "admin", "")
		_, _ = stores.Assignments.Assign(ctx, "user-1", "org-1", roleID, "admin")
		require.NoError(t, stores.Overrides.Set(ctx, "user-1", "org-1", roleID, PermissionPatch{
			CanUpdateReceive: boolPtr(false),
		}, "admin"))

		eff, err := resolver.GetEffectivePermissions(ctx, "user-1", "org-1")
		require.NoError(t, err)
		require.NotNil(t, eff)
		assert.True(t, eff.Permissions.CanViewReceive)
		assert.False(t, eff.Permissions.CanUpdateReceive)
	})

	t.Run("override is scoped to its organization", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := newTestResolver(stores)

		org1Role, _ := stores.Roles.CreateFromTemplate(ctx, TemplateAgent, "org-1", "admin", "")
		org2Role, _ := stores.Roles.CreateFromTemplate(ctx, TemplateAgent, "org-2", "admin", "")
		_, _ = stores.Assignments.Assign(ctx, "user-1", "org-1", org1Role, "admin")
		_, _ = stores.Assignments.Assign(ctx, "user-1", "org-2", org2Role, "admin")
		_ = stores.Overrides.Set(ctx, "user-1", "org-1", org1Role, PermissionPatch{CanDeleteReceive: boolPtr(true)}, "admin")

		eff1, _ := resolver.GetEffectivePermissions(ctx, "user-1", "org-1")
		eff2, _ := resolver.GetEffectivePermissions(ctx, "user-1", "org-2")
		assert.True(t, eff1.Permissions.CanDeleteReceive)
		assert.False(t, eff2.Permissions.CanDeleteReceive)
	})

	t.Run("warehouse scope is reported", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := newTestResolver(stores)

		roleID, _ := stores.Roles.CreateFromTemplate(ctx, TemplateAgent, "org-1", "admin", "")
		_, _ = stores.Assignments.Assign(ctx, "user-1", "org-1", roleID, "admin")
		_, _ = stores.Warehouses.Assign(ctx, "user-1", "org-1", "wh-1", "admin")
		_, _ = stores.Warehouses.Assign(ctx, "user-1", "org-2", "wh-9", "admin")

		eff, err := resolver.GetEffectivePermissions(ctx, "user-1", "org-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"wh-1"}, eff.WarehouseAccess)
	})
}

func TestResolver_HasPermission(t *testing.T) {
	ctx := context.Background()

	t.Run("agent scenario with override", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := newTestResolver(stores)

		roleID, err := stores.Roles.CreateFromTemplate(ctx, TemplateAgent, "org-1", "owner", "")
		require.NoError(t, err)
		_, err = stores.Assignments.Assign(ctx, "user-1", "org-1", roleID, "owner")
		require.NoError(t, err)

		ok, err := resolver.HasPermission(ctx, "user-1", "org-1", "canViewReceive")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = resolver.HasPermission(ctx, "user-1", "org-1", "canDeleteReceive")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, stores.Overrides.Set(ctx, "user-1", "org-1", roleID, PermissionPatch{
			CanDeleteReceive: boolPtr(true),
		}, "owner"))

		ok, err = resolver.HasPermission(ctx, "user-1", "org-1", "canDeleteReceive")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = resolver.HasPermission(ctx, "user-1", "org-1", "canViewReceive")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no access is false not error", func(t *testing.T) {
		resolver := newTestResolver(NewMemoryStores())

		ok, err := resolver.HasPermission(ctx, "ghost", "org-1", "canViewReceive")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		resolver := newTestResolver(NewMemoryStores())

		_, err := resolver.HasPermission(ctx, "user-1", "org-1", "canLaunchRockets")
		assert.ErrorIs(t, err, ErrUnknownPermission)
	})
}

func TestResolver_HasWarehouseAccess(t *testing.T) {
	ctx := context.Background()
	stores := NewMemoryStores()
	resolver := newTestResolver(stores)

	roleID, _ := stores.Roles.CreateFromTemplate(ctx, TemplateAgent, "org-1", "owner", "")
	_, _ = stores.Assignments.Assign(ctx, "user-1", "org-1", roleID, "owner")

	t.Run("empty scope allows any warehouse", func(t *testing.T) {
		for _, wh := range []string{"wh-1", "wh-2", "anything"} {
			ok, err := resolver.HasWarehouseAccess(ctx, "user-1", "org-1", wh)
			require.NoError(t, err)
			assert.True(t, ok, wh)
		}
	})

	t.Run("scoped user only reaches listed warehouses", func(t *testing.T) {
		_, err := stores.Warehouses.Assign(ctx, "user-1", "org-1", "wh-1", "owner")
		require.NoError(t, err)

		ok, _ := resolver.HasWarehouseAccess(ctx, "user-1", "org-1", "wh-1")
		assert.True(t, ok)
		ok, _ = resolver.HasWarehouseAccess(ctx, "user-1", "org-1", "wh-2")
		assert.False(t, ok)
	})

	t.Run("revoking the last warehouse restores default allow", func(t *testing.T) {
		require.NoError(t, stores.Warehouses.Revoke(ctx, "user-1", "wh-1", "org-1", "owner"))

		ok, _ := resolver.HasWarehouseAccess(ctx, "user-1", "org-1", "wh-2")
		assert.True(t, ok)
	})

	t.Run("user without access is denied", func(t *testing.T) {
		ok, err := resolver.HasWarehouseAccess(ctx, "stranger", "org-1", "wh-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

var errStorage = errors.New("connection reset")

type failingAssignments struct {
	*MemoryAssignmentStore
}

func (failingAssignments) GetActiveWithRole(context.Context, string, string) (*OrganizationAccess, *Role, error) {
	return nil, nil, errStorage
}

type failingOverrides struct {
	*MemoryOverrideStore
}

func (failingOverrides) Get(context.Context, string, string) (*PermissionOverride, error) {
	return nil, errStorage
}

func TestResolver_StorageFailuresPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("assignment lookup", func(t *testing.T) {
		stores := NewMemoryStores()
		resolver := NewResolver(failingAssignments{}, stores.Warehouses, stores.Overrides, nil)

		eff, err := resolver.GetEffectivePermissions(ctx, "user-1", "org-1")
		assert.Nil(t, eff)
		assert.ErrorIs(t, err, errStorage)

		ok, err := resolver.HasPermission(ctx, "user-1", "org-1", "canViewReceive")
		assert.False(t, ok)
		assert.ErrorIs(t, err, errStorage)
	})

	t.Run("override lookup", func(t *testing.T) {
		stores := NewMemoryStores()
		roleID, _ := stores.Roles.CreateFromTemplate(ctx, TemplateOwner, "org-1", "admin", "")
		_, _ = stores.Assignments.Assign(ctx, "user-1", "org-1", roleID, "admin")
		resolver := NewResolver(stores.Assignments, stores.Warehouses, failingOverrides{}, nil)

		_, err := resolver.HasWarehouseAccess(ctx, "user-1", "org-1", "wh-1")
		assert.ErrorIs(t, err, errStorage)
	})
}
