package accesscontrol_test

import (
	"context"
	"os"
	"testing"
	"time"

	"parcelhub/internal/db"
	"parcelhub/internal/domain/accesscontrol"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestPool connects to TEST_POSTGRES_PRIMARY and applies migrations.
// Tests are skipped when the variable is unset or in short mode.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	addr := os.Getenv("TEST_POSTGRES_PRIMARY")
	if addr == "" {
		t.Skip("TEST_POSTGRES_PRIMARY not set")
	}

	pool, err := db.New(addr, 5, "1m")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err = db.Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func TestPostgresStores(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	orgs := accesscontrol.NewOrganizationRepository(pool)
	roles := accesscontrol.NewRoleRepository(pool)
	assignments := accesscontrol.NewAssignmentRepository(pool)
	warehouses := accesscontrol.NewWarehouseRepository(pool)
	overrides := accesscontrol.NewOverrideRepository(pool)
	resolver := accesscontrol.NewResolver(assignments, warehouses, overrides, nil)

	// unique ids keep reruns against the same database independent
	orgID := "org-" + uuid.NewString()
	userID := "user-" + uuid.NewString()
	t.Cleanup(func() {
		for _, q := range []string{
			`DELETE FROM permission_overrides WHERE organization_id = $1`,
			`DELETE FROM warehouse_access WHERE organization_id = $1`,
			`DELETE FROM organization_access WHERE organization_id = $1`,
			`DELETE FROM roles WHERE organization_id = $1`,
			`DELETE FROM organizations WHERE id = $1`,
		} {
			_, _ = pool.Exec(context.Background(), q, orgID)
		}
	})

	require.NoError(t, orgs.Upsert(ctx, orgID, "North Depot", "admin"))

	agentID, err := roles.CreateFromTemplate(ctx, accesscontrol.TemplateAgent, orgID, "admin", "")
	require.NoError(t, err)
	viewerID, err := roles.CreateFromTemplate(ctx, accesscontrol.TemplateViewer, orgID, "admin", "Auditor")
	require.NoError(t, err)

	t.Run("role round trip", func(t *testing.T) {
		role, err := roles.Get(ctx, viewerID)
		require.NoError(t, err)
		assert.Equal(t, "Auditor", role.Name)
		require.NotNil(t, role.TemplateKey)
		assert.Equal(t, accesscontrol.TemplateViewer, *role.TemplateKey)

		viewer, _ := accesscontrol.TemplateByKey(accesscontrol.TemplateViewer)
		assert.Equal(t, viewer.Permissions, role.Permissions)

		list, err := roles.ListForOrganization(ctx, orgID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("assign upserts", func(t *testing.T) {
		first, err := assignments.Assign(ctx, userID, orgID, agentID, "admin")
		require.NoError(t, err)
		second, err := assignments.Assign(ctx, userID, orgID, viewerID, "admin")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		var active int
		err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM organization_access WHERE user_id = $1 AND organization_id = $2 AND is_deleted = false`, userID, orgID).Scan(&active)
		require.NoError(t, err)
		assert.Equal(t, 1, active)

		_, err = assignments.Assign(ctx, userID, orgID, agentID, "admin")
		require.NoError(t, err)
	})

	t.Run("warehouse assign is idempotent", func(t *testing.T) {
		first, err := warehouses.Assign(ctx, userID, orgID, "wh-1", "admin")
		require.NoError(t, err)
		second, err := warehouses.Assign(ctx, userID, orgID, "wh-1", "admin")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("resolver merges overrides", func(t *testing.T) {
		deny := false
		grant := true
		require.NoError(t, overrides.Set(ctx, userID, orgID, agentID, accesscontrol.PermissionPatch{CanUpdateReceive: &deny}, "admin"))
		require.NoError(t, overrides.Set(ctx, userID, orgID, agentID, accesscontrol.PermissionPatch{CanDeleteReceive: &grant}, "admin"))

		eff, err := resolver.GetEffectivePermissions(ctx, userID, orgID)
		require.NoError(t, err)
		require.NotNil(t, eff)
		assert.Equal(t, agentID, eff.RoleID)
		assert.True(t, eff.Permissions.CanViewReceive)
		assert.False(t, eff.Permissions.CanUpdateReceive)
		assert.True(t, eff.Permissions.CanDeleteReceive)
		assert.Equal(t, []string{"wh-1"}, eff.WarehouseAccess)

		ok, err := resolver.HasWarehouseAccess(ctx, userID, orgID, "wh-2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("revoke removes access", func(t *testing.T) {
		require.NoError(t, assignments.Revoke(ctx, userID, orgID, "admin"))

		eff, err := resolver.GetEffectivePermissions(ctx, userID, orgID)
		require.NoError(t, err)
		assert.Nil(t, eff)
	})
}
