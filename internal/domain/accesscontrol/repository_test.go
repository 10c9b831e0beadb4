package accesscontrol

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"parcelhub/internal/params"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestAssignmentRepository_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the upserted id", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewAssignmentRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO organization_access")).
			WithArgs(pgxmock.AnyArg(), "user-1", "org-1", "role-1", "admin").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("access-1"))

		id, err := repo.Assign(ctx, "user-1", "org-1", "role-1", "admin")
		require.NoError(t, err)
		assert.Equal(t, "access-1", id)
	})

	t.Run("wraps storage errors", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewAssignmentRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO organization_access")).
			WithArgs(anyArgs(5)...).
			WillReturnError(errStorage)

		_, err := repo.Assign(ctx, "user-1", "org-1", "role-1", "admin")
		assert.ErrorIs(t, err, errStorage)
	})
}

func TestAssignmentRepository_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("soft deletes", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewAssignmentRepository(mock)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE organization_access")).
			WithArgs("user-1", "org-1", "admin").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Revoke(ctx, "user-1", "org-1", "admin"))
	})

	t.Run("nothing to revoke", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewAssignmentRepository(mock)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE organization_access")).
			WithArgs("user-1", "org-1", "admin").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.Revoke(ctx, "user-1", "org-1", "admin"), ErrNotFound)
	})
}

func TestAssignmentRepository_GetActiveWithRole_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAssignmentRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM organization_access oa")).
		WithArgs("user-1", "org-1").
		WillReturnError(pgx.ErrNoRows)

	access, role, err := repo.GetActiveWithRole(context.Background(), "user-1", "org-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, access)
	assert.Nil(t, role)
}

func TestAssignmentRepository_ListMembers_CountError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAssignmentRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM organization_access")).
		WithArgs("org-1").
		WillReturnError(errStorage)

	_, _, err := repo.ListMembers(context.Background(), "org-1", params.Pagination{Limit: 15})
	assert.ErrorIs(t, err, errStorage)
}

func TestWarehouseRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Assign returns existing id", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewWarehouseRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO warehouse_access")).
			WithArgs(pgxmock.AnyArg(), "user-1", "org-1", "wh-1", "admin").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("wa-1"))

		id, err := repo.Assign(ctx, "user-1", "org-1", "wh-1", "admin")
		require.NoError(t, err)
		assert.Equal(t, "wa-1", id)
	})

	t.Run("Revoke with no rows is not an error", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewWarehouseRepository(mock)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE warehouse_access")).
			WithArgs("user-1", "wh-1", "", "admin").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.NoError(t, repo.Revoke(ctx, "user-1", "wh-1", "", "admin"))
	})

	t.Run("HasAccess with empty scope", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewWarehouseRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT warehouse_id")).
			WithArgs("user-1", "org-1").
			WillReturnRows(pgxmock.NewRows([]string{"warehouse_id"}))

		ok, err := repo.HasAccess(ctx, "user-1", "org-1", "wh-7")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("HasAccess with scope", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewWarehouseRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT warehouse_id")).
			WithArgs("user-1", "org-1").
			WillReturnRows(pgxmock.NewRows([]string{"warehouse_id"}).AddRow("wh-1").AddRow("wh-2"))

		ok, err := repo.HasAccess(ctx, "user-1", "org-1", "wh-7")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("HasAccess surfaces storage errors", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewWarehouseRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT warehouse_id")).
			WithArgs("user-1", "org-1").
			WillReturnError(errStorage)

		ok, err := repo.HasAccess(ctx, "user-1", "org-1", "wh-1")
		assert.False(t, ok)
		assert.ErrorIs(t, err, errStorage)
	})
}

func TestOverrideRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Set writes one upsert", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewOverrideRepository(mock)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO permission_overrides")).
			WithArgs(anyArgs(5 + len(permissionKeys))...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Set(ctx, "user-1", "org-1", "role-1", PermissionPatch{CanDeleteReceive: boolPtr(true)}, "admin")
		assert.NoError(t, err)
	})

	t.Run("Get missing record", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewOverrideRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("FROM permission_overrides")).
			WithArgs("user-1", "org-1").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Get(ctx, "user-1", "org-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Clear", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewOverrideRepository(mock)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM permission_overrides")).
			WithArgs("user-1", "org-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM permission_overrides")).
			WithArgs("user-1", "org-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.NoError(t, repo.Clear(ctx, "user-1", "org-1"))
		assert.ErrorIs(t, repo.Clear(ctx, "user-1", "org-1"), ErrNotFound)
	})
}

func TestOverrideSQL(t *testing.T) {
	assert.Contains(t, upsertOverrideSQL, "can_view_receive = COALESCE(EXCLUDED.can_view_receive, permission_overrides.can_view_receive)")
	assert.Contains(t, upsertOverrideSQL, "$21, $21")
	assert.NotContains(t, upsertOverrideSQL, "$22")
}

func TestRoleRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateFromTemplate inserts template flags", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewRoleRepository(mock)

		owner, _ := TemplateByKey(TemplateOwner)
		args := []any{pgxmock.AnyArg(), "org-1", "Owner", owner.Icon, pgxmock.AnyArg()}
		args = append(args, owner.Permissions.args()...)
		args = append(args, "user-1")

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roles")).
			WithArgs(args...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		id, err := repo.CreateFromTemplate(ctx, TemplateOwner, "org-1", "user-1", "")
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("CreateFromTemplate rejects unknown keys before touching the db", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewRoleRepository(mock)

		_, err := repo.CreateFromTemplate(ctx, "PILOT", "org-1", "user-1", "")
		assert.ErrorIs(t, err, ErrUnknownTemplate)
	})

	t.Run("CreateCustom wraps storage errors", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewRoleRepository(mock)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roles")).
			WithArgs(anyArgs(6 + len(permissionKeys))...).
			WillReturnError(errStorage)

		_, err := repo.CreateCustom(ctx, "Dock", "org-1", PermissionPatch{}, "user-1", "")
		assert.ErrorIs(t, err, errStorage)
	})

	t.Run("Get missing role", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewRoleRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("FROM roles")).
			WithArgs("role-1").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Get(ctx, "role-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListForOrganization empty", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewRoleRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta("FROM roles")).
			WithArgs("org-1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		roles, err := repo.ListForOrganization(ctx, "org-1")
		require.NoError(t, err)
		assert.NotNil(t, roles)
		assert.Empty(t, roles)
	})

	t.Run("Delete", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewRoleRepository(mock)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE roles SET is_deleted = true")).
			WithArgs("role-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE roles SET is_deleted = true")).
			WithArgs("role-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.NoError(t, repo.Delete(ctx, "role-1"))
		assert.ErrorIs(t, repo.Delete(ctx, "role-1"), ErrNotFound)
	})
}

func TestOrganizationRepository_Upsert(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrganizationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO organizations")).
		WithArgs("org-1", "North Depot", "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO organizations")).
		WithArgs("org-1", "North Depot", "user-1").
		WillReturnError(errors.New("boom"))

	assert.NoError(t, repo.Upsert(context.Background(), "org-1", "North Depot", "user-1"))
	assert.Error(t, repo.Upsert(context.Background(), "org-1", "North Depot", "user-1"))
}

func TestOrganizationRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := NewOrganizationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
		WithArgs("org-1", "North Depot", "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
		WithArgs("org-1", "Other", "user-2").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	assert.NoError(t, repo.Create(ctx, "org-1", "North Depot", "user-1"))
	assert.ErrorIs(t, repo.Create(ctx, "org-1", "Other", "user-2"), ErrConflict)
}

func TestAssignmentRepository_ListUserOrganizations(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAssignmentRepository(mock)

	// assignments to soft-deleted roles are not offered for org switching
	mock.ExpectQuery(regexp.QuoteMeta("JOIN roles r ON r.id = oa.role_id AND r.is_deleted = false")).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "organization_id", "name", "role_id", "role_name", "created_at"}).
			AddRow("access-1", "org-1", "North Depot", "role-1", "Agent", time.Now()))

	orgs, err := repo.ListUserOrganizations(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Agent", orgs[0].RoleName)
}
