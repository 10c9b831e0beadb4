package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the access-control schema in apply order.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create organizations table",
			SQL: `
				CREATE TABLE IF NOT EXISTS organizations (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					created_by TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
				);
			`,
		},
		{
			Version:     2,
			Description: "create roles table",
			SQL: `
				CREATE TABLE IF NOT EXISTS roles (
					id TEXT PRIMARY KEY,
					organization_id TEXT NOT NULL,
					name TEXT NOT NULL,
					icon TEXT NOT NULL DEFAULT '',
					template_key TEXT,
					can_view_receive BOOLEAN NOT NULL DEFAULT false,
					can_update_receive BOOLEAN NOT NULL DEFAULT false,
					can_delete_receive BOOLEAN NOT NULL DEFAULT false,
					can_restore_receive BOOLEAN NOT NULL DEFAULT false,
					can_view_deliver BOOLEAN NOT NULL DEFAULT false,
					can_update_deliver BOOLEAN NOT NULL DEFAULT false,
					can_delete_deliver BOOLEAN NOT NULL DEFAULT false,
					can_restore_deliver BOOLEAN NOT NULL DEFAULT false,
					can_view_return BOOLEAN NOT NULL DEFAULT false,
					can_update_return BOOLEAN NOT NULL DEFAULT false,
					can_delete_return BOOLEAN NOT NULL DEFAULT false,
					can_restore_return BOOLEAN NOT NULL DEFAULT false,
					can_view_transfer BOOLEAN NOT NULL DEFAULT false,
					can_update_transfer BOOLEAN NOT NULL DEFAULT false,
					can_delete_transfer BOOLEAN NOT NULL DEFAULT false,
					can_restore_transfer BOOLEAN NOT NULL DEFAULT false,
					is_deleted BOOLEAN NOT NULL DEFAULT false,
					created_by TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE INDEX IF NOT EXISTS idx_roles_organization_id ON roles (organization_id) WHERE is_deleted = false;
			`,
		},
		{
			Version:     3,
			Description: "create organization_access table",
			SQL: `
				CREATE TABLE IF NOT EXISTS organization_access (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					organization_id TEXT NOT NULL,
					role_id TEXT NOT NULL,
					is_deleted BOOLEAN NOT NULL DEFAULT false,
					created_by TEXT NOT NULL,
					updated_by TEXT NOT NULL,
					deleted_by TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				-- one active assignment per (user, organization); closes the concurrent assign race
				CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_organization_access
					ON organization_access (user_id, organization_id) WHERE is_deleted = false;
				CREATE INDEX IF NOT EXISTS idx_organization_access_org
					ON organization_access (organization_id) WHERE is_deleted = false;
			`,
		},
		{
			Version:     4,
			Description: "create warehouse_access table",
			SQL: `
				CREATE TABLE IF NOT EXISTS warehouse_access (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					organization_id TEXT NOT NULL,
					warehouse_id TEXT NOT NULL,
					is_deleted BOOLEAN NOT NULL DEFAULT false,
					created_by TEXT NOT NULL,
					updated_by TEXT NOT NULL,
					deleted_by TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_warehouse_access
					ON warehouse_access (user_id, warehouse_id) WHERE is_deleted = false;
				CREATE INDEX IF NOT EXISTS idx_warehouse_access_user_org
					ON warehouse_access (user_id, organization_id) WHERE is_deleted = false;
			`,
		},
		{
			Version:     5,
			Description: "create permission_overrides table",
			SQL: `
				CREATE TABLE IF NOT EXISTS permission_overrides (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					organization_id TEXT NOT NULL,
					role_id TEXT NOT NULL,
					can_view_receive BOOLEAN,
					can_update_receive BOOLEAN,
					can_delete_receive BOOLEAN,
					can_restore_receive BOOLEAN,
					can_view_deliver BOOLEAN,
					can_update_deliver BOOLEAN,
					can_delete_deliver BOOLEAN,
					can_restore_deliver BOOLEAN,
					can_view_return BOOLEAN,
					can_update_return BOOLEAN,
					can_delete_return BOOLEAN,
					can_restore_return BOOLEAN,
					can_view_transfer BOOLEAN,
					can_update_transfer BOOLEAN,
					can_delete_transfer BOOLEAN,
					can_restore_transfer BOOLEAN,
					created_by TEXT NOT NULL,
					updated_by TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					UNIQUE (user_id, organization_id)
				);
			`,
		},
	}
}

// Migrate applies every migration newer than the recorded schema version.
// Each migration runs in its own transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for _, m := range Migrations() {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(ctx, pool, m); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, m Migration) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`,
		m.Version, m.Description,
	); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return tx.Commit(ctx)
}
