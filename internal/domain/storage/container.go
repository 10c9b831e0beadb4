package storage

import (
	"context"
	"fmt"
	"sync"

	"parcelhub/internal/domain/accesscontrol"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Container struct {
	pool          *pgxpool.Pool // nil in memory mode
	memory        *accesscontrol.MemoryStores
	memMu         sync.Mutex
	Organizations accesscontrol.OrganizationStore
	Roles         accesscontrol.RoleStore
	Assignments   accesscontrol.AssignmentStore
	Warehouses    accesscontrol.WarehouseStore
	Overrides     accesscontrol.OverrideStore
	Resolver      *accesscontrol.Resolver
}

func NewContainer(db *pgxpool.Pool, logger *zap.SugaredLogger) *Container {
	assignments := accesscontrol.NewAssignmentRepository(db)
	warehouses := accesscontrol.NewWarehouseRepository(db)
	overrides := accesscontrol.NewOverrideRepository(db)

	return &Container{
		pool:          db,
		Organizations: accesscontrol.NewOrganizationRepository(db),
		Roles:         accesscontrol.NewRoleRepository(db),
		Assignments:   assignments,
		Warehouses:    warehouses,
		Overrides:     overrides,
		Resolver:      accesscontrol.NewResolver(assignments, warehouses, overrides, logger),
	}
}

// NewMemoryContainer wires the in-memory stores. Data lives for the life of
// the process.
func NewMemoryContainer(logger *zap.SugaredLogger) *Container {
	m := accesscontrol.NewMemoryStores()
	return &Container{
		memory:        m,
		Organizations: m.Organizations,
		Roles:         m.Roles,
		Assignments:   m.Assignments,
		Warehouses:    m.Warehouses,
		Overrides:     m.Overrides,
		Resolver:      accesscontrol.NewResolver(m.Assignments, m.Warehouses, m.Overrides, logger),
	}
}

// AccessTx is a tx-scoped set of repos for atomic units of work.
type AccessTx struct {
	Organizations accesscontrol.OrganizationStore
	Roles         accesscontrol.RoleStore
	Assignments   accesscontrol.AssignmentStore
}

// WithAccessTx runs fn atomically. In memory mode calls are serialized
// instead, and writes made before an error are not undone.
func (c *Container) WithAccessTx(ctx context.Context, fn func(s *AccessTx) error) error {
	if c.memory != nil {
		c.memMu.Lock()
		defer c.memMu.Unlock()
		return fn(&AccessTx{
			Organizations: c.memory.Organizations,
			Roles:         c.memory.Roles,
			Assignments:   c.memory.Assignments,
		})
	}

	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil (did you forget to set pool in NewContainer?)")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // no-op after commit
	}()

	s := &AccessTx{
		Organizations: accesscontrol.NewOrganizationRepository(tx),
		Roles:         accesscontrol.NewRoleRepository(tx),
		Assignments:   accesscontrol.NewAssignmentRepository(tx),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Bootstrap identifies the records created by BootstrapOrganization.
type Bootstrap struct {
	OrganizationID string `json:"organization_id"`
	RoleID         string `json:"role_id"`
	AccessID       string `json:"access_id"`
}

// BootstrapOrganization registers orgID, seeds its Owner role and makes
// ownerID the owner. The organization row is claimed first: a concurrent
// bootstrap of the same id waits on its primary key and then fails with
// ErrConflict, as does any organization that already has roles.
func (c *Container) BootstrapOrganization(ctx context.Context, orgID, name, ownerID string) (*Bootstrap, error) {
	var out *Bootstrap
	err := c.WithAccessTx(ctx, func(tx *AccessTx) error {
		if err := tx.Organizations.Create(ctx, orgID, name, ownerID); err != nil {
			return err
		}

		existing, err := tx.Roles.ListForOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("organization %s already has roles: %w", orgID, accesscontrol.ErrConflict)
		}

		roleID, err := tx.Roles.CreateFromTemplate(ctx, accesscontrol.TemplateOwner, orgID, ownerID, "")
		if err != nil {
			return err
		}

		accessID, err := tx.Assignments.Assign(ctx, ownerID, orgID, roleID, ownerID)
		if err != nil {
			return err
		}

		out = &Bootstrap{OrganizationID: orgID, RoleID: roleID, AccessID: accessID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Container) Driver() string {
	if c.memory != nil {
		return "memory"
	}
	return "postgres"
}
