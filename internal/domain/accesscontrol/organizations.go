package accesscontrol

import (
	"context"
	"fmt"

	"parcelhub/internal/infra/dbx"
)

type OrganizationStore interface {
	// Create registers a new organization. ErrConflict when the id is taken.
	Create(ctx context.Context, id, name, createdBy string) error
	Upsert(ctx context.Context, id, name, createdBy string) error
}

type OrganizationRepository struct {
	db dbx.Querier
}

func NewOrganizationRepository(q dbx.Querier) *OrganizationRepository {
	return &OrganizationRepository{db: q}
}

var _ OrganizationStore = (*OrganizationRepository)(nil)

// Create inserts the organization row. A concurrent Create of the same id
// blocks on the primary key until the first transaction ends.
func (r *OrganizationRepository) Create(ctx context.Context, id, name, createdBy string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
INSERT INTO organizations (id, name, created_by)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING
`
	tag, err := r.db.Exec(ctx, q, id, name, createdBy)
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("organization %s: %w", id, ErrConflict)
	}
	return nil
}

// Upsert records the organization's display name.
func (r *OrganizationRepository) Upsert(ctx context.Context, id, name, createdBy string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
INSERT INTO organizations (id, name, created_by)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
`
	if _, err := r.db.Exec(ctx, q, id, name, createdBy); err != nil {
		return fmt.Errorf("upsert organization: %w", err)
	}
	return nil
}
