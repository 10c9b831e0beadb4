package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrations(t *testing.T) {
	migrations := Migrations()

	t.Run("versions are sequential", func(t *testing.T) {
		for i, m := range migrations {
			assert.Equal(t, i+1, m.Version)
			assert.NotEmpty(t, m.Description)
			assert.NotEmpty(t, strings.TrimSpace(m.SQL))
		}
	})

	t.Run("active rows are unique per pair", func(t *testing.T) {
		all := ""
		for _, m := range migrations {
			all += m.SQL
		}
		assert.Contains(t, all, "ON organization_access (user_id, organization_id) WHERE is_deleted = false")
		assert.Contains(t, all, "ON warehouse_access (user_id, warehouse_id) WHERE is_deleted = false")
		assert.Contains(t, all, "UNIQUE (user_id, organization_id)")
	})

	t.Run("role flags are not nullable and override flags are", func(t *testing.T) {
		roles := migrations[1].SQL
		overrides := migrations[4].SQL
		assert.Equal(t, 16, strings.Count(roles, "BOOLEAN NOT NULL DEFAULT false,")-1)
		assert.Equal(t, 16, strings.Count(overrides, " BOOLEAN,\n"))
	})
}
