package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"parcelhub/internal/db"
	"parcelhub/internal/domain/accesscontrol"
	"parcelhub/internal/params"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBootstrapOrganization_Concurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	addr := os.Getenv("TEST_POSTGRES_PRIMARY")
	if addr == "" {
		t.Skip("TEST_POSTGRES_PRIMARY not set")
	}

	pool, err := db.New(addr, 10, "1m")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err = db.Migrate(ctx, pool)
	require.NoError(t, err)

	c := NewContainer(pool, zap.NewNop().Sugar())

	orgID := "org-" + uuid.NewString()
	t.Cleanup(func() {
		for _, q := range []string{
			`DELETE FROM organization_access WHERE organization_id = $1`,
			`DELETE FROM roles WHERE organization_id = $1`,
			`DELETE FROM organizations WHERE id = $1`,
		} {
			_, _ = pool.Exec(context.Background(), q, orgID)
		}
	})

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []string
		conflicts int
		failures  []error
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		owner := fmt.Sprintf("owner-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.BootstrapOrganization(ctx, orgID, "Org "+owner, owner)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded = append(succeeded, owner)
			case errors.Is(err, accesscontrol.ErrConflict):
				conflicts++
			default:
				failures = append(failures, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, failures)
	require.Len(t, succeeded, 1)
	assert.Equal(t, callers-1, conflicts)

	roles, err := c.Roles.ListForOrganization(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	_, total, err := c.Assignments.ListMembers(ctx, orgID, params.Pagination{Limit: 15})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	var name string
	require.NoError(t, pool.QueryRow(ctx, `SELECT name FROM organizations WHERE id = $1`, orgID).Scan(&name))
	assert.Equal(t, "Org "+succeeded[0], name)
}
