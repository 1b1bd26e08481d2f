//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/R3E-Network/item_service/internal/app/domain/item"
	"github.com/R3E-Network/item_service/internal/app/storage"
	"github.com/R3E-Network/item_service/internal/config"
	"github.com/R3E-Network/item_service/internal/platform/database"
	"github.com/R3E-Network/item_service/internal/platform/migrations"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "items",
			"POSTGRES_PASSWORD": "items",
			"POSTGRES_DB":       "items",
		},
		// postgres logs readiness once for the init server and once for the real one
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://items:items@%s:%s/items?sslmode=disable", host, port.Port())
}

func TestStoreAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t, ctx)

	db, err := database.Open(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Apply(ctx, db))
	// schema bootstrap is idempotent
	require.NoError(t, migrations.Apply(ctx, db))

	store := New(db)

	_, ok, err := store.AveragePrice(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := store.CreateItem(ctx, item.Item{Name: "first", Price: 10})
	require.NoError(t, err)
	second, err := store.CreateItem(ctx, item.Item{Name: "second", Price: 20})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, time.UTC, first.CreatedAt.Location())

	count, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	avg, ok, err := store.AveragePrice(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 15.0, avg, 1e-9)

	sum, err := store.SummarizeItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Count)
	assert.InDelta(t, 15.0, sum.AvgPrice, 1e-9)

	page, total, err := store.ListItems(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Name)

	_, err = store.CreateItem(ctx, item.Item{Name: "", Price: 1})
	assert.ErrorIs(t, err, storage.ErrConstraint)

	require.NoError(t, store.ClearItems(ctx))
	require.NoError(t, store.ClearItems(ctx))
	count, err = store.CountItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	third, err := store.CreateItem(ctx, item.Item{Name: "third", Price: 1})
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)
}

func TestConcurrentCreatesAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t, ctx)

	db, err := database.Open(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(ctx, db))

	store := New(db)

	const n = 100
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int64]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			it, err := store.CreateItem(ctx, item.Item{Name: fmt.Sprintf("item-%d", i), Price: 1})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[it.ID] = struct{}{}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, ids, n)
	count, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}
