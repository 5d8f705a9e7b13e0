//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/price-compare/internal/storage"
)

func setupPostgres(t *testing.T) *storage.Postgres {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pcmp_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := storage.NewPostgres(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgres_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgres_MigrateIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostgres_GetSetDelete(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "waffar_search_history")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "waffar_search_history", []byte(`["rice"]`)))
	require.NoError(t, s.Set(ctx, "waffar_search_history", []byte(`["sugar","rice"]`)))

	got, err := s.Get(ctx, "waffar_search_history")
	require.NoError(t, err)
	assert.JSONEq(t, `["sugar","rice"]`, string(got))

	require.NoError(t, s.Delete(ctx, "waffar_search_history"))
	require.NoError(t, s.Delete(ctx, "waffar_search_history"))

	_, err = s.Get(ctx, "waffar_search_history")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgres_StoresNonJSONBytes(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("{broken")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(got))
}
