package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPoolSize = 10

// Postgres implements Storage on a kv_store table, so several BFF replicas
// can share one recent-search list.
//
// Postgres methods are covered by the integration tests.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pooled Postgres store.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *Postgres) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// Get returns the value stored under key.
func (s *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, queryGetValue, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *Postgres) Set(ctx context.Context, key string, value []byte) error {
	args := pgx.NamedArgs{
		"key":   key,
		"value": value,
	}
	if _, err := s.pool.Exec(ctx, queryUpsertValue, args); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, queryDeleteValue, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}
