// Package store is the Postgres-backed persistence layer. It mirrors
// the semantics of the in-memory schedule.Book: explicit not-found
// errors, destructive deletes, end times recomputed on every move.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"clinica-agenda-api/internal/schedule"
)

type Store struct {
	pool   *pgxpool.Pool
	policy schedule.ConflictPolicy
}

func New(pool *pgxpool.Pool, policy schedule.ConflictPolicy) *Store {
	return &Store{pool: pool, policy: policy}
}

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
