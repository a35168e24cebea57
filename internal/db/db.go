// Package db persists entities: an in-memory store for tests and the CLI,
// and a PostgreSQL repository storing one JSONB document per entity.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Entities returns the entity repository over this pool.
func (d *DB) Entities() *EntityRepository {
	return NewEntityRepository(d.pool)
}

// Catalog returns the catalog repository over this pool.
func (d *DB) Catalog() *CatalogRepository {
	return NewCatalogRepository(d.pool)
}
