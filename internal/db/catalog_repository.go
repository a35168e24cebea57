package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/wwsheet/internal/model"
)

// CatalogRepository stores the items character options may grant.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a repository over pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Put stores items under their references in one batch.
func (r *CatalogRepository) Put(ctx context.Context, items map[string]model.Item) error {
	batch := &pgx.Batch{}
	for ref, it := range items {
		doc, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("encoding catalog item %s: %w", ref, err)
		}
		batch.Queue(
			`INSERT INTO catalog_items (ref, doc) VALUES ($1, $2)
			 ON CONFLICT (ref) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
			ref, doc,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("storing catalog: %w", err)
	}
	return nil
}

// Load reads the whole catalog into memory.
func (r *CatalogRepository) Load(ctx context.Context) (Catalog, error) {
	rows, err := r.pool.Query(ctx, `SELECT ref, doc FROM catalog_items`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	out := make(Catalog)
	for rows.Next() {
		var ref string
		var doc []byte
		if err := rows.Scan(&ref, &doc); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		var it model.Item
		if err := json.Unmarshal(doc, &it); err != nil {
			return nil, fmt.Errorf("decoding catalog item %s: %w", ref, err)
		}
		out[ref] = it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog: %w", err)
	}
	return out, nil
}

// Get returns one catalog item.
func (r *CatalogRepository) Get(ctx context.Context, ref string) (model.Item, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM catalog_items WHERE ref = $1`, ref).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Item{}, fmt.Errorf("catalog item %s: %w", ref, model.ErrNotFound)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("querying catalog item %s: %w", ref, err)
	}
	var it model.Item
	if err := json.Unmarshal(doc, &it); err != nil {
		return model.Item{}, fmt.Errorf("decoding catalog item %s: %w", ref, err)
	}
	return it, nil
}
