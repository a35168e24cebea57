package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/wwsheet/internal/model"
)

// EntityRepository stores each entity, with its embedded items and
// modifiers, as one JSONB document. Mutations lock the row for the length
// of a transaction.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a repository over pool.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// Insert creates or replaces e.
func (r *EntityRepository) Insert(ctx context.Context, e *model.Entity) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entity %s: %w", e.ID, err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO entities (id, kind, name, doc)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET kind = EXCLUDED.kind, name = EXCLUDED.name, doc = EXCLUDED.doc,
		     version = entities.version + 1, updated_at = now()`,
		e.ID, string(e.Kind), e.Name, doc,
	)
	if err != nil {
		return fmt.Errorf("inserting entity %s: %w", e.ID, err)
	}
	return nil
}

// List returns the ids of all entities, ordered.
func (r *EntityRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM entities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	return ids, nil
}

func (r *EntityRepository) GetEntity(ctx context.Context, id string) (*model.Entity, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM entities WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying entity %s: %w", id, err)
	}
	return decodeEntity(id, doc)
}

func (r *EntityRepository) UpdateEntity(ctx context.Context, id string, patch model.Patch) error {
	return r.mutate(ctx, id, func(e *model.Entity) error {
		patch.Apply(e)
		return nil
	})
}

func (r *EntityRepository) CreateEmbedded(ctx context.Context, id string, batch model.Embedded) error {
	return r.mutate(ctx, id, func(e *model.Entity) error {
		batch.ApplyCreate(e, uuid.NewString)
		return nil
	})
}

func (r *EntityRepository) DeleteEmbedded(ctx context.Context, id string, kind model.EmbeddedKind, ids []string) error {
	return r.mutate(ctx, id, func(e *model.Entity) error {
		if missing := model.ApplyDelete(e, kind, ids); len(missing) > 0 {
			return fmt.Errorf("%s %v of %s: %w", kind, missing, id, model.ErrNotFound)
		}
		return nil
	})
}

// mutate loads the document with SELECT ... FOR UPDATE, applies fn and
// writes it back in the same transaction.
func (r *EntityRepository) mutate(ctx context.Context, id string, fn func(e *model.Entity) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for entity %s: %w", id, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "entity", id, "err", err)
		}
	}()

	var doc []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM entities WHERE id = $1 FOR UPDATE`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("entity %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("locking entity %s: %w", id, err)
	}
	e, err := decodeEntity(id, doc)
	if err != nil {
		return err
	}

	if err := fn(e); err != nil {
		return err
	}

	doc, err = json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entity %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE entities SET name = $2, doc = $3, version = version + 1, updated_at = now()
		 WHERE id = $1`,
		id, e.Name, doc,
	); err != nil {
		return fmt.Errorf("updating entity %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for entity %s: %w", id, err)
	}
	return nil
}

func decodeEntity(id string, doc []byte) (*model.Entity, error) {
	var e model.Entity
	if err := json.Unmarshal(doc, &e); err != nil {
		return nil, fmt.Errorf("decoding entity %s: %w", id, err)
	}
	e.Normalize()
	return &e, nil
}
