package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/wwsheet/internal/db/migrations"
)

// RunMigrations brings the entities and catalog_items tables at dsn up to
// the latest embedded schema. Already-applied versions are skipped, so the
// server calls it on every start.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	applied, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying sheet migrations: %w", err)
	}
	for _, r := range applied {
		slog.Debug("migration applied", "version", r.Source.Version, "took", r.Duration)
	}
	return nil
}
