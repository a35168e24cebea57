package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/udisondev/wwsheet/internal/db"
	"github.com/udisondev/wwsheet/internal/game/dice"
	"github.com/udisondev/wwsheet/internal/model"
	"github.com/udisondev/wwsheet/internal/sheet"
)

// closeTimeout bounds how long the CLI waits for background dispatches.
const closeTimeout = 10 * time.Second

type closer interface {
	Close(ctx context.Context) error
}

func closeSheet(svc closer) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		slog.Warn("closing sheet service", "err", err)
	}
}

// openSheet loads the entity file into a throwaway memory store. Extra
// entities (synthetic targets) share the store.
func openSheet(path string, src dice.Source, rules dice.Rules, extra ...*model.Entity) (*sheet.Service, *model.Entity, error) {
	e, err := db.LoadEntity(path)
	if err != nil {
		return nil, nil, err
	}
	if e.ID == "" {
		return nil, nil, fmt.Errorf("entity %s has no id", path)
	}
	store := db.NewMemoryStore(append([]*model.Entity{e}, extra...)...)
	cfg := sheet.DefaultConfig()
	cfg.Rules = rules
	return sheet.New(store, nil, nil, src, cfg), e, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
