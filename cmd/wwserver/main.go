package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/wwsheet/internal/api"
	"github.com/udisondev/wwsheet/internal/chat"
	"github.com/udisondev/wwsheet/internal/config"
	"github.com/udisondev/wwsheet/internal/db"
	"github.com/udisondev/wwsheet/internal/game/dice"
	"github.com/udisondev/wwsheet/internal/game/grant"
	"github.com/udisondev/wwsheet/internal/sheet"
)

const ConfigPath = "configs/wwserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("WWSHEET_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.Info("wwsheet server starting",
		"log_level", cfg.LogLevel,
		"backend", cfg.Backend,
		"addr", cfg.Addr())

	store, catalog, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	seed, err := dice.NewSeed()
	if err != nil {
		return fmt.Errorf("seeding dice: %w", err)
	}

	hub := chat.NewHub(chat.HubConfig{
		SendQueue:    cfg.SendQueueSize,
		WriteTimeout: cfg.WriteTimeout,
	})
	defer hub.Close()

	svc := sheet.New(store, hub, catalog, dice.NewSource(seed), sheet.Config{
		Rules:           cfg.Rules,
		DispatchTimeout: cfg.DispatchTimeout,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewServer(svc, http.HandlerFunc(hub.ServeWS)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting http server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown", "err", err)
		}
		if err := svc.Close(shutdownCtx); err != nil {
			return fmt.Errorf("closing sheet service: %w", err)
		}
		slog.Info("sheet service drained")
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// openStore selects the persistence backend. The memory backend is seeded
// from the fixtures file; the postgres backend runs migrations and upserts
// the fixtures when a file is configured.
func openStore(ctx context.Context, cfg config.Server) (sheet.Store, grant.Catalog, func(), error) {
	var fx *db.Fixtures
	if cfg.Fixtures != "" {
		loaded, err := db.LoadFixtures(cfg.Fixtures)
		switch {
		case err == nil:
			fx = loaded
		case cfg.Backend == config.BackendMemory:
			return nil, nil, nil, err
		default:
			slog.Warn("fixtures not loaded", "path", cfg.Fixtures, "err", err)
		}
	}

	if cfg.Backend == config.BackendMemory {
		slog.Info("memory store loaded", "entities", len(fx.Entities), "catalog", len(fx.Catalog))
		return db.NewMemoryStore(fx.Entities...), fx.Catalog, func() {}, nil
	}

	dsn := cfg.Database.DSN()
	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, dsn); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	entities := database.Entities()
	catalogRepo := database.Catalog()
	if fx != nil {
		for _, e := range fx.Entities {
			if err := entities.Insert(ctx, e); err != nil {
				database.Close()
				return nil, nil, nil, fmt.Errorf("seeding entity %s: %w", e.ID, err)
			}
		}
		if err := catalogRepo.Put(ctx, fx.Catalog); err != nil {
			database.Close()
			return nil, nil, nil, fmt.Errorf("seeding catalog: %w", err)
		}
		slog.Info("fixtures seeded", "entities", len(fx.Entities), "catalog", len(fx.Catalog))
	}

	catalog, err := catalogRepo.Load(ctx)
	if err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	return entities, catalog, database.Close, nil
}
