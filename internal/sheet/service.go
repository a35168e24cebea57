// Package sheet hosts the resolution pipeline over a persistence
// collaborator: it serializes recomputes per entity, persists derived fields,
// runs rolls and dispatches their cross-entity effects.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/udisondev/wwsheet/internal/game/dice"
	"github.com/udisondev/wwsheet/internal/game/grant"
	"github.com/udisondev/wwsheet/internal/game/roll"
)

// ErrClosed is returned by operations started after Close.
var ErrClosed = errors.New("sheet service closed")

// Config tunes the service.
type Config struct {
	Rules dice.Rules

	// DispatchTimeout bounds one asynchronous materialization or message post.
	DispatchTimeout time.Duration
}

// DefaultConfig returns the standard rules and a 10s dispatch timeout.
func DefaultConfig() Config {
	return Config{Rules: dice.DefaultRules(), DispatchTimeout: 10 * time.Second}
}

// Service is safe for concurrent use.
type Service struct {
	store    Store
	msgs     Messenger
	catalog  grant.Catalog
	resolver *roll.Resolver
	cfg      Config

	locks   *keyedMutex
	flights singleflight.Group

	sessMu   sync.Mutex
	sessions map[string]*roll.Session

	closeMu sync.RWMutex
	closed  bool
	pending sync.WaitGroup
}

// New creates a service. msgs and catalog may be nil: outcome messages are
// then dropped and character options grant no items.
func New(store Store, msgs Messenger, catalog grant.Catalog, src dice.Source, cfg Config) *Service {
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = DefaultConfig().DispatchTimeout
	}
	return &Service{
		store:    store,
		msgs:     msgs,
		catalog:  catalog,
		resolver: roll.NewResolver(cfg.Rules, src),
		cfg:      cfg,
		locks:    newKeyedMutex(),
		sessions: make(map[string]*roll.Session),
	}
}

// Close stops accepting asynchronous work and waits for pending dispatches
// until ctx is done.
func (s *Service) Close(ctx context.Context) error {
	s.closeMu.Lock()
	s.closed = true
	s.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining sheet dispatches: %w", ctx.Err())
	}
}

// Drain waits for every dispatch scheduled so far.
func (s *Service) Drain() {
	s.pending.Wait()
}

// dispatch runs fn in the background, detached from the caller's
// cancellation. Returns false once the service is closed.
func (s *Service) dispatch(ctx context.Context, what string, fn func(ctx context.Context) error) bool {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		slog.Warn("dispatch after close dropped", "what", what)
		return false
	}

	s.pending.Add(1)
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Error("dispatch failed", "what", what, "err", err)
		}
	}()
	return true
}

// withEntity runs fn while holding the entity's lock.
func (s *Service) withEntity(id string, fn func() error) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return fn()
}
