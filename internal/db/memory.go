package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/wwsheet/internal/model"
)

// MemoryStore keeps entities in memory. Reads and writes copy entities, so
// callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]*model.Entity
}

// NewMemoryStore returns a store seeded with entities.
func NewMemoryStore(entities ...*model.Entity) *MemoryStore {
	s := &MemoryStore{entities: make(map[string]*model.Entity, len(entities))}
	for _, e := range entities {
		s.Put(e)
	}
	return s
}

// Put inserts or replaces e.
func (s *MemoryStore) Put(e *model.Entity) {
	c := e.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.entities[c.ID] = c
	s.mu.Unlock()
}

// IDs returns the stored ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MemoryStore) GetEntity(_ context.Context, id string) (*model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", id, model.ErrNotFound)
	}
	return e.Clone(), nil
}

func (s *MemoryStore) UpdateEntity(_ context.Context, id string, patch model.Patch) error {
	return s.mutate(id, func(e *model.Entity) error {
		patch.Apply(e)
		return nil
	})
}

func (s *MemoryStore) CreateEmbedded(_ context.Context, id string, batch model.Embedded) error {
	return s.mutate(id, func(e *model.Entity) error {
		batch.ApplyCreate(e, uuid.NewString)
		return nil
	})
}

func (s *MemoryStore) DeleteEmbedded(_ context.Context, id string, kind model.EmbeddedKind, ids []string) error {
	return s.mutate(id, func(e *model.Entity) error {
		if missing := model.ApplyDelete(e, kind, ids); len(missing) > 0 {
			return fmt.Errorf("%s %v of %s: %w", kind, missing, id, model.ErrNotFound)
		}
		return nil
	})
}

// mutate applies fn to a copy and stores it only when fn succeeds.
func (s *MemoryStore) mutate(id string, fn func(e *model.Entity) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("entity %s: %w", id, model.ErrNotFound)
	}
	c := e.Clone()
	if err := fn(c); err != nil {
		return err
	}
	s.entities[id] = c
	return nil
}
