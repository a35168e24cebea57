package sheet

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/wwsheet/internal/game/effect"
	"github.com/udisondev/wwsheet/internal/game/stats"
	"github.com/udisondev/wwsheet/internal/model"
)

// View is the result of one full recompute. Callers must treat it as
// read-only; concurrent readers of the same entity may share it.
type View struct {
	EntityID  string           `json:"entityId"`
	Name      string           `json:"name"`
	Kind      model.ActorKind  `json:"kind"`
	Effective *model.Effective `json:"effective"`
	Changes   []effect.Change  `json:"changes"`
	Warnings  []effect.Warning `json:"warnings,omitempty"`
	Derived   stats.Derived    `json:"derived"`

	Fingerprint string `json:"fingerprint"`
}

// compute resolves and derives e without touching the store.
func compute(e *model.Entity) (*View, error) {
	res, err := effect.Resolve(effect.Input{
		EntityID:  e.ID,
		Kind:      e.Kind,
		Base:      e.Data,
		Modifiers: e.ApplicableModifiers(),
	})
	if err != nil {
		return nil, err
	}
	d := stats.Derive(res.Effective, stats.Inputs{
		PersistedHealthCurrent: e.Data.Stats.Health.Current,
		Incapacitated:          e.Incapacitated,
	})
	fp, err := fingerprint(d)
	if err != nil {
		return nil, err
	}
	return &View{
		EntityID:    e.ID,
		Name:        e.Name,
		Kind:        e.Kind,
		Effective:   res.Effective,
		Changes:     res.Changes,
		Warnings:    res.Warnings,
		Derived:     d,
		Fingerprint: fp,
	}, nil
}

// fingerprint hashes the derived statistics. Map keys are marshalled in
// sorted order, so equal stats give equal fingerprints.
func fingerprint(d stats.Derived) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encoding derived stats: %w", err)
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:16]), nil
}

func (s *Service) load(ctx context.Context, id string) (*model.Entity, error) {
	e, err := s.store.GetEntity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading entity %s: %w", id, err)
	}
	e.Normalize()
	return e, nil
}

// recomputeLocked derives e and persists the derived fields when the
// fingerprint moved. Caller holds the entity lock.
func (s *Service) recomputeLocked(ctx context.Context, e *model.Entity) (*View, error) {
	v, err := compute(e)
	if err != nil {
		return nil, err
	}
	if v.Fingerprint == e.Fingerprint &&
		e.Incapacitated == v.Derived.Incapacitated &&
		e.Data.Stats.Damage == v.Derived.Damage {
		return v, nil
	}

	data := e.Data.Clone()
	data.Stats.Damage = v.Derived.Damage
	inc := v.Derived.Incapacitated
	fp := v.Fingerprint
	patch := model.Patch{Data: &data, Incapacitated: &inc, Fingerprint: &fp}
	if err := s.store.UpdateEntity(ctx, e.ID, patch); err != nil {
		return nil, fmt.Errorf("persisting derived stats of %s: %w", e.ID, err)
	}
	patch.Apply(e)

	slog.Debug("derived stats persisted",
		"entity", e.ID,
		"damage", data.Stats.Damage.Value,
		"incapacitated", inc,
		"fingerprint", fp)
	return v, nil
}

// Recompute runs the full pipeline for id. Concurrent calls for the same
// entity share one run.
func (s *Service) Recompute(ctx context.Context, id string) (*View, error) {
	v, err, _ := s.flights.Do(id, func() (any, error) {
		var v *View
		err := s.withEntity(id, func() error {
			e, err := s.load(ctx, id)
			if err != nil {
				return err
			}
			v, err = s.recomputeLocked(ctx, e)
			return err
		})
		return v, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*View), nil
}

// GetEffectiveModel returns the effective model of id with the changes and
// warnings of its resolution pass.
func (s *Service) GetEffectiveModel(ctx context.Context, id string) (*View, error) {
	return s.Recompute(ctx, id)
}

// GetDerivedStats returns the final statistics of id.
func (s *Service) GetDerivedStats(ctx context.Context, id string) (stats.Derived, error) {
	v, err := s.Recompute(ctx, id)
	if err != nil {
		return stats.Derived{}, err
	}
	return v.Derived, nil
}
