package sheet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/wwsheet/internal/game/stats"
	"github.com/udisondev/wwsheet/internal/model"
)

// HealthResult is a health application together with the recomputed view.
type HealthResult struct {
	Change stats.HealthChange `json:"change"`
	View   *View              `json:"view"`
}

// ApplyDamage deals amount damage to id. An incapacitated actor loses
// health instead.
func (s *Service) ApplyDamage(ctx context.Context, id string, amount int) (*HealthResult, error) {
	return s.applyHealth(ctx, id, stats.OpDamage, amount)
}

// ApplyHealing removes amount damage from id.
func (s *Service) ApplyHealing(ctx context.Context, id string, amount int) (*HealthResult, error) {
	return s.applyHealth(ctx, id, stats.OpHealing, amount)
}

// ApplyHealthLoss lowers the current health of id.
func (s *Service) ApplyHealthLoss(ctx context.Context, id string, amount int) (*HealthResult, error) {
	return s.applyHealth(ctx, id, stats.OpHealthLoss, amount)
}

// ApplyHealthRegain restores lost health of id.
func (s *Service) ApplyHealthRegain(ctx context.Context, id string, amount int) (*HealthResult, error) {
	return s.applyHealth(ctx, id, stats.OpHealthRegain, amount)
}

// ApplyInstant applies a reported instant effect with a resolved amount.
// Afflictions are informational and only recomputed.
func (s *Service) ApplyInstant(ctx context.Context, id string, label model.InstantLabel, amount int) (*HealthResult, error) {
	switch label {
	case model.InstantDamage:
		return s.ApplyDamage(ctx, id, amount)
	case model.InstantHeal:
		return s.ApplyHealing(ctx, id, amount)
	case model.InstantHealthLose:
		return s.ApplyHealthLoss(ctx, id, amount)
	case model.InstantHealthRecover:
		return s.ApplyHealthRegain(ctx, id, amount)
	}
	v, err := s.Recompute(ctx, id)
	if err != nil {
		return nil, err
	}
	return &HealthResult{View: v}, nil
}

func (s *Service) applyHealth(ctx context.Context, id string, op stats.HealthOp, amount int) (*HealthResult, error) {
	var out *HealthResult
	err := s.withEntity(id, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		before, err := compute(e)
		if err != nil {
			return err
		}
		d := before.Derived

		var ch stats.HealthChange
		switch op {
		case stats.OpDamage:
			ch, err = stats.ApplyDamage(&e.Data, d.Health.Current, d.Incapacitated, amount)
		case stats.OpHealing:
			ch, err = stats.ApplyHealing(&e.Data, amount)
		case stats.OpHealthLoss:
			ch, err = stats.ApplyHealthLoss(&e.Data, amount)
		case stats.OpHealthRegain:
			ch, err = stats.ApplyHealthRegain(&e.Data, d.Health.Lost, amount)
		default:
			err = fmt.Errorf("unknown health op %q", op)
		}
		if err != nil {
			return fmt.Errorf("%s on %s: %w", op, id, err)
		}

		// Effective current health moves with the base value.
		health := d.Health.Current + healthDelta(ch)
		e.Incapacitated = stats.Incapacitation(
			stats.Track{Damage: d.Damage.Value, Health: d.Health.Current},
			stats.Track{Damage: e.Data.Stats.Damage.Value, Health: health},
		)

		data := e.Data.Clone()
		inc := e.Incapacitated
		if err := s.store.UpdateEntity(ctx, id, model.Patch{Data: &data, Incapacitated: &inc}); err != nil {
			return fmt.Errorf("saving %s on %s: %w", op, id, err)
		}

		v, err := s.recomputeLocked(ctx, e)
		if err != nil {
			return err
		}
		slog.Info("health applied",
			"entity", id,
			"op", op,
			"amount", amount,
			"before", ch.Before,
			"after", ch.After,
			"overflow", ch.Overflow,
			"incapacitated", v.Derived.Incapacitated)
		out = &HealthResult{Change: ch, View: v}
		return nil
	})
	return out, err
}

// healthDelta is the change of current health made by ch.
func healthDelta(ch stats.HealthChange) int {
	switch ch.Op {
	case stats.OpHealthLoss, stats.OpHealthRegain:
		return ch.After - ch.Before
	}
	return 0
}
