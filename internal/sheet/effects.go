package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/wwsheet/internal/model"
)

// ExpireEffects deletes the temporary modifiers of id that lapsed at now.
// Only an owner may expire effects.
func (s *Service) ExpireEffects(ctx context.Context, id, user string, now time.Time) ([]string, error) {
	var expired []string
	err := s.withEntity(id, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if !e.OwnedBy(user) {
			return fmt.Errorf("expire effects of %s by %q: %w", id, user, ErrPermissionDenied)
		}
		expired = e.Modifiers.Expired(now)
		if len(expired) == 0 {
			return nil
		}
		if err := s.store.DeleteEmbedded(ctx, id, model.EmbeddedModifier, expired); err != nil {
			return fmt.Errorf("expiring effects of %s: %w", id, err)
		}
		model.ApplyDelete(e, model.EmbeddedModifier, expired)
		_, err = s.recomputeLocked(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(expired) > 0 {
		slog.Info("effects expired", "entity", id, "count", len(expired))
	}
	return expired, nil
}

// ApplyEffect copies a bundle of modifiers from originID onto targetID as
// passive modifiers. The copies are external when origin and target differ.
func (s *Service) ApplyEffect(ctx context.Context, originID, targetID string, mods []model.Modifier) ([]model.Modifier, error) {
	effectID := uuid.NewString()
	out := make([]model.Modifier, 0, len(mods))
	for _, m := range mods {
		c := m
		c.ID = uuid.NewString()
		if c.EffectID == "" {
			c.EffectID = effectID
		}
		c.Trigger = model.TriggerPassive
		c.Suppressed = false
		if m.Priority != nil {
			c.Priority = model.Prio(*m.Priority)
		}
		if m.Duration != nil {
			d := *m.Duration
			c.Duration = &d
		}
		c.Provenance = model.Provenance{
			OriginID:    originID,
			Transferred: true,
			External:    originID != targetID,
		}
		out = append(out, c)
	}
	if err := s.addModifiers(ctx, targetID, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveEffect deletes every modifier of id that belongs to effectID.
func (s *Service) RemoveEffect(ctx context.Context, id, effectID string) (int, error) {
	var n int
	err := s.withEntity(id, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		var ids []string
		for _, m := range e.Modifiers {
			if m.EffectID == effectID {
				ids = append(ids, m.ID)
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("effect %s on %s: %w", effectID, id, ErrNotFound)
		}
		if err := s.store.DeleteEmbedded(ctx, id, model.EmbeddedModifier, ids); err != nil {
			return fmt.Errorf("removing effect %s from %s: %w", effectID, id, err)
		}
		model.ApplyDelete(e, model.EmbeddedModifier, ids)
		n = len(ids)
		_, err = s.recomputeLocked(ctx, e)
		return err
	})
	return n, err
}
