package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/wwsheet/internal/game/grant"
	"github.com/udisondev/wwsheet/internal/model"
)

// ErrInvalidLevel is returned by SetLevel for levels below zero.
var ErrInvalidLevel = errors.New("invalid level")

// SetLevel changes the level of id and reconciles every character option.
func (s *Service) SetLevel(ctx context.Context, id string, level int) (*View, error) {
	if level < 0 {
		return nil, fmt.Errorf("level %d: %w", level, ErrInvalidLevel)
	}
	var v *View
	err := s.withEntity(id, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if e.Data.Stats.Level != level {
			data := e.Data.Clone()
			data.Stats.Level = level
			patch := model.Patch{Data: &data}
			if err := s.store.UpdateEntity(ctx, id, patch); err != nil {
				return fmt.Errorf("setting level of %s: %w", id, err)
			}
			patch.Apply(e)
		}
		if err := s.syncAllGrants(ctx, e); err != nil {
			return err
		}
		v, err = s.recomputeLocked(ctx, e)
		return err
	})
	return v, err
}

// AddItem embeds item in id. Character options get their tier levels and
// grants applied.
func (s *Service) AddItem(ctx context.Context, id string, item model.Item) (*model.Item, error) {
	it := item.Clone()
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	grant.ApplyTier(&it)

	err := s.withEntity(id, func() error {
		if err := s.store.CreateEmbedded(ctx, id, model.Embedded{Kind: model.EmbeddedItem, Items: []model.Item{it}}); err != nil {
			return fmt.Errorf("adding item %s to %s: %w", it.Name, id, err)
		}
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if it.IsCharOption() {
			if err := s.syncGrants(ctx, e, &it); err != nil {
				return err
			}
		}
		_, err = s.recomputeLocked(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem replaces the embedded item with the same ID. The store has no
// in-place update, so the item is re-created and moves to the end of the
// item order.
func (s *Service) UpdateItem(ctx context.Context, id string, item model.Item) (*model.Item, error) {
	it := item.Clone()
	err := s.withEntity(id, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		old, ok := e.Item(it.ID)
		if !ok {
			return fmt.Errorf("item %s of %s: %w", it.ID, id, ErrNotFound)
		}
		grant.ApplyTier(&it)
		it.GrantedBy = old.GrantedBy
		it.CatalogRef = old.CatalogRef

		if err := s.store.DeleteEmbedded(ctx, id, model.EmbeddedItem, []string{it.ID}); err != nil {
			return fmt.Errorf("replacing item %s of %s: %w", it.ID, id, err)
		}
		if err := s.store.CreateEmbedded(ctx, id, model.Embedded{Kind: model.EmbeddedItem, Items: []model.Item{it}}); err != nil {
			return fmt.Errorf("replacing item %s of %s: %w", it.ID, id, err)
		}
		if e, err = s.load(ctx, id); err != nil {
			return err
		}
		if it.IsCharOption() {
			if err := s.syncGrants(ctx, e, &it); err != nil {
				return err
			}
		}
		_, err = s.recomputeLocked(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// DeleteItem removes an embedded item together with everything it granted.
func (s *Service) DeleteItem(ctx context.Context, id, itemID string) error {
	return s.withEntity(id, func() error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		it, ok := e.Item(itemID)
		if !ok {
			return fmt.Errorf("item %s of %s: %w", itemID, id, ErrNotFound)
		}
		if it.IsCharOption() {
			if err := s.applyPlan(ctx, e, grant.Revoke(e, itemID)); err != nil {
				return err
			}
		}
		if _, ok := e.Item(itemID); ok {
			if err := s.store.DeleteEmbedded(ctx, id, model.EmbeddedItem, []string{itemID}); err != nil {
				return fmt.Errorf("deleting item %s of %s: %w", itemID, id, err)
			}
			model.ApplyDelete(e, model.EmbeddedItem, []string{itemID})
		}
		_, err = s.recomputeLocked(ctx, e)
		return err
	})
}

func (s *Service) syncAllGrants(ctx context.Context, e *model.Entity) error {
	var options []model.Item
	for _, it := range e.Items {
		if it.IsCharOption() {
			options = append(options, it.Clone())
		}
	}
	for i := range options {
		if err := s.syncGrants(ctx, e, &options[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) syncGrants(ctx context.Context, e *model.Entity, source *model.Item) error {
	if s.catalog == nil {
		return nil
	}
	plan, err := grant.Reconcile(e, source, s.catalog)
	if err != nil {
		return fmt.Errorf("reconciling grants of %s on %s: %w", source.ID, e.ID, err)
	}
	return s.applyPlan(ctx, e, plan)
}

// applyPlan writes plan through the store and mirrors it on e.
func (s *Service) applyPlan(ctx context.Context, e *model.Entity, plan grant.Plan) error {
	if plan.Empty() {
		return nil
	}
	if len(plan.DeleteItemIDs) > 0 {
		if err := s.store.DeleteEmbedded(ctx, e.ID, model.EmbeddedItem, plan.DeleteItemIDs); err != nil {
			return fmt.Errorf("deleting granted items of %s: %w", plan.SourceID, err)
		}
	}
	if len(plan.DeleteModifierIDs) > 0 {
		if err := s.store.DeleteEmbedded(ctx, e.ID, model.EmbeddedModifier, plan.DeleteModifierIDs); err != nil {
			return fmt.Errorf("deleting main effect of %s: %w", plan.SourceID, err)
		}
	}
	if len(plan.CreateItems) > 0 {
		if err := s.store.CreateEmbedded(ctx, e.ID, model.Embedded{Kind: model.EmbeddedItem, Items: plan.CreateItems}); err != nil {
			return fmt.Errorf("creating granted items of %s: %w", plan.SourceID, err)
		}
	}
	if len(plan.CreateModifiers) > 0 {
		if err := s.store.CreateEmbedded(ctx, e.ID, model.Embedded{Kind: model.EmbeddedModifier, Modifiers: plan.CreateModifiers}); err != nil {
			return fmt.Errorf("creating main effect of %s: %w", plan.SourceID, err)
		}
	}
	if plan.Details != nil {
		data := e.Data.Clone()
		data.Details = plan.Details.Clone()
		if err := s.store.UpdateEntity(ctx, e.ID, model.Patch{Data: &data}); err != nil {
			return fmt.Errorf("updating granted entries of %s: %w", plan.SourceID, err)
		}
	}
	plan.Apply(e)

	slog.Info("grants reconciled",
		"entity", e.ID,
		"source", plan.SourceID,
		"items_created", len(plan.CreateItems),
		"items_deleted", len(plan.DeleteItemIDs),
		"modifiers_created", len(plan.CreateModifiers),
		"modifiers_deleted", len(plan.DeleteModifierIDs))
	return nil
}
