package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/wwsheet/internal/chat"
	"github.com/udisondev/wwsheet/internal/game/roll"
	"github.com/udisondev/wwsheet/internal/model"
)

// RollInput describes a roll to prepare.
type RollInput struct {
	ActorID     string     `json:"actorId"`
	Attribute   model.Attr `json:"attribute"`
	ItemID      string     `json:"itemId,omitempty"`
	TargetIDs   []string   `json:"targetIds,omitempty"`
	Situational int        `json:"situational"`
}

// PrepareRoll snapshots the actor and its targets and opens a draft roll.
func (s *Service) PrepareRoll(ctx context.Context, in RollInput) (*roll.Session, error) {
	actor, err := s.Recompute(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	var item *model.Item
	if in.ItemID != "" {
		e, err := s.load(ctx, in.ActorID)
		if err != nil {
			return nil, err
		}
		it, ok := e.Item(in.ItemID)
		if !ok {
			return nil, fmt.Errorf("item %s of %s: %w", in.ItemID, in.ActorID, ErrNotFound)
		}
		c := it.Clone()
		item = &c
	}

	self := roll.Snapshot(actor.EntityID, actor.Name, actor.Effective, actor.Derived)
	req := roll.NewRequest(self, actor.Effective, actor.Derived, in.Attribute, item, in.Situational)

	for _, id := range in.TargetIDs {
		v, err := s.Recompute(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("snapshot target: %w", err)
		}
		req.Targets = append(req.Targets, roll.Snapshot(v.EntityID, v.Name, v.Effective, v.Derived))
	}

	sess := roll.NewSession(req)
	s.sessMu.Lock()
	s.sessions[sess.ID] = sess
	s.sessMu.Unlock()
	return sess, nil
}

// CancelRoll abandons a draft roll. Nothing is persisted.
func (s *Service) CancelRoll(ctx context.Context, rollID string) error {
	sess, err := s.session(rollID)
	if err != nil {
		return err
	}
	if err := sess.Cancel(ctx); err != nil {
		return err
	}
	s.forget(rollID)
	return nil
}

// SubmitRoll resolves a prepared roll. Materializations on the actor are
// written before returning; those on other entities and the outcome message
// are dispatched asynchronously.
func (s *Service) SubmitRoll(ctx context.Context, rollID string) (*roll.Resolution, error) {
	sess, err := s.session(rollID)
	if err != nil {
		return nil, err
	}
	res, err := sess.Submit(ctx, s.resolver)
	if err != nil {
		if !errors.Is(err, roll.ErrRollState) {
			s.forget(rollID)
		}
		return nil, err
	}
	defer s.forget(rollID)

	// The roll is committed; its effects run to completion.
	ctx = context.WithoutCancel(ctx)
	req := sess.Request

	for _, m := range res.Materializations {
		if m.EntityID == req.ActorID {
			if err := s.addModifiers(ctx, m.EntityID, m.Modifiers); err != nil {
				return res, fmt.Errorf("materializing on actor %s: %w", m.EntityID, err)
			}
			continue
		}
		s.dispatch(ctx, "materialize "+m.EntityID, func(ctx context.Context) error {
			return s.addModifiers(ctx, m.EntityID, m.Modifiers)
		})
	}
	if err := sess.MarkMaterialized(ctx); err != nil {
		return res, err
	}

	s.postOutcome(ctx, req, res)
	return res, nil
}

// Roll prepares and submits in one step.
func (s *Service) Roll(ctx context.Context, in RollInput) (*roll.Resolution, error) {
	sess, err := s.PrepareRoll(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.SubmitRoll(ctx, sess.ID)
}

func (s *Service) postOutcome(ctx context.Context, req roll.Request, res *roll.Resolution) {
	if s.msgs == nil {
		return
	}
	out := chat.Outcome{Actor: req.ActorName, Resolution: res}
	if req.Item != nil {
		out.Item = req.Item.Name
	}
	s.dispatch(ctx, "outcome message "+req.ActorID, func(ctx context.Context) error {
		html, err := chat.RenderOutcome(out)
		if err != nil {
			return err
		}
		return s.msgs.PostOutcomeMessage(ctx, req.ActorID, html)
	})
}

func (s *Service) session(id string) (*roll.Session, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("roll %s: %w", id, ErrNotFound)
	}
	return sess, nil
}

func (s *Service) forget(id string) {
	s.sessMu.Lock()
	delete(s.sessions, id)
	s.sessMu.Unlock()
}

// addModifiers stores mods on id under its lock and recomputes it.
func (s *Service) addModifiers(ctx context.Context, id string, mods []model.Modifier) error {
	if len(mods) == 0 {
		return nil
	}
	return s.withEntity(id, func() error {
		if err := s.store.CreateEmbedded(ctx, id, model.Embedded{Kind: model.EmbeddedModifier, Modifiers: mods}); err != nil {
			return fmt.Errorf("adding %d modifiers to %s: %w", len(mods), id, err)
		}
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.recomputeLocked(ctx, e); err != nil {
			return err
		}
		slog.Debug("modifiers materialized", "entity", id, "count", len(mods))
		return nil
	})
}
