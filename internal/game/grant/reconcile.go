// Package grant keeps the items, list entries and main effect granted by a
// character option in sync with the actor's level.
package grant

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/google/uuid"

	"github.com/udisondev/wwsheet/internal/model"
)

// Catalog resolves item references of benefits.
type Catalog interface {
	Lookup(ref string) (model.Item, error)
}

// Plan is the diff that brings an actor in line with a source's benefits.
type Plan struct {
	SourceID string `json:"sourceId"`

	CreateItems   []model.Item `json:"createItems,omitempty"`
	DeleteItemIDs []string     `json:"deleteItemIds,omitempty"`

	// Details is the full replacement of the detail lists, nil when unchanged.
	Details *model.Details `json:"details,omitempty"`

	CreateModifiers   []model.Modifier `json:"createModifiers,omitempty"`
	DeleteModifierIDs []string         `json:"deleteModifierIds,omitempty"`
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.CreateItems) == 0 &&
		len(p.DeleteItemIDs) == 0 &&
		p.Details == nil &&
		len(p.CreateModifiers) == 0 &&
		len(p.DeleteModifierIDs) == 0
}

// Apply executes the plan on an in-memory entity.
func (p Plan) Apply(e *model.Entity) {
	model.ApplyDelete(e, model.EmbeddedItem, p.DeleteItemIDs)
	model.ApplyDelete(e, model.EmbeddedModifier, p.DeleteModifierIDs)
	model.Embedded{Kind: model.EmbeddedItem, Items: p.CreateItems}.ApplyCreate(e, uuid.NewString)
	model.Embedded{Kind: model.EmbeddedModifier, Modifiers: p.CreateModifiers}.ApplyCreate(e, uuid.NewString)
	if p.Details != nil {
		e.Data.Details = p.Details.Clone()
	}
}

// Reconcile diffs the actor against the benefits of source unlocked at the
// actor's level. Running it again after applying the plan yields an empty plan.
func Reconcile(actor *model.Entity, source *model.Item, cat Catalog) (Plan, error) {
	plan := Plan{SourceID: source.ID}
	if !source.IsCharOption() {
		return plan, nil
	}
	level := actor.Data.Stats.Level

	unlocked := make([]*model.Benefit, 0, len(source.Benefits))
	for i := range source.Benefits {
		if level >= source.Benefits[i].LevelReq {
			unlocked = append(unlocked, &source.Benefits[i])
		}
	}

	if err := reconcileItems(&plan, actor, source, unlocked, cat); err != nil {
		return Plan{}, err
	}
	reconcileEntries(&plan, actor, source.ID, unlocked)
	if source.Type != model.ItemProfession {
		reconcileMainEffect(&plan, actor, MainEffect(source, level), source.ID)
	}
	return plan, nil
}

// Revoke removes everything source granted.
func Revoke(actor *model.Entity, sourceID string) Plan {
	plan := Plan{SourceID: sourceID}
	for _, it := range actor.Items {
		if it.GrantedBy == sourceID {
			plan.DeleteItemIDs = append(plan.DeleteItemIDs, it.ID)
		}
	}
	reconcileEntries(&plan, actor, sourceID, nil)
	reconcileMainEffect(&plan, actor, nil, sourceID)
	return plan
}

func reconcileItems(plan *Plan, actor *model.Entity, source *model.Item, unlocked []*model.Benefit, cat Catalog) error {
	type want struct {
		ref  string
		item model.Item
	}
	var desired []want
	names := make(map[string]bool)
	for _, b := range unlocked {
		for _, ref := range b.Items {
			it, err := cat.Lookup(ref)
			if err != nil {
				return fmt.Errorf("lookup granted item %s of %s: %w", ref, source.ID, err)
			}
			if names[it.Name] {
				continue
			}
			names[it.Name] = true
			desired = append(desired, want{ref: ref, item: it})
		}
	}

	have := make(map[string]bool)
	for _, it := range actor.Items {
		if it.GrantedBy != source.ID {
			continue
		}
		if names[it.Name] && !have[it.Name] {
			have[it.Name] = true
			continue
		}
		plan.DeleteItemIDs = append(plan.DeleteItemIDs, it.ID)
	}

	for _, w := range desired {
		if have[w.item.Name] {
			continue
		}
		it := w.item.Clone()
		it.ID = uuid.NewString()
		it.GrantedBy = source.ID
		it.CatalogRef = w.ref
		plan.CreateItems = append(plan.CreateItems, it)
	}
	return nil
}

// reconcileEntries keeps manual entries and other sources' entries in place,
// drops entries of sourceID that are no longer granted and appends the
// missing ones.
func reconcileEntries(plan *Plan, actor *model.Entity, sourceID string, unlocked []*model.Benefit) {
	next := actor.Data.Details.Clone()
	changed := false

	for _, name := range model.DetailLists {
		var desired []model.Entry
		for _, b := range unlocked {
			for _, e := range b.Entries(name) {
				if slices.ContainsFunc(desired, func(x model.Entry) bool { return x.Name == e.Name }) {
					continue
				}
				e.GrantedBy = sourceID
				desired = append(desired, e)
			}
		}

		cur := *actor.Data.Details.List(name)
		out := make([]model.Entry, 0, len(cur)+len(desired))
		present := make(map[string]bool)
		for _, e := range cur {
			if e.GrantedBy != sourceID {
				out = append(out, e)
				continue
			}
			if present[e.Name] || !slices.ContainsFunc(desired, func(x model.Entry) bool { return x.Name == e.Name }) {
				continue
			}
			present[e.Name] = true
			out = append(out, e)
		}
		for _, e := range desired {
			if !present[e.Name] {
				out = append(out, e)
			}
		}

		if !slices.Equal(out, cur) {
			*next.List(name) = out
			changed = true
		}
	}

	if changed {
		plan.Details = &next
	}
}

func reconcileMainEffect(plan *Plan, actor *model.Entity, desired []model.Modifier, sourceID string) {
	effectID := MainEffectID(sourceID)
	var current []model.Modifier
	for _, m := range actor.Modifiers {
		if m.EffectID == effectID {
			current = append(current, m)
		}
	}
	if sameModifiers(current, desired) {
		return
	}
	for _, m := range current {
		plan.DeleteModifierIDs = append(plan.DeleteModifierIDs, m.ID)
	}
	plan.CreateModifiers = append(plan.CreateModifiers, desired...)
}

func sameModifiers(a, b []model.Modifier) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
