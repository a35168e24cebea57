// Package effect folds passive modifiers into a working copy of an actor's
// base model.
package effect

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/wwsheet/internal/model"
)

// Input is a single resolution request.
type Input struct {
	EntityID  string
	Kind      model.ActorKind
	Base      model.ActorData
	Modifiers []model.Modifier
}

// Change is the last value written to a field path during a pass.
type Change struct {
	Path  string      `json:"path"`
	Key   string      `json:"key"`
	Value model.Value `json:"value"`
}

// Result is the outcome of a resolution pass.
type Result struct {
	Effective *model.Effective
	Changes   []Change
	Warnings  []Warning
}

// Resolve applies every passive, unsuppressed modifier to a fresh copy of
// in.Base. Per-modifier failures are returned as warnings and never abort
// the pass. The only error is an unknown actor kind.
func Resolve(in Input) (Result, error) {
	schema := model.SchemaFor(in.Kind)
	if schema == nil {
		return Result{}, fmt.Errorf("resolve %s: %w %q", in.EntityID, ErrUnknownKind, in.Kind)
	}

	res := Result{Effective: model.NewEffective(in.Kind, in.Base)}
	changed := make(map[string]int)

	for _, m := range Order(in.Modifiers) {
		ch, ok, err := applyOne(schema, res.Effective, m)
		if err != nil {
			w := Warning{ModifierID: m.ID, Key: m.Key, Mode: m.Mode, Err: err}
			res.Warnings = append(res.Warnings, w)
			slog.Warn("modifier skipped",
				"entity", in.EntityID,
				"modifier", m.ID,
				"key", m.Key,
				"err", err)
			continue
		}
		if !ok {
			continue
		}
		if i, seen := changed[ch.Path]; seen {
			res.Changes[i] = ch
			continue
		}
		changed[ch.Path] = len(res.Changes)
		res.Changes = append(res.Changes, ch)
	}
	return res, nil
}

// Order selects passive, unsuppressed modifiers and sorts them by priority.
// Prioritized modifiers come first in ascending order, the rest keep their
// arrival order after them.
func Order(mods []model.Modifier) []model.Modifier {
	out := make([]model.Modifier, 0, len(mods))
	for _, m := range mods {
		if m.Trigger.IsPassive() && !m.Suppressed {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Modifier) int {
		switch {
		case a.Priority == nil && b.Priority == nil:
			return 0
		case a.Priority == nil:
			return 1
		case b.Priority == nil:
			return -1
		}
		return cmp.Compare(*a.Priority, *b.Priority)
	})
	return out
}

func applyOne(schema *model.Schema, eff *model.Effective, m model.Modifier) (ch Change, applied bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			applied = false
			err = fmt.Errorf("apply %s: panic: %v", m.Key, r)
		}
	}()

	f, ok := schema.Field(m.Key)
	if !ok {
		return Change{}, false, fmt.Errorf("%w: %s", ErrUnknownField, m.Key)
	}
	apply, ok := handlerFor(m.Mode)
	if !ok {
		return Change{}, false, fmt.Errorf("%w: %s", ErrUnsupportedMode, m.Mode)
	}

	cur, ok := f.Get(eff)
	if !ok {
		cur = f.Default
	}

	delta, err := castValue(m.Value, f.Kind)
	if err != nil {
		return Change{}, false, err
	}
	if f.Kind.Numeric() {
		factor := m.SourceFactor()
		if f.Reduce {
			factor = -factor
		}
		if delta.Int, err = mulInt(delta.Int, factor); err != nil {
			return Change{}, false, err
		}
	}

	next, applied, err := apply(f, cur, delta)
	if err != nil || !applied {
		return Change{}, false, err
	}
	if f.Kind == model.FieldNonNegInt && next.Int < 0 {
		next.Int = 0
	}
	next.Kind = f.Kind

	f.Set(eff, next)
	return Change{Path: f.Path, Key: f.Key, Value: next}, true, nil
}
