package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ModifierList is the ordered modifier store of an entity. Slice order is
// insertion order; resolution relies on it for tie-breaking.
type ModifierList []Modifier

// Add appends m, assigning a fresh ID when empty, and returns the stored copy.
func (l *ModifierList) Add(m Modifier) Modifier {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Trigger == "" {
		m.Trigger = TriggerPassive
	}
	*l = append(*l, m)
	return m
}

// Get returns the modifier with id.
func (l ModifierList) Get(id string) (Modifier, bool) {
	for _, m := range l {
		if m.ID == id {
			return m, true
		}
	}
	return Modifier{}, false
}

// Remove deletes the modifiers whose IDs are listed. Returns how many were removed.
func (l *ModifierList) Remove(ids ...string) int {
	before := len(*l)
	*l = slices.DeleteFunc(*l, func(m Modifier) bool {
		return slices.Contains(ids, m.ID)
	})
	return before - len(*l)
}

// RemoveByOrigin deletes every modifier that originated from originID.
func (l *ModifierList) RemoveByOrigin(originID string) int {
	before := len(*l)
	*l = slices.DeleteFunc(*l, func(m Modifier) bool {
		return m.Provenance.OriginID == originID
	})
	return before - len(*l)
}

// Passive returns the modifiers eligible for the passive pass, in order.
func (l ModifierList) Passive() []Modifier {
	out := make([]Modifier, 0, len(l))
	for _, m := range l {
		if m.Trigger.IsPassive() && !m.Suppressed {
			out = append(out, m)
		}
	}
	return out
}

// Bundles partitions conditional modifiers by trigger, keeping order.
func (l ModifierList) Bundles() map[Trigger][]Modifier {
	out := make(map[Trigger][]Modifier)
	for _, m := range l {
		if m.Trigger.IsPassive() {
			continue
		}
		out[m.Trigger] = append(out[m.Trigger], m)
	}
	return out
}

// Expired returns the IDs of temporary modifiers that lapsed at now.
func (l ModifierList) Expired(now time.Time) []string {
	var ids []string
	for _, m := range l {
		if m.Expired(now) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Clone returns an independent copy.
func (l ModifierList) Clone() ModifierList {
	out := make(ModifierList, len(l))
	for i, m := range l {
		if m.Priority != nil {
			m.Priority = Prio(*m.Priority)
		}
		if m.Duration != nil {
			d := *m.Duration
			m.Duration = &d
		}
		out[i] = m
	}
	return out
}
