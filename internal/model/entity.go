package model

import (
	"errors"
	"slices"
)

var (
	// ErrNotFound is returned by stores when an entity or embedded record is missing.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the caller does not own the entity.
	ErrPermissionDenied = errors.New("permission denied")
)

// Entity is an actor with its hosted modifiers and embedded items.
type Entity struct {
	ID     string    `json:"id" yaml:"id"`
	Name   string    `json:"name" yaml:"name"`
	Kind   ActorKind `json:"kind" yaml:"kind"`
	Owners []string  `json:"owners,omitempty" yaml:"owners,omitempty"`

	Data      ActorData    `json:"data" yaml:"data"`
	Modifiers ModifierList `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Items     []Item       `json:"items,omitempty" yaml:"items,omitempty"`

	Incapacitated bool   `json:"incapacitated" yaml:"incapacitated"`
	Fingerprint   string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// NewEntity returns an entity of kind populated with schema defaults.
func NewEntity(id, name string, kind ActorKind) *Entity {
	e := &Entity{ID: id, Name: name, Kind: kind, Data: NewActorData(kind)}
	e.Normalize()
	return e
}

// Normalize fills derived persisted fields that older records may lack.
// NPC records store only the defense total; natural defense mirrors it.
func (e *Entity) Normalize() {
	if e.Kind == KindNPC {
		e.Data.Stats.Defense.Natural = e.Data.Stats.Defense.Total
	}
	for _, name := range DetailLists {
		l := e.Data.Details.List(name)
		if *l == nil {
			*l = []Entry{}
		}
	}
}

// OwnedBy reports whether user may mutate the entity. An entity without
// owners is shared.
func (e *Entity) OwnedBy(user string) bool {
	return len(e.Owners) == 0 || slices.Contains(e.Owners, user)
}

// Item returns the embedded item with id.
func (e *Entity) Item(id string) (*Item, bool) {
	for i := range e.Items {
		if e.Items[i].ID == id {
			return &e.Items[i], true
		}
	}
	return nil, false
}

// ApplicableModifiers returns every modifier relevant to resolution in
// store order: the entity's own modifiers, then each item's modifiers in item
// order. Item modifiers carry the item's factor, are suppressed while the item
// is inactive and record the item as their origin.
func (e *Entity) ApplicableModifiers() []Modifier {
	out := make([]Modifier, 0, len(e.Modifiers))
	out = append(out, e.Modifiers...)
	for i := range e.Items {
		it := &e.Items[i]
		for _, m := range it.Modifiers {
			m.Factor = it.Factor()
			m.Suppressed = m.Suppressed || !it.IsActive()
			m.Provenance.OriginID = it.ID
			m.Provenance.Transferred = true
			out = append(out, m)
		}
	}
	return out
}

// Clone returns a deep copy.
func (e *Entity) Clone() *Entity {
	out := *e
	out.Owners = slices.Clone(e.Owners)
	out.Data = e.Data.Clone()
	out.Modifiers = e.Modifiers.Clone()
	if e.Items != nil {
		out.Items = make([]Item, len(e.Items))
		for i, it := range e.Items {
			out.Items[i] = it.Clone()
		}
	}
	return &out
}
