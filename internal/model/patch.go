package model

// Patch is a partial update of an entity. Nil fields are left untouched.
type Patch struct {
	Name          *string    `json:"name,omitempty"`
	Data          *ActorData `json:"data,omitempty"`
	Incapacitated *bool      `json:"incapacitated,omitempty"`
	Fingerprint   *string    `json:"fingerprint,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Data == nil && p.Incapacitated == nil && p.Fingerprint == nil
}

// Apply writes the patch onto e.
func (p Patch) Apply(e *Entity) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Data != nil {
		e.Data = p.Data.Clone()
	}
	if p.Incapacitated != nil {
		e.Incapacitated = *p.Incapacitated
	}
	if p.Fingerprint != nil {
		e.Fingerprint = *p.Fingerprint
	}
}

// EmbeddedKind names a collection of records embedded in an entity.
type EmbeddedKind string

const (
	EmbeddedItem     EmbeddedKind = "Item"
	EmbeddedModifier EmbeddedKind = "Modifier"
)

// Embedded is a batch of records of one kind for createEmbedded.
// Only the slice matching Kind is read.
type Embedded struct {
	Kind      EmbeddedKind
	Items     []Item
	Modifiers []Modifier
}

// Len returns the number of records in the batch.
func (b Embedded) Len() int {
	if b.Kind == EmbeddedItem {
		return len(b.Items)
	}
	return len(b.Modifiers)
}

// ApplyCreate appends the batch to e, assigning IDs where missing.
func (b Embedded) ApplyCreate(e *Entity, newID func() string) {
	switch b.Kind {
	case EmbeddedItem:
		for _, it := range b.Items {
			if it.ID == "" {
				it.ID = newID()
			}
			e.Items = append(e.Items, it.Clone())
		}
	case EmbeddedModifier:
		for _, m := range b.Modifiers {
			if m.ID == "" {
				m.ID = newID()
			}
			e.Modifiers.Add(m)
		}
	}
}

// ApplyDelete removes the records with the given IDs from e. Missing IDs
// are reported back.
func ApplyDelete(e *Entity, kind EmbeddedKind, ids []string) (missing []string) {
	for _, id := range ids {
		switch kind {
		case EmbeddedItem:
			idx := -1
			for i := range e.Items {
				if e.Items[i].ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				missing = append(missing, id)
				continue
			}
			e.Items = append(e.Items[:idx], e.Items[idx+1:]...)
		case EmbeddedModifier:
			if e.Modifiers.Remove(id) == 0 {
				missing = append(missing, id)
			}
		}
	}
	return missing
}
