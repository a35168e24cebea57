package model

// Tier is the progression tier of a character option.
type Tier string

const (
	TierNovice Tier = "novice"
	TierExpert Tier = "expert"
	TierMaster Tier = "master"
)

// BenefitStats are the stat grants of one benefit, folded into the option's
// main effect once the benefit is unlocked.
type BenefitStats struct {
	NaturalSet      int `json:"naturalSet,omitempty" yaml:"naturalSet,omitempty"`
	NaturalIncrease int `json:"naturalIncrease,omitempty" yaml:"naturalIncrease,omitempty"`
	ArmoredIncrease int `json:"armoredIncrease,omitempty" yaml:"armoredIncrease,omitempty"`
	HealthStarting  int `json:"healthStarting,omitempty" yaml:"healthStarting,omitempty"`
	HealthIncrease  int `json:"healthIncrease,omitempty" yaml:"healthIncrease,omitempty"`
	SizeNormal      int `json:"sizeNormal,omitempty" yaml:"sizeNormal,omitempty"`
	SpeedNormal     int `json:"speedNormal,omitempty" yaml:"speedNormal,omitempty"`
	SpeedIncrease   int `json:"speedIncrease,omitempty" yaml:"speedIncrease,omitempty"`
	BonusDamage     int `json:"bonusDamage,omitempty" yaml:"bonusDamage,omitempty"`
}

// Benefit is one level-gated grant of a character option.
type Benefit struct {
	Key      string `json:"key" yaml:"key"`
	LevelReq int    `json:"levelReq" yaml:"levelReq"`

	// Items are catalog references of the items granted.
	Items []string `json:"items,omitempty" yaml:"items,omitempty"`

	Senses      []Entry `json:"senses,omitempty" yaml:"senses,omitempty"`
	Languages   []Entry `json:"languages,omitempty" yaml:"languages,omitempty"`
	Immune      []Entry `json:"immune,omitempty" yaml:"immune,omitempty"`
	Traditions  []Entry `json:"traditions,omitempty" yaml:"traditions,omitempty"`
	Descriptors []Entry `json:"descriptors,omitempty" yaml:"descriptors,omitempty"`

	Stats BenefitStats `json:"stats" yaml:"stats"`
}

// Entries returns the benefit's entries for a detail list.
func (b *Benefit) Entries(name ListName) []Entry {
	switch name {
	case ListSenses:
		return b.Senses
	case ListLanguages:
		return b.Languages
	case ListImmune:
		return b.Immune
	case ListTraditions:
		return b.Traditions
	case ListDescriptors:
		return b.Descriptors
	}
	return nil
}

// InstantLabel names an instant effect.
type InstantLabel string

const (
	InstantDamage        InstantLabel = "damage"
	InstantHeal          InstantLabel = "heal"
	InstantHealthLose    InstantLabel = "healthLose"
	InstantHealthRecover InstantLabel = "healthRecover"
	InstantAffliction    InstantLabel = "affliction"
)

// InstantEffect is a one-shot action an item offers on a roll outcome
// (damage to deal, healing to apply). It is reported, not persisted.
type InstantEffect struct {
	Label      InstantLabel `json:"label" yaml:"label"`
	Value      string       `json:"value,omitempty" yaml:"value,omitempty"`
	Affliction string       `json:"affliction,omitempty" yaml:"affliction,omitempty"`
	Trigger    Trigger      `json:"trigger" yaml:"trigger"`
	Target     Target       `json:"target" yaml:"target"`
}

// Item is an embedded item of an actor.
type Item struct {
	ID   string   `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
	Type ItemType `json:"type" yaml:"type"`

	// Active nil means active.
	Active       *bool  `json:"active,omitempty" yaml:"active,omitempty"`
	EffectFactor int    `json:"effectFactor,omitempty" yaml:"effectFactor,omitempty"`
	Against      string `json:"against,omitempty" yaml:"against,omitempty"`
	Attribute    Attr   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Boons        int    `json:"boons,omitempty" yaml:"boons,omitempty"`

	Modifiers ModifierList    `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Instant   []InstantEffect `json:"instant,omitempty" yaml:"instant,omitempty"`

	// Character options only.
	Tier     Tier      `json:"tier,omitempty" yaml:"tier,omitempty"`
	Benefits []Benefit `json:"benefits,omitempty" yaml:"benefits,omitempty"`

	// GrantedBy is the id of the character option that created this item.
	GrantedBy   string `json:"grantedBy,omitempty" yaml:"grantedBy,omitempty"`
	CatalogRef  string `json:"catalogRef,omitempty" yaml:"catalogRef,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsActive reports whether the item's modifiers take part in resolution.
func (it *Item) IsActive() bool {
	return it.Active == nil || *it.Active
}

// Factor returns the item's effect factor, defaulting to 1.
func (it *Item) Factor() int {
	if it.EffectFactor == 0 {
		return 1
	}
	return it.EffectFactor
}

// IsCharOption reports whether the item grants benefits by level.
func (it *Item) IsCharOption() bool {
	return it.Type.IsCharOption()
}

// NeedsTargets reports whether rolling with the item requires targets.
func (it *Item) NeedsTargets() bool {
	if it.Against != "" {
		return true
	}
	for _, m := range it.Modifiers {
		if m.Target != "" && m.Target != TargetNone {
			return true
		}
	}
	for _, e := range it.Instant {
		if e.Target != "" && e.Target != TargetNone {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (it Item) Clone() Item {
	out := it
	if it.Active != nil {
		a := *it.Active
		out.Active = &a
	}
	out.Modifiers = it.Modifiers.Clone()
	out.Instant = append([]InstantEffect(nil), it.Instant...)
	out.Benefits = make([]Benefit, len(it.Benefits))
	for i, b := range it.Benefits {
		b.Items = append([]string(nil), b.Items...)
		out.Benefits[i] = b
	}
	if it.Benefits == nil {
		out.Benefits = nil
	}
	return out
}
