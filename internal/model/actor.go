package model

import "slices"

// Attribute is a single attribute score (0..20, default 10).
type Attribute struct {
	Value int `json:"value" yaml:"value"`
}

// AttributeSet holds the four rolled attributes.
type AttributeSet struct {
	Str Attribute `json:"str" yaml:"str"`
	Agi Attribute `json:"agi" yaml:"agi"`
	Int Attribute `json:"int" yaml:"int"`
	Wil Attribute `json:"wil" yaml:"wil"`
}

// Get returns a pointer to the attribute for a, or nil for luck and unknown keys.
func (s *AttributeSet) Get(a Attr) *Attribute {
	switch a {
	case AttrStr:
		return &s.Str
	case AttrAgi:
		return &s.Agi
	case AttrInt:
		return &s.Int
	case AttrWil:
		return &s.Wil
	}
	return nil
}

// Defense is the persisted defense block. NPC records persist only Total;
// Normalize copies it into Natural so both kinds derive the same way.
type Defense struct {
	Total   int    `json:"total" yaml:"total"`
	Natural int    `json:"natural" yaml:"natural"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Health is the persisted health block.
type Health struct {
	Current  int `json:"current" yaml:"current"`
	Normal   int `json:"normal" yaml:"normal"`
	Starting int `json:"starting,omitempty" yaml:"starting,omitempty"`
	Novice   int `json:"novice,omitempty" yaml:"novice,omitempty"`
	Expert   int `json:"expert,omitempty" yaml:"expert,omitempty"`
	Master   int `json:"master,omitempty" yaml:"master,omitempty"`
	Lost     int `json:"lost" yaml:"lost"`
	Bonus    int `json:"bonus" yaml:"bonus"`
}

// Damage is the damage track. Max mirrors current health for token bars.
type Damage struct {
	Value int `json:"value" yaml:"value"`
	Max   int `json:"max" yaml:"max"`
}

// Speed is the movement block.
type Speed struct {
	Normal  int    `json:"normal" yaml:"normal"`
	Current int    `json:"current" yaml:"current"`
	Special string `json:"special,omitempty" yaml:"special,omitempty"`
}

// Stats groups the combat statistics.
type Stats struct {
	Defense     Defense `json:"defense" yaml:"defense"`
	Health      Health  `json:"health" yaml:"health"`
	Damage      Damage  `json:"damage" yaml:"damage"`
	Size        int     `json:"size" yaml:"size"`
	Level       int     `json:"level" yaml:"level"`
	Speed       Speed   `json:"speed" yaml:"speed"`
	BonusDamage int     `json:"bonusdamage,omitempty" yaml:"bonusdamage,omitempty"`
	Solitary    bool    `json:"solitary,omitempty" yaml:"solitary,omitempty"`
}

// Entry is a list record (sense, language, immunity, tradition, descriptor).
// GrantedBy carries the id of the character option that created it, empty
// for entries added by hand.
type Entry struct {
	Name      string `json:"name" yaml:"name"`
	Desc      string `json:"desc,omitempty" yaml:"desc,omitempty"`
	GrantedBy string `json:"grantedBy,omitempty" yaml:"grantedBy,omitempty"`
}

// ListName names one of the detail lists.
type ListName string

const (
	ListSenses      ListName = "senses"
	ListLanguages   ListName = "languages"
	ListImmune      ListName = "immune"
	ListTraditions  ListName = "traditions"
	ListDescriptors ListName = "descriptors"
)

// DetailLists enumerates the detail lists in a stable order.
var DetailLists = []ListName{ListDescriptors, ListSenses, ListLanguages, ListImmune, ListTraditions}

// Details holds descriptive data and the granted lists.
type Details struct {
	Type        string  `json:"type,omitempty" yaml:"type,omitempty"`
	Senses      []Entry `json:"senses" yaml:"senses"`
	Languages   []Entry `json:"languages" yaml:"languages"`
	Immune      []Entry `json:"immune" yaml:"immune"`
	Traditions  []Entry `json:"traditions" yaml:"traditions"`
	Descriptors []Entry `json:"descriptors" yaml:"descriptors"`
	Ancestry    string  `json:"ancestry,omitempty" yaml:"ancestry,omitempty"`
	Novice      string  `json:"novice,omitempty" yaml:"novice,omitempty"`
	Expert      string  `json:"expert,omitempty" yaml:"expert,omitempty"`
	Master      string  `json:"master,omitempty" yaml:"master,omitempty"`
	Reputation  int     `json:"reputation,omitempty" yaml:"reputation,omitempty"`
}

// List returns a pointer to the named list, or nil for unknown names.
func (d *Details) List(name ListName) *[]Entry {
	switch name {
	case ListSenses:
		return &d.Senses
	case ListLanguages:
		return &d.Languages
	case ListImmune:
		return &d.Immune
	case ListTraditions:
		return &d.Traditions
	case ListDescriptors:
		return &d.Descriptors
	}
	return nil
}

// Clone deep-copies the lists.
func (d Details) Clone() Details {
	out := d
	for _, name := range DetailLists {
		src := d.List(name)
		*out.List(name) = slices.Clone(*src)
	}
	return out
}

// ActorData is the typed base model of an actor.
type ActorData struct {
	Attributes AttributeSet `json:"attributes" yaml:"attributes"`
	Stats      Stats        `json:"stats" yaml:"stats"`
	Details    Details      `json:"details" yaml:"details"`
}

// NewActorData returns the schema defaults for kind.
func NewActorData(kind ActorKind) ActorData {
	d := ActorData{
		Attributes: AttributeSet{
			Str: Attribute{Value: 10},
			Agi: Attribute{Value: 10},
			Int: Attribute{Value: 10},
			Wil: Attribute{Value: 10},
		},
		Stats: Stats{
			Size:  1,
			Level: 1,
			Speed: Speed{Normal: 5},
		},
	}

	switch kind {
	case KindCharacter:
		d.Stats.Defense.Natural = 10
		d.Stats.Health.Starting = 10
		d.Details.Ancestry = "Human"
	case KindNPC:
		d.Stats.Defense.Total = 10
		d.Stats.Defense.Natural = 10
		d.Stats.Health.Normal = 10
	}
	return d
}

// Clone returns a deep copy safe to mutate.
func (d ActorData) Clone() ActorData {
	out := d
	out.Details = d.Details.Clone()
	return out
}
