package roll

import (
	"errors"

	"github.com/udisondev/wwsheet/internal/game/stats"
	"github.com/udisondev/wwsheet/internal/model"
)

var (
	// ErrMissingTarget marks a roll that needed targets but had none. It is
	// recovered by rolling against the acting entity.
	ErrMissingTarget = errors.New("missing target")

	// ErrRollCancelled is returned when a cancelled roll is submitted.
	ErrRollCancelled = errors.New("roll cancelled")

	// ErrRollState is returned for lifecycle transitions that are not allowed.
	ErrRollState = errors.New("invalid roll state")

	// ErrInvalidRequest is returned for unknown attributes or against keys.
	ErrInvalidRequest = errors.New("invalid roll request")
)

// Target is a read-only snapshot of a roll target taken at roll time.
type Target struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Attributes   map[model.Attr]int `json:"attributes"`
	Defense      int                `json:"defense"`
	BoonsAgainst map[string]int     `json:"boonsAgainst"`
}

// Threshold returns the target number for an against key.
func (t Target) Threshold(against string) int {
	if against == model.AgainstDefense {
		return t.Defense
	}
	return t.Attributes[model.Attr(against)]
}

// Snapshot captures an actor as a roll target.
func Snapshot(id, name string, eff *model.Effective, d stats.Derived) Target {
	attrs := make(map[model.Attr]int, len(model.Attributes))
	for _, a := range model.Attributes {
		attrs[a] = eff.Data.Attributes.Get(a).Value
	}
	return Target{
		ID:           id,
		Name:         name,
		Attributes:   attrs,
		Defense:      d.Defense,
		BoonsAgainst: eff.Pass.Against.Map(),
	}
}

// Request is a submitted roll.
type Request struct {
	ActorID   string     `json:"actorId"`
	ActorName string     `json:"actorName"`
	Attribute model.Attr `json:"attribute"`

	AttributeModifier int  `json:"attributeModifier"`
	Situational       int  `json:"situational"`
	EffectGlobal      int  `json:"effectGlobal"`
	AutoFail          bool `json:"autoFail"`

	Item    *model.Item `json:"item,omitempty"`
	Targets []Target    `json:"targets"`
	Self    Target      `json:"self"`
}

// Against returns the threshold source of the acting item, empty for a
// shared roll.
func (r Request) Against() string {
	if r.Item == nil {
		return ""
	}
	return r.Item.Against
}

// FixedBoons returns the boons fixed on the acting item.
func (r Request) FixedBoons() int {
	if r.Item == nil {
		return 0
	}
	return r.Item.Boons
}

func (r Request) needsTargets() bool {
	return r.Item != nil && r.Item.NeedsTargets()
}

// NewRequest builds a request for actor rolling attr, optionally with item.
// Attacks against defense also count the actor's global attack boons.
func NewRequest(actor Target, eff *model.Effective, d stats.Derived, attr model.Attr, item *model.Item, situational int) Request {
	req := Request{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		Attribute:   attr,
		Situational: situational,
		Item:        item,
		Self:        actor,
	}
	if attr != model.AttrLuck {
		req.AttributeModifier = d.AttributeMods[attr]
	}
	if p := eff.Pass.Boons.Get(attr); p != nil {
		req.EffectGlobal = p.Global
	}
	if item != nil && item.Against == model.AgainstDefense {
		req.EffectGlobal += eff.Pass.AttackBoons.Global
	}
	if f := eff.Pass.AutoFail.Get(attr); f != nil {
		req.AutoFail = *f
	}
	return req
}
