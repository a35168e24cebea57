// Package stats derives the read-only combat statistics of an actor from its
// effective model.
package stats

import "github.com/udisondev/wwsheet/internal/model"

// Health is the derived health block.
type Health struct {
	Normal  int `json:"normal"`
	Current int `json:"current"`
	Lost    int `json:"lost"`
	Temp    int `json:"temp"`
}

// Derived is the final statistics of an actor.
type Derived struct {
	AttributeMods map[model.Attr]int `json:"attributeMods"`
	Defense       int                `json:"defense"`
	Health        Health             `json:"health"`
	Damage        model.Damage       `json:"damage"`
	Speed         int                `json:"speed"`
	Incapacitated bool               `json:"incapacitated"`
	Injured       bool               `json:"injured"`
	Dead          bool               `json:"dead"`
}

// Inputs carries persisted state the pipeline compares against.
type Inputs struct {
	// PersistedHealthCurrent is the last saved current health.
	PersistedHealthCurrent int

	// Incapacitated is the persisted flag. While set, damage follows
	// current health.
	Incapacitated bool
}

type stage func(eff *model.Effective, in Inputs, out *Derived)

// stages run in order; each reads only the effective model and prior outputs.
var stages = []stage{
	deriveAttributes,
	deriveDefense,
	deriveHealth,
	deriveSpeed,
	deriveNPC,
	deriveCondition,
}

// Derive runs the pipeline. Derived fields (defense total, clamped damage,
// damage max, lost health, current speed) are also written back into eff.
// Running Derive again on the same eff and inputs yields the same result.
func Derive(eff *model.Effective, in Inputs) Derived {
	out := Derived{AttributeMods: make(map[model.Attr]int, len(model.Attributes)+1)}
	for _, s := range stages {
		s(eff, in, &out)
	}
	return out
}

func deriveAttributes(eff *model.Effective, _ Inputs, out *Derived) {
	for _, a := range model.Attributes {
		out.AttributeMods[a] = eff.Data.Attributes.Get(a).Value - 10
	}
	out.AttributeMods[model.AttrLuck] = 0
}

func deriveDefense(eff *model.Effective, _ Inputs, out *Derived) {
	def := &eff.Data.Stats.Defense
	if o := eff.Pass.DefenseOverride; o != nil && *o > 0 {
		def.Total = *o
	} else {
		def.Total = max(def.Natural, eff.Pass.DefenseArmored) + eff.Pass.DefenseBonus
	}
	out.Defense = def.Total
}

func deriveHealth(eff *model.Effective, in Inputs, out *Derived) {
	h := &eff.Data.Stats.Health
	dmg := &eff.Data.Stats.Damage

	if in.Incapacitated || dmg.Value > h.Current {
		dmg.Value = h.Current
	}
	if o := eff.Pass.HealthOverride; o != nil && *o > 0 {
		h.Normal = *o
	}
	h.Lost = max(h.Normal-h.Current, 0)
	dmg.Max = h.Current

	out.Health = Health{
		Normal:  h.Normal,
		Current: h.Current,
		Lost:    h.Lost,
		Temp:    h.Current - in.PersistedHealthCurrent,
	}
	out.Damage = *dmg
}

func deriveSpeed(eff *model.Effective, _ Inputs, out *Derived) {
	sp := &eff.Data.Stats.Speed
	if eff.Pass.SpeedHalved {
		sp.Current = sp.Normal / 2
	} else {
		sp.Current = sp.Normal
	}
	out.Speed = sp.Current
}

// NPCs have no progression; the damage bar always mirrors current health.
func deriveNPC(eff *model.Effective, _ Inputs, out *Derived) {
	if eff.Kind != model.KindNPC {
		return
	}
	eff.Data.Stats.Damage.Max = eff.Data.Stats.Health.Current
	out.Damage.Max = eff.Data.Stats.Health.Current
}

func deriveCondition(eff *model.Effective, _ Inputs, out *Derived) {
	dmg := eff.Data.Stats.Damage.Value
	cur := eff.Data.Stats.Health.Current
	out.Incapacitated = dmg >= cur
	out.Injured = dmg >= cur/2
	out.Dead = cur <= 0
}
