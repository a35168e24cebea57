package model

// BoonPair is a global and a conditional boon count. Negative values are banes.
type BoonPair struct {
	Global      int `json:"global"`
	Conditional int `json:"conditional"`
}

// AttrBoons holds boon counts per rollable attribute, luck included.
type AttrBoons struct {
	Str  BoonPair `json:"str"`
	Agi  BoonPair `json:"agi"`
	Int  BoonPair `json:"int"`
	Wil  BoonPair `json:"wil"`
	Luck BoonPair `json:"luck"`
}

// Get returns the pair for a, nil for unknown keys.
func (b *AttrBoons) Get(a Attr) *BoonPair {
	switch a {
	case AttrStr:
		return &b.Str
	case AttrAgi:
		return &b.Agi
	case AttrInt:
		return &b.Int
	case AttrWil:
		return &b.Wil
	case AttrLuck:
		return &b.Luck
	}
	return nil
}

// AgainstBoons are boons granted to anyone rolling against this actor,
// keyed by the threshold source (defense or an attribute).
type AgainstBoons struct {
	Def int `json:"def"`
	Str int `json:"str"`
	Agi int `json:"agi"`
	Int int `json:"int"`
	Wil int `json:"wil"`
}

// Get returns the counter for an against key, nil when unknown.
func (b *AgainstBoons) Get(key string) *int {
	switch key {
	case AgainstDefense:
		return &b.Def
	case string(AttrStr):
		return &b.Str
	case string(AttrAgi):
		return &b.Agi
	case string(AttrInt):
		return &b.Int
	case string(AttrWil):
		return &b.Wil
	}
	return nil
}

// Map returns the counters keyed by against key.
func (b AgainstBoons) Map() map[string]int {
	return map[string]int{
		AgainstDefense: b.Def,
		string(AttrStr): b.Str,
		string(AttrAgi): b.Agi,
		string(AttrInt): b.Int,
		string(AttrWil): b.Wil,
	}
}

// AutoFail flags attributes whose rolls fail automatically.
type AutoFail struct {
	Str bool `json:"str"`
	Agi bool `json:"agi"`
	Int bool `json:"int"`
	Wil bool `json:"wil"`
}

// Get returns the flag for a, nil for luck and unknown keys.
func (f *AutoFail) Get(a Attr) *bool {
	switch a {
	case AttrStr:
		return &f.Str
	case AttrAgi:
		return &f.Agi
	case AttrInt:
		return &f.Int
	case AttrWil:
		return &f.Wil
	}
	return nil
}

// ExtraDamage is attack damage added by effects.
type ExtraDamage struct {
	GlobalDice int `json:"globalDice"`
	GlobalMod  int `json:"globalMod"`
}

// PassContext is the scratch state of a single resolution pass. It is
// allocated fresh for every pass, written only by modifiers and read by the
// derived-stat pipeline and the roll resolver. It is never persisted.
type PassContext struct {
	Boons       AttrBoons    `json:"boons"`
	AttackBoons BoonPair     `json:"attackBoons"`
	Against     AgainstBoons `json:"against"`
	AutoFail    AutoFail     `json:"autoFail"`

	DefenseArmored  int  `json:"defenseArmored"`
	DefenseBonus    int  `json:"defenseBonus"`
	DefenseOverride *int `json:"defenseOverride,omitempty"`
	HealthOverride  *int `json:"healthOverride,omitempty"`
	SpeedHalved     bool `json:"speedHalved"`

	ExtraDamage ExtraDamage `json:"extraDamage"`
}

// Effective is the working copy of an actor's base model with every eligible
// passive modifier folded in. It is owned by a single resolution call.
type Effective struct {
	Kind ActorKind   `json:"kind"`
	Data ActorData   `json:"data"`
	Pass PassContext `json:"pass"`
}

// NewEffective copies base into a fresh working model.
func NewEffective(kind ActorKind, base ActorData) *Effective {
	return &Effective{Kind: kind, Data: base.Clone()}
}
