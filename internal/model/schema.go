package model

import (
	"sort"
	"strings"
)

// Field binds a change key to a typed accessor on the working model.
// Several keys may share one Path (e.g. "health.increase" and
// "health.normalReduce" both write stats.health.normal).
type Field struct {
	Key      string
	Path     string
	Kind     FieldKind
	Default  Value
	Reduce   bool
	Optional bool

	get func(*Effective) (Value, bool)
	set func(*Effective, Value)
}

// Get reads the field. ok is false when an optional field is absent.
func (f Field) Get(e *Effective) (Value, bool) {
	return f.get(e)
}

// Set writes the field.
func (f Field) Set(e *Effective, v Value) {
	f.set(e, v)
}

// Schema is the compile-time field table of one actor kind.
type Schema struct {
	Kind   ActorKind
	fields map[string]Field
}

// Field looks up a change key.
func (s *Schema) Field(key string) (Field, bool) {
	f, ok := s.fields[key]
	return f, ok
}

// Keys returns all change keys, sorted.
func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var schemas = map[ActorKind]*Schema{
	KindCharacter: buildSchema(KindCharacter),
	KindNPC:       buildSchema(KindNPC),
}

// SchemaFor returns the schema of kind, nil for unknown kinds.
func SchemaFor(kind ActorKind) *Schema {
	return schemas[kind]
}

// IsReduceKey reports whether a change key denotes a reduction. Deltas
// written through such keys have their sign flipped before application.
func IsReduceKey(key string) bool {
	return strings.Contains(key, "banes") || strings.Contains(key, "Reduce")
}

func (s *Schema) add(f Field) {
	f.Reduce = IsReduceKey(f.Key)
	s.fields[f.Key] = f
}

func intField(key, path string, kind FieldKind, ptr func(*Effective) *int) Field {
	return Field{
		Key:  key,
		Path: path,
		Kind: kind,
		get:  func(e *Effective) (Value, bool) { return Value{Kind: kind, Int: *ptr(e)}, true },
		set:  func(e *Effective, v Value) { *ptr(e) = v.Int },
	}
}

func optIntField(key, path string, ptr func(*Effective) **int) Field {
	return Field{
		Key:      key,
		Path:     path,
		Kind:     FieldNonNegInt,
		Optional: true,
		get: func(e *Effective) (Value, bool) {
			p := *ptr(e)
			if p == nil {
				return Value{}, false
			}
			return nonNegValue(*p), true
		},
		set: func(e *Effective, v Value) {
			n := v.Int
			*ptr(e) = &n
		},
	}
}

func boolField(key, path string, ptr func(*Effective) *bool) Field {
	return Field{
		Key:  key,
		Path: path,
		Kind: FieldBool,
		get:  func(e *Effective) (Value, bool) { return BoolValue(*ptr(e)), true },
		set:  func(e *Effective, v Value) { *ptr(e) = v.Bool },
	}
}

func stringField(key, path string, ptr func(*Effective) *string) Field {
	return Field{
		Key:  key,
		Path: path,
		Kind: FieldString,
		get:  func(e *Effective) (Value, bool) { return StringValue(*ptr(e)), true },
		set:  func(e *Effective, v Value) { *ptr(e) = v.Str },
	}
}

func listField(key, path string, ptr func(*Effective) *[]Entry) Field {
	return Field{
		Key:  key,
		Path: path,
		Kind: FieldList,
		get:  func(e *Effective) (Value, bool) { return ListValue(*ptr(e)), true },
		set:  func(e *Effective, v Value) { *ptr(e) = v.List },
	}
}

func buildSchema(kind ActorKind) *Schema {
	s := &Schema{Kind: kind, fields: make(map[string]Field, 128)}

	for _, a := range Attributes {
		path := "attributes." + string(a) + ".value"
		ptr := func(e *Effective) *int { return &e.Data.Attributes.Get(a).Value }
		s.add(intField("attributes."+string(a), path, FieldNonNegInt, ptr))
		s.add(intField("attributes."+string(a)+"Reduce", path, FieldNonNegInt, ptr))
	}

	// Boons and banes share storage; banes keys negate the delta.
	for _, a := range append(slicesClone(Attributes), AttrLuck) {
		for _, scope := range []string{"global", "conditional"} {
			path := "boons.attributes." + string(a) + "." + scope
			ptr := func(e *Effective) *int {
				p := e.Pass.Boons.Get(a)
				if scope == "global" {
					return &p.Global
				}
				return &p.Conditional
			}
			s.add(intField("boons."+string(a)+"."+scope, path, FieldInt, ptr))
			s.add(intField("banes."+string(a)+"."+scope, path, FieldInt, ptr))
		}
	}
	for _, scope := range []string{"global", "conditional"} {
		path := "boons.attacks." + scope
		ptr := func(e *Effective) *int {
			if scope == "global" {
				return &e.Pass.AttackBoons.Global
			}
			return &e.Pass.AttackBoons.Conditional
		}
		s.add(intField("boons.attacks."+scope, path, FieldInt, ptr))
		s.add(intField("banes.attacks."+scope, path, FieldInt, ptr))
	}
	for _, k := range []string{AgainstDefense, "str", "agi", "int", "wil"} {
		path := "boons.against." + k
		ptr := func(e *Effective) *int { return e.Pass.Against.Get(k) }
		s.add(intField("boons.against."+k, path, FieldInt, ptr))
		s.add(intField("banes.against."+k, path, FieldInt, ptr))
	}
	for _, a := range Attributes {
		s.add(boolField("autoFail."+string(a), "autoFail."+string(a), func(e *Effective) *bool { return e.Pass.AutoFail.Get(a) }))
	}

	natural := func(e *Effective) *int { return &e.Data.Stats.Defense.Natural }
	for _, key := range []string{"defense.natural", "defense.naturalIncrease", "defense.naturalReduce"} {
		s.add(intField(key, "stats.defense.natural", FieldNonNegInt, natural))
	}
	armored := func(e *Effective) *int { return &e.Pass.DefenseArmored }
	for _, key := range []string{"defense.armored", "defense.armoredIncrease", "defense.armoredReduce"} {
		s.add(intField(key, "stats.defense.armored", FieldNonNegInt, armored))
	}
	bonus := func(e *Effective) *int { return &e.Pass.DefenseBonus }
	for _, key := range []string{"defense.bonus", "defense.bonusReduce"} {
		s.add(intField(key, "stats.defense.bonus", FieldInt, bonus))
	}
	s.add(optIntField("defense.override", "stats.defense.override", func(e *Effective) **int { return &e.Pass.DefenseOverride }))

	normal := func(e *Effective) *int { return &e.Data.Stats.Health.Normal }
	for _, key := range []string{"health.normal", "health.increase", "health.normalReduce"} {
		s.add(intField(key, "stats.health.normal", FieldNonNegInt, normal))
	}
	current := func(e *Effective) *int { return &e.Data.Stats.Health.Current }
	for _, key := range []string{"health.current", "health.tempIncrease", "health.currentReduce"} {
		s.add(intField(key, "stats.health.current", FieldNonNegInt, current))
	}
	s.add(intField("health.bonus", "stats.health.bonus", FieldInt, func(e *Effective) *int { return &e.Data.Stats.Health.Bonus }))
	s.add(optIntField("health.override", "stats.health.override", func(e *Effective) **int { return &e.Pass.HealthOverride }))

	speed := func(e *Effective) *int { return &e.Data.Stats.Speed.Normal }
	for _, key := range []string{"speed.normal", "speed.increase", "speed.normalReduce"} {
		s.add(intField(key, "stats.speed.normal", FieldNonNegInt, speed))
	}
	s.add(boolField("speed.halved", "stats.speed.halved", func(e *Effective) *bool { return &e.Pass.SpeedHalved }))
	s.add(stringField("speed.special", "stats.speed.special", func(e *Effective) *string { return &e.Data.Stats.Speed.Special }))

	size := func(e *Effective) *int { return &e.Data.Stats.Size }
	for _, key := range []string{"size.normal", "size.increase"} {
		s.add(intField(key, "stats.size", FieldNonNegInt, size))
	}

	s.add(intField("extraDamage.attacks.globalDice", "extraDamage.attacks.globalDice", FieldInt, func(e *Effective) *int { return &e.Pass.ExtraDamage.GlobalDice }))
	s.add(intField("extraDamage.attacks.globalMod", "extraDamage.attacks.globalMod", FieldInt, func(e *Effective) *int { return &e.Pass.ExtraDamage.GlobalMod }))

	for _, name := range DetailLists {
		s.add(listField("details."+string(name), "details."+string(name), func(e *Effective) *[]Entry { return e.Data.Details.List(name) }))
	}
	s.add(stringField("details.type", "details.type", func(e *Effective) *string { return &e.Data.Details.Type }))

	if kind == KindCharacter {
		s.add(intField("health.starting", "stats.health.starting", FieldNonNegInt, func(e *Effective) *int { return &e.Data.Stats.Health.Starting }))
		s.add(intField("bonusDamage.increase", "stats.bonusdamage", FieldInt, func(e *Effective) *int { return &e.Data.Stats.BonusDamage }))
		s.add(stringField("details.ancestry", "details.ancestry", func(e *Effective) *string { return &e.Data.Details.Ancestry }))
	}

	// Defaults come from the type definition, never from a working model.
	def := NewEffective(kind, NewActorData(kind))
	for key, f := range s.fields {
		v, ok := f.get(def)
		if !ok {
			v = Value{Kind: f.Kind}
		}
		f.Default = v
		s.fields[key] = f
	}
	return s
}

func slicesClone(a []Attr) []Attr {
	return append([]Attr(nil), a...)
}
