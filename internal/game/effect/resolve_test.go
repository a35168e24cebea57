package effect

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/wwsheet/internal/model"
)

func mod(id, key string, mode model.Mode, value string) model.Modifier {
	return model.Modifier{ID: id, Key: key, Mode: mode, Value: value, Trigger: model.TriggerPassive}
}

func resolveCharacter(t *testing.T, mods ...model.Modifier) Result {
	t.Helper()
	res, err := Resolve(Input{
		EntityID:  "pc",
		Kind:      model.KindCharacter,
		Base:      model.NewActorData(model.KindCharacter),
		Modifiers: mods,
	})
	require.NoError(t, err)
	return res
}

func TestResolve_OverrideNatural(t *testing.T) {
	res := resolveCharacter(t, mod("a", "defense.natural", model.ModeOverride, "12"))

	assert.Equal(t, 12, res.Effective.Data.Stats.Defense.Natural)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "stats.defense.natural", res.Changes[0].Path)
	assert.Empty(t, res.Warnings)
}

func TestResolve_PriorityOrder(t *testing.T) {
	late := mod("late", "attributes.str", model.ModeOverride, "5")
	early := mod("early", "attributes.str", model.ModeAdd, "2")
	early.Priority = model.Prio(1)
	mid := mod("mid", "attributes.str", model.ModeMultiply, "2")
	mid.Priority = model.Prio(2)

	// (10 + 2) * 2, then the unprioritized override wins
	res := resolveCharacter(t, late, mid, early)
	assert.Equal(t, 5, res.Effective.Data.Attributes.Str.Value)

	res = resolveCharacter(t, mid, early)
	assert.Equal(t, 24, res.Effective.Data.Attributes.Str.Value)
}

func TestOrder_StableForEqualPriority(t *testing.T) {
	a := mod("a", "size.normal", model.ModeAdd, "1")
	b := mod("b", "size.normal", model.ModeAdd, "1")
	c := mod("c", "size.normal", model.ModeAdd, "1")
	a.Priority, b.Priority = model.Prio(3), model.Prio(3)
	d := mod("d", "size.normal", model.ModeAdd, "1")

	var ids []string
	for _, m := range Order([]model.Modifier{c, a, d, b}) {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestOrder_ExtremePriorities(t *testing.T) {
	low := mod("low", "size.normal", model.ModeAdd, "1")
	low.Priority = model.Prio(math.MinInt)
	one := mod("one", "size.normal", model.ModeAdd, "1")
	one.Priority = model.Prio(1)
	high := mod("high", "size.normal", model.ModeAdd, "1")
	high.Priority = model.Prio(math.MaxInt)
	none := mod("none", "size.normal", model.ModeAdd, "1")

	var ids []string
	for _, m := range Order([]model.Modifier{none, high, one, low}) {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"low", "one", "high", "none"}, ids)
}

func TestResolve_OverflowSkipsModifier(t *testing.T) {
	tests := []struct {
		name string
		mod  model.Modifier
	}{
		{"add", mod("add", "attributes.str", model.ModeAdd, itoa(math.MaxInt))},
		{"multiply", mod("mul", "attributes.str", model.ModeMultiply, itoa(math.MaxInt))},
		{"negated reduction", mod("neg", "attributes.strReduce", model.ModeAdd, itoa(math.MinInt))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolveCharacter(t, tt.mod)
			assert.Equal(t, 10, res.Effective.Data.Attributes.Str.Value)
			assert.Empty(t, res.Changes)
			require.Len(t, res.Warnings, 1)
			assert.ErrorIs(t, res.Warnings[0], ErrOverflow)
		})
	}
}

func TestResolve_SkipsConditionalAndSuppressed(t *testing.T) {
	cond := mod("cond", "size.normal", model.ModeAdd, "3")
	cond.Trigger = model.TriggerOnSuccess
	sup := mod("sup", "size.normal", model.ModeAdd, "3")
	sup.Suppressed = true

	res := resolveCharacter(t, cond, sup)
	assert.Equal(t, 1, res.Effective.Data.Stats.Size)
	assert.Empty(t, res.Changes)
}

func TestResolve_ReduceKeysNegate(t *testing.T) {
	res := resolveCharacter(t,
		mod("a", "attributes.strReduce", model.ModeAdd, "2"),
		mod("b", "banes.agi.global", model.ModeAdd, "1"),
		mod("c", "boons.agi.global", model.ModeAdd, "3"),
	)
	assert.Equal(t, 8, res.Effective.Data.Attributes.Str.Value)
	assert.Equal(t, 2, res.Effective.Pass.Boons.Agi.Global)
}

func TestResolve_SourceFactor(t *testing.T) {
	m := mod("a", "health.increase", model.ModeAdd, "2")
	m.Factor = 3
	res := resolveCharacter(t, m)
	assert.Equal(t, 6, res.Effective.Data.Stats.Health.Normal)
}

func TestResolve_NonNegativeClamp(t *testing.T) {
	res := resolveCharacter(t, mod("a", "attributes.wilReduce", model.ModeAdd, "15"))
	assert.Equal(t, 0, res.Effective.Data.Attributes.Wil.Value)

	res = resolveCharacter(t, mod("a", "defense.bonus", model.ModeAdd, "-3"))
	assert.Equal(t, -3, res.Effective.Pass.DefenseBonus, "signed fields are not clamped")
}

func TestResolve_CastFailureSkipsOnlyThatModifier(t *testing.T) {
	res := resolveCharacter(t,
		mod("bad", "attributes.str", model.ModeAdd, "lots"),
		mod("good", "attributes.agi", model.ModeAdd, "2"),
	)
	assert.Equal(t, 10, res.Effective.Data.Attributes.Str.Value)
	assert.Equal(t, 12, res.Effective.Data.Attributes.Agi.Value)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "bad", res.Warnings[0].ModifierID)
	assert.True(t, errors.Is(res.Warnings[0], ErrCast))
}

func TestResolve_UnknownCustomHandler(t *testing.T) {
	res := resolveCharacter(t, mod("a", "attributes.int", model.ModeCustom, "3"))
	assert.Equal(t, 10, res.Effective.Data.Attributes.Int.Value)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0].Err, ErrUnknownCustomHandler)
}

func TestResolve_UnknownFieldAndMode(t *testing.T) {
	res := resolveCharacter(t,
		mod("a", "stats.mana", model.ModeAdd, "3"),
		mod("b", "size.normal", model.Mode(42), "3"),
	)
	require.Len(t, res.Warnings, 2)
	assert.ErrorIs(t, res.Warnings[0].Err, ErrUnknownField)
	assert.ErrorIs(t, res.Warnings[1].Err, ErrUnsupportedMode)
}

func TestResolve_MultiplyNonNumericIsNoop(t *testing.T) {
	base := model.NewActorData(model.KindCharacter)
	base.Details.Type = "Human"
	res, err := Resolve(Input{
		Kind:      model.KindCharacter,
		Base:      base,
		Modifiers: []model.Modifier{mod("a", "details.type", model.ModeMultiply, "3"), mod("b", "speed.halved", model.ModeMultiply, "true")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Human", res.Effective.Data.Details.Type)
	assert.False(t, res.Effective.Pass.SpeedHalved)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Changes)
}

func TestResolve_UpgradeNeverDecreases(t *testing.T) {
	for base := 0; base <= 20; base++ {
		for delta := -5; delta <= 25; delta++ {
			data := model.NewActorData(model.KindCharacter)
			data.Attributes.Str.Value = base
			res, err := Resolve(Input{
				Kind:      model.KindCharacter,
				Base:      data,
				Modifiers: []model.Modifier{mod("u", "attributes.str", model.ModeUpgrade, itoa(delta))},
			})
			require.NoError(t, err)
			require.GreaterOrEqual(t, res.Effective.Data.Attributes.Str.Value, base, "base %d delta %d", base, delta)
		}
	}
}

func TestResolve_DowngradeNeverIncreases(t *testing.T) {
	for base := -5; base <= 20; base++ {
		for delta := -5; delta <= 25; delta++ {
			data := model.NewActorData(model.KindCharacter)
			res, err := Resolve(Input{
				Kind: model.KindCharacter,
				Base: data,
				Modifiers: []model.Modifier{
					mod("b", "defense.bonus", model.ModeOverride, itoa(base)),
					mod("d", "defense.bonus", model.ModeDowngrade, itoa(delta)),
				},
			})
			require.NoError(t, err)
			require.LessOrEqual(t, res.Effective.Pass.DefenseBonus, base, "base %d delta %d", base, delta)
		}
	}
}

func TestResolve_OptionalFieldFallsBackToDefault(t *testing.T) {
	res := resolveCharacter(t, mod("a", "health.override", model.ModeUpgrade, "7"))
	require.NotNil(t, res.Effective.Pass.HealthOverride)
	assert.Equal(t, 7, *res.Effective.Pass.HealthOverride)
}

func TestResolve_ListAppendAndDedupe(t *testing.T) {
	res := resolveCharacter(t,
		mod("a", "details.languages", model.ModeAdd, "Common, Elvish"),
		mod("b", "details.languages", model.ModeCustom, "Elvish,Dwarvish"),
	)
	var names []string
	for _, e := range res.Effective.Data.Details.Languages {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Common", "Elvish", "Dwarvish"}, names)
	require.Len(t, res.Changes, 1, "changes collapse per path")
	assert.Equal(t, "details.languages", res.Changes[0].Path)
}

func TestResolve_AddOnStringUnsupported(t *testing.T) {
	res := resolveCharacter(t, mod("a", "speed.special", model.ModeAdd, "fly"))
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0].Err, ErrUnsupportedMode)
}

func TestResolve_CustomHalveSpeed(t *testing.T) {
	res := resolveCharacter(t, mod("a", "speed.normal", model.ModeCustom, "1"))
	assert.Equal(t, 2, res.Effective.Data.Stats.Speed.Normal)
}

func TestResolve_BaseUntouched(t *testing.T) {
	base := model.NewActorData(model.KindCharacter)
	base.Details.Senses = []model.Entry{{Name: "Darksight"}}
	_, err := Resolve(Input{
		Kind: model.KindCharacter,
		Base: base,
		Modifiers: []model.Modifier{
			mod("a", "details.senses", model.ModeOverride, "Truesight"),
			mod("b", "attributes.str", model.ModeAdd, "4"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Darksight", base.Details.Senses[0].Name)
	assert.Equal(t, 10, base.Attributes.Str.Value)
}

func TestResolve_Idempotent(t *testing.T) {
	mods := []model.Modifier{
		mod("a", "defense.armored", model.ModeUpgrade, "14"),
		mod("b", "health.increase", model.ModeAdd, "4"),
		mod("c", "details.immune", model.ModeAdd, "poison"),
		mod("d", "boons.against.def", model.ModeAdd, "1"),
	}
	in := Input{Kind: model.KindNPC, Base: model.NewActorData(model.KindNPC), Modifiers: mods}

	first, err := Resolve(in)
	require.NoError(t, err)
	second, err := Resolve(in)
	require.NoError(t, err)

	a, err := json.Marshal(first.Effective)
	require.NoError(t, err)
	b, err := json.Marshal(second.Effective)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, a, b)
}

func TestResolve_UnknownKind(t *testing.T) {
	_, err := Resolve(Input{Kind: "Vehicle"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestResolve_HandlerPanicBecomesWarning(t *testing.T) {
	RegisterCustomHandler("details.type", func(_, _ model.Value) (model.Value, error) {
		panic("boom")
	})
	t.Cleanup(func() {
		customMu.Lock()
		delete(customHandlers, "details.type")
		customMu.Unlock()
	})

	res := resolveCharacter(t,
		mod("a", "details.type", model.ModeCustom, "x"),
		mod("b", "size.normal", model.ModeAdd, "1"),
	)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 2, res.Effective.Data.Stats.Size)
}
