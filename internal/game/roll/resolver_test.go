package roll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/wwsheet/internal/game/dice"
	"github.com/udisondev/wwsheet/internal/game/stats"
	"github.com/udisondev/wwsheet/internal/model"
)

func target(id string, defense int, against map[string]int) Target {
	return Target{
		ID:   id,
		Name: id,
		Attributes: map[model.Attr]int{
			model.AttrStr: 10, model.AttrAgi: 12, model.AttrInt: 9, model.AttrWil: 14,
		},
		Defense:      defense,
		BoonsAgainst: against,
	}
}

func self() Target { return target("actor", 10, nil) }

func weapon(mods ...model.Modifier) *model.Item {
	return &model.Item{ID: "sword", Name: "Sword", Type: model.ItemEquipment, Against: model.AgainstDefense, Modifiers: mods}
}

func bundleMod(id string, trig model.Trigger, tgt model.Target) model.Modifier {
	return model.Modifier{ID: id, Key: "defense.bonusReduce", Value: "1", Mode: model.ModeAdd, Trigger: trig, Target: tgt}
}

func TestResolve_PerTargetRolls(t *testing.T) {
	// Target a: d20=15 +2 with 1 boon die (4) => 21 vs 12 => critical.
	// Target b: d20=5 +2, no boons => 7 vs 14 => failure.
	src := dice.NewScripted(15, 4, 5)
	r := NewResolver(dice.DefaultRules(), src)

	req := Request{
		ActorID:           "actor",
		Attribute:         model.AttrStr,
		AttributeModifier: 2,
		Item:              weapon(),
		Targets:           []Target{target("a", 12, map[string]int{"def": 1}), target("b", 14, nil)},
		Self:              self(),
	}
	res, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, res.Results, 2)
	assert.Nil(t, res.Shared)
	assert.Equal(t, 1, res.Results[0].AdvantageCount)
	assert.Equal(t, 21, res.Results[0].Roll.Total)
	assert.Equal(t, dice.Critical, res.Outcomes["a"])
	assert.Equal(t, 7, res.Results[1].Roll.Total)
	assert.Equal(t, dice.Failure, res.Outcomes["b"])
}

func TestResolve_AgainstAttribute(t *testing.T) {
	src := dice.NewScripted(12)
	r := NewResolver(dice.DefaultRules(), src)

	item := &model.Item{ID: "hex", Type: model.ItemSpell, Against: "wil"}
	res, err := r.Resolve(context.Background(), Request{
		ActorID:   "actor",
		Attribute: model.AttrInt,
		Item:      item,
		Targets:   []Target{target("t", 10, nil)},
		Self:      self(),
	})
	require.NoError(t, err)
	assert.Equal(t, 14, res.Results[0].Threshold)
	assert.Equal(t, dice.Failure, res.Outcomes["t"])
}

func TestResolve_SharedRoll(t *testing.T) {
	src := dice.NewScripted(9, 3)
	r := NewResolver(dice.DefaultRules(), src)

	item := &model.Item{ID: "song", Type: model.ItemSpell, Boons: 1}
	res, err := r.Resolve(context.Background(), Request{
		ActorID:   "actor",
		Attribute: model.AttrWil,
		Item:      item,
		Targets:   []Target{target("a", 20, map[string]int{"def": 5}), target("b", 5, nil)},
		Self:      self(),
	})
	require.NoError(t, err)

	require.NotNil(t, res.Shared)
	assert.Equal(t, 12, res.Shared.Total)
	for _, tr := range res.Results {
		assert.Equal(t, 10, tr.Threshold)
		assert.Equal(t, 1, tr.AdvantageCount, "boons against do not apply to shared rolls")
		assert.Equal(t, dice.Success, tr.Outcome)
		assert.Nil(t, tr.Roll)
	}
}

func TestResolve_MissingTargetFallsBackToActor(t *testing.T) {
	r := NewResolver(dice.DefaultRules(), dice.NewScripted(10))
	res, err := r.Resolve(context.Background(), Request{
		ActorID:   "actor",
		Attribute: model.AttrStr,
		Item:      weapon(),
		Self:      self(),
	})
	require.NoError(t, err)
	assert.True(t, res.MissingTarget)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "actor", res.Results[0].TargetID)
	assert.Equal(t, dice.Success, res.Outcomes["actor"])
}

func TestResolve_LuckIgnoresModifier(t *testing.T) {
	r := NewResolver(dice.DefaultRules(), dice.NewScripted(9))
	res, err := r.Resolve(context.Background(), Request{
		ActorID:           "actor",
		Attribute:         model.AttrLuck,
		AttributeModifier: 5,
		Self:              self(),
	})
	require.NoError(t, err)
	assert.Equal(t, 9, res.Shared.Total)
	assert.Equal(t, dice.Failure, res.Outcomes["actor"])
}

func TestResolve_AutoFail(t *testing.T) {
	r := NewResolver(dice.DefaultRules(), dice.NewScripted(20))
	res, err := r.Resolve(context.Background(), Request{
		ActorID:   "actor",
		Attribute: model.AttrAgi,
		AutoFail:  true,
		Self:      self(),
	})
	require.NoError(t, err)
	assert.Equal(t, dice.Failure, res.Outcomes["actor"])
}

func TestResolve_InvalidRequest(t *testing.T) {
	r := NewResolver(dice.DefaultRules(), dice.NewScripted(10))
	_, err := r.Resolve(context.Background(), Request{Attribute: "cha"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = r.Resolve(context.Background(), Request{Attribute: model.AttrStr, Item: &model.Item{Against: "luck"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestResolve_CancelledBeforeRolling(t *testing.T) {
	src := dice.NewScripted(10)
	r := NewResolver(dice.DefaultRules(), src)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, Request{Attribute: model.AttrStr, Self: self()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_TooManyBoonsAbortsRoll(t *testing.T) {
	r := NewResolver(dice.DefaultRules(), dice.NewScripted(10))
	_, err := r.Resolve(context.Background(), Request{Attribute: model.AttrStr, Situational: 40, Self: self()})
	assert.ErrorIs(t, err, dice.ErrInvalidDiceSpec)
}

func TestFired(t *testing.T) {
	assert.Equal(t, []model.Trigger{model.TriggerOnUse, model.TriggerOnSuccess, model.TriggerOnCrit}, Fired(dice.Critical))
	assert.Equal(t, []model.Trigger{model.TriggerOnUse, model.TriggerOnSuccess}, Fired(dice.Success))
	assert.Equal(t, []model.Trigger{model.TriggerOnUse, model.TriggerOnFailure}, Fired(dice.Failure))
}

func TestResolve_BundleMaterialization(t *testing.T) {
	// a: 18+0 vs 10 => success; b: 20 vs 10 => critical; c: 2 vs 10 => failure
	src := dice.NewScripted(18, 20, 2)
	r := NewResolver(dice.DefaultRules(), src)

	item := weapon(
		bundleMod("hit", model.TriggerOnSuccess, model.TargetTokens),
		bundleMod("crit", model.TriggerOnCrit, model.TargetTokens),
		bundleMod("miss", model.TriggerOnFailure, model.TargetSelf),
		bundleMod("rush", model.TriggerOnSuccess, model.TargetSelf),
		bundleMod("note", model.TriggerOnSuccess, model.TargetNone),
		bundleMod("use", model.TriggerOnUse, model.TargetTokens),
		bundleMod("aura", model.TriggerPassive, model.TargetTokens),
	)
	item.EffectFactor = 2

	res, err := r.Resolve(context.Background(), Request{
		ActorID:   "actor",
		Attribute: model.AttrStr,
		Item:      item,
		Targets:   []Target{target("a", 10, nil), target("b", 10, nil), target("c", 10, nil)},
		Self:      self(),
	})
	require.NoError(t, err)
	require.Equal(t, dice.Success, res.Outcomes["a"])
	require.Equal(t, dice.Critical, res.Outcomes["b"])
	require.Equal(t, dice.Failure, res.Outcomes["c"])

	effects := func(id string) []string {
		var out []string
		for _, m := range res.For(id) {
			out = append(out, m.EffectID)
		}
		return out
	}
	assert.Equal(t, []string{"use", "hit"}, effects("a"))
	assert.Equal(t, []string{"use", "hit", "crit"}, effects("b"))
	assert.Equal(t, []string{"use"}, effects("c"))
	assert.Equal(t, []string{"rush", "miss"}, effects("actor"), "self bundles fire once per roll")

	for _, m := range res.For("b") {
		assert.Equal(t, model.TriggerPassive, m.Trigger)
		assert.NotEqual(t, m.EffectID, m.ID)
		assert.Equal(t, "actor", m.Provenance.OriginID)
		assert.True(t, m.Provenance.Transferred)
		assert.True(t, m.Provenance.External)
		assert.Equal(t, 2, m.SourceFactor())
	}
	for _, m := range res.For("actor") {
		assert.False(t, m.Provenance.External)
	}
}

func TestResolve_InstantEffects(t *testing.T) {
	src := dice.NewScripted(20)
	r := NewResolver(dice.DefaultRules(), src)
	item := &model.Item{
		ID:   "staff",
		Type: model.ItemSpell,
		Instant: []model.InstantEffect{
			{Label: model.InstantDamage, Value: "2d6", Trigger: model.TriggerOnSuccess, Target: model.TargetTokens},
			{Label: model.InstantHeal, Value: "3", Trigger: model.TriggerOnUse, Target: model.TargetSelf},
			{Label: model.InstantAffliction, Affliction: "Slowed", Trigger: model.TriggerOnFailure, Target: model.TargetTokens},
		},
	}
	res, err := r.Resolve(context.Background(), Request{
		ActorID:   "actor",
		Attribute: model.AttrWil,
		Item:      item,
		Targets:   []Target{target("t", 10, nil)},
		Self:      self(),
	})
	require.NoError(t, err)
	require.Equal(t, dice.Critical, res.Outcomes["t"])
	require.Len(t, res.Instant, 2)
	assert.Equal(t, "actor", res.Instant[0].RecipientID)
	assert.Equal(t, model.InstantHeal, res.Instant[0].Effect.Label)
	assert.Equal(t, "t", res.Instant[1].RecipientID)
	assert.Len(t, res.Results[0].Instant, 2)
}

func TestNewRequest(t *testing.T) {
	d := model.NewActorData(model.KindCharacter)
	d.Attributes.Str.Value = 13
	eff := model.NewEffective(model.KindCharacter, d)
	eff.Pass.Boons.Str.Global = 1
	eff.Pass.AttackBoons.Global = 2
	eff.Pass.AutoFail.Str = true
	derived := stats.Derive(eff, stats.Inputs{})

	actor := Snapshot("pc", "Hero", eff, derived)
	req := NewRequest(actor, eff, derived, model.AttrStr, weapon(), 1)

	assert.Equal(t, 3, req.AttributeModifier)
	assert.Equal(t, 3, req.EffectGlobal)
	assert.True(t, req.AutoFail)
	assert.Equal(t, 1, req.Situational)
	assert.Equal(t, "pc", req.Self.ID)
	assert.Equal(t, 13, req.Self.Attributes[model.AttrStr])

	luck := NewRequest(actor, eff, derived, model.AttrLuck, nil, 0)
	assert.Equal(t, 0, luck.AttributeModifier)
	assert.False(t, luck.AutoFail)
}
