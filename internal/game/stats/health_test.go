package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/wwsheet/internal/model"
)

func TestApplyDamage_ClampsAtHealth(t *testing.T) {
	d := model.NewActorData(model.KindCharacter)
	d.Stats.Health.Current = 10
	d.Stats.Health.Normal = 10
	d.Stats.Damage.Value = 7

	ch, err := ApplyDamage(&d, 10, false, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Stats.Damage.Value)
	assert.Equal(t, 2, ch.Overflow)

	eff := model.NewEffective(model.KindCharacter, d)
	out := Derive(eff, Inputs{PersistedHealthCurrent: 10, Incapacitated: Incapacitation(Track{7, 10}, Track{10, 10})})
	assert.Equal(t, 10, out.Damage.Value)
	assert.True(t, out.Incapacitated)
	assert.Equal(t, 0, out.Health.Lost)
}

func TestApplyDamage_IncapacitatedLosesHealth(t *testing.T) {
	d := model.NewActorData(model.KindCharacter)
	d.Stats.Health.Current = 10
	d.Stats.Damage.Value = 10

	ch, err := ApplyDamage(&d, 10, true, 3)
	require.NoError(t, err)
	assert.Equal(t, OpHealthLoss, ch.Op)
	assert.Equal(t, 7, d.Stats.Health.Current)
	assert.Equal(t, 10, d.Stats.Damage.Value)
}

func TestApplyHealing(t *testing.T) {
	d := model.NewActorData(model.KindNPC)
	d.Stats.Damage.Value = 4

	ch, err := ApplyHealing(&d, 6)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Stats.Damage.Value)
	assert.Equal(t, 4, ch.Before)
}

func TestApplyHealthLossAndRegain(t *testing.T) {
	d := model.NewActorData(model.KindCharacter)
	d.Stats.Health.Normal = 12
	d.Stats.Health.Current = 5

	_, err := ApplyHealthLoss(&d, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Stats.Health.Current)

	ch, err := ApplyHealthRegain(&d, 12, 20)
	require.NoError(t, err)
	assert.Equal(t, 12, d.Stats.Health.Current)
	assert.Equal(t, 12, ch.After)
}

func TestApply_NegativeAmount(t *testing.T) {
	d := model.NewActorData(model.KindCharacter)
	_, err := ApplyHealing(&d, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ApplyDamage(&d, 10, false, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestIncapacitation(t *testing.T) {
	tests := []struct {
		name       string
		prev, next Track
		want       bool
	}{
		{"damage meets health", Track{5, 10}, Track{10, 10}, true},
		{"health drops to damage", Track{5, 10}, Track{5, 5}, true},
		{"healing clears", Track{10, 10}, Track{8, 10}, false},
		{"healing clears even when health also drops", Track{10, 10}, Track{8, 6}, false},
		{"below health", Track{2, 10}, Track{4, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Incapacitation(tt.prev, tt.next))
		})
	}
}

func TestIncapacitation_DerivationIsFinal(t *testing.T) {
	// The update rule clears the flag, but damage still exceeds health.
	flag := Incapacitation(Track{10, 10}, Track{8, 6})
	require.False(t, flag)

	d := model.NewActorData(model.KindCharacter)
	d.Stats.Health.Current = 6
	d.Stats.Damage.Value = 8
	out := Derive(model.NewEffective(model.KindCharacter, d), Inputs{PersistedHealthCurrent: 6, Incapacitated: flag})

	assert.Equal(t, 6, out.Damage.Value)
	assert.True(t, out.Incapacitated)
}
