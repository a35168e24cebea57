package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_Formula(t *testing.T) {
	tests := []struct {
		spec Spec
		want string
	}{
		{Spec{}, "1d20"},
		{Spec{AttributeModifier: 2}, "1d20+2"},
		{Spec{AttributeModifier: 2, AdvantageCount: 3}, "1d20+2+3d6kh"},
		{Spec{AttributeModifier: 2, AdvantageCount: -2}, "1d20+2-2d6kh"},
		{Spec{AttributeModifier: -1, AdvantageCount: 1}, "1d20-1+1d6kh"},
		{Spec{AdvantageCount: -1}, "1d20-1d6kh"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Formula())

			parsed, err := ParseFormula(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.spec, parsed)
		})
	}
}

func TestParseFormula_Malformed(t *testing.T) {
	for _, f := range []string{"", "2d20", "1d20+", "1d20+2+3", "1d20+3d6", "1d20+2d6kh+1d6kh", "1d20 x"} {
		_, err := ParseFormula(f)
		assert.ErrorIs(t, err, ErrMalformedFormula, f)
	}

	_, err := ParseFormula("1d20+21d6kh")
	assert.ErrorIs(t, err, ErrInvalidDiceSpec)
}

func TestParseFormula_TermOrder(t *testing.T) {
	spec, err := ParseFormula("1d20 +3d6kh -1")
	require.NoError(t, err)
	assert.Equal(t, Spec{AttributeModifier: -1, AdvantageCount: 3}, spec)
}

func TestRoll_BoonsKeepHighest(t *testing.T) {
	// d20=11, then 3d6: 2, 5, 4
	r, err := Roll(NewScripted(11, 2, 5, 4), Spec{AttributeModifier: 2, AdvantageCount: 3})
	require.NoError(t, err)

	assert.Equal(t, 11, r.D20)
	assert.Equal(t, []int{2, 5, 4}, r.BoonDice)
	assert.Equal(t, 5, r.Kept)
	assert.Equal(t, 1, r.BoonSign)
	assert.Equal(t, 11+2+5, r.Total)
	assert.Equal(t, "1d20+2+3d6kh", r.Formula)
}

func TestRoll_BanesSubtractHighest(t *testing.T) {
	r, err := Roll(NewScripted(11, 6, 1), Spec{AttributeModifier: 2, AdvantageCount: -2})
	require.NoError(t, err)

	assert.Equal(t, 6, r.Kept)
	assert.Equal(t, -1, r.BoonSign)
	assert.Equal(t, 11+2-6, r.Total)
}

func TestRoll_NoAdvantage(t *testing.T) {
	r, err := Roll(NewScripted(17), Spec{AttributeModifier: -3})
	require.NoError(t, err)
	assert.Empty(t, r.BoonDice)
	assert.Equal(t, 14, r.Total)
}

func TestRoll_Bounds(t *testing.T) {
	src := NewSource(42)
	for i := 0; i < 2000; i++ {
		r, err := Roll(src, Spec{AttributeModifier: 1, AdvantageCount: 4})
		require.NoError(t, err)
		require.GreaterOrEqual(t, r.D20, 1)
		require.LessOrEqual(t, r.D20, 20)
		require.GreaterOrEqual(t, r.Kept, 1)
		require.LessOrEqual(t, r.Kept, 6)
		require.Equal(t, r.D20+1+r.Kept, r.Total)
	}
}

func TestNewSource_Deterministic(t *testing.T) {
	a, b := NewSource(7), NewSource(7)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.IntN(20), b.IntN(20))
	}
}

func TestEvaluate(t *testing.T) {
	r, err := Evaluate(NewScripted(10, 3), "1d20+1+1d6kh")
	require.NoError(t, err)
	assert.Equal(t, 14, r.Total)

	_, err = Evaluate(NewScripted(10), "1d20*2")
	assert.ErrorIs(t, err, ErrMalformedFormula)
}

func TestClassify(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name             string
		total, threshold int
		want             Outcome
	}{
		{"below", 9, 10, Failure},
		{"meets", 10, 10, Success},
		{"twenty at ten", 20, 10, Critical},
		{"nineteen at ten", 19, 10, Success},
		{"twenty at sixteen", 20, 16, Success},
		{"twenty one at sixteen", 21, 16, Critical},
		{"high threshold", 24, 25, Failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Classify(tt.total, tt.threshold))
		})
	}
}

func TestClassify_CriticalImpliesSuccess(t *testing.T) {
	rules := DefaultRules()
	for total := -10; total <= 40; total++ {
		for threshold := 0; threshold <= 30; threshold++ {
			o := rules.Classify(total, threshold)
			if o == Critical {
				require.True(t, o.IsSuccess())
				require.GreaterOrEqual(t, total, threshold)
			}
			require.Equal(t, total >= threshold, o.IsSuccess(), "total %d threshold %d", total, threshold)
		}
	}
}

func TestOutcome_Text(t *testing.T) {
	var o Outcome
	require.NoError(t, o.UnmarshalText([]byte("critical")))
	assert.Equal(t, Critical, o)
	b, _ := Success.MarshalText()
	assert.Equal(t, "success", string(b))
	assert.Error(t, o.UnmarshalText([]byte("fumble")))
}
