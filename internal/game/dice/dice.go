// Package dice implements the d20 roll with boons and banes.
//
// A roll is 1d20 plus the attribute modifier. A non-zero advantage count n
// adds a second roll of |n| six-sided dice of which only the highest is kept;
// that die is added for boons (n > 0) and subtracted for banes (n < 0).
package dice

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformedFormula is returned when a formula cannot be parsed.
	ErrMalformedFormula = errors.New("malformed formula")

	// ErrInvalidDiceSpec is returned when a spec asks for too many boon dice.
	ErrInvalidDiceSpec = errors.New("invalid dice spec")
)

// MaxBoonDice bounds |AdvantageCount|.
const MaxBoonDice = 20

// Spec is a roll specification.
type Spec struct {
	AttributeModifier int `json:"attributeModifier"`
	AdvantageCount    int `json:"advantageCount"`
}

// Formula renders the spec, e.g. "1d20+2+3d6kh" or "1d20-2d6kh".
func (s Spec) Formula() string {
	var b strings.Builder
	b.WriteString("1d20")
	if s.AttributeModifier != 0 {
		b.WriteString(signed(s.AttributeModifier))
	}
	if s.AdvantageCount != 0 {
		b.WriteString(signed(s.AdvantageCount))
		b.WriteString("d6kh")
	}
	return b.String()
}

func signed(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

var termRe = regexp.MustCompile(`([+-]\d+)(d6kh)?`)

// ParseFormula parses a formula rendered by Spec.Formula. Terms after the
// d20 may appear in any order but each at most once.
func ParseFormula(formula string) (Spec, error) {
	f := strings.ReplaceAll(strings.TrimSpace(formula), " ", "")
	rest, ok := strings.CutPrefix(f, "1d20")
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrMalformedFormula, formula)
	}

	var (
		spec             Spec
		hasMod, hasBoons bool
		consumed         int
	)
	for _, m := range termRe.FindAllStringSubmatchIndex(rest, -1) {
		if m[0] != consumed {
			return Spec{}, fmt.Errorf("%w: %q", ErrMalformedFormula, formula)
		}
		consumed = m[1]

		n, err := strconv.Atoi(rest[m[2]:m[3]])
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q: %v", ErrMalformedFormula, formula, err)
		}
		boons := m[4] >= 0
		switch {
		case boons && !hasBoons:
			spec.AdvantageCount, hasBoons = n, true
		case !boons && !hasMod:
			spec.AttributeModifier, hasMod = n, true
		default:
			return Spec{}, fmt.Errorf("%w: %q repeats a term", ErrMalformedFormula, formula)
		}
	}
	if consumed != len(rest) {
		return Spec{}, fmt.Errorf("%w: %q", ErrMalformedFormula, formula)
	}
	return spec, validate(spec, formula)
}

func validate(spec Spec, formula string) error {
	if spec.AdvantageCount > MaxBoonDice || spec.AdvantageCount < -MaxBoonDice {
		return fmt.Errorf("%w: %q has more than %d boon dice", ErrInvalidDiceSpec, formula, MaxBoonDice)
	}
	return nil
}

// Result is an evaluated roll.
type Result struct {
	Formula  string `json:"formula"`
	D20      int    `json:"d20"`
	Modifier int    `json:"modifier"`
	BoonDice []int  `json:"boonDice,omitempty"`
	Kept     int    `json:"kept,omitempty"`

	// BoonSign is +1 for boons, -1 for banes, 0 without advantage.
	BoonSign int `json:"boonSign"`
	Total    int `json:"total"`
}

// Roll evaluates spec with src.
func Roll(src Source, spec Spec) (Result, error) {
	if err := validate(spec, spec.Formula()); err != nil {
		return Result{}, err
	}

	r := Result{
		Formula:  spec.Formula(),
		D20:      src.IntN(20) + 1,
		Modifier: spec.AttributeModifier,
	}
	r.Total = r.D20 + r.Modifier

	n := spec.AdvantageCount
	if n == 0 {
		return r, nil
	}
	r.BoonSign = 1
	if n < 0 {
		r.BoonSign = -1
		n = -n
	}
	r.BoonDice = make([]int, n)
	for i := range r.BoonDice {
		r.BoonDice[i] = src.IntN(6) + 1
		r.Kept = max(r.Kept, r.BoonDice[i])
	}
	r.Total += r.BoonSign * r.Kept
	return r, nil
}

// Evaluate parses formula and rolls it.
func Evaluate(src Source, formula string) (Result, error) {
	spec, err := ParseFormula(formula)
	if err != nil {
		return Result{}, err
	}
	return Roll(src, spec)
}
