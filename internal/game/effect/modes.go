package effect

import (
	"fmt"
	"math"
	"slices"

	"github.com/udisondev/wwsheet/internal/model"
)

// modeFunc folds delta into cur. applied is false for silent no-ops.
type modeFunc func(f model.Field, cur, delta model.Value) (next model.Value, applied bool, err error)

// modeHandlers is indexed by model.Mode and covers every mode.
var modeHandlers = [...]modeFunc{
	model.ModeCustom:    applyCustom,
	model.ModeMultiply:  applyMultiply,
	model.ModeAdd:       applyAdd,
	model.ModeDowngrade: applyDowngrade,
	model.ModeUpgrade:   applyUpgrade,
	model.ModeOverride:  applyOverride,
}

func handlerFor(m model.Mode) (modeFunc, bool) {
	if m < 0 || int(m) >= len(modeHandlers) {
		return nil, false
	}
	return modeHandlers[m], true
}

func applyAdd(f model.Field, cur, delta model.Value) (model.Value, bool, error) {
	switch {
	case f.Kind.Numeric():
		n, err := addInt(cur.Int, delta.Int)
		if err != nil {
			return cur, false, err
		}
		cur.Int = n
		return cur, true, nil
	case f.Kind == model.FieldList:
		cur.List = append(slices.Clone(cur.List), delta.List...)
		return cur, true, nil
	}
	return cur, false, fmt.Errorf("%w: ADD on %s field", ErrUnsupportedMode, f.Kind)
}

func applyMultiply(f model.Field, cur, delta model.Value) (model.Value, bool, error) {
	if !f.Kind.Numeric() {
		return cur, false, nil
	}
	n, err := mulInt(cur.Int, delta.Int)
	if err != nil {
		return cur, false, err
	}
	cur.Int = n
	return cur, true, nil
}

func applyOverride(_ model.Field, _, delta model.Value) (model.Value, bool, error) {
	return delta, true, nil
}

func applyUpgrade(f model.Field, cur, delta model.Value) (model.Value, bool, error) {
	if !f.Kind.Numeric() {
		return cur, false, fmt.Errorf("%w: UPGRADE on %s field", ErrUnsupportedMode, f.Kind)
	}
	cur.Int = max(cur.Int, delta.Int)
	return cur, true, nil
}

func applyDowngrade(f model.Field, cur, delta model.Value) (model.Value, bool, error) {
	if !f.Kind.Numeric() {
		return cur, false, fmt.Errorf("%w: DOWNGRADE on %s field", ErrUnsupportedMode, f.Kind)
	}
	cur.Int = min(cur.Int, delta.Int)
	return cur, true, nil
}

func applyCustom(f model.Field, cur, delta model.Value) (model.Value, bool, error) {
	h, ok := customHandler(f.Key)
	if !ok {
		return cur, false, fmt.Errorf("%w: %s", ErrUnknownCustomHandler, f.Key)
	}
	next, err := h(cur, delta)
	if err != nil {
		return cur, false, err
	}
	return next, true, nil
}

func addInt(a, b int) (int, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return s, nil
}

func mulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a || (a == math.MinInt && b == -1) || (b == math.MinInt && a == -1) {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return p, nil
}
