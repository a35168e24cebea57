package effect

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/udisondev/wwsheet/internal/model"
)

// castValue coerces a raw modifier value to the field kind. Lists are split
// on commas and every element becomes an entry.
func castValue(raw string, kind model.FieldKind) (model.Value, error) {
	switch kind {
	case model.FieldInt, model.FieldNonNegInt:
		n, err := castInt(raw)
		if err != nil {
			return model.Value{}, err
		}
		return model.Value{Kind: kind, Int: n}, nil

	case model.FieldBool:
		b, err := castBool(raw)
		if err != nil {
			return model.Value{}, err
		}
		return model.BoolValue(b), nil

	case model.FieldString:
		return model.StringValue(raw), nil

	case model.FieldList:
		var entries []model.Entry
		for _, part := range strings.Split(raw, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			entries = append(entries, model.Entry{Name: name})
		}
		return model.ListValue(entries), nil
	}
	return model.Value{}, fmt.Errorf("%w: field kind %s", ErrCast, kind)
}

func castInt(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrCast, raw)
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("%w: %q is out of range", ErrCast, raw)
	}
	return int(f), nil
}

func castBool(raw string) (bool, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrCast, raw)
	}
	return b, nil
}
