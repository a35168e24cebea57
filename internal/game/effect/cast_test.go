package effect

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/wwsheet/internal/model"
)

func itoa(n int) string { return strconv.Itoa(n) }

func TestCastValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		kind    model.FieldKind
		want    model.Value
		wantErr bool
	}{
		{"int", "3", model.FieldInt, model.IntValue(3), false},
		{"signed int", "-2", model.FieldInt, model.IntValue(-2), false},
		{"whole float", "4.0", model.FieldNonNegInt, model.Value{Kind: model.FieldNonNegInt, Int: 4}, false},
		{"fraction", "1.5", model.FieldInt, model.Value{}, true},
		{"text", "many", model.FieldInt, model.Value{}, true},
		{"empty int", "", model.FieldInt, model.Value{}, true},
		{"huge exponent", "1e30", model.FieldInt, model.Value{}, true},
		{"huge negative exponent", "-1e30", model.FieldInt, model.Value{}, true},
		{"two to the 63", "9223372036854775808", model.FieldInt, model.Value{}, true},
		{"max int", itoa(math.MaxInt), model.FieldInt, model.IntValue(math.MaxInt), false},
		{"bool true", "true", model.FieldBool, model.BoolValue(true), false},
		{"bool yes", "Yes", model.FieldBool, model.BoolValue(true), false},
		{"bool 0", "0", model.FieldBool, model.BoolValue(false), false},
		{"bool garbage", "maybe", model.FieldBool, model.Value{}, true},
		{"string", " fly ", model.FieldString, model.StringValue(" fly "), false},
		{"list", "a, b,,c", model.FieldList, model.ListValue([]model.Entry{{Name: "a"}, {Name: "b"}, {Name: "c"}}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := castValue(tt.raw, tt.kind)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrCast)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}
