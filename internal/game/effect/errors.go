package effect

import (
	"errors"
	"fmt"

	"github.com/udisondev/wwsheet/internal/model"
)

var (
	// ErrCast is returned when a modifier value cannot be coerced to the field type.
	ErrCast = errors.New("cast modifier value")

	// ErrUnknownCustomHandler is returned for CUSTOM modifiers on keys without a handler.
	ErrUnknownCustomHandler = errors.New("unknown custom handler")

	// ErrUnknownField is returned when the change key is not in the actor schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnsupportedMode is returned when a mode cannot apply to the field type.
	ErrUnsupportedMode = errors.New("unsupported mode")

	// ErrOverflow is returned when applying a numeric modifier leaves the int range.
	ErrOverflow = errors.New("integer overflow")

	// ErrUnknownKind is returned when no schema exists for the actor kind.
	ErrUnknownKind = errors.New("unknown actor kind")
)

// Warning records a modifier that was skipped during resolution.
type Warning struct {
	ModifierID string     `json:"modifierId"`
	Key        string     `json:"key"`
	Mode       model.Mode `json:"mode"`
	Err        error      `json:"-"`
}

func (w Warning) Error() string {
	return fmt.Sprintf("modifier %s (%s %s): %v", w.ModifierID, w.Mode, w.Key, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}

// MarshalText renders the warning for JSON responses.
func (w Warning) MarshalText() ([]byte, error) {
	return []byte(w.Error()), nil
}
