package effect

import (
	"slices"
	"sync"

	"github.com/udisondev/wwsheet/internal/model"
)

// CustomHandler applies a CUSTOM modifier to a single field.
type CustomHandler func(current, delta model.Value) (model.Value, error)

var (
	customMu       sync.RWMutex
	customHandlers = map[string]CustomHandler{}
)

// RegisterCustomHandler binds a CUSTOM handler to a change key.
// Registering the same key twice replaces the previous handler.
func RegisterCustomHandler(key string, h CustomHandler) {
	customMu.Lock()
	defer customMu.Unlock()
	customHandlers[key] = h
}

func customHandler(key string) (CustomHandler, bool) {
	customMu.RLock()
	defer customMu.RUnlock()
	h, ok := customHandlers[key]
	return h, ok
}

// dedupeAppend appends entries whose names are not yet on the list.
func dedupeAppend(current, delta model.Value) (model.Value, error) {
	out := slices.Clone(current.List)
	for _, e := range delta.List {
		if slices.ContainsFunc(out, func(x model.Entry) bool { return x.Name == e.Name }) {
			continue
		}
		out = append(out, e)
	}
	return model.ListValue(out), nil
}

// halve halves the current value when the delta is non-zero.
func halve(current, delta model.Value) (model.Value, error) {
	if delta.Int != 0 {
		current.Int /= 2
	}
	return current, nil
}

func init() {
	for _, name := range model.DetailLists {
		RegisterCustomHandler("details."+string(name), dedupeAppend)
	}
	RegisterCustomHandler("speed.normal", halve)
}
