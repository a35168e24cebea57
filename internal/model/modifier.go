package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode defines how a modifier value is folded into a field.
// Numbering matches the persisted change records.
type Mode int8

const (
	ModeCustom    Mode = 0
	ModeMultiply  Mode = 1
	ModeAdd       Mode = 2
	ModeDowngrade Mode = 3
	ModeUpgrade   Mode = 4
	ModeOverride  Mode = 5
)

// Modes lists every application mode.
var Modes = []Mode{ModeCustom, ModeMultiply, ModeAdd, ModeDowngrade, ModeUpgrade, ModeOverride}

var modeNames = map[Mode]string{
	ModeCustom:    "CUSTOM",
	ModeMultiply:  "MULTIPLY",
	ModeAdd:       "ADD",
	ModeDowngrade: "DOWNGRADE",
	ModeUpgrade:   "UPGRADE",
	ModeOverride:  "OVERRIDE",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts a mode name (case-insensitive) or its number.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		m := Mode(n)
		if !m.Valid() {
			return 0, fmt.Errorf("unknown mode %d", n)
		}
		return m, nil
	}
	for m, name := range modeNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Trigger is the condition under which a modifier becomes active.
type Trigger string

const (
	TriggerPassive   Trigger = "passive"
	TriggerOnUse     Trigger = "onUse"
	TriggerOnSuccess Trigger = "onSuccess"
	TriggerOnCrit    Trigger = "onCritical"
	TriggerOnFailure Trigger = "onFailure"
)

// Valid reports whether t is a known trigger. Empty is treated as passive.
func (t Trigger) Valid() bool {
	switch t {
	case "", TriggerPassive, TriggerOnUse, TriggerOnSuccess, TriggerOnCrit, TriggerOnFailure:
		return true
	}
	return false
}

// IsPassive reports whether the modifier takes part in the passive pass.
func (t Trigger) IsPassive() bool {
	return t == "" || t == TriggerPassive
}

// Target selects who receives a fired modifier.
type Target string

const (
	TargetNone   Target = "none"
	TargetSelf   Target = "self"
	TargetTokens Target = "tokens"
)

// Provenance records where a modifier came from. It is set once when the
// modifier is attached or materialized and never recomputed.
type Provenance struct {
	OriginID    string `json:"originId,omitempty" yaml:"originId,omitempty"`
	Transferred bool   `json:"transferred,omitempty" yaml:"transferred,omitempty"`
	External    bool   `json:"external,omitempty" yaml:"external,omitempty"`
}

// Duration marks a temporary modifier. Seconds is measured in world time.
type Duration struct {
	Seconds   int       `json:"seconds" yaml:"seconds"`
	StartTime time.Time `json:"startTime" yaml:"startTime"`
}

// ExpiresAt returns the world time at which the modifier lapses.
func (d Duration) ExpiresAt() time.Time {
	return d.StartTime.Add(time.Duration(d.Seconds) * time.Second)
}

// Modifier is a single typed change to one field.
type Modifier struct {
	ID       string  `json:"id" yaml:"id"`
	EffectID string  `json:"effectId,omitempty" yaml:"effectId,omitempty"`
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	Key      string  `json:"key" yaml:"key"`
	Value    string  `json:"value" yaml:"value"`
	Mode     Mode    `json:"mode" yaml:"mode"`
	Priority *int    `json:"priority,omitempty" yaml:"priority,omitempty"`
	Trigger  Trigger `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Target   Target  `json:"target,omitempty" yaml:"target,omitempty"`

	// Factor multiplies every numeric delta. Zero reads as 1.
	Factor     int        `json:"factor,omitempty" yaml:"factor,omitempty"`
	Suppressed bool       `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
	Provenance Provenance `json:"provenance" yaml:"provenance"`
	Duration   *Duration  `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// SourceFactor returns the effective factor, defaulting to 1.
func (m Modifier) SourceFactor() int {
	if m.Factor == 0 {
		return 1
	}
	return m.Factor
}

// Expired reports whether a temporary modifier has lapsed at world time now.
func (m Modifier) Expired(now time.Time) bool {
	if m.Duration == nil || m.Duration.Seconds <= 0 {
		return false
	}
	return !now.Before(m.Duration.ExpiresAt())
}

// Prio is a convenience for building modifiers with an explicit priority.
func Prio(n int) *int {
	return &n
}
