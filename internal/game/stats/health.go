package stats

import (
	"errors"
	"fmt"

	"github.com/udisondev/wwsheet/internal/model"
)

// ErrInvalidAmount is returned for negative health amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// Track is the damage/health pair compared across an update.
type Track struct {
	Damage int
	Health int
}

// Incapacitation decides the persisted incapacitated flag for an update that
// moves the track from prev to next. Lowering damage always clears the flag;
// otherwise damage meeting health sets it. The derivation that follows
// recomputes the flag from the clamped state and that result is final.
func Incapacitation(prev, next Track) bool {
	if next.Damage < prev.Damage {
		return false
	}
	return next.Damage >= next.Health
}

// HealthOp names a health application.
type HealthOp string

const (
	OpDamage       HealthOp = "damage"
	OpHealing      HealthOp = "healing"
	OpHealthLoss   HealthOp = "healthLoss"
	OpHealthRegain HealthOp = "healthRegain"
)

// HealthChange describes one application for messages and auditing.
type HealthChange struct {
	Op     HealthOp `json:"op"`
	Amount int      `json:"amount"`
	Before int      `json:"before"`
	After  int      `json:"after"`

	// Overflow is damage beyond current health. It is reported only.
	Overflow int `json:"overflow,omitempty"`
}

func checkAmount(op HealthOp, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%s %d: %w", op, amount, ErrInvalidAmount)
	}
	return nil
}

// ApplyDamage adds damage to the base data. health is the effective current
// health. An incapacitated actor loses health instead.
func ApplyDamage(d *model.ActorData, health int, incapacitated bool, amount int) (HealthChange, error) {
	if err := checkAmount(OpDamage, amount); err != nil {
		return HealthChange{}, err
	}
	if incapacitated {
		return ApplyHealthLoss(d, amount)
	}

	ch := HealthChange{Op: OpDamage, Amount: amount, Before: d.Stats.Damage.Value}
	total := ch.Before + amount
	if total > health {
		ch.Overflow = total - health
		total = health
	}
	d.Stats.Damage.Value = total
	ch.After = total
	return ch, nil
}

// ApplyHealing removes damage, never below zero.
func ApplyHealing(d *model.ActorData, amount int) (HealthChange, error) {
	if err := checkAmount(OpHealing, amount); err != nil {
		return HealthChange{}, err
	}
	ch := HealthChange{Op: OpHealing, Amount: amount, Before: d.Stats.Damage.Value}
	d.Stats.Damage.Value = max(ch.Before-amount, 0)
	ch.After = d.Stats.Damage.Value
	return ch, nil
}

// ApplyHealthLoss lowers current health, never below zero.
func ApplyHealthLoss(d *model.ActorData, amount int) (HealthChange, error) {
	if err := checkAmount(OpHealthLoss, amount); err != nil {
		return HealthChange{}, err
	}
	ch := HealthChange{Op: OpHealthLoss, Amount: amount, Before: d.Stats.Health.Current}
	d.Stats.Health.Current = max(ch.Before-amount, 0)
	ch.After = d.Stats.Health.Current
	return ch, nil
}

// ApplyHealthRegain restores up to amount of lost health.
func ApplyHealthRegain(d *model.ActorData, lost, amount int) (HealthChange, error) {
	if err := checkAmount(OpHealthRegain, amount); err != nil {
		return HealthChange{}, err
	}
	ch := HealthChange{Op: OpHealthRegain, Amount: amount, Before: d.Stats.Health.Current}
	d.Stats.Health.Current += min(amount, max(lost, 0))
	ch.After = d.Stats.Health.Current
	return ch, nil
}
