package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heroDoc = `
id: hero
name: Hero
kind: Character
data:
  attributes:
    str: {value: 14}
  stats:
    defense: {natural: 11}
    health: {current: 12, normal: 12}
modifiers:
  - id: ward
    key: defense.bonus
    value: "2"
    mode: ADD
`

func writeHero(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hero.yaml")
	require.NoError(t, os.WriteFile(path, []byte(heroDoc), 0o600))
	return path
}

func TestResolveCommand(t *testing.T) {
	cmd := resolveCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-f", writeHero(t)})
	require.NoError(t, cmd.Execute())

	s := out.String()
	assert.Contains(t, s, "Hero (Character)")
	assert.Contains(t, s, "Strength  +4")
	assert.Contains(t, s, "Defense   13")
	assert.Contains(t, s, "defense.bonus")
}

func TestRunRoll_AgainstSyntheticTarget(t *testing.T) {
	var out bytes.Buffer
	err := runRoll(context.Background(), &out, rollOptions{
		file:          writeHero(t),
		attr:          "str",
		against:       "def",
		targetDefense: 1,
		seed:          42,
	}, true)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Hero rolls Strength (seed 42)")
	assert.Contains(t, s, "Target")
	assert.Regexp(t, `vs 1 (success|critical)`, s)
}

func TestRunRoll_SharedWithoutTargets(t *testing.T) {
	var out bytes.Buffer
	err := runRoll(context.Background(), &out, rollOptions{file: writeHero(t), attr: "wil", seed: 3}, true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1d20 = ")
	assert.NotContains(t, out.String(), "rolled against self")
}

func TestRunRoll_Errors(t *testing.T) {
	path := writeHero(t)
	err := runRoll(context.Background(), &bytes.Buffer{}, rollOptions{file: path, attr: "cha", seed: 1}, true)
	assert.Error(t, err)

	err = runRoll(context.Background(), &bytes.Buffer{}, rollOptions{file: path, attr: "str", against: "luck", seed: 1}, true)
	assert.ErrorContains(t, err, "invalid --against")

	err = runRoll(context.Background(), &bytes.Buffer{}, rollOptions{file: path, attr: "str", item: "nope", seed: 1}, true)
	assert.Error(t, err)
}

func TestFormulaCommand(t *testing.T) {
	cmd := formulaCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"1d20+2+3d6kh", "--seed", "7"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1d20+2+3d6kh = ")

	cmd = formulaCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"2d20"})
	assert.Error(t, cmd.Execute())
}

type stuckService struct{ deadline bool }

func (s *stuckService) Close(ctx context.Context) error {
	_, s.deadline = ctx.Deadline()
	return errors.New("draining sheet dispatches: context deadline exceeded")
}

func TestCloseSheet_LogsDrainError(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	svc := &stuckService{}
	closeSheet(svc)

	assert.True(t, svc.deadline, "close must be bounded")
	assert.Contains(t, logs.String(), "closing sheet service")
	assert.Contains(t, logs.String(), "deadline exceeded")
}
