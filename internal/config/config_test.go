package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/MJE43/darkveil/internal/engine"
	"github.com/MJE43/darkveil/internal/report"
	"github.com/MJE43/darkveil/internal/sim"
	"github.com/MJE43/darkveil/internal/veil"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, c.Dice)
	assert.Equal(t, []int{1, 2, 3}, c.Rolls)
	assert.Equal(t, 10000, c.Simulations)
	assert.False(t, c.Save)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	c := Default()
	c.Dice = []int{1, 0, -2}
	c.Rolls = []int{0}
	c.Simulations = 0
	c.RNG = "lava-lamp"
	c.Summary = "xml"

	err := c.Validate()
	require.Error(t, err)

	errs := multierr.Errors(err)
	assert.Len(t, errs, 6)
	assert.ErrorIs(t, err, veil.ErrInvalidDice)
	assert.ErrorIs(t, err, veil.ErrInvalidRolls)
	assert.ErrorIs(t, err, sim.ErrInvalidSimulations)
	assert.ErrorIs(t, err, engine.ErrUnknownSource)
	assert.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestValidateSaveMode(t *testing.T) {
	c := Default()
	c.Save = true
	c.Output = ""
	c.Width = 0
	err := c.Validate()
	assert.ErrorIs(t, err, report.ErrNoOutputTarget)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestValidateEmptySweep(t *testing.T) {
	c := Default()
	c.Dice = nil
	c.Rolls = []int{}
	err := c.Validate()
	assert.ErrorIs(t, err, sim.ErrEmptySweep)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestValidateNegativeTuning(t *testing.T) {
	c := Default()
	c.Workers = -1
	c.Parallelism = -1
	c.TimeoutMs = -1
	assert.Len(t, multierr.Errors(c.Validate()), 3)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "darkveil.yaml")
	content := "dice: [2, 4]\nrolls: [3]\nsimulations: 250\nrng: pcg\nserver-seed: abc\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4}, c.Dice)
	assert.Equal(t, []int{3}, c.Rolls)
	assert.Equal(t, 250, c.Simulations)
	assert.Equal(t, "pcg", c.RNG)
	assert.Equal(t, engine.Seeds{Server: "abc", Client: "darkveil"}, c.Seeds())
	// Unset keys keep their defaults.
	assert.Equal(t, 20.0, c.Width)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DARKVEIL_SIMULATIONS", "42")
	t.Setenv("DARKVEIL_SERVER_SEED", "from-env")
	t.Setenv("DARKVEIL_DICE", "3,6")

	dir := t.TempDir()
	path := filepath.Join(dir, "darkveil.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulations: 7\n"), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 42, c.Simulations)
	assert.Equal(t, "from-env", c.ServerSeed)
	assert.Equal(t, []int{3, 6}, c.Dice)
}

func TestSweepRequest(t *testing.T) {
	c := Default()
	c.RNG = "PCG"
	c.ServerSeed = "s"
	c.Parallelism = 2

	req := c.SweepRequest()
	assert.Equal(t, engine.KindPCG, req.Source)
	assert.Equal(t, c.Dice, req.Dice)
	assert.Equal(t, 2, req.Parallelism)
	assert.Equal(t, "s", req.Seeds.Server)
	require.NoError(t, req.Validate())
}
