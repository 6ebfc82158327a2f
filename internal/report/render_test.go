package report

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MJE43/darkveil/internal/engine"
	"github.com/MJE43/darkveil/internal/sim"
)

func testSweep(t *testing.T) *sim.SweepResult {
	t.Helper()
	req := sim.SweepRequest{
		Dice:        []int{1, 2, 3},
		Rolls:       []int{1, 2},
		Simulations: 500,
		Seeds:       engine.Seeds{Server: "report_server", Client: "report_client"},
		Source:      engine.KindPCG,
	}
	res, err := sim.NewRunner(nil, nil).Sweep(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestNewGrid(t *testing.T) {
	res := testSweep(t)
	g, err := NewGrid(res)
	require.NoError(t, err)

	require.Len(t, g.Cells, 2)
	for i, row := range g.Cells {
		require.Len(t, row, 3)
		for j, p := range row {
			assert.Equal(t, g.Rolls[i], p.Config.Rolls)
			assert.Equal(t, g.Dice[j], p.Config.Dice)
			assert.Equal(t, 500, p.Dist.Counted())
			assert.False(t, p.Dist.MaxOutcome() > g.Scale.MaxOutcome)
			assert.True(t, p.Dist.MaxProbability().LessThanOrEqual(g.Scale.MaxProbability))
		}
	}
}

func TestNewGridMissingConfig(t *testing.T) {
	res := testSweep(t)
	res.Results = res.Results[:len(res.Results)-1]
	_, err := NewGrid(res)
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestTerminalRenderer(t *testing.T) {
	g, err := NewGrid(testSweep(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewTerminalRenderer(&buf).Render(g))

	out := buf.String()
	for _, want := range []string{"1 dice, 1 rolls", "3 dice, 2 rolls", "Crit Fail", "500 trials", "%"} {
		assert.Contains(t, out, want)
	}
}

func TestPNGRenderer(t *testing.T) {
	g, err := NewGrid(testSweep(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "grid.png")
	r := NewPNGRenderer(path, 10, 6)
	require.NoError(t, r.Render(g))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestPNGRendererFailures(t *testing.T) {
	g, err := NewGrid(testSweep(t))
	require.NoError(t, err)

	assert.ErrorIs(t, NewPNGRenderer("", 10, 6).Render(g), ErrNoOutputTarget)

	bad := filepath.Join(t.TempDir(), "missing", "dir", "grid.png")
	assert.Error(t, NewPNGRenderer(bad, 10, 6).Render(g))

	// The grid is untouched by a failed render.
	assert.Equal(t, 500, g.Cells[0][0].Dist.Counted())
}

func TestPNGEncode(t *testing.T) {
	g, err := NewGrid(testSweep(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewPNGRenderer("", 8, 5).Encode(&buf, g))
	_, err = png.Decode(&buf)
	assert.NoError(t, err)
}

func TestExport(t *testing.T) {
	res := testSweep(t)
	g, err := NewGrid(res)
	require.NoError(t, err)
	s := NewSummary(res, g)

	require.Len(t, s.Configurations, 6)
	assert.Equal(t, res.ID.String(), s.Sweep)

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Export(&buf, FormatYAML, s))
		var back Summary
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, s.Configurations[5].Dice, back.Configurations[5].Dice)
		assert.Equal(t, s.Configurations[5].Buckets, back.Configurations[5].Buckets)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Export(&buf, FormatJSON, s))
		var back Summary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, s.MaxProbability, back.MaxProbability)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorIs(t, Export(&bytes.Buffer{}, "toml", s), ErrUnknownFormat)
	})
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "YML": FormatYAML, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.True(t, strings.HasPrefix(err.Error(), ErrUnknownFormat.Error()))
}
