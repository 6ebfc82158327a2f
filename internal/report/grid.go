package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MJE43/darkveil/internal/sim"
	"github.com/MJE43/darkveil/internal/veil"
)

// ProbabilityPadding is added above the tallest bar of a batch.
var ProbabilityPadding = decimal.RequireFromString("0.05")

// Scale is shared by every chart of a batch so they can be compared by eye.
type Scale struct {
	MaxOutcome     veil.Outcome
	MaxProbability decimal.Decimal
}

// NewScale takes the largest outcome and the tallest bucket across dists,
// pads the probability and caps it at 1.
func NewScale(dists ...Distribution) Scale {
	var s Scale
	s.MaxProbability = decimal.Zero
	for _, d := range dists {
		if m := d.MaxOutcome(); m > s.MaxOutcome {
			s.MaxOutcome = m
		}
		if p := d.MaxProbability(); p.GreaterThan(s.MaxProbability) {
			s.MaxProbability = p
		}
	}
	s.MaxProbability = decimal.Min(decimal.NewFromInt(1), s.MaxProbability.Add(ProbabilityPadding))
	return s
}

// Panel is one cell of the grid.
type Panel struct {
	Config sim.Config
	Dist   Distribution
}

// Grid lays panels out with one row per roll count and one column per dice
// count.
type Grid struct {
	Rolls []int
	Dice  []int
	Cells [][]Panel
	Scale Scale
}

// NewGrid builds distributions for every configuration of a sweep.
func NewGrid(res *sim.SweepResult) (*Grid, error) {
	g := &Grid{
		Rolls: res.Request.Rolls,
		Dice:  res.Request.Dice,
		Cells: make([][]Panel, len(res.Request.Rolls)),
	}

	all := make([]Distribution, 0, len(res.Results))
	for i, rolls := range g.Rolls {
		g.Cells[i] = make([]Panel, len(g.Dice))
		for j, dice := range g.Dice {
			r, ok := res.Lookup(rolls, dice)
			if !ok {
				return nil, fmt.Errorf("%w: %d dice, %d rolls", ErrMissingConfig, dice, rolls)
			}
			d, err := NewDistribution(r.Outcomes)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.Config.Key(), err)
			}
			g.Cells[i][j] = Panel{Config: r.Config, Dist: d}
			all = append(all, d)
		}
	}
	g.Scale = NewScale(all...)
	return g, nil
}

// Renderer draws a grid somewhere.
type Renderer interface {
	Render(g *Grid) error
}
