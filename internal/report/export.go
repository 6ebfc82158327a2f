package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MJE43/darkveil/internal/engine"
	"github.com/MJE43/darkveil/internal/sim"
)

// Format selects the summary encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Summary is the machine-readable form of a sweep.
type Summary struct {
	Sweep          string          `json:"sweep" yaml:"sweep"`
	Source         engine.Kind     `json:"source" yaml:"source"`
	Seeds          engine.Seeds    `json:"seeds" yaml:"seeds"`
	Simulations    int             `json:"simulations" yaml:"simulations"`
	MaxOutcome     int             `json:"max_outcome" yaml:"max_outcome"`
	MaxProbability string          `json:"max_probability" yaml:"max_probability"`
	Configurations []ConfigSummary `json:"configurations" yaml:"configurations"`
}

type ConfigSummary struct {
	Dice     int             `json:"dice" yaml:"dice"`
	Rolls    int             `json:"rolls" yaml:"rolls"`
	Trials   int             `json:"trials" yaml:"trials"`
	Mean     string          `json:"mean" yaml:"mean"`
	CritFail string          `json:"crit_fail" yaml:"crit_fail"`
	Buckets  []BucketSummary `json:"buckets" yaml:"buckets"`
}

type BucketSummary struct {
	Outcome     int    `json:"outcome" yaml:"outcome"`
	Label       string `json:"label" yaml:"label"`
	Count       int    `json:"count" yaml:"count"`
	Probability string `json:"probability" yaml:"probability"`
}

// NewSummary flattens a sweep and its grid into a Summary.
func NewSummary(res *sim.SweepResult, g *Grid) *Summary {
	s := &Summary{
		Sweep:          res.ID.String(),
		Source:         res.Request.Source,
		Seeds:          res.Request.Seeds,
		Simulations:    res.Request.Simulations,
		MaxOutcome:     int(g.Scale.MaxOutcome),
		MaxProbability: g.Scale.MaxProbability.StringFixed(4),
	}
	for _, row := range g.Cells {
		for _, p := range row {
			cs := ConfigSummary{
				Dice:     p.Config.Dice,
				Rolls:    p.Config.Rolls,
				Trials:   p.Dist.Total,
				Mean:     p.Dist.Mean().StringFixed(4),
				CritFail: p.Dist.CritFailRate().StringFixed(4),
				Buckets:  make([]BucketSummary, 0, len(p.Dist.Buckets)),
			}
			for _, b := range p.Dist.Buckets {
				cs.Buckets = append(cs.Buckets, BucketSummary{
					Outcome:     int(b.Outcome),
					Label:       Label(b.Outcome),
					Count:       b.Count,
					Probability: b.Probability.StringFixed(4),
				})
			}
			s.Configurations = append(s.Configurations, cs)
		}
	}
	return s
}

// Export encodes s to w in the requested format.
func Export(w io.Writer, format Format, s *Summary) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
