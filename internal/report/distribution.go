// Package report turns samples into frequency distributions and renders
// them as a grid of bar charts, one per (rolls, dice) configuration.
package report

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/MJE43/darkveil/internal/sim"
	"github.com/MJE43/darkveil/internal/veil"
)

// CritFailLabel is shown in place of the sentinel outcome.
const CritFailLabel = "Crit Fail"

var hundred = decimal.NewFromInt(100)

// Bucket is one distinct outcome and how often it occurred.
type Bucket struct {
	Outcome     veil.Outcome
	Count       int
	Probability decimal.Decimal
}

// Distribution is the empirical frequency table of one sample.
// Buckets are sorted by outcome, so a crit fail bucket comes first.
type Distribution struct {
	Total   int
	Buckets []Bucket
}

// NewDistribution counts every distinct outcome in sample.
func NewDistribution(sample []veil.Outcome) (Distribution, error) {
	if len(sample) == 0 {
		return Distribution{}, ErrEmptySample
	}

	counts := make(map[veil.Outcome]int)
	for _, o := range sample {
		counts[o]++
	}

	total := decimal.NewFromInt(int64(len(sample)))
	buckets := make([]Bucket, 0, len(counts))
	for o, n := range counts {
		buckets = append(buckets, Bucket{
			Outcome:     o,
			Count:       n,
			Probability: decimal.NewFromInt(int64(n)).Div(total),
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Outcome < buckets[j].Outcome })

	return Distribution{Total: len(sample), Buckets: buckets}, nil
}

// Counted sums bucket counts; it always equals Total.
func (d Distribution) Counted() int {
	n := 0
	for _, b := range d.Buckets {
		n += b.Count
	}
	return n
}

// Bucket returns the bucket for o, if o occurred.
func (d Distribution) Bucket(o veil.Outcome) (Bucket, bool) {
	i := sort.Search(len(d.Buckets), func(i int) bool { return d.Buckets[i].Outcome >= o })
	if i < len(d.Buckets) && d.Buckets[i].Outcome == o {
		return d.Buckets[i], true
	}
	return Bucket{}, false
}

// MaxOutcome is the largest outcome observed, never below 0.
func (d Distribution) MaxOutcome() veil.Outcome {
	var top veil.Outcome
	if n := len(d.Buckets); n > 0 && d.Buckets[n-1].Outcome > top {
		top = d.Buckets[n-1].Outcome
	}
	return top
}

// MaxProbability is the probability of the most frequent bucket.
func (d Distribution) MaxProbability() decimal.Decimal {
	top := decimal.Zero
	for _, b := range d.Buckets {
		if b.Probability.GreaterThan(top) {
			top = b.Probability
		}
	}
	return top
}

// CritFailRate is the share of trials that ended with every die burned.
func (d Distribution) CritFailRate() decimal.Decimal {
	if b, ok := d.Bucket(veil.CritFail); ok {
		return b.Probability
	}
	return decimal.Zero
}

// Mean is the average success count over trials that did not crit fail.
func (d Distribution) Mean() decimal.Decimal {
	var sum, n int64
	for _, b := range d.Buckets {
		if b.Outcome.IsCritFail() {
			continue
		}
		sum += int64(b.Outcome) * int64(b.Count)
		n += int64(b.Count)
	}
	if n == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(n))
}

// Label is the axis label for an outcome.
func Label(o veil.Outcome) string {
	if o.IsCritFail() {
		return CritFailLabel
	}
	return strconv.Itoa(int(o))
}

// Percent formats a probability as a percentage with one decimal.
func Percent(p decimal.Decimal) string {
	return p.Mul(hundred).StringFixed(1) + "%"
}

// Title is the heading of one configuration's chart.
func Title(cfg sim.Config) string {
	return fmt.Sprintf("%d dice, %d rolls", cfg.Dice, cfg.Rolls)
}
