package sim

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/MJE43/darkveil/internal/engine"
	"github.com/MJE43/darkveil/internal/veil"
)

func testRequest() SweepRequest {
	return SweepRequest{
		Dice:        []int{1, 2, 3},
		Rolls:       []int{1, 2},
		Simulations: 1000,
		Seeds:       engine.Seeds{Server: "sweep_server", Client: "sweep_client"},
		Source:      engine.KindHMAC,
	}
}

func TestSweepOrderAndCounts(t *testing.T) {
	req := testRequest()
	res, err := NewRunner(NewSampler().WithWorkers(2), nil).Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(res.Results) != 6 {
		t.Fatalf("got %d results, want 6", len(res.Results))
	}

	want := []string{"1d1r", "2d1r", "3d1r", "1d2r", "2d2r", "3d2r"}
	for i, r := range res.Results {
		if r.Config.Key() != want[i] {
			t.Errorf("result %d = %s, want %s", i, r.Config.Key(), want[i])
		}
		if len(r.Outcomes) != req.Simulations {
			t.Errorf("%s: %d outcomes, want %d", r.Config.Key(), len(r.Outcomes), req.Simulations)
		}
	}

	got, ok := res.Lookup(2, 3)
	if !ok || got.Config.Key() != "3d2r" {
		t.Errorf("Lookup(2, 3) = %+v, %v", got, ok)
	}
	if _, ok := res.Lookup(9, 9); ok {
		t.Error("Lookup(9, 9) should miss")
	}
}

func TestSweepReproducible(t *testing.T) {
	req := testRequest()
	a, err := NewRunner(NewSampler().WithWorkers(1), nil).Sweep(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	req.Parallelism = 1
	b, err := NewRunner(NewSampler().WithWorkers(4), nil).Sweep(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if a.ID == b.ID {
		t.Error("sweeps should get distinct ids")
	}
	for i := range a.Results {
		x, y := a.Results[i].Outcomes, b.Results[i].Outcomes
		for j := range x {
			if x[j] != y[j] {
				t.Fatalf("%s trial %d: %v != %v", a.Results[i].Config.Key(), j, x[j], y[j])
			}
		}
	}
}

func TestSweepConfigurationsUseSeparateStreams(t *testing.T) {
	req := testRequest()
	req.Dice = []int{2}
	req.Rolls = []int{1, 1}
	res, err := NewRunner(nil, nil).Sweep(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	// Same key, same derived seeds: identical samples.
	x, y := res.Results[0].Outcomes, res.Results[1].Outcomes
	for i := range x {
		if x[i] != y[i] {
			t.Fatalf("trial %d differs for identical configurations", i)
		}
	}

	other := testRequest()
	other.Seeds.Client = "different"
	other.Dice, other.Rolls = []int{2}, []int{1}
	res2, err := NewRunner(nil, nil).Sweep(context.Background(), other)
	if err != nil {
		t.Fatal(err)
	}
	differs := false
	for i, o := range res2.Results[0].Outcomes {
		if o != x[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("different seeds produced an identical sample")
	}
}

func TestSweepValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepRequest)
		want   error
	}{
		{"no dice", func(r *SweepRequest) { r.Dice = nil }, ErrEmptySweep},
		{"no rolls", func(r *SweepRequest) { r.Rolls = nil }, ErrEmptySweep},
		{"zero dice", func(r *SweepRequest) { r.Dice = []int{1, 0} }, veil.ErrInvalidDice},
		{"negative rolls", func(r *SweepRequest) { r.Rolls = []int{-1} }, veil.ErrInvalidRolls},
		{"no simulations", func(r *SweepRequest) { r.Simulations = 0 }, ErrInvalidSimulations},
		{"unknown source", func(r *SweepRequest) { r.Source = "dice-tower" }, engine.ErrUnknownSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(&req)
			_, err := NewRunner(nil, nil).Sweep(context.Background(), req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSweepProgressAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "[test] ", 0)

	seen := make(map[string]bool)
	runner := NewRunner(nil, logger).OnProgress(func(r Result) {
		seen[r.Config.Key()] = true
	})

	req := testRequest()
	req.Parallelism = 2
	if _, err := runner.Sweep(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 6 {
		t.Errorf("progress saw %d configurations, want 6", len(seen))
	}
	if !strings.Contains(buf.String(), "3d2r done") {
		t.Errorf("log missing completion line:\n%s", buf.String())
	}
}
