package sim

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/darkveil/internal/engine"
	"github.com/MJE43/darkveil/internal/veil"
)

// SweepRequest describes a grid of configurations to simulate.
type SweepRequest struct {
	Dice        []int        `json:"dice" yaml:"dice"`
	Rolls       []int        `json:"rolls" yaml:"rolls"`
	Simulations int          `json:"simulations" yaml:"simulations"`
	Seeds       engine.Seeds `json:"seeds" yaml:"seeds"`
	Source      engine.Kind  `json:"source" yaml:"source"`
	// Parallelism bounds how many configurations run at once; 0 means all.
	Parallelism int `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
}

// Configs expands the request in roll-major order: every dice count for the
// first roll count, then the next roll count.
func (r SweepRequest) Configs() []Config {
	configs := make([]Config, 0, len(r.Dice)*len(r.Rolls))
	for _, rolls := range r.Rolls {
		for _, dice := range r.Dice {
			configs = append(configs, Config{Dice: dice, Rolls: rolls, Simulations: r.Simulations})
		}
	}
	return configs
}

// Validate checks every configuration before anything is simulated.
func (r SweepRequest) Validate() error {
	if len(r.Dice) == 0 || len(r.Rolls) == 0 {
		return ErrEmptySweep
	}
	for _, cfg := range r.Configs() {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", cfg.Key(), err)
		}
	}
	if _, err := engine.NewFactory(r.Source, r.Seeds); err != nil {
		return err
	}
	return nil
}

// Result is the sample of one configuration.
type Result struct {
	ID       uuid.UUID      `json:"id" yaml:"id"`
	Config   Config         `json:"config" yaml:"config"`
	Outcomes []veil.Outcome `json:"-" yaml:"-"`
	Elapsed  time.Duration  `json:"elapsed" yaml:"elapsed"`
}

// SweepResult holds every configuration's sample in request order.
type SweepResult struct {
	ID      uuid.UUID    `json:"id" yaml:"id"`
	Request SweepRequest `json:"request" yaml:"request"`
	Results []Result     `json:"results" yaml:"results"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Lookup finds the result for (rolls, dice).
func (r *SweepResult) Lookup(rolls, dice int) (*Result, bool) {
	for i := range r.Results {
		c := r.Results[i].Config
		if c.Rolls == rolls && c.Dice == dice {
			return &r.Results[i], true
		}
	}
	return nil, false
}

// Runner executes sweeps.
type Runner struct {
	sampler  *Sampler
	logger   *log.Logger
	progress func(Result)
	mu       sync.Mutex
}

// NewRunner wires a sampler and logger; a nil logger discards output.
func NewRunner(sampler *Sampler, logger *log.Logger) *Runner {
	if sampler == nil {
		sampler = NewSampler()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{sampler: sampler, logger: logger}
}

// OnProgress registers fn to be called once per finished configuration.
// Calls are serialized.
func (r *Runner) OnProgress(fn func(Result)) *Runner {
	r.progress = fn
	return r
}

// Sweep samples every configuration of req. Each configuration draws from its
// own stream family derived from req.Seeds and the configuration key, so
// results do not depend on scheduling.
func (r *Runner) Sweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	configs := req.Configs()
	out := &SweepResult{
		ID:      uuid.New(),
		Request: req,
		Results: make([]Result, len(configs)),
	}
	r.logger.Printf("sweep %s: %d configurations x %d trials, source=%s", out.ID, len(configs), req.Simulations, req.Source)

	g, gctx := errgroup.WithContext(ctx)
	if req.Parallelism > 0 {
		g.SetLimit(req.Parallelism)
	}

	for i, cfg := range configs {
		g.Go(func() error {
			factory, err := engine.NewFactory(req.Source, req.Seeds.Derive(cfg.Key()))
			if err != nil {
				return err
			}

			t0 := time.Now()
			outcomes, err := r.sampler.Sample(gctx, cfg, factory)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Key(), err)
			}

			res := Result{
				ID:       uuid.New(),
				Config:   cfg,
				Outcomes: outcomes,
				Elapsed:  time.Since(t0),
			}
			out.Results[i] = res
			r.logger.Printf("%s done in %s", cfg.Key(), res.Elapsed.Round(time.Millisecond))
			r.notify(res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.Elapsed = time.Since(started)
	return out, nil
}

func (r *Runner) notify(res Result) {
	if r.progress == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress(res)
}
