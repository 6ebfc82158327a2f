package sim

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MJE43/darkveil/internal/engine"
	"github.com/MJE43/darkveil/internal/veil"
)

// Sample runs cfg.Simulations trials one after another. Trial i draws from
// factory(i), so the result matches Sampler.Sample for the same factory.
func Sample(ctx context.Context, cfg Config, factory engine.Factory) ([]veil.Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]veil.Outcome, cfg.Simulations)
	for i := range outcomes {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		outcome, err := veil.RunTrial(factory(uint64(i)), cfg.Dice, cfg.Rolls)
		if err != nil {
			return nil, err
		}
		outcomes[i] = outcome
	}
	return outcomes, nil
}

// trialBatch is a half-open range of trial indices.
type trialBatch struct {
	start, end int
}

// Sampler spreads the trials of one configuration across workers.
type Sampler struct {
	workerCount int
	batchSize   int
	timeout     time.Duration
}

// NewSampler creates a sampler with one worker per GOMAXPROCS slot.
func NewSampler() *Sampler {
	return &Sampler{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   1024,
	}
}

// WithWorkers overrides the worker count; n <= 0 keeps the default.
func (s *Sampler) WithWorkers(n int) *Sampler {
	if n > 0 {
		s.workerCount = n
	}
	return s
}

// WithTimeout bounds every Sample call; zero disables the bound.
func (s *Sampler) WithTimeout(d time.Duration) *Sampler {
	s.timeout = d
	return s
}

// Workers reports the configured worker count.
func (s *Sampler) Workers() int { return s.workerCount }

// Sample runs cfg.Simulations independent trials in parallel. Outcome i is
// always produced by trial i, so deterministic factories give the same
// sample whatever the worker count.
func (s *Sampler) Sample(ctx context.Context, cfg Config, factory engine.Factory) ([]veil.Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]veil.Outcome, cfg.Simulations)
	jobs := make(chan trialBatch, s.workerCount*2)

	var (
		evaluated uint64
		wg        sync.WaitGroup
		errOnce   sync.Once
		firstErr  error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job, ok := <-jobs:
					if !ok {
						return
					}
					for idx := job.start; idx < job.end; idx++ {
						outcome, err := veil.RunTrial(factory(uint64(idx)), cfg.Dice, cfg.Rolls)
						if err != nil {
							fail(err)
							return
						}
						outcomes[idx] = outcome
					}
					atomic.AddUint64(&evaluated, uint64(job.end-job.start))
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	s.generateJobs(ctx, jobs, cfg.Simulations)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if atomic.LoadUint64(&evaluated) != uint64(cfg.Simulations) {
		if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, ErrTimeout
	}
	return outcomes, nil
}

func (s *Sampler) generateJobs(ctx context.Context, jobs chan<- trialBatch, total int) {
	defer close(jobs)

	for start := 0; start < total; start += s.batchSize {
		end := min(start+s.batchSize, total)
		select {
		case jobs <- trialBatch{start: start, end: end}:
		case <-ctx.Done():
			return
		}
	}
}
