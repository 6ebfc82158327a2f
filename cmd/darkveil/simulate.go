package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/MJE43/darkveil/internal/config"
	"github.com/MJE43/darkveil/internal/report"
	"github.com/MJE43/darkveil/internal/sim"
)

func newSimulateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Sweep dice and roll counts and chart the success distributions",
		Example: `  darkveil simulate
  darkveil simulate --dice 1,2,3 --rolls 1,2 -n 50000
  darkveil simulate --save -o veil.png --server-seed s3cr3t
  DARKVEIL_RNG=pcg darkveil simulate --summary yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, *configPath)
		},
	}
	addSimulateFlags(cmd)
	return cmd
}

func runSimulate(cmd *cobra.Command, configPath string) error {
	v, err := config.NewViper(configPath)
	if err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), true)
	if cfg.ServerSeed == "" {
		cfg.ServerSeed = uuid.NewString()
		logger.Printf("using server seed %s", cfg.ServerSeed)
	}

	req := cfg.SweepRequest()
	sampler := sim.NewSampler().
		WithWorkers(cfg.Workers).
		WithTimeout(time.Duration(cfg.TimeoutMs) * time.Millisecond)

	bar := progressbar.NewOptions(len(req.Configs()),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("simulating"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	runner := sim.NewRunner(sampler, newLogger(cmd.ErrOrStderr(), cfg.Verbose)).
		OnProgress(func(sim.Result) { _ = bar.Add(1) })

	res, err := runner.Sweep(cmd.Context(), req)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	grid, err := report.NewGrid(res)
	if err != nil {
		return err
	}

	var renderer report.Renderer = report.NewTerminalRenderer(cmd.OutOrStdout())
	if cfg.Save {
		renderer = report.NewPNGRenderer(cfg.Output, cfg.Width, cfg.Height)
	}
	if err := renderer.Render(grid); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if cfg.Save {
		logger.Printf("saved %s (sweep %s)", cfg.Output, res.ID)
	}

	if cfg.Summary != "" {
		format, err := report.ParseFormat(cfg.Summary)
		if err != nil {
			return err
		}
		if err := report.Export(cmd.OutOrStdout(), format, report.NewSummary(res, grid)); err != nil {
			return fmt.Errorf("summary: %w", err)
		}
	}
	return nil
}
