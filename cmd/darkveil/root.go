package main

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/MJE43/darkveil/internal/config"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "darkveil",
		Short: "Monte Carlo simulator for Dark Veil dice pools",
		Long: `darkveil estimates how many successes a Dark Veil dice pool scores.

Dice burn on a 1, score on a 5 or 6, and a 6 explodes into a bonus re-roll.
Burned dice stay out for the rest of the trial; if every die burns the trial
is a critical failure.

Running darkveil without a subcommand is the same as "darkveil simulate".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./darkveil.yaml or ~/.config/darkveil/darkveil.yaml)")
	addSimulateFlags(root)

	root.AddCommand(newSimulateCmd(&configPath), newRollCmd(&configPath), newVersionCmd())
	return root
}

// newLogger follows the bracketed-prefix log style; quiet loggers discard.
func newLogger(w io.Writer, enabled bool) *log.Logger {
	if !enabled {
		w = io.Discard
	}
	return log.New(w, "[darkveil] ", log.LstdFlags)
}

func addSimulateFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.IntSlice(config.KeyDice, d.Dice, "dice counts to sweep")
	f.IntSlice(config.KeyRolls, d.Rolls, "roll-action counts to sweep")
	f.IntP(config.KeySimulations, "n", d.Simulations, "trials per configuration")
	f.Bool(config.KeySave, d.Save, "save the chart grid as a PNG instead of printing it")
	f.StringP(config.KeyOutput, "o", d.Output, "image path used with --save")
	f.Float64(config.KeyWidth, d.Width, "image width in inches")
	f.Float64(config.KeyHeight, d.Height, "image height in inches")
	f.String(config.KeyRNG, d.RNG, "random source: hmac, pcg or crypto")
	f.String(config.KeyServerSeed, d.ServerSeed, "server seed (random when empty)")
	f.String(config.KeyClientSeed, d.ClientSeed, "client seed")
	f.Int(config.KeyWorkers, d.Workers, "workers per configuration (0 = GOMAXPROCS)")
	f.Int(config.KeyParallelism, d.Parallelism, "configurations simulated at once (0 = all)")
	f.Int(config.KeyTimeoutMs, d.TimeoutMs, "per-configuration timeout in milliseconds (0 = none)")
	f.String(config.KeySummary, d.Summary, "also print a summary: yaml or json")
	f.BoolP(config.KeyVerbose, "v", d.Verbose, "log per-configuration timings")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the darkveil version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "darkveil %s\n", version)
		},
	}
}
