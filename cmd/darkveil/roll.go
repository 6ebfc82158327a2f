package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MJE43/darkveil/internal/config"
	"github.com/MJE43/darkveil/internal/engine"
	"github.com/MJE43/darkveil/internal/report"
	"github.com/MJE43/darkveil/internal/sim"
	"github.com/MJE43/darkveil/internal/veil"
)

func newRollCmd(configPath *string) *cobra.Command {
	var (
		dice, rolls int
		nonce       uint64
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Play a single traced trial",
		Long: `Play one trial and print every face each die showed.

The trial draws from the same stream the simulate command would use for
trial number --nonce of the same configuration and seeds, so any trial of a
sweep can be replayed.`,
		Example: `  darkveil roll --dice 3 --rolls 2 --server-seed s3cr3t
  darkveil roll --dice 5 --rolls 3 --server-seed s3cr3t --nonce 812 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(*configPath)
			if err != nil {
				return err
			}
			for _, key := range []string{config.KeyRNG, config.KeyServerSeed, config.KeyClientSeed} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
					return fmt.Errorf("bind %s: %w", key, err)
				}
			}

			kind, err := engine.ParseKind(v.GetString(config.KeyRNG))
			if err != nil {
				return err
			}
			cfg := sim.Config{Dice: dice, Rolls: rolls, Simulations: 1}
			if err := cfg.Validate(); err != nil {
				return err
			}
			seeds := engine.Seeds{Server: v.GetString(config.KeyServerSeed), Client: v.GetString(config.KeyClientSeed)}
			factory, err := engine.NewFactory(kind, seeds.Derive(cfg.Key()))
			if err != nil {
				return err
			}

			trial, err := veil.PlayTrial(factory(nonce), dice, rolls)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Seeds   engine.Seeds `json:"seeds"`
					Source  engine.Kind  `json:"source"`
					Nonce   uint64       `json:"nonce"`
					Outcome veil.Outcome `json:"outcome"`
					Trial   *veil.Trial  `json:"trial"`
				}{seeds, kind, nonce, trial.Outcome(), trial})
			}
			return printTrace(cmd.OutOrStdout(), cfg, trial)
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.IntVarP(&dice, "dice", "d", 1, "number of dice")
	f.IntVarP(&rolls, "rolls", "r", 1, "number of roll actions")
	f.Uint64Var(&nonce, "nonce", 0, "trial number within the configuration's stream")
	f.BoolVar(&asJSON, "json", false, "print the trace as JSON")
	f.String(config.KeyRNG, d.RNG, "random source: hmac, pcg or crypto")
	f.String(config.KeyServerSeed, d.ServerSeed, "server seed")
	f.String(config.KeyClientSeed, d.ClientSeed, "client seed")
	return cmd
}

func printTrace(w io.Writer, cfg sim.Config, trial *veil.Trial) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", report.Title(cfg))
	for _, action := range trial.Trace {
		fmt.Fprintf(&sb, "roll %d:\n", action.Index+1)
		for _, roll := range action.Dice {
			faces := make([]string, len(roll.Faces))
			for i, f := range roll.Faces {
				faces[i] = fmt.Sprint(f)
			}
			note := fmt.Sprintf("+%d", roll.Successes)
			if roll.Burned {
				note += " burned"
			}
			fmt.Fprintf(&sb, "  die %d: %-16s %s\n", roll.Die+1, strings.Join(faces, " > "), note)
		}
	}
	if trial.Actions < trial.Rolls {
		fmt.Fprintf(&sb, "all dice burned after %d of %d rolls\n", trial.Actions, trial.Rolls)
	}
	fmt.Fprintf(&sb, "outcome: %s\n", report.Label(trial.Outcome()))
	_, err := io.WriteString(w, sb.String())
	return err
}
