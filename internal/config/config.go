// Package config loads darkveil settings from defaults, an optional YAML
// file, DARKVEIL_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/MJE43/darkveil/internal/engine"
	"github.com/MJE43/darkveil/internal/report"
	"github.com/MJE43/darkveil/internal/sim"
	"github.com/MJE43/darkveil/internal/veil"
)

// EnvPrefix namespaces environment overrides, e.g. DARKVEIL_SIMULATIONS.
const EnvPrefix = "DARKVEIL"

// Keys shared by viper, flags and the config file.
const (
	KeyDice        = "dice"
	KeyRolls       = "rolls"
	KeySimulations = "simulations"
	KeySave        = "save"
	KeyOutput      = "output"
	KeyWidth       = "width"
	KeyHeight      = "height"
	KeyRNG         = "rng"
	KeyServerSeed  = "server-seed"
	KeyClientSeed  = "client-seed"
	KeyWorkers     = "workers"
	KeyParallelism = "parallelism"
	KeyTimeoutMs   = "timeout-ms"
	KeySummary     = "summary"
	KeyVerbose     = "verbose"
)

// Config is the full set of run settings.
type Config struct {
	Dice        []int   `mapstructure:"dice" yaml:"dice"`
	Rolls       []int   `mapstructure:"rolls" yaml:"rolls"`
	Simulations int     `mapstructure:"simulations" yaml:"simulations"`
	Save        bool    `mapstructure:"save" yaml:"save"`
	Output      string  `mapstructure:"output" yaml:"output"`
	Width       float64 `mapstructure:"width" yaml:"width"`
	Height      float64 `mapstructure:"height" yaml:"height"`
	RNG         string  `mapstructure:"rng" yaml:"rng"`
	ServerSeed  string  `mapstructure:"server-seed" yaml:"server-seed"`
	ClientSeed  string  `mapstructure:"client-seed" yaml:"client-seed"`
	Workers     int     `mapstructure:"workers" yaml:"workers"`
	Parallelism int     `mapstructure:"parallelism" yaml:"parallelism"`
	TimeoutMs   int     `mapstructure:"timeout-ms" yaml:"timeout-ms"`
	Summary     string  `mapstructure:"summary" yaml:"summary"`
	Verbose     bool    `mapstructure:"verbose" yaml:"verbose"`
}

// Default returns the default sweep: 1-5 dice over 1-3 rolls,
// 10000 trials each, shown on screen.
func Default() Config {
	return Config{
		Dice:        []int{1, 2, 3, 4, 5},
		Rolls:       []int{1, 2, 3},
		Simulations: sim.DefaultSimulations,
		Output:      "darkveil.png",
		Width:       20,
		Height:      12,
		RNG:         string(engine.KindHMAC),
		ClientSeed:  "darkveil",
	}
}

// SetDefaults registers Default() with v so every key is known to viper,
// which lets AutomaticEnv overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyDice, d.Dice)
	v.SetDefault(KeyRolls, d.Rolls)
	v.SetDefault(KeySimulations, d.Simulations)
	v.SetDefault(KeySave, d.Save)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyWidth, d.Width)
	v.SetDefault(KeyHeight, d.Height)
	v.SetDefault(KeyRNG, d.RNG)
	v.SetDefault(KeyServerSeed, d.ServerSeed)
	v.SetDefault(KeyClientSeed, d.ClientSeed)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyParallelism, d.Parallelism)
	v.SetDefault(KeyTimeoutMs, d.TimeoutMs)
	v.SetDefault(KeySummary, d.Summary)
	v.SetDefault(KeyVerbose, d.Verbose)
}

// NewViper prepares a viper instance with defaults and environment binding
// and reads the config file. An explicit path must exist; otherwise
// darkveil.yaml is looked up in the working directory and in
// $HOME/.config/darkveil, and its absence is not an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("darkveil")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "darkveil"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Validate reports every problem at once so a bad sweep is rejected before
// any trial runs.
func (c Config) Validate() error {
	var err error

	if len(c.Dice) == 0 {
		err = multierr.Append(err, fmt.Errorf("dice: %w", sim.ErrEmptySweep))
	}
	for _, d := range c.Dice {
		if d < 1 {
			err = multierr.Append(err, fmt.Errorf("dice: %w: got %d", veil.ErrInvalidDice, d))
		}
	}
	if len(c.Rolls) == 0 {
		err = multierr.Append(err, fmt.Errorf("rolls: %w", sim.ErrEmptySweep))
	}
	for _, r := range c.Rolls {
		if r < 1 {
			err = multierr.Append(err, fmt.Errorf("rolls: %w: got %d", veil.ErrInvalidRolls, r))
		}
	}
	if c.Simulations < 1 {
		err = multierr.Append(err, fmt.Errorf("simulations: %w: got %d", sim.ErrInvalidSimulations, c.Simulations))
	}
	if _, e := engine.ParseKind(c.RNG); e != nil {
		err = multierr.Append(err, fmt.Errorf("rng: %w", e))
	}
	if c.Save {
		if c.Output == "" {
			err = multierr.Append(err, fmt.Errorf("output: %w", report.ErrNoOutputTarget))
		}
		if c.Width <= 0 || c.Height <= 0 {
			err = multierr.Append(err, fmt.Errorf("image size must be positive, got %gx%g", c.Width, c.Height))
		}
	}
	if c.Summary != "" {
		if _, e := report.ParseFormat(c.Summary); e != nil {
			err = multierr.Append(err, fmt.Errorf("summary: %w", e))
		}
	}
	if c.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Parallelism < 0 {
		err = multierr.Append(err, fmt.Errorf("parallelism must be >= 0, got %d", c.Parallelism))
	}
	if c.TimeoutMs < 0 {
		err = multierr.Append(err, fmt.Errorf("timeout-ms must be >= 0, got %d", c.TimeoutMs))
	}
	return err
}

// Seeds returns the configured seeds.
func (c Config) Seeds() engine.Seeds {
	return engine.Seeds{Server: c.ServerSeed, Client: c.ClientSeed}
}

// SweepRequest converts the config into a sweep. Call Validate first.
func (c Config) SweepRequest() sim.SweepRequest {
	kind, _ := engine.ParseKind(c.RNG)
	return sim.SweepRequest{
		Dice:        c.Dice,
		Rolls:       c.Rolls,
		Simulations: c.Simulations,
		Seeds:       c.Seeds(),
		Source:      kind,
		Parallelism: c.Parallelism,
	}
}
