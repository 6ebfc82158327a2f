package sim

import (
	"fmt"

	"github.com/MJE43/darkveil/internal/veil"
)

// DefaultSimulations is the sample size used when none is configured.
const DefaultSimulations = 10000

// Config identifies one (dice, rolls) configuration and its sample size.
type Config struct {
	Dice        int `json:"dice" yaml:"dice"`
	Rolls       int `json:"rolls" yaml:"rolls"`
	Simulations int `json:"simulations" yaml:"simulations"`
}

// Validate rejects configurations that cannot be simulated.
func (c Config) Validate() error {
	if c.Dice < 1 {
		return fmt.Errorf("%w: got %d", veil.ErrInvalidDice, c.Dice)
	}
	if c.Rolls < 1 {
		return fmt.Errorf("%w: got %d", veil.ErrInvalidRolls, c.Rolls)
	}
	if c.Simulations < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSimulations, c.Simulations)
	}
	return nil
}

// Key names the configuration, e.g. "3d2r" for 3 dice over 2 rolls.
func (c Config) Key() string {
	return fmt.Sprintf("%dd%dr", c.Dice, c.Rolls)
}
