package sim

import "errors"

var (
	ErrEmptySweep         = errors.New("sweep needs at least one dice count and one roll count")
	ErrInvalidSimulations = errors.New("simulations must be at least 1")
	ErrTimeout            = errors.New("simulation timed out")
)
