package veil

import "errors"

var (
	ErrInvalidDice  = errors.New("dice count must be at least 1")
	ErrInvalidRolls = errors.New("roll count must be at least 1")
	ErrSource       = errors.New("random source failed")
)
