package engine

import "errors"

var (
	ErrExhausted     = errors.New("random source exhausted")
	ErrInvalidSides  = errors.New("die must have at least one side")
	ErrUnknownSource = errors.New("unknown random source")
)
