package report

import "errors"

var (
	ErrEmptySample    = errors.New("sample is empty")
	ErrMissingConfig  = errors.New("sweep result is missing a configuration")
	ErrUnknownFormat  = errors.New("unknown summary format")
	ErrNoOutputTarget = errors.New("no output path for image")
)
