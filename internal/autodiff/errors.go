package autodiff

import "errors"

// Common errors.
var (
	ErrUnknownNode      = errors.New("node not in graph")
	ErrInvalidRule      = errors.New("invalid rule")
	ErrResidualGradient = errors.New("gradient not zero before backward")
)
