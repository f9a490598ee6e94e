package ragfuse

import "errors"

var (
	// ErrDimensionMismatch signals fragments (or a query embedding) with
	// inconsistent embedding dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrInvalidWeight signals that both fusion weights are zero.
	ErrInvalidWeight = errors.New("invalid fusion weights")
	// ErrInvalidArgument signals an out-of-range query or corpus parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)
