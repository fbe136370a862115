package geometry

import "errors"

var (
	// ErrInvalidState is returned when an operation needs state that does not exist yet.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnsupportedShape is returned when a path cannot be edited structurally.
	ErrUnsupportedShape = errors.New("unsupported shape")
	ErrInvalidColor     = errors.New("invalid color")
)
