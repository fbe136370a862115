package animation

import (
	"errors"

	"github.com/inamate/animlib/internal/geometry"
)

var (
	// ErrConfiguration is returned for malformed construction arguments.
	ErrConfiguration = errors.New("invalid animation configuration")
	// ErrCardinalityMismatch is returned when a Transform is not given one
	// start and one target object.
	ErrCardinalityMismatch = errors.New("cardinality mismatch")

	// Geometry errors surface unchanged so callers can test against this package.
	ErrInvalidState     = geometry.ErrInvalidState
	ErrUnsupportedShape = geometry.ErrUnsupportedShape
)
