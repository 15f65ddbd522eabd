package fit

import "errors"

var (
	// ErrNilSubtree is returned when a required subtree is nil.
	ErrNilSubtree = errors.New("nil subtree")
	// ErrInvalidHeight is returned for a non-positive or non-finite target height.
	ErrInvalidHeight = errors.New("invalid target height")
	// ErrNoGeometry is returned when a subtree has no finite geometry to measure.
	ErrNoGeometry = errors.New("no measurable geometry")
	// ErrDegenerateFit is returned when the fit scale is zero or not finite.
	ErrDegenerateFit = errors.New("degenerate fit")
	// ErrMalformedMaterial is reported for material slots that cannot be recolored.
	ErrMalformedMaterial = errors.New("malformed material")
	// ErrInvalidColor is returned for color strings that cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")
)
