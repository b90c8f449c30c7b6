package valueobjects

import (
	"math"

	pkgerrors "mindgraph-backend/pkg/errors"
)

// Position is a value object representing node coordinates in 2D space
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position with validation
func NewPosition(x, y float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.x - other.x
	dy := p.y - other.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon &&
		math.Abs(p.y-other.y) < epsilon
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) (Position, error) {
	return NewPosition(p.x+dx, p.y+dy)
}

// Size is a value object representing a node's rendered bounding box
type Size struct {
	width  float64
	height float64
}

// NewSize creates a size with validation
func NewSize(width, height float64) (Size, error) {
	if width <= 0 || height <= 0 || !isValidCoordinate(width) || !isValidCoordinate(height) {
		return Size{}, pkgerrors.NewValidationError("size dimensions must be positive finite numbers")
	}
	return Size{width: width, height: height}, nil
}

// Width returns the box width
func (s Size) Width() float64 {
	return s.width
}

// Height returns the box height
func (s Size) Height() float64 {
	return s.height
}

// IsZero checks if the size is unset
func (s Size) IsZero() bool {
	return s.width == 0 && s.height == 0
}

// Overlaps reports whether two axis-aligned boxes centered at the given
// positions intersect once each box is inflated by padding on every side.
func (s Size) Overlaps(at Position, other Size, otherAt Position, padding float64) bool {
	halfW := s.width/2 + padding
	halfH := s.height/2 + padding
	otherHalfW := other.width / 2
	otherHalfH := other.height / 2

	return math.Abs(at.x-otherAt.x) < halfW+otherHalfW &&
		math.Abs(at.y-otherAt.y) < halfH+otherHalfH
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
