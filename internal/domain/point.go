package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrMalformedPoint = errors.New("domain: malformed point")

// Immutable planar coordinates. One distance unit is one minute of driving.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between two points.
func Distance(p1, p2 Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceTo is a convenience wrapper around Distance.
func (p Point) DistanceTo(other Point) float64 { return Distance(p, other) }

func (p Point) String() string {
	return "(" + strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(p.Y, 'f', -1, 64) + ")"
}

// ParsePoint parses "(x,y)" into a Point. Surrounding parentheses and
// whitespace are optional.
func ParsePoint(s string) (Point, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")

	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: %q: expected two comma separated values", ErrMalformedPoint, s)
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q: x: %v", ErrMalformedPoint, s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q: y: %v", ErrMalformedPoint, s, err)
	}

	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return Point{}, fmt.Errorf("%w: %q: coordinates must be finite", ErrMalformedPoint, s)
	}

	return Point{X: x, Y: y}, nil
}
