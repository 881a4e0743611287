// Package geom holds the 2D point type shared by the reducer, the
// generator and the output sinks.
package geom

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is a position in the plane. It has no identity beyond its
// coordinates.
type Point struct {
	X, Y float64
}

// String returns a compact representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Mean returns the centroid of points. The second return value is false
// when points is empty, since the centroid is undefined there.
func Mean(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	xs, ys := Split(points)
	return Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}, true
}

// Split returns the X and Y coordinates of points as separate slices.
func Split(points []Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

// Bounds returns the axis-aligned bounding box of points as its minimum
// and maximum corners. Both corners are zero for an empty input.
func Bounds(points []Point) (lo, hi Point) {
	if len(points) == 0 {
		return Point{}, Point{}
	}
	xs, ys := Split(points)
	lo = Point{X: floats.Min(xs), Y: floats.Min(ys)}
	hi = Point{X: floats.Max(xs), Y: floats.Max(ys)}
	return lo, hi
}

// Translate returns a new slice with offset added to every point.
func Translate(points []Point, offset Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = p.Add(offset)
	}
	return out
}

// ToPixels shifts points by offset and truncates them to integer pixel
// coordinates. Points that land on a negative coordinate cannot be
// addressed in an image and produce an error.
func ToPixels(points []Point, offset Point) ([]image.Point, error) {
	out := make([]image.Point, len(points))
	for i, q := range Translate(points, offset) {
		if q.X < 0 || q.Y < 0 {
			return nil, fmt.Errorf("point %d %v has negative pixel coordinates after offset %v", i, q, offset)
		}
		out[i] = image.Point{X: int(q.X), Y: int(q.Y)}
	}
	return out, nil
}
