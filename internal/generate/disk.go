// Package generate produces synthetic point clouds to feed the reducer.
package generate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/pointreduce/internal/geom"
	"github.com/banshee-data/pointreduce/internal/reduce"
)

// Defaults match the reference run: 6000 points over a disk of radius 550.
const (
	DefaultPointCount = 6000
	DefaultRadius     = 550.0
)

// Disk returns n points distributed uniformly over a disk of the given
// radius centred on the origin. The angle is uniform on [0, 2π) and the
// normalised radius is sqrt(u) for u uniform on [0, 1], which gives
// uniform density per unit area rather than per unit radius.
//
// The output is fully determined by seed.
func Disk(n int, radius float64, seed uint64) ([]geom.Point, error) {
	if n < 0 {
		return nil, fmt.Errorf("point count must be non-negative, got %d", n)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("disk radius must be positive and finite, got %v", radius)
	}

	src := rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)
	theta := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}
	unit := distuv.Uniform{Min: 0, Max: 1, Src: src}

	points := make([]geom.Point, n)
	for i := range points {
		t := theta.Rand()
		rho := math.Sqrt(unit.Rand())
		points[i] = geom.Point{
			X: math.Cos(t) * rho * radius,
			Y: math.Sin(t) * rho * radius,
		}
	}
	return points, nil
}

// Candidates generates a disk cloud and, when threshold is non-nil,
// reduces it to centroids with the default anchor policy.
func Candidates(n int, radius float64, seed uint64, threshold *float64) ([]geom.Point, error) {
	points, err := Disk(n, radius, seed)
	if err != nil {
		return nil, err
	}
	if threshold == nil {
		return points, nil
	}
	return reduce.Reduce(points, *threshold)
}

// RadiusStats returns the smallest and largest distance from the origin
// among points, divided by radius. For a Disk cloud both lie in [0, 1].
func RadiusStats(points []geom.Point, radius float64) (minRho, maxRho float64) {
	if len(points) == 0 || radius == 0 {
		return 0, 0
	}
	minRho = math.Inf(1)
	for _, p := range points {
		rho := geom.Distance(geom.Point{}, p) / radius
		minRho = math.Min(minRho, rho)
		maxRho = math.Max(maxRho, rho)
	}
	return minRho, maxRho
}
