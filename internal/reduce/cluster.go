package reduce

import (
	"fmt"
	"sort"

	"github.com/banshee-data/pointreduce/internal/geom"
)

// ClusterResult is one grouping around an anchor.
type ClusterResult struct {
	Anchor   int        // Index of the anchor point
	Centroid geom.Point // Mean position of the members
	Members  []int      // Member indices, descending; always contains Anchor
}

// Cluster groups every point of points whose Euclidean distance to
// points[anchor] is strictly less than threshold, and returns the
// centroid of that group together with the member indices in descending
// order. The anchor itself is always a member. points is not modified.
func Cluster(points []geom.Point, anchor int, threshold float64) (ClusterResult, error) {
	if len(points) == 0 {
		return ClusterResult{}, fmt.Errorf("cluster: empty point set: %w", ErrInvalidInput)
	}
	if anchor < 0 || anchor >= len(points) {
		return ClusterResult{}, fmt.Errorf("cluster: anchor %d out of range [0, %d): %w", anchor, len(points), ErrInvalidInput)
	}
	if err := validateThreshold(threshold); err != nil {
		return ClusterResult{}, err
	}
	if err := validatePoints(points); err != nil {
		return ClusterResult{}, err
	}

	candidates := make([]int, len(points))
	for i := range candidates {
		candidates[i] = i
	}
	return collect(points, candidates, anchor, threshold), nil
}

// ClusterArena is Cluster restricted to the alive points of a. Member
// indices refer to positions in the arena.
func ClusterArena(a *Arena, anchor int, threshold float64) (ClusterResult, error) {
	if a.Remaining() == 0 {
		return ClusterResult{}, fmt.Errorf("cluster: arena exhausted: %w", ErrInvalidInput)
	}
	if !a.Alive(anchor) {
		return ClusterResult{}, fmt.Errorf("cluster: anchor %d is not alive: %w", anchor, ErrBadAnchor)
	}
	if err := validateThreshold(threshold); err != nil {
		return ClusterResult{}, err
	}
	return collect(a.points, a.AliveIndices(), anchor, threshold), nil
}

type indexedDistance struct {
	index    int
	distance float64
}

// collect runs the distance-sort-cut over the candidate indices. The
// candidates must include anchor and be in ascending order so the stable
// sort breaks distance ties by index.
func collect(points []geom.Point, candidates []int, anchor int, threshold float64) ClusterResult {
	origin := points[anchor]

	distances := make([]indexedDistance, len(candidates))
	for k, i := range candidates {
		distances[k] = indexedDistance{index: i, distance: geom.Distance(origin, points[i])}
	}
	sort.SliceStable(distances, func(i, j int) bool {
		return distances[i].distance < distances[j].distance
	})

	members := make([]int, 0, len(distances))
	for _, d := range distances {
		// Sorted ascending, so nothing past the first miss can pass.
		if d.distance >= threshold {
			break
		}
		members = append(members, d.index)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(members)))

	memberPoints := make([]geom.Point, len(members))
	for k, i := range members {
		memberPoints[k] = points[i]
	}
	centroid, _ := geom.Mean(memberPoints)

	return ClusterResult{
		Anchor:   anchor,
		Centroid: centroid,
		Members:  members,
	}
}

func validateThreshold(threshold float64) error {
	// Written as a negation so NaN fails too.
	if !(threshold > 0) {
		return fmt.Errorf("threshold must be positive, got %v: %w", threshold, ErrInvalidInput)
	}
	return nil
}

func validatePoints(points []geom.Point) error {
	for i, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("point %d %v is not finite: %w", i, p, ErrInvalidInput)
		}
	}
	return nil
}
