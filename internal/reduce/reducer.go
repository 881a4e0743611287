package reduce

import (
	"fmt"
	"time"

	"github.com/banshee-data/pointreduce/internal/geom"
	"github.com/banshee-data/pointreduce/internal/monitoring"
)

// DefaultThreshold is the grouping distance used when none is configured.
const DefaultThreshold = 35.0

// Params holds the reduction parameters.
type Params struct {
	Threshold float64 // Grouping distance; members are strictly closer than this
}

// Round records one reduction round.
type Round struct {
	Anchor   int        // Arena index of the anchor
	Centroid geom.Point // Replacement point produced by the round
	Members  []int      // Arena indices consumed, descending
}

// Result is the outcome of a full reduction.
type Result struct {
	InputCount int
	Centroids  []geom.Point // One per round, in production order
	Rounds     []Round
	Policy     string
	Threshold  float64
	Elapsed    time.Duration
}

// ConsumedCount returns the number of input points consumed across all
// rounds. After a complete reduction it equals InputCount.
func (r *Result) ConsumedCount() int {
	n := 0
	for _, rd := range r.Rounds {
		n += len(rd.Members)
	}
	return n
}

// Reducer drives rounds of anchor selection, clustering and consumption
// until the working set is empty.
type Reducer struct {
	params   Params
	selector AnchorSelector
}

// NewReducer creates a reducer with the given threshold and anchor policy.
// A nil selector means FirstAliveSelector.
func NewReducer(threshold float64, selector AnchorSelector) *Reducer {
	if selector == nil {
		selector = FirstAliveSelector{}
	}
	return &Reducer{
		params:   Params{Threshold: threshold},
		selector: selector,
	}
}

// NewDefaultReducer creates a reducer with DefaultThreshold and the
// first-alive anchor policy.
func NewDefaultReducer() *Reducer {
	return NewReducer(DefaultThreshold, nil)
}

// GetParams returns the current reduction parameters.
func (r *Reducer) GetParams() Params { return r.params }

// SetParams updates the reduction parameters.
func (r *Reducer) SetParams(params Params) { r.params = params }

// Selector returns the anchor policy in use.
func (r *Reducer) Selector() AnchorSelector { return r.selector }

// Reduce consumes every point of points and returns the centroids of the
// rounds. points is copied into a private arena and is not modified. An
// empty input produces an empty result.
func (r *Reducer) Reduce(points []geom.Point) (*Result, error) {
	threshold := r.params.Threshold
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := validatePoints(points); err != nil {
		return nil, err
	}

	start := time.Now()
	arena := NewArena(points)
	result := &Result{
		InputCount: len(points),
		Centroids:  make([]geom.Point, 0),
		Policy:     r.selector.Name(),
		Threshold:  threshold,
	}

	for arena.Remaining() > 0 {
		anchor := r.selector.Select(arena)
		if !arena.Alive(anchor) {
			return nil, fmt.Errorf("round %d: policy %s chose index %d: %w",
				len(result.Rounds), r.selector.Name(), anchor, ErrBadAnchor)
		}

		c, err := ClusterArena(arena, anchor, threshold)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", len(result.Rounds), err)
		}
		for _, i := range c.Members {
			arena.Consume(i)
		}

		result.Centroids = append(result.Centroids, c.Centroid)
		result.Rounds = append(result.Rounds, Round{
			Anchor:   c.Anchor,
			Centroid: c.Centroid,
			Members:  c.Members,
		})
		monitoring.Debugf("[reduce] round=%d anchor=%d members=%d centroid=%v remaining=%d",
			len(result.Rounds), c.Anchor, len(c.Members), c.Centroid, arena.Remaining())
	}

	result.Elapsed = time.Since(start)
	monitoring.Logf("[reduce] %d points -> %d centroids (threshold=%g policy=%s) in %v",
		result.InputCount, len(result.Centroids), threshold, result.Policy, result.Elapsed)

	return result, nil
}

// Reduce runs a first-alive reduction of points with the given threshold
// and returns only the centroids.
func Reduce(points []geom.Point, threshold float64) ([]geom.Point, error) {
	res, err := NewReducer(threshold, nil).Reduce(points)
	if err != nil {
		return nil, err
	}
	return res.Centroids, nil
}
