package reduce

import "github.com/banshee-data/pointreduce/internal/geom"

// Arena is the working set of a reduction. Points never move: consuming
// a point clears its alive flag, so indices stay valid for the whole run
// and removal order does not matter.
type Arena struct {
	points    []geom.Point
	alive     []bool
	remaining int

	// head and tail bound the alive range; every index outside
	// [head, tail] is dead.
	head int
	tail int
}

// NewArena copies points into a new arena with every point alive.
func NewArena(points []geom.Point) *Arena {
	a := &Arena{
		points:    make([]geom.Point, len(points)),
		alive:     make([]bool, len(points)),
		remaining: len(points),
		tail:      len(points) - 1,
	}
	copy(a.points, points)
	for i := range a.alive {
		a.alive[i] = true
	}
	return a
}

// Len returns the number of points the arena was created with.
func (a *Arena) Len() int { return len(a.points) }

// Remaining returns the number of points not yet consumed.
func (a *Arena) Remaining() int { return a.remaining }

// Point returns the point at index i, alive or not.
func (a *Arena) Point(i int) geom.Point { return a.points[i] }

// Alive reports whether index i is in range and not yet consumed.
func (a *Arena) Alive(i int) bool {
	return i >= 0 && i < len(a.alive) && a.alive[i]
}

// Consume marks index i as used. It reports false if i was already dead
// or out of range.
func (a *Arena) Consume(i int) bool {
	if !a.Alive(i) {
		return false
	}
	a.alive[i] = false
	a.remaining--
	return true
}

// FirstAlive returns the lowest alive index, or -1 when the arena is
// exhausted. This is the point a spliced slice would hold at position 0.
func (a *Arena) FirstAlive() int {
	for a.head < len(a.alive) && !a.alive[a.head] {
		a.head++
	}
	if a.head >= len(a.alive) {
		return -1
	}
	return a.head
}

// LastAlive returns the highest alive index, or -1 when the arena is
// exhausted.
func (a *Arena) LastAlive() int {
	for a.tail >= 0 && !a.alive[a.tail] {
		a.tail--
	}
	return a.tail
}

// AliveIndices returns the alive indices in ascending order.
func (a *Arena) AliveIndices() []int {
	out := make([]int, 0, a.remaining)
	first, last := a.FirstAlive(), a.LastAlive()
	if first < 0 {
		return out
	}
	for i := first; i <= last; i++ {
		if a.alive[i] {
			out = append(out, i)
		}
	}
	return out
}

// AlivePoints returns the positions of alive points in index order.
func (a *Arena) AlivePoints() []geom.Point {
	idx := a.AliveIndices()
	out := make([]geom.Point, len(idx))
	for k, i := range idx {
		out[k] = a.points[i]
	}
	return out
}
