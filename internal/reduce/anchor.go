package reduce

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/banshee-data/pointreduce/internal/geom"
)

// Anchor policy names accepted by NewAnchorSelector and the config file.
const (
	PolicyFirst    = "first"
	PolicyLast     = "last"
	PolicyRandom   = "random"
	PolicyFarthest = "farthest"
)

// AnchorSelector picks the anchor for the next round.
// This lets the driver run with different anchor policies without any
// change to the round logic.
type AnchorSelector interface {
	// Select returns an alive index of a. It is only called while
	// a.Remaining() > 0.
	Select(a *Arena) int

	// Name returns the policy name, as used in config and logs.
	Name() string
}

// FirstAliveSelector anchors on the lowest alive index. Reductions run
// with it match the classic splice-and-take-element-zero loop exactly.
type FirstAliveSelector struct{}

func (FirstAliveSelector) Select(a *Arena) int { return a.FirstAlive() }
func (FirstAliveSelector) Name() string        { return PolicyFirst }

// LastAliveSelector anchors on the highest alive index.
type LastAliveSelector struct{}

func (LastAliveSelector) Select(a *Arena) int { return a.LastAlive() }
func (LastAliveSelector) Name() string        { return PolicyLast }

// RandomSelector anchors on a uniformly chosen alive point. The sequence
// is fixed by the seed.
type RandomSelector struct {
	rng *rand.Rand
}

// NewRandomSelector creates a RandomSelector seeded with seed.
func NewRandomSelector(seed uint64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSelector) Select(a *Arena) int {
	alive := a.AliveIndices()
	if len(alive) == 0 {
		return -1
	}
	return alive[s.rng.IntN(len(alive))]
}

func (s *RandomSelector) Name() string { return PolicyRandom }

// FarthestSelector anchors on the alive point farthest from the mean of
// all alive points, so the outskirts are consumed first. Ties go to the
// lowest index.
type FarthestSelector struct{}

func (FarthestSelector) Select(a *Arena) int {
	alive := a.AliveIndices()
	if len(alive) == 0 {
		return -1
	}
	mean, _ := geom.Mean(a.AlivePoints())

	best, bestDist := alive[0], -1.0
	for _, i := range alive {
		if d := geom.Distance(mean, a.Point(i)); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (FarthestSelector) Name() string { return PolicyFarthest }

// NewAnchorSelector returns the selector for a policy name. The seed is
// only used by the random policy. An empty name selects PolicyFirst.
func NewAnchorSelector(policy string, seed uint64) (AnchorSelector, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", PolicyFirst:
		return FirstAliveSelector{}, nil
	case PolicyLast:
		return LastAliveSelector{}, nil
	case PolicyRandom:
		return NewRandomSelector(seed), nil
	case PolicyFarthest:
		return FarthestSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown anchor policy %q (want %s, %s, %s or %s): %w",
			policy, PolicyFirst, PolicyLast, PolicyRandom, PolicyFarthest, ErrInvalidInput)
	}
}

// Verify at compile time that the selectors implement AnchorSelector.
var (
	_ AnchorSelector = FirstAliveSelector{}
	_ AnchorSelector = LastAliveSelector{}
	_ AnchorSelector = (*RandomSelector)(nil)
	_ AnchorSelector = FarthestSelector{}
)
