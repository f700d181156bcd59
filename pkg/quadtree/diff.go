package quadtree

import (
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

// ErrTypeUnknownFormula is the error type returned for unknown formula names.
const ErrTypeUnknownFormula = "unknown_diff_formula"

const (
	diffRescaleLimit  = 10.0
	diffRescaleFactor = 100.0
)

// DiffFormula selects how child deltas are summed into a neighbor-difference
// score.
type DiffFormula int

const (
	// DiffLegacy sums NE, NW and SW, counting SW twice and leaving SE out.
	DiffLegacy DiffFormula = iota
	// DiffBalanced sums all four children once.
	DiffBalanced
)

func (f DiffFormula) String() string {
	switch f {
	case DiffBalanced:
		return "balanced"
	default:
		return "legacy"
	}
}

// ParseDiffFormula returns the formula with the given name
func ParseDiffFormula(name string) (DiffFormula, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "legacy":
		return DiffLegacy, nil
	case "balanced":
		return DiffBalanced, nil
	default:
		return DiffLegacy, errors.New("unknown diff formula").
			WithType(ErrTypeUnknownFormula).
			WithTag("formula", name)
	}
}

// Score computes the neighbor-difference score of node i from the current
// node colors. Leaves score 0.
func (t *Tree) Score(i int, formula DiffFormula) float64 {
	n := &t.nodes[i]
	if n.IsLeaf() {
		return 0
	}

	first := int(n.children)
	delta := func(q Quadrant) core.Vec3 {
		return t.nodes[first+int(q)].Color.Subtract(n.Color)
	}

	sum := delta(NE).Add(delta(NW)).Add(delta(SW))
	if formula == DiffBalanced {
		sum = sum.Add(delta(SE))
	} else {
		sum = sum.Add(delta(SW))
	}

	diff := sum.Multiply(0.25).Length()
	if diff > diffRescaleLimit {
		diff /= diffRescaleFactor
	}
	return diff
}

// Aggregate sets the color of node i to the mean of every sample it covers,
// using its own samples and the current colors of its children. Children
// must already be aggregated.
func (t *Tree) Aggregate(i int) {
	n := &t.nodes[i]
	if n.total == 0 {
		return
	}

	sum := core.Vec3{}
	for _, s := range n.Samples {
		sum = sum.Add(s.Color)
	}
	if !n.IsLeaf() {
		first := int(n.children)
		for _, q := range Quadrants {
			child := &t.nodes[first+int(q)]
			sum = sum.Add(child.Color.Multiply(float64(child.total)))
		}
	}

	n.Color = sum.Multiply(1.0 / float64(n.total))
}

// SampleMean returns the mean color of the samples node i holds directly
func (t *Tree) SampleMean(i int) (core.Vec3, bool) {
	n := &t.nodes[i]
	if len(n.Samples) == 0 {
		return core.Vec3{}, false
	}

	sum := core.Vec3{}
	for _, s := range n.Samples {
		sum = sum.Add(s.Color)
	}
	return sum.Multiply(1.0 / float64(len(n.Samples))), true
}

// Refresh aggregates colors and recomputes scores over the subtree rooted
// at i, children first.
func (t *Tree) Refresh(i int, formula DiffFormula) {
	n := &t.nodes[i]
	if !n.IsLeaf() {
		first := int(n.children)
		for _, q := range Quadrants {
			t.Refresh(first+int(q), formula)
		}
	}
	t.Aggregate(i)
	n.Diff = t.Score(i, formula)
}
