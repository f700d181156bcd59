package scheduler

import (
	"slices"

	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
)

// WorkOrder lists every node index of a tree, most in need of refinement
// first. It is rebuilt after each score recomputation and never mutated
// while lanes read it.
type WorkOrder []int32

// BuildWorkOrder sorts all nodes of tree by descending score. Ties are
// broken by ascending node index so the order is deterministic.
func BuildWorkOrder(tree *quadtree.Tree) WorkOrder {
	order := make(WorkOrder, tree.Len())
	for i := range order {
		order[i] = int32(i)
	}

	slices.SortStableFunc(order, func(a, b int32) int {
		da, db := tree.Node(int(a)).Diff, tree.Node(int(b)).Diff
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		default:
			return int(a - b)
		}
	})
	return order
}

// Sorted reports whether scores along the order never increase
func (o WorkOrder) Sorted(tree *quadtree.Tree) bool {
	for i := 1; i < len(o); i++ {
		if tree.Node(int(o[i])).Diff > tree.Node(int(o[i-1])).Diff {
			return false
		}
	}
	return true
}
