package quadtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertOutsideBounds(t *testing.T) {
	tree := New(NewRect(0, 0, 10, 10))

	require.False(t, tree.Insert(-0.5, 3.5))
	require.False(t, tree.Insert(3.5, 10.5))
	require.Equal(t, 0, tree.PointCount())
}

func TestInsertDeduplicatesByPixel(t *testing.T) {
	tree := New(NewRect(0, 0, 10, 10))

	require.True(t, tree.Insert(2.5, 3.5))
	require.False(t, tree.Insert(2.5, 3.5))
	require.False(t, tree.Insert(2.9, 3.1), "same truncated pixel must be rejected")
	require.Equal(t, 1, tree.PointCount())
}

func TestInsertDeduplicatesAcrossQuadrantEdges(t *testing.T) {
	tree := New(NewRect(0, 0, 10, 10), WithCapacity(1), WithMinArea(1))

	require.True(t, tree.Insert(1.5, 1.5))
	require.True(t, tree.Insert(5.0, 2.0), "x=5 lies on the edge between NW and NE")
	require.False(t, tree.Insert(5.3, 2.0))
	require.False(t, tree.Insert(5.9, 2.9))
	require.Equal(t, 2, tree.PointCount())

	owners := 0
	tree.Walk(tree.Root(), func(_ int, n *Node) {
		for _, s := range n.Samples {
			if x, y := s.Pixel(); x == 5 && y == 2 {
				owners++
			}
		}
	})
	require.Equal(t, 1, owners)
}

func TestInsertIdempotentAfterSubdivision(t *testing.T) {
	tree := Build(16, 16, WithCapacity(2), WithMinArea(1))
	require.Equal(t, 256, tree.PointCount())
	require.Greater(t, tree.Size(), 1)

	for j := 0; j < 16; j++ {
		for i := 0; i < 16; i++ {
			require.False(t, tree.Insert(float64(i)+0.5, float64(j)+0.5))
		}
	}
	require.Equal(t, 256, tree.PointCount())
}

func TestEveryPixelOwnedByExactlyOneNode(t *testing.T) {
	width, height := 23, 17
	tree := Build(width, height, WithCapacity(3), WithMinArea(2))

	owners := make([]int, width*height)
	tree.Walk(tree.Root(), func(_ int, n *Node) {
		for _, s := range n.Samples {
			x, y := s.Pixel()
			owners[y*width+x]++
		}
	})

	for idx, count := range owners {
		require.Equal(t, 1, count, "pixel (%d,%d)", idx%width, idx/width)
	}
}

func TestGridCapacityScenarios(t *testing.T) {
	tests := []struct {
		name        string
		capacity    int
		expectSplit bool
	}{
		{"capacity above point count", 20, false},
		{"capacity below point count", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := New(NewRect(0, 0, 4, 4), WithCapacity(tt.capacity), WithMinArea(1))
			for j := 0; j < 4; j++ {
				for i := 0; i < 4; i++ {
					require.True(t, tree.Insert(float64(i)+0.5, float64(j)+0.5))
				}
			}

			require.Equal(t, 16, tree.PointCount())
			if tt.expectSplit {
				require.Greater(t, tree.Size(), 1)
			} else {
				require.Equal(t, 1, tree.Size())
			}
		})
	}
}

func TestSizeAndPointCountInvariants(t *testing.T) {
	tree := Build(40, 30)

	require.Equal(t, tree.Len(), tree.Size())

	var leafSamples, allSamples int
	tree.Walk(tree.Root(), func(_ int, n *Node) {
		allSamples += len(n.Samples)
		if n.IsLeaf() {
			leafSamples += len(n.Samples)
		}
	})
	require.Equal(t, 40*30, allSamples)
	require.Equal(t, allSamples, tree.PointCount())
	require.Equal(t, tree.PointCount(), tree.Node(tree.Root()).Total())
	require.LessOrEqual(t, leafSamples, allSamples)
}

func TestMinAreaStopsSubdivision(t *testing.T) {
	// Area 25 equals the default floor, so the root never splits.
	tree := Build(5, 5)

	require.Equal(t, 1, tree.Size())
	require.Equal(t, 25, len(tree.Node(tree.Root()).Samples))
}

func TestNodeKeepsFirstSamplesAfterSplit(t *testing.T) {
	tree := Build(10, 10, WithCapacity(5), WithMinArea(1))
	root := tree.Node(tree.Root())

	require.False(t, root.IsLeaf())
	require.Len(t, root.Samples, 5)
	for i, s := range root.Samples {
		x, y := s.Pixel()
		require.Equal(t, i, x)
		require.Equal(t, 0, y)
	}
}

func TestChildGeometry(t *testing.T) {
	tree := Build(8, 8, WithCapacity(1), WithMinArea(1))

	expected := map[Quadrant]Rect{
		NE: NewRect(4, 0, 4, 4),
		NW: NewRect(0, 0, 4, 4),
		SW: NewRect(0, 4, 4, 4),
		SE: NewRect(4, 4, 4, 4),
	}
	for q, rect := range expected {
		child, ok := tree.Child(tree.Root(), q)
		require.True(t, ok)
		require.Equal(t, rect, tree.Node(child).Bounds, "quadrant %s", q)
	}
}

func TestDepthBoundedByResolution(t *testing.T) {
	tree := Build(64, 64, WithCapacity(1), WithMinArea(1))

	// 64 -> 1 unit wide takes six halvings, plus the root level.
	require.LessOrEqual(t, tree.Depth(), 8)
	require.Greater(t, tree.Depth(), 1)
}
