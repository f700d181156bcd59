package scheduler

import (
	"context"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
	"github.com/df07/go-adaptive-raytracer/pkg/raster"
	"github.com/stretchr/testify/require"
)

func newTestPass(t *testing.T, tree *quadtree.Tree, threshold float64) *pass {
	order := BuildWorkOrder(tree)
	require.True(t, order.Sorted(tree))

	w := &watermark{}
	w.reset(len(order))

	return &pass{
		tree:      tree,
		raster:    raster.New(32, 32),
		order:     order,
		tracer:    newCountingTracer(),
		frame:     testFrame(),
		threshold: threshold,
		formula:   quadtree.DiffLegacy,
		visits:    &accumulator{},
		watermark: w,
	}
}

func runItems(items [LaneCount]WorkItem, fn laneFunc) {
	ls := launch(context.Background(), FastColor, items, fn)
	ls.wait()
}

func TestFastLanesStopAtStartAboveEveryScore(t *testing.T) {
	tree := quadtree.Build(32, 32, quadtree.WithMinArea(4))
	for i := 0; i < tree.Len(); i++ {
		tree.Node(i).Diff = 0.3
	}

	p := newTestPass(t, tree, MaxThreshold)
	runItems(strideItems(0), p.fast)

	require.Equal(t, 0, p.watermark.value())
	require.Zero(t, p.totalRays())
	require.Zero(t, p.visits.len())
}

func TestWatermarkIsSmallestLaneStop(t *testing.T) {
	tree := quadtree.Build(32, 32, quadtree.WithMinArea(4))
	for i := 0; i < 6; i++ {
		tree.Node(i).Diff = 1
	}

	// Lanes stop at 8, 9, 6 and 7.
	p := newTestPass(t, tree, 0.5)
	runItems(strideItems(0), p.fast)

	require.Equal(t, 6, p.watermark.value())
	require.Equal(t, 6, p.visits.len())

	for _, stop := range []int{8, 9, 6, 7} {
		require.LessOrEqual(t, p.watermark.value(), stop)
	}
}

func TestSlowPassFillsEverythingFromWatermark(t *testing.T) {
	tree := quadtree.Build(32, 32, quadtree.WithMinArea(4))
	p := newTestPass(t, tree, DefaultThreshold)

	p.watermark.lower(0)
	runItems(strideItems(p.watermark.value()), p.slow)

	require.Equal(t, 32*32, p.raster.SetCount())
	require.Equal(t, int64(32*32), p.totalRays())
	require.Equal(t, tree.Len(), p.visits.len())

	// A second pass finds every pixel set and traces nothing.
	again := newTestPass(t, tree, DefaultThreshold)
	again.raster = p.raster
	runItems(strideItems(0), again.slow)
	require.Zero(t, again.totalRays())
}

func TestSeedAndDiffOverSubtrees(t *testing.T) {
	tree := quadtree.Build(32, 32, quadtree.WithMinArea(4))
	p := newTestPass(t, tree, DefaultThreshold)

	runItems(subtreeItems(tree), p.seedFull)
	p.finalizeRoot(true)
	require.Equal(t, 32*32, p.raster.SetCount())

	runItems(subtreeItems(tree), p.diff)
	p.finalizeRoot(false)

	// Left half black, right half white.
	require.InDelta(t, 0.5, tree.Node(tree.Root()).Color.X, 1e-9)
	require.True(t, BuildWorkOrder(tree).Sorted(tree))
	require.Greater(t, tree.Node(int(BuildWorkOrder(tree)[0])).Diff, 0.0)
}

func TestLaneFailureIsTyped(t *testing.T) {
	items := strideItems(0)
	ls := launch(context.Background(), SlowColor, items, func(_ context.Context, item WorkItem) {
		if item.Lane == 2 {
			panic("boom")
		}
	})
	ls.wait()

	for lane, err := range ls.failures {
		if lane != 2 {
			require.NoError(t, err)
			continue
		}
		require.Error(t, err)
		require.Contains(t, err.Error(), "boom")
		require.Equal(t, ErrTypeLaneFailure, errors.Type(err))
	}
	require.False(t, ls.interrupted())
}

func TestStoppedLanesAreInterrupted(t *testing.T) {
	started := make(chan struct{}, LaneCount)
	ls := launch(context.Background(), FastColor, strideItems(0), func(ctx context.Context, _ WorkItem) {
		started <- struct{}{}
		<-ctx.Done()
	})

	for i := 0; i < LaneCount; i++ {
		<-started
	}
	require.False(t, ls.finished())

	ls.stop()
	require.True(t, ls.finished())
	require.True(t, ls.interrupted())
}
