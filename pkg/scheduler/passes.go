package scheduler

import (
	"context"
	"sync"

	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
	"github.com/df07/go-adaptive-raytracer/pkg/raster"
)

// accumulator collects the nodes visited during a generation
type accumulator struct {
	mu    sync.Mutex
	nodes []int32
}

func (a *accumulator) add(i int) {
	a.mu.Lock()
	a.nodes = append(a.nodes, int32(i))
	a.mu.Unlock()
}

func (a *accumulator) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodes)
}

func (a *accumulator) reset() {
	a.mu.Lock()
	a.nodes = a.nodes[:0]
	a.mu.Unlock()
}

// watermark is the WorkOrder index below which the fast pass has already
// refined every node.
type watermark struct {
	mu    sync.Mutex
	index int
	limit int
}

// lower moves the watermark down to i, never up
func (w *watermark) lower(i int) {
	w.mu.Lock()
	if i < w.index {
		w.index = max(i, 0)
	}
	w.mu.Unlock()
}

func (w *watermark) reset(n int) {
	w.mu.Lock()
	w.index = n
	w.limit = n
	w.mu.Unlock()
}

func (w *watermark) value() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return min(w.index, w.limit)
}

// pass is the state shared by the lanes of one phase. Everything except the
// raster, node colors, and the two locked collections is read-only while
// lanes run.
type pass struct {
	tree      *quadtree.Tree
	raster    *raster.Raster
	order     WorkOrder
	tracer    Tracer
	frame     geometry.Frame
	threshold float64
	formula   quadtree.DiffFormula
	visits    *accumulator
	watermark *watermark

	// One counter per lane, read after join
	rays [LaneCount]int64
}

func (p *pass) totalRays() int64 {
	var total int64
	for _, n := range p.rays {
		total += n
	}
	return total
}

// shade traces the sample if its pixel has not been computed in this
// generation.
func (p *pass) shade(lane int, s *quadtree.Sample) {
	x, y := s.Pixel()
	if p.raster.IsSet(x, y) {
		return
	}

	ray := p.frame.Ray(s.X, s.Y, p.raster.Width(), p.raster.Height())
	c := p.tracer.Trace(ray)
	s.Color = c
	p.raster.Set(x, y, c)
	p.rays[lane]++
}

// refine traces every unset sample of node i and sets its color to the mean
// of its samples.
func (p *pass) refine(lane, i int) {
	n := p.tree.Node(i)
	for k := range n.Samples {
		p.shade(lane, &n.Samples[k])
	}
	p.visits.add(i)

	if mean, ok := p.tree.SampleMean(i); ok {
		n.Color = mean
	}
}

// seedFull traces every sample in the lane's subtree, aggregating node
// colors on the way back up.
func (p *pass) seedFull(ctx context.Context, item WorkItem) {
	if item.Root < 0 {
		return
	}
	p.seedNode(ctx, item.Lane, item.Root)
}

func (p *pass) seedNode(ctx context.Context, lane, i int) bool {
	if ctx.Err() != nil {
		return false
	}

	n := p.tree.Node(i)
	for k := range n.Samples {
		p.shade(lane, &n.Samples[k])
	}
	p.visits.add(i)

	for _, q := range quadtree.Quadrants {
		child, ok := p.tree.Child(i, q)
		if !ok {
			break
		}
		if !p.seedNode(ctx, lane, child) {
			return false
		}
	}

	p.tree.Aggregate(i)
	return true
}

// seedPreview traces one sample per high-scoring node: the one nearest the
// node center. It gives a coarse image right after the viewpoint moves.
func (p *pass) seedPreview(ctx context.Context, item WorkItem) {
	i := item.Start
	defer func() {
		p.watermark.lower(min(i, len(p.order)))
	}()

	for ; i < len(p.order); i += LaneCount {
		if ctx.Err() != nil {
			return
		}

		idx := int(p.order[i])
		n := p.tree.Node(idx)
		if n.Diff <= p.threshold {
			return
		}

		if s := nearestCenter(n); s != nil {
			p.shade(item.Lane, s)
		}
	}
}

func nearestCenter(n *quadtree.Node) *quadtree.Sample {
	cx, cy := n.Bounds.Center()

	var nearest *quadtree.Sample
	best := 0.0
	for k := range n.Samples {
		s := &n.Samples[k]
		dx, dy := s.X-cx, s.Y-cy
		if d := dx*dx + dy*dy; nearest == nil || d < best {
			nearest, best = s, d
		}
	}
	return nearest
}

// fast refines nodes along the lane's stride of the WorkOrder while their
// score is above the threshold. The index it stops at lowers the watermark.
func (p *pass) fast(ctx context.Context, item WorkItem) {
	i := item.Start
	defer func() {
		p.watermark.lower(min(i, len(p.order)))
	}()

	for ; i < len(p.order); i += LaneCount {
		if ctx.Err() != nil {
			return
		}

		idx := int(p.order[i])
		if p.tree.Node(idx).Diff <= p.threshold {
			return
		}
		p.refine(item.Lane, idx)
	}
}

// slow refines every node from the lane's start to the end of the WorkOrder
func (p *pass) slow(ctx context.Context, item WorkItem) {
	for i := item.Start; i < len(p.order); i += LaneCount {
		if ctx.Err() != nil {
			return
		}
		p.refine(item.Lane, int(p.order[i]))
	}
}

// diff refreshes colors and scores over the lane's subtree, children first
func (p *pass) diff(ctx context.Context, item WorkItem) {
	if item.Root < 0 {
		return
	}
	p.diffNode(ctx, item.Root)
}

func (p *pass) diffNode(ctx context.Context, i int) bool {
	if ctx.Err() != nil {
		return false
	}

	for _, q := range quadtree.Quadrants {
		child, ok := p.tree.Child(i, q)
		if !ok {
			break
		}
		if !p.diffNode(ctx, child) {
			return false
		}
	}

	p.tree.Aggregate(i)
	p.tree.Node(i).Diff = p.tree.Score(i, p.formula)
	return true
}

// finalizeRoot handles the root node, which no lane owns when the tree is
// subdivided.
func (p *pass) finalizeRoot(trace bool) {
	root := p.tree.Root()
	if trace {
		n := p.tree.Node(root)
		for k := range n.Samples {
			p.shade(0, &n.Samples[k])
		}
	}
	p.tree.Aggregate(root)
	p.tree.Node(root).Diff = p.tree.Score(root, p.formula)
}

// subtreeItems assigns each lane the root child of its quadrant. A root
// without children is owned by lane 0.
func subtreeItems(tree *quadtree.Tree) [LaneCount]WorkItem {
	var items [LaneCount]WorkItem
	root := tree.Root()
	for lane, q := range quadtree.Quadrants {
		items[lane] = WorkItem{Lane: lane, Root: -1}
		if child, ok := tree.Child(root, q); ok {
			items[lane].Root = child
		}
	}
	if tree.Node(root).IsLeaf() {
		items[0].Root = root
	}
	return items
}

// strideItems starts lane k at WorkOrder index start+k
func strideItems(start int) [LaneCount]WorkItem {
	var items [LaneCount]WorkItem
	for lane := range items {
		items[lane] = WorkItem{Lane: lane, Root: -1, Start: start + lane}
	}
	return items
}
