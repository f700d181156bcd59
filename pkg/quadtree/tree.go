// Package quadtree implements the screen-space spatial index used to order
// refinement work. Nodes live in a flat arena and refer to their children by
// index, so a tree can be shared read-mostly between lanes without any
// ownership bookkeeping.
package quadtree

import (
	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

const (
	// DefaultCapacity is the number of samples a node holds before it subdivides.
	DefaultCapacity = 5
	// DefaultMinArea is the area at or below which a node never subdivides.
	DefaultMinArea = 25.0
)

// Quadrant identifies one child of a subdivided node. The numeric order is
// the lane order used by the scheduler.
type Quadrant int

const (
	NE Quadrant = iota
	NW
	SW
	SE
)

// Quadrants lists the quadrants in lane order.
var Quadrants = [4]Quadrant{NE, NW, SW, SE}

// insertOrder is the order in which children are offered a new point.
var insertOrder = [4]Quadrant{NW, NE, SW, SE}

func (q Quadrant) String() string {
	switch q {
	case NE:
		return "ne"
	case NW:
		return "nw"
	case SW:
		return "sw"
	case SE:
		return "se"
	default:
		return "unknown"
	}
}

// Sample is one pixel center and its most recently computed color.
type Sample struct {
	X, Y  float64
	Color core.Vec3
}

// Pixel returns the integer raster coordinates of the sample
func (s Sample) Pixel() (int, int) {
	return int(s.X), int(s.Y)
}

// Node is one rectangular region of the index. A node keeps the first
// samples it accepted; once subdivided, further points go to its children.
type Node struct {
	Bounds  Rect
	Samples []Sample
	Color   core.Vec3 // Mean color of the samples this node covers
	Diff    float64   // Neighbor-difference score

	children int32 // Index of the first of four contiguous children, -1 for a leaf
	total    int32 // Samples held by this node and all its descendants
}

// IsLeaf reports whether the node has not been subdivided
func (n *Node) IsLeaf() bool {
	return n.children < 0
}

// Total returns the number of samples in the subtree rooted at this node
func (n *Node) Total() int {
	return int(n.total)
}

// Tree is an adaptive quadtree over a raster rectangle.
type Tree struct {
	nodes    []Node
	capacity int
	minArea  float64
}

// Option configures a Tree
type Option func(*Tree)

// WithCapacity sets the number of samples a node holds before subdividing
func WithCapacity(capacity int) Option {
	return func(t *Tree) {
		t.capacity = capacity
	}
}

// WithMinArea sets the area floor below which nodes never subdivide
func WithMinArea(area float64) Option {
	return func(t *Tree) {
		t.minArea = area
	}
}

// New creates an empty tree covering bounds
func New(bounds Rect, opts ...Option) *Tree {
	t := &Tree{
		capacity: DefaultCapacity,
		minArea:  DefaultMinArea,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.nodes = append(t.nodes, newNode(bounds))
	return t
}

// Build creates a tree over a width x height raster and inserts every pixel
// center exactly once, row by row.
func Build(width, height int, opts ...Option) *Tree {
	t := New(NewRect(0, 0, float64(width), float64(height)), opts...)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			t.Insert(float64(i)+0.5, float64(j)+0.5)
		}
	}
	return t
}

func newNode(bounds Rect) Node {
	return Node{
		Bounds:   bounds,
		children: -1,
	}
}

// Insert adds a point to the tree. It returns false if the point lies
// outside the tree or a sample with the same integer pixel coordinates
// already exists.
func (t *Tree) Insert(x, y float64) bool {
	if !t.nodes[0].Bounds.Contains(x, y) {
		return false
	}
	return t.insert(0, x, y)
}

// insert routes by the center of the point's pixel, so every point of one
// pixel follows the same path and meets any earlier sample of that pixel.
func (t *Tree) insert(i int, x, y float64) bool {
	n := &t.nodes[i]
	px, py := int(x), int(y)
	if !n.Bounds.Contains(float64(px)+0.5, float64(py)+0.5) {
		return false
	}

	for _, s := range n.Samples {
		if sx, sy := s.Pixel(); sx == px && sy == py {
			return false
		}
	}

	if len(n.Samples) < t.capacity || n.Bounds.Area() <= t.minArea {
		n.Samples = append(n.Samples, Sample{X: x, Y: y})
		n.total++
		return true
	}

	if n.IsLeaf() {
		t.subdivide(i)
	}

	// subdivide may have grown the arena, so n must not be used past here
	first := int(t.nodes[i].children)
	for _, q := range insertOrder {
		if t.insert(first+int(q), x, y) {
			t.nodes[i].total++
			return true
		}
	}

	return false
}

func (t *Tree) subdivide(i int) {
	bounds := t.nodes[i].Bounds
	first := len(t.nodes)
	for _, q := range Quadrants {
		t.nodes = append(t.nodes, newNode(bounds.Quadrant(q)))
	}
	t.nodes[i].children = int32(first)
}

// Root returns the index of the root node
func (t *Tree) Root() int {
	return 0
}

// Len returns the number of nodes in the arena
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node at index i
func (t *Tree) Node(i int) *Node {
	return &t.nodes[i]
}

// Child returns the index of quadrant q of node i, if i is subdivided
func (t *Tree) Child(i int, q Quadrant) (int, bool) {
	n := &t.nodes[i]
	if n.IsLeaf() {
		return -1, false
	}
	return int(n.children) + int(q), true
}

// Size returns the number of nodes in the tree, counted recursively
func (t *Tree) Size() int {
	return t.size(0)
}

func (t *Tree) size(i int) int {
	result := 1
	n := &t.nodes[i]
	if !n.IsLeaf() {
		for _, q := range Quadrants {
			result += t.size(int(n.children) + int(q))
		}
	}
	return result
}

// PointCount returns the number of samples in the tree, counted recursively
func (t *Tree) PointCount() int {
	return t.pointCount(0)
}

func (t *Tree) pointCount(i int) int {
	n := &t.nodes[i]
	result := len(n.Samples)
	if !n.IsLeaf() {
		for _, q := range Quadrants {
			result += t.pointCount(int(n.children) + int(q))
		}
	}
	return result
}

// Depth returns the number of levels in the tree
func (t *Tree) Depth() int {
	return t.depth(0)
}

func (t *Tree) depth(i int) int {
	n := &t.nodes[i]
	if n.IsLeaf() {
		return 1
	}
	deepest := 0
	for _, q := range Quadrants {
		deepest = max(deepest, t.depth(int(n.children)+int(q)))
	}
	return deepest + 1
}

// Walk visits the subtree rooted at i in preorder
func (t *Tree) Walk(i int, fn func(i int, n *Node)) {
	n := &t.nodes[i]
	fn(i, n)
	if n.IsLeaf() {
		return
	}
	first := int(n.children)
	for _, q := range Quadrants {
		t.Walk(first+int(q), fn)
	}
}
