package quadtree

// Rect is an axis-aligned rectangle in raster space (y grows downward).
type Rect struct {
	X, Y float64 // Top-left corner
	W, H float64
}

// NewRect creates a rectangle from its top-left corner and size
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Contains reports whether the point lies inside the rectangle, edges included
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x <= r.X+r.W && y <= r.Y+r.H
}

// Area returns the rectangle area in raster units
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Center returns the center point of the rectangle
func (r Rect) Center() (float64, float64) {
	return r.X + r.W*0.5, r.Y + r.H*0.5
}

// Quadrant returns one of the four equal sub-rectangles split at the center
func (r Rect) Quadrant(q Quadrant) Rect {
	hw, hh := r.W*0.5, r.H*0.5
	switch q {
	case NE:
		return Rect{X: r.X + hw, Y: r.Y, W: hw, H: hh}
	case NW:
		return Rect{X: r.X, Y: r.Y, W: hw, H: hh}
	case SW:
		return Rect{X: r.X, Y: r.Y + hh, W: hw, H: hh}
	default:
		return Rect{X: r.X + hw, Y: r.Y + hh, W: hw, H: hh}
	}
}
