package geometry

import (
	"math"
	"sync"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

// FrameEpsilon is the per-component tolerance under which two frames are
// considered the same viewpoint
const FrameEpsilon = 1e-4

// Frame is a camera pose: where the eye is, what it looks at, which way is
// up, and the vertical field of view in degrees.
type Frame struct {
	Center core.Vec3 `json:"center"`
	LookAt core.Vec3 `json:"look_at"`
	Up     core.Vec3 `json:"up"`
	VFov   float64   `json:"vfov"`
}

// FuzzyEqual reports whether two frames describe the same viewpoint
func (f Frame) FuzzyEqual(other Frame) bool {
	return f.Center.FuzzyEqual(other.Center, FrameEpsilon) &&
		f.LookAt.FuzzyEqual(other.LookAt, FrameEpsilon) &&
		f.Up.FuzzyEqual(other.Up, FrameEpsilon) &&
		math.Abs(f.VFov-other.VFov) <= FrameEpsilon
}

// basis returns the camera's right, up and backward unit vectors
func (f Frame) basis() (u, v, w core.Vec3) {
	w = f.Center.Subtract(f.LookAt).Normalize()
	u = f.Up.Cross(w).Normalize()
	v = w.Cross(u)
	return u, v, w
}

// Ray returns the primary ray through raster point (x, y) of a width x
// height image. Raster y grows downward.
func (f Frame) Ray(x, y float64, width, height int) core.Ray {
	u, v, w := f.basis()

	halfHeight := math.Tan(f.VFov * math.Pi / 360.0)
	halfWidth := halfHeight * float64(width) / float64(height)

	ndcX := 2*x/float64(width) - 1
	ndcY := 1 - 2*y/float64(height)

	direction := w.Negate().
		Add(u.Multiply(ndcX * halfWidth)).
		Add(v.Multiply(ndcY * halfHeight))

	return core.NewRay(f.Center, direction.Normalize())
}

// Camera holds the current viewpoint. It is safe to read and move from
// multiple goroutines.
type Camera struct {
	mu    sync.RWMutex
	frame Frame
}

// NewCamera creates a camera at the given frame
func NewCamera(frame Frame) *Camera {
	return &Camera{frame: frame}
}

// Frame returns a snapshot of the current viewpoint
func (c *Camera) Frame() Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// SetFrame replaces the viewpoint
func (c *Camera) SetFrame(frame Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
}

// Move translates the eye and the look-at point together, in camera space:
// X right, Y up, Z forward.
func (c *Camera) Move(delta core.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, v, w := c.frame.basis()
	offset := u.Multiply(delta.X).Add(v.Multiply(delta.Y)).Add(w.Multiply(-delta.Z))
	c.frame.Center = c.frame.Center.Add(offset)
	c.frame.LookAt = c.frame.LookAt.Add(offset)
}

// Orbit rotates the eye around the look-at point about the world Y axis
func (c *Camera) Orbit(degrees float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	offset := c.frame.Center.Subtract(c.frame.LookAt)
	rotated := offset.Rotate(core.NewVec3(0, degrees*math.Pi/180.0, 0))
	c.frame.Center = c.frame.LookAt.Add(rotated)
}

// Turn rotates the look-at point around the eye about the world Y axis
func (c *Camera) Turn(degrees float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	offset := c.frame.LookAt.Subtract(c.frame.Center)
	rotated := offset.Rotate(core.NewVec3(0, degrees*math.Pi/180.0, 0))
	c.frame.LookAt = c.frame.Center.Add(rotated)
}
