package material

import (
	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

// Material describes how a surface scatters light in a Whitted-style tracer:
// a finite BRDF evaluated against each light, plus a set of perfect
// specular impulses that are followed recursively.
type Material interface {
	// BRDF returns the finite scattering density for light arriving from
	// toLight and leaving toward toViewer. Both directions point away from
	// the surface and are normalized.
	BRDF(toLight, toViewer core.Vec3, hit *HitRecord) core.Vec3

	// Impulses returns the specular directions to follow for a ray arriving
	// along incoming, with the weight each contributes.
	Impulses(incoming core.Vec3, hit *HitRecord) []Impulse
}

// Impulse is one perfect specular bounce
type Impulse struct {
	Direction core.Vec3 // Normalized outgoing direction
	Weight    core.Vec3 // Per-channel magnitude
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal at intersection, facing the ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
	Material  Material  // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Multiply(-1)
	}
}

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
