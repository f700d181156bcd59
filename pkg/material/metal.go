package material

import (
	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

// Metal represents a perfect mirror tinted by its albedo
type Metal struct {
	Albedo core.Vec3 // Metal color
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3) *Metal {
	return &Metal{Albedo: albedo}
}

// BRDF is zero; all light leaves through the mirror impulse
func (m *Metal) BRDF(toLight, toViewer core.Vec3, hit *HitRecord) core.Vec3 {
	return core.Vec3{}
}

// Impulses returns the mirror reflection, or nothing for rays arriving from
// below the surface
func (m *Metal) Impulses(incoming core.Vec3, hit *HitRecord) []Impulse {
	reflected := reflect(incoming.Normalize(), hit.Normal)
	if reflected.Dot(hit.Normal) <= 0 {
		return nil
	}
	return []Impulse{{Direction: reflected, Weight: m.Albedo}}
}
