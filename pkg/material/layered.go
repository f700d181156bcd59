package material

import (
	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

// Layered represents a coated surface: a transparent outer layer over an
// opaque inner material. The coating contributes its reflections, and the
// inner material shades whatever the coating lets through.
type Layered struct {
	Outer Material // Outer layer material (e.g., a dielectric coating)
	Inner Material // Inner layer material (e.g., base material)
}

// NewLayered creates a new layered material
func NewLayered(outer, inner Material) *Layered {
	return &Layered{
		Outer: outer,
		Inner: inner,
	}
}

// BRDF returns the inner BRDF attenuated by the coating's reflectance
// toward the viewer
func (l *Layered) BRDF(toLight, toViewer core.Vec3, hit *HitRecord) core.Vec3 {
	transmitted := core.NewVec3(1, 1, 1).Subtract(l.coatReflectance(toViewer.Negate(), hit))
	return l.Inner.BRDF(toLight, toViewer, hit).MultiplyVec(transmitted).
		Add(l.Outer.BRDF(toLight, toViewer, hit))
}

// Impulses returns the outward impulses of both layers. Transmission
// through the coating is absorbed by the inner material.
func (l *Layered) Impulses(incoming core.Vec3, hit *HitRecord) []Impulse {
	var result []Impulse
	for _, impulse := range l.Outer.Impulses(incoming, hit) {
		if impulse.Direction.Dot(hit.Normal) > 0 {
			result = append(result, impulse)
		}
	}
	return append(result, l.Inner.Impulses(incoming, hit)...)
}

func (l *Layered) coatReflectance(incoming core.Vec3, hit *HitRecord) core.Vec3 {
	var reflectance core.Vec3
	for _, impulse := range l.Outer.Impulses(incoming, hit) {
		if impulse.Direction.Dot(hit.Normal) > 0 {
			reflectance = reflectance.Add(impulse.Weight)
		}
	}
	return reflectance.Clamp(0, 1)
}
