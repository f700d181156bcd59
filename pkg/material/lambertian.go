package material

import (
	"math"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// BRDF is constant: albedo / π above the surface, zero below
func (l *Lambertian) BRDF(toLight, toViewer core.Vec3, hit *HitRecord) core.Vec3 {
	if toLight.Dot(hit.Normal) <= 0 {
		return core.Vec3{}
	}
	return l.Albedo.Multiply(1.0 / math.Pi)
}

// Impulses returns nothing; a diffuse surface has no specular component
func (l *Lambertian) Impulses(incoming core.Vec3, hit *HitRecord) []Impulse {
	return nil
}
