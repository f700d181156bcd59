package material

import (
	"math"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

// Dielectric represents a transparent material like glass that both reflects
// and refracts. Each hit yields a Fresnel-weighted pair of impulses.
type Dielectric struct {
	RefractiveIndex float64   // Index of refraction (e.g., 1.5 for glass)
	Tint            core.Vec3 // Transmission color
}

// NewDielectric creates a new clear dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex, Tint: core.NewVec3(1, 1, 1)}
}

// NewTintedDielectric creates a dielectric that filters transmitted light
func NewTintedDielectric(refractiveIndex float64, tint core.Vec3) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex, Tint: tint}
}

// BRDF is zero; glass only scatters through impulses
func (d *Dielectric) BRDF(toLight, toViewer core.Vec3, hit *HitRecord) core.Vec3 {
	return core.Vec3{}
}

// Impulses returns the reflected and refracted directions. Under total
// internal reflection only the reflection is returned, at full weight.
func (d *Dielectric) Impulses(incoming core.Vec3, hit *HitRecord) []Impulse {
	refractionRatio := d.RefractiveIndex // Exiting the material
	if hit.FrontFace {
		refractionRatio = 1.0 / d.RefractiveIndex
	}

	unitDirection := incoming.Normalize()
	cosTheta := math.Min(-unitDirection.Dot(hit.Normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	reflected := reflect(unitDirection, hit.Normal)
	if refractionRatio*sinTheta > 1.0 {
		return []Impulse{{Direction: reflected, Weight: core.NewVec3(1, 1, 1)}}
	}

	fresnel := Reflectance(cosTheta, refractionRatio)
	return []Impulse{
		{Direction: reflected, Weight: core.NewVec3(fresnel, fresnel, fresnel)},
		{
			Direction: refractVector(unitDirection, hit.Normal, refractionRatio).Normalize(),
			Weight:    d.Tint.Multiply(1 - fresnel),
		},
	}
}

// refractVector calculates the refraction of a vector using Snell's law
func refractVector(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
