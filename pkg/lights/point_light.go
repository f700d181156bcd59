// Package lights provides the light sources used for direct illumination.
package lights

import (
	"math"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

// PointLight emits power uniformly in all directions from a single point
type PointLight struct {
	Position core.Vec3
	Power    core.Vec3 // Radiant power per channel
}

// NewPointLight creates a new point light
func NewPointLight(position, power core.Vec3) *PointLight {
	return &PointLight{Position: position, Power: power}
}

// Biradiance returns Power / (4π d²) arriving at point, along with the unit
// direction toward the light and the distance to it.
func (l *PointLight) Biradiance(point core.Vec3) (core.Vec3, core.Vec3, float64) {
	toLight := l.Position.Subtract(point)
	distance2 := toLight.LengthSquared()
	if distance2 == 0 {
		return core.Vec3{}, core.Vec3{}, 0
	}

	distance := math.Sqrt(distance2)
	biradiance := l.Power.Multiply(1.0 / (4.0 * math.Pi * distance2))
	return biradiance, toLight.Multiply(1.0 / distance), distance
}
