// Package renderer computes the color of a single camera ray with
// recursive Whitted-style ray tracing: direct light from point sources with
// shadow rays, plus perfect specular reflection and refraction.
package renderer

import (
	"math"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/lights"
	"github.com/df07/go-adaptive-raytracer/pkg/material"
)

// BumpDistance offsets secondary ray origins off the surface they leave
const BumpDistance = 1e-4

// minHitDistance is the smallest ray parameter any hit query accepts
const minHitDistance = BumpDistance * 0.01

const maxDistance = math.MaxFloat64

// Config contains rendering configuration
type Config struct {
	MaxBounces int // Maximum number of specular bounces
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		MaxBounces: 3,
	}
}

// Scene interface to avoid circular imports
type Scene interface {
	Shapes() []geometry.Shape
	Lights() []*lights.PointLight
	BackgroundColors() (topColor, bottomColor core.Vec3)
}

// Raytracer traces rays against a scene. It holds no mutable state, so a
// single instance can be shared by any number of goroutines.
type Raytracer struct {
	scene  Scene
	config Config
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, config Config) *Raytracer {
	return &Raytracer{
		scene:  scene,
		config: config,
	}
}

// Trace returns the radiance arriving along ray
func (rt *Raytracer) Trace(ray core.Ray) core.Vec3 {
	return rt.rayColorRecursive(ray, 0)
}

// hitWorld checks if a ray hits any object in the scene
func (rt *Raytracer) hitWorld(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range rt.scene.Shapes() {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// Inspect returns the closest shape along a ray and the hit record for it
func (rt *Raytracer) Inspect(ray core.Ray) (geometry.Shape, *material.HitRecord, bool) {
	var closestShape geometry.Shape
	var closestHit *material.HitRecord
	closestSoFar := maxDistance

	for _, shape := range rt.scene.Shapes() {
		if hit, isHit := shape.Hit(ray, minHitDistance, closestSoFar); isHit {
			closestSoFar = hit.T
			closestShape, closestHit = shape, hit
		}
	}

	return closestShape, closestHit, closestHit != nil
}

// lineOfSight reports whether nothing blocks the segment from a to b
func (rt *Raytracer) lineOfSight(a, b core.Vec3) bool {
	d := b.Subtract(a)
	distance := d.Length()
	if distance == 0 {
		return true
	}

	ray := core.NewRay(a, d.Multiply(1.0/distance))
	for _, shape := range rt.scene.Shapes() {
		if _, isHit := shape.Hit(ray, minHitDistance, distance); isHit {
			return false
		}
	}
	return true
}

// backgroundGradient returns a gradient color based on ray direction
func (rt *Raytracer) backgroundGradient(r core.Ray) core.Vec3 {
	topColor, bottomColor := rt.scene.BackgroundColors()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (r.Direction.Normalize().Y + 1.0)

	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}

// directLight sums the unshadowed contribution of every point light
func (rt *Raytracer) directLight(r core.Ray, hit *material.HitRecord) core.Vec3 {
	radiance := core.Vec3{}
	toViewer := r.Direction.Normalize().Negate()
	origin := hit.Point.Add(hit.Normal.Multiply(BumpDistance))

	for _, light := range rt.scene.Lights() {
		biradiance, toLight, distance := light.Biradiance(hit.Point)
		if distance == 0 {
			continue
		}

		cosine := toLight.Dot(hit.Normal)
		if cosine <= 0 || !rt.lineOfSight(origin, light.Position) {
			continue
		}

		brdf := hit.Material.BRDF(toLight, toViewer, hit)
		radiance = radiance.Add(brdf.MultiplyVec(biradiance).Multiply(cosine))
	}

	return radiance
}

// rayColorRecursive returns the radiance for a ray that has already
// bounced the given number of times
func (rt *Raytracer) rayColorRecursive(r core.Ray, bounce int) core.Vec3 {
	hit, isHit := rt.hitWorld(r, minHitDistance, maxDistance)
	if !isHit {
		return rt.backgroundGradient(r)
	}

	radiance := rt.directLight(r, hit)

	if bounce >= rt.config.MaxBounces {
		return radiance
	}

	for _, impulse := range hit.Material.Impulses(r.Direction, hit) {
		// Bump along the normal on the side the impulse leaves from
		side := 1.0
		if impulse.Direction.Dot(hit.Normal) < 0 {
			side = -1.0
		}
		origin := hit.Point.Add(hit.Normal.Multiply(side * BumpDistance))
		secondary := core.NewRay(origin, impulse.Direction)

		radiance = radiance.Add(rt.rayColorRecursive(secondary, bounce+1).MultiplyVec(impulse.Weight))
	}

	return radiance
}
