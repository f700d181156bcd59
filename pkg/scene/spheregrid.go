package scene

import (
	"math"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to linear RGB, clamped to [0, 1].
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, cubed
	lc := math.Pow(l+0.3963377774*a+0.2158037573*b, 3)
	mc := math.Pow(l-0.1055613458*a-0.0638541728*b, 3)
	sc := math.Pow(l-0.0894841775*a-1.2914855480*b, 3)

	return core.NewVec3(
		+4.0767416621*lc-3.3077115913*mc+0.2309699292*sc,
		-1.2684380046*lc+2.6097574011*mc-0.3413193965*sc,
		-0.0041960863*lc-0.7034186147*mc+1.7076147010*sc,
	).Clamp(0, 1)
}

// NewSphereGridScene creates a scene with a grid of spheres whose color
// sweeps hue along X and chroma along Z. The grid has lots of small,
// high-contrast detail, which makes it a good stress test for refinement.
func NewSphereGridScene() *Scene {
	s := &Scene{
		Frame: geometry.Frame{
			Center: core.NewVec3(4.5, 6, 18),
			LookAt: core.NewVec3(4.5, 0.8, 4.5),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40.0,
		},
		TopColor:    core.NewVec3(0.5, 0.7, 1.0),
		BottomColor: core.NewVec3(1.0, 1.0, 1.0),
	}

	s.AddPointLight(core.NewVec3(20, 25, 20), core.NewVec3(24000, 23000, 20000))
	s.AddPointLight(core.NewVec3(-6, 8, 12), core.NewVec3(2500, 2500, 3000))

	s.Add(geometry.NewPlane(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)),
	))

	const (
		gridSize   = 12
		targetArea = 9.0
		lightness  = 0.65
		minChroma  = 0.05
		maxChroma  = 0.25
	)
	spacing := targetArea / float64(gridSize-1)
	radius := math.Max(0.02, math.Min(0.35, spacing*0.35))
	coat := material.NewDielectric(1.5)

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			position := core.NewVec3(
				float64(i)*spacing-targetArea/2.0+4.5,
				radius,
				float64(j)*spacing-targetArea/2.0+4.5,
			)

			hue := float64(i) / float64(gridSize-1) * 360.0
			chroma := minChroma + float64(j)/float64(gridSize-1)*(maxChroma-minChroma)
			color := oklchToRGB(lightness+0.1*math.Sin(float64(i+j)*0.5), chroma, hue)

			var mat material.Material = material.NewLayered(coat, material.NewLambertian(color))
			if (i+j)%3 == 0 {
				mat = material.NewMetal(color)
			}
			s.Add(geometry.NewSphere(position, radius, mat))
		}
	}

	return s
}
