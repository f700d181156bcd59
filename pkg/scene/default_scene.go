package scene

import (
	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/material"
)

// NewDefaultScene creates a default scene with spheres, ground, and two
// point lights
func NewDefaultScene() *Scene {
	s := &Scene{
		Frame: geometry.Frame{
			Center: core.NewVec3(0, 0.75, 2),
			LookAt: core.NewVec3(0, 0.5, -1),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40.0,
		},
		TopColor:    core.NewVec3(0.5, 0.7, 1.0), // Blue sky
		BottomColor: core.NewVec3(1.0, 1.0, 1.0), // White horizon
	}

	lambertianGreen := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	lambertianRed := material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2))
	metalSilver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8))
	metalGold := material.NewLayered(
		material.NewMetal(core.NewVec3(0.4, 0.3, 0.1)),
		material.NewLambertian(core.NewVec3(0.8, 0.6, 0.2)),
	)
	glass := material.NewDielectric(1.5)
	coatedRed := material.NewLayered(glass, lambertianRed)

	// Hollow glass shell: an outer sphere and an inverted inner one
	hollowCenter := core.NewVec3(-0.5, 0.25, -0.5)

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, coatedRed),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, metalSilver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, metalGold),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass),
		geometry.NewSphere(hollowCenter, 0.25, glass),
		geometry.NewSphere(hollowCenter, -0.24, glass),
		geometry.NewSphere(hollowCenter, 0.20, lambertianBlue),
		NewGroundQuad(core.NewVec3(0, 0, 0), 10000.0, lambertianGreen),
	)

	s.AddPointLight(core.NewVec3(0, 10, 0), core.NewVec3(1200, 1200, 1200))
	s.AddPointLight(core.NewVec3(-3, 4, 3), core.NewVec3(1.0, 0.898, 0.741).Multiply(300))

	return s
}
