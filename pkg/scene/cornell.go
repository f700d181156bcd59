package scene

import (
	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/material"
)

// NewCornellScene creates a classic Cornell box lit by a point light just
// under the ceiling
func NewCornellScene() *Scene {
	s := &Scene{
		Frame: geometry.Frame{
			Center: core.NewVec3(278, 278, -800), // Outside the box looking in
			LookAt: core.NewVec3(278, 278, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40.0,
		},
	}

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	// Standard 555 unit box; every wall's normal faces the interior
	size := 555.0
	x := core.NewVec3(size, 0, 0)
	y := core.NewVec3(0, size, 0)
	z := core.NewVec3(0, 0, size)

	s.Add(
		geometry.NewQuad(core.NewVec3(0, 0, 0), z, x, white),    // floor
		geometry.NewQuad(core.NewVec3(0, size, 0), x, z, white), // ceiling
		geometry.NewQuad(core.NewVec3(0, 0, size), y, x, white), // back
		geometry.NewQuad(core.NewVec3(0, 0, 0), y, z, red),      // left
		geometry.NewQuad(core.NewVec3(size, 0, 0), z, y, green), // right
	)

	s.Add(
		geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, material.NewMetal(core.NewVec3(0.8, 0.8, 0.9))),
		geometry.NewSphere(core.NewVec3(370, 90, 351), 90, material.NewDielectric(1.5)),
	)

	s.AddPointLight(core.NewVec3(278, 540, 278), core.NewVec3(3.2e6, 3.0e6, 2.6e6))

	return s
}
