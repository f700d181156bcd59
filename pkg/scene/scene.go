// Package scene provides the built-in scenes and looks them up by name.
package scene

import (
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/lights"
	"github.com/df07/go-adaptive-raytracer/pkg/material"
)

// ErrTypeUnknownScene is the error type returned for unknown scene names.
const ErrTypeUnknownScene = "unknown_scene"

// Scene contains all the elements needed for rendering
type Scene struct {
	Name        string
	Frame       geometry.Frame // Initial camera pose
	TopColor    core.Vec3      // Background gradient, straight up
	BottomColor core.Vec3      // Background gradient, straight down

	shapes []geometry.Shape
	lights []*lights.PointLight
}

// Shapes returns the objects in the scene
func (s *Scene) Shapes() []geometry.Shape {
	return s.shapes
}

// Lights returns the point lights in the scene
func (s *Scene) Lights() []*lights.PointLight {
	return s.lights
}

// BackgroundColors returns the gradient seen by rays that hit nothing
func (s *Scene) BackgroundColors() (core.Vec3, core.Vec3) {
	return s.TopColor, s.BottomColor
}

// Add appends shapes to the scene
func (s *Scene) Add(shapes ...geometry.Shape) {
	s.shapes = append(s.shapes, shapes...)
}

// AddPointLight adds a point light to the scene
func (s *Scene) AddPointLight(position, power core.Vec3) {
	s.lights = append(s.lights, lights.NewPointLight(position, power))
}

// NewGroundQuad creates a large horizontal quad centered at center, facing up
func NewGroundQuad(center core.Vec3, size float64, mat material.Material) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// (size,0,0) × (0,0,size) points down, so swap the edges to face up
	return geometry.NewQuad(corner, core.NewVec3(0, 0, size), core.NewVec3(size, 0, 0), mat)
}

// Info describes a built-in scene
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type entry struct {
	description string
	build       func() *Scene
}

var registry = map[string]entry{
	"default":    {"Spheres of assorted materials on a ground plane", NewDefaultScene},
	"cornell":    {"Cornell box with a metal and a glass sphere", NewCornellScene},
	"spheregrid": {"Grid of coated and metal spheres", NewSphereGridScene},
}

// New builds the scene registered under name
func New(name string) (*Scene, error) {
	e, ok := registry[name]
	if !ok {
		return nil, errors.New("unknown scene").
			WithType(ErrTypeUnknownScene).
			WithTag("scene", name)
	}

	s := e.build()
	s.Name = name
	return s, nil
}

// Names returns the registered scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every registered scene, sorted by name
func List() []Info {
	infos := make([]Info, 0, len(registry))
	for _, name := range Names() {
		infos = append(infos, Info{Name: name, Description: registry[name].description})
	}
	return infos
}
