package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/material"
)

// InspectResponse describes what is visible through one pixel
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	MaterialType string         `json:"materialType,omitempty"`
	GeometryType string         `json:"geometryType,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	FrontFace    bool           `json:"frontFace"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func vec3(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// materialInfo describes a material and its parameters
func materialInfo(mat material.Material) (string, map[string]any) {
	properties := make(map[string]any)

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = array(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = array(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = hexColor(m.Tint)
		return "dielectric", properties

	case *material.Layered:
		outerType, outerProps := materialInfo(m.Outer)
		innerType, innerProps := materialInfo(m.Inner)
		properties["outer"] = map[string]any{"type": outerType, "properties": outerProps}
		properties["inner"] = map[string]any{"type": innerType, "properties": innerProps}
		return "layered", properties

	default:
		return "unknown", properties
	}
}

func geometryInfo(shape geometry.Shape, properties map[string]any) string {
	switch g := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = array(g.Center)
		properties["radius"] = g.Radius
		return "sphere"

	case *geometry.Plane:
		properties["point"] = array(g.Point)
		properties["planeNormal"] = array(g.Normal)
		return "plane"

	case *geometry.Quad:
		properties["corner"] = array(g.Corner)
		properties["u"] = array(g.U)
		properties["v"] = array(g.V)
		return "quad"

	default:
		return "unknown"
	}
}

// handleInspect casts the primary ray through pixel (x, y) of the current
// viewpoint and describes the first surface it hits.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	x, err := parseIntParam(query, "x", -1, 0, s.config.Width-1)
	if err == nil && x < 0 {
		err = missingParam("x")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	y, err := parseIntParam(query, "y", -1, 0, s.config.Height-1)
	if err == nil && y < 0 {
		err = missingParam("y")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ray := s.camera.Frame().Ray(float64(x)+0.5, float64(y)+0.5, s.config.Width, s.config.Height)
	shape, hit, ok := s.tracer.Inspect(ray)
	if !ok {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, properties := materialInfo(hit.Material)
	geometryType := geometryInfo(shape, properties)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        array(hit.Point),
		Normal:       array(hit.Normal),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties:   properties,
	})
}
