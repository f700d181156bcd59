package geometry

import (
	"math"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/material"
)

// Quad is a parallelogram spanned by two edge vectors from a corner
type Quad struct {
	Corner   core.Vec3
	U, V     core.Vec3 // Edge vectors
	Normal   core.Vec3 // Unit normal, U × V
	Material material.Material

	d float64   // Plane constant: normal · p = d
	w core.Vec3 // n / (n · n) with n = U × V, for planar coordinates
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, mat material.Material) *Quad {
	n := u.Cross(v)
	normal := n.Normalize()

	return &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		Material: mat,
		d:        normal.Dot(corner),
		w:        n.Multiply(1.0 / n.Dot(n)),
	}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	denominator := ray.Direction.Dot(q.Normal)
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	t := (q.d - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	point := ray.At(t)
	planar := point.Subtract(q.Corner)
	alpha := q.w.Dot(planar.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(planar))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, false
	}

	hit := &material.HitRecord{
		T:        t,
		Point:    point,
		Material: q.Material,
	}
	hit.SetFaceNormal(ray, q.Normal)

	return hit, true
}

// Box returns the six quads of an axis-aligned box between two corners
func Box(a, b core.Vec3, mat material.Material) []Shape {
	lo := core.NewVec3(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z))
	hi := core.NewVec3(math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z))

	dx := core.NewVec3(hi.X-lo.X, 0, 0)
	dy := core.NewVec3(0, hi.Y-lo.Y, 0)
	dz := core.NewVec3(0, 0, hi.Z-lo.Z)

	// front, right, back, left, top, bottom
	return []Shape{
		NewQuad(core.NewVec3(lo.X, lo.Y, hi.Z), dx, dy, mat),
		NewQuad(core.NewVec3(hi.X, lo.Y, hi.Z), dz.Negate(), dy, mat),
		NewQuad(core.NewVec3(hi.X, lo.Y, lo.Z), dx.Negate(), dy, mat),
		NewQuad(lo, dz, dy, mat),
		NewQuad(core.NewVec3(lo.X, hi.Y, hi.Z), dx, dz.Negate(), mat),
		NewQuad(lo, dx, dz, mat),
	}
}
