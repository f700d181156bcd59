package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/material"
)

var testMaterial = material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

func TestSphere_Hit(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)

	tests := []struct {
		name           string
		origin         core.Vec3
		direction      core.Vec3
		expectHit      bool
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{"miss", core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0), false, 0, false, core.Vec3{}},
		{"front face", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), true, 1.0, true, core.NewVec3(0, 0, 1)},
		{"back face from inside", core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), true, 1.0, false, core.NewVec3(0, 0, -1)},
		{"behind origin", core.NewVec3(0, 0, -2), core.NewVec3(0, 0, -1), false, 0, false, core.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(core.NewRay(tt.origin, tt.direction), 0.001, 1000.0)
			if isHit != tt.expectHit {
				t.Fatalf("Expected hit %t, got %t", tt.expectHit, isHit)
			}
			if !isHit {
				return
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !hit.Normal.FuzzyEqual(tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if hit.Material != testMaterial {
				t.Error("Expected hit record to carry the sphere material")
			}
		})
	}
}

func TestPlane_Hit(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 2, 0), testMaterial)

	hit, isHit := plane.Hit(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1, got t=%f", hit.T)
	}
	if !hit.Normal.FuzzyEqual(core.NewVec3(0, 1, 0), 1e-12) {
		t.Errorf("Expected normalized normal, got %v", hit.Normal)
	}

	if _, isHit := plane.Hit(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)), 0.001, 1000.0); isHit {
		t.Error("Expected parallel ray to miss")
	}

	hit, isHit = plane.Hit(core.NewRay(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0)), 0.001, 1000.0)
	if !isHit || hit.FrontFace {
		t.Error("Expected back face hit from below")
	}
}

func TestQuad_Hit(t *testing.T) {
	// 1x1 quad in the XZ plane at y=0
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), testMaterial)

	tests := []struct {
		name      string
		origin    core.Vec3
		expectHit bool
	}{
		{"center", core.NewVec3(0.5, 1, 0.5), true},
		{"corner", core.NewVec3(1, 1, 1), true},
		{"outside x", core.NewVec3(1.5, 1, 0.5), false},
		{"outside z", core.NewVec3(0.5, 1, -0.1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := quad.Hit(core.NewRay(tt.origin, core.NewVec3(0, -1, 0)), 0.001, 1000.0)
			if isHit != tt.expectHit {
				t.Fatalf("Expected hit %t, got %t", tt.expectHit, isHit)
			}
			if isHit {
				expectedPoint := core.NewVec3(tt.origin.X, 0, tt.origin.Z)
				if !hit.Point.FuzzyEqual(expectedPoint, 1e-9) {
					t.Errorf("Expected hit point %v, got %v", expectedPoint, hit.Point)
				}
			}
		})
	}
}

func TestBox_EnclosesVolume(t *testing.T) {
	box := Box(core.NewVec3(1, 1, 1), core.NewVec3(-1, -1, -1), testMaterial)
	if len(box) != 6 {
		t.Fatalf("Expected 6 faces, got %d", len(box))
	}

	directions := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1),
	}
	for _, dir := range directions {
		ray := core.NewRay(core.Vec3{}, dir)
		hits := 0
		for _, face := range box {
			if hit, ok := face.Hit(ray, 0.001, 1000.0); ok {
				hits++
				if math.Abs(hit.T-1.0) > 1e-9 {
					t.Errorf("Direction %v: expected t=1, got %f", dir, hit.T)
				}
			}
		}
		if hits != 1 {
			t.Errorf("Direction %v: expected exactly one face hit, got %d", dir, hits)
		}
	}
}
