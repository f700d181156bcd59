package material

import (
	"testing"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.6, 0.2)
	metal := NewMetal(albedo)

	hit := &HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
	}

	impulses := metal.Impulses(core.NewVec3(1, -1, 0), hit)
	if len(impulses) != 1 {
		t.Fatalf("Expected 1 impulse, got %d", len(impulses))
	}

	expected := core.NewVec3(1, 1, 0).Normalize()
	if !impulses[0].Direction.FuzzyEqual(expected, 1e-9) {
		t.Errorf("Expected direction %v, got %v", expected, impulses[0].Direction)
	}
	if impulses[0].Weight != albedo {
		t.Errorf("Expected weight %v, got %v", albedo, impulses[0].Weight)
	}
}

func TestMetal_BRDFIsZero(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.9, 0.9, 0.9))
	hit := &HitRecord{Normal: core.NewVec3(0, 1, 0)}

	brdf := metal.BRDF(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), hit)
	if !brdf.IsZero() {
		t.Errorf("Expected zero BRDF, got %v", brdf)
	}
}

func TestMetal_NoReflectionFromBelow(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.9, 0.9, 0.9))
	hit := &HitRecord{Normal: core.NewVec3(0, 1, 0)}

	if impulses := metal.Impulses(core.NewVec3(0, 1, 0), hit); len(impulses) != 0 {
		t.Errorf("Expected no impulses, got %d", len(impulses))
	}
}

func TestReflectFunction(t *testing.T) {
	tests := []struct {
		name     string
		v, n     core.Vec3
		expected core.Vec3
	}{
		{"head on", core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0)},
		{"diagonal", core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 0)},
		{"parallel", core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := reflect(tt.v, tt.n)
			if !result.FuzzyEqual(tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}
