package lights

import (
	"math"
	"testing"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
)

func TestPointLight_Biradiance(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 10, 0), core.NewVec3(1200, 1200, 1200))

	biradiance, direction, distance := light.Biradiance(core.NewVec3(0, 0, 0))

	if math.Abs(distance-10) > 1e-12 {
		t.Errorf("Expected distance 10, got %f", distance)
	}
	if !direction.FuzzyEqual(core.NewVec3(0, 1, 0), 1e-12) {
		t.Errorf("Expected direction (0,1,0), got %v", direction)
	}

	expected := 1200 / (4 * math.Pi * 100)
	if math.Abs(biradiance.X-expected) > 1e-12 {
		t.Errorf("Expected biradiance %f, got %f", expected, biradiance.X)
	}
}

func TestPointLight_InverseSquareFalloff(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(100, 100, 100))

	near, _, _ := light.Biradiance(core.NewVec3(1, 0, 0))
	far, _, _ := light.Biradiance(core.NewVec3(2, 0, 0))

	if math.Abs(near.X/far.X-4) > 1e-9 {
		t.Errorf("Expected 4x falloff at double distance, got %f", near.X/far.X)
	}
}

func TestPointLight_AtLightPosition(t *testing.T) {
	light := NewPointLight(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1))

	biradiance, _, distance := light.Biradiance(core.NewVec3(1, 1, 1))
	if !biradiance.IsZero() || distance != 0 {
		t.Errorf("Expected no contribution at the light position, got %v at %f", biradiance, distance)
	}
}
