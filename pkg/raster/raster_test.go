package raster

import (
	"image/color"
	"testing"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestBlackPixelIsStillSet(t *testing.T) {
	r := New(4, 3)
	require.False(t, r.IsSet(1, 1))

	r.Set(1, 1, core.Vec3{})
	require.True(t, r.IsSet(1, 1))

	c, ok := r.Get(1, 1)
	require.True(t, ok)
	require.True(t, c.IsZero())
	require.Equal(t, 1, r.SetCount())
}

func TestOutOfRangeIgnored(t *testing.T) {
	r := New(2, 2)
	r.Set(-1, 0, core.NewVec3(1, 1, 1))
	r.Set(2, 0, core.NewVec3(1, 1, 1))

	require.False(t, r.IsSet(-1, 0))
	require.False(t, r.IsSet(0, 5))
	require.Equal(t, 0, r.SetCount())
}

func TestClear(t *testing.T) {
	r := New(3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			r.Set(x, y, core.NewVec3(0.5, 0.5, 0.5))
		}
	}
	require.Equal(t, 9, r.SetCount())

	r.Clear()
	require.Equal(t, 0, r.SetCount())
	c, ok := r.Get(2, 2)
	require.False(t, ok)
	require.True(t, c.IsZero())
}

func TestToRGBA(t *testing.T) {
	tests := []struct {
		name     string
		input    core.Vec3
		expected color.RGBA
	}{
		{"black", core.Vec3{}, color.RGBA{A: 255}},
		{"white", core.NewVec3(1, 1, 1), color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"overbright clamps", core.NewVec3(4, 2, 1), color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"negative clamps", core.NewVec3(-1, 0, 0), color.RGBA{A: 255}},
		{"quarter gamma", core.NewVec3(0.25, 0, 0), color.RGBA{R: 127, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ToRGBA(tt.input))
		})
	}
}

func TestImage(t *testing.T) {
	r := New(2, 1)
	r.Set(0, 0, core.NewVec3(1, 1, 1))

	img := r.Image()
	require.Equal(t, 2, img.Bounds().Dx())
	require.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{A: 255}, img.RGBAAt(1, 0))
}

func TestScale(t *testing.T) {
	r := New(8, 4)
	img := r.Image()

	tests := []struct {
		name             string
		width, height    int
		expectW, expectH int
	}{
		{"explicit", 4, 2, 4, 2},
		{"keep aspect from width", 2, 0, 2, 1},
		{"keep aspect from height", 0, 8, 16, 8},
		{"unchanged", 0, 0, 8, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scaled := Scale(img, tt.width, tt.height)
			require.Equal(t, tt.expectW, scaled.Bounds().Dx())
			require.Equal(t, tt.expectH, scaled.Bounds().Dy())
		})
	}
}
