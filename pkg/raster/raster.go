// Package raster holds the shared color buffer written by refinement lanes.
// Each pixel carries an explicit set flag, so a pixel that shades to black
// is still known to be computed.
package raster

import (
	"image"
	"image/color"

	"github.com/df07/go-adaptive-raytracer/pkg/core"
	xdraw "golang.org/x/image/draw"
)

// Gamma applied when composing an image
const Gamma = 2.0

// Raster is a width x height grid of linear colors. It has no lock: callers
// guarantee that concurrent writers touch disjoint pixels, and that images
// are composed only while no writer is running.
type Raster struct {
	width  int
	height int
	colors []core.Vec3
	set    []bool
}

// New creates a raster with every pixel unset
func New(width, height int) *Raster {
	return &Raster{
		width:  width,
		height: height,
		colors: make([]core.Vec3, width*height),
		set:    make([]bool, width*height),
	}
}

// Width returns the raster width in pixels
func (r *Raster) Width() int {
	return r.width
}

// Height returns the raster height in pixels
func (r *Raster) Height() int {
	return r.height
}

func (r *Raster) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return 0, false
	}
	return y*r.width + x, true
}

// Set stores a color and marks the pixel as computed. Out of range
// coordinates are ignored.
func (r *Raster) Set(x, y int, c core.Vec3) {
	if i, ok := r.index(x, y); ok {
		r.colors[i] = c
		r.set[i] = true
	}
}

// Get returns the color of a pixel and whether it has been computed
func (r *Raster) Get(x, y int) (core.Vec3, bool) {
	i, ok := r.index(x, y)
	if !ok {
		return core.Vec3{}, false
	}
	return r.colors[i], r.set[i]
}

// IsSet reports whether the pixel has been computed since the last Clear
func (r *Raster) IsSet(x, y int) bool {
	i, ok := r.index(x, y)
	return ok && r.set[i]
}

// SetCount returns the number of computed pixels
func (r *Raster) SetCount() int {
	count := 0
	for _, s := range r.set {
		if s {
			count++
		}
	}
	return count
}

// Clear resets every pixel to unset black
func (r *Raster) Clear() {
	clear(r.colors)
	clear(r.set)
}

// Image composes the raster into an RGBA image. Unset pixels are black.
func (r *Raster) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			i := y*r.width + x
			if !r.set[i] {
				img.SetRGBA(x, y, color.RGBA{A: 255})
				continue
			}
			img.SetRGBA(x, y, ToRGBA(r.colors[i]))
		}
	}
	return img
}

// ToRGBA converts a linear color to 8-bit RGBA with gamma correction and clamping
func ToRGBA(c core.Vec3) color.RGBA {
	c = c.Clamp(0.0, 1.0).GammaCorrect(Gamma)

	return color.RGBA{
		R: uint8(255 * c.X),
		G: uint8(255 * c.Y),
		B: uint8(255 * c.Z),
		A: 255,
	}
}

// Scale resizes img to width x height with bilinear filtering. A
// non-positive dimension keeps the aspect ratio of the other one.
func Scale(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	switch {
	case width <= 0 && height <= 0:
		width, height = b.Dx(), b.Dy()
	case width <= 0:
		width = max(1, b.Dx()*height/max(1, b.Dy()))
	case height <= 0:
		height = max(1, b.Dy()*width/max(1, b.Dx()))
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
