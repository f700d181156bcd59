package scheduler

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
)

// ErrTypeInvalidConfig is the error type returned by Config.Validate.
const ErrTypeInvalidConfig = "invalid_scheduler_config"

const (
	// MinThreshold and MaxThreshold bound the refinement threshold.
	MinThreshold = 0.000005
	MaxThreshold = 2.0

	// DefaultThreshold is the neighbor-difference score above which a node
	// is refined in the fast pass.
	DefaultThreshold = 0.05
)

// Config contains the scheduler configuration
type Config struct {
	Width       int                  // Raster width in pixels
	Height      int                  // Raster height in pixels
	Capacity    int                  // Samples a quadtree node holds before subdividing
	MinArea     float64              // Area at or below which nodes never subdivide
	Threshold   float64              // Initial refinement threshold
	DiffFormula quadtree.DiffFormula // Neighbor-difference formula
}

// DefaultConfig returns sensible default values for a width x height raster
func DefaultConfig(width, height int) Config {
	return Config{
		Width:       width,
		Height:      height,
		Capacity:    quadtree.DefaultCapacity,
		MinArea:     quadtree.DefaultMinArea,
		Threshold:   DefaultThreshold,
		DiffFormula: quadtree.DiffLegacy,
	}
}

// Validate checks that the configuration can drive a scheduler
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.New("raster size must be positive").
			WithType(ErrTypeInvalidConfig).
			WithTag("width", c.Width).
			WithTag("height", c.Height)

	case c.Capacity <= 0:
		return errors.New("node capacity must be positive").
			WithType(ErrTypeInvalidConfig).
			WithTag("capacity", c.Capacity)

	case c.MinArea <= 0:
		return errors.New("minimum node area must be positive").
			WithType(ErrTypeInvalidConfig).
			WithTag("min_area", c.MinArea)

	case c.DiffFormula != quadtree.DiffLegacy && c.DiffFormula != quadtree.DiffBalanced:
		return errors.New("unknown diff formula").
			WithType(ErrTypeInvalidConfig).
			WithTag("diff_formula", int(c.DiffFormula))
	}

	return nil
}

// ClampThreshold limits a threshold to [MinThreshold, MaxThreshold]
func ClampThreshold(v float64) float64 {
	return max(MinThreshold, min(MaxThreshold, v))
}
