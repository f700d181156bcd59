package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
	"github.com/df07/go-adaptive-raytracer/pkg/scene"
	"github.com/df07/go-adaptive-raytracer/pkg/scheduler"
	"github.com/stretchr/testify/require"
)

func TestSchedulerConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config)
		errType string
	}{
		{"defaults", func(*config) {}, ""},
		{"balanced formula", func(c *config) { c.DiffFormula = "balanced" }, ""},
		{"unknown formula", func(c *config) { c.DiffFormula = "median" }, quadtree.ErrTypeUnknownFormula},
		{"zero width", func(c *config) { c.Width = 0 }, scheduler.ErrTypeInvalidConfig},
		{"zero capacity", func(c *config) { c.Capacity = 0 }, scheduler.ErrTypeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := defaultConfig()
			tt.modify(&conf)

			c, err := schedulerConfig(conf)
			if tt.errType != "" {
				require.Error(t, err)
				require.Equal(t, tt.errType, errors.Type(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, conf.Width, c.Width)
			require.Equal(t, conf.Threshold, c.Threshold)
		})
	}
}

func TestRunWritesEveryFrame(t *testing.T) {
	conf := defaultConfig()
	conf.Width = 32
	conf.Height = 24
	conf.Frames = 2
	conf.Scale = 2
	conf.Output = t.TempDir()

	require.NoError(t, run(context.Background(), conf))

	files, err := filepath.Glob(filepath.Join(conf.Output, "default", "render_*.png"))
	require.NoError(t, err)
	require.Len(t, files, 2)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 48, img.Bounds().Dy())
}

func TestRunRejectsUnknownScene(t *testing.T) {
	conf := defaultConfig()
	conf.Scene = "nonexistent"
	conf.Output = t.TempDir()

	err := run(context.Background(), conf)
	require.Error(t, err)
	require.Equal(t, scene.ErrTypeUnknownScene, errors.Type(err))
}
