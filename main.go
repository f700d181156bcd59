package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
	"github.com/df07/go-adaptive-raytracer/pkg/raster"
	"github.com/df07/go-adaptive-raytracer/pkg/renderer"
	"github.com/df07/go-adaptive-raytracer/pkg/scene"
	"github.com/df07/go-adaptive-raytracer/pkg/scheduler"
	"github.com/segmentio/encoding/json"
)

// Keeps the cli package from seeing obfuscated field names.
var _ = reflect.TypeOf(config{})

type config struct {
	Scene       string  `cli:"" env:"ART_SCENE"        help:"Scene to render (default|cornell|spheregrid)."`
	Width       int     `cli:"" env:"ART_WIDTH"        help:"Image width in pixels."`
	Height      int     `cli:"" env:"ART_HEIGHT"       help:"Image height in pixels."`
	Threshold   float64 `cli:"" env:"ART_THRESHOLD"    help:"Neighbor-difference score above which a node is refined first."`
	Capacity    int     `cli:"" env:"ART_CAPACITY"     help:"Samples a quadtree node holds before subdividing."`
	MinArea     float64 `cli:"" env:"ART_MIN_AREA"     help:"Area in pixels at or below which nodes never subdivide."`
	DiffFormula string  `cli:"" env:"ART_DIFF_FORMULA" help:"Neighbor-difference formula (legacy|balanced)."`
	MaxBounces  int     `cli:"" env:"ART_MAX_BOUNCES"  help:"Maximum number of specular bounces."`
	Frames      int     `cli:"" env:"ART_FRAMES"       help:"Number of frames to render, orbiting between each."`
	YawStep     float64 `cli:"" env:"ART_YAW_STEP"     help:"Degrees the camera orbits between frames."`
	Scale       float64 `cli:"" env:"ART_SCALE"        help:"Scale factor applied to saved images."`
	Output      string  `cli:"" env:"ART_OUTPUT"       help:"Directory where renders are written."`
	LogLevel    string  `cli:"" env:"ART_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool    `cli:"" env:"ART_LOG_INDENT"   help:"Indent logs."`
	Help        bool    `cli:"" env:"-"                help:"Show help."`
}

func defaultConfig() config {
	return config{
		Scene:       "default",
		Width:       400,
		Height:      225,
		Threshold:   scheduler.DefaultThreshold,
		Capacity:    quadtree.DefaultCapacity,
		MinArea:     quadtree.DefaultMinArea,
		DiffFormula: quadtree.DiffLegacy.String(),
		MaxBounces:  renderer.DefaultConfig().MaxBounces,
		Frames:      1,
		YawStep:     10,
		Scale:       1,
		Output:      "output",
		LogLevel:    logs.InfoLevel.String(),
	}
}

func main() {
	conf := defaultConfig()

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Renders a scene with adaptive quadtree refinement and saves each converged frame as a PNG.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if err := run(ctx, conf); err != nil {
		logs.Fatal(err)
	}
}

func run(ctx context.Context, conf config) error {
	sc, err := scene.New(conf.Scene)
	if err != nil {
		return err
	}

	schedConf, err := schedulerConfig(conf)
	if err != nil {
		return err
	}

	outputDir := filepath.Join(conf.Output, sc.Name)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.New("creating output directory failed").
			WithTag("dir", outputDir).
			Wrap(err)
	}

	camera := geometry.NewCamera(sc.Frame)
	tracer := renderer.NewRaytracer(sc, renderer.Config{MaxBounces: conf.MaxBounces})

	sched, err := scheduler.New(schedConf, tracer, camera)
	if err != nil {
		return err
	}
	defer sched.Close()

	logs.WithTag("scene", sc.Name).
		WithTag("width", conf.Width).
		WithTag("height", conf.Height).
		WithTag("frames", conf.Frames).
		Info("starting render")

	start := time.Now()
	if err := sched.Prime(ctx); err != nil {
		return err
	}

	timestamp := time.Now().Format("20060102_150405")
	for i := 0; i < max(conf.Frames, 1); i++ {
		if i > 0 {
			camera.Orbit(conf.YawStep)
		}

		frameStart := time.Now()
		if err := sched.Converge(ctx); err != nil {
			return errors.New("rendering frame failed").
				WithTag("frame", i).
				Wrap(err)
		}

		stats := sched.Stats()
		filename := filepath.Join(outputDir, fmt.Sprintf("render_%s_%d.png", timestamp, i))
		if err := savePNG(filename, scaled(sched.CurrentRaster(), conf.Scale)); err != nil {
			return err
		}

		logs.WithTag("frame", i).
			WithTag("file", filename).
			WithTag("rays", stats.Rays()).
			WithTag("restarts", stats.Restarts).
			WithTag("duration", time.Since(frameStart)).
			Info("frame saved")
	}

	logs.WithTag("duration", time.Since(start)).Info("render completed")
	return nil
}

func schedulerConfig(conf config) (scheduler.Config, error) {
	formula, err := quadtree.ParseDiffFormula(conf.DiffFormula)
	if err != nil {
		return scheduler.Config{}, err
	}

	c := scheduler.DefaultConfig(conf.Width, conf.Height)
	c.Capacity = conf.Capacity
	c.MinArea = conf.MinArea
	c.Threshold = conf.Threshold
	c.DiffFormula = formula
	return c, c.Validate()
}

func scaled(img *image.RGBA, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}
	b := img.Bounds()
	return raster.Scale(img, int(float64(b.Dx())*factor), int(float64(b.Dy())*factor))
}

func savePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.New("creating file failed").
			WithTag("file", filename).
			Wrap(err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return errors.New("encoding png failed").
			WithTag("file", filename).
			Wrap(err)
	}
	return nil
}
