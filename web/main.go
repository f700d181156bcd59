package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
	"github.com/df07/go-adaptive-raytracer/web/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

// Keeps the cli package from seeing obfuscated field names.
var _ = reflect.TypeOf(config{})

type config struct {
	Addr         string        `cli:""        env:"ART_ADDR"          help:"Listening address for the web API."`
	AdminAddr    string        `cli:""        env:"ART_ADMIN_ADDR"    help:"Admin listening address for metrics and profiling."`
	Scene        string        `cli:""        env:"ART_SCENE"         help:"Scene to serve (default|cornell|spheregrid)."`
	Width        int           `cli:""        env:"ART_WIDTH"         help:"Image width in pixels."`
	Height       int           `cli:""        env:"ART_HEIGHT"        help:"Image height in pixels."`
	Threshold    float64       `cli:""        env:"ART_THRESHOLD"     help:"Neighbor-difference score above which a node is refined first."`
	Capacity     int           `cli:",hidden" env:"ART_CAPACITY"      help:"Samples a quadtree node holds before subdividing."`
	MinArea      float64       `cli:",hidden" env:"ART_MIN_AREA"      help:"Area in pixels at or below which nodes never subdivide."`
	DiffFormula  string        `cli:",hidden" env:"ART_DIFF_FORMULA"  help:"Neighbor-difference formula (legacy|balanced)."`
	MaxBounces   int           `cli:",hidden" env:"ART_MAX_BOUNCES"   help:"Maximum number of specular bounces."`
	TickInterval time.Duration `cli:",hidden" env:"ART_TICK_INTERVAL" help:"Time between scheduler ticks."`
	LogLevel     string        `cli:""        env:"ART_LOG_LEVEL"     help:"Log level (debug|info|warning|error)."`
	LogIndent    bool          `cli:""        env:"ART_LOG_INDENT"    help:"Indent logs."`
	Help         bool          `cli:""        env:"-"                 help:"Show help."`
}

func main() {
	defaults := server.DefaultConfig()
	conf := config{
		Addr:         ":8080",
		AdminAddr:    ":18080",
		Scene:        defaults.Scene,
		Width:        defaults.Width,
		Height:       defaults.Height,
		Threshold:    defaults.Threshold,
		Capacity:     defaults.Capacity,
		MinArea:      defaults.MinArea,
		DiffFormula:  defaults.DiffFormula.String(),
		MaxBounces:   defaults.MaxBounces,
		TickInterval: defaults.TickInterval,
		LogLevel:     logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Serves an interactive, progressively refined render over HTTP.").
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

	formula, err := quadtree.ParseDiffFormula(conf.DiffFormula)
	if err != nil {
		logs.Fatal(err)
	}

	srv, err := server.New(ctx, server.Config{
		Scene:        conf.Scene,
		Width:        conf.Width,
		Height:       conf.Height,
		Capacity:     conf.Capacity,
		MinArea:      conf.MinArea,
		Threshold:    conf.Threshold,
		DiffFormula:  formula,
		MaxBounces:   conf.MaxBounces,
		TickInterval: conf.TickInterval,
	})
	if err != nil {
		logs.Fatal(errors.New("starting renderer failed").Wrap(err))
	}
	go srv.Run(ctx)

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)

	logs.WithTag("scene", conf.Scene).
		WithTag("width", conf.Width).
		WithTag("height", conf.Height).
		WithTag("log_level", conf.LogLevel).
		Info("starting web server")

	server.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(srv.Handler(), server.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}
