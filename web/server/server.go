package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
	"github.com/df07/go-adaptive-raytracer/pkg/renderer"
	"github.com/df07/go-adaptive-raytracer/pkg/scene"
	"github.com/df07/go-adaptive-raytracer/pkg/scheduler"
	"github.com/segmentio/encoding/json"
)

const (
	// ErrTypeBadRequest is the error type of rejected request parameters.
	ErrTypeBadRequest = "bad_request"

	// ErrTypeInvalidConfig is the error type returned by Config.Validate.
	ErrTypeInvalidConfig = "invalid_server_config"
)

// Config contains the web server configuration
type Config struct {
	Scene        string
	Width        int
	Height       int
	Capacity     int
	MinArea      float64
	Threshold    float64
	DiffFormula  quadtree.DiffFormula
	MaxBounces   int
	TickInterval time.Duration // Time between scheduler ticks
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Scene:        "default",
		Width:        400,
		Height:       225,
		Capacity:     quadtree.DefaultCapacity,
		MinArea:      quadtree.DefaultMinArea,
		Threshold:    scheduler.DefaultThreshold,
		DiffFormula:  quadtree.DiffLegacy,
		MaxBounces:   renderer.DefaultConfig().MaxBounces,
		TickInterval: time.Second / 60,
	}
}

// Validate checks the settings that belong to the server itself. Scene and
// raster settings are checked when the scene and scheduler are created.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return errors.New("tick interval must be positive").
			WithType(ErrTypeInvalidConfig).
			WithTag("tick_interval", c.TickInterval)
	}
	return nil
}

// Server serves one interactive scene. The camera can be moved over HTTP
// or a websocket, and refined frames are streamed back as they converge.
type Server struct {
	config    Config
	scene     *scene.Scene
	camera    *geometry.Camera
	tracer    *renderer.Raytracer
	scheduler *scheduler.Scheduler
}

// New loads the scene and renders its first frame
func New(ctx context.Context, config Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sc, err := scene.New(config.Scene)
	if err != nil {
		return nil, err
	}

	schedConf := scheduler.DefaultConfig(config.Width, config.Height)
	schedConf.Capacity = config.Capacity
	schedConf.MinArea = config.MinArea
	schedConf.Threshold = config.Threshold
	schedConf.DiffFormula = config.DiffFormula

	camera := geometry.NewCamera(sc.Frame)
	tracer := renderer.NewRaytracer(sc, renderer.Config{MaxBounces: config.MaxBounces})

	sched, err := scheduler.New(schedConf, tracer, camera)
	if err != nil {
		return nil, err
	}

	if err := sched.Prime(ctx); err != nil {
		sched.Close()
		return nil, err
	}

	return &Server{
		config:    config,
		scene:     sc,
		camera:    camera,
		tracer:    tracer,
		scheduler: sched,
	}, nil
}

// Run ticks the scheduler until ctx is done, then closes it
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()
	defer s.scheduler.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scheduler.OnTick()
		}
	}
}

// Handler returns the HTTP API
func (s *Server) Handler() http.Handler {
	var mux http.ServeMux
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/frame", s.handleFrame)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	mux.HandleFunc("POST /api/threshold", s.handleThreshold)
	mux.HandleFunc("POST /api/camera", s.handleCamera)
	mux.Handle("/ws", s.consoleHandler())
	return &mux
}

// State is the response of /api/state
type State struct {
	Scene     string          `json:"scene"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Phase     scheduler.Phase `json:"phase"`
	Threshold float64         `json:"threshold"`
	Frame     geometry.Frame  `json:"frame"`
	Stats     scheduler.Stats `json:"stats"`
}

func (s *Server) state() State {
	stats := s.scheduler.Stats()
	return State{
		Scene:     s.scene.Name,
		Width:     s.config.Width,
		Height:    s.config.Height,
		Phase:     stats.Phase,
		Threshold: stats.Threshold,
		Frame:     s.camera.Frame(),
		Stats:     stats,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.List())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

// ThresholdRequest is the body of POST /api/threshold
type ThresholdRequest struct {
	Threshold float64 `json:"threshold"`
}

func (s *Server) handleThreshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("decoding threshold request failed").
			WithType(ErrTypeBadRequest).
			Wrap(err))
		return
	}

	applied := s.scheduler.SetThreshold(req.Threshold)
	writeJSON(w, http.StatusOK, ThresholdRequest{Threshold: applied})
}

// CameraRequest moves the camera. Every field is optional; they are
// applied in the order Frame, Move, Orbit, Turn.
type CameraRequest struct {
	Frame *geometry.Frame `json:"frame,omitempty"`
	Move  *[3]float64     `json:"move,omitempty"`  // Camera space: right, up, forward
	Orbit float64         `json:"orbit,omitempty"` // Degrees around the look-at point
	Turn  float64         `json:"turn,omitempty"`  // Degrees around the eye
}

func (s *Server) applyCamera(req CameraRequest) geometry.Frame {
	if req.Frame != nil {
		s.camera.SetFrame(*req.Frame)
	}
	if req.Move != nil {
		s.camera.Move(vec3(*req.Move))
	}
	if req.Orbit != 0 {
		s.camera.Orbit(req.Orbit)
	}
	if req.Turn != 0 {
		s.camera.Turn(req.Turn)
	}
	return s.camera.Frame()
}

func (s *Server) handleCamera(w http.ResponseWriter, r *http.Request) {
	var req CameraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("decoding camera request failed").
			WithType(ErrTypeBadRequest).
			Wrap(err))
		return
	}

	frame := s.applyCamera(req)
	logs.WithTag("center", frame.Center).
		WithTag("look_at", frame.LookAt).
		Debug("camera moved")
	writeJSON(w, http.StatusOK, frame)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logs.Warn(errors.New("encoding response failed").Wrap(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	logs.WithTag("status", status).Debug(err)
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"type":  errors.Type(err),
	})
}

// parseIntParam parses an integer query parameter within [minValue, maxValue]
func parseIntParam(values url.Values, key string, defaultValue, minValue, maxValue int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Newf("invalid %s", key).
			WithType(ErrTypeBadRequest).
			WithTag("value", value).
			Wrap(err)
	}
	if parsed < minValue || parsed > maxValue {
		return 0, errors.Newf("%s out of range", key).
			WithType(ErrTypeBadRequest).
			WithTag("value", parsed).
			WithTag("min", minValue).
			WithTag("max", maxValue)
	}
	return parsed, nil
}

func missingParam(key string) error {
	return errors.Newf("missing %s", key).WithType(ErrTypeBadRequest)
}
