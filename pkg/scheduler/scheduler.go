// Package scheduler drives progressive, adaptive refinement of a raster.
// A quadtree over the raster orders nodes by how much their children
// disagree in color, and four lanes trace rays into the nodes most in need
// of work first. Refinement restarts whenever the viewpoint moves.
package scheduler

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/geometry"
	"github.com/df07/go-adaptive-raytracer/pkg/quadtree"
	"github.com/df07/go-adaptive-raytracer/pkg/raster"
	"github.com/google/uuid"
)

// Tracer computes the color seen along a primary ray. It must be safe for
// concurrent use.
type Tracer interface {
	Trace(ray core.Ray) core.Vec3
}

// Viewpoint provides the current camera pose
type Viewpoint interface {
	Frame() geometry.Frame
}

// Snapshot is a presented, fully converged frame
type Snapshot struct {
	Generation string
	Sequence   int
	Image      *image.RGBA
	Frame      geometry.Frame
	Stats      Stats
}

// Scheduler owns the quadtree, the raster, and the phase machine. OnTick
// must be called periodically; everything else is safe to call from any
// goroutine.
type Scheduler struct {
	config    Config
	tracer    Tracer
	viewpoint Viewpoint

	tree      *quadtree.Tree
	raster    *raster.Raster
	visits    *accumulator
	watermark *watermark

	ctx    context.Context
	cancel context.CancelFunc

	// Guarded by tickMu
	tickMu sync.Mutex
	order  WorkOrder
	frame  geometry.Frame
	lanes  *laneSet
	pass   *pass
	closed bool

	mu          sync.RWMutex
	phase       Phase
	threshold   float64
	current     *image.RGBA
	preview     *image.RGBA
	stats       Stats
	sequence    int
	subscribers map[int]chan Snapshot
	nextSub     int
}

// New builds the quadtree for the configured raster. Call Prime before the
// first OnTick.
func New(config Config, tracer Tracer, viewpoint Viewpoint) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.New("creating scheduler failed").Wrap(err)
	}

	start := time.Now()
	tree := quadtree.Build(config.Width, config.Height,
		quadtree.WithCapacity(config.Capacity),
		quadtree.WithMinArea(config.MinArea),
	)

	logs.WithTag("width", config.Width).
		WithTag("height", config.Height).
		WithTag("nodes", tree.Size()).
		WithTag("depth", tree.Depth()).
		WithTag("duration", time.Since(start)).
		Info("quadtree built")

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		config:      config,
		tracer:      tracer,
		viewpoint:   viewpoint,
		tree:        tree,
		raster:      raster.New(config.Width, config.Height),
		visits:      &accumulator{},
		watermark:   &watermark{},
		ctx:         ctx,
		cancel:      cancel,
		phase:       Start,
		threshold:   ClampThreshold(config.Threshold),
		subscribers: make(map[int]chan Snapshot),
	}

	s.stats.Nodes = tree.Size()
	s.stats.Points = tree.PointCount()
	s.stats.Depth = tree.Depth()
	s.order = BuildWorkOrder(tree)
	s.watermark.reset(len(s.order))
	return s, nil
}

// Prime renders the first frame at full fidelity and computes the initial
// WorkOrder. The phase is left at Start, so the next OnTick presents it.
func (s *Scheduler) Prime(ctx context.Context) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if s.closed {
		return errors.New("scheduler is closed")
	}
	s.stopLanes()

	s.frame = s.viewpoint.Frame()
	s.newGeneration(false)

	p := s.newPass()
	s.runLanes(ctx, Start, subtreeItems(s.tree), p, p.seedFull)
	if err := ctx.Err(); err != nil {
		return errors.New("priming scheduler failed").Wrap(err)
	}

	p = s.newPass()
	s.runLanes(ctx, SortWaiting, subtreeItems(s.tree), p, p.diff)
	if err := ctx.Err(); err != nil {
		return errors.New("priming scheduler failed").Wrap(err)
	}

	s.order = BuildWorkOrder(s.tree)
	s.watermark.reset(len(s.order))
	instrumentWatermark(len(s.order))
	s.setPhase(Start)

	stats := s.Stats()
	logs.WithTag("generation", stats.Generation).
		WithTag("rays", stats.Rays()).
		Info("first frame rendered")
	return nil
}

// runLanes launches a lane set and joins it before returning
func (s *Scheduler) runLanes(ctx context.Context, phase Phase, items [LaneCount]WorkItem, p *pass, fn laneFunc) {
	s.lanes = launch(ctx, phase, items, fn)
	s.pass = p
	s.lanes.wait()
	s.joinLanes()
}

// OnTick advances the phase machine by at most one step. It never blocks
// on running lanes, except to join them after a viewpoint change.
func (s *Scheduler) OnTick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if s.closed {
		return
	}

	phase := s.Phase()
	if phase == Finish {
		s.present()
		s.setPhase(None)
		return
	}

	if frame := s.viewpoint.Frame(); phase != Start && !frame.FuzzyEqual(s.frame) {
		s.restart(frame)
		return
	}

	if s.lanes != nil {
		if !s.lanes.finished() {
			return
		}
		s.lanes.wait()
		s.joinLanes()
	}

	switch phase {
	case Initial:
		p := s.newPass()
		s.startLanes(FastColor, strideItems(0), p, p.fast)

	case FastColor:
		p := s.newPass()
		s.startLanes(SlowColor, strideItems(s.watermark.value()), p, p.slow)

	case SlowColor:
		s.setPhase(Sort)

	case Start:
		s.setPhase(Finish)

	case Sort:
		p := s.newPass()
		s.startLanes(SortWaiting, subtreeItems(s.tree), p, p.diff)

	case SortWaiting:
		s.order = BuildWorkOrder(s.tree)
		s.setPhase(Finish)
	}
}

func (s *Scheduler) startLanes(phase Phase, items [LaneCount]WorkItem, p *pass, fn laneFunc) {
	s.pass = p
	s.lanes = launch(s.ctx, phase, items, fn)
	s.setPhase(phase)
}

// restart discards the current generation and begins refining the new pose
func (s *Scheduler) restart(frame geometry.Frame) {
	s.stopLanes()

	s.frame = frame
	s.newGeneration(true)

	p := s.newPass()
	s.startLanes(Initial, strideItems(0), p, p.seedPreview)
}

// stopLanes cancels and joins any running lanes
func (s *Scheduler) stopLanes() {
	if s.lanes == nil {
		return
	}
	s.lanes.stop()
	s.joinLanes()
}

// joinLanes records the statistics of a joined lane set and composes the
// preview image.
func (s *Scheduler) joinLanes() {
	ls, p := s.lanes, s.pass
	s.lanes, s.pass = nil, nil

	if !ls.interrupted() {
		switch ls.phase {
		case Start:
			p.finalizeRoot(true)
		case SortWaiting:
			p.finalizeRoot(false)
		}
	}

	failures := 0
	for lane, err := range ls.failures {
		if err == nil {
			continue
		}
		failures++
		logs.Warn(err)
		instrumentLaneFailure(ls.phase, lane, errors.Type(err))
	}

	duration := time.Since(ls.started)
	rays := p.totalRays()
	instrumentPhase(ls.phase, duration, rays)
	instrumentWatermark(s.watermark.value())

	preview := s.raster.Image()
	pixels := s.raster.SetCount()

	s.mu.Lock()
	s.stats.recordPhase(ls.phase, rays, failures, duration)
	s.stats.PixelsSet = pixels
	s.preview = preview
	s.mu.Unlock()

	logs.WithTag("phase", ls.phase).
		WithTag("rays", rays).
		WithTag("duration", duration).
		Debug("lanes joined")
}

// newGeneration resets per-generation state. Lanes must not be running.
func (s *Scheduler) newGeneration(restart bool) {
	s.visits.reset()
	s.watermark.reset(len(s.order))
	s.raster.Clear()

	id := uuid.NewString()

	s.mu.Lock()
	s.stats.Generation = id
	s.stats.Phases = nil
	s.stats.PixelsSet = 0
	if restart {
		s.stats.Restarts++
	}
	s.mu.Unlock()

	if restart {
		instrumentRestart()
		logs.WithTag("generation", id).
			WithTag("center", s.frame.Center).
			Debug("viewpoint moved, refinement restarted")
	}
}

func (s *Scheduler) newPass() *pass {
	return &pass{
		tree:      s.tree,
		raster:    s.raster,
		order:     s.order,
		tracer:    s.tracer,
		frame:     s.frame,
		threshold: s.Threshold(),
		formula:   s.config.DiffFormula,
		visits:    s.visits,
		watermark: s.watermark,
	}
}

// present commits the raster as the current image and notifies subscribers
func (s *Scheduler) present() {
	img := s.raster.Image()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = img
	s.preview = img
	s.sequence++
	s.stats.FramesPresented++
	instrumentFramePresented()

	snap := Snapshot{
		Generation: s.stats.Generation,
		Sequence:   s.sequence,
		Image:      img,
		Frame:      s.frame,
		Stats:      s.statsLocked(),
	}
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}

	logs.WithTag("generation", snap.Generation).
		WithTag("sequence", snap.Sequence).
		WithTag("rays", snap.Stats.Rays()).
		Info("frame presented")
}

// Converge ticks until the current viewpoint has been fully refined and
// presented.
func (s *Scheduler) Converge(ctx context.Context) error {
	for {
		s.OnTick()
		if s.Phase() == None {
			return nil
		}

		s.tickMu.Lock()
		closed := s.closed
		var done <-chan struct{}
		if s.lanes != nil {
			done = s.lanes.done
		}
		s.tickMu.Unlock()

		if closed {
			return errors.New("scheduler is closed")
		}
		if done == nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
	}
}

// Close cancels and joins running lanes and closes subscriber channels
func (s *Scheduler) Close() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.stopLanes()

	s.mu.Lock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.mu.Unlock()
}

// Subscribe returns a channel receiving every presented frame and a
// function to stop receiving. Frames are dropped for slow receivers.
func (s *Scheduler) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if ch, ok := s.subscribers[id]; ok {
			close(ch)
			delete(s.subscribers, id)
		}
	}
}

// CurrentRaster returns the last presented frame, or nil before the first
// one.
func (s *Scheduler) CurrentRaster() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Preview returns the raster as of the last phase boundary
func (s *Scheduler) Preview() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview
}

// Threshold returns the refinement threshold
func (s *Scheduler) Threshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// SetThreshold sets the refinement threshold, clamped to the valid range.
// It applies from the next launched phase.
func (s *Scheduler) SetThreshold(v float64) float64 {
	v = ClampThreshold(v)

	s.mu.Lock()
	s.threshold = v
	s.mu.Unlock()

	logs.WithTag("threshold", v).Debug("threshold changed")
	return v
}

// Phase returns the current phase
func (s *Scheduler) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Scheduler) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Stats returns a copy of the scheduler statistics
func (s *Scheduler) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func (s *Scheduler) statsLocked() Stats {
	stats := s.stats.clone()
	stats.Phase = s.phase
	stats.Threshold = s.threshold
	stats.OrderLength = s.stats.Nodes
	stats.Watermark = s.watermark.value()
	stats.Visits = s.visits.len()
	return stats
}
