package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ErrTypeLaneFailure is the error type of a lane that panicked.
const ErrTypeLaneFailure = "lane_failure"

// LaneCount is the number of concurrent lanes in every phase
const LaneCount = 4

// WorkItem is the starting point of one lane
type WorkItem struct {
	Lane  int // Lane number, also the quadrant for subtree passes
	Root  int // Subtree root for recursive passes, -1 for none
	Start int // First WorkOrder index for strided passes
}

type laneFunc func(ctx context.Context, item WorkItem)

// laneSet is one phase's worth of running lanes
type laneSet struct {
	phase   Phase
	started time.Time
	parent  context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool

	// Written only by the owning lane, read after done is closed
	failures [LaneCount]error
}

// launch starts exactly LaneCount goroutines, one per item
func launch(ctx context.Context, phase Phase, items [LaneCount]WorkItem, fn laneFunc) *laneSet {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	ls := &laneSet{
		phase:   phase,
		started: time.Now(),
		parent:  parent,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	ls.wg.Add(LaneCount)
	for _, item := range items {
		go ls.run(ctx, item, fn)
	}

	go func() {
		ls.wg.Wait()
		close(ls.done)
	}()

	return ls
}

func (ls *laneSet) run(ctx context.Context, item WorkItem, fn laneFunc) {
	defer ls.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			ls.failures[item.Lane] = errors.Newf("lane failed: %v", r).
				WithType(ErrTypeLaneFailure).
				WithTag("phase", ls.phase.String()).
				WithTag("lane", item.Lane)
		}
	}()

	fn(ctx, item)
}

// finished reports whether every lane has returned, without blocking
func (ls *laneSet) finished() bool {
	select {
	case <-ls.done:
		return true
	default:
		return false
	}
}

// wait joins all lanes
func (ls *laneSet) wait() {
	<-ls.done
	ls.cancel()
}

// stop cancels all lanes and joins them
func (ls *laneSet) stop() {
	ls.stopped = true
	ls.cancel()
	<-ls.done
}

// interrupted reports whether the lanes were cancelled before completing
func (ls *laneSet) interrupted() bool {
	return ls.stopped || ls.parent.Err() != nil
}
