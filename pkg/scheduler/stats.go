package scheduler

import (
	"maps"
	"time"
)

// PhaseStats contains statistics about the lanes of one phase
type PhaseStats struct {
	Runs     int           `json:"runs"`     // Number of lane sets launched for the phase
	Rays     int64         `json:"rays"`     // Primary rays traced
	Failures int           `json:"failures"` // Lanes that panicked
	Duration time.Duration `json:"duration"` // Wall time from launch to join
}

// Stats contains statistics about the current generation and totals since
// the scheduler was created.
type Stats struct {
	Generation  string  `json:"generation"`   // Id of the current generation
	Phase       Phase   `json:"phase"`        // Phase at the time of the copy
	Threshold   float64 `json:"threshold"`    // Current refinement threshold
	Nodes       int     `json:"nodes"`        // Nodes in the quadtree
	Points      int     `json:"points"`       // Samples in the quadtree
	Depth       int     `json:"depth"`        // Levels in the quadtree
	OrderLength int     `json:"order_length"` // Length of the WorkOrder
	Watermark   int     `json:"watermark"`    // Index where the slow pass starts
	Visits      int     `json:"visits"`       // Node visits this generation
	PixelsSet   int     `json:"pixels_set"`   // Pixels computed as of the last phase boundary

	Phases map[string]PhaseStats `json:"phases"` // Per-phase statistics for this generation

	FramesPresented int `json:"frames_presented"` // Converged frames presented, all generations
	Restarts        int `json:"restarts"`         // Viewpoint changes that restarted refinement
	LaneFailures    int `json:"lane_failures"`    // Lanes that panicked, all generations
}

func (s Stats) clone() Stats {
	s.Phases = maps.Clone(s.Phases)
	return s
}

// recordPhase adds one joined lane set to the generation statistics
func (s *Stats) recordPhase(phase Phase, rays int64, failures int, duration time.Duration) {
	if s.Phases == nil {
		s.Phases = make(map[string]PhaseStats)
	}

	ps := s.Phases[phase.String()]
	ps.Runs++
	ps.Rays += rays
	ps.Failures += failures
	ps.Duration += duration
	s.Phases[phase.String()] = ps

	s.LaneFailures += failures
}

// Rays returns the number of primary rays traced this generation
func (s Stats) Rays() int64 {
	var total int64
	for _, ps := range s.Phases {
		total += ps.Rays
	}
	return total
}
