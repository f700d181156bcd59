package scheduler

import "github.com/aukilabs/go-tooling/pkg/errors"

// Phase is the state of the refinement pipeline
type Phase int

const (
	// Start is the phase after Prime, before the first frame is presented.
	Start Phase = iota
	// Initial runs the reduced-fidelity seed after a viewpoint change.
	Initial
	// FastColor refines nodes whose score is above the threshold.
	FastColor
	// SlowColor fills in everything the fast pass skipped.
	SlowColor
	// Sort is about to recompute neighbor-difference scores.
	Sort
	// SortWaiting is recomputing scores; the WorkOrder is rebuilt after it.
	SortWaiting
	// Finish presents the raster on the next tick.
	Finish
	// None is idle until the viewpoint moves.
	None
)

func (p Phase) String() string {
	switch p {
	case Start:
		return "START"
	case Initial:
		return "INITIAL"
	case FastColor:
		return "FAST_COLOR"
	case SlowColor:
		return "SLOW_COLOR"
	case Sort:
		return "SORT"
	case SortWaiting:
		return "SORT_WAITING"
	case Finish:
		return "FINISH"
	case None:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := Start; candidate <= None; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return errors.New("unknown phase").WithTag("phase", string(text))
}
