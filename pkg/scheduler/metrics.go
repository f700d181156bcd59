package scheduler

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	phaseLabel   = "phase"
	laneLabel    = "lane"
	errTypeLabel = "error_type"
)

var (
	phaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_phase_duration_seconds",
		Help:    "The time taken by each lane phase.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
	}, []string{phaseLabel})

	raysTraced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_rays_traced",
		Help: "The number of primary rays traced.",
	}, []string{phaseLabel})

	restarts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_restarts",
		Help: "The number of refinements restarted by a viewpoint change.",
	})

	watermarkGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_watermark",
		Help: "The WorkOrder index where the slow pass starts.",
	})

	laneFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_lane_failures",
		Help: "The number of lanes that failed during a phase.",
	}, []string{phaseLabel, laneLabel, errTypeLabel})

	framesPresented = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_frames_presented",
		Help: "The number of converged frames presented.",
	})
)

func instrumentPhase(phase Phase, duration time.Duration, rays int64) {
	labels := prometheus.Labels{phaseLabel: phase.String()}
	phaseDuration.With(labels).Observe(duration.Seconds())
	raysTraced.With(labels).Add(float64(rays))
}

func instrumentRestart() {
	restarts.Inc()
}

func instrumentWatermark(value int) {
	watermarkGauge.Set(float64(value))
}

func instrumentLaneFailure(phase Phase, lane int, errType string) {
	laneFailures.
		With(prometheus.Labels{
			phaseLabel:   phase.String(),
			laneLabel:    strconv.Itoa(lane),
			errTypeLabel: errType,
		}).
		Inc()
}

func instrumentFramePresented() {
	framesPresented.Inc()
}
