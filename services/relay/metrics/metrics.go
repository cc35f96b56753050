package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var RunsCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "assistant_relay",
	Name:      "runs_total",
	Help:      "Count of assistant runs by outcome",
}, []string{"outcome"})

var RunPollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "assistant_relay",
	Name:      "run_poll_attempts",
	Help:      "Number of status queries made per run",
	Buckets:   []float64{1, 2, 3, 5, 10, 20, 30, 45, 60},
})

var RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "assistant_relay",
	Name:      "run_duration_seconds",
	Help:      "Time spent waiting for a run to settle",
	Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
}, []string{"outcome"})

var ThreadsCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "assistant_relay",
	Name:      "threads_created_total",
	Help:      "Count of thread creation attempts by result",
}, []string{"result"})
