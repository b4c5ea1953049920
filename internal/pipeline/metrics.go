package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpgdash_executions_total",
		Help: "Pipeline executions by outcome",
	}, []string{"outcome"})

	executionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mpgdash_execution_duration_seconds",
		Help:    "Duration of one derive-and-render pass",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	widgetSetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpgdash_widget_sets_total",
		Help: "Widget changes by key and result",
	}, []string{"key", "result"})
)

// Execution outcomes.
const (
	outcomeOK          = "ok"
	outcomeLoadError   = "load_error"
	outcomeDeriveError = "derive_error"
	outcomeRenderError = "render_error"
)
