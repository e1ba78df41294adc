// Package metrics exposes Prometheus metrics for plan generation, calorie tracking and the HTTP server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gpossst/fitplan/internal/recommend"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // metrics register once with the default registry.
var (
	// PlansGenerated counts generated plans by whether the user had dietary goals.
	PlansGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitplan_plans_generated_total",
			Help: "Total number of generated plans",
		},
		[]string{"dietary_goals"},
	)

	// TrainingDisciplines counts training disciplines included in generated plans.
	TrainingDisciplines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitplan_training_disciplines_total",
			Help: "Total number of training disciplines included in generated plans",
		},
		[]string{"discipline"},
	)

	// EmphasisFallbacks counts plans where no weight applied and the focus was split evenly.
	EmphasisFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitplan_emphasis_fallbacks_total",
			Help: "Total number of plans with an evenly split emphasis",
		},
	)

	CalorieEntriesTracked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitplan_calorie_entries_tracked_total",
			Help: "Total number of tracked calorie entries",
		},
	)

	// HTTPRequestDuration tracks request latency by route pattern and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitplan_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "pattern", "status"},
	)
)

// RecordPlan records a freshly generated plan.
func RecordPlan(plan recommend.Plan) {
	PlansGenerated.WithLabelValues(strconv.FormatBool(plan.Diet != nil)).Inc()
	for discipline := range plan.Training {
		TrainingDisciplines.WithLabelValues(string(discipline)).Inc()
	}
	if plan.Emphasis.Fallback {
		EmphasisFallbacks.Inc()
	}
}

func RecordCalorieEntry() {
	CalorieEntriesTracked.Inc()
}

// RecordHTTPRequest records a served request. Pattern is the matched route pattern, so that
// path parameters do not explode the label cardinality.
func RecordHTTPRequest(method, pattern string, status int, duration time.Duration) {
	if pattern == "" {
		pattern = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, pattern, strconv.Itoa(status)).Observe(duration.Seconds())
}
