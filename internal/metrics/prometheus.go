package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentimentscope_analysis_runs_total",
			Help: "Total analysis runs by platform and status",
		},
		[]string{"platform", "status"},
	)

	CommentsClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentimentscope_comments_classified_total",
			Help: "Total comments classified by platform and sentiment",
		},
		[]string{"platform", "sentiment"},
	)

	ClassificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentimentscope_classification_failures_total",
			Help: "Comments skipped because classification failed",
		},
	)

	ClassifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentimentscope_classify_duration_seconds",
			Help:    "Per-comment classification latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	PersistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentimentscope_persistence_failures_total",
			Help: "Storage writes that were logged and skipped",
		},
		[]string{"record"},
	)

	DegradedFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentimentscope_degraded_fetches_total",
			Help: "Fetches that produced zero comments for a platform",
		},
		[]string{"platform"},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisRunsTotal)
	prometheus.MustRegister(CommentsClassified)
	prometheus.MustRegister(ClassificationFailures)
	prometheus.MustRegister(ClassifyDuration)
	prometheus.MustRegister(PersistenceFailures)
	prometheus.MustRegister(DegradedFetches)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
