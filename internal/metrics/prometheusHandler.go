package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_research_sessions",
	Help: "Number of sessions that have not been torn down yet",
})

var tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "research_tasks_total",
	Help: "Queries routed to each task kind",
}, []string{"task"})

var generatorFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "generator_fallbacks_total",
	Help: "Answers replaced by a fallback sentence, by task and reason",
}, []string{"task", "reason"})

var classificationFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "classification_failures_total",
	Help: "Queries the classifier could not route to any task",
})

var teardownFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "session_teardown_failures_total",
	Help: "Session cleanups that left something behind",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementActiveSessions() {
	activeSessions.Inc()
}

func DecrementActiveSessions() {
	activeSessions.Dec()
}

func IncrementTask(task string) {
	tasksTotal.WithLabelValues(task).Inc()
}

func IncrementGeneratorFallback(task string, reason string) {
	generatorFallbacks.WithLabelValues(task, reason).Inc()
}

func IncrementClassificationFailure() {
	classificationFailures.Inc()
}

func IncrementTeardownFailure() {
	teardownFailures.Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "research_request_duration_seconds",
	Help:    "Total time spent in one research request.",
	Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of pipeline steps and external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureResearchMetrics(status string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}
