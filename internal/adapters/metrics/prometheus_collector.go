package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all metrics
	namespace = "solarion"
	// Subsystem for completion engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalCompletionCollector is set by SetGlobalCompletionCollector when metrics are enabled
	globalCompletionCollector CompletionMetricsRecorder
)

// CompletionMetricsRecorder is used by the completion engine to record events
type CompletionMetricsRecorder interface {
	RecordCompletion(kind, source, outcome string, duration time.Duration)
	RecordSweep(result string, processed, errored int, duration time.Duration)
	RecordDispatch(kind, driver string)
}

// InitRegistry initializes the Prometheus registry with Go runtime collectors.
// Should be called once at application startup if metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalCompletionCollector sets the global completion metrics collector
func SetGlobalCompletionCollector(collector CompletionMetricsRecorder) {
	globalCompletionCollector = collector
}

// RecordCompletion records one completion attempt globally
func RecordCompletion(kind, source, outcome string, duration time.Duration) {
	if globalCompletionCollector != nil {
		globalCompletionCollector.RecordCompletion(kind, source, outcome, duration)
	}
}

// RecordSweep records one sweeper run globally
func RecordSweep(result string, processed, errored int, duration time.Duration) {
	if globalCompletionCollector != nil {
		globalCompletionCollector.RecordSweep(result, processed, errored, duration)
	}
}

// RecordDispatch records a deferred completion job being enqueued globally
func RecordDispatch(kind, driver string) {
	if globalCompletionCollector != nil {
		globalCompletionCollector.RecordDispatch(kind, driver)
	}
}
