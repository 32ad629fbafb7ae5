package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommandMetricsCollector tracks mediator requests: player actions, on-read
// queries and operator commands alike
type CommandMetricsCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		// On-read queries may finish several records before returning, so the
		// upper buckets matter as much as the lower ones
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Mediator request duration by request and status",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1, 2.5, 10},
			},
			[]string{"command", "status"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Mediator requests by request and status (success, not_found, invalid, conflict, error)",
			},
			[]string{"command", "status"},
		),
	}
}

// Register adds the collector's metrics to the global registry. It is a no-op
// while metrics are disabled.
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, m := range []prometheus.Collector{c.duration, c.total} {
		if err := Registry.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommandExecution records one handled request
func (c *CommandMetricsCollector) RecordCommandExecution(command string, elapsed time.Duration, status string) {
	c.duration.WithLabelValues(command, status).Observe(elapsed.Seconds())
	c.total.WithLabelValues(command, status).Inc()
}
