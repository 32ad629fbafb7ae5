package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PendingCounter reports the number of pending records per kind
type PendingCounter func(ctx context.Context) (map[string]int64, error)

// CompletionMetricsCollector handles timed-event completion metrics
type CompletionMetricsCollector struct {
	completionsTotal   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	sweepsTotal        *prometheus.CounterVec
	sweepDuration      prometheus.Histogram
	sweepRecords       *prometheus.CounterVec
	dispatchesTotal    *prometheus.CounterVec
	pendingRecords     *prometheus.GaugeVec

	counter      PendingCounter
	pollInterval time.Duration

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewCompletionMetricsCollector creates a collector. counter may be nil, in
// which case the pending gauge is never populated.
func NewCompletionMetricsCollector(counter PendingCounter) *CompletionMetricsCollector {
	return &CompletionMetricsCollector{
		completionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "completions_total",
				Help:      "Completion attempts by kind, entry point and outcome",
			},
			[]string{"kind", "source", "outcome"},
		),
		completionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "completion_duration_seconds",
				Help:      "Duration of one completion transaction",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"kind"},
		),
		sweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweeps_total",
				Help:      "Sweeper runs by result (ok, errors, locked)",
			},
			[]string{"result"},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of sweeper runs that acquired the lock",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 15.0, 30.0, 60.0},
			},
		),
		sweepRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweep_records_total",
				Help:      "Records handled by the sweeper by status",
			},
			[]string{"status"},
		),
		dispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatches_total",
				Help:      "Deferred completion jobs enqueued by kind and queue driver",
			},
			[]string{"kind", "driver"},
		),
		pendingRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pending_records",
				Help:      "Pending timed events per kind",
			},
			[]string{"kind"},
		),
		counter:      counter,
		pollInterval: 30 * time.Second,
	}
}

// Register registers all completion metrics with the Prometheus registry
func (c *CompletionMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.completionsTotal,
		c.completionDuration,
		c.sweepsTotal,
		c.sweepDuration,
		c.sweepRecords,
		c.dispatchesTotal,
		c.pendingRecords,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// SetPollInterval changes how often pending counts are refreshed. It must be
// called before Start; non-positive values are ignored.
func (c *CompletionMetricsCollector) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		c.pollInterval = interval
	}
}

// Start begins polling pending counts in the background
func (c *CompletionMetricsCollector) Start(ctx context.Context) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)
	if c.counter == nil {
		return
	}
	c.wg.Add(1)
	go c.pollMetrics(c.pollInterval)
}

// Stop gracefully stops the collector
func (c *CompletionMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *CompletionMetricsCollector) pollMetrics(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.updatePending()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updatePending()
		}
	}
}

func (c *CompletionMetricsCollector) updatePending() {
	counts, err := c.counter(c.ctx)
	if err != nil {
		log.Printf("metrics: failed to count pending records: %v", err)
		return
	}
	c.pendingRecords.Reset()
	for kind, n := range counts {
		c.pendingRecords.WithLabelValues(kind).Set(float64(n))
	}
}

// RecordCompletion records one completion attempt
func (c *CompletionMetricsCollector) RecordCompletion(kind, source, outcome string, duration time.Duration) {
	c.completionsTotal.WithLabelValues(kind, source, outcome).Inc()
	c.completionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordSweep records one sweeper run
func (c *CompletionMetricsCollector) RecordSweep(result string, processed, errored int, duration time.Duration) {
	c.sweepsTotal.WithLabelValues(result).Inc()
	if result == "locked" {
		return
	}
	c.sweepDuration.Observe(duration.Seconds())
	c.sweepRecords.WithLabelValues("processed").Add(float64(processed))
	c.sweepRecords.WithLabelValues("errored").Add(float64(errored))
}

// RecordDispatch records a deferred completion job being enqueued
func (c *CompletionMetricsCollector) RecordDispatch(kind, driver string) {
	c.dispatchesTotal.WithLabelValues(kind, driver).Inc()
}
