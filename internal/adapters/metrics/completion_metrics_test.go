package metrics_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/adapters/metrics"
	"github.com/andrescamacho/solarion-go/internal/application/mediator"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

func TestCompletionMetricsCollector_RecordsThroughGlobals(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(func() {
		metrics.Registry = nil
		metrics.SetGlobalCompletionCollector(nil)
	})
	require.True(t, metrics.IsEnabled())

	collector := metrics.NewCompletionMetricsCollector(nil)
	require.NoError(t, collector.Register())
	metrics.SetGlobalCompletionCollector(collector)

	metrics.RecordCompletion("construction", "sweeper", "finished", 5*time.Millisecond)
	metrics.RecordCompletion("construction", "sweeper", "finished", 5*time.Millisecond)
	metrics.RecordSweep("errors", 2, 1, time.Second)
	metrics.RecordSweep("locked", 0, 0, 0)
	metrics.RecordDispatch("movement", "timer")

	count, err := testutil.GatherAndCount(metrics.Registry,
		"solarion_engine_completions_total",
		"solarion_engine_sweeps_total",
		"solarion_engine_dispatches_total",
	)
	require.NoError(t, err)
	// one completions series, two sweep results, one dispatch series
	assert.Equal(t, 4, count)
}

func TestCompletionMetricsCollector_PollsPendingCounts(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.Registry = nil })

	collector := metrics.NewCompletionMetricsCollector(func(ctx context.Context) (map[string]int64, error) {
		return map[string]int64{"construction": 3, "movement": 1}, nil
	})
	require.NoError(t, collector.Register())

	collector.Start(context.Background())
	defer collector.Stop()

	assert.Eventually(t, func() bool {
		n, err := testutil.GatherAndCount(metrics.Registry, "solarion_engine_pending_records")
		return err == nil && n == 2
	}, time.Second, 10*time.Millisecond)
}

type startConstructionCommand struct{}

func TestPrometheusMiddleware_RecordsCommandStatus(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.Registry = nil })

	collector := metrics.NewCommandMetricsCollector()
	require.NoError(t, collector.Register())
	mw := metrics.PrometheusMiddleware(collector)

	results := []error{
		nil,
		shared.NewNotFoundError("grid", 9),
		shared.NewConflictError("grid 9 is already being worked on"),
		errors.New("database is locked"),
	}
	for _, result := range results {
		result := result
		_, _ = mw(context.Background(), &startConstructionCommand{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return nil, result
		})
	}

	n, err := testutil.GatherAndCount(metrics.Registry, "solarion_engine_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	expected := `
# HELP solarion_engine_commands_total Mediator requests by request and status (success, not_found, invalid, conflict, error)
# TYPE solarion_engine_commands_total counter
solarion_engine_commands_total{command="startConstructionCommand",status="conflict"} 1
solarion_engine_commands_total{command="startConstructionCommand",status="error"} 1
solarion_engine_commands_total{command="startConstructionCommand",status="not_found"} 1
solarion_engine_commands_total{command="startConstructionCommand",status="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry, strings.NewReader(expected), "solarion_engine_commands_total"))
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	mw := metrics.PrometheusMiddleware(nil)
	resp, err := mw(context.Background(), &startConstructionCommand{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
