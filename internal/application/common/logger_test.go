package common_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/solarion-go/internal/application/common"
)

type captured struct {
	level    string
	message  string
	metadata map[string]interface{}
}

type captureLogger struct{ lines []captured }

func (l *captureLogger) Log(level, message string, metadata map[string]interface{}) {
	l.lines = append(l.lines, captured{level, message, metadata})
}

func TestLoggerFromContext_DefaultsToNoOp(t *testing.T) {
	logger := common.LoggerFromContext(context.Background())
	assert.NotPanics(t, func() { logger.Log("INFO", "Sweep finished", nil) })
}

func TestWithFields_MergesAndNests(t *testing.T) {
	base := &captureLogger{}
	sweep := common.WithFields(base, map[string]interface{}{"sweep_id": "sweep-1", "kind": "all"})
	kind := common.WithFields(sweep, map[string]interface{}{"kind": "movement"})

	ctx := common.WithLogger(context.Background(), kind)
	common.LoggerFromContext(ctx).Log("ERROR", "Failed to complete timed event", map[string]interface{}{"id": int64(7)})

	assert.Equal(t, []captured{{
		level:   "ERROR",
		message: "Failed to complete timed event",
		metadata: map[string]interface{}{
			"sweep_id": "sweep-1",
			"kind":     "movement",
			"id":       int64(7),
		},
	}}, base.lines)
}

func TestWithFields_CallMetadataWins(t *testing.T) {
	base := &captureLogger{}
	logger := common.WithFields(base, map[string]interface{}{"source": "sweeper"})

	logger.Log("DEBUG", "Deferred completion was a no-op", map[string]interface{}{"source": "dispatch"})

	assert.Equal(t, "dispatch", base.lines[0].metadata["source"])
	assert.Same(t, base, common.WithFields(base, nil))
}
