package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/infrastructure/logging"
)

func TestLogger_JSONIncludesMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "json", "info", nil)

	logger.Log("ERROR", "Failed to complete timed event", map[string]interface{}{
		"kind": "construction",
		"id":   7,
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "Failed to complete timed event", line["msg"])
	assert.Equal(t, "construction", line["kind"])
	assert.Equal(t, float64(7), line["id"])
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "text", "warn", nil)

	logger.Log("INFO", "Sweep finished", nil)
	logger.Log("DEBUG", "Deferred completion was a no-op", nil)
	assert.Empty(t, buf.String())

	logger.Log("WARNING", "On-read finalization failed", nil)
	assert.Contains(t, buf.String(), "On-read finalization failed")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("verbose"))
}

type memoryStore struct {
	mu      sync.Mutex
	entries []string
	done    chan struct{}
}

func (s *memoryStore) Log(_ context.Context, level, message string, _ map[string]interface{}) error {
	s.mu.Lock()
	s.entries = append(s.entries, level+":"+message)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func TestPersistentLogger_StoresWarningsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	store := &memoryStore{done: make(chan struct{}, 4)}
	logger := logging.NewPersistentLogger(logging.NewWithWriter(&buf, "json", "debug", nil), store)

	logger.Log("INFO", "Sweep finished", nil)
	logger.Log("error", "Failed to complete timed event", nil)

	select {
	case <-store.done:
	case <-time.After(2 * time.Second):
		t.Fatal("entry was not persisted")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []string{"ERROR:Failed to complete timed event"}, store.entries)
	assert.Contains(t, buf.String(), "Sweep finished")
}
