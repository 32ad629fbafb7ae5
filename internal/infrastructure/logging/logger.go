package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/config"
)

// Logger adapts slog to the application's Log(level, message, metadata) shape
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

// New builds a logger from the logging section of the configuration
func New(cfg config.LoggingConfig) (*Logger, error) {
	var out io.Writer
	var closer io.Closer

	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
		}
		out, closer = f, f
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	return NewWithWriter(out, cfg.Format, cfg.Level, closer), nil
}

// NewWithWriter builds a logger writing to w. closer may be nil.
func NewWithWriter(w io.Writer, format, level string, closer io.Closer) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{slog: slog.New(handler), closer: closer}
}

// ParseLevel maps configuration and Log() level names onto slog levels.
// Unknown names log at info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Log implements common.Logger
func (l *Logger) Log(level, message string, metadata map[string]interface{}) {
	attrs := make([]slog.Attr, 0, len(metadata))
	for k, v := range metadata {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.slog.LogAttrs(context.Background(), ParseLevel(level), message, attrs...)
}

// Slog exposes the underlying logger for libraries that want one
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// EntryWriter persists a log line; persistence.GormEngineLogRepository satisfies it
type EntryWriter interface {
	Log(ctx context.Context, level, message string, metadata map[string]interface{}) error
}

// PersistentLogger forwards every line to next and writes warnings and errors
// to a store in the background, so a slow database never stalls a sweep
type PersistentLogger struct {
	next     common.Logger
	store    EntryWriter
	minLevel slog.Level
	timeout  time.Duration
}

// NewPersistentLogger wraps next; lines at or above WARNING are also stored
func NewPersistentLogger(next common.Logger, store EntryWriter) *PersistentLogger {
	return &PersistentLogger{
		next:     next,
		store:    store,
		minLevel: slog.LevelWarn,
		timeout:  5 * time.Second,
	}
}

// Log implements common.Logger
func (l *PersistentLogger) Log(level, message string, metadata map[string]interface{}) {
	l.next.Log(level, message, metadata)

	if ParseLevel(level) < l.minLevel {
		return
	}

	level = strings.ToUpper(level)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if err := l.store.Log(ctx, level, message, metadata); err != nil {
			l.next.Log("ERROR", "Failed to persist log entry", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}

var (
	_ common.Logger = (*Logger)(nil)
	_ common.Logger = (*PersistentLogger)(nil)
)
