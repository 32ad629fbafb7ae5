package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

// EngineLogEntry is one persisted engine log line
type EngineLogEntry struct {
	ID        int64
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormEngineLogRepository persists warnings and errors raised while completing
// timed events, so operators can inspect failures after the fact.
type GormEngineLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	// Identical messages within dedupWindow are written once
	dedupCache   map[string]time.Time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormEngineLogRepository creates a new engine log repository.
// If clock is nil, uses RealClock.
func NewGormEngineLogRepository(db *gorm.DB, clock shared.Clock) *GormEngineLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormEngineLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes an entry unless the same level and message was written within the window
func (r *GormEngineLogRepository) Log(ctx context.Context, level, message string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := level + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON string
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	return r.db.WithContext(ctx).Create(&EngineLogModel{
		Timestamp: now.UTC(),
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}).Error
}

// must be called with dedupMu held
func (r *GormEngineLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, ts := range r.dedupCache {
		if ts.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// Recent returns the newest entries, optionally filtered by level
func (r *GormEngineLogRepository) Recent(ctx context.Context, limit int, level *string) ([]EngineLogEntry, error) {
	var models []EngineLogModel

	query := r.db.WithContext(ctx)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if err := query.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]EngineLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = EngineLogEntry{
			ID:        model.ID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}

// PruneBefore deletes entries older than cutoff
func (r *GormEngineLogRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("timestamp < ?", cutoff.UTC()).Delete(&EngineLogModel{})
	return result.RowsAffected, result.Error
}
