package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

// GormLocker implements named TTL locks on the cache_locks table. A lock is
// held by an owner token until it is released or its expiry passes, after
// which any caller may take it over.
type GormLocker struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormLocker creates a locker. If clock is nil, uses RealClock.
func NewGormLocker(db *gorm.DB, clock shared.Clock) *GormLocker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormLocker{db: db, clock: clock}
}

// Acquire tries once to take key for owner. It never blocks waiting for the
// current holder.
func (l *GormLocker) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	now := l.clock.Now().UTC()
	expiresAt := now.Add(ttl)

	result := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&CacheLockModel{Key: key, Owner: owner, ExpiresAt: expiresAt})
	if result.Error != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	// Held already: take it over only if the holder let it expire
	result = l.db.WithContext(ctx).Model(&CacheLockModel{}).
		Where("lock_key = ? AND expires_at <= ?", key, now).
		Updates(map[string]interface{}{"owner": owner, "expires_at": expiresAt})
	if result.Error != nil {
		return false, fmt.Errorf("failed to take over lock %s: %w", key, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Release frees key if owner still holds it
func (l *GormLocker) Release(ctx context.Context, key, owner string) error {
	err := l.db.WithContext(ctx).
		Where("lock_key = ? AND owner = ?", key, owner).
		Delete(&CacheLockModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Holder returns the current owner of key and when the lock expires
func (l *GormLocker) Holder(ctx context.Context, key string) (string, time.Time, bool, error) {
	var model CacheLockModel
	result := l.db.WithContext(ctx).Where("lock_key = ?", key).Limit(1).Find(&model)
	if result.Error != nil {
		return "", time.Time{}, false, fmt.Errorf("failed to read lock %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return "", time.Time{}, false, nil
	}
	return model.Owner, model.ExpiresAt, true, nil
}
