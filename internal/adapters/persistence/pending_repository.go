package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// pendingMapper converts between a pending-table model and its domain entity
type pendingMapper[M any, E timer.Entity] struct {
	toDomain func(m *M) E
	toModel  func(e E) *M
	idOf     func(m *M) int64
	setID    func(e E, id int64)
}

// gormPendingRepository implements game.PendingRepository for any pending table.
// The per-kind repositories embed it and add their own finders.
type gormPendingRepository[M any, E timer.Entity] struct {
	db       *gorm.DB
	resource string
	mapper   pendingMapper[M, E]
	preload  []string
}

func (r *gormPendingRepository[M, E]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, assoc := range r.preload {
		q = q.Preload(assoc)
	}
	return q
}

// FindByID loads one pending record
func (r *gormPendingRepository[M, E]) FindByID(ctx context.Context, id int64) (E, error) {
	var zero E
	var model M

	err := r.query(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, shared.NewNotFoundError(r.resource, id)
		}
		return zero, fmt.Errorf("failed to find %s: %w", r.resource, err)
	}

	return r.mapper.toDomain(&model), nil
}

// Claim loads the record with SELECT ... FOR UPDATE. SQLite has no row locks
// and serialises writers instead, so the dialect drops the clause there.
func (r *gormPendingRepository[M, E]) Claim(ctx context.Context, id int64) (E, error) {
	var zero E
	var model M

	err := r.query(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, shared.NewNotFoundError(r.resource, id)
		}
		return zero, fmt.Errorf("failed to claim %s: %w", r.resource, err)
	}

	return r.mapper.toDomain(&model), nil
}

// FindDue loads a keyset page of due records ordered by (ended_at, id)
func (r *gormPendingRepository[M, E]) FindDue(ctx context.Context, now time.Time, after *game.Cursor, limit int) ([]E, error) {
	var models []M

	q := r.query(ctx).
		Where("ended_at IS NOT NULL AND ended_at <= ?", now.UTC())

	if after != nil {
		q = q.Where("(ended_at > ? OR (ended_at = ? AND id > ?))",
			after.EndedAt.UTC(), after.EndedAt.UTC(), after.ID)
	}

	q = q.Order("ended_at ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find due %s records: %w", r.resource, err)
	}

	return r.toDomainSlice(models), nil
}

// Add inserts a new record and writes the generated id back to e
func (r *gormPendingRepository[M, E]) Add(ctx context.Context, e E) error {
	model := r.mapper.toModel(e)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to add %s: %w", r.resource, err)
	}

	r.mapper.setID(e, r.mapper.idOf(model))
	return nil
}

// Delete removes the record by id; a missing record is not an error
func (r *gormPendingRepository[M, E]) Delete(ctx context.Context, id int64) error {
	var model M
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model).Error; err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", r.resource, id, err)
	}
	return nil
}

// DeleteAllExpired bulk-deletes records that ended strictly before now
func (r *gormPendingRepository[M, E]) DeleteAllExpired(ctx context.Context, now time.Time) (int64, error) {
	var model M
	result := r.db.WithContext(ctx).Where("ended_at < ?", now.UTC()).Delete(&model)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired %s records: %w", r.resource, result.Error)
	}
	return result.RowsAffected, nil
}

// Count returns the number of pending records in the table
func (r *gormPendingRepository[M, E]) Count(ctx context.Context) (int64, error) {
	var count int64
	var model M
	if err := r.db.WithContext(ctx).Model(&model).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", r.resource, err)
	}
	return count, nil
}

func (r *gormPendingRepository[M, E]) findWhere(ctx context.Context, query interface{}, args ...interface{}) ([]E, error) {
	var models []M
	if err := r.query(ctx).Where(query, args...).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s records: %w", r.resource, err)
	}
	return r.toDomainSlice(models), nil
}

func (r *gormPendingRepository[M, E]) toDomainSlice(models []M) []E {
	entities := make([]E, len(models))
	for i := range models {
		entities[i] = r.mapper.toDomain(&models[i])
	}
	return entities
}
