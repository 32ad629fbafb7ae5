package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/solarion-go/internal/domain/game"
)

// GormConstructionRepository stores pending constructions
type GormConstructionRepository struct {
	*gormPendingRepository[ConstructionModel, *game.Construction]
}

func NewGormConstructionRepository(db *gorm.DB) *GormConstructionRepository {
	return &GormConstructionRepository{&gormPendingRepository[ConstructionModel, *game.Construction]{
		db:       db,
		resource: "construction",
		mapper: pendingMapper[ConstructionModel, *game.Construction]{
			toDomain: func(m *ConstructionModel) *game.Construction {
				return &game.Construction{
					ID:         m.ID,
					GridID:     m.GridID,
					BuildingID: m.BuildingID,
					Level:      m.Level,
					CreatedAt:  m.CreatedAt,
					Timeable:   m.EndedAt.Timeable(),
				}
			},
			toModel: func(c *game.Construction) *ConstructionModel {
				return &ConstructionModel{
					ID:         c.ID,
					GridID:     c.GridID,
					BuildingID: c.BuildingID,
					Level:      c.Level,
					CreatedAt:  c.CreatedAt.UTC(),
					EndedAt:    lenientFrom(c.Timeable),
				}
			},
			idOf:  func(m *ConstructionModel) int64 { return m.ID },
			setID: func(c *game.Construction, id int64) { c.ID = id },
		},
	}}
}

// FindByGridIDs returns the constructions running on any of the grids
func (r *GormConstructionRepository) FindByGridIDs(ctx context.Context, gridIDs []int64) ([]*game.Construction, error) {
	if len(gridIDs) == 0 {
		return nil, nil
	}
	return r.findWhere(ctx, "grid_id IN ?", gridIDs)
}

// GormUpgradeRepository stores pending upgrades
type GormUpgradeRepository struct {
	*gormPendingRepository[UpgradeModel, *game.Upgrade]
}

func NewGormUpgradeRepository(db *gorm.DB) *GormUpgradeRepository {
	return &GormUpgradeRepository{&gormPendingRepository[UpgradeModel, *game.Upgrade]{
		db:       db,
		resource: "upgrade",
		mapper: pendingMapper[UpgradeModel, *game.Upgrade]{
			toDomain: func(m *UpgradeModel) *game.Upgrade {
				return &game.Upgrade{
					ID:         m.ID,
					GridID:     m.GridID,
					BuildingID: m.BuildingID,
					Level:      m.Level,
					CreatedAt:  m.CreatedAt,
					Timeable:   m.EndedAt.Timeable(),
				}
			},
			toModel: func(u *game.Upgrade) *UpgradeModel {
				return &UpgradeModel{
					ID:         u.ID,
					GridID:     u.GridID,
					BuildingID: u.BuildingID,
					Level:      u.Level,
					CreatedAt:  u.CreatedAt.UTC(),
					EndedAt:    lenientFrom(u.Timeable),
				}
			},
			idOf:  func(m *UpgradeModel) int64 { return m.ID },
			setID: func(u *game.Upgrade, id int64) { u.ID = id },
		},
	}}
}

// FindByGridIDs returns the upgrades running on any of the grids
func (r *GormUpgradeRepository) FindByGridIDs(ctx context.Context, gridIDs []int64) ([]*game.Upgrade, error) {
	if len(gridIDs) == 0 {
		return nil, nil
	}
	return r.findWhere(ctx, "grid_id IN ?", gridIDs)
}

// GormTrainingRepository stores pending unit trainings
type GormTrainingRepository struct {
	*gormPendingRepository[TrainingModel, *game.Training]
}

func NewGormTrainingRepository(db *gorm.DB) *GormTrainingRepository {
	return &GormTrainingRepository{&gormPendingRepository[TrainingModel, *game.Training]{
		db:       db,
		resource: "training",
		mapper: pendingMapper[TrainingModel, *game.Training]{
			toDomain: func(m *TrainingModel) *game.Training {
				return &game.Training{
					ID:        m.ID,
					GridID:    m.GridID,
					PlanetID:  m.PlanetID,
					UnitID:    m.UnitID,
					Quantity:  m.Quantity,
					CreatedAt: m.CreatedAt,
					Timeable:  m.EndedAt.Timeable(),
				}
			},
			toModel: func(t *game.Training) *TrainingModel {
				return &TrainingModel{
					ID:        t.ID,
					GridID:    t.GridID,
					PlanetID:  t.PlanetID,
					UnitID:    t.UnitID,
					Quantity:  t.Quantity,
					CreatedAt: t.CreatedAt.UTC(),
					EndedAt:   lenientFrom(t.Timeable),
				}
			},
			idOf:  func(m *TrainingModel) int64 { return m.ID },
			setID: func(t *game.Training, id int64) { t.ID = id },
		},
	}}
}

// FindByGridIDs returns the trainings running on any of the grids
func (r *GormTrainingRepository) FindByGridIDs(ctx context.Context, gridIDs []int64) ([]*game.Training, error) {
	if len(gridIDs) == 0 {
		return nil, nil
	}
	return r.findWhere(ctx, "grid_id IN ?", gridIDs)
}

// GormResearchRepository stores pending research jobs
type GormResearchRepository struct {
	*gormPendingRepository[ResearchModel, *game.Research]
}

func NewGormResearchRepository(db *gorm.DB) *GormResearchRepository {
	return &GormResearchRepository{&gormPendingRepository[ResearchModel, *game.Research]{
		db:       db,
		resource: "research",
		mapper: pendingMapper[ResearchModel, *game.Research]{
			toDomain: func(m *ResearchModel) *game.Research {
				return &game.Research{
					ID:         m.ID,
					UserID:     m.UserID,
					ResearchID: m.ResearchID,
					Level:      m.Level,
					CreatedAt:  m.CreatedAt,
					Timeable:   m.EndedAt.Timeable(),
				}
			},
			toModel: func(r *game.Research) *ResearchModel {
				return &ResearchModel{
					ID:         r.ID,
					UserID:     r.UserID,
					ResearchID: r.ResearchID,
					Level:      r.Level,
					CreatedAt:  r.CreatedAt.UTC(),
					EndedAt:    lenientFrom(r.Timeable),
				}
			},
			idOf:  func(m *ResearchModel) int64 { return m.ID },
			setID: func(r *game.Research, id int64) { r.ID = id },
		},
	}}
}

// FindByUser returns the research jobs of a user
func (r *GormResearchRepository) FindByUser(ctx context.Context, userID int64) ([]*game.Research, error) {
	return r.findWhere(ctx, "user_id = ?", userID)
}

// GormMovementRepository stores fleets in flight together with their units
type GormMovementRepository struct {
	*gormPendingRepository[MovementModel, *game.Movement]
}

func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{&gormPendingRepository[MovementModel, *game.Movement]{
		db:       db,
		resource: "movement",
		preload:  []string{"Units"},
		mapper: pendingMapper[MovementModel, *game.Movement]{
			toDomain: movementToDomain,
			toModel:  movementToModel,
			idOf:     func(m *MovementModel) int64 { return m.ID },
			setID:    func(m *game.Movement, id int64) { m.ID = id },
		},
	}}
}

// FindInvolving returns movements sent by userID or heading to one of planetIDs
func (r *GormMovementRepository) FindInvolving(ctx context.Context, userID int64, planetIDs []int64) ([]*game.Movement, error) {
	if len(planetIDs) == 0 {
		return r.findWhere(ctx, "user_id = ?", userID)
	}
	return r.findWhere(ctx, "user_id = ? OR end_planet_id IN ?", userID, planetIDs)
}

// Delete removes the movement and its fleet rows
func (r *GormMovementRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movement_id = ?", id).Delete(&MovementUnitModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete movement units %d: %w", id, err)
		}
		if err := tx.Where("id = ?", id).Delete(&MovementModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete movement %d: %w", id, err)
		}
		return nil
	})
}

// DeleteAllExpired bulk-deletes movements that ended before now, fleet rows included
func (r *GormMovementRepository) DeleteAllExpired(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&MovementModel{}).Select("id").Where("ended_at < ?", now.UTC())
		if err := tx.Where("movement_id IN (?)", expired).Delete(&MovementUnitModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete expired movement units: %w", err)
		}
		result := tx.Where("ended_at < ?", now.UTC()).Delete(&MovementModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete expired movements: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

func movementToDomain(m *MovementModel) *game.Movement {
	units := make(game.Fleet, len(m.Units))
	for _, u := range m.Units {
		units[u.UnitID] += u.Quantity
	}
	return &game.Movement{
		ID:            m.ID,
		UserID:        m.UserID,
		StartPlanetID: m.StartPlanetID,
		EndPlanetID:   m.EndPlanetID,
		Type:          game.MovementType(m.Type),
		Units:         units,
		Solarion:      m.Solarion,
		CreatedAt:     m.CreatedAt,
		Timeable:      m.EndedAt.Timeable(),
	}
}

func movementToModel(m *game.Movement) *MovementModel {
	model := &MovementModel{
		ID:            m.ID,
		UserID:        m.UserID,
		StartPlanetID: m.StartPlanetID,
		EndPlanetID:   m.EndPlanetID,
		Type:          string(m.Type),
		Solarion:      m.Solarion,
		CreatedAt:     m.CreatedAt.UTC(),
		EndedAt:       lenientFrom(m.Timeable),
	}
	for _, unitID := range m.Units.UnitIDs() {
		if qty := m.Units[unitID]; qty > 0 {
			model.Units = append(model.Units, MovementUnitModel{UnitID: unitID, Quantity: qty})
		}
	}
	return model
}
