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
)

// GormCatalogRepository reads the static building, unit and research catalog
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// Building retrieves a building definition
func (r *GormCatalogRepository) Building(ctx context.Context, id int64) (*game.Building, error) {
	var model BuildingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("building", id)
		}
		return nil, fmt.Errorf("failed to find building: %w", err)
	}
	return &game.Building{
		ID:               model.ID,
		Name:             model.Name,
		Type:             game.BuildingType(model.Type),
		EndLevel:         model.EndLevel,
		ConstructionTime: seconds(model.ConstructionTime),
		ConstructionCost: model.ConstructionCost,
		UpgradeTime:      seconds(model.UpgradeTime),
		UpgradeCost:      model.UpgradeCost,
	}, nil
}

// Unit retrieves a unit definition
func (r *GormCatalogRepository) Unit(ctx context.Context, id int64) (*game.Unit, error) {
	var model UnitModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("unit", id)
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	return unitToDomain(&model), nil
}

// Units returns every unit definition keyed by id
func (r *GormCatalogRepository) Units(ctx context.Context) (map[int64]*game.Unit, error) {
	var models []UnitModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	units := make(map[int64]*game.Unit, len(models))
	for i := range models {
		units[models[i].ID] = unitToDomain(&models[i])
	}
	return units, nil
}

// ResearchItem retrieves a research item definition
func (r *GormCatalogRepository) ResearchItem(ctx context.Context, id int64) (*game.ResearchItem, error) {
	var model ResearchItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("research item", id)
		}
		return nil, fmt.Errorf("failed to find research item: %w", err)
	}
	return &game.ResearchItem{
		ID:           model.ID,
		Name:         model.Name,
		ResearchTime: seconds(model.ResearchTime),
		MaxLevel:     model.MaxLevel,
	}, nil
}

// Upsert writes catalog definitions, replacing existing rows with the same id
func (r *GormCatalogRepository) Upsert(ctx context.Context, buildings []BuildingModel, units []UnitModel, items []ResearchItemModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true})
		if len(buildings) > 0 {
			if err := upsert.Create(&buildings).Error; err != nil {
				return fmt.Errorf("failed to seed buildings: %w", err)
			}
		}
		if len(units) > 0 {
			if err := upsert.Create(&units).Error; err != nil {
				return fmt.Errorf("failed to seed units: %w", err)
			}
		}
		if len(items) > 0 {
			if err := upsert.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to seed research items: %w", err)
			}
		}
		return nil
	})
}

func unitToDomain(m *UnitModel) *game.Unit {
	return &game.Unit{
		ID:        m.ID,
		Name:      m.Name,
		Speed:     m.Speed,
		Attack:    m.Attack,
		Defense:   m.Defense,
		Capacity:  m.Capacity,
		TrainTime: seconds(m.TrainTime),
		TrainCost: m.TrainCost,
	}
}

func seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}
