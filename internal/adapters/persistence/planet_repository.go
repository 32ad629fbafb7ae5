package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

// GormUserRepository implements game.UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by id
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*game.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &game.User{
		ID:        model.ID,
		Name:      model.Name,
		CapitalID: model.CapitalID,
		CurrentID: model.CurrentID,
	}, nil
}

// Save inserts or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *game.User) error {
	model := &UserModel{
		ID:        user.ID,
		Name:      user.Name,
		CapitalID: user.CapitalID,
		CurrentID: user.CurrentID,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	user.ID = model.ID
	return nil
}

// GormPlanetRepository implements game.PlanetRepository
type GormPlanetRepository struct {
	db *gorm.DB
}

func NewGormPlanetRepository(db *gorm.DB) *GormPlanetRepository {
	return &GormPlanetRepository{db: db}
}

// FindByID retrieves a planet by id
func (r *GormPlanetRepository) FindByID(ctx context.Context, id int64) (*game.Planet, error) {
	var model PlanetModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("planet", id)
		}
		return nil, fmt.Errorf("failed to find planet: %w", err)
	}
	return planetToDomain(&model), nil
}

// FindByUser lists the planets owned by a user
func (r *GormPlanetRepository) FindByUser(ctx context.Context, userID int64) ([]*game.Planet, error) {
	var models []PlanetModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list planets: %w", err)
	}
	planets := make([]*game.Planet, len(models))
	for i := range models {
		planets[i] = planetToDomain(&models[i])
	}
	return planets, nil
}

// Save inserts or updates a planet
func (r *GormPlanetRepository) Save(ctx context.Context, planet *game.Planet) error {
	model := &PlanetModel{
		ID:       planet.ID,
		UserID:   planet.UserID,
		Name:     planet.Name,
		X:        planet.X,
		Y:        planet.Y,
		Solarion: planet.Solarion,
		Capacity: planet.Capacity,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save planet: %w", err)
	}
	planet.ID = model.ID
	return nil
}

func planetToDomain(m *PlanetModel) *game.Planet {
	return &game.Planet{
		ID:       m.ID,
		UserID:   m.UserID,
		Name:     m.Name,
		X:        m.X,
		Y:        m.Y,
		Solarion: m.Solarion,
		Capacity: m.Capacity,
	}
}

// GormGridRepository implements game.GridRepository
type GormGridRepository struct {
	db *gorm.DB
}

func NewGormGridRepository(db *gorm.DB) *GormGridRepository {
	return &GormGridRepository{db: db}
}

// FindByID retrieves a grid slot by id
func (r *GormGridRepository) FindByID(ctx context.Context, id int64) (*game.Grid, error) {
	var model GridModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("grid", id)
		}
		return nil, fmt.Errorf("failed to find grid: %w", err)
	}
	return gridToDomain(&model), nil
}

// FindByPlanet lists the grid slots of a planet
func (r *GormGridRepository) FindByPlanet(ctx context.Context, planetID int64) ([]*game.Grid, error) {
	var models []GridModel
	if err := r.db.WithContext(ctx).Where("planet_id = ?", planetID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list grids: %w", err)
	}
	grids := make([]*game.Grid, len(models))
	for i := range models {
		grids[i] = gridToDomain(&models[i])
	}
	return grids, nil
}

// Save inserts or updates a grid slot
func (r *GormGridRepository) Save(ctx context.Context, grid *game.Grid) error {
	model := &GridModel{
		ID:         grid.ID,
		PlanetID:   grid.PlanetID,
		X:          grid.X,
		Y:          grid.Y,
		BuildingID: grid.BuildingID,
		Level:      grid.Level,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save grid: %w", err)
	}
	grid.ID = model.ID
	return nil
}

func gridToDomain(m *GridModel) *game.Grid {
	return &game.Grid{
		ID:         m.ID,
		PlanetID:   m.PlanetID,
		X:          m.X,
		Y:          m.Y,
		BuildingID: m.BuildingID,
		Level:      m.Level,
	}
}

// GormGarrisonRepository implements game.GarrisonRepository
type GormGarrisonRepository struct {
	db *gorm.DB
}

func NewGormGarrisonRepository(db *gorm.DB) *GormGarrisonRepository {
	return &GormGarrisonRepository{db: db}
}

// Get returns the units stationed on a planet
func (r *GormGarrisonRepository) Get(ctx context.Context, planetID int64) (game.Fleet, error) {
	var models []GarrisonModel
	if err := r.db.WithContext(ctx).
		Where("planet_id = ? AND quantity > 0", planetID).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load garrison: %w", err)
	}
	fleet := make(game.Fleet, len(models))
	for _, m := range models {
		fleet[m.UnitID] = m.Quantity
	}
	return fleet, nil
}

// Add stations units on a planet, adding to existing stacks
func (r *GormGarrisonRepository) Add(ctx context.Context, planetID int64, units game.Fleet) error {
	for _, unitID := range units.UnitIDs() {
		qty := units[unitID]
		if qty <= 0 {
			continue
		}
		row := &GarrisonModel{PlanetID: planetID, UnitID: unitID, Quantity: qty}
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "planet_id"}, {Name: "unit_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("garrisons.quantity + excluded.quantity"),
			}),
		}).Create(row).Error
		if err != nil {
			return fmt.Errorf("failed to add units to garrison: %w", err)
		}
	}
	return nil
}

// Remove takes units off a planet. It fails without partial effect on the
// offending stack when the garrison holds fewer units than requested.
func (r *GormGarrisonRepository) Remove(ctx context.Context, planetID int64, units game.Fleet) error {
	for _, unitID := range units.UnitIDs() {
		qty := units[unitID]
		if qty <= 0 {
			continue
		}
		result := r.db.WithContext(ctx).Model(&GarrisonModel{}).
			Where("planet_id = ? AND unit_id = ? AND quantity >= ?", planetID, unitID, qty).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if result.Error != nil {
			return fmt.Errorf("failed to remove units from garrison: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewConflictError(fmt.Sprintf("planet %d lacks %d units of type %d", planetID, qty, unitID))
		}
	}
	if err := r.db.WithContext(ctx).
		Where("planet_id = ? AND quantity <= 0", planetID).
		Delete(&GarrisonModel{}).Error; err != nil {
		return fmt.Errorf("failed to prune garrison: %w", err)
	}
	return nil
}

// GormUserResearchRepository implements game.UserResearchRepository
type GormUserResearchRepository struct {
	db *gorm.DB
}

func NewGormUserResearchRepository(db *gorm.DB) *GormUserResearchRepository {
	return &GormUserResearchRepository{db: db}
}

// Level returns the level a user reached on an item, 0 when never researched
func (r *GormUserResearchRepository) Level(ctx context.Context, userID, researchID int64) (int, error) {
	var model UserResearchModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND research_id = ?", userID, researchID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load research level: %w", err)
	}
	return model.Level, nil
}

// Levels returns every level a user reached, keyed by research item
func (r *GormUserResearchRepository) Levels(ctx context.Context, userID int64) (map[int64]int, error) {
	var models []UserResearchModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load research levels: %w", err)
	}
	levels := make(map[int64]int, len(models))
	for _, m := range models {
		levels[m.ResearchID] = m.Level
	}
	return levels, nil
}

// SetLevel records the level a user reached on an item
func (r *GormUserResearchRepository) SetLevel(ctx context.Context, userID, researchID int64, level int) error {
	row := &UserResearchModel{UserID: userID, ResearchID: researchID, Level: level}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "research_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"level"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to set research level: %w", err)
	}
	return nil
}
