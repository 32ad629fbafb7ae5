package persistence

import (
	"time"
)

// UserModel represents the users table
type UserModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;unique;not null"`
	CapitalID *int64    `gorm:"column:capital_id"`
	CurrentID *int64    `gorm:"column:current_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

// PlanetModel represents the planets table
type PlanetModel struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID   *int64 `gorm:"column:user_id;index"`
	Name     string `gorm:"column:name;not null"`
	X        int64  `gorm:"column:x;not null;uniqueIndex:idx_planets_xy"`
	Y        int64  `gorm:"column:y;not null;uniqueIndex:idx_planets_xy"`
	Solarion int64  `gorm:"column:solarion;not null;default:0"`
	Capacity int64  `gorm:"column:capacity;not null;default:0"`
}

func (PlanetModel) TableName() string {
	return "planets"
}

// GridModel represents the grids table (building slots of a planet)
type GridModel struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	PlanetID   int64  `gorm:"column:planet_id;not null;index"`
	X          int    `gorm:"column:x;not null"`
	Y          int    `gorm:"column:y;not null"`
	BuildingID *int64 `gorm:"column:building_id"`
	Level      *int   `gorm:"column:level"`
}

func (GridModel) TableName() string {
	return "grids"
}

// GarrisonModel represents the garrisons table: units stationed on a planet
type GarrisonModel struct {
	PlanetID int64 `gorm:"column:planet_id;primaryKey"`
	UnitID   int64 `gorm:"column:unit_id;primaryKey"`
	Quantity int64 `gorm:"column:quantity;not null;default:0"`
}

func (GarrisonModel) TableName() string {
	return "garrisons"
}

// UserResearchModel represents the user_research table: levels reached per item
type UserResearchModel struct {
	UserID     int64 `gorm:"column:user_id;primaryKey"`
	ResearchID int64 `gorm:"column:research_id;primaryKey"`
	Level      int   `gorm:"column:level;not null;default:0"`
}

func (UserResearchModel) TableName() string {
	return "user_research"
}

// BuildingModel represents the buildings catalog table. Durations are seconds.
type BuildingModel struct {
	ID               int64  `gorm:"column:id;primaryKey"`
	Name             string `gorm:"column:name;not null"`
	Type             string `gorm:"column:type;not null"`
	EndLevel         int    `gorm:"column:end_level;not null"`
	ConstructionTime int64  `gorm:"column:construction_time;not null"`
	ConstructionCost int64  `gorm:"column:construction_cost;not null"`
	UpgradeTime      int64  `gorm:"column:upgrade_time;not null"`
	UpgradeCost      int64  `gorm:"column:upgrade_cost;not null"`
}

func (BuildingModel) TableName() string {
	return "buildings"
}

// UnitModel represents the units catalog table
type UnitModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name;not null"`
	Speed     int64  `gorm:"column:speed;not null"`
	Attack    int64  `gorm:"column:attack;not null"`
	Defense   int64  `gorm:"column:defense;not null"`
	Capacity  int64  `gorm:"column:capacity;not null"`
	TrainTime int64  `gorm:"column:train_time;not null"`
	TrainCost int64  `gorm:"column:train_cost;not null"`
}

func (UnitModel) TableName() string {
	return "units"
}

// ResearchItemModel represents the research_items catalog table
type ResearchItemModel struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	Name         string `gorm:"column:name;not null"`
	ResearchTime int64  `gorm:"column:research_time;not null"`
	MaxLevel     int    `gorm:"column:max_level;not null"`
}

func (ResearchItemModel) TableName() string {
	return "research_items"
}

// ConstructionModel represents the constructions table.
// At most one construction per grid.
type ConstructionModel struct {
	ID         int64       `gorm:"column:id;primaryKey;autoIncrement"`
	GridID     int64       `gorm:"column:grid_id;not null;uniqueIndex"`
	BuildingID int64       `gorm:"column:building_id;not null"`
	Level      int         `gorm:"column:level;not null;default:1"`
	EndedAt    LenientTime `gorm:"column:ended_at;index"`
	CreatedAt  time.Time   `gorm:"column:created_at;not null"`
}

func (ConstructionModel) TableName() string {
	return "constructions"
}

// UpgradeModel represents the upgrades table. At most one upgrade per grid.
type UpgradeModel struct {
	ID         int64       `gorm:"column:id;primaryKey;autoIncrement"`
	GridID     int64       `gorm:"column:grid_id;not null;uniqueIndex"`
	BuildingID int64       `gorm:"column:building_id;not null"`
	Level      int         `gorm:"column:level;not null"`
	EndedAt    LenientTime `gorm:"column:ended_at;index"`
	CreatedAt  time.Time   `gorm:"column:created_at;not null"`
}

func (UpgradeModel) TableName() string {
	return "upgrades"
}

// TrainingModel represents the trainings table. At most one training per grid.
type TrainingModel struct {
	ID        int64       `gorm:"column:id;primaryKey;autoIncrement"`
	GridID    int64       `gorm:"column:grid_id;not null;uniqueIndex"`
	PlanetID  int64       `gorm:"column:planet_id;not null;index"`
	UnitID    int64       `gorm:"column:unit_id;not null"`
	Quantity  int64       `gorm:"column:quantity;not null"`
	EndedAt   LenientTime `gorm:"column:ended_at;index"`
	CreatedAt time.Time   `gorm:"column:created_at;not null"`
}

func (TrainingModel) TableName() string {
	return "trainings"
}

// ResearchModel represents the researches table (pending research jobs).
// At most one job per (user, item).
type ResearchModel struct {
	ID         int64       `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     int64       `gorm:"column:user_id;not null;uniqueIndex:idx_researches_user_item"`
	ResearchID int64       `gorm:"column:research_id;not null;uniqueIndex:idx_researches_user_item"`
	Level      int         `gorm:"column:level;not null"`
	EndedAt    LenientTime `gorm:"column:ended_at;index"`
	CreatedAt  time.Time   `gorm:"column:created_at;not null"`
}

func (ResearchModel) TableName() string {
	return "researches"
}

// MovementModel represents the movements table
type MovementModel struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        int64               `gorm:"column:user_id;not null;index"`
	StartPlanetID int64               `gorm:"column:start_planet_id;not null"`
	EndPlanetID   int64               `gorm:"column:end_planet_id;not null;index"`
	Type          string              `gorm:"column:type;not null"`
	Solarion      int64               `gorm:"column:solarion;not null;default:0"`
	EndedAt       LenientTime         `gorm:"column:ended_at;index"`
	CreatedAt     time.Time           `gorm:"column:created_at;not null"`
	Units         []MovementUnitModel `gorm:"foreignKey:MovementID;references:ID"`
}

func (MovementModel) TableName() string {
	return "movements"
}

// MovementUnitModel represents the movement_units table: the fleet of a movement
type MovementUnitModel struct {
	MovementID int64 `gorm:"column:movement_id;primaryKey"`
	UnitID     int64 `gorm:"column:unit_id;primaryKey"`
	Quantity   int64 `gorm:"column:quantity;not null"`
}

func (MovementUnitModel) TableName() string {
	return "movement_units"
}

// CacheLockModel represents the cache_locks table backing keyed TTL locks
type CacheLockModel struct {
	Key       string    `gorm:"column:lock_key;primaryKey;size:191"`
	Owner     string    `gorm:"column:owner;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
}

func (CacheLockModel) TableName() string {
	return "cache_locks"
}

// EngineLogModel represents the engine_logs table
type EngineLogModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"`
}

func (EngineLogModel) TableName() string {
	return "engine_logs"
}

// AllModels lists every model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&PlanetModel{},
		&GridModel{},
		&GarrisonModel{},
		&UserResearchModel{},
		&BuildingModel{},
		&UnitModel{},
		&ResearchItemModel{},
		&ConstructionModel{},
		&UpgradeModel{},
		&TrainingModel{},
		&ResearchModel{},
		&MovementModel{},
		&MovementUnitModel{},
		&CacheLockModel{},
		&EngineLogModel{},
	}
}
