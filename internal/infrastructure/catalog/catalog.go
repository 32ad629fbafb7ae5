package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// File is the on-disk catalog format
type File struct {
	Buildings []BuildingDef `yaml:"buildings" validate:"dive"`
	Units     []UnitDef     `yaml:"units" validate:"dive"`
	Research  []ResearchDef `yaml:"research" validate:"dive"`
}

type BuildingDef struct {
	ID               int64         `yaml:"id" validate:"min=1"`
	Name             string        `yaml:"name" validate:"required"`
	Type             string        `yaml:"type" validate:"oneof=central miner storage barracks lab defense"`
	EndLevel         int           `yaml:"end_level" validate:"min=1"`
	ConstructionTime time.Duration `yaml:"construction_time" validate:"gt=0"`
	ConstructionCost int64         `yaml:"construction_cost" validate:"min=0"`
	UpgradeTime      time.Duration `yaml:"upgrade_time" validate:"gt=0"`
	UpgradeCost      int64         `yaml:"upgrade_cost" validate:"min=0"`
}

type UnitDef struct {
	ID        int64         `yaml:"id" validate:"min=1"`
	Name      string        `yaml:"name" validate:"required"`
	Speed     int64         `yaml:"speed" validate:"min=1"`
	Attack    int64         `yaml:"attack" validate:"min=0"`
	Defense   int64         `yaml:"defense" validate:"min=0"`
	Capacity  int64         `yaml:"capacity" validate:"min=0"`
	TrainTime time.Duration `yaml:"train_time" validate:"gt=0"`
	TrainCost int64         `yaml:"train_cost" validate:"min=0"`
}

type ResearchDef struct {
	ID           int64         `yaml:"id" validate:"min=1"`
	Name         string        `yaml:"name" validate:"required"`
	ResearchTime time.Duration `yaml:"research_time" validate:"gt=0"`
	MaxLevel     int           `yaml:"max_level" validate:"min=1"`
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &f, nil
}

// Default returns the catalog embedded in the binary
func Default() (*File, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the embedded default when path is empty
func Load(path string) (*File, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Seed upserts every definition of f
func Seed(ctx context.Context, repo *persistence.GormCatalogRepository, f *File) error {
	buildings := make([]persistence.BuildingModel, len(f.Buildings))
	for i, b := range f.Buildings {
		buildings[i] = persistence.BuildingModel{
			ID:               b.ID,
			Name:             b.Name,
			Type:             b.Type,
			EndLevel:         b.EndLevel,
			ConstructionTime: int64(b.ConstructionTime / time.Second),
			ConstructionCost: b.ConstructionCost,
			UpgradeTime:      int64(b.UpgradeTime / time.Second),
			UpgradeCost:      b.UpgradeCost,
		}
	}

	units := make([]persistence.UnitModel, len(f.Units))
	for i, u := range f.Units {
		units[i] = persistence.UnitModel{
			ID:        u.ID,
			Name:      u.Name,
			Speed:     u.Speed,
			Attack:    u.Attack,
			Defense:   u.Defense,
			Capacity:  u.Capacity,
			TrainTime: int64(u.TrainTime / time.Second),
			TrainCost: u.TrainCost,
		}
	}

	items := make([]persistence.ResearchItemModel, len(f.Research))
	for i, r := range f.Research {
		items[i] = persistence.ResearchItemModel{
			ID:           r.ID,
			Name:         r.Name,
			ResearchTime: int64(r.ResearchTime / time.Second),
			MaxLevel:     r.MaxLevel,
		}
	}

	return repo.Upsert(ctx, buildings, units, items)
}
