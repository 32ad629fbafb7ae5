package game

import "time"

// BuildingType groups buildings by role
type BuildingType string

const (
	BuildingTypeCentral  BuildingType = "central"
	BuildingTypeMiner    BuildingType = "miner"
	BuildingTypeStorage  BuildingType = "storage"
	BuildingTypeBarracks BuildingType = "barracks"
	BuildingTypeLab      BuildingType = "lab"
	BuildingTypeDefense  BuildingType = "defense"
)

// Building is a catalog entry that can be constructed on a grid
type Building struct {
	ID               int64
	Name             string
	Type             BuildingType
	EndLevel         int
	ConstructionTime time.Duration
	ConstructionCost int64
	UpgradeTime      time.Duration
	UpgradeCost      int64
}

// UpgradeDuration returns how long raising the building to level takes.
// Each level costs the base upgrade time multiplied by the target level.
func (b *Building) UpgradeDuration(level int) time.Duration {
	return b.UpgradeTime * time.Duration(level)
}

// UpgradePrice returns the solarion cost of raising the building to level
func (b *Building) UpgradePrice(level int) int64 {
	return b.UpgradeCost * int64(level)
}

// CanTrain reports whether units can be trained in this building
func (b *Building) CanTrain() bool {
	return b.Type == BuildingTypeBarracks
}

// Unit is a catalog entry that can be trained and sent on movements
type Unit struct {
	ID        int64
	Name      string
	Speed     int64 // distance units per hour
	Attack    int64
	Defense   int64
	Capacity  int64
	TrainTime time.Duration
	TrainCost int64
}

// ResearchItem is a catalog entry a user can research
type ResearchItem struct {
	ID           int64
	Name         string
	ResearchTime time.Duration
	MaxLevel     int
}

// ResearchDuration returns how long researching level takes
func (r *ResearchItem) ResearchDuration(level int) time.Duration {
	return r.ResearchTime * time.Duration(level)
}
