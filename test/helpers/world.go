package helpers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/catalog"
)

// Catalog ids from the embedded catalog.yaml
const (
	BuildingCentral  int64 = 1
	BuildingMiner    int64 = 2
	BuildingStorage  int64 = 3
	BuildingBarracks int64 = 4
	BuildingLab      int64 = 5

	UnitFighter   int64 = 1
	UnitGuardian  int64 = 2
	UnitFreighter int64 = 3

	ResearchPropulsion int64 = 1
	ResearchWeaponry   int64 = 2
)

// RecordingPublisher collects published events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []game.Event
}

func (p *RecordingPublisher) Publish(event game.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of what was published so far
func (p *RecordingPublisher) Events() []game.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]game.Event(nil), p.events...)
}

// Reset forgets recorded events
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// World is a seeded game database with helpers to arrange fixtures
type World struct {
	DB     *gorm.DB
	Store  *persistence.GormStore
	Clock  *shared.MockClock
	Events *RecordingPublisher
}

// NewWorld seeds the catalog into db and wraps it in a store with a mock
// clock fixed at a known instant
func NewWorld(db *gorm.DB) (*World, error) {
	f, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	if err := catalog.Seed(context.Background(), persistence.NewGormCatalogRepository(db), f); err != nil {
		return nil, err
	}

	events := &RecordingPublisher{}
	return &World{
		DB:     db,
		Store:  persistence.NewGormStore(db, events),
		Clock:  shared.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Events: events,
	}, nil
}

// Now is the mock clock's current time
func (w *World) Now() time.Time {
	return w.Clock.Now()
}

// CreateUser inserts a user
func (w *World) CreateUser(name string) (*game.User, error) {
	user := &game.User{Name: name}
	if err := w.Store.Users().Save(context.Background(), user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePlanet inserts a planet owned by user (nil for unowned) with empty grids
func (w *World) CreatePlanet(user *game.User, name string, x, y, solarion, capacity int64, grids int) (*game.Planet, []*game.Grid, error) {
	ctx := context.Background()
	planet := &game.Planet{Name: name, X: x, Y: y, Solarion: solarion, Capacity: capacity}
	if user != nil {
		id := user.ID
		planet.UserID = &id
	}
	if err := w.Store.Planets().Save(ctx, planet); err != nil {
		return nil, nil, err
	}

	if user != nil && user.CapitalID == nil {
		id := planet.ID
		user.CapitalID = &id
		user.CurrentID = &id
		if err := w.Store.Users().Save(ctx, user); err != nil {
			return nil, nil, err
		}
	}

	created := make([]*game.Grid, 0, grids)
	for i := 0; i < grids; i++ {
		g := &game.Grid{PlanetID: planet.ID, X: i % 5, Y: i / 5}
		if err := w.Store.Grids().Save(ctx, g); err != nil {
			return nil, nil, err
		}
		created = append(created, g)
	}
	return planet, created, nil
}

// InstallBuilding places a finished building on a grid
func (w *World) InstallBuilding(grid *game.Grid, buildingID int64, level int) error {
	grid.Install(buildingID)
	grid.Level = &level
	return w.Store.Grids().Save(context.Background(), grid)
}

// EndingIn returns a Timeable that ends d after the mock clock's now
func (w *World) EndingIn(d time.Duration) timer.Timeable {
	return timer.NewTimeable(w.Now().Add(d))
}

// AddConstruction inserts a pending construction
func (w *World) AddConstruction(grid *game.Grid, buildingID int64, endsIn time.Duration) (*game.Construction, error) {
	c := &game.Construction{
		GridID:     grid.ID,
		BuildingID: buildingID,
		Level:      1,
		CreatedAt:  w.Now(),
		Timeable:   w.EndingIn(endsIn),
	}
	return c, w.Store.Constructions().Add(context.Background(), c)
}

// AddUpgrade inserts a pending upgrade raising grid by one level
func (w *World) AddUpgrade(grid *game.Grid, endsIn time.Duration) (*game.Upgrade, error) {
	if grid.BuildingID == nil {
		return nil, fmt.Errorf("grid %d has no building", grid.ID)
	}
	u := &game.Upgrade{
		GridID:     grid.ID,
		BuildingID: *grid.BuildingID,
		Level:      grid.CurrentLevel() + 1,
		CreatedAt:  w.Now(),
		Timeable:   w.EndingIn(endsIn),
	}
	return u, w.Store.Upgrades().Add(context.Background(), u)
}

// AddTraining inserts a pending training
func (w *World) AddTraining(grid *game.Grid, unitID, quantity int64, endsIn time.Duration) (*game.Training, error) {
	tr := &game.Training{
		GridID:    grid.ID,
		PlanetID:  grid.PlanetID,
		UnitID:    unitID,
		Quantity:  quantity,
		CreatedAt: w.Now(),
		Timeable:  w.EndingIn(endsIn),
	}
	return tr, w.Store.Trainings().Add(context.Background(), tr)
}

// AddResearch inserts a pending research job
func (w *World) AddResearch(user *game.User, researchID int64, level int, endsIn time.Duration) (*game.Research, error) {
	r := &game.Research{
		UserID:     user.ID,
		ResearchID: researchID,
		Level:      level,
		CreatedAt:  w.Now(),
		Timeable:   w.EndingIn(endsIn),
	}
	return r, w.Store.Researches().Add(context.Background(), r)
}

// AddMovement inserts a fleet in flight that departed travel ago and arrives endsIn from now
func (w *World) AddMovement(user *game.User, from, to *game.Planet, kind game.MovementType, units game.Fleet, solarion int64, travel, endsIn time.Duration) (*game.Movement, error) {
	end := w.Now().Add(endsIn)
	m := &game.Movement{
		UserID:        user.ID,
		StartPlanetID: from.ID,
		EndPlanetID:   to.ID,
		Type:          kind,
		Units:         units,
		Solarion:      solarion,
		CreatedAt:     end.Add(-travel),
		Timeable:      timer.NewTimeable(end),
	}
	return m, w.Store.Movements().Add(context.Background(), m)
}

// SetRawEndedAt overwrites ended_at of a pending row with an arbitrary value,
// bypassing the model's time handling
func (w *World) SetRawEndedAt(table string, id int64, raw interface{}) error {
	return w.DB.Exec(fmt.Sprintf("UPDATE %s SET ended_at = ? WHERE id = ?", table), raw, id).Error
}

// Count returns the number of rows in table
func (w *World) Count(table string) int64 {
	var n int64
	w.DB.Table(table).Count(&n)
	return n
}
