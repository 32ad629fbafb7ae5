package game

import (
	"context"
	"time"

	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// Cursor is a keyset position in (ended_at, id) order
type Cursor struct {
	EndedAt time.Time
	ID      int64
}

// CursorAt returns the cursor positioned at e
func CursorAt(e timer.Entity) *Cursor {
	return &Cursor{EndedAt: e.EndsAt(), ID: e.PendingID()}
}

// PendingRepository is the storage contract shared by the five pending tables
type PendingRepository[E timer.Entity] interface {
	// FindByID returns a NotFoundError when the record does not exist
	FindByID(ctx context.Context, id int64) (E, error)

	// Claim re-reads the record and locks its row until the surrounding
	// transaction ends. A concurrent claimer waits, then sees NotFoundError
	// once the winner has deleted the record.
	Claim(ctx context.Context, id int64) (E, error)

	// FindDue returns up to limit records with ended_at <= now, oldest first,
	// strictly after the cursor when one is given
	FindDue(ctx context.Context, now time.Time, after *Cursor, limit int) ([]E, error)

	// Add persists a new record and assigns its id
	Add(ctx context.Context, e E) error

	// Delete removes the record; deleting a missing record is not an error
	Delete(ctx context.Context, id int64) error

	// DeleteAllExpired removes every record with ended_at < now without
	// applying any completion effect. Administrative cleanup only.
	DeleteAllExpired(ctx context.Context, now time.Time) (int64, error)

	// Count returns the number of pending records
	Count(ctx context.Context) (int64, error)
}

type ConstructionRepository interface {
	PendingRepository[*Construction]
	FindByGridIDs(ctx context.Context, gridIDs []int64) ([]*Construction, error)
}

type UpgradeRepository interface {
	PendingRepository[*Upgrade]
	FindByGridIDs(ctx context.Context, gridIDs []int64) ([]*Upgrade, error)
}

type TrainingRepository interface {
	PendingRepository[*Training]
	FindByGridIDs(ctx context.Context, gridIDs []int64) ([]*Training, error)
}

type ResearchRepository interface {
	PendingRepository[*Research]
	FindByUser(ctx context.Context, userID int64) ([]*Research, error)
}

type MovementRepository interface {
	PendingRepository[*Movement]
	// FindInvolving returns movements sent by userID or heading to one of planetIDs
	FindInvolving(ctx context.Context, userID int64, planetIDs []int64) ([]*Movement, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	Save(ctx context.Context, user *User) error
}

type PlanetRepository interface {
	FindByID(ctx context.Context, id int64) (*Planet, error)
	FindByUser(ctx context.Context, userID int64) ([]*Planet, error)
	Save(ctx context.Context, planet *Planet) error
}

type GridRepository interface {
	FindByID(ctx context.Context, id int64) (*Grid, error)
	FindByPlanet(ctx context.Context, planetID int64) ([]*Grid, error)
	Save(ctx context.Context, grid *Grid) error
}

// GarrisonRepository stores the units stationed on each planet
type GarrisonRepository interface {
	Get(ctx context.Context, planetID int64) (Fleet, error)
	Add(ctx context.Context, planetID int64, units Fleet) error
	// Remove fails with a ConflictError when the garrison is short of units
	Remove(ctx context.Context, planetID int64, units Fleet) error
}

// UserResearchRepository stores research levels reached by each user
type UserResearchRepository interface {
	Level(ctx context.Context, userID, researchID int64) (int, error)
	Levels(ctx context.Context, userID int64) (map[int64]int, error)
	SetLevel(ctx context.Context, userID, researchID int64, level int) error
}

type CatalogRepository interface {
	Building(ctx context.Context, id int64) (*Building, error)
	Unit(ctx context.Context, id int64) (*Unit, error)
	Units(ctx context.Context) (map[int64]*Unit, error)
	ResearchItem(ctx context.Context, id int64) (*ResearchItem, error)
}

// Store groups the repositories of one database handle. A Store handed to a
// Transaction callback is bound to that transaction.
type Store interface {
	Users() UserRepository
	Planets() PlanetRepository
	Grids() GridRepository
	Garrisons() GarrisonRepository
	UserResearch() UserResearchRepository
	Catalog() CatalogRepository

	Constructions() ConstructionRepository
	Upgrades() UpgradeRepository
	Trainings() TrainingRepository
	Researches() ResearchRepository
	Movements() MovementRepository

	// Notify queues an event. Inside a transaction it is published only after
	// a successful commit; outside one it is published immediately.
	Notify(event Event)
}

// Transactor is a Store that can open a transaction scoped to fn. Returning
// an error from fn rolls the transaction back.
type Transactor interface {
	Store
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
