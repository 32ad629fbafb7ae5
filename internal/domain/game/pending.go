package game

import (
	"time"

	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// Construction installs a building on an empty grid when it completes
type Construction struct {
	ID         int64
	GridID     int64
	BuildingID int64
	Level      int
	CreatedAt  time.Time
	timer.Timeable
}

func (c *Construction) PendingID() int64 { return c.ID }
func (c *Construction) Kind() timer.Kind { return timer.KindConstruction }

// Upgrade raises the level of the building on a grid when it completes
type Upgrade struct {
	ID         int64
	GridID     int64
	BuildingID int64
	Level      int // level reached on completion
	CreatedAt  time.Time
	timer.Timeable
}

func (u *Upgrade) PendingID() int64 { return u.ID }
func (u *Upgrade) Kind() timer.Kind { return timer.KindUpgrade }

// Training adds units to the planet garrison when it completes
type Training struct {
	ID        int64
	GridID    int64
	PlanetID  int64
	UnitID    int64
	Quantity  int64
	CreatedAt time.Time
	timer.Timeable
}

func (t *Training) PendingID() int64 { return t.ID }
func (t *Training) Kind() timer.Kind { return timer.KindTraining }

// Research unlocks or levels a research item for a user when it completes
type Research struct {
	ID         int64
	UserID     int64
	ResearchID int64
	Level      int
	CreatedAt  time.Time
	timer.Timeable
}

func (r *Research) PendingID() int64 { return r.ID }
func (r *Research) Kind() timer.Kind { return timer.KindResearch }

// MovementType selects the arrival effect of a fleet
type MovementType string

const (
	MovementAttack    MovementType = "attack"
	MovementSupport   MovementType = "support"
	MovementTransport MovementType = "transport"
	MovementReturn    MovementType = "return"
)

// ParseMovementType validates an outbound movement type. Return legs are
// only ever created by the engine, never requested by a player.
func ParseMovementType(s string) (MovementType, bool) {
	switch t := MovementType(s); t {
	case MovementAttack, MovementSupport, MovementTransport:
		return t, true
	default:
		return "", false
	}
}

// Movement is a fleet travelling from one planet to another
type Movement struct {
	ID            int64
	UserID        int64
	StartPlanetID int64
	EndPlanetID   int64
	Type          MovementType
	Units         Fleet
	Solarion      int64
	CreatedAt     time.Time
	timer.Timeable
}

func (m *Movement) PendingID() int64 { return m.ID }
func (m *Movement) Kind() timer.Kind { return timer.KindMovement }

// TravelTime is the duration of the outbound leg. A return leg takes as long.
func (m *Movement) TravelTime() time.Duration {
	if m.EndedAt == nil || m.CreatedAt.IsZero() {
		return 0
	}
	d := m.EndedAt.Sub(m.CreatedAt)
	if d < 0 {
		return 0
	}
	return d
}

// ReturnLeg builds the movement that brings survivors and cargo home,
// departing at now.
func (m *Movement) ReturnLeg(units Fleet, solarion int64, now time.Time) *Movement {
	return &Movement{
		UserID:        m.UserID,
		StartPlanetID: m.EndPlanetID,
		EndPlanetID:   m.StartPlanetID,
		Type:          MovementReturn,
		Units:         units,
		Solarion:      solarion,
		CreatedAt:     now,
		Timeable:      timer.NewTimeable(now.Add(m.TravelTime())),
	}
}

var (
	_ timer.Entity = (*Construction)(nil)
	_ timer.Entity = (*Upgrade)(nil)
	_ timer.Entity = (*Training)(nil)
	_ timer.Entity = (*Research)(nil)
	_ timer.Entity = (*Movement)(nil)
)
