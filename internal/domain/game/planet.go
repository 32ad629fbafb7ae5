package game

import (
	"math"

	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

// User owns planets and research progress
type User struct {
	ID        int64
	Name      string
	CapitalID *int64
	CurrentID *int64
}

// HomePlanetID returns the planet the user is looking at, falling back to the
// capital. ok is false for a user who owns no planet yet.
func (u *User) HomePlanetID() (int64, bool) {
	if u.CurrentID != nil {
		return *u.CurrentID, true
	}
	if u.CapitalID != nil {
		return *u.CapitalID, true
	}
	return 0, false
}

// Planet is a player-owned world made of grid slots
type Planet struct {
	ID       int64
	UserID   *int64
	Name     string
	X        int64
	Y        int64
	Solarion int64
	Capacity int64
}

// IsOwnedBy reports whether userID owns the planet
func (p *Planet) IsOwnedBy(userID int64) bool {
	return p.UserID != nil && *p.UserID == userID
}

// Spend deducts cost from the planet's stock
func (p *Planet) Spend(cost int64) error {
	if cost < 0 {
		return shared.NewValidationError("cost", "must not be negative")
	}
	if p.Solarion < cost {
		return shared.NewInsufficientResourcesError(cost, p.Solarion)
	}
	p.Solarion -= cost
	return nil
}

// Deposit adds solarion up to capacity and returns the amount actually stored.
// A capacity of zero means unlimited.
func (p *Planet) Deposit(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	if p.Capacity > 0 && p.Solarion+amount > p.Capacity {
		amount = p.Capacity - p.Solarion
		if amount < 0 {
			amount = 0
		}
	}
	p.Solarion += amount
	return amount
}

// Withdraw removes up to amount and returns what was taken
func (p *Planet) Withdraw(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	if amount > p.Solarion {
		amount = p.Solarion
	}
	p.Solarion -= amount
	return amount
}

// DistanceTo returns the euclidean distance between two planets
func (p *Planet) DistanceTo(other *Planet) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Every planet surface is a GridColumns x GridRows layout of slots
const (
	GridColumns = 5
	GridRows    = 5
)

// NewGridLayout returns the empty slots of a fresh planet surface
func NewGridLayout(planetID int64) []*Grid {
	grids := make([]*Grid, 0, GridColumns*GridRows)
	for y := 0; y < GridRows; y++ {
		for x := 0; x < GridColumns; x++ {
			grids = append(grids, &Grid{PlanetID: planetID, X: x, Y: y})
		}
	}
	return grids
}

// Grid is one building slot on a planet
type Grid struct {
	ID         int64
	PlanetID   int64
	X          int
	Y          int
	BuildingID *int64
	Level      *int
}

// IsEmpty reports whether no building occupies the slot
func (g *Grid) IsEmpty() bool {
	return g.BuildingID == nil
}

// CurrentLevel returns the installed building's level, 0 when empty
func (g *Grid) CurrentLevel() int {
	if g.Level == nil {
		return 0
	}
	return *g.Level
}

// Install places a freshly constructed building at level 1
func (g *Grid) Install(buildingID int64) {
	id := buildingID
	level := 1
	g.BuildingID = &id
	g.Level = &level
}

// IncrementLevel raises the installed building by one level
func (g *Grid) IncrementLevel() {
	l := g.CurrentLevel() + 1
	g.Level = &l
}
