package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/pkg/utils"
)

// Finisher applies the completion effect of one pending kind and deletes the
// record. It runs inside a transaction the caller has already opened and does
// not re-check that the record still exists.
type Finisher[E timer.Entity] interface {
	Finish(ctx context.Context, store game.Store, e E) error
}

// ConstructionFinisher installs the building on its grid
type ConstructionFinisher struct{}

func (ConstructionFinisher) Finish(ctx context.Context, store game.Store, c *game.Construction) error {
	grid, err := store.Grids().FindByID(ctx, c.GridID)
	if err != nil {
		return fmt.Errorf("failed to load grid %d: %w", c.GridID, err)
	}

	grid.Install(c.BuildingID)
	if err := store.Grids().Save(ctx, grid); err != nil {
		return err
	}
	if err := store.Constructions().Delete(ctx, c.ID); err != nil {
		return err
	}

	store.Notify(game.PlanetUpdated(grid.PlanetID))
	return nil
}

// UpgradeFinisher raises the building on its grid by one level
type UpgradeFinisher struct{}

func (UpgradeFinisher) Finish(ctx context.Context, store game.Store, u *game.Upgrade) error {
	grid, err := store.Grids().FindByID(ctx, u.GridID)
	if err != nil {
		return fmt.Errorf("failed to load grid %d: %w", u.GridID, err)
	}
	if grid.IsEmpty() {
		return shared.NewConflictError(fmt.Sprintf("grid %d has no building to upgrade", grid.ID))
	}

	grid.IncrementLevel()
	if err := store.Grids().Save(ctx, grid); err != nil {
		return err
	}
	if err := store.Upgrades().Delete(ctx, u.ID); err != nil {
		return err
	}

	store.Notify(game.PlanetUpdated(grid.PlanetID))
	return nil
}

// TrainingFinisher stations the trained units on the planet
type TrainingFinisher struct{}

func (TrainingFinisher) Finish(ctx context.Context, store game.Store, t *game.Training) error {
	if err := store.Garrisons().Add(ctx, t.PlanetID, game.Fleet{t.UnitID: t.Quantity}); err != nil {
		return err
	}
	if err := store.Trainings().Delete(ctx, t.ID); err != nil {
		return err
	}

	store.Notify(game.PlanetUpdated(t.PlanetID))
	return nil
}

// ResearchFinisher records the researched level for the user
type ResearchFinisher struct{}

func (ResearchFinisher) Finish(ctx context.Context, store game.Store, r *game.Research) error {
	current, err := store.UserResearch().Level(ctx, r.UserID, r.ResearchID)
	if err != nil {
		return err
	}

	// A job never lowers a level; a stale or zero target still advances by one
	level := utils.Max64(int64(r.Level), int64(current)+1)
	if err := store.UserResearch().SetLevel(ctx, r.UserID, r.ResearchID, int(level)); err != nil {
		return err
	}
	if err := store.Researches().Delete(ctx, r.ID); err != nil {
		return err
	}

	store.Notify(game.UserUpdated(r.UserID))
	return nil
}

// MovementFinisher resolves a fleet's arrival at its destination
type MovementFinisher struct {
	clock shared.Clock
}

func NewMovementFinisher(clock shared.Clock) *MovementFinisher {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &MovementFinisher{clock: clock}
}

func (f *MovementFinisher) Finish(ctx context.Context, store game.Store, m *game.Movement) error {
	// The return leg departs when the fleet arrived, not when we noticed
	arrival := m.EndsAt()
	if !m.IsScheduled() {
		arrival = f.clock.Now()
	}

	var err error
	switch m.Type {
	case game.MovementSupport:
		err = store.Garrisons().Add(ctx, m.EndPlanetID, m.Units)
	case game.MovementTransport:
		err = f.transport(ctx, store, m, arrival)
	case game.MovementAttack:
		err = f.attack(ctx, store, m, arrival)
	case game.MovementReturn:
		err = f.returnHome(ctx, store, m)
	default:
		err = shared.NewValidationError("type", fmt.Sprintf("unknown movement type %q", m.Type))
	}
	if err != nil {
		return fmt.Errorf("%s movement %d: %w", m.Type, m.ID, err)
	}

	if err := store.Movements().Delete(ctx, m.ID); err != nil {
		return err
	}

	store.Notify(game.PlanetUpdated(m.EndPlanetID))
	store.Notify(game.PlanetUpdated(m.StartPlanetID))
	store.Notify(game.UserUpdated(m.UserID))
	return nil
}

func (f *MovementFinisher) transport(ctx context.Context, store game.Store, m *game.Movement, arrival time.Time) error {
	dest, err := store.Planets().FindByID(ctx, m.EndPlanetID)
	if err != nil {
		return err
	}

	stored := dest.Deposit(m.Solarion)
	if err := store.Planets().Save(ctx, dest); err != nil {
		return err
	}

	// Whatever did not fit in the destination's storage rides back home
	return store.Movements().Add(ctx, m.ReturnLeg(m.Units.Clone(), m.Solarion-stored, arrival))
}

func (f *MovementFinisher) attack(ctx context.Context, store game.Store, m *game.Movement, arrival time.Time) error {
	units, err := store.Catalog().Units(ctx)
	if err != nil {
		return err
	}
	defenders, err := store.Garrisons().Get(ctx, m.EndPlanetID)
	if err != nil {
		return err
	}

	result := game.ResolveBattle(m.Units, defenders, units)
	if !result.DefenderLosses.IsEmpty() {
		if err := store.Garrisons().Remove(ctx, m.EndPlanetID, result.DefenderLosses); err != nil {
			return err
		}
	}
	if result.AttackerSurvivors.IsEmpty() {
		return nil
	}

	loot := int64(0)
	if result.AttackerWon {
		dest, err := store.Planets().FindByID(ctx, m.EndPlanetID)
		if err != nil {
			return err
		}
		loot = dest.Withdraw(result.AttackerSurvivors.CarryCapacity(units))
		if err := store.Planets().Save(ctx, dest); err != nil {
			return err
		}
	}

	return store.Movements().Add(ctx, m.ReturnLeg(result.AttackerSurvivors, m.Solarion+loot, arrival))
}

func (f *MovementFinisher) returnHome(ctx context.Context, store game.Store, m *game.Movement) error {
	if err := store.Garrisons().Add(ctx, m.EndPlanetID, m.Units); err != nil {
		return err
	}
	if m.Solarion <= 0 {
		return nil
	}

	home, err := store.Planets().FindByID(ctx, m.EndPlanetID)
	if err != nil {
		return err
	}
	home.Deposit(m.Solarion)
	return store.Planets().Save(ctx, home)
}
