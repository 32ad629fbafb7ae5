package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/solarion-go/internal/application/auth"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// gridActionHandler holds what every grid action needs: a transactional
// store, the time source and the dispatcher that schedules completion
type gridActionHandler struct {
	store      game.Transactor
	clock      shared.Clock
	dispatcher *completion.Dispatcher
}

func newGridActionHandler(engine *completion.Engine, dispatcher *completion.Dispatcher) gridActionHandler {
	return gridActionHandler{store: engine.Store(), clock: engine.Clock(), dispatcher: dispatcher}
}

// ownedGrid loads a grid and its planet, checking that the user owns it
func ownedGrid(ctx context.Context, tx game.Store, user *game.User, gridID int64) (*game.Grid, *game.Planet, error) {
	grid, err := tx.Grids().FindByID(ctx, gridID)
	if err != nil {
		return nil, nil, err
	}
	planet, err := tx.Planets().FindByID(ctx, grid.PlanetID)
	if err != nil {
		return nil, nil, err
	}
	if !planet.IsOwnedBy(user.ID) {
		// Other players' grids are indistinguishable from missing ones
		return nil, nil, shared.NewNotFoundError("grid", gridID)
	}
	return grid, planet, nil
}

// busy fails when the grid already runs a construction or upgrade
func busy(ctx context.Context, tx game.Store, gridID int64) error {
	constructions, err := tx.Constructions().FindByGridIDs(ctx, []int64{gridID})
	if err != nil {
		return err
	}
	upgrades, err := tx.Upgrades().FindByGridIDs(ctx, []int64{gridID})
	if err != nil {
		return err
	}
	if len(constructions) > 0 || len(upgrades) > 0 {
		return shared.NewConflictError(fmt.Sprintf("grid %d is already being worked on", gridID))
	}
	return nil
}

// dispatch schedules completion of a committed action. The action already
// exists, so a failing queue only delays completion until the next sweep.
func (h gridActionHandler) dispatch(ctx context.Context, e timer.Entity) {
	if h.dispatcher == nil {
		return
	}
	if err := h.dispatcher.Dispatch(ctx, e); err != nil {
		common.LoggerFromContext(ctx).Log("WARNING", "Failed to dispatch completion", map[string]interface{}{
			"kind":  string(e.Kind()),
			"id":    e.PendingID(),
			"error": err.Error(),
		})
	}
}

// StartConstructionCommand places a new building on an empty grid
type StartConstructionCommand struct {
	PlayerID   shared.PlayerID
	GridID     int64
	BuildingID int64
}

// StartConstructionResponse carries the pending construction
type StartConstructionResponse struct {
	Construction *game.Construction
}

// StartConstructionHandler handles the StartConstruction command
type StartConstructionHandler struct {
	gridActionHandler
}

// NewStartConstructionHandler creates a new StartConstructionHandler
func NewStartConstructionHandler(engine *completion.Engine, dispatcher *completion.Dispatcher) *StartConstructionHandler {
	return &StartConstructionHandler{newGridActionHandler(engine, dispatcher)}
}

// Handle executes the StartConstruction command
func (h *StartConstructionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartConstructionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartConstructionCommand")
	}

	user, err := auth.ResolveUser(ctx, h.store.Users(), cmd.PlayerID)
	if err != nil {
		return nil, err
	}

	var construction *game.Construction
	err = h.store.Transaction(ctx, func(tx game.Store) error {
		grid, planet, err := ownedGrid(ctx, tx, user, cmd.GridID)
		if err != nil {
			return err
		}
		if !grid.IsEmpty() {
			return shared.NewConflictError(fmt.Sprintf("grid %d is not empty", grid.ID))
		}
		if err := busy(ctx, tx, grid.ID); err != nil {
			return err
		}

		building, err := tx.Catalog().Building(ctx, cmd.BuildingID)
		if err != nil {
			return err
		}
		if err := planet.Spend(building.ConstructionCost); err != nil {
			return err
		}
		if err := tx.Planets().Save(ctx, planet); err != nil {
			return err
		}

		now := h.clock.Now()
		construction = &game.Construction{
			GridID:     grid.ID,
			BuildingID: building.ID,
			Level:      1,
			CreatedAt:  now,
			Timeable:   timer.NewTimeable(now.Add(building.ConstructionTime)),
		}
		if err := tx.Constructions().Add(ctx, construction); err != nil {
			return err
		}

		tx.Notify(game.PlanetUpdated(planet.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.dispatch(ctx, construction)
	return &StartConstructionResponse{Construction: construction}, nil
}

// StartUpgradeCommand raises the building on a grid by one level
type StartUpgradeCommand struct {
	PlayerID shared.PlayerID
	GridID   int64
}

// StartUpgradeResponse carries the pending upgrade
type StartUpgradeResponse struct {
	Upgrade *game.Upgrade
}

// StartUpgradeHandler handles the StartUpgrade command
type StartUpgradeHandler struct {
	gridActionHandler
}

// NewStartUpgradeHandler creates a new StartUpgradeHandler
func NewStartUpgradeHandler(engine *completion.Engine, dispatcher *completion.Dispatcher) *StartUpgradeHandler {
	return &StartUpgradeHandler{newGridActionHandler(engine, dispatcher)}
}

// Handle executes the StartUpgrade command
func (h *StartUpgradeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartUpgradeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartUpgradeCommand")
	}

	user, err := auth.ResolveUser(ctx, h.store.Users(), cmd.PlayerID)
	if err != nil {
		return nil, err
	}

	var upgrade *game.Upgrade
	err = h.store.Transaction(ctx, func(tx game.Store) error {
		grid, planet, err := ownedGrid(ctx, tx, user, cmd.GridID)
		if err != nil {
			return err
		}
		if grid.IsEmpty() {
			return shared.NewConflictError(fmt.Sprintf("grid %d has no building to upgrade", grid.ID))
		}
		if err := busy(ctx, tx, grid.ID); err != nil {
			return err
		}

		building, err := tx.Catalog().Building(ctx, *grid.BuildingID)
		if err != nil {
			return err
		}
		target := grid.CurrentLevel() + 1
		if building.EndLevel > 0 && target > building.EndLevel {
			return shared.NewConflictError(fmt.Sprintf("%s is already at its maximum level", building.Name))
		}
		if err := planet.Spend(building.UpgradePrice(target)); err != nil {
			return err
		}
		if err := tx.Planets().Save(ctx, planet); err != nil {
			return err
		}

		now := h.clock.Now()
		upgrade = &game.Upgrade{
			GridID:     grid.ID,
			BuildingID: building.ID,
			Level:      target,
			CreatedAt:  now,
			Timeable:   timer.NewTimeable(now.Add(building.UpgradeDuration(target))),
		}
		if err := tx.Upgrades().Add(ctx, upgrade); err != nil {
			return err
		}

		tx.Notify(game.PlanetUpdated(planet.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.dispatch(ctx, upgrade)
	return &StartUpgradeResponse{Upgrade: upgrade}, nil
}

// StartTrainingCommand trains units in a barracks grid
type StartTrainingCommand struct {
	PlayerID shared.PlayerID
	GridID   int64
	UnitID   int64
	Quantity int64
}

// StartTrainingResponse carries the pending training
type StartTrainingResponse struct {
	Training *game.Training
}

// StartTrainingHandler handles the StartTraining command
type StartTrainingHandler struct {
	gridActionHandler
}

// NewStartTrainingHandler creates a new StartTrainingHandler
func NewStartTrainingHandler(engine *completion.Engine, dispatcher *completion.Dispatcher) *StartTrainingHandler {
	return &StartTrainingHandler{newGridActionHandler(engine, dispatcher)}
}

// Handle executes the StartTraining command
func (h *StartTrainingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartTrainingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartTrainingCommand")
	}
	if cmd.Quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "must be positive")
	}

	user, err := auth.ResolveUser(ctx, h.store.Users(), cmd.PlayerID)
	if err != nil {
		return nil, err
	}

	var training *game.Training
	err = h.store.Transaction(ctx, func(tx game.Store) error {
		grid, planet, err := ownedGrid(ctx, tx, user, cmd.GridID)
		if err != nil {
			return err
		}
		if grid.IsEmpty() {
			return shared.NewConflictError(fmt.Sprintf("grid %d has no barracks", grid.ID))
		}
		building, err := tx.Catalog().Building(ctx, *grid.BuildingID)
		if err != nil {
			return err
		}
		if !building.CanTrain() {
			return shared.NewConflictError(fmt.Sprintf("%s cannot train units", building.Name))
		}

		running, err := tx.Trainings().FindByGridIDs(ctx, []int64{grid.ID})
		if err != nil {
			return err
		}
		if len(running) > 0 {
			return shared.NewConflictError(fmt.Sprintf("grid %d is already training", grid.ID))
		}

		unit, err := tx.Catalog().Unit(ctx, cmd.UnitID)
		if err != nil {
			return err
		}
		if err := planet.Spend(unit.TrainCost * cmd.Quantity); err != nil {
			return err
		}
		if err := tx.Planets().Save(ctx, planet); err != nil {
			return err
		}

		now := h.clock.Now()
		training = &game.Training{
			GridID:    grid.ID,
			PlanetID:  planet.ID,
			UnitID:    unit.ID,
			Quantity:  cmd.Quantity,
			CreatedAt: now,
			Timeable:  timer.NewTimeable(now.Add(unit.TrainTime * time.Duration(cmd.Quantity))),
		}
		if err := tx.Trainings().Add(ctx, training); err != nil {
			return err
		}

		tx.Notify(game.PlanetUpdated(planet.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.dispatch(ctx, training)
	return &StartTrainingResponse{Training: training}, nil
}
