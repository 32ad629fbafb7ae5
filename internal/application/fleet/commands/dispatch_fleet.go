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

// MinTravelTime is the shortest trip any fleet can make
const MinTravelTime = time.Minute

// DispatchFleetCommand sends units from one of the player's planets
type DispatchFleetCommand struct {
	PlayerID     shared.PlayerID
	FromPlanetID int64 // 0 means the player's current planet
	ToPlanetID   int64
	Type         string
	Units        map[int64]int64
	Solarion     int64 // cargo, transport only
}

// DispatchFleetResponse carries the movement in flight
type DispatchFleetResponse struct {
	Movement *game.Movement
}

// DispatchFleetHandler handles the DispatchFleet command
type DispatchFleetHandler struct {
	store      game.Transactor
	clock      shared.Clock
	dispatcher *completion.Dispatcher
}

// NewDispatchFleetHandler creates a new DispatchFleetHandler
func NewDispatchFleetHandler(engine *completion.Engine, dispatcher *completion.Dispatcher) *DispatchFleetHandler {
	return &DispatchFleetHandler{
		store:      engine.Store(),
		clock:      engine.Clock(),
		dispatcher: dispatcher,
	}
}

// Handle executes the DispatchFleet command
func (h *DispatchFleetHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DispatchFleetCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *DispatchFleetCommand")
	}

	kind, ok := game.ParseMovementType(cmd.Type)
	if !ok {
		return nil, shared.NewValidationError("type", fmt.Sprintf("unknown movement type %q", cmd.Type))
	}
	units := game.Fleet(cmd.Units).Clone()
	if units.IsEmpty() {
		return nil, shared.NewValidationError("units", "at least one unit is required")
	}
	if cmd.Solarion < 0 {
		return nil, shared.NewValidationError("solarion", "must not be negative")
	}
	if cmd.Solarion > 0 && kind != game.MovementTransport {
		return nil, shared.NewValidationError("solarion", "only transports carry cargo")
	}

	user, err := auth.ResolveUser(ctx, h.store.Users(), cmd.PlayerID)
	if err != nil {
		return nil, err
	}
	fromID := cmd.FromPlanetID
	if fromID == 0 {
		if fromID, ok = user.HomePlanetID(); !ok {
			return nil, shared.NewNotFoundError("planet", 0)
		}
	}
	if fromID == cmd.ToPlanetID {
		return nil, shared.NewValidationError("to_planet_id", "must differ from the origin")
	}

	var movement *game.Movement
	err = h.store.Transaction(ctx, func(tx game.Store) error {
		from, err := tx.Planets().FindByID(ctx, fromID)
		if err != nil {
			return err
		}
		if !from.IsOwnedBy(user.ID) {
			return shared.NewNotFoundError("planet", fromID)
		}
		to, err := tx.Planets().FindByID(ctx, cmd.ToPlanetID)
		if err != nil {
			return err
		}

		catalog, err := tx.Catalog().Units(ctx)
		if err != nil {
			return err
		}
		for id := range units {
			if _, ok := catalog[id]; !ok {
				return shared.NewValidationError("units", fmt.Sprintf("unknown unit %d", id))
			}
		}

		if err := tx.Garrisons().Remove(ctx, from.ID, units); err != nil {
			return err
		}

		if cmd.Solarion > 0 {
			if capacity := units.CarryCapacity(catalog); cmd.Solarion > capacity {
				return shared.NewConflictError(fmt.Sprintf("fleet can carry %d solarion, %d requested", capacity, cmd.Solarion))
			}
			if err := from.Spend(cmd.Solarion); err != nil {
				return err
			}
			if err := tx.Planets().Save(ctx, from); err != nil {
				return err
			}
		}

		now := h.clock.Now()
		travel := game.TravelDuration(from.DistanceTo(to), units.SlowestSpeed(catalog), MinTravelTime)
		movement = &game.Movement{
			UserID:        user.ID,
			StartPlanetID: from.ID,
			EndPlanetID:   to.ID,
			Type:          kind,
			Units:         units,
			Solarion:      cmd.Solarion,
			CreatedAt:     now,
			Timeable:      timer.NewTimeable(now.Add(travel)),
		}
		if err := tx.Movements().Add(ctx, movement); err != nil {
			return err
		}

		tx.Notify(game.PlanetUpdated(from.ID))
		tx.Notify(game.PlanetUpdated(to.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if h.dispatcher != nil {
		if err := h.dispatcher.Dispatch(ctx, movement); err != nil {
			common.LoggerFromContext(ctx).Log("WARNING", "Failed to dispatch completion", map[string]interface{}{
				"kind":  string(movement.Kind()),
				"id":    movement.ID,
				"error": err.Error(),
			})
		}
	}

	return &DispatchFleetResponse{Movement: movement}, nil
}
