package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/solarion-go/internal/application/auth"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/application/planet/dtos"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

// GetPlanetQuery returns the player's current planet
type GetPlanetQuery struct {
	PlayerID shared.PlayerID
}

// GetPlanetResponse carries the rendered planet
type GetPlanetResponse struct {
	Planet   *dtos.PlanetDTO
	Finished int // timed actions completed while reading
}

// GetPlanetHandler loads the current planet, finishing any construction,
// upgrade or training on it that has already ended before rendering
type GetPlanetHandler struct {
	store     game.Store
	finalizer *completion.Finalizer
	clock     shared.Clock
}

// NewGetPlanetHandler creates a new GetPlanetHandler
func NewGetPlanetHandler(engine *completion.Engine) *GetPlanetHandler {
	return &GetPlanetHandler{
		store:     engine.Store(),
		finalizer: completion.NewFinalizer(engine),
		clock:     engine.Clock(),
	}
}

// Handle executes the GetPlanet query
func (h *GetPlanetHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetPlanetQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPlanetQuery")
	}

	user, err := auth.ResolveUser(ctx, h.store.Users(), query.PlayerID)
	if err != nil {
		return nil, err
	}
	planetID, ok := user.HomePlanetID()
	if !ok {
		return nil, shared.NewNotFoundError("planet", 0)
	}

	if err := h.ensureGrids(ctx, planetID); err != nil {
		return nil, err
	}

	snapshot, err := LoadPlanetSnapshot(ctx, h.store, planetID)
	if err != nil {
		return nil, err
	}

	finished := h.finalizer.FinalizeExpired(ctx, snapshot.Entities()...)
	if finished > 0 {
		// Effects changed grids, garrison or stock: render fresh state
		snapshot, err = LoadPlanetSnapshot(ctx, h.store, planetID)
		if err != nil {
			return nil, err
		}
	}

	return &GetPlanetResponse{
		Planet:   dtos.PlanetToDTO(snapshot, h.clock.Now()),
		Finished: finished,
	}, nil
}

// ensureGrids lays out the surface of a planet that has no slots yet
func (h *GetPlanetHandler) ensureGrids(ctx context.Context, planetID int64) error {
	grids, err := h.store.Grids().FindByPlanet(ctx, planetID)
	if err != nil {
		return err
	}
	if len(grids) > 0 {
		return nil
	}
	for _, g := range game.NewGridLayout(planetID) {
		if err := h.store.Grids().Save(ctx, g); err != nil {
			return fmt.Errorf("failed to create grid: %w", err)
		}
	}
	return nil
}

// LoadPlanetSnapshot reads a planet with its grids, garrison and the pending
// actions on its grids
func LoadPlanetSnapshot(ctx context.Context, store game.Store, planetID int64) (*dtos.PlanetSnapshot, error) {
	planet, err := store.Planets().FindByID(ctx, planetID)
	if err != nil {
		return nil, err
	}
	grids, err := store.Grids().FindByPlanet(ctx, planetID)
	if err != nil {
		return nil, err
	}
	garrison, err := store.Garrisons().Get(ctx, planetID)
	if err != nil {
		return nil, err
	}

	gridIDs := make([]int64, len(grids))
	for i, g := range grids {
		gridIDs[i] = g.ID
	}

	s := &dtos.PlanetSnapshot{Planet: planet, Grids: grids, Garrison: garrison}
	if s.Constructions, err = store.Constructions().FindByGridIDs(ctx, gridIDs); err != nil {
		return nil, err
	}
	if s.Upgrades, err = store.Upgrades().FindByGridIDs(ctx, gridIDs); err != nil {
		return nil, err
	}
	if s.Trainings, err = store.Trainings().FindByGridIDs(ctx, gridIDs); err != nil {
		return nil, err
	}
	return s, nil
}
