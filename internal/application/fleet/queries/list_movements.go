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
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// ListMovementsQuery returns fleets sent by the player or heading to one of
// the player's planets
type ListMovementsQuery struct {
	PlayerID shared.PlayerID
}

// ListMovementsResponse carries the movements still in flight
type ListMovementsResponse struct {
	Movements []dtos.MovementDTO
}

// ListMovementsHandler handles the ListMovements query
type ListMovementsHandler struct {
	store     game.Store
	finalizer *completion.Finalizer
	clock     shared.Clock
}

// NewListMovementsHandler creates a new ListMovementsHandler
func NewListMovementsHandler(engine *completion.Engine) *ListMovementsHandler {
	return &ListMovementsHandler{
		store:     engine.Store(),
		finalizer: completion.NewFinalizer(engine),
		clock:     engine.Clock(),
	}
}

// Handle executes the ListMovements query
func (h *ListMovementsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListMovementsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListMovementsQuery")
	}

	user, err := auth.ResolveUser(ctx, h.store.Users(), query.PlayerID)
	if err != nil {
		return nil, err
	}

	planets, err := h.store.Planets().FindByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	planetIDs := make([]int64, len(planets))
	for i, p := range planets {
		planetIDs[i] = p.ID
	}

	movements, err := h.store.Movements().FindInvolving(ctx, user.ID, planetIDs)
	if err != nil {
		return nil, err
	}

	entities := make([]timer.Entity, len(movements))
	for i, m := range movements {
		entities[i] = m
	}
	// Finishing an outbound leg may create its return leg
	if h.finalizer.FinalizeExpired(ctx, entities...) > 0 {
		if movements, err = h.store.Movements().FindInvolving(ctx, user.ID, planetIDs); err != nil {
			return nil, err
		}
	}

	now := h.clock.Now()
	views := make([]dtos.MovementDTO, len(movements))
	for i, m := range movements {
		views[i] = dtos.MovementToDTO(m, now)
	}

	return &ListMovementsResponse{Movements: views}, nil
}
