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

// ListResearchQuery returns a player's research levels and running jobs
type ListResearchQuery struct {
	PlayerID shared.PlayerID
}

// ListResearchResponse carries levels keyed by research item and the jobs
// still running after expired ones were finished
type ListResearchResponse struct {
	Levels  map[int64]int
	Pending []*dtos.PendingDTO
}

// ListResearchHandler handles the ListResearch query
type ListResearchHandler struct {
	store     game.Store
	finalizer *completion.Finalizer
	clock     shared.Clock
}

// NewListResearchHandler creates a new ListResearchHandler
func NewListResearchHandler(engine *completion.Engine) *ListResearchHandler {
	return &ListResearchHandler{
		store:     engine.Store(),
		finalizer: completion.NewFinalizer(engine),
		clock:     engine.Clock(),
	}
}

// Handle executes the ListResearch query
func (h *ListResearchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListResearchQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListResearchQuery")
	}

	user, err := auth.ResolveUser(ctx, h.store.Users(), query.PlayerID)
	if err != nil {
		return nil, err
	}

	pending, err := h.store.Researches().FindByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	entities := make([]timer.Entity, len(pending))
	for i, r := range pending {
		entities[i] = r
	}
	if h.finalizer.FinalizeExpired(ctx, entities...) > 0 {
		if pending, err = h.store.Researches().FindByUser(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	levels, err := h.store.UserResearch().Levels(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	views := make([]*dtos.PendingDTO, len(pending))
	for i, r := range pending {
		views[i] = dtos.ResearchToDTO(r, now)
	}

	return &ListResearchResponse{Levels: levels, Pending: views}, nil
}
