package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/solarion-go/internal/application/auth"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// StartResearchCommand begins researching the next level of an item
type StartResearchCommand struct {
	PlayerID   shared.PlayerID
	ResearchID int64
}

// StartResearchResponse carries the pending research job
type StartResearchResponse struct {
	Research *game.Research
}

// StartResearchHandler handles the StartResearch command
type StartResearchHandler struct {
	store      game.Transactor
	clock      shared.Clock
	dispatcher *completion.Dispatcher
}

// NewStartResearchHandler creates a new StartResearchHandler
func NewStartResearchHandler(engine *completion.Engine, dispatcher *completion.Dispatcher) *StartResearchHandler {
	return &StartResearchHandler{
		store:      engine.Store(),
		clock:      engine.Clock(),
		dispatcher: dispatcher,
	}
}

// Handle executes the StartResearch command
func (h *StartResearchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartResearchCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartResearchCommand")
	}

	user, err := auth.ResolveUser(ctx, h.store.Users(), cmd.PlayerID)
	if err != nil {
		return nil, err
	}

	var research *game.Research
	err = h.store.Transaction(ctx, func(tx game.Store) error {
		item, err := tx.Catalog().ResearchItem(ctx, cmd.ResearchID)
		if err != nil {
			return err
		}

		pending, err := tx.Researches().FindByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, r := range pending {
			if r.ResearchID == item.ID {
				return shared.NewConflictError(fmt.Sprintf("%s is already being researched", item.Name))
			}
		}

		current, err := tx.UserResearch().Level(ctx, user.ID, item.ID)
		if err != nil {
			return err
		}
		target := current + 1
		if item.MaxLevel > 0 && target > item.MaxLevel {
			return shared.NewConflictError(fmt.Sprintf("%s is already at its maximum level", item.Name))
		}

		now := h.clock.Now()
		research = &game.Research{
			UserID:     user.ID,
			ResearchID: item.ID,
			Level:      target,
			CreatedAt:  now,
			Timeable:   timer.NewTimeable(now.Add(item.ResearchDuration(target))),
		}
		if err := tx.Researches().Add(ctx, research); err != nil {
			return err
		}

		tx.Notify(game.UserUpdated(user.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if h.dispatcher != nil {
		if err := h.dispatcher.Dispatch(ctx, research); err != nil {
			common.LoggerFromContext(ctx).Log("WARNING", "Failed to dispatch completion", map[string]interface{}{
				"kind":  string(research.Kind()),
				"id":    research.ID,
				"error": err.Error(),
			})
		}
	}

	return &StartResearchResponse{Research: research}, nil
}
