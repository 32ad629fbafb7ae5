package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// PruneExpiredCommand deletes expired pending records without applying their
// effects. It is an operator tool for abandoned data, never part of completion.
type PruneExpiredCommand struct {
	// Kinds restricts the prune; empty prunes every kind
	Kinds []timer.Kind
}

// PruneExpiredResponse counts deleted records per kind
type PruneExpiredResponse struct {
	Deleted map[timer.Kind]int64
	Total   int64
}

// PruneExpiredHandler handles the PruneExpired command
type PruneExpiredHandler struct {
	engine *completion.Engine
}

// NewPruneExpiredHandler creates a new PruneExpiredHandler
func NewPruneExpiredHandler(engine *completion.Engine) *PruneExpiredHandler {
	return &PruneExpiredHandler{engine: engine}
}

// Handle executes the PruneExpired command
func (h *PruneExpiredHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PruneExpiredCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PruneExpiredCommand")
	}

	kinds := cmd.Kinds
	if len(kinds) == 0 {
		kinds = timer.Kinds
	}

	resp := &PruneExpiredResponse{Deleted: make(map[timer.Kind]int64, len(kinds))}
	for _, kind := range kinds {
		n, err := h.engine.Purge(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to prune %s: %w", kind, err)
		}
		resp.Deleted[kind] = n
		resp.Total += n
	}

	common.LoggerFromContext(ctx).Log("INFO", "Pruned expired records", map[string]interface{}{
		"total": resp.Total,
	})
	return resp, nil
}
