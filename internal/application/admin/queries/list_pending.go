package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// ListPendingQuery summarises the pending tables and lists overdue records
type ListPendingQuery struct {
	Kinds []timer.Kind
	// Limit caps the overdue records listed per kind
	Limit int
}

// PendingSummary describes one kind
type PendingSummary struct {
	Kind    timer.Kind
	Total   int64
	Overdue []timer.Entity
}

// ListPendingResponse carries one summary per kind in sweep order
type ListPendingResponse struct {
	Kinds []PendingSummary
}

// ListPendingHandler handles the ListPending query
type ListPendingHandler struct {
	engine *completion.Engine
}

// NewListPendingHandler creates a new ListPendingHandler
func NewListPendingHandler(engine *completion.Engine) *ListPendingHandler {
	return &ListPendingHandler{engine: engine}
}

// Handle executes the ListPending query
func (h *ListPendingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListPendingQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPendingQuery")
	}

	kinds := query.Kinds
	if len(kinds) == 0 {
		kinds = timer.Kinds
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	counts, err := h.engine.PendingCounts(ctx)
	if err != nil {
		return nil, err
	}

	resp := &ListPendingResponse{}
	for _, kind := range kinds {
		overdue, err := h.engine.Due(ctx, kind, limit)
		if err != nil {
			return nil, err
		}
		resp.Kinds = append(resp.Kinds, PendingSummary{Kind: kind, Total: counts[kind], Overdue: overdue})
	}
	return resp, nil
}
