package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// RunSweepCommand runs one guarded pass of the batch sweeper
type RunSweepCommand struct {
	// Kinds restricts the pass; empty sweeps every kind
	Kinds []timer.Kind
}

// RunSweepResponse carries the sweep report
type RunSweepResponse struct {
	Report *completion.SweepReport
}

// RunSweepHandler handles the RunSweep command
type RunSweepHandler struct {
	engine *completion.Engine
	locker completion.Locker
	opts   completion.SweepOptions
}

// NewRunSweepHandler creates a new RunSweepHandler
func NewRunSweepHandler(engine *completion.Engine, locker completion.Locker, opts completion.SweepOptions) *RunSweepHandler {
	return &RunSweepHandler{engine: engine, locker: locker, opts: opts}
}

// Handle executes the RunSweep command
func (h *RunSweepHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunSweepCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunSweepCommand")
	}

	opts := h.opts
	if len(cmd.Kinds) > 0 {
		opts.Kinds = cmd.Kinds
	}

	report, err := completion.NewSweeper(h.engine, opts).Sweep(ctx, h.locker)
	if err != nil {
		return nil, err
	}
	return &RunSweepResponse{Report: report}, nil
}
