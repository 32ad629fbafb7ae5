package completion

import (
	"context"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// Finalizer completes the expired records a read is about to display, so
// players never see a finished action as still running. Failures are logged
// and swallowed: the read proceeds and the sweeper retries later.
type Finalizer struct {
	engine *Engine
}

func NewFinalizer(engine *Engine) *Finalizer {
	return &Finalizer{engine: engine}
}

// FinalizeExpired finishes every expired entity, each in its own transaction,
// and returns how many it finished
func (f *Finalizer) FinalizeExpired(ctx context.Context, entities ...timer.Entity) int {
	now := f.engine.clock.Now()
	finished := 0

	for _, e := range entities {
		if e == nil || !e.IsExpired(now) {
			continue
		}

		outcome, err := f.engine.Complete(ctx, timer.RefOf(e), SourceOnRead)
		if err != nil {
			common.LoggerFromContext(ctx).Log("WARNING", "On-read finalization failed", map[string]interface{}{
				"kind":  string(e.Kind()),
				"id":    e.PendingID(),
				"error": err.Error(),
			})
			continue
		}
		if outcome == OutcomeFinished {
			finished++
		}
	}

	return finished
}
