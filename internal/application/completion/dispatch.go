package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/solarion-go/internal/adapters/metrics"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// CompletionJob is a deferred completion attempt. It carries only the
// reference; the handler re-reads the record when it runs.
type CompletionJob struct {
	Ref       timer.Ref `json:"ref"`
	NotBefore time.Time `json:"not_before"`
}

// Queue delivers jobs after a delay. Delivery is best-effort: a driver may run
// a job early (sync) or lose it on restart (timer); the sweeper covers both.
type Queue interface {
	Enqueue(ctx context.Context, job CompletionJob, delay time.Duration) error
	Driver() string
}

// JobHandler runs delivered completion jobs against the engine
type JobHandler struct {
	engine *Engine
}

func NewJobHandler(engine *Engine) *JobHandler {
	return &JobHandler{engine: engine}
}

// Handle completes the job's record if it still exists and has expired.
// A job delivered early or after another path already finished the record
// is a no-op.
func (h *JobHandler) Handle(ctx context.Context, job CompletionJob) error {
	outcome, err := h.engine.Complete(ctx, job.Ref, SourceDispatch)
	if err != nil {
		return err
	}
	if outcome != OutcomeFinished {
		common.LoggerFromContext(ctx).Log("DEBUG", "Deferred completion was a no-op", map[string]interface{}{
			"kind":    string(job.Ref.Kind),
			"id":      job.Ref.ID,
			"outcome": outcome.String(),
		})
	}
	return nil
}

// Dispatcher schedules a deferred completion for a newly started action
type Dispatcher struct {
	queue Queue
	clock shared.Clock
}

func NewDispatcher(queue Queue, engine *Engine) *Dispatcher {
	return &Dispatcher{queue: queue, clock: engine.clock}
}

// Dispatch enqueues a job due when e ends
func (d *Dispatcher) Dispatch(ctx context.Context, e timer.Entity) error {
	delay := e.EndsAt().Sub(d.clock.Now())
	if delay < 0 {
		delay = 0
	}

	job := CompletionJob{Ref: timer.RefOf(e), NotBefore: e.EndsAt()}
	if err := d.queue.Enqueue(ctx, job, delay); err != nil {
		return fmt.Errorf("failed to dispatch %s: %w", job.Ref, err)
	}

	metrics.RecordDispatch(string(job.Ref.Kind), d.queue.Driver())
	return nil
}
