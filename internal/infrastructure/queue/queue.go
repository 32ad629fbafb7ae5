package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
)

// Handler processes one delivered job
type Handler func(ctx context.Context, job completion.CompletionJob) error

// New builds the queue selected by driver
func New(ctx context.Context, driver string, handler Handler) (completion.Queue, error) {
	switch driver {
	case "sync":
		return NewSyncQueue(handler), nil
	case "timer":
		return NewTimerQueue(ctx, handler), nil
	default:
		return nil, fmt.Errorf("unsupported queue driver: %s", driver)
	}
}

// SyncQueue runs every job inline at enqueue time and ignores the delay,
// like a shared host without a worker process. The handler's expiry check
// turns such early deliveries into no-ops.
type SyncQueue struct {
	handler Handler
}

func NewSyncQueue(handler Handler) *SyncQueue {
	return &SyncQueue{handler: handler}
}

func (q *SyncQueue) Enqueue(ctx context.Context, job completion.CompletionJob, _ time.Duration) error {
	return q.handler(ctx, job)
}

func (q *SyncQueue) Driver() string {
	return "sync"
}

// TimerQueue delays jobs in-process with time.AfterFunc. Pending jobs live
// only in memory and are dropped by Stop or a restart.
type TimerQueue struct {
	ctx     context.Context
	handler Handler

	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	nextID  uint64
	stopped bool
	wg      sync.WaitGroup
}

// NewTimerQueue creates a timer queue whose jobs run with ctx (and its logger)
func NewTimerQueue(ctx context.Context, handler Handler) *TimerQueue {
	return &TimerQueue{
		ctx:     context.WithoutCancel(ctx),
		handler: handler,
		timers:  make(map[uint64]*time.Timer),
	}
}

func (q *TimerQueue) Enqueue(_ context.Context, job completion.CompletionJob, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return fmt.Errorf("queue stopped")
	}

	id := q.nextID
	q.nextID++

	q.wg.Add(1)
	q.timers[id] = time.AfterFunc(delay, func() {
		defer q.wg.Done()

		q.mu.Lock()
		delete(q.timers, id)
		q.mu.Unlock()

		if err := q.handler(q.ctx, job); err != nil {
			common.LoggerFromContext(q.ctx).Log("ERROR", "Deferred completion failed", map[string]interface{}{
				"kind":  string(job.Ref.Kind),
				"id":    job.Ref.ID,
				"error": err.Error(),
			})
		}
	})
	return nil
}

func (q *TimerQueue) Driver() string {
	return "timer"
}

// Pending returns the number of jobs waiting for their timer
func (q *TimerQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.timers)
}

// Stop cancels jobs that have not fired and waits for running ones
func (q *TimerQueue) Stop() {
	q.mu.Lock()
	q.stopped = true
	for id, t := range q.timers {
		if t.Stop() {
			q.wg.Done()
		}
		delete(q.timers, id)
	}
	q.mu.Unlock()

	q.wg.Wait()
}
