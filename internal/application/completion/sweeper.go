package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/solarion-go/internal/adapters/metrics"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/pkg/utils"
)

// Locker provides named locks with a time-to-live. Acquire never blocks on
// the current holder; it reports false instead.
type Locker interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
}

// SweepOptions configures a Sweeper
type SweepOptions struct {
	LockKey   string
	LockTTL   time.Duration
	BatchSize int
	// Kinds restricts the sweep; empty means every kind in timer.Kinds order
	Kinds []timer.Kind
}

// DefaultSweepOptions mirrors the configuration defaults
func DefaultSweepOptions() SweepOptions {
	return SweepOptions{
		LockKey:   "completion:sweep",
		LockTTL:   60 * time.Second,
		BatchSize: 100,
	}
}

// KindReport counts what the sweeper did with one kind
type KindReport struct {
	Kind      timer.Kind `json:"kind"`
	Processed int        `json:"processed"`
	Errored   int        `json:"errored"`
	Skipped   int        `json:"skipped"`
}

// SweepReport summarises one sweeper run
type SweepReport struct {
	LockAcquired bool          `json:"lock_acquired"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Kinds        []KindReport  `json:"kinds"`
	Processed    int           `json:"processed"`
	Errored      int           `json:"errored"`
	Skipped      int           `json:"skipped"`
}

// Kind returns the report line for kind, zero-valued if it was not swept
func (r *SweepReport) Kind(kind timer.Kind) KindReport {
	for _, k := range r.Kinds {
		if k.Kind == kind {
			return k
		}
	}
	return KindReport{Kind: kind}
}

// Sweeper finishes every expired record across all kinds in one guarded pass
type Sweeper struct {
	engine *Engine
	opts   SweepOptions
}

func NewSweeper(engine *Engine, opts SweepOptions) *Sweeper {
	defaults := DefaultSweepOptions()
	if opts.LockKey == "" {
		opts.LockKey = defaults.LockKey
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaults.LockTTL
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if len(opts.Kinds) == 0 {
		opts.Kinds = timer.Kinds
	}
	return &Sweeper{engine: engine, opts: opts}
}

// Sweep takes the sweep lock and finishes every record whose ended_at is at
// or before the start of the run. Records are processed kind by kind in
// (ended_at, id) order, each in its own transaction; a failing record is
// counted and logged and the sweep moves on. When another run holds the lock
// the report has LockAcquired == false and no work is done.
func (s *Sweeper) Sweep(ctx context.Context, locker Locker) (*SweepReport, error) {
	startedAt := s.engine.clock.Now()
	report := &SweepReport{StartedAt: startedAt}

	owner := utils.GenerateLockOwner("sweep")
	logger := common.WithFields(common.LoggerFromContext(ctx), map[string]interface{}{"sweep_id": owner})
	ctx = common.WithLogger(ctx, logger)
	acquired, err := locker.Acquire(ctx, s.opts.LockKey, owner, s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		logger.Log("INFO", "Sweep skipped: lock held by another run", map[string]interface{}{
			"lock_key": s.opts.LockKey,
		})
		metrics.RecordSweep("locked", 0, 0, 0)
		return report, nil
	}
	report.LockAcquired = true

	defer func() {
		// Release even if ctx was cancelled mid-sweep
		if err := locker.Release(context.WithoutCancel(ctx), s.opts.LockKey, owner); err != nil {
			logger.Log("WARNING", "Failed to release sweep lock", map[string]interface{}{
				"lock_key": s.opts.LockKey,
				"error":    err.Error(),
			})
		}
	}()

	wallStart := time.Now()
	var sweepErr error
	for _, kind := range s.opts.Kinds {
		kr, err := s.sweepKind(ctx, kind, startedAt)
		report.Kinds = append(report.Kinds, kr)
		report.Processed += kr.Processed
		report.Errored += kr.Errored
		report.Skipped += kr.Skipped
		if err != nil {
			sweepErr = err
			break
		}
	}
	report.Duration = time.Since(wallStart)

	result := "ok"
	if report.Errored > 0 {
		result = "errors"
	}
	metrics.RecordSweep(result, report.Processed, report.Errored, report.Duration)

	logger.Log("INFO", "Sweep finished", map[string]interface{}{
		"processed":   report.Processed,
		"errored":     report.Errored,
		"skipped":     report.Skipped,
		"duration_ms": report.Duration.Milliseconds(),
	})

	return report, sweepErr
}

func (s *Sweeper) sweepKind(ctx context.Context, kind timer.Kind, now time.Time) (KindReport, error) {
	kr := KindReport{Kind: kind}
	b, ok := s.engine.bindings[kind]
	if !ok {
		return kr, fmt.Errorf("unknown kind %q", kind)
	}

	var cursor *game.Cursor
	for {
		if err := ctx.Err(); err != nil {
			return kr, err
		}

		page, err := b.due(ctx, s.engine.store, now, cursor, s.opts.BatchSize)
		if err != nil {
			// Nothing can be processed for this kind; count it and move on
			common.LoggerFromContext(ctx).Log("ERROR", "Failed to load due records", map[string]interface{}{
				"kind":  string(kind),
				"error": err.Error(),
			})
			kr.Errored++
			return kr, nil
		}

		for _, e := range page {
			cursor = game.CursorAt(e)

			outcome, err := s.engine.Complete(ctx, timer.RefOf(e), SourceSweeper)
			switch {
			case err != nil:
				kr.Errored++
			case outcome == OutcomeFinished:
				kr.Processed++
			default:
				kr.Skipped++
			}
		}

		if len(page) < s.opts.BatchSize {
			return kr, nil
		}
	}
}
