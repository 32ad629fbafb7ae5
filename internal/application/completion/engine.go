package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/solarion-go/internal/adapters/metrics"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// Source names the entry point that attempted a completion
type Source string

const (
	SourceSweeper  Source = "sweeper"
	SourceOnRead   Source = "on_read"
	SourceDispatch Source = "dispatch"
)

// Outcome is the result of one completion attempt that did not fail
type Outcome int

const (
	// OutcomeFinished means the effect was applied and the record deleted
	OutcomeFinished Outcome = iota
	// OutcomeMissing means another path finished the record first
	OutcomeMissing
	// OutcomeNotDue means the record exists but has time remaining
	OutcomeNotDue
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeMissing:
		return "missing"
	case OutcomeNotDue:
		return "not_due"
	default:
		return "unknown"
	}
}

// binding erases the entity type of one kind so the engine can treat the
// five kinds uniformly
type binding interface {
	kind() timer.Kind
	claim(ctx context.Context, store game.Store, id int64) (timer.Entity, error)
	due(ctx context.Context, store game.Store, now time.Time, after *game.Cursor, limit int) ([]timer.Entity, error)
	count(ctx context.Context, store game.Store) (int64, error)
	purge(ctx context.Context, store game.Store, now time.Time) (int64, error)
	finish(ctx context.Context, store game.Store, e timer.Entity) error
}

type kindBinding[E timer.Entity] struct {
	k        timer.Kind
	repo     func(game.Store) game.PendingRepository[E]
	finisher Finisher[E]
}

func (b kindBinding[E]) kind() timer.Kind { return b.k }

func (b kindBinding[E]) claim(ctx context.Context, store game.Store, id int64) (timer.Entity, error) {
	e, err := b.repo(store).Claim(ctx, id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (b kindBinding[E]) due(ctx context.Context, store game.Store, now time.Time, after *game.Cursor, limit int) ([]timer.Entity, error) {
	found, err := b.repo(store).FindDue(ctx, now, after, limit)
	if err != nil {
		return nil, err
	}
	out := make([]timer.Entity, len(found))
	for i, e := range found {
		out[i] = e
	}
	return out, nil
}

func (b kindBinding[E]) count(ctx context.Context, store game.Store) (int64, error) {
	return b.repo(store).Count(ctx)
}

func (b kindBinding[E]) purge(ctx context.Context, store game.Store, now time.Time) (int64, error) {
	return b.repo(store).DeleteAllExpired(ctx, now)
}

func (b kindBinding[E]) finish(ctx context.Context, store game.Store, e timer.Entity) error {
	typed, ok := e.(E)
	if !ok {
		return fmt.Errorf("%s finisher cannot handle %T", b.k, e)
	}
	return b.finisher.Finish(ctx, store, typed)
}

// Engine completes pending timed events. Every entry point (sweeper, on-read
// finalizer, deferred job) goes through Complete, which re-fetches the record
// under a row lock inside its own transaction, so racing paths apply each
// effect at most once.
type Engine struct {
	store    game.Transactor
	clock    shared.Clock
	bindings map[timer.Kind]binding
}

// NewEngine wires the five finishers. If clock is nil, uses RealClock.
func NewEngine(store game.Transactor, clock shared.Clock) *Engine {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	e := &Engine{store: store, clock: clock, bindings: make(map[timer.Kind]binding)}
	e.bind(kindBinding[*game.Construction]{
		k:        timer.KindConstruction,
		repo:     func(s game.Store) game.PendingRepository[*game.Construction] { return s.Constructions() },
		finisher: ConstructionFinisher{},
	})
	e.bind(kindBinding[*game.Upgrade]{
		k:        timer.KindUpgrade,
		repo:     func(s game.Store) game.PendingRepository[*game.Upgrade] { return s.Upgrades() },
		finisher: UpgradeFinisher{},
	})
	e.bind(kindBinding[*game.Training]{
		k:        timer.KindTraining,
		repo:     func(s game.Store) game.PendingRepository[*game.Training] { return s.Trainings() },
		finisher: TrainingFinisher{},
	})
	e.bind(kindBinding[*game.Research]{
		k:        timer.KindResearch,
		repo:     func(s game.Store) game.PendingRepository[*game.Research] { return s.Researches() },
		finisher: ResearchFinisher{},
	})
	e.bind(kindBinding[*game.Movement]{
		k:        timer.KindMovement,
		repo:     func(s game.Store) game.PendingRepository[*game.Movement] { return s.Movements() },
		finisher: NewMovementFinisher(clock),
	})
	return e
}

func (e *Engine) bind(b binding) {
	e.bindings[b.kind()] = b
}

// Clock returns the engine's time source
func (e *Engine) Clock() shared.Clock {
	return e.clock
}

// Store returns the store the engine completes against
func (e *Engine) Store() game.Transactor {
	return e.store
}

// Complete finishes the referenced record if it still exists and has expired.
// A record already finished elsewhere yields OutcomeMissing, one with time
// remaining yields OutcomeNotDue; neither is an error. Any error rolls back
// the record's transaction and leaves it pending.
func (e *Engine) Complete(ctx context.Context, ref timer.Ref, source Source) (Outcome, error) {
	b, ok := e.bindings[ref.Kind]
	if !ok {
		return OutcomeMissing, shared.NewValidationError("kind", fmt.Sprintf("unknown kind %q", ref.Kind))
	}

	start := time.Now()
	outcome := OutcomeFinished

	err := e.store.Transaction(ctx, func(tx game.Store) error {
		entity, err := b.claim(ctx, tx, ref.ID)
		if err != nil {
			if shared.IsNotFound(err) {
				outcome = OutcomeMissing
				return nil
			}
			return err
		}

		if !entity.IsExpired(e.clock.Now()) {
			outcome = OutcomeNotDue
			return nil
		}

		return b.finish(ctx, tx, entity)
	})

	label := outcome.String()
	if err != nil {
		label = "error"
	}
	metrics.RecordCompletion(string(ref.Kind), string(source), label, time.Since(start))

	if err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", "Failed to complete timed event", map[string]interface{}{
			"kind":   string(ref.Kind),
			"id":     ref.ID,
			"source": string(source),
			"error":  err.Error(),
		})
		return outcome, fmt.Errorf("failed to complete %s: %w", ref, err)
	}

	return outcome, nil
}

// PendingCounts returns the number of pending records of each kind
func (e *Engine) PendingCounts(ctx context.Context) (map[timer.Kind]int64, error) {
	counts := make(map[timer.Kind]int64, len(timer.Kinds))
	for _, k := range timer.Kinds {
		n, err := e.bindings[k].count(ctx, e.store)
		if err != nil {
			return nil, err
		}
		counts[k] = n
	}
	return counts, nil
}

// Due returns up to limit expired records of kind, oldest first
func (e *Engine) Due(ctx context.Context, kind timer.Kind, limit int) ([]timer.Entity, error) {
	b, ok := e.bindings[kind]
	if !ok {
		return nil, shared.NewValidationError("kind", fmt.Sprintf("unknown kind %q", kind))
	}
	return b.due(ctx, e.store, e.clock.Now(), nil, limit)
}

// Purge deletes expired records of kind without applying their effects.
// Administrative cleanup only; the completion paths never call it.
func (e *Engine) Purge(ctx context.Context, kind timer.Kind) (int64, error) {
	b, ok := e.bindings[kind]
	if !ok {
		return 0, shared.NewValidationError("kind", fmt.Sprintf("unknown kind %q", kind))
	}
	return b.purge(ctx, e.store, e.clock.Now())
}
