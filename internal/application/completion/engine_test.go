package completion_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/test/helpers"
)

func newWorld(t *testing.T) (*helpers.World, *completion.Engine) {
	t.Helper()
	w, err := helpers.NewWorld(helpers.NewTestDB(t))
	require.NoError(t, err)
	return w, completion.NewEngine(w.Store, w.Clock)
}

type homeFixture struct {
	user   *game.User
	planet *game.Planet
	grids  []*game.Grid
}

func newHome(t *testing.T, w *helpers.World, name string, x int64) homeFixture {
	t.Helper()
	user, err := w.CreateUser(name)
	require.NoError(t, err)
	planet, grids, err := w.CreatePlanet(user, name+"-prime", x, 0, 1000, 5000, 4)
	require.NoError(t, err)
	return homeFixture{user: user, planet: planet, grids: grids}
}

func TestComplete_ConstructionInstallsBuilding(t *testing.T) {
	// Arrange
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	c, err := w.AddConstruction(home.grids[0], helpers.BuildingMiner, -time.Second)
	require.NoError(t, err)

	// Act
	outcome, err := engine.Complete(context.Background(), timer.RefOf(c), completion.SourceSweeper)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, completion.OutcomeFinished, outcome)

	grid, err := w.Store.Grids().FindByID(context.Background(), home.grids[0].ID)
	require.NoError(t, err)
	require.NotNil(t, grid.BuildingID)
	assert.Equal(t, helpers.BuildingMiner, *grid.BuildingID)
	assert.Equal(t, 1, grid.CurrentLevel())
	assert.Equal(t, int64(0), w.Count("constructions"))
	assert.Contains(t, w.Events.Events(), game.PlanetUpdated(home.planet.ID))
}

func TestComplete_SecondAttemptIsMissing(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	require.NoError(t, w.InstallBuilding(home.grids[0], helpers.BuildingMiner, 3))
	u, err := w.AddUpgrade(home.grids[0], -time.Minute)
	require.NoError(t, err)

	first, err := engine.Complete(context.Background(), timer.RefOf(u), completion.SourceOnRead)
	require.NoError(t, err)
	second, err := engine.Complete(context.Background(), timer.RefOf(u), completion.SourceDispatch)
	require.NoError(t, err)

	assert.Equal(t, completion.OutcomeFinished, first)
	assert.Equal(t, completion.OutcomeMissing, second)

	grid, err := w.Store.Grids().FindByID(context.Background(), home.grids[0].ID)
	require.NoError(t, err)
	// applied exactly once
	assert.Equal(t, 4, grid.CurrentLevel())
}

func TestComplete_NotDueLeavesRecord(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	c, err := w.AddConstruction(home.grids[0], helpers.BuildingMiner, 5*time.Minute)
	require.NoError(t, err)

	outcome, err := engine.Complete(context.Background(), timer.RefOf(c), completion.SourceDispatch)

	require.NoError(t, err)
	assert.Equal(t, completion.OutcomeNotDue, outcome)
	assert.Equal(t, int64(1), w.Count("constructions"))
	assert.Empty(t, w.Events.Events())
}

func TestComplete_FailureRollsBackAndPublishesNothing(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	// an upgrade on an empty grid cannot be applied
	u := &game.Upgrade{
		GridID:     home.grids[1].ID,
		BuildingID: helpers.BuildingMiner,
		Level:      2,
		CreatedAt:  w.Now(),
		Timeable:   w.EndingIn(-time.Second),
	}
	require.NoError(t, w.Store.Upgrades().Add(context.Background(), u))

	_, err := engine.Complete(context.Background(), timer.RefOf(u), completion.SourceSweeper)

	require.Error(t, err)
	assert.Equal(t, int64(1), w.Count("upgrades"))
	assert.Empty(t, w.Events.Events())
}

func TestComplete_TrainingStationsUnits(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	require.NoError(t, w.InstallBuilding(home.grids[0], helpers.BuildingBarracks, 1))
	tr, err := w.AddTraining(home.grids[0], helpers.UnitFighter, 12, -time.Second)
	require.NoError(t, err)
	require.NoError(t, w.Store.Garrisons().Add(context.Background(), home.planet.ID, game.Fleet{helpers.UnitFighter: 3}))

	_, err = engine.Complete(context.Background(), timer.RefOf(tr), completion.SourceSweeper)
	require.NoError(t, err)

	garrison, err := w.Store.Garrisons().Get(context.Background(), home.planet.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Fleet{helpers.UnitFighter: 15}, garrison)
}

func TestComplete_ResearchRaisesLevel(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	require.NoError(t, w.Store.UserResearch().SetLevel(context.Background(), home.user.ID, helpers.ResearchWeaponry, 2))
	r, err := w.AddResearch(home.user, helpers.ResearchWeaponry, 3, -time.Second)
	require.NoError(t, err)

	_, err = engine.Complete(context.Background(), timer.RefOf(r), completion.SourceSweeper)
	require.NoError(t, err)

	level, err := w.Store.UserResearch().Level(context.Background(), home.user.ID, helpers.ResearchWeaponry)
	require.NoError(t, err)
	assert.Equal(t, 3, level)
	assert.Contains(t, w.Events.Events(), game.UserUpdated(home.user.ID))
}

func TestComplete_UnsetEndedAtCountsAsExpired(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	c, err := w.AddConstruction(home.grids[0], helpers.BuildingMiner, time.Hour)
	require.NoError(t, err)
	require.NoError(t, w.SetRawEndedAt("constructions", c.ID, "not-a-timestamp"))

	loaded, err := w.Store.Constructions().FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsScheduled())
	assert.Equal(t, int64(0), loaded.Remaining(w.Now()))

	outcome, err := engine.Complete(context.Background(), timer.RefOf(c), completion.SourceOnRead)
	require.NoError(t, err)
	assert.Equal(t, completion.OutcomeFinished, outcome)
}

func TestPendingCountsAndPurge(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	_, err := w.AddConstruction(home.grids[0], helpers.BuildingMiner, -time.Hour)
	require.NoError(t, err)
	_, err = w.AddConstruction(home.grids[1], helpers.BuildingMiner, time.Hour)
	require.NoError(t, err)

	counts, err := engine.PendingCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[timer.KindConstruction])
	assert.Equal(t, int64(0), counts[timer.KindMovement])

	purged, err := engine.Purge(context.Background(), timer.KindConstruction)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// purge applies no effect
	grid, err := w.Store.Grids().FindByID(context.Background(), home.grids[0].ID)
	require.NoError(t, err)
	assert.True(t, grid.IsEmpty())
}

func TestDispatch_SyncQueueIsGuardedByExpiry(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	c, err := w.AddConstruction(home.grids[0], helpers.BuildingMiner, 2*time.Minute)
	require.NoError(t, err)

	handler := completion.NewJobHandler(engine)
	q := &recordingQueue{handler: handler}
	dispatcher := completion.NewDispatcher(q, engine)

	// sync delivery arrives before the action ends: no-op
	require.NoError(t, dispatcher.Dispatch(context.Background(), c))
	assert.Equal(t, 2*time.Minute, q.lastDelay)
	assert.Equal(t, int64(1), w.Count("constructions"))

	// redelivered after expiry: finished
	w.Clock.Advance(2 * time.Minute)
	require.NoError(t, handler.Handle(context.Background(), q.lastJob))
	assert.Equal(t, int64(0), w.Count("constructions"))

	// and once more after that: missing, still no error
	require.NoError(t, handler.Handle(context.Background(), q.lastJob))
}

type recordingQueue struct {
	handler   *completion.JobHandler
	lastJob   completion.CompletionJob
	lastDelay time.Duration
}

func (q *recordingQueue) Enqueue(ctx context.Context, job completion.CompletionJob, delay time.Duration) error {
	q.lastJob, q.lastDelay = job, delay
	return q.handler.Handle(ctx, job)
}

func (q *recordingQueue) Driver() string { return "sync" }

var _ completion.Locker = (*persistence.GormLocker)(nil)
