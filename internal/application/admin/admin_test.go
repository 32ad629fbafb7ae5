package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/application/admin/commands"
	"github.com/andrescamacho/solarion-go/internal/application/admin/queries"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/test/helpers"
)

func seeded(t *testing.T) (*helpers.World, *completion.Engine, []*game.Grid) {
	t.Helper()
	w, err := helpers.NewWorld(helpers.NewTestDB(t))
	require.NoError(t, err)
	user, err := w.CreateUser("ada")
	require.NoError(t, err)
	_, grids, err := w.CreatePlanet(user, "ada-prime", 0, 0, 1000, 5000, 3)
	require.NoError(t, err)

	_, err = w.AddConstruction(grids[0], helpers.BuildingMiner, -time.Minute)
	require.NoError(t, err)
	_, err = w.AddConstruction(grids[1], helpers.BuildingStorage, time.Hour)
	require.NoError(t, err)
	_, err = w.AddResearch(user, helpers.ResearchPropulsion, 1, -time.Second)
	require.NoError(t, err)
	return w, completion.NewEngine(w.Store, w.Clock), grids
}

func TestRunSweep_FinishesEverythingDue(t *testing.T) {
	// Arrange
	w, engine, _ := seeded(t)
	locker := persistence.NewGormLocker(w.DB, w.Clock)
	handler := commands.NewRunSweepHandler(engine, locker, completion.DefaultSweepOptions())

	// Act
	resp, err := handler.Handle(context.Background(), &commands.RunSweepCommand{})

	// Assert
	require.NoError(t, err)
	report := resp.(*commands.RunSweepResponse).Report
	assert.True(t, report.LockAcquired)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Kind(timer.KindConstruction).Processed)
	assert.Equal(t, 1, report.Kind(timer.KindResearch).Processed)
	assert.Equal(t, int64(1), w.Count("constructions"))
}

func TestRunSweep_RestrictedToKinds(t *testing.T) {
	w, engine, _ := seeded(t)
	handler := commands.NewRunSweepHandler(engine, persistence.NewGormLocker(w.DB, w.Clock), completion.DefaultSweepOptions())

	resp, err := handler.Handle(context.Background(), &commands.RunSweepCommand{Kinds: []timer.Kind{timer.KindResearch}})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.(*commands.RunSweepResponse).Report.Processed)
	assert.Equal(t, int64(2), w.Count("constructions"))
	assert.Equal(t, int64(0), w.Count("researches"))
}

func TestPruneExpired_DeletesWithoutApplying(t *testing.T) {
	w, engine, grids := seeded(t)
	handler := commands.NewPruneExpiredHandler(engine)

	resp, err := handler.Handle(context.Background(), &commands.PruneExpiredCommand{})

	require.NoError(t, err)
	pruned := resp.(*commands.PruneExpiredResponse)
	assert.Equal(t, int64(2), pruned.Total)
	assert.Equal(t, int64(1), pruned.Deleted[timer.KindConstruction])
	assert.Equal(t, int64(1), pruned.Deleted[timer.KindResearch])

	grid, err := w.Store.Grids().FindByID(context.Background(), grids[0].ID)
	require.NoError(t, err)
	assert.True(t, grid.IsEmpty())
	assert.Equal(t, int64(0), w.Count("user_research"))
	assert.Equal(t, int64(1), w.Count("constructions"))
}

func TestListPending_SummarisesEveryKind(t *testing.T) {
	_, engine, _ := seeded(t)
	handler := queries.NewListPendingHandler(engine)

	resp, err := handler.Handle(context.Background(), &queries.ListPendingQuery{})

	require.NoError(t, err)
	summary := resp.(*queries.ListPendingResponse)
	require.Len(t, summary.Kinds, len(timer.Kinds))
	assert.Equal(t, timer.KindConstruction, summary.Kinds[0].Kind)
	assert.Equal(t, int64(2), summary.Kinds[0].Total)
	assert.Len(t, summary.Kinds[0].Overdue, 1)
	for _, k := range summary.Kinds[1:] {
		if k.Kind == timer.KindResearch {
			assert.Equal(t, int64(1), k.Total)
			continue
		}
		assert.Zero(t, k.Total)
		assert.Empty(t, k.Overdue)
	}
}
