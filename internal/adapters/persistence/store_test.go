package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

func TestGormStore_EventsPublishAfterCommitOnce(t *testing.T) {
	w, _, planet, _ := seededWorld(t)

	err := w.Store.Transaction(context.Background(), func(tx game.Store) error {
		tx.Notify(game.PlanetUpdated(planet.ID))
		tx.Notify(game.PlanetUpdated(planet.ID))
		assert.Empty(t, w.Events.Events(), "nothing is published before commit")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []game.Event{game.PlanetUpdated(planet.ID)}, w.Events.Events())
}

func TestGormStore_RollbackDropsEventsAndWrites(t *testing.T) {
	w, _, planet, _ := seededWorld(t)
	boom := errors.New("boom")

	err := w.Store.Transaction(context.Background(), func(tx game.Store) error {
		p, err := tx.Planets().FindByID(context.Background(), planet.ID)
		if err != nil {
			return err
		}
		p.Solarion = 0
		if err := tx.Planets().Save(context.Background(), p); err != nil {
			return err
		}
		tx.Notify(game.PlanetUpdated(planet.ID))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, w.Events.Events())

	reloaded, err := w.Store.Planets().FindByID(context.Background(), planet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), reloaded.Solarion)
}

func TestGarrisonRepository_AddAndRemove(t *testing.T) {
	w, _, planet, _ := seededWorld(t)
	ctx := context.Background()
	garrisons := w.Store.Garrisons()

	require.NoError(t, garrisons.Add(ctx, planet.ID, game.Fleet{1: 5, 2: 3}))
	require.NoError(t, garrisons.Add(ctx, planet.ID, game.Fleet{1: 2}))
	require.NoError(t, garrisons.Remove(ctx, planet.ID, game.Fleet{2: 3}))

	fleet, err := garrisons.Get(ctx, planet.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Fleet{1: 7}, fleet)
	assert.Equal(t, int64(1), w.Count("garrisons"), "emptied stacks are pruned")
}

func TestGarrisonRepository_RemoveMoreThanStationed(t *testing.T) {
	w, _, planet, _ := seededWorld(t)
	ctx := context.Background()
	require.NoError(t, w.Store.Garrisons().Add(ctx, planet.ID, game.Fleet{1: 2}))

	err := w.Store.Garrisons().Remove(ctx, planet.ID, game.Fleet{1: 3})

	var conflict *shared.ConflictError
	require.ErrorAs(t, err, &conflict)
	fleet, err := w.Store.Garrisons().Get(ctx, planet.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Fleet{1: 2}, fleet)
}

func TestUserResearchRepository_SetLevelUpserts(t *testing.T) {
	w, user, _, _ := seededWorld(t)
	ctx := context.Background()
	repo := w.Store.UserResearch()

	level, err := repo.Level(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, level)

	require.NoError(t, repo.SetLevel(ctx, user.ID, 1, 1))
	require.NoError(t, repo.SetLevel(ctx, user.ID, 1, 2))
	require.NoError(t, repo.SetLevel(ctx, user.ID, 2, 1))

	levels, err := repo.Levels(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 2, 2: 1}, levels)
}
