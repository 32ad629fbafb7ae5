package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/test/helpers"
)

func seededWorld(t *testing.T) (*helpers.World, *game.User, *game.Planet, []*game.Grid) {
	t.Helper()
	w, err := helpers.NewWorld(helpers.NewTestDB(t))
	require.NoError(t, err)
	user, err := w.CreateUser("ada")
	require.NoError(t, err)
	planet, grids, err := w.CreatePlanet(user, "ada-prime", 0, 0, 1000, 5000, 8)
	require.NoError(t, err)
	return w, user, planet, grids
}

func TestPendingRepository_FindDueOrdersAndPages(t *testing.T) {
	// Arrange
	w, _, _, grids := seededWorld(t)
	repo := w.Store.Constructions()
	ctx := context.Background()

	late, err := w.AddConstruction(grids[0], helpers.BuildingMiner, -time.Minute)
	require.NoError(t, err)
	early, err := w.AddConstruction(grids[1], helpers.BuildingMiner, -time.Hour)
	require.NoError(t, err)
	tieA, err := w.AddConstruction(grids[2], helpers.BuildingMiner, -10*time.Minute)
	require.NoError(t, err)
	tieB, err := w.AddConstruction(grids[3], helpers.BuildingMiner, -10*time.Minute)
	require.NoError(t, err)
	_, err = w.AddConstruction(grids[4], helpers.BuildingMiner, time.Minute)
	require.NoError(t, err)

	// Act
	first, err := repo.FindDue(ctx, w.Now(), nil, 2)
	require.NoError(t, err)
	second, err := repo.FindDue(ctx, w.Now(), game.CursorAt(first[len(first)-1]), 2)
	require.NoError(t, err)
	third, err := repo.FindDue(ctx, w.Now(), game.CursorAt(second[len(second)-1]), 2)
	require.NoError(t, err)

	// Assert
	ids := func(cs []*game.Construction) []int64 {
		out := make([]int64, len(cs))
		for i, c := range cs {
			out[i] = c.ID
		}
		return out
	}
	assert.Equal(t, []int64{early.ID, tieA.ID}, ids(first))
	assert.Equal(t, []int64{tieB.ID, late.ID}, ids(second))
	assert.Empty(t, third)
}

func TestPendingRepository_FindDueIgnoresUnsetEndedAt(t *testing.T) {
	w, _, _, grids := seededWorld(t)
	c, err := w.AddConstruction(grids[0], helpers.BuildingMiner, -time.Minute)
	require.NoError(t, err)
	require.NoError(t, w.SetRawEndedAt("constructions", c.ID, nil))

	due, err := w.Store.Constructions().FindDue(context.Background(), w.Now(), nil, 10)

	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestPendingRepository_LegacyTimestampLayouts(t *testing.T) {
	w, _, _, grids := seededWorld(t)

	cases := []struct {
		name     string
		raw      interface{}
		valid    bool
		expected time.Time
	}{
		{"naive datetime", "2026-03-01 12:05:00", true, time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)},
		{"rfc3339", "2026-03-01T12:05:00Z", true, time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)},
		{"garbage", "soon", false, time.Time{}},
		{"empty", "", false, time.Time{}},
		{"null", nil, false, time.Time{}},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := w.AddConstruction(grids[i], helpers.BuildingMiner, time.Hour)
			require.NoError(t, err)
			require.NoError(t, w.SetRawEndedAt("constructions", c.ID, tc.raw))

			loaded, err := w.Store.Constructions().FindByID(context.Background(), c.ID)

			require.NoError(t, err, "reading a malformed ended_at must not fail")
			assert.Equal(t, tc.valid, loaded.IsScheduled())
			if tc.valid {
				assert.True(t, tc.expected.Equal(loaded.EndsAt()))
				assert.Equal(t, int64(300), loaded.Remaining(w.Now()))
			} else {
				assert.True(t, loaded.IsExpired(w.Now()))
			}
		})
	}
}

func TestPendingRepository_FindByIDMissing(t *testing.T) {
	w, _, _, _ := seededWorld(t)

	_, err := w.Store.Upgrades().FindByID(context.Background(), 999)

	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestPendingRepository_DeleteIsIdempotent(t *testing.T) {
	w, _, _, grids := seededWorld(t)
	c, err := w.AddConstruction(grids[0], helpers.BuildingMiner, time.Minute)
	require.NoError(t, err)

	require.NoError(t, w.Store.Constructions().Delete(context.Background(), c.ID))
	require.NoError(t, w.Store.Constructions().Delete(context.Background(), c.ID))

	_, err = w.Store.Constructions().Claim(context.Background(), c.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestPendingRepository_OneConstructionPerGrid(t *testing.T) {
	w, _, _, grids := seededWorld(t)
	_, err := w.AddConstruction(grids[0], helpers.BuildingMiner, time.Minute)
	require.NoError(t, err)

	_, err = w.AddConstruction(grids[0], helpers.BuildingStorage, time.Minute)

	assert.Error(t, err)
}

func TestMovementRepository_RoundTripsFleetAndDeletesUnits(t *testing.T) {
	w, user, planet, _ := seededWorld(t)
	ctx := context.Background()
	other, _, err := w.CreatePlanet(nil, "rock", 10, 10, 0, 0, 0)
	require.NoError(t, err)

	m, err := w.AddMovement(user, planet, other, game.MovementTransport,
		game.Fleet{helpers.UnitFighter: 3, helpers.UnitFreighter: 1}, 150, 10*time.Minute, -time.Minute)
	require.NoError(t, err)

	loaded, err := w.Store.Movements().FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, game.MovementTransport, loaded.Type)
	assert.Equal(t, game.Fleet{helpers.UnitFighter: 3, helpers.UnitFreighter: 1}, loaded.Units)
	assert.Equal(t, int64(150), loaded.Solarion)
	assert.Equal(t, 10*time.Minute, loaded.TravelTime())

	inbound, err := w.Store.Movements().FindInvolving(ctx, 0, []int64{other.ID})
	require.NoError(t, err)
	assert.Len(t, inbound, 1)

	purged, err := w.Store.Movements().DeleteAllExpired(ctx, w.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, int64(0), w.Count("movement_units"))
}

func TestPendingRepository_CountPerKind(t *testing.T) {
	w, user, _, grids := seededWorld(t)
	ctx := context.Background()
	_, err := w.AddTraining(grids[0], helpers.UnitFighter, 2, time.Minute)
	require.NoError(t, err)
	_, err = w.AddResearch(user, helpers.ResearchPropulsion, 1, time.Minute)
	require.NoError(t, err)
	_, err = w.AddResearch(user, helpers.ResearchWeaponry, 1, time.Minute)
	require.NoError(t, err)

	trainings, err := w.Store.Trainings().Count(ctx)
	require.NoError(t, err)
	researches, err := persistence.NewGormResearchRepository(w.DB).Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), trainings)
	assert.Equal(t, int64(2), researches)
}
