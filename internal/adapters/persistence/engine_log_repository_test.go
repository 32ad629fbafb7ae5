package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/test/helpers"
)

func TestEngineLogRepository_DeduplicatesWithinWindow(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := persistence.NewGormEngineLogRepository(db, clock)
	ctx := context.Background()

	require.NoError(t, repo.Log(ctx, "ERROR", "Failed to complete timed event", map[string]interface{}{"id": 1}))
	require.NoError(t, repo.Log(ctx, "ERROR", "Failed to complete timed event", map[string]interface{}{"id": 2}))
	clock.Advance(61 * time.Second)
	require.NoError(t, repo.Log(ctx, "ERROR", "Failed to complete timed event", nil))
	require.NoError(t, repo.Log(ctx, "WARNING", "Failed to complete timed event", nil))

	entries, err := repo.Recent(ctx, 10, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	level := "ERROR"
	errorsOnly, err := repo.Recent(ctx, 10, &level)
	require.NoError(t, err)
	require.Len(t, errorsOnly, 2)
	assert.Nil(t, errorsOnly[0].Metadata)
	assert.Equal(t, float64(1), errorsOnly[1].Metadata["id"])
}

func TestEngineLogRepository_PruneBefore(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := persistence.NewGormEngineLogRepository(db, clock)
	ctx := context.Background()

	require.NoError(t, repo.Log(ctx, "INFO", "old", nil))
	clock.Advance(48 * time.Hour)
	require.NoError(t, repo.Log(ctx, "INFO", "new", nil))

	pruned, err := repo.PruneBefore(ctx, clock.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	entries, err := repo.Recent(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Message)
}
