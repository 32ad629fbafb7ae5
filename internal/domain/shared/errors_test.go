package shared_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

func TestErrorClassification(t *testing.T) {
	notFound := fmt.Errorf("loading grid: %w", shared.NewNotFoundError("grid", 4))
	conflict := shared.NewConflictError("grid 4 is not empty")
	broke := fmt.Errorf("spend: %w", shared.NewInsufficientResourcesError(500, 20))
	invalid := shared.NewValidationError("quantity", "must be positive")

	assert.True(t, shared.IsNotFound(notFound))
	assert.False(t, shared.IsNotFound(conflict))

	assert.True(t, shared.IsConflict(conflict))
	assert.True(t, shared.IsConflict(broke))
	assert.False(t, shared.IsConflict(invalid))

	assert.True(t, shared.IsValidation(invalid))
	assert.False(t, shared.IsValidation(notFound))

	assert.EqualError(t, broke, "spend: insufficient solarion: need 500, have 20")
}

func TestPlayerID(t *testing.T) {
	id, err := shared.ParsePlayerID(" 42 ")
	if assert.NoError(t, err) {
		assert.Equal(t, int64(42), id.Value())
	}

	_, err = shared.ParsePlayerID("abc")
	assert.True(t, shared.IsValidation(err))

	_, err = shared.NewPlayerID(0)
	assert.Error(t, err)
	assert.True(t, shared.PlayerID{}.IsZero())
}
