package completion_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/test/helpers"
)

func completeMovement(t *testing.T, engine *completion.Engine, m *game.Movement) {
	t.Helper()
	outcome, err := engine.Complete(context.Background(), timer.RefOf(m), completion.SourceSweeper)
	require.NoError(t, err)
	require.Equal(t, completion.OutcomeFinished, outcome)
}

func onlyMovement(t *testing.T, w *helpers.World, userID int64) *game.Movement {
	t.Helper()
	movements, err := w.Store.Movements().FindInvolving(context.Background(), userID, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	return movements[0]
}

func TestMovement_SupportJoinsDestinationGarrison(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	ally := newHome(t, w, "bo", 30)
	require.NoError(t, w.Store.Garrisons().Add(context.Background(), ally.planet.ID, game.Fleet{helpers.UnitGuardian: 1}))

	m, err := w.AddMovement(home.user, home.planet, ally.planet, game.MovementSupport,
		game.Fleet{helpers.UnitGuardian: 4}, 0, 10*time.Minute, -time.Second)
	require.NoError(t, err)

	completeMovement(t, engine, m)

	garrison, err := w.Store.Garrisons().Get(context.Background(), ally.planet.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Fleet{helpers.UnitGuardian: 5}, garrison)
	assert.Equal(t, int64(0), w.Count("movements"))
	assert.Equal(t, int64(0), w.Count("movement_units"))
}

func TestMovement_TransportDepositsUpToCapacityAndReturns(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	user, err := w.CreateUser("bo")
	require.NoError(t, err)
	dest, _, err := w.CreatePlanet(user, "depot", 40, 0, 4900, 5000, 1)
	require.NoError(t, err)

	travel := 10 * time.Minute
	m, err := w.AddMovement(home.user, home.planet, dest, game.MovementTransport,
		game.Fleet{helpers.UnitFreighter: 2}, 300, travel, -time.Minute)
	require.NoError(t, err)
	arrival := m.EndsAt()

	completeMovement(t, engine, m)

	stored, err := w.Store.Planets().FindByID(context.Background(), dest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), stored.Solarion)

	back := onlyMovement(t, w, home.user.ID)
	assert.Equal(t, game.MovementReturn, back.Type)
	assert.Equal(t, dest.ID, back.StartPlanetID)
	assert.Equal(t, home.planet.ID, back.EndPlanetID)
	assert.Equal(t, int64(200), back.Solarion)
	assert.Equal(t, game.Fleet{helpers.UnitFreighter: 2}, back.Units)
	assert.True(t, back.EndsAt().Equal(arrival.Add(travel)), "return leg departs at arrival")
}

func TestMovement_AttackLootsAndSendsSurvivorsHome(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	target := newHome(t, w, "bo", 50)
	require.NoError(t, w.Store.Garrisons().Add(context.Background(), target.planet.ID, game.Fleet{helpers.UnitGuardian: 2}))

	// 10 fighters: attack 100, carry 200. 2 guardians: defense 40.
	m, err := w.AddMovement(home.user, home.planet, target.planet, game.MovementAttack,
		game.Fleet{helpers.UnitFighter: 10}, 0, 10*time.Minute, -time.Minute)
	require.NoError(t, err)

	completeMovement(t, engine, m)

	defenders, err := w.Store.Garrisons().Get(context.Background(), target.planet.ID)
	require.NoError(t, err)
	assert.True(t, defenders.IsEmpty())

	looted, err := w.Store.Planets().FindByID(context.Background(), target.planet.ID)
	require.NoError(t, err)
	// six survivors carry 120
	assert.Equal(t, int64(880), looted.Solarion)

	back := onlyMovement(t, w, home.user.ID)
	assert.Equal(t, game.MovementReturn, back.Type)
	assert.Equal(t, game.Fleet{helpers.UnitFighter: 6}, back.Units)
	assert.Equal(t, int64(120), back.Solarion)
}

func TestMovement_RepelledAttackSendsNothingHome(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	target := newHome(t, w, "bo", 50)
	require.NoError(t, w.Store.Garrisons().Add(context.Background(), target.planet.ID, game.Fleet{helpers.UnitGuardian: 10}))

	// attack 20 against defense 200
	m, err := w.AddMovement(home.user, home.planet, target.planet, game.MovementAttack,
		game.Fleet{helpers.UnitFighter: 2}, 0, 10*time.Minute, -time.Minute)
	require.NoError(t, err)

	completeMovement(t, engine, m)

	assert.Equal(t, int64(0), w.Count("movements"))
	defenders, err := w.Store.Garrisons().Get(context.Background(), target.planet.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Fleet{helpers.UnitGuardian: 9}, defenders)
}

func TestMovement_ReturnRestoresUnitsAndCargo(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	other := newHome(t, w, "bo", 50)

	m, err := w.AddMovement(home.user, other.planet, home.planet, game.MovementReturn,
		game.Fleet{helpers.UnitFighter: 6}, 120, 10*time.Minute, -time.Second)
	require.NoError(t, err)

	completeMovement(t, engine, m)

	garrison, err := w.Store.Garrisons().Get(context.Background(), home.planet.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Fleet{helpers.UnitFighter: 6}, garrison)

	planet, err := w.Store.Planets().FindByID(context.Background(), home.planet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1120), planet.Solarion)
}

func TestMovement_DoubleFinishCreatesOneReturnLeg(t *testing.T) {
	w, engine := newWorld(t)
	home := newHome(t, w, "ada", 0)
	dest := newHome(t, w, "bo", 40)

	m, err := w.AddMovement(home.user, home.planet, dest.planet, game.MovementTransport,
		game.Fleet{helpers.UnitFreighter: 1}, 100, 5*time.Minute, -time.Second)
	require.NoError(t, err)

	completeMovement(t, engine, m)
	again, err := engine.Complete(context.Background(), timer.RefOf(m), completion.SourceOnRead)
	require.NoError(t, err)

	assert.Equal(t, completion.OutcomeMissing, again)
	onlyMovement(t, w, home.user.ID)

	planet, err := w.Store.Planets().FindByID(context.Background(), dest.planet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), planet.Solarion)
}
