package game_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

var units = map[int64]*game.Unit{
	1: {ID: 1, Name: "Fighter", Speed: 100, Attack: 10, Defense: 5, Capacity: 20},
	2: {ID: 2, Name: "Guardian", Speed: 50, Attack: 2, Defense: 20, Capacity: 0},
	3: {ID: 3, Name: "Freighter", Speed: 60, Attack: 0, Defense: 1, Capacity: 200},
}

func TestResolveBattle_AttackerWins(t *testing.T) {
	attackers := game.Fleet{1: 10} // attack 100
	defenders := game.Fleet{2: 2}  // defense 40

	result := game.ResolveBattle(attackers, defenders, units)

	assert.True(t, result.AttackerWon)
	// 10 * 40 / 100 = 4 fighters lost
	assert.Equal(t, game.Fleet{1: 6}, result.AttackerSurvivors)
	assert.Equal(t, game.Fleet{2: 2}, result.DefenderLosses)
}

func TestResolveBattle_TieGoesToDefender(t *testing.T) {
	attackers := game.Fleet{1: 4} // attack 40
	defenders := game.Fleet{2: 2} // defense 40

	result := game.ResolveBattle(attackers, defenders, units)

	assert.False(t, result.AttackerWon)
	assert.True(t, result.AttackerSurvivors.IsEmpty())
	assert.Equal(t, game.Fleet{2: 2}, result.DefenderLosses)
}

func TestResolveBattle_DefenderWinsWithPartialLosses(t *testing.T) {
	attackers := game.Fleet{1: 1}  // attack 10
	defenders := game.Fleet{2: 10} // defense 200

	result := game.ResolveBattle(attackers, defenders, units)

	assert.False(t, result.AttackerWon)
	// 10 * 10 / 200 = 0 guardians lost
	assert.Empty(t, result.DefenderLosses)
}

func TestResolveBattle_UndefendedPlanet(t *testing.T) {
	result := game.ResolveBattle(game.Fleet{1: 3}, game.Fleet{}, units)

	assert.True(t, result.AttackerWon)
	assert.Equal(t, game.Fleet{1: 3}, result.AttackerSurvivors)
}

func TestResolveBattle_UnarmedRaidOnUndefendedPlanetKeepsFleet(t *testing.T) {
	result := game.ResolveBattle(game.Fleet{3: 5}, game.Fleet{}, units)

	assert.True(t, result.AttackerWon)
	assert.Equal(t, game.Fleet{3: 5}, result.AttackerSurvivors)
	assert.Empty(t, result.DefenderLosses)
}

func TestFleet_Stats(t *testing.T) {
	f := game.Fleet{1: 3, 2: 2, 99: 5}

	assert.Equal(t, int64(34), f.AttackPower(units))
	assert.Equal(t, int64(55), f.DefensePower(units))
	assert.Equal(t, int64(60), f.CarryCapacity(units))
	assert.Equal(t, int64(50), f.SlowestSpeed(units))
	assert.Equal(t, []int64{1, 2, 99}, f.UnitIDs())
}

func TestTravelDuration(t *testing.T) {
	assert.Equal(t, 30*time.Minute, game.TravelDuration(50, 100, time.Minute))
	assert.Equal(t, time.Minute, game.TravelDuration(0, 100, time.Minute))
	assert.Equal(t, time.Minute, game.TravelDuration(10, 0, time.Minute))
}

func TestPlanet_SpendAndDeposit(t *testing.T) {
	p := &game.Planet{Solarion: 100, Capacity: 150}

	require.NoError(t, p.Spend(40))
	assert.Equal(t, int64(60), p.Solarion)

	err := p.Spend(100)
	var insufficient *shared.InsufficientResourcesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(100), insufficient.Required)

	stored := p.Deposit(200)
	assert.Equal(t, int64(90), stored)
	assert.Equal(t, int64(150), p.Solarion)

	assert.Equal(t, int64(150), p.Withdraw(500))
	assert.Equal(t, int64(0), p.Solarion)
}

func TestGrid_InstallAndIncrement(t *testing.T) {
	g := &game.Grid{ID: 1}
	assert.True(t, g.IsEmpty())

	g.Install(7)
	require.NotNil(t, g.BuildingID)
	assert.Equal(t, int64(7), *g.BuildingID)
	assert.Equal(t, 1, g.CurrentLevel())

	g.IncrementLevel()
	assert.Equal(t, 2, g.CurrentLevel())
}

func TestMovement_ReturnLegTakesTheOutboundTravelTime(t *testing.T) {
	created := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	m := &game.Movement{
		ID:            4,
		UserID:        1,
		StartPlanetID: 10,
		EndPlanetID:   20,
		Type:          game.MovementTransport,
		CreatedAt:     created,
		Timeable:      timer.NewTimeable(created.Add(30 * time.Minute)),
	}
	require.Equal(t, 30*time.Minute, m.TravelTime())

	arrival := created.Add(31 * time.Minute)
	back := m.ReturnLeg(game.Fleet{1: 2}, 50, arrival)

	assert.Equal(t, game.MovementReturn, back.Type)
	assert.Equal(t, int64(20), back.StartPlanetID)
	assert.Equal(t, int64(10), back.EndPlanetID)
	assert.Equal(t, int64(50), back.Solarion)
	assert.Equal(t, int64(1800), back.Remaining(arrival))
}

func TestParseMovementType_RejectsReturn(t *testing.T) {
	_, ok := game.ParseMovementType("return")
	assert.False(t, ok)

	mt, ok := game.ParseMovementType("attack")
	assert.True(t, ok)
	assert.Equal(t, game.MovementAttack, mt)
}

func TestNewGridLayout(t *testing.T) {
	grids := game.NewGridLayout(3)

	require.Len(t, grids, game.GridColumns*game.GridRows)
	assert.Equal(t, 0, grids[0].X)
	assert.Equal(t, 1, grids[game.GridColumns].Y)
	for _, g := range grids {
		assert.Equal(t, int64(3), g.PlanetID)
		assert.True(t, g.IsEmpty())
	}
}

func TestUser_HomePlanetID(t *testing.T) {
	capital, current := int64(1), int64(2)

	_, ok := (&game.User{}).HomePlanetID()
	assert.False(t, ok)

	id, ok := (&game.User{CapitalID: &capital}).HomePlanetID()
	assert.True(t, ok)
	assert.Equal(t, capital, id)

	id, _ = (&game.User{CapitalID: &capital, CurrentID: &current}).HomePlanetID()
	assert.Equal(t, current, id)
}
