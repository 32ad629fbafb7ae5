package fleet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/application/fleet/commands"
	"github.com/andrescamacho/solarion-go/internal/application/fleet/queries"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/test/helpers"
)

type galaxy struct {
	world  *helpers.World
	engine *completion.Engine
	ada    *game.User
	home   *game.Planet
	target *game.Planet
}

func newGalaxy(t *testing.T) *galaxy {
	t.Helper()
	w, err := helpers.NewWorld(helpers.NewTestDB(t))
	require.NoError(t, err)
	ada, err := w.CreateUser("ada")
	require.NoError(t, err)
	home, _, err := w.CreatePlanet(ada, "ada-prime", 0, 0, 1000, 5000, 0)
	require.NoError(t, err)
	target, _, err := w.CreatePlanet(nil, "outpost", 3, 4, 500, 5000, 0)
	require.NoError(t, err)
	require.NoError(t, w.Store.Garrisons().Add(context.Background(), home.ID, game.Fleet{
		helpers.UnitFighter:   10,
		helpers.UnitFreighter: 1,
	}))
	return &galaxy{world: w, engine: completion.NewEngine(w.Store, w.Clock), ada: ada, home: home, target: target}
}

func (g *galaxy) send(cmd *commands.DispatchFleetCommand) (*game.Movement, error) {
	cmd.PlayerID = shared.MustNewPlayerID(g.ada.ID)
	resp, err := commands.NewDispatchFleetHandler(g.engine, nil).Handle(context.Background(), cmd)
	if err != nil {
		return nil, err
	}
	return resp.(*commands.DispatchFleetResponse).Movement, nil
}

func TestDispatchFleet_LeavesGarrisonAndTravelsAtSlowestSpeed(t *testing.T) {
	// Arrange
	g := newGalaxy(t)

	// Act
	m, err := g.send(&commands.DispatchFleetCommand{
		ToPlanetID: g.target.ID,
		Type:       "transport",
		Units:      map[int64]int64{helpers.UnitFighter: 2, helpers.UnitFreighter: 1},
		Solarion:   240,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, g.home.ID, m.StartPlanetID)
	// distance 5 at the freighter's 80/h
	assert.Equal(t, g.world.Now().Add(3*time.Minute+45*time.Second), m.EndsAt())

	garrison, err := g.world.Store.Garrisons().Get(context.Background(), g.home.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Fleet{helpers.UnitFighter: 8}, garrison)

	home, err := g.world.Store.Planets().FindByID(context.Background(), g.home.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(760), home.Solarion)
}

func TestDispatchFleet_Validation(t *testing.T) {
	g := newGalaxy(t)

	tests := []struct {
		name  string
		cmd   *commands.DispatchFleetCommand
		check func(error) bool
	}{
		{"unknown type", &commands.DispatchFleetCommand{ToPlanetID: g.target.ID, Type: "raid", Units: map[int64]int64{helpers.UnitFighter: 1}}, shared.IsValidation},
		{"return is not dispatchable", &commands.DispatchFleetCommand{ToPlanetID: g.target.ID, Type: "return", Units: map[int64]int64{helpers.UnitFighter: 1}}, shared.IsValidation},
		{"no units", &commands.DispatchFleetCommand{ToPlanetID: g.target.ID, Type: "attack"}, shared.IsValidation},
		{"cargo on attack", &commands.DispatchFleetCommand{ToPlanetID: g.target.ID, Type: "attack", Units: map[int64]int64{helpers.UnitFighter: 1}, Solarion: 10}, shared.IsValidation},
		{"same planet", &commands.DispatchFleetCommand{ToPlanetID: g.home.ID, Type: "support", Units: map[int64]int64{helpers.UnitFighter: 1}}, shared.IsValidation},
		{"more than stationed", &commands.DispatchFleetCommand{ToPlanetID: g.target.ID, Type: "attack", Units: map[int64]int64{helpers.UnitFighter: 11}}, shared.IsConflict},
		{"cargo above capacity", &commands.DispatchFleetCommand{ToPlanetID: g.target.ID, Type: "transport", Units: map[int64]int64{helpers.UnitFighter: 1}, Solarion: 21}, shared.IsConflict},
		{"unknown target", &commands.DispatchFleetCommand{ToPlanetID: 9999, Type: "support", Units: map[int64]int64{helpers.UnitFighter: 1}}, shared.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.send(tt.cmd)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}

	// nothing left the garrison
	garrison, err := g.world.Store.Garrisons().Get(context.Background(), g.home.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), garrison.Total())
	assert.Equal(t, int64(0), g.world.Count("movements"))
}

func TestDispatchFleet_ShortHopUsesMinimumTravelTime(t *testing.T) {
	g := newGalaxy(t)
	near, _, err := g.world.CreatePlanet(nil, "moon", 0, 1, 0, 100, 0)
	require.NoError(t, err)

	m, err := g.send(&commands.DispatchFleetCommand{
		ToPlanetID: near.ID,
		Type:       "support",
		Units:      map[int64]int64{helpers.UnitFighter: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, g.world.Now().Add(commands.MinTravelTime), m.EndsAt())
}

func TestListMovements_ArrivedFleetTurnsIntoReturnLeg(t *testing.T) {
	g := newGalaxy(t)
	_, err := g.world.AddMovement(g.ada, g.home, g.target, game.MovementSupport, game.Fleet{helpers.UnitFighter: 1}, 0, 5*time.Minute, 10*time.Minute)
	require.NoError(t, err)
	_, err = g.world.AddMovement(g.ada, g.home, g.target, game.MovementTransport, game.Fleet{helpers.UnitFreighter: 1}, 0, 5*time.Minute, -time.Minute)
	require.NoError(t, err)
	handler := queries.NewListMovementsHandler(g.engine)

	resp, err := handler.Handle(context.Background(), &queries.ListMovementsQuery{PlayerID: shared.MustNewPlayerID(g.ada.ID)})

	require.NoError(t, err)
	movements := resp.(*queries.ListMovementsResponse).Movements
	require.Len(t, movements, 2)

	types := []string{movements[0].Type, movements[1].Type}
	assert.ElementsMatch(t, []string{"support", "return"}, types)
	for _, m := range movements {
		if m.Type == "return" {
			assert.Equal(t, g.home.ID, m.EndPlanetID)
			// departed a minute ago on a five minute trip
			assert.Equal(t, int64(240), m.Remaining)
		}
	}
}
