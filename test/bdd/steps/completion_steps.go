package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/solarion-go/internal/application/completion"
	planetCommands "github.com/andrescamacho/solarion-go/internal/application/planet/commands"
	planetQueries "github.com/andrescamacho/solarion-go/internal/application/planet/queries"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// Given steps

func (cc *completionContext) aPlayerWithAPlanet(player, planet string, x, y, solarion int) error {
	user, err := cc.world.CreateUser(player)
	if err != nil {
		return err
	}
	p, grids, err := cc.world.CreatePlanet(user, planet, int64(x), int64(y), int64(solarion), 0, 5)
	if err != nil {
		return err
	}
	cc.users[player] = user
	cc.planets[planet] = p
	cc.grids[planet] = grids
	return nil
}

func (cc *completionContext) anUnownedPlanet(planet string, x, y, solarion int) error {
	p, grids, err := cc.world.CreatePlanet(nil, planet, int64(x), int64(y), int64(solarion), 0, 5)
	if err != nil {
		return err
	}
	cc.planets[planet] = p
	cc.grids[planet] = grids
	return nil
}

func (cc *completionContext) planetHasCapacity(planet string, capacity int) error {
	p, err := cc.planet(planet)
	if err != nil {
		return err
	}
	p.Capacity = int64(capacity)
	return cc.world.Store.Planets().Save(context.Background(), p)
}

func (cc *completionContext) planetIsGarrisonedBy(planet string, qty int, unit string) error {
	p, err := cc.planet(planet)
	if err != nil {
		return err
	}
	unitID, err := lookup(unitIDs, unit)
	if err != nil {
		return err
	}
	return cc.world.Store.Garrisons().Add(context.Background(), p.ID, game.Fleet{unitID: int64(qty)})
}

func (cc *completionContext) gridHoldsBuilding(n int, planet, building string, level int) error {
	g, err := cc.grid(planet, n)
	if err != nil {
		return err
	}
	id, err := lookup(buildingIDs, building)
	if err != nil {
		return err
	}
	return cc.world.InstallBuilding(g, id, level)
}

func (cc *completionContext) aConstruction(building string, n int, planet string, endsIn int) error {
	g, err := cc.grid(planet, n)
	if err != nil {
		return err
	}
	id, err := lookup(buildingIDs, building)
	if err != nil {
		return err
	}
	c, err := cc.world.AddConstruction(g, id, seconds(endsIn))
	if err != nil {
		return err
	}
	cc.last[timer.KindConstruction] = c
	return nil
}

func (cc *completionContext) anUpgrade(n int, planet string, endsIn int) error {
	g, err := cc.grid(planet, n)
	if err != nil {
		return err
	}
	u, err := cc.world.AddUpgrade(g, seconds(endsIn))
	if err != nil {
		return err
	}
	cc.last[timer.KindUpgrade] = u
	return nil
}

func (cc *completionContext) aTraining(qty int, unit string, n int, planet string, endsIn int) error {
	g, err := cc.grid(planet, n)
	if err != nil {
		return err
	}
	unitID, err := lookup(unitIDs, unit)
	if err != nil {
		return err
	}
	t, err := cc.world.AddTraining(g, unitID, int64(qty), seconds(endsIn))
	if err != nil {
		return err
	}
	cc.last[timer.KindTraining] = t
	return nil
}

func (cc *completionContext) alreadyKnows(player, research string, level int) error {
	user, err := cc.user(player)
	if err != nil {
		return err
	}
	id, err := lookup(researchIDs, research)
	if err != nil {
		return err
	}
	return cc.world.Store.UserResearch().SetLevel(context.Background(), user.ID, id, level)
}

func (cc *completionContext) researches(player, research string, level, endsIn int) error {
	user, err := cc.user(player)
	if err != nil {
		return err
	}
	id, err := lookup(researchIDs, research)
	if err != nil {
		return err
	}
	r, err := cc.world.AddResearch(user, id, level, seconds(endsIn))
	if err != nil {
		return err
	}
	cc.last[timer.KindResearch] = r
	return nil
}

func (cc *completionContext) aMovement(kind string, qty int, unit string, solarion int, from, to string, travel, endsIn int) error {
	source, err := cc.planet(from)
	if err != nil {
		return err
	}
	dest, err := cc.planet(to)
	if err != nil {
		return err
	}
	if source.UserID == nil {
		return fmt.Errorf("planet %q has no owner to send fleets", from)
	}
	unitID, err := lookup(unitIDs, unit)
	if err != nil {
		return err
	}

	owner := &game.User{ID: *source.UserID}
	m, err := cc.world.AddMovement(owner, source, dest, game.MovementType(kind),
		game.Fleet{unitID: int64(qty)}, int64(solarion), seconds(travel), seconds(endsIn))
	if err != nil {
		return err
	}
	cc.last[timer.KindMovement] = m
	return nil
}

func (cc *completionContext) malformedConstructionEnd() error {
	c, ok := cc.last[timer.KindConstruction]
	if !ok {
		return fmt.Errorf("no construction arranged")
	}
	return cc.world.SetRawEndedAt("constructions", c.PendingID(), "not-a-timestamp")
}

func (cc *completionContext) sweepLockHeld() error {
	opts := completion.DefaultSweepOptions()
	acquired, err := cc.locker.Acquire(context.Background(), opts.LockKey, "another-host", opts.LockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("expected to take the sweep lock")
	}
	return nil
}

func (cc *completionContext) clockAdvances(n int) error {
	cc.world.Clock.Advance(seconds(n))
	return nil
}

// When steps

func (cc *completionContext) theSweeperRuns() error {
	cc.report, cc.err = completion.NewSweeper(cc.engine, completion.DefaultSweepOptions()).
		Sweep(context.Background(), cc.locker)
	return nil
}

func (cc *completionContext) theSweeperRunsFor(kind string) error {
	k, err := timer.ParseKind(kind)
	if err != nil {
		return err
	}
	opts := completion.DefaultSweepOptions()
	opts.Kinds = []timer.Kind{k}
	cc.report, cc.err = completion.NewSweeper(cc.engine, opts).Sweep(context.Background(), cc.locker)
	return nil
}

func (cc *completionContext) deferredCompletionDelivered(kind string) error {
	k, err := timer.ParseKind(kind)
	if err != nil {
		return err
	}
	e, ok := cc.last[k]
	if !ok {
		return fmt.Errorf("no %s arranged", kind)
	}
	cc.outcome, cc.err = cc.engine.Complete(context.Background(), timer.RefOf(e), completion.SourceDispatch)
	return nil
}

func (cc *completionContext) viewsTheirPlanet(player string) error {
	user, err := cc.user(player)
	if err != nil {
		return err
	}
	pid, err := shared.NewPlayerID(user.ID)
	if err != nil {
		return err
	}
	resp, err := cc.mediator.Send(context.Background(), &planetQueries.GetPlanetQuery{PlayerID: pid})
	if err != nil {
		cc.err = err
		return nil
	}
	cc.finished = resp.(*planetQueries.GetPlanetResponse).Finished
	return nil
}

func (cc *completionContext) startsBuilding(player, building string, n int) error {
	user, err := cc.user(player)
	if err != nil {
		return err
	}
	pid, err := shared.NewPlayerID(user.ID)
	if err != nil {
		return err
	}
	if user.CapitalID == nil {
		return fmt.Errorf("player %q has no planet", player)
	}
	var planet string
	for name, p := range cc.planets {
		if p.ID == *user.CapitalID {
			planet = name
		}
	}
	g, err := cc.grid(planet, n)
	if err != nil {
		return err
	}
	id, err := lookup(buildingIDs, building)
	if err != nil {
		return err
	}

	resp, err := cc.mediator.Send(context.Background(), &planetCommands.StartConstructionCommand{
		PlayerID:   pid,
		GridID:     g.ID,
		BuildingID: id,
	})
	if err != nil {
		cc.err = err
		return nil
	}
	cc.last[timer.KindConstruction] = resp.(*planetCommands.StartConstructionResponse).Construction
	return nil
}

// Then steps

func (cc *completionContext) theSweepProcessed(processed, errored int) error {
	if cc.err != nil {
		return fmt.Errorf("sweep failed: %w", cc.err)
	}
	if cc.report == nil || !cc.report.LockAcquired {
		return fmt.Errorf("sweep did not run")
	}
	if cc.report.Processed != processed || cc.report.Errored != errored {
		return fmt.Errorf("expected %d processed and %d errored, got %d and %d",
			processed, errored, cc.report.Processed, cc.report.Errored)
	}
	return nil
}

func (cc *completionContext) theSweepWasSkipped() error {
	if cc.err != nil {
		return fmt.Errorf("sweep failed: %w", cc.err)
	}
	if cc.report == nil {
		return fmt.Errorf("no sweep report")
	}
	if cc.report.LockAcquired {
		return fmt.Errorf("expected the sweep to find the lock held")
	}
	if cc.report.Processed != 0 {
		return fmt.Errorf("skipped sweep processed %d records", cc.report.Processed)
	}
	return nil
}

func (cc *completionContext) thePendingCountIs(kind string, expected int) error {
	k, err := timer.ParseKind(kind)
	if err != nil {
		return err
	}
	counts, err := cc.engine.PendingCounts(context.Background())
	if err != nil {
		return err
	}
	if counts[k] != int64(expected) {
		return fmt.Errorf("expected %d pending %s, got %d", expected, kind, counts[k])
	}
	return nil
}

func (cc *completionContext) gridNowHolds(n int, planet, building string, level int) error {
	g, err := cc.grid(planet, n)
	if err != nil {
		return err
	}
	id, err := lookup(buildingIDs, building)
	if err != nil {
		return err
	}
	if g.BuildingID == nil || *g.BuildingID != id {
		return fmt.Errorf("expected grid %d of %q to hold a %s", n, planet, building)
	}
	if g.CurrentLevel() != level {
		return fmt.Errorf("expected level %d, got %d", level, g.CurrentLevel())
	}
	return nil
}

func (cc *completionContext) gridIsEmpty(n int, planet string) error {
	g, err := cc.grid(planet, n)
	if err != nil {
		return err
	}
	if !g.IsEmpty() {
		return fmt.Errorf("expected grid %d of %q to be empty, holds building %d", n, planet, *g.BuildingID)
	}
	return nil
}

func (cc *completionContext) planetNowHasUnits(planet string, qty int, unit string) error {
	p, err := cc.planet(planet)
	if err != nil {
		return err
	}
	unitID, err := lookup(unitIDs, unit)
	if err != nil {
		return err
	}
	garrison, err := cc.world.Store.Garrisons().Get(context.Background(), p.ID)
	if err != nil {
		return err
	}
	if garrison[unitID] != int64(qty) {
		return fmt.Errorf("expected %d %s on %q, got %d", qty, unit, planet, garrison[unitID])
	}
	return nil
}

func (cc *completionContext) planetHoldsSolarion(planet string, amount int) error {
	p, err := cc.planet(planet)
	if err != nil {
		return err
	}
	if p.Solarion != int64(amount) {
		return fmt.Errorf("expected %q to hold %d solarion, got %d", planet, amount, p.Solarion)
	}
	return nil
}

func (cc *completionContext) knowsResearch(player, research string, level int) error {
	user, err := cc.user(player)
	if err != nil {
		return err
	}
	id, err := lookup(researchIDs, research)
	if err != nil {
		return err
	}
	current, err := cc.world.Store.UserResearch().Level(context.Background(), user.ID, id)
	if err != nil {
		return err
	}
	if current != level {
		return fmt.Errorf("expected %s at level %d, got %d", research, level, current)
	}
	return nil
}

func (cc *completionContext) aReturnIsHeading(qty int, unit string, solarion int, from, to string, arrivesIn int) error {
	source, err := cc.planet(from)
	if err != nil {
		return err
	}
	dest, err := cc.planet(to)
	if err != nil {
		return err
	}
	if dest.UserID == nil {
		return fmt.Errorf("planet %q has no owner", to)
	}
	unitID, err := lookup(unitIDs, unit)
	if err != nil {
		return err
	}

	movements, err := cc.world.Store.Movements().FindInvolving(context.Background(), *dest.UserID, nil)
	if err != nil {
		return err
	}
	for _, m := range movements {
		if m.Type != game.MovementReturn || m.StartPlanetID != source.ID || m.EndPlanetID != dest.ID {
			continue
		}
		if m.Units[unitID] != int64(qty) || len(m.Units) != 1 {
			return fmt.Errorf("return carries %v, expected %d %s", m.Units, qty, unit)
		}
		if m.Solarion != int64(solarion) {
			return fmt.Errorf("return carries %d solarion, expected %d", m.Solarion, solarion)
		}
		expected := cc.world.Now().Add(seconds(arrivesIn))
		if !m.EndsAt().Equal(expected) {
			return fmt.Errorf("return arrives at %s, expected %s", m.EndsAt().Format(time.RFC3339), expected.Format(time.RFC3339))
		}
		return nil
	}
	return fmt.Errorf("no return from %q to %q in flight", from, to)
}

func (cc *completionContext) noFleetInFlight(player string) error {
	user, err := cc.user(player)
	if err != nil {
		return err
	}
	movements, err := cc.world.Store.Movements().FindInvolving(context.Background(), user.ID, nil)
	if err != nil {
		return err
	}
	if len(movements) != 0 {
		return fmt.Errorf("expected no fleet in flight, found %d", len(movements))
	}
	return nil
}

func (cc *completionContext) theCompletionOutcomeIs(expected string) error {
	if cc.err != nil {
		return fmt.Errorf("completion failed: %w", cc.err)
	}
	if cc.outcome.String() != expected {
		return fmt.Errorf("expected outcome %q, got %q", expected, cc.outcome)
	}
	return nil
}

func (cc *completionContext) thePlanetViewReports(n int) error {
	if cc.err != nil {
		return fmt.Errorf("planet view failed: %w", cc.err)
	}
	if cc.finished != n {
		return fmt.Errorf("expected %d finished actions, got %d", n, cc.finished)
	}
	return nil
}

func (cc *completionContext) theActionIsRejected(kind string) error {
	if cc.err == nil {
		return fmt.Errorf("expected the action to be rejected")
	}
	var matched bool
	switch kind {
	case "conflict":
		matched = shared.IsConflict(cc.err)
	case "validation":
		matched = shared.IsValidation(cc.err)
	case "not found":
		matched = shared.IsNotFound(cc.err)
	default:
		return fmt.Errorf("unknown rejection %q", kind)
	}
	if !matched {
		return fmt.Errorf("expected a %s rejection, got %v", kind, cc.err)
	}
	return nil
}

func (cc *completionContext) anUpdateWasPublished(planet string) error {
	p, ok := cc.planets[planet]
	if !ok {
		return fmt.Errorf("planet %q not created", planet)
	}
	want := game.PlanetUpdated(p.ID)
	for _, e := range cc.world.Events.Events() {
		if e == want {
			return nil
		}
	}
	return fmt.Errorf("no update published for planet %q", planet)
}
