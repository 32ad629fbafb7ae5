package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/application/mediator"
	"github.com/andrescamacho/solarion-go/internal/application/setup"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/queue"
	"github.com/andrescamacho/solarion-go/test/helpers"
)

// completionContext holds the world and the results of the last action of a
// scenario
type completionContext struct {
	world    *helpers.World
	engine   *completion.Engine
	locker   *persistence.GormLocker
	mediator mediator.Mediator

	users   map[string]*game.User
	planets map[string]*game.Planet
	grids   map[string][]*game.Grid
	last    map[timer.Kind]timer.Entity

	report   *completion.SweepReport
	outcome  completion.Outcome
	finished int
	err      error
}

func (cc *completionContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	world, err := helpers.NewWorld(helpers.SharedTestDB)
	if err != nil {
		return err
	}

	cc.world = world
	cc.engine = completion.NewEngine(world.Store, world.Clock)
	cc.locker = persistence.NewGormLocker(world.DB, world.Clock)

	// Actions started through the mediator are dispatched on a sync queue,
	// which delivers immediately and therefore early
	jobs := completion.NewJobHandler(cc.engine)
	dispatcher := completion.NewDispatcher(queue.NewSyncQueue(jobs.Handle), cc.engine)
	cc.mediator, err = setup.NewHandlerRegistry(cc.engine, dispatcher, cc.locker, completion.DefaultSweepOptions()).
		CreateConfiguredMediator()
	if err != nil {
		return err
	}

	cc.users = make(map[string]*game.User)
	cc.planets = make(map[string]*game.Planet)
	cc.grids = make(map[string][]*game.Grid)
	cc.last = make(map[timer.Kind]timer.Entity)
	cc.report = nil
	cc.outcome = completion.OutcomeMissing
	cc.finished = 0
	cc.err = nil
	return nil
}

var (
	buildingIDs = map[string]int64{
		"central":  helpers.BuildingCentral,
		"miner":    helpers.BuildingMiner,
		"storage":  helpers.BuildingStorage,
		"barracks": helpers.BuildingBarracks,
		"lab":      helpers.BuildingLab,
	}
	unitIDs = map[string]int64{
		"fighter":   helpers.UnitFighter,
		"guardian":  helpers.UnitGuardian,
		"freighter": helpers.UnitFreighter,
	}
	researchIDs = map[string]int64{
		"propulsion": helpers.ResearchPropulsion,
		"weaponry":   helpers.ResearchWeaponry,
	}
)

func lookup(table map[string]int64, name string) (int64, error) {
	if id, ok := table[name]; ok {
		return id, nil
	}
	id, ok := table[strings.TrimSuffix(name, "s")]
	if !ok {
		return 0, fmt.Errorf("unknown catalog entry %q", name)
	}
	return id, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (cc *completionContext) planet(name string) (*game.Planet, error) {
	p, ok := cc.planets[name]
	if !ok {
		return nil, fmt.Errorf("planet %q not created", name)
	}
	return cc.world.Store.Planets().FindByID(context.Background(), p.ID)
}

func (cc *completionContext) grid(planet string, n int) (*game.Grid, error) {
	grids, ok := cc.grids[planet]
	if !ok || n < 1 || n > len(grids) {
		return nil, fmt.Errorf("planet %q has no grid %d", planet, n)
	}
	return cc.world.Store.Grids().FindByID(context.Background(), grids[n-1].ID)
}

func (cc *completionContext) user(name string) (*game.User, error) {
	u, ok := cc.users[name]
	if !ok {
		return nil, fmt.Errorf("player %q not created", name)
	}
	return u, nil
}

// InitializeCompletionScenario registers the timed-event completion steps
func InitializeCompletionScenario(sc *godog.ScenarioContext) {
	cc := &completionContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return ctx, cc.reset()
	})

	// Given steps
	sc.Step(`^a player "([^"]*)" with a planet "([^"]*)" at \((-?\d+), (-?\d+)\) holding (\d+) solarion$`, cc.aPlayerWithAPlanet)
	sc.Step(`^an unowned planet "([^"]*)" at \((-?\d+), (-?\d+)\) holding (\d+) solarion$`, cc.anUnownedPlanet)
	sc.Step(`^planet "([^"]*)" has a storage capacity of (\d+)$`, cc.planetHasCapacity)
	sc.Step(`^planet "([^"]*)" is garrisoned by (\d+) (\w+)$`, cc.planetIsGarrisonedBy)
	sc.Step(`^grid (\d+) of "([^"]*)" holds a (\w+) at level (\d+)$`, cc.gridHoldsBuilding)
	sc.Step(`^a (\w+) construction on grid (\d+) of "([^"]*)" ending in (-?\d+) seconds$`, cc.aConstruction)
	sc.Step(`^an upgrade on grid (\d+) of "([^"]*)" ending in (-?\d+) seconds$`, cc.anUpgrade)
	sc.Step(`^a training of (\d+) (\w+) on grid (\d+) of "([^"]*)" ending in (-?\d+) seconds$`, cc.aTraining)
	sc.Step(`^"([^"]*)" already knows (\w+) at level (\d+)$`, cc.alreadyKnows)
	sc.Step(`^"([^"]*)" researches (\w+) to level (\d+) ending in (-?\d+) seconds$`, cc.researches)
	sc.Step(`^an? (attack|support|transport|return) of (\d+) (\w+) carrying (\d+) solarion from "([^"]*)" to "([^"]*)" travelling (\d+) seconds and arriving in (-?\d+) seconds$`, cc.aMovement)
	sc.Step(`^the construction has a malformed end time$`, cc.malformedConstructionEnd)
	sc.Step(`^the sweep lock is held by another run$`, cc.sweepLockHeld)
	sc.Step(`^the clock advances (\d+) seconds$`, cc.clockAdvances)

	// When steps
	sc.Step(`^the sweeper runs$`, cc.theSweeperRuns)
	sc.Step(`^the sweeper runs for (\w+) only$`, cc.theSweeperRunsFor)
	sc.Step(`^the deferred completion for the (\w+) is delivered$`, cc.deferredCompletionDelivered)
	sc.Step(`^"([^"]*)" views their planet$`, cc.viewsTheirPlanet)
	sc.Step(`^"([^"]*)" starts building a (\w+) on grid (\d+)$`, cc.startsBuilding)

	// Then steps
	sc.Step(`^the sweep processed (\d+) and errored (\d+)$`, cc.theSweepProcessed)
	sc.Step(`^the sweep was skipped because the lock is held$`, cc.theSweepWasSkipped)
	sc.Step(`^the pending (\w+) count is (\d+)$`, cc.thePendingCountIs)
	sc.Step(`^grid (\d+) of "([^"]*)" now holds a (\w+) at level (\d+)$`, cc.gridNowHolds)
	sc.Step(`^grid (\d+) of "([^"]*)" is empty$`, cc.gridIsEmpty)
	sc.Step(`^planet "([^"]*)" now has (\d+) (\w+)$`, cc.planetNowHasUnits)
	sc.Step(`^planet "([^"]*)" holds (\d+) solarion$`, cc.planetHoldsSolarion)
	sc.Step(`^"([^"]*)" knows (\w+) at level (\d+)$`, cc.knowsResearch)
	sc.Step(`^a return of (\d+) (\w+) carrying (\d+) solarion is heading from "([^"]*)" to "([^"]*)" arriving in (\d+) seconds$`, cc.aReturnIsHeading)
	sc.Step(`^no fleet of "([^"]*)" is in flight$`, cc.noFleetInFlight)
	sc.Step(`^the completion outcome is "([^"]*)"$`, cc.theCompletionOutcomeIs)
	sc.Step(`^the planet view reports (\d+) finished actions?$`, cc.thePlanetViewReports)
	sc.Step(`^the action is rejected as "([^"]*)"$`, cc.theActionIsRejected)
	sc.Step(`^an update was published for planet "([^"]*)"$`, cc.anUpdateWasPublished)
}
