package setup

import (
	"reflect"

	adminCommands "github.com/andrescamacho/solarion-go/internal/application/admin/commands"
	adminQueries "github.com/andrescamacho/solarion-go/internal/application/admin/queries"
	"github.com/andrescamacho/solarion-go/internal/application/auth"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	fleetCommands "github.com/andrescamacho/solarion-go/internal/application/fleet/commands"
	fleetQueries "github.com/andrescamacho/solarion-go/internal/application/fleet/queries"
	"github.com/andrescamacho/solarion-go/internal/application/mediator"
	planetCommands "github.com/andrescamacho/solarion-go/internal/application/planet/commands"
	planetQueries "github.com/andrescamacho/solarion-go/internal/application/planet/queries"
	researchCommands "github.com/andrescamacho/solarion-go/internal/application/research/commands"
	researchQueries "github.com/andrescamacho/solarion-go/internal/application/research/queries"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	engine     *completion.Engine
	dispatcher *completion.Dispatcher
	locker     completion.Locker
	sweepOpts  completion.SweepOptions
}

// NewHandlerRegistry creates a new handler registry. dispatcher may be nil,
// in which case started actions rely on the sweeper and on-read finalization.
func NewHandlerRegistry(
	engine *completion.Engine,
	dispatcher *completion.Dispatcher,
	locker completion.Locker,
	sweepOpts completion.SweepOptions,
) *HandlerRegistry {
	return &HandlerRegistry{
		engine:     engine,
		dispatcher: dispatcher,
		locker:     locker,
		sweepOpts:  sweepOpts,
	}
}

type registration struct {
	request interface{}
	handler mediator.RequestHandler
}

func register(m mediator.Mediator, regs []registration) error {
	for _, reg := range regs {
		if err := m.Register(reflect.TypeOf(reg.request), reg.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterGameHandlers registers the player-facing commands and queries:
//   - StartConstruction/StartUpgrade/StartTraining, GetPlanet
//   - StartResearch, ListResearch
//   - DispatchFleet, ListMovements
func (r *HandlerRegistry) RegisterGameHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&planetQueries.GetPlanetQuery{}, planetQueries.NewGetPlanetHandler(r.engine)},
		{&planetCommands.StartConstructionCommand{}, planetCommands.NewStartConstructionHandler(r.engine, r.dispatcher)},
		{&planetCommands.StartUpgradeCommand{}, planetCommands.NewStartUpgradeHandler(r.engine, r.dispatcher)},
		{&planetCommands.StartTrainingCommand{}, planetCommands.NewStartTrainingHandler(r.engine, r.dispatcher)},
		{&researchCommands.StartResearchCommand{}, researchCommands.NewStartResearchHandler(r.engine, r.dispatcher)},
		{&researchQueries.ListResearchQuery{}, researchQueries.NewListResearchHandler(r.engine)},
		{&fleetCommands.DispatchFleetCommand{}, fleetCommands.NewDispatchFleetHandler(r.engine, r.dispatcher)},
		{&fleetQueries.ListMovementsQuery{}, fleetQueries.NewListMovementsHandler(r.engine)},
	})
}

// RegisterAdminHandlers registers the operator commands: sweep, prune and the
// pending summary
func (r *HandlerRegistry) RegisterAdminHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&adminCommands.RunSweepCommand{}, adminCommands.NewRunSweepHandler(r.engine, r.locker, r.sweepOpts)},
		{&adminCommands.PruneExpiredCommand{}, adminCommands.NewPruneExpiredHandler(r.engine)},
		{&adminQueries.ListPendingQuery{}, adminQueries.NewListPendingHandler(r.engine)},
	})
}

// CreateConfiguredMediator creates a mediator with every handler registered.
// Middlewares run in the order given, before the user resolution middleware.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	for _, mw := range middlewares {
		m.RegisterMiddleware(mw)
	}

	store := r.engine.Store()
	m.RegisterMiddleware(auth.UserMiddleware(func() game.UserRepository { return store.Users() }))

	if err := r.RegisterGameHandlers(m); err != nil {
		return nil, err
	}
	if r.locker != nil {
		if err := r.RegisterAdminHandlers(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}
