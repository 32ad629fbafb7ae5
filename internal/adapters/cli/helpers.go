package cli

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/application/mediator"
	"github.com/andrescamacho/solarion-go/internal/application/setup"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/config"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/database"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/logging"
)

// runtime bundles what every database-backed command needs
type runtime struct {
	cfg    *config.Config
	logger common.Logger
	base   *logging.Logger
	db     *gorm.DB
	clock  shared.Clock
	store  *persistence.GormStore
	engine *completion.Engine
	locker *persistence.GormLocker
	logs   *persistence.GormEngineLogRepository
}

// loadConfig reads the configuration named by --config, honouring --verbose
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// openRuntime connects to the database and wires the engine. Committed game
// events go to the publisher built by newPublisher; nil drops them.
func openRuntime(newPublisher func(common.Logger) game.EventPublisher) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	base, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		base.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	clock := shared.NewRealClock()
	rt := &runtime{
		cfg:    cfg,
		base:   base,
		logger: base,
		db:     db,
		clock:  clock,
		locker: persistence.NewGormLocker(db, clock),
		logs:   persistence.NewGormEngineLogRepository(db, clock),
	}
	if cfg.Logging.Persist {
		rt.logger = logging.NewPersistentLogger(base, rt.logs)
	}

	var publisher game.EventPublisher = game.NopPublisher{}
	if newPublisher != nil {
		publisher = newPublisher(rt.logger)
	}
	rt.store = persistence.NewGormStore(db, publisher)
	rt.engine = completion.NewEngine(rt.store, clock)
	return rt, nil
}

// Close releases the database connection and the log file
func (rt *runtime) Close() {
	_ = database.Close(rt.db)
	_ = rt.base.Close()
}

// context carries the runtime logger
func (rt *runtime) context(parent context.Context) context.Context {
	return common.WithLogger(parent, rt.logger)
}

func (rt *runtime) sweepOptions() completion.SweepOptions {
	return completion.SweepOptions{
		LockKey:   rt.cfg.Completion.LockKey,
		LockTTL:   rt.cfg.Completion.LockTTL,
		BatchSize: rt.cfg.Completion.BatchSize,
	}
}

// mediator builds the fully registered mediator. dispatcher may be nil.
func (rt *runtime) mediator(dispatcher *completion.Dispatcher, middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	registry := setup.NewHandlerRegistry(rt.engine, dispatcher, rt.locker, rt.sweepOptions())
	return registry.CreateConfiguredMediator(middlewares...)
}

// parseKinds turns --kind values (repeatable or comma separated) into kinds
func parseKinds(values []string) ([]timer.Kind, error) {
	var kinds []timer.Kind
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			kind, err := timer.ParseKind(part)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

// maskPassword hides the password of a connection URL
func maskPassword(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 {
		return url
	}
	creds := url[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return url[:scheme+3] + creds[:colon] + ":****" + url[at:]
	}
	return url
}
