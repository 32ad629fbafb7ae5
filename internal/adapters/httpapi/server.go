package httpapi

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

// PlayerHeader carries the authenticated player id, set by the fronting gateway
const PlayerHeader = "X-Player-ID"

// Config for the HTTP API handler
type Config struct {
	Mediator common.Mediator
	Clock    shared.Clock
	Logger   common.Logger

	// Hub serves /api/ws when set
	Hub *Hub

	// Metrics is mounted at MetricsPath when set
	Metrics     http.Handler
	MetricsPath string

	Cron CronConfig
}

type api struct {
	mediator common.Mediator
	clock    shared.Clock
	logger   common.Logger
	validate *validator.Validate
}

// New returns an HTTP handler exposing the game API, the cron trigger, the
// notification stream and the metrics endpoint
func New(cfg Config) http.Handler {
	if cfg.Clock == nil {
		cfg.Clock = shared.NewRealClock()
	}
	a := &api{
		mediator: cfg.Mediator,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		validate: newValidator(),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(a.withLogger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/planet", a.getPlanet)
		r.Route("/grids/{gridID}", func(r chi.Router) {
			r.Post("/construction", a.startConstruction)
			r.Post("/upgrade", a.startUpgrade)
			r.Post("/training", a.startTraining)
		})
		r.Get("/research", a.listResearch)
		r.Post("/research", a.startResearch)
		r.Get("/movements", a.listMovements)
		r.Post("/movements", a.dispatchFleet)
		if cfg.Hub != nil {
			r.Get("/ws", cfg.Hub.ServeHTTP)
		}
	})

	router.Method(http.MethodGet, "/cron/tick", newCronHandler(cfg.Cron, a))

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Method(http.MethodGet, path, cfg.Metrics)
	}

	return router
}

// withLogger carries the API logger into handler contexts, tagged with the request id
func (a *api) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.logger == nil {
			next.ServeHTTP(w, r)
			return
		}
		logger := a.logger
		if id := middleware.GetReqID(r.Context()); id != "" {
			logger = common.WithFields(logger, map[string]interface{}{"request_id": id})
		}
		next.ServeHTTP(w, r.WithContext(common.WithLogger(r.Context(), logger)))
	})
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
