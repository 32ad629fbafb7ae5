package httpapi

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/time/rate"

	adminCommands "github.com/andrescamacho/solarion-go/internal/application/admin/commands"
)

// CronConfig configures GET /cron/tick
type CronConfig struct {
	// Token is the shared secret; empty disables the endpoint
	Token string
	// Rate and Burst bound how often the trigger may run a sweep
	Rate  float64
	Burst int
}

// cronHandler lets hosts without shell cron drive the batch sweeper over HTTP
type cronHandler struct {
	api     *api
	token   []byte
	limiter *rate.Limiter
}

func newCronHandler(cfg CronConfig, a *api) *cronHandler {
	limit, burst := rate.Limit(cfg.Rate), cfg.Burst
	if cfg.Rate <= 0 {
		limit = rate.Limit(1)
	}
	if burst <= 0 {
		burst = 1
	}
	return &cronHandler{
		api:     a,
		token:   []byte(cfg.Token),
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (h *cronHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(h.token) == 0 {
		writeProblem(w, http.StatusServiceUnavailable, "cron trigger is not configured")
		return
	}
	given := []byte(r.URL.Query().Get("token"))
	if subtle.ConstantTimeCompare(given, h.token) != 1 {
		writeProblem(w, http.StatusForbidden, "invalid token")
		return
	}
	if !h.limiter.Allow() {
		writeProblem(w, http.StatusTooManyRequests, "sweep triggered too often")
		return
	}

	resp, err := h.api.mediator.Send(r.Context(), &adminCommands.RunSweepCommand{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	report := resp.(*adminCommands.RunSweepResponse).Report
	if !report.LockAcquired {
		// Another sweep holds the lock
		writeJSON(w, http.StatusTooManyRequests, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
