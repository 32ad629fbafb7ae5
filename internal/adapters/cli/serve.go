package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	daemon "github.com/andrescamacho/solarion-go/internal/adapters/grpc"
	"github.com/andrescamacho/solarion-go/internal/adapters/httpapi"
	"github.com/andrescamacho/solarion-go/internal/adapters/metrics"
	adminCommands "github.com/andrescamacho/solarion-go/internal/application/admin/commands"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/application/mediator"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/queue"
)

// NewServeCommand creates the serve command: HTTP API plus in-process sweeper
func NewServeCommand() *cobra.Command {
	var (
		address string
		noSweep bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the in-process sweeper",
		Long: `Start the game HTTP API, the websocket notification stream, the cron
trigger endpoint and the metrics endpoint. Started actions are scheduled on
the configured queue and a sweep runs every completion.sweep_interval.

A pid file guards against a second instance and a gRPC health endpoint is
served on the daemon socket for "solarion health".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var hub *httpapi.Hub
			rt, err := openRuntime(func(logger common.Logger) game.EventPublisher {
				hub = httpapi.NewHub(logger)
				return hub
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			if address != "" {
				rt.cfg.HTTP.Address = address
			}
			return serve(rt, hub, !noSweep)
		},
	}

	cmd.Flags().StringVar(&address, "addr", "", "Override http.address")
	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "Do not run the periodic sweeper (rely on cron)")

	return cmd
}

func serve(rt *runtime, hub *httpapi.Hub, sweep bool) error {
	cfg := rt.cfg
	logger := rt.logger

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Log("WARNING", "Failed to release PID file", map[string]interface{}{"error": err.Error()})
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = rt.context(ctx)

	// Metrics
	var middlewares []mediator.Middleware
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		completionCollector := metrics.NewCompletionMetricsCollector(func(ctx context.Context) (map[string]int64, error) {
			counts, err := rt.engine.PendingCounts(ctx)
			if err != nil {
				return nil, err
			}
			out := make(map[string]int64, len(counts))
			for kind, n := range counts {
				out[string(kind)] = n
			}
			return out, nil
		})
		completionCollector.SetPollInterval(cfg.Metrics.PendingPollInterval)
		if err := completionCollector.Register(); err != nil {
			return fmt.Errorf("failed to register completion metrics: %w", err)
		}
		metrics.SetGlobalCompletionCollector(completionCollector)
		completionCollector.Start(ctx)
		defer completionCollector.Stop()

		commandCollector := metrics.NewCommandMetricsCollector()
		if err := commandCollector.Register(); err != nil {
			return fmt.Errorf("failed to register command metrics: %w", err)
		}
		middlewares = append(middlewares, metrics.PrometheusMiddleware(commandCollector))
		metricsHandler = promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
	}

	// Deferred dispatch
	jobs := completion.NewJobHandler(rt.engine)
	q, err := queue.New(ctx, cfg.Queue.Driver, jobs.Handle)
	if err != nil {
		return err
	}
	timerQueue, _ := q.(*queue.TimerQueue)
	if timerQueue != nil {
		defer timerQueue.Stop()
	}
	dispatcher := completion.NewDispatcher(q, rt.engine)

	m, err := rt.mediator(dispatcher, middlewares...)
	if err != nil {
		return err
	}

	// Health endpoint
	health, err := daemon.NewHealthServer(cfg.Daemon.SocketPath)
	if err != nil {
		return err
	}
	go func() {
		if err := health.Serve(); err != nil {
			logger.Log("ERROR", "Health server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
	defer health.Stop()

	// HTTP API
	server := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: httpapi.New(httpapi.Config{
			Mediator:    m,
			Clock:       rt.clock,
			Logger:      logger,
			Hub:         hub,
			Metrics:     metricsHandler,
			MetricsPath: cfg.Metrics.Path,
			Cron: httpapi.CronConfig{
				Token: cfg.HTTP.CronToken,
				Rate:  cfg.HTTP.CronRate,
				Burst: cfg.HTTP.CronBurst,
			},
		}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	if sweep {
		// Runs before the deferred rt.Close so a running sweep keeps its database
		stopSweeps := startSweeps(ctx, m, cfg.Completion.SweepInterval, logger)
		defer stopSweeps()
	}

	health.SetServing(daemon.CompletionService, true)
	logger.Log("INFO", "Solarion serving", map[string]interface{}{
		"address":        cfg.HTTP.Address,
		"queue_driver":   q.Driver(),
		"sweep_interval": cfg.Completion.SweepInterval.String(),
		"sweeper":        sweep,
		"metrics":        cfg.Metrics.Enabled,
	})

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownFields := map[string]interface{}{}
	if timerQueue != nil {
		// Dropped timers are picked up by the next sweep after restart
		shutdownFields["dropped_completions"] = timerQueue.Pending()
	}
	logger.Log("INFO", "Shutting down", shutdownFields)
	health.SetServing(daemon.CompletionService, false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer cancel()
	if hub != nil {
		hub.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// startSweeps runs the periodic sweeper in the background. The returned stop
// function ends the loop and waits for an in-flight sweep to finish.
func startSweeps(ctx context.Context, m mediator.Mediator, interval time.Duration, logger common.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runSweeps(ctx, m, interval, logger)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

// runSweeps runs one guarded sweep per interval until ctx is cancelled. A
// sweep that has started runs to the end of its pass even after cancellation.
func runSweeps(ctx context.Context, m mediator.Mediator, interval time.Duration, logger common.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resp, err := m.Send(context.WithoutCancel(ctx), &adminCommands.RunSweepCommand{})
			if err != nil {
				logger.Log("ERROR", "Periodic sweep failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			report := resp.(*adminCommands.RunSweepResponse).Report
			if !report.LockAcquired {
				logger.Log("DEBUG", "Sweep lock held elsewhere", nil)
				continue
			}
			logger.Log("INFO", "Periodic sweep finished", map[string]interface{}{
				"processed": report.Processed,
				"errored":   report.Errored,
				"skipped":   report.Skipped,
			})
		}
	}
}
