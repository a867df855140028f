package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stake-dao/votemarket-relay/metrics"
	"github.com/stake-dao/votemarket-relay/relayer-app/config"
	apisrv "github.com/stake-dao/votemarket-relay/server/api"
	apimw "github.com/stake-dao/votemarket-relay/server/api/middleware"
	"github.com/stake-dao/votemarket-relay/x/backfill"
	"github.com/stake-dao/votemarket-relay/x/votemarket/l1"
	"github.com/stake-dao/votemarket-relay/x/votemarket/oracle"
	"github.com/stake-dao/votemarket-relay/x/votemarket/proofs"
	proofshttp "github.com/stake-dao/votemarket-relay/x/votemarket/proofs/http"
	"github.com/stake-dao/votemarket-relay/x/votemarket/protocol"
	"github.com/stake-dao/votemarket-relay/x/votemarket/store"
)

// App wires the relayer together: the L1 read client, the proof
// service, the submission journal, the backfill runner and the HTTP API.
type App struct {
	cfg  *config.Config
	log  zerolog.Logger
	base zerolog.Logger

	registry *protocol.Registry
	l1Client *l1.Client
	journal  *store.Store
	proofSvc *proofs.Service
	verifier *oracle.Binding
	runner   *backfill.Runner

	apiServer *apisrv.Server
	startedAt time.Time
	cancel    context.CancelFunc
}

// NewApp creates a new application instance
func NewApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{
		cfg:       cfg,
		log:       log.With().Str("component", "app").Logger(),
		base:      log,
		startedAt: time.Now(),
	}

	if err := app.initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	return app, nil
}

// initialize sets up the application components
func (a *App) initialize(ctx context.Context) error {
	registry, err := protocol.Default()
	if err != nil {
		return fmt.Errorf("failed to load protocol registry: %w", err)
	}
	a.registry = registry

	journal, err := store.Open(a.cfg.Store.Path, a.base)
	if err != nil {
		return fmt.Errorf("failed to open submission store: %w", err)
	}
	a.journal = journal

	var dialOpts []l1.Option
	if a.cfg.Metrics.Enabled {
		dialOpts = append(dialOpts, l1.WithMetrics(l1.NewMetrics()))
	}
	client, err := l1.Dial(ctx, a.cfg.L1, a.base, dialOpts...)
	if err != nil {
		return fmt.Errorf("failed to dial L1 endpoint: %w", err)
	}
	a.l1Client = client

	var svcOpts []proofs.Option
	if a.cfg.Metrics.Enabled {
		svcOpts = append(svcOpts, proofs.WithMetrics(proofs.NewMetrics()))
	}
	a.proofSvc = proofs.NewService(a.registry, a.l1Client, a.base, svcOpts...)

	if addr := strings.TrimSpace(a.cfg.Oracle.VerifierAddress); addr != "" {
		verifier, err := oracle.NewBinding(addr)
		if err != nil {
			return fmt.Errorf("failed to bind verifier contract: %w", err)
		}
		a.verifier = verifier
		a.log.Info().Str("verifier", verifier.Address().Hex()).Msg("Verifier calldata encoding enabled")
	}

	var runnerOpts []backfill.Option
	if a.cfg.Metrics.Enabled {
		runnerOpts = append(runnerOpts, backfill.WithMetrics(backfill.NewMetrics()))
	}
	a.runner = backfill.NewRunner(
		a.cfg.Backfill, a.registry, a.proofSvc, a.journal, a.l1Client, a.base, runnerOpts...)

	return a.initializeAPIServer()
}

// initializeAPIServer sets up the HTTP API server with all endpoints
func (a *App) initializeAPIServer() error {
	apiCfg := apisrv.Config{
		ListenAddr:        a.cfg.API.ListenAddr,
		ReadHeaderTimeout: a.cfg.API.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.API.ReadTimeout,
		WriteTimeout:      a.cfg.API.WriteTimeout,
		IdleTimeout:       a.cfg.API.IdleTimeout,
		MaxHeaderBytes:    a.cfg.API.MaxHeaderBytes,
	}
	s := apisrv.NewServer(apiCfg, a.base)
	s.Use(apimw.Recover(a.base))
	s.Use(apimw.RequestID())
	s.Use(apimw.Logger(a.base))
	if a.cfg.API.EnableCORS {
		s.EnableCORS()
	}

	// Health/readiness/stats
	s.Router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	s.Router.HandleFunc("/ready", a.handleReady).Methods(http.MethodGet)
	s.Router.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)

	// Metrics
	if a.cfg.Metrics.Enabled {
		path := a.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		s.Router.Handle(path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	// Proofs API
	proofHandler := proofshttp.NewHandler(a.proofSvc, a.journal, a.verifier, a.base)
	proofHandler.RegisterMux(s.Router)

	a.apiServer = s
	return nil
}

// Run starts the application and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.runner.Start(runCtx); err != nil {
		return fmt.Errorf("failed to start backfill runner: %w", err)
	}

	go a.metricsReporter(runCtx)

	go func() {
		if err := a.apiServer.Start(runCtx); err != nil {
			a.log.Error().Err(err).Msg("API server error")
		}
	}()

	return a.runWithGracefulShutdown(runCtx)
}

// runWithGracefulShutdown handles shutdown signals.
func (a *App) runWithGracefulShutdown(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info().Msg("Votemarket relayer started successfully")

	select {
	case <-ctx.Done():
		a.log.Info().Msg("Context canceled, initiating shutdown")
	case sig := <-sigCh:
		a.log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	if a.cancel != nil {
		a.cancel()
	}

	return a.shutdown()
}

// shutdown stops the backfill runner, closes the L1 client and the
// journal. The API server drains itself when the run context dies.
func (a *App) shutdown() error {
	a.log.Info().Msg("Initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.runner.Stop(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("Backfill runner shutdown error")
	}

	a.l1Client.Close()

	if err := a.journal.Close(); err != nil {
		a.log.Error().Err(err).Msg("Submission store close error")
	}

	a.log.Info().Msg("Graceful shutdown complete")
	return nil
}

// handleHealth responds to health check requests.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// handleReady reports readiness: the L1 endpoint must answer.
func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK

	head, err := a.l1Client.Latest(ctx)
	if err != nil {
		status = "l1_unreachable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":"%s","head":%d}`, status, head)
}

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.GetStats())
}

// GetStats returns application statistics.
func (a *App) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"app_version":        Version,
		"app_build_time":     BuildTime,
		"app_git_commit":     GitCommit,
		"uptime_seconds":     time.Since(a.startedAt).Seconds(),
		"protocols":          a.registry.Names(),
		"backfill_enabled":   a.cfg.Backfill.Enabled,
		"backfill_campaigns": len(a.cfg.Backfill.Campaigns),
		"verifier_bound":     a.verifier != nil,
	}

	if journalStats, err := a.journal.Stats(); err == nil {
		stats["gauge_submissions"] = journalStats.GaugeSubmissions
		stats["user_submissions"] = journalStats.UserSubmissions
	}

	return stats
}

// metricsReporter periodically reports application statistics.
func (a *App) metricsReporter(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := a.GetStats()

			a.log.Info().
				Interface("journal", map[string]interface{}{
					"gauge_submissions": stats["gauge_submissions"],
					"user_submissions":  stats["user_submissions"],
				}).
				Float64("uptime_seconds", stats["uptime_seconds"].(float64)).
				Bool("backfill_enabled", a.cfg.Backfill.Enabled).
				Msg("Relayer statistics")
		}
	}
}
