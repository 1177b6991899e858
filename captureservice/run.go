// Package captureservice wires and runs the capture HTTP service: the
// REST API, the store with quota eviction, the offline heuristics, the
// optional AI gateway client, and the background inbox worker.
package captureservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mindstash/mindstash/internal/aiclient"
	"github.com/mindstash/mindstash/internal/api"
	"github.com/mindstash/mindstash/internal/capture"
	"github.com/mindstash/mindstash/internal/classify"
	"github.com/mindstash/mindstash/internal/config"
	"github.com/mindstash/mindstash/internal/events"
	"github.com/mindstash/mindstash/internal/extract"
	"github.com/mindstash/mindstash/internal/grouping"
	"github.com/mindstash/mindstash/internal/inbox"
	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/platform/logger"
	"github.com/mindstash/mindstash/internal/projects"
	"github.com/mindstash/mindstash/internal/store"
	"github.com/mindstash/mindstash/internal/store/postgres"
	"github.com/mindstash/mindstash/internal/store/sqlite"
)

// projectRepo narrows the store to what the project handlers need.
type projectRepo struct{ st store.Store }

func (p projectRepo) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return p.st.Projects().List(ctx)
}

func (p projectRepo) DeleteProject(ctx context.Context, id string) error {
	return p.st.Projects().Delete(ctx, id)
}

// Run starts the capture service and blocks until shutdown or error.
func Run() error {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	log := logger.New("mindstash-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("ai_endpoint", cfg.AIEndpoint).
		Bool("offline_only", cfg.OfflineOnly).
		Msg("Capture service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	router, worker := buildService(cfg, st, log)

	server := newHTTPServer(ctx, cfg.GetHTTPAddr(), router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// The worker reports ctx.Err() on shutdown; that is not a failure.
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Capture service failed")
		return err
	}
	log.Info().Msg("Server exited")
	return nil
}

// newStore opens the configured driver and wraps it with quota eviction.
func newStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		st, err = sqlite.New(cfg.SQLitePath)
	case "postgres":
		st, err = postgres.New(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}
	return store.WithEviction(st, log), nil
}

// buildService wires all domain services and returns the router plus the
// background inbox worker.
func buildService(cfg *config.Config, st store.Store, log zerolog.Logger) (http.Handler, *inbox.Worker) {
	offline := classify.NewOffline(cfg.UserProjects)
	bus := events.NewBus(16)

	// OfflineOnly disables the gateway entirely; the services then run
	// their heuristics without ever attempting a network call.
	var (
		onlineCls classify.Classifier
		extractGW extract.Gateway
		groupGW   grouping.Gateway
		projectGW projects.Gateway
	)
	if !cfg.OfflineOnly {
		ai := aiclient.New(cfg.AIEndpoint, cfg.AITimeout(), cfg.UserContext())
		onlineCls = classify.NewOnline(ai)
		extractGW, groupGW, projectGW = ai, ai, ai
	}

	captureSvc := capture.New(st, bus, onlineCls, offline, log)
	extractor := extract.New(extractGW, offline, cfg.MaxSegments, log)
	processor := inbox.NewProcessor(st, extractor, log)
	groupingSvc := grouping.New(st, groupGW, offline, cfg.GroupWindow(), cfg.GroupSimilarity, log)
	projectSvc := projects.New(st, projectGW, log)

	router := api.NewRouter(api.Deps{
		Capture:     captureSvc,
		Inbox:       processor,
		Grouping:    groupingSvc,
		Projects:    projectSvc,
		ProjectRepo: projectRepo{st},
		HealthPing:  st.HealthPing,
	})

	worker := inbox.NewWorker(processor, bus, cfg.ProcessInterval(), log)
	return router, worker
}

func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// newServerContext returns a cancellable context bound to SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
