package dev

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/pohlang/plhub/internal/build"
	"github.com/pohlang/plhub/internal/config"
	"github.com/pohlang/plhub/internal/reload"
	"github.com/pohlang/plhub/internal/watch"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives structured logs. Defaults to discarding.
	Logger *slog.Logger

	// Compiler overrides the default pohc-based compiler. Used in tests.
	Compiler build.Compiler

	// Registry collects metrics from all components. Defaults to a
	// private registry exposed on /metrics.
	Registry *prometheus.Registry
}

// Server is the development server: it watches sources, rebuilds them
// incrementally, and pushes reload instructions to connected runners.
type Server struct {
	config       *config.Config
	logger       *slog.Logger
	registry     *prometheus.Registry
	watcher      *watch.Watcher
	coalescer    *watch.Coalescer
	orchestrator *build.Orchestrator
	reloadServer *reload.Server
	httpServer   *http.Server
}

// NewServer wires a development server from project configuration.
func NewServer(options ServerOptions) (*Server, error) {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	registry := options.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	compiler := options.Compiler
	if compiler == nil {
		var err error
		compiler, err = build.NewPohCompiler(build.PohCompilerConfig{
			ProjectRoot: cfg.Dir(),
			Binary:      cfg.Build.Compiler,
		})
		if err != nil {
			return nil, err
		}
	}

	filter := watch.NewFilter(cfg.Watch.Include, cfg.Watch.Exclude)

	watcher := watch.New(watch.Config{
		Roots:        cfg.WatchRoots(),
		Include:      cfg.Watch.Include,
		Exclude:      cfg.Watch.Exclude,
		Poll:         cfg.Watch.Poll,
		PollInterval: cfg.PollInterval(),
		Logger:       logger,
	})

	orchestrator := build.New(build.Options{
		ProjectRoot: cfg.Dir(),
		CachePath:   cfg.CachePath(),
		Roots:       cfg.WatchRoots(),
		Filter:      filter,
		Compiler:    compiler,
		Logger:      logger,
		Registry:    registry,
	})

	reloadServer := reload.NewServer(reload.Config{
		HandshakeTimeout: cfg.HandshakeTimeout(),
		AckTimeout:       cfg.AckTimeout(),
		Logger:           logger,
		Registry:         registry,
	})

	s := &Server{
		config:       cfg,
		logger:       logger.With("component", "dev"),
		registry:     registry,
		watcher:      watcher,
		coalescer:    watch.NewCoalescer(cfg.Debounce()),
		orchestrator: orchestrator,
		reloadServer: reloadServer,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/ws", reloadServer.HandleWebSocket)
	router.Get("/healthz", s.handleHealth)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:    cfg.DevAddress(),
		Handler: router,
	}
	return s, nil
}

// Orchestrator exposes the build orchestrator, mainly for one-shot
// builds sharing the server's wiring.
func (s *Server) Orchestrator() *build.Orchestrator {
	return s.orchestrator
}

// ReloadServer exposes the hot-reload server.
func (s *Server) ReloadServer() *reload.Server {
	return s.reloadServer
}

// Addr returns the address the HTTP server binds to.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run starts all tasks and blocks until the context is canceled or a
// task fails. Shutdown is graceful: the watcher stops, an in-flight
// build runs to completion, and clients get a goodbye before the
// listener closes.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting dev server",
		"project", s.config.Name,
		"url", s.config.DevURL(),
		"polling", s.watcher.Polling())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.watcher.Run(ctx)
	})

	g.Go(func() error {
		s.coalescer.Run(ctx, s.watcher.Events())
		return nil
	})

	g.Go(func() error {
		// The initial build waits for the watcher: an edit landing
		// while the cache is brought up to date arrives as a change
		// set and feeds the first incremental cycle.
		select {
		case <-s.watcher.Ready():
			result, err := s.orchestrator.BuildAll(ctx, false)
			if err != nil {
				return err
			}
			s.logResult(result)
		case <-ctx.Done():
		}
		return s.orchestrator.Run(ctx, s.coalescer.Changes())
	})

	g.Go(func() error {
		for {
			select {
			case result, ok := <-s.orchestrator.Results():
				if !ok {
					return nil
				}
				s.logResult(result)
				s.reloadServer.Broadcast(result)
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		err := s.httpServer.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		s.shutdown()
		return nil
	})

	return g.Wait()
}

func (s *Server) shutdown() {
	s.logger.Info("shutting down")
	s.reloadServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.httpServer.Shutdown(ctx)
}

func (s *Server) logResult(result build.Result) {
	if result.Empty() {
		return
	}
	if result.OK() {
		s.logger.Info("build succeeded", "files", len(result.Succeeded))
		return
	}
	for _, failure := range result.Failed {
		s.logger.Error("compile failed", "path", failure.Path, "diagnostics", failure.Diagnostics)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"project":  s.config.Name,
		"sessions": s.reloadServer.SessionCount(),
		"polling":  s.watcher.Polling(),
	})
}
