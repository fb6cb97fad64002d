// Package server wires the bridge together: configuration, logging,
// metrics, the scope policy, the filesystem provider, and the HTTP and
// WebSocket surfaces.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/glimmerdesk/fsbridge/internal/api/http"
	"github.com/glimmerdesk/fsbridge/internal/api/middleware"
	"github.com/glimmerdesk/fsbridge/internal/api/ws"
	"github.com/glimmerdesk/fsbridge/internal/basedir"
	"github.com/glimmerdesk/fsbridge/internal/fsprim"
	"github.com/glimmerdesk/fsbridge/internal/handle"
	"github.com/glimmerdesk/fsbridge/internal/infrastructure/config"
	"github.com/glimmerdesk/fsbridge/internal/infrastructure/logging"
	"github.com/glimmerdesk/fsbridge/internal/infrastructure/monitoring"
	"github.com/glimmerdesk/fsbridge/internal/providers/filesystem"
	"github.com/glimmerdesk/fsbridge/internal/resolve"
	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/service"
	"github.com/glimmerdesk/fsbridge/internal/watch"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	registry   *service.Registry
	fsProvider *filesystem.Provider
	handles    *handle.Registry
	watches    *watch.Manager
	hub        *ws.Hub
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// New builds the fully wired server from configuration.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("initializing fsbridge",
		zap.String("port", cfg.Server.Port),
		zap.String("app_id", cfg.App.Identifier),
	)

	metrics := monitoring.NewMetrics()

	baseDirs := &basedir.HostResolver{
		AppIdentifier: cfg.App.Identifier,
		ResourceDir:   cfg.App.ResourceDir,
	}
	resolver := resolve.New(baseDirs)

	scopeCfg, err := cfg.LoadScope()
	if err != nil {
		return nil, err
	}
	policy, err := scope.New(scopeCfg, baseDirs)
	if err != nil {
		return nil, fmt.Errorf("compile scope policy: %w", err)
	}
	logger.Info("scope policy loaded",
		zap.Int("allow_rules", len(scopeCfg.Allow)),
		zap.Int("deny_rules", len(scopeCfg.Deny)),
	)

	handles := handle.NewRegistry()
	watches := watch.NewManager(logger.Logger)
	hub := ws.NewHub(metrics, logger.Logger)

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	fsProvider := filesystem.NewProvider(resolver, policy, fsprim.NewOS(), handles, watches, hub, debounce, logger.Logger)

	registry := service.NewRegistry()
	if err := registry.Register(fsProvider); err != nil {
		return nil, fmt.Errorf("register filesystem provider: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(registry, handles, watches, metrics, logger.Logger)

	router.GET("/health", handlers.Health)
	router.GET("/services", handlers.ListServices)
	router.POST("/services/discover", handlers.DiscoverServices)
	router.POST("/services/execute", handlers.ExecuteService)
	router.GET("/stats", handlers.Stats)
	router.GET("/stream", hub.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		registry:   registry,
		fsProvider: fsProvider,
		handles:    handles,
		watches:    watches,
		hub:        hub,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}

	logger.Info("server initialized")
	return srv, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down: stop accepting requests, then release every
// watch session and open handle.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("shutting down")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("http shutdown failed", zap.Error(err))
	}

	s.fsProvider.Close()
	s.logger.Info("released handles and watch sessions")

	s.logger.Sync()
	return nil
}
