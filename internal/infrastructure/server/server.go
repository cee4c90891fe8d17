package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/foldergraph/internal/api/http"
	"github.com/GriffinCanCode/foldergraph/internal/api/middleware"
	"github.com/GriffinCanCode/foldergraph/internal/api/ws"
	"github.com/GriffinCanCode/foldergraph/internal/domain/world"
	"github.com/GriffinCanCode/foldergraph/internal/infrastructure/config"
	"github.com/GriffinCanCode/foldergraph/internal/infrastructure/logging"
	"github.com/GriffinCanCode/foldergraph/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/foldergraph/internal/providers/clipboard"
	"github.com/GriffinCanCode/foldergraph/internal/providers/filesystem"
	"github.com/GriffinCanCode/foldergraph/internal/service"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	registry *service.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer wires the services, channel registry and routes described by cfg
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing foldergraph server",
		zap.String("addr", cfg.Addr()),
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.String("trash_dir", cfg.Storage.TrashDir),
	)

	metrics := monitoring.NewMetrics()

	scanner := filesystem.NewScanner(logger.Component("scanner")).WithIgnore(cfg.Scan.Ignore...)
	trash := filesystem.NewTrash(cfg.Storage.TrashDir)
	files := filesystem.NewService(trash, logger.Component("files"))
	worlds := world.NewStore(cfg.WorldsDir(), logger.Component("worlds"))

	registry := service.NewRegistry(logger.Component("channels")).WithObserver(metrics.RecordChannelCall)
	err := service.RegisterChannels(registry, service.Services{
		Scanner:        scanner,
		Files:          files,
		Clipboard:      clipboard.NewProvider(logger.Component("clipboard")),
		Worlds:         worlds,
		Validator:      world.NewValidator(scanner, cfg.Refresh.Concurrency, logger.Component("refresh")),
		OnWorldsListed: metrics.SetWorldsSaved,
	})
	if err != nil {
		return nil, fmt.Errorf("register channels: %w", err)
	}
	logger.Info("Channels registered", zap.Int("count", len(registry.List())))

	if entries, err := worlds.List(context.Background()); err != nil {
		logger.Warn("Failed to read saved worlds", zap.Error(err))
	} else {
		metrics.SetWorldsSaved(len(entries))
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RequestLogger(logger.Component("http")))
	router.Use(middleware.Recovery(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFor(cfg.Server.AllowOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: float64(cfg.RateLimit.RequestsPerSecond),
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	if cfg.Server.Compress {
		router.Use(middleware.Compress(gzip.DefaultCompression, "/ws", "/metrics"))
	}

	handlers := apihttp.NewHandlers(registry, metrics, worlds.Dir(), trash.Dir())
	wsHandler := ws.NewHandler(registry, metrics, logger.Component("ws"), cfg.Server.AllowOrigins)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/channels", handlers.ListChannels)
	router.POST("/ipc/:channel", handlers.Invoke)
	router.GET("/metrics", handlers.Metrics)
	router.GET("/ws", wsHandler.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		registry: registry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the channel registry
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.http.Shutdown(ctx)
}
