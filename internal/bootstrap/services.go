package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/maintdesk/config"
	"github.com/target/maintdesk/internal/adapters/memory"
	redisadapter "github.com/target/maintdesk/internal/adapters/redis"
	"github.com/target/maintdesk/internal/observability/statsd"
	"github.com/target/maintdesk/internal/ports"
	"github.com/target/maintdesk/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions *service.SessionService
	Backend  *BackendRuntime
	// Metrics is nil when metrics are disabled.
	Metrics *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the session repository, the backend and the session service.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	repo, err := newSessionRepository(cfg.Session, deps.RedisClient, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	container := ServiceContainer{Metrics: buildMetrics(cfg.Metrics, logger)}

	backendRuntime, err := BuildBackend(BackendDeps{
		Backend:    cfg.Backend,
		DevBackend: cfg.DevBackend,
		Logger:     logger,
		Metrics:    container.sink(),
	})
	if err != nil {
		_ = container.Metrics.Close()
		return ServiceContainer{}, err
	}

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Repo:     repo,
		Backends: backendRuntime.Factory,
		Config: service.SessionConfig{
			TTL:         cfg.Session.TTL,
			IdentityTTL: cfg.Session.IdentityTTL,
			Logger:      logger,
		},
	})

	container.Sessions = sessions
	container.Backend = backendRuntime
	return container, nil
}

// newSessionRepository picks the browser session store.
//
//nolint:ireturn // the store kind is chosen at runtime.
func newSessionRepository(
	cfg config.SessionConfig,
	client redis.UniversalClient,
	logger *slog.Logger,
) (ports.SessionRepository, error) {
	if cfg.Store == config.SessionStoreMemory {
		logger.Info("browser sessions stored in memory")
		return memory.NewSessionRepository(nil), nil
	}
	if client == nil {
		return nil, errors.New("redis client is required for SESSION_STORE=redis")
	}
	logger.Info("browser sessions stored in redis", "prefix", cfg.KeyPrefix)
	return redisadapter.NewSessionRepository(redisadapter.SessionRepositoryOptions{
		Client: client,
		Prefix: cfg.KeyPrefix,
	}), nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// Signals overrides the OS signals that trigger shutdown (tests).
	Signals <-chan os.Signal
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// RunServicesWithShutdown starts the HTTP server and manages its lifecycle.
// It blocks until a shutdown signal is received or the server fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	if cfg.Services.Sessions == nil {
		return errors.New("service orchestration config missing session service")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
		ErrCh:    errCh,
	})

	quit := cfg.Signals
	if quit == nil {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		quit = sigCh
	}

	return waitForShutdown(shutdownConfig{
		ctx:        serviceCtx,
		cancel:     cancel,
		quit:       quit,
		errCh:      errCh,
		httpServer: server,
		backend:    cfg.Services.Backend,
		metrics:    cfg.Services.Metrics,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx        context.Context
	cancel     context.CancelFunc
	quit       <-chan os.Signal
	errCh      <-chan error
	httpServer *http.Server
	backend    *BackendRuntime
	metrics    *statsd.Client
	logger     *slog.Logger
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case <-cfg.quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops the HTTP server, then the in-process backend it may be using.
func gracefulStop(cfg shutdownConfig) error {
	// serviceCtx is already canceled here; shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cfg.ctx), shutdownWaitTimeout)
	defer cancel()

	var errs []error
	if err := ShutdownHTTPServer(ShutdownConfig{
		Context: shutdownCtx,
		Server:  cfg.httpServer,
		Logger:  cfg.logger,
	}); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	if err := cfg.backend.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("dev backend: %w", err))
	}
	if err := cfg.metrics.Close(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	return errors.Join(errs...)
}
