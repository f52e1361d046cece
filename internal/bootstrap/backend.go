package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/target/maintdesk/config"
	"github.com/target/maintdesk/internal/adapters/backend"
	"github.com/target/maintdesk/internal/adapters/devbackend"
	"github.com/target/maintdesk/internal/observability/metrics"
	"github.com/target/maintdesk/internal/observability/statsd"
)

// BackendDeps groups dependencies for BuildBackend.
type BackendDeps struct {
	Backend    config.BackendConfig
	DevBackend config.DevBackendConfig
	Logger     *slog.Logger
	// Metrics, when set, times every backend round trip.
	Metrics statsd.Sink
}

// BackendRuntime is the backend the dashboard talks to.
type BackendRuntime struct {
	Factory *backend.Factory
	// Mode is the mode actually in use.
	Mode config.BackendMode
	// dev is the in-process backend server in mock mode.
	dev *http.Server
}

// Close stops the in-process backend, if any.
func (b *BackendRuntime) Close(ctx context.Context) error {
	if b == nil || b.dev == nil {
		return nil
	}
	return b.dev.Shutdown(ctx)
}

// BuildBackend returns a client factory for the configured backend.
// In mock mode the dev backend is served on a loopback listener and the
// factory points at it, so the same HTTP client code runs in both modes.
func BuildBackend(deps BackendDeps) (*BackendRuntime, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch deps.Backend.Mode {
	case config.BackendModeMock:
		return startDevBackend(deps, logger)
	case config.BackendModeHTTP, "":
		factory, err := backend.NewFactory(backend.Config{
			BaseURL:   deps.Backend.URL,
			Timeout:   deps.Backend.Timeout,
			Logger:    logger,
			Transport: metrics.Transport(nil, deps.Metrics),
		})
		if err != nil {
			return nil, fmt.Errorf("backend client: %w", err)
		}
		logger.Info("backend configured", "mode", config.BackendModeHTTP, "url", factory.BaseURL())
		return &BackendRuntime{Factory: factory, Mode: config.BackendModeHTTP}, nil
	default:
		return nil, fmt.Errorf("unsupported backend mode %q", deps.Backend.Mode)
	}
}

func startDevBackend(deps BackendDeps, logger *slog.Logger) (*BackendRuntime, error) {
	dev, err := devbackend.New(devbackend.Config{
		AdminEmail:    deps.DevBackend.AdminEmail,
		AdminPassword: deps.DevBackend.AdminPassword,
		UserEmail:     deps.DevBackend.UserEmail,
		UserPassword:  deps.DevBackend.UserPassword,
		Seed:          deps.DevBackend.Seed,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("dev backend: %w", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("dev backend listener: %w", err)
	}
	srv := &http.Server{
		Handler:           dev,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("dev backend stopped", "error", serveErr)
		}
	}()

	factory, err := backend.NewFactory(backend.Config{
		BaseURL:   "http://" + ln.Addr().String(),
		Timeout:   deps.Backend.Timeout,
		Logger:    logger,
		Transport: metrics.Transport(nil, deps.Metrics),
	})
	if err != nil {
		_ = srv.Close()
		return nil, fmt.Errorf("backend client: %w", err)
	}

	logger.Warn("using in-process dev backend; data is lost on restart",
		"mode", config.BackendModeMock,
		"addr", ln.Addr().String(),
		"admin_email", deps.DevBackend.AdminEmail,
		"user_email", deps.DevBackend.UserEmail,
	)
	return &BackendRuntime{Factory: factory, Mode: config.BackendModeMock, dev: srv}, nil
}
