package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/maintdesk/config"
)

// InitLogger initializes the structured logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateConfig rejects combinations that cannot start.
func ValidateConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.Backend.Mode == config.BackendModeMock && !cfg.IsDev {
		return errors.New("BACKEND_MODE=mock is only allowed with DEV=true")
	}
	if cfg.Backend.Mode == config.BackendModeHTTP && cfg.Backend.URL == "" {
		return errors.New("API_URL is required when BACKEND_MODE=http")
	}
	if cfg.Session.Store == config.SessionStoreMemory && !cfg.IsDev {
		slog.Default().Warn("in-memory sessions do not survive restarts or span instances",
			"store", cfg.Session.Store)
	}
	return nil
}

// NeedsRedis reports whether the configuration requires a Redis connection.
func NeedsRedis(cfg *config.AppConfig) bool {
	return cfg != nil && cfg.Session.Store != config.SessionStoreMemory
}
