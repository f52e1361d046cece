package bootstrap

import (
	"log/slog"

	"github.com/target/maintdesk/config"
	"github.com/target/maintdesk/internal/observability/statsd"
)

// buildMetrics dials StatsD when enabled. Failures disable metrics instead of
// stopping startup.
func buildMetrics(cfg config.MetricsConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn("metrics disabled", "address", cfg.StatsdAddress, "error", err)
		return nil
	}
	logger.Info("metrics enabled", "address", cfg.StatsdAddress, "prefix", cfg.Prefix)
	return client
}

// sink converts a possibly nil client into a Sink without a typed nil.
func (s ServiceContainer) sink() statsd.Sink {
	if s.Metrics == nil {
		return nil
	}
	return s.Metrics
}
