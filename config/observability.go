package config

import "strings"

// MetricsConfig controls StatsD emission for the session gate.
type MetricsConfig struct {
	Enabled bool `env:"OBSERVABILITY_METRICS_ENABLED" envDefault:"false"`
	// StatsdAddress is the host:port of a StatsD/DogStatsD agent.
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"maintdesk"`
}

// Sanitize trims whitespace and fills the default prefix.
func (m *MetricsConfig) Sanitize() {
	m.StatsdAddress = strings.TrimSpace(m.StatsdAddress)
	m.Prefix = strings.Trim(strings.TrimSpace(m.Prefix), ".")
	if m.Prefix == "" {
		m.Prefix = "maintdesk"
	}
}

// IsEnabled reports whether metrics should be emitted.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled && m.StatsdAddress != ""
}
