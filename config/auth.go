package config

import (
	"fmt"
	"strings"
	"time"
)

// BackendMode selects where backend calls go.
type BackendMode string

const (
	// BackendModeHTTP calls the external REST backend at API_URL.
	BackendModeHTTP BackendMode = "http"
	// BackendModeMock serves the backend API in-process (for development only).
	BackendModeMock BackendMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for BackendMode.
func (m *BackendMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "http", "mock":
		*m = BackendMode(v)
		return nil
	default:
		return fmt.Errorf("invalid BackendMode: %q (valid options: http, mock)", v)
	}
}

// BackendConfig describes the maintenance REST backend.
type BackendConfig struct {
	Mode BackendMode `env:"BACKEND_MODE" envDefault:"http"`

	// URL is the backend base URL, e.g. "http://localhost:8000".
	URL string `env:"API_URL" envDefault:"http://localhost:8000"`

	// Timeout bounds every backend call.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.URL = strings.TrimRight(strings.TrimSpace(b.URL), "/")
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
}

// DevBackendConfig controls the seeded accounts of the in-process backend.
// Used when BACKEND_MODE=mock for development and testing.
type DevBackendConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL"    envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin"`
	UserEmail     string `env:"USER_EMAIL"     envDefault:"user@example.com"`
	UserPassword  string `env:"USER_PASSWORD"  envDefault:"user"`
	Seed          bool   `env:"SEED"           envDefault:"true"`
}

// AuthConfig names where the route guard sends visitors.
type AuthConfig struct {
	// LoginPath receives unauthenticated visitors of protected pages.
	LoginPath string `env:"LOGIN_PATH" envDefault:"/login"`

	// LandingPath receives authenticated visitors lacking the required role.
	LandingPath string `env:"LANDING_PATH" envDefault:"/dashboard"`
}

// Sanitize ensures both destinations are absolute local paths.
func (a *AuthConfig) Sanitize() {
	a.LoginPath = localPath(a.LoginPath, "/login")
	a.LandingPath = localPath(a.LandingPath, "/dashboard")
}

// localPath rejects anything that could redirect off-site.
func localPath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return fallback
	}
	return p
}
