package backend

import (
	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/ports"
)

// Factory builds per-session clients sharing one configuration.
type Factory struct {
	cfg  Config
	base string
}

var _ ports.BackendFactory = (*Factory)(nil)

// NewFactory validates cfg once so ForSession cannot fail on configuration.
func NewFactory(cfg Config) (*Factory, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return &Factory{cfg: cfg, base: base.String()}, nil
}

// BaseURL returns the normalized backend URL.
func (f *Factory) BaseURL() string { return f.base }

// ForSession returns a client seeded with cookies.
func (f *Factory) ForSession(cookies []domainauth.Cookie) (ports.Backend, error) {
	c, err := NewClient(f.cfg)
	if err != nil {
		return nil, err
	}
	c.SetCookies(cookies)
	return c, nil
}
