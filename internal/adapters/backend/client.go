// Package backend adapts the maintenance backend's REST API to the ports.
// Each Client holds one browser session's backend cookie jar.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config captures how to reach the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides the HTTP transport (tests, custom TLS).
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client talks to the backend on behalf of one browser session.
type Client struct {
	base   *url.URL
	jar    *cookiejar.Jar
	hc     *http.Client
	logger *slog.Logger
}

var _ ports.Backend = (*Client)(nil)

// NewClient builds a client with an empty cookie jar.
func NewClient(cfg Config) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return newClient(base, cfg)
}

func newClient(base *url.URL, cfg Config) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base: base,
		jar:  jar,
		hc: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: cfg.Transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger.With("component", "backend_client"),
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("backend base url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base url must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("backend base url has no host: %q", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Cookies exports the backend cookies currently held for the base URL.
func (c *Client) Cookies() []domainauth.Cookie {
	held := c.jar.Cookies(c.cookieURL())
	out := make([]domainauth.Cookie, 0, len(held))
	for _, ck := range held {
		out = append(out, domainauth.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

// SetCookies imports previously exported backend cookies.
func (c *Client) SetCookies(cookies []domainauth.Cookie) {
	if len(cookies) == 0 {
		return
	}
	hc := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		if ck.Name == "" {
			continue
		}
		hc = append(hc, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.jar.SetCookies(c.cookieURL(), hc)
}

// dropCookies expires every cookie held for the base URL.
func (c *Client) dropCookies() {
	held := c.jar.Cookies(c.cookieURL())
	if len(held) == 0 {
		return
	}
	expired := make([]*http.Cookie, 0, len(held))
	for _, ck := range held {
		expired = append(expired, &http.Cookie{Name: ck.Name, Path: "/", MaxAge: -1})
	}
	c.jar.SetCookies(c.cookieURL(), expired)
}

func (c *Client) cookieURL() *url.URL {
	u := *c.base
	u.Path = "/"
	return &u
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = c.base.Path + path
	return u.String()
}

// call is one backend request.
type call struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	// fallback is the error message used when the backend sends no detail.
	fallback string
}

func jsonCall(method, path string, payload any, fallback string) (call, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return call{}, fmt.Errorf("encode request: %w", err)
	}
	return call{
		method:      method,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
		fallback:    fallback,
	}, nil
}

// send performs the call and returns the response body of a 2xx reply.
// Non-2xx replies become classified AppErrors; transport failures become Network errors.
func (c *Client) send(ctx context.Context, in call) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, in.method, c.endpoint(in.path), in.body)
	if err != nil {
		return nil, fmt.Errorf("create backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in.contentType != "" {
		req.Header.Set("Content-Type", in.contentType)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, in, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Network(fmt.Errorf("read backend response: %w", err))
	}

	c.logger.DebugContext(ctx, "backend call",
		"method", in.method,
		"path", in.path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.FromStatus(resp.StatusCode, detailMessage(body, in.fallback))
	}
	return body, nil
}

func (c *Client) transportError(ctx context.Context, in call, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "Request was canceled.")
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "Request timed out. Please try again.")
	}
	c.logger.WarnContext(ctx, "backend unreachable", "method", in.method, "path", in.path, "error", err)
	return apperrors.Network(err)
}

func decodeJSON[T any](body []byte, what string) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, apperrors.Wrapf(err, apperrors.ErrCodeServer, "Malformed %s response from server", what)
	}
	return out, nil
}
