package httpx

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/target/maintdesk"
	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/observability/metrics"
	"github.com/target/maintdesk/internal/observability/statsd"
	"github.com/target/maintdesk/internal/service"
)

// Template and static paths relative to the project root, used in dev mode.
const (
	TemplatePathFromRoot = "web/templates"
	StaticPathFromRoot   = "web/static"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions     *service.SessionService
	Destinations domainauth.Destinations
	CookieDomain string
	IsDev        bool // Development mode: templates from disk, cookies allowed over HTTP
	// Templates overrides the template filesystem (optional, used by tests)
	Templates fs.FS
	Logger    *slog.Logger // Logger for template and HTTP errors (optional)
	// Metrics receives guard and login counters (optional).
	Metrics statsd.Sink
}

// NewRouter creates and configures a new HTTP router with session, CSRF and
// browser detection middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	gate := NewSessionGate(SessionGateConfig{
		Sessions:     services.Sessions,
		Destinations: services.Destinations,
		CookieDomain: services.CookieDomain,
		Insecure:     services.IsDev,
		Logger:       logger,
		Metrics:      metrics.NewGate(services.Metrics),
	})

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))

	uiHandlers := setupUIHandlers(services, gate, logger)
	if uiHandlers != nil {
		registerUIRoutes(mux, uiHandlers, gate)
	}

	var handler http.Handler = &notFoundHandler{mux: mux, uiHandlers: uiHandlers, logger: logger}
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain, Insecure: services.IsDev})(handler)
	handler = gate.WithSession(handler)
	return BrowserDetection()(handler)
}

// setupUIHandlers creates UI handlers with a template renderer.
// In dev mode templates are read from disk for hot reloading.
func setupUIHandlers(services RouterServices, gate *SessionGate, logger *slog.Logger) *UIHandlers {
	templateFS := services.Templates
	if templateFS == nil {
		templateFS = resolveTemplateFS(services.IsDev, logger)
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}

	return &UIHandlers{
		T:      tr,
		Gate:   gate,
		IsDev:  services.IsDev,
		Logger: logger,
	}
}

func resolveTemplateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		if _, err := os.Stat(TemplatePathFromRoot); err == nil {
			return os.DirFS(TemplatePathFromRoot)
		}
	}
	sub, err := fs.Sub(maintdesk.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Error("embedded templates unavailable", slog.Any("error", err))
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		if _, err := os.Stat(StaticPathFromRoot); err == nil {
			return noCache(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))))
		}
	}
	sub, err := fs.Sub(maintdesk.StaticFS, StaticPathFromRoot)
	if err != nil {
		logger.Error("embedded static assets unavailable", slog.Any("error", err))
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func noCache(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
	logger     *slog.Logger
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)

	if cw.status == http.StatusNotFound && h.uiHandlers != nil &&
		IsBrowserRequest(r) && !strings.HasPrefix(r.URL.Path, "/static/") {
		if strings.HasPrefix(cw.header.Get("Content-Type"), "text/html") && cw.buf.Len() > 0 {
			// Already a rendered page.
			cw.flushTo(w, h.logger)
			return
		}
		cw.copyHeaders(w, "Set-Cookie")
		h.uiHandlers.NotFound(w, r)
		return
	}

	cw.flushTo(w, h.logger)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) copyHeaders(w http.ResponseWriter, keys ...string) {
	for _, k := range keys {
		for _, v := range c.header.Values(k) {
			w.Header().Add(k, v)
		}
	}
}

func (c *captureWriter) flushTo(w http.ResponseWriter, logger *slog.Logger) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		logger.Debug("failed to write captured response", "error", err)
	}
}

// registerUIRoutes delegates to per-area route registration.
func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, gate *SessionGate) {
	registerAuthRoutes(mux, h, gate)
	registerDashboardRoutes(mux, h, gate)
	registerTeamRoutes(mux, h, gate)
	registerEquipmentRoutes(mux, h, gate)
	registerTicketRoutes(mux, h, gate)
}

func registerAuthRoutes(mux *http.ServeMux, h *UIHandlers, gate *SessionGate) {
	public := domainauth.RequireNone
	mux.Handle("GET /login", gate.RequireFunc(public, h.LoginPage))
	mux.Handle("POST /login", gate.RequireFunc(public, h.LoginSubmit))
	mux.Handle("GET /register", gate.RequireFunc(public, h.RegisterPage))
	mux.Handle("POST /register", gate.RequireFunc(public, h.RegisterSubmit))
	mux.Handle("POST /logout", gate.RequireFunc(public, h.Logout))
	mux.Handle("GET /auth/status", gate.RequireFunc(public, h.AuthStatus))
}

func registerDashboardRoutes(mux *http.ServeMux, h *UIHandlers, gate *SessionGate) {
	landing := gate.Destinations().Landing
	mux.Handle("GET /{$}", http.RedirectHandler(landing, http.StatusSeeOther))
	mux.Handle("GET /dashboard", gate.RequireFunc(domainauth.RequireAuthenticated, h.Dashboard))
}

func registerTeamRoutes(mux *http.ServeMux, h *UIHandlers, gate *SessionGate) {
	mux.Handle("GET /teams", gate.RequireFunc(domainauth.RequireAdmin, h.Teams))
	mux.Handle("POST /teams", gate.RequireFunc(domainauth.RequireAdmin, h.TeamCreate))
}

func registerEquipmentRoutes(mux *http.ServeMux, h *UIHandlers, gate *SessionGate) {
	mux.Handle("GET /equipment", gate.RequireFunc(domainauth.RequireAuthenticated, h.Equipment))
	mux.Handle("GET /equipment/new", gate.RequireFunc(domainauth.RequireAdmin, h.EquipmentNew))
	mux.Handle("POST /equipment", gate.RequireFunc(domainauth.RequireAdmin, h.EquipmentCreate))
}

func registerTicketRoutes(mux *http.ServeMux, h *UIHandlers, gate *SessionGate) {
	mux.Handle("GET /tickets", gate.RequireFunc(domainauth.RequireAuthenticated, h.Tickets))
	mux.Handle("GET /tickets/new", gate.RequireFunc(domainauth.RequireAuthenticated, h.TicketNew))
	mux.Handle("POST /tickets", gate.RequireFunc(domainauth.RequireAuthenticated, h.TicketCreate))
	mux.Handle("GET /tickets/{id}", gate.RequireFunc(domainauth.RequireAuthenticated, h.Ticket))
	mux.Handle("POST /tickets/{id}", gate.RequireFunc(domainauth.RequireAdmin, h.TicketUpdate))
}
