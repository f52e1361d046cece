package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/observability/metrics"
	"github.com/target/maintdesk/internal/service"
	"github.com/target/maintdesk/internal/session"
)

// SessionGateConfig configures browser session handling for the router.
type SessionGateConfig struct {
	Sessions     *service.SessionService
	Destinations domainauth.Destinations
	CookieDomain string
	// Insecure allows the session cookie over plain HTTP (development only).
	Insecure bool
	Logger   *slog.Logger
	// Metrics records guard and login outcomes (optional).
	Metrics *metrics.Gate
}

// SessionGate binds requests to browser sessions and guards pages by requirement.
type SessionGate struct {
	sessions *service.SessionService
	dest     domainauth.Destinations
	domain   string
	insecure bool
	logger   *slog.Logger
	metrics  *metrics.Gate
	now      func() time.Time
}

// NewSessionGate constructs a SessionGate.
func NewSessionGate(cfg SessionGateConfig) *SessionGate {
	if cfg.Sessions == nil {
		panic("SessionService is required")
	}
	dest := cfg.Destinations
	def := domainauth.DefaultDestinations()
	if dest.Login == "" {
		dest.Login = def.Login
	}
	if dest.Landing == "" {
		dest.Landing = def.Landing
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionGate{
		sessions: cfg.Sessions,
		dest:     dest,
		domain:   cfg.CookieDomain,
		insecure: cfg.Insecure,
		logger:   logger.With("component", "session_gate"),
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// Destinations returns the login and landing paths used for redirects.
func (g *SessionGate) Destinations() domainauth.Destinations { return g.dest }

// WithSession opens the browser session named by the session cookie and stores
// it in the request context. A missing or unknown cookie starts a new session.
func (g *SessionGate) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookieName); err == nil {
			id = c.Value
		}
		rs, err := g.sessions.Open(r.Context(), id)
		if err != nil {
			g.logger.ErrorContext(r.Context(), "open session failed", "error", err)
			WriteError(w, ErrorParams{
				Code:    http.StatusServiceUnavailable,
				ErrCode: "session_unavailable",
				Err:     errors.New("session storage is unavailable"),
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(SetRequestSession(r.Context(), rs)))
	})
}

// Require guards next with req. It subscribes a route guard to the request's
// store, resolves the identity and waits for a settled decision. Pending never
// redirects; a settled redirect is answered per client kind.
func (g *SessionGate) Require(req domainauth.Requirement, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs, ok := RequestSessionFrom(r.Context())
		if !ok {
			WriteError(w, ErrorParams{
				Code:    http.StatusInternalServerError,
				ErrCode: "session_missing",
				Err:     errors.New("request has no session"),
			})
			return
		}

		guard, err := session.NewGuard(session.GuardOptions{
			Store:        rs.Store,
			Requirement:  req,
			Destinations: g.dest,
		})
		if err != nil {
			g.logger.ErrorContext(r.Context(), "route guard failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		defer guard.Close()

		if guard.Decision().Kind == domainauth.DecisionPending {
			g.sessions.EnsureResolved(r.Context(), rs)
		}
		decision, err := guard.Wait(r.Context())
		if err != nil {
			// Client went away before the identity settled.
			g.logger.DebugContext(r.Context(), "route guard abandoned", "path", r.URL.Path, "error", err)
			return
		}

		g.metrics.GuardDecision(req, decision)
		g.Commit(w, r, rs)

		if decision.Kind == domainauth.DecisionRedirect {
			g.deny(w, r, decision.Target)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireFunc is Require for handler funcs.
func (g *SessionGate) RequireFunc(req domainauth.Requirement, fn http.HandlerFunc) http.Handler {
	return g.Require(req, fn)
}

// Commit persists the session and refreshes the browser cookie when a record
// was written. Failures are logged; the current response still proceeds.
func (g *SessionGate) Commit(w http.ResponseWriter, r *http.Request, rs *service.RequestSession) {
	saved, err := g.sessions.Persist(r.Context(), rs)
	if err != nil {
		g.logger.WarnContext(r.Context(), "persist session failed", "session_id", rs.ID(), "error", err)
		return
	}
	if saved {
		g.setCookie(w, r, rs)
	}
}

// End destroys the browser session record and expires its cookie.
func (g *SessionGate) End(w http.ResponseWriter, r *http.Request, rs *service.RequestSession) {
	if err := g.sessions.Destroy(r.Context(), rs); err != nil {
		g.logger.WarnContext(r.Context(), "destroy session failed", "session_id", rs.ID(), "error", err)
	}
	g.clearCookie(w, r)
}

// Rotate issues a new session ID, e.g. after the identity changed on login.
func (g *SessionGate) Rotate(r *http.Request, rs *service.RequestSession) error {
	return g.sessions.Rotate(r.Context(), rs)
}

func (g *SessionGate) deny(w http.ResponseWriter, r *http.Request, target string) {
	toLogin := target == g.dest.Login
	if toLogin {
		target = loginURL(g.dest.Login, r)
	}

	switch {
	case IsHTMX(r):
		HTMX(w).Redirect(target)
	case IsBrowserRequest(r):
		http.Redirect(w, r, target, http.StatusSeeOther)
	case toLogin:
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("sign in required"),
		})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "insufficient_permissions",
			Err:     errors.New("administrator role required"),
		})
	}
}

func (g *SessionGate) setCookie(w http.ResponseWriter, r *http.Request, rs *service.RequestSession) {
	maxAge := int(rs.Record.ExpiresAt.Sub(g.now()).Seconds())
	if maxAge <= 0 {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    rs.ID(),
		Path:     "/",
		Domain:   g.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecureRequest(r) || !g.insecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *SessionGate) clearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   g.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecureRequest(r) || !g.insecure,
		SameSite: http.SameSiteLaxMode,
	})
}
