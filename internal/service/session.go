package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/ports"
	"github.com/target/maintdesk/internal/session"
	"golang.org/x/sync/singleflight"
)

const (
	defaultSessionTTL  = 24 * time.Hour
	defaultIdentityTTL = 30 * time.Second
)

// SessionConfig tunes browser session handling.
type SessionConfig struct {
	// TTL is the sliding lifetime of a browser session record.
	TTL time.Duration
	// IdentityTTL bounds how long a cached identity is trusted without asking the backend.
	// Zero uses the default; negative disables the cache.
	IdentityTTL time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Repo     ports.SessionRepository // Required: browser session persistence
	Backends ports.BackendFactory    // Required: per-session backend clients
	Config   SessionConfig           // Optional: TTLs, logger and clock
}

// SessionService opens, resolves and persists browser sessions.
// Each request gets a fresh session.Store: a request is a page load.
type SessionService struct {
	repo        ports.SessionRepository
	backends    ports.BackendFactory
	ttl         time.Duration
	identityTTL time.Duration
	logger      *slog.Logger
	now         func() time.Time
	group       singleflight.Group
}

// RequestSession is everything one request needs to act for its browser session.
type RequestSession struct {
	Record      domainauth.Session
	Backend     ports.Backend
	Store       *session.Store
	Auth        *AuthGateway
	Fetcher     *ScopedFetcher
	Maintenance *MaintenanceService

	isNew   bool
	rotated bool
	fresh   bool
}

// ID returns the browser session ID.
func (rs *RequestSession) ID() string { return rs.Record.ID }

// IsNew reports whether the record was created by this request.
func (rs *RequestSession) IsNew() bool { return rs.isNew }

// NeedsCookie reports whether the browser must be sent the session ID.
func (rs *RequestSession) NeedsCookie() bool { return rs.isNew || rs.rotated }

type resolution struct {
	identity domainauth.Identity
	err      error
}

// NewSessionService constructs a new SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	if opts.Repo == nil {
		panic("SessionRepository is required")
	}
	if opts.Backends == nil {
		panic("BackendFactory is required")
	}
	cfg := opts.Config
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	if cfg.IdentityTTL == 0 {
		cfg.IdentityTTL = defaultIdentityTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SessionService{
		repo:        opts.Repo,
		backends:    opts.Backends,
		ttl:         cfg.TTL,
		identityTTL: cfg.IdentityTTL,
		logger:      cfg.Logger.With("component", "session_service"),
		now:         cfg.Now,
	}
}

// Open loads the browser session id, or starts a new one when id is empty,
// unknown or expired. The returned store is unresolved.
func (s *SessionService) Open(ctx context.Context, id string) (*RequestSession, error) {
	var (
		rec   domainauth.Session
		isNew bool
	)
	if id != "" {
		got, err := s.repo.Get(ctx, id)
		switch {
		case err == nil && !got.Expired(s.now()):
			rec = got
		case err == nil || errors.Is(err, ports.ErrSessionNotFound):
			isNew = true
		default:
			return nil, fmt.Errorf("load session: %w", err)
		}
	} else {
		isNew = true
	}
	if isNew {
		rec = domainauth.Session{ID: uuid.NewString()}
	}

	be, err := s.backends.ForSession(rec.BackendCookies)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	store := session.NewStore()
	return &RequestSession{
		Record:      rec,
		Backend:     be,
		Store:       store,
		Auth:        NewAuthGateway(AuthGatewayOptions{API: be, Store: store, Logger: s.logger}),
		Fetcher:     NewScopedFetcher(ScopedFetcherOptions{API: be, Store: store, Logger: s.logger}),
		Maintenance: NewMaintenanceService(MaintenanceServiceOptions{API: be, Store: store, Logger: s.logger}),
		isNew:       isNew,
	}, nil
}

// EnsureResolved settles the request's store if it is still loading.
// A session without backend cookies is logged out without a backend call.
// A recently resolved identity is reused; otherwise the backend is asked, with
// concurrent lookups for the same browser session sharing one call.
func (s *SessionService) EnsureResolved(ctx context.Context, rs *RequestSession) domainauth.State {
	if rs.Store.Resolved() {
		return rs.Store.Snapshot()
	}
	if len(rs.Backend.Cookies()) == 0 {
		rs.Store.Resolve(nil)
		return rs.Store.Snapshot()
	}
	if id := s.cachedIdentity(rs.Record); id != nil {
		rs.Store.Resolve(id)
		return rs.Store.Snapshot()
	}

	v, _, shared := s.group.Do(rs.Record.ID, func() (any, error) {
		// Detached so one caller going away does not fail the others.
		id, err := rs.Backend.CurrentUser(context.WithoutCancel(ctx))
		return resolution{identity: id, err: err}, nil
	})
	res := v.(resolution)
	if shared {
		s.logger.DebugContext(ctx, "shared identity resolution", "session_id", rs.Record.ID)
	}
	rs.fresh = true
	if res.err != nil {
		return rs.Auth.Apply(ctx, nil, res.err)
	}
	return rs.Auth.Apply(ctx, &res.identity, nil)
}

func (s *SessionService) cachedIdentity(rec domainauth.Session) *domainauth.Identity {
	if s.identityTTL < 0 || rec.Identity == nil || rec.ResolvedAt.IsZero() {
		return nil
	}
	if s.now().Sub(rec.ResolvedAt) >= s.identityTTL {
		return nil
	}
	id := *rec.Identity
	return &id
}

// Persist saves the session's backend cookies and identity and extends its expiry.
// A new session with nothing to remember is not stored; the result reports
// whether a record was written.
func (s *SessionService) Persist(ctx context.Context, rs *RequestSession) (bool, error) {
	now := s.now()
	cookies := rs.Backend.Cookies()
	rec := rs.Record

	if rs.Store.Resolved() {
		id := rs.Store.Identity()
		if rs.fresh || !domainauth.SameIdentity(id, rec.Identity) {
			rec.ResolvedAt = now
		}
		rec.Identity = id
	}
	if rs.isNew && len(cookies) == 0 && rec.Identity == nil {
		return false, nil
	}
	rec.BackendCookies = cookies
	rec.ExpiresAt = now.Add(s.ttl)

	if err := s.repo.Save(ctx, rec); err != nil {
		return false, fmt.Errorf("save session: %w", err)
	}
	rs.Record = rec
	return true, nil
}

// Rotate gives the session a new ID, retiring the old record. Call it when
// the session's privilege changes, e.g. after login.
func (s *SessionService) Rotate(ctx context.Context, rs *RequestSession) error {
	old := rs.Record.ID
	rs.Record.ID = uuid.NewString()
	rs.rotated = true
	if rs.isNew {
		return nil
	}
	if err := s.repo.Delete(ctx, old); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("retire session: %w", err)
	}
	return nil
}

// Destroy deletes the browser session record.
func (s *SessionService) Destroy(ctx context.Context, rs *RequestSession) error {
	if rs.isNew {
		return nil
	}
	if err := s.repo.Delete(ctx, rs.Record.ID); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
