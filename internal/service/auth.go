// Package service holds the session, authentication and maintenance workflows
// behind the dashboard. Services depend on ports only.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/ports"
	"github.com/target/maintdesk/internal/session"
)

// AuthGatewayOptions groups dependencies for AuthGateway.
type AuthGatewayOptions struct {
	API    ports.IdentityAPI // Required: backend identity endpoints
	Store  *session.Store    // Required: session state to update
	Logger *slog.Logger      // Optional: structured logger
}

// AuthGateway performs login, registration, identity resolution and logout
// against the backend and records the outcome in the session store.
type AuthGateway struct {
	api    ports.IdentityAPI
	store  *session.Store
	logger *slog.Logger
}

// NewAuthGateway constructs a new AuthGateway.
func NewAuthGateway(opts AuthGatewayOptions) *AuthGateway {
	if opts.API == nil {
		panic("IdentityAPI is required")
	}
	if opts.Store == nil {
		panic("session store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGateway{
		api:    opts.API,
		store:  opts.Store,
		logger: logger.With("component", "auth_gateway"),
	}
}

// Store returns the session store this gateway updates.
func (g *AuthGateway) Store() *session.Store { return g.store }

// Login authenticates with the backend. On success the identity is resolved
// from the backend, never built from the submitted credentials.
// A rejected login leaves the store untouched and returns an error whose
// message is the backend's detail text.
func (g *AuthGateway) Login(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, apperrors.Validation("Email and password are required")
	}

	if err := g.api.Login(ctx, username, password); err != nil {
		if apperrors.IsNetwork(err) || apperrors.IsCanceled(err) || apperrors.IsTimeout(err) {
			return false, err
		}
		g.logger.InfoContext(ctx, "login rejected", "error", apperrors.Message(err))
		return false, authFailure(err, "Login failed")
	}

	id, err := g.api.CurrentUser(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "identity lookup failed after login", "error", err)
		g.store.Resolve(nil)
		return false, fmt.Errorf("verify login: %w", err)
	}

	g.store.Resolve(&id)
	g.logger.InfoContext(ctx, "login succeeded", "user_id", id.ID, "role", id.Role)
	return true, nil
}

// Register creates an account. It does not log in.
func (g *AuthGateway) Register(ctx context.Context, in ports.RegisterInput) (domainauth.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		return domainauth.Account{}, apperrors.ValidationField("email", "Email is required")
	}
	if in.Password == "" {
		return domainauth.Account{}, apperrors.ValidationField("password", "Password is required")
	}
	if in.Role != "" && !in.Role.Valid() {
		return domainauth.Account{}, apperrors.ValidationField("role", "Role must be ADMIN or USER")
	}

	acct, err := g.api.Register(ctx, in)
	if err != nil {
		if apperrors.IsNetwork(err) || apperrors.IsCanceled(err) || apperrors.IsTimeout(err) {
			return domainauth.Account{}, err
		}
		return domainauth.Account{}, registrationFailure(err)
	}
	g.logger.InfoContext(ctx, "account registered", "user_id", acct.ID)
	return acct, nil
}

// WhoAmI returns the identity bound to the current backend session.
// Without a valid session the error satisfies errors.IsUnauthenticated.
func (g *AuthGateway) WhoAmI(ctx context.Context) (domainauth.Identity, error) {
	id, err := g.api.CurrentUser(ctx)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return id, nil
}

// Resolve runs the initial identity check and settles the store.
// Every failure, including network errors, resolves to logged out.
func (g *AuthGateway) Resolve(ctx context.Context) domainauth.State {
	id, err := g.WhoAmI(ctx)
	if err != nil {
		g.logResolveFailure(ctx, err)
		g.store.Resolve(nil)
		return g.store.Snapshot()
	}
	g.store.Resolve(&id)
	return g.store.Snapshot()
}

// Apply settles the store from an identity lookup performed elsewhere.
func (g *AuthGateway) Apply(ctx context.Context, id *domainauth.Identity, err error) domainauth.State {
	if err != nil {
		g.logResolveFailure(ctx, err)
		g.store.Resolve(nil)
		return g.store.Snapshot()
	}
	g.store.Resolve(id)
	return g.store.Snapshot()
}

// Logout ends the backend session. It always leaves the store logged out;
// backend failures are logged and not returned.
func (g *AuthGateway) Logout(ctx context.Context) {
	if err := g.api.Logout(ctx); err != nil {
		g.logger.InfoContext(ctx, "backend logout failed", "error", err)
	}
	g.store.Resolve(nil)
}

func (g *AuthGateway) logResolveFailure(ctx context.Context, err error) {
	if apperrors.IsUnauthenticated(err) {
		g.logger.DebugContext(ctx, "no backend session")
		return
	}
	g.logger.WarnContext(ctx, "identity resolution failed", "error", err)
}

// authFailure re-labels a rejected login as an auth error, keeping the backend detail.
func authFailure(err error, fallback string) *apperrors.AppError {
	return relabel(err, apperrors.ErrCodeForbidden, fallback)
}

// registrationFailure re-labels a rejected registration as a validation error.
func registrationFailure(err error) *apperrors.AppError {
	return relabel(err, apperrors.ErrCodeValidation, "Registration failed")
}

// relabel keeps the message and status of an AppError. Any other error is
// internal: it stays the cause and the user sees fallback.
func relabel(err error, code apperrors.ErrorCode, fallback string) *apperrors.AppError {
	appErr := asAppError(err)
	if appErr == nil {
		return &apperrors.AppError{Code: code, Message: fallback, Cause: err}
	}
	out := &apperrors.AppError{Code: code, Message: appErr.Message, Status: appErr.Status}
	if out.Message == "" {
		out.Message = fallback
	}
	return out
}

func asAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
