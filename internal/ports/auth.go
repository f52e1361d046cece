// Package ports defines interfaces (hexagonal ports) for auth and backend access.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionRepository implementations when no
// live record exists for an ID.
var ErrSessionNotFound = errors.New("session not found")

// RegisterInput carries the fields accepted by the backend's register endpoint.
type RegisterInput struct {
	Email    string
	Password string
	// Role is optional; empty lets the backend apply its default.
	Role domainauth.Role
}

// IdentityAPI is the backend's authentication surface.
type IdentityAPI interface {
	// Login exchanges credentials for a backend session cookie held by the implementation.
	Login(ctx context.Context, username, password string) error
	// Register creates an account without logging in.
	Register(ctx context.Context, in RegisterInput) (domainauth.Account, error)
	// CurrentUser returns the identity bound to the held session cookie.
	CurrentUser(ctx context.Context) (domainauth.Identity, error)
	// Logout invalidates the backend session.
	Logout(ctx context.Context) error
}

// SessionRepository persists browser session records between requests.
type SessionRepository interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}
