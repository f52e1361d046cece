package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// The string form matches what the backend reports on /users/me.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// ParseRole parses a role case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("invalid role: %q (valid options: ADMIN, USER)", s)
	}
}

// RoleOrUser parses s and falls back to RoleUser for anything unrecognized,
// so an unexpected backend value never grants admin visibility.
func RoleOrUser(s string) Role {
	r, err := ParseRole(s)
	if err != nil {
		return RoleUser
	}
	return r
}

// Identity is the authenticated principal as reported by the backend.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// SameIdentity reports whether a and b describe the same principal.
// Two nil identities are the same ("logged out" in both cases).
func SameIdentity(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Account is the public record returned when registering a new user.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        Role   `json:"role,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsVerified  bool   `json:"is_verified"`
	IsSuperuser bool   `json:"is_superuser"`
}

// State is the observable session state of one browser session.
// Identity == nil with Loading == false means "logged out";
// Loading == true means "not yet checked".
type State struct {
	Identity *Identity
	Loading  bool
}

// Authenticated reports whether identity resolution finished with a user.
func (s State) Authenticated() bool { return !s.Loading && s.Identity != nil }

// Cookie is a name/value pair of the opaque backend session credential.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the server-side record we persist for a browser session.
// ID is an opaque identifier carried in the browser's session cookie.
// Identity is only a cache of the last resolution; ResolvedAt bounds its use.
type Session struct {
	ID             string    `json:"id"`
	Identity       *Identity `json:"identity,omitempty"`
	BackendCookies []Cookie  `json:"backend_cookies,omitempty"`
	ResolvedAt     time.Time `json:"resolved_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt) }
