package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/ports"
)

const (
	pathLogin    = "/auth/cookie/login"
	pathLogout   = "/auth/cookie/logout"
	pathRegister = "/auth/register"
	pathMe       = "/users/me"
)

// userRecord is the backend's public user schema.
type userRecord struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	IsVerified  bool   `json:"is_verified"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Login posts form-encoded password credentials. The backend answers 204 and
// sets its session cookie, which the jar keeps.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)

	_, err := c.send(ctx, call{
		method:      http.MethodPost,
		path:        pathLogin,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		fallback:    "Login failed",
	})
	return err
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (domainauth.Account, error) {
	payload := struct {
		Email    string          `json:"email"`
		Password string          `json:"password"`
		Role     domainauth.Role `json:"role,omitempty"`
	}{Email: in.Email, Password: in.Password, Role: in.Role}

	req, err := jsonCall(http.MethodPost, pathRegister, payload, "Registration failed")
	if err != nil {
		return domainauth.Account{}, err
	}
	body, err := c.send(ctx, req)
	if err != nil {
		return domainauth.Account{}, err
	}
	rec, err := decodeJSON[userRecord](body, "registration")
	if err != nil {
		return domainauth.Account{}, err
	}
	return domainauth.Account{
		ID:          rec.ID,
		Email:       rec.Email,
		Role:        domainauth.RoleOrUser(rec.Role),
		IsActive:    rec.IsActive,
		IsVerified:  rec.IsVerified,
		IsSuperuser: rec.IsSuperuser,
	}, nil
}

// CurrentUser returns the identity bound to the held session cookie.
// Without a valid cookie the backend answers 401, surfaced as an Unauthenticated error.
func (c *Client) CurrentUser(ctx context.Context) (domainauth.Identity, error) {
	body, err := c.send(ctx, call{method: http.MethodGet, path: pathMe, fallback: "Fetching user failed"})
	if err != nil {
		return domainauth.Identity{}, err
	}
	rec, err := decodeJSON[userRecord](body, "user")
	if err != nil {
		return domainauth.Identity{}, err
	}
	if rec.ID == "" {
		return domainauth.Identity{}, fmt.Errorf("user response has no id")
	}
	return domainauth.Identity{
		ID:    rec.ID,
		Email: rec.Email,
		Role:  domainauth.RoleOrUser(rec.Role),
	}, nil
}

// Logout invalidates the backend session. Local cookies are dropped even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.dropCookies()
	_, err := c.send(ctx, call{method: http.MethodPost, path: pathLogout, fallback: "Logout failed"})
	return err
}
