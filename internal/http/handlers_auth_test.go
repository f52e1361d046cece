package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/ports"
)

func TestAfterLogin(t *testing.T) {
	h := &UIHandlers{}
	tests := []struct {
		next string
		want string
	}{
		{next: "", want: "/dashboard"},
		{next: "/", want: "/dashboard"},
		{next: "/tickets?status=NEW", want: "/tickets?status=NEW"},
		{next: "/login?next=/tickets", want: "/dashboard"},
		{next: "https://evil.example.com/", want: "/dashboard"},
		{next: "//evil.example.com", want: "/dashboard"},
		{next: `/\evil.example.com`, want: "/dashboard"},
		{next: "tickets", want: "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, h.afterLogin(tt.next))
		})
	}
}

func registerRequest(form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseRegisterForm(t *testing.T) {
	t.Run("valid with role", func(t *testing.T) {
		in, errs := parseRegisterForm(registerRequest(url.Values{
			"email":            {" new@example.com "},
			"password":         {"secret"},
			"confirm_password": {"secret"},
			"role":             {"admin"},
		}))
		assert.Empty(t, errs)
		assert.Equal(t, ports.RegisterInput{Email: "new@example.com", Password: "secret", Role: domainauth.RoleAdmin}, in)
	})

	t.Run("role is optional", func(t *testing.T) {
		in, errs := parseRegisterForm(registerRequest(url.Values{
			"email":    {"new@example.com"},
			"password": {"secret"},
		}))
		assert.Empty(t, errs)
		assert.Equal(t, domainauth.Role(""), in.Role)
	})

	t.Run("field errors", func(t *testing.T) {
		_, errs := parseRegisterForm(registerRequest(url.Values{
			"email":            {"not-an-email"},
			"confirm_password": {"other"},
			"role":             {"OWNER"},
		}))
		assert.Equal(t, "Enter a valid email address.", errs["email"])
		assert.Equal(t, "Password is required.", errs["password"])
		assert.Equal(t, "Passwords do not match.", errs["confirm_password"])
		assert.Contains(t, errs["role"], "Role must be one of")
	})
}

func TestAuthStatus(t *testing.T) {
	h := &UIHandlers{}

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.AuthStatus(w, requestWithIdentity(t, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["authenticated"])
		assert.NotContains(t, body, "user")
	})

	t.Run("signed in", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.AuthStatus(w, requestWithIdentity(t, &domainauth.Identity{
			ID: "u-1", Email: "admin@example.com", Role: domainauth.RoleAdmin,
		}))

		var body struct {
			Authenticated bool           `json:"authenticated"`
			User          authStatusUser `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Authenticated)
		assert.Equal(t, authStatusUser{ID: "u-1", Email: "admin@example.com", Role: "ADMIN"}, body.User)
	})
}

func TestLoginPage_SignedInVisitorIsRedirected(t *testing.T) {
	h := &UIHandlers{}
	r := requestWithIdentity(t, &domainauth.Identity{ID: "u-2", Email: "user@example.com", Role: domainauth.RoleUser})
	r.URL, _ = url.Parse("/login?next=%2Ftickets")
	w := httptest.NewRecorder()

	h.LoginPage(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tickets", w.Header().Get("Location"))
}
