package devbackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/maintdesk/internal/domain/model"
)

func newSeeded(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{
		AdminEmail:    "admin@example.com",
		AdminPassword: "adminpw",
		UserEmail:     "user@example.com",
		UserPassword:  "userpw",
		Seed:          true,
	})
	require.NoError(t, err)
	return s
}

func login(t *testing.T, s *Server, email, password string) *http.Cookie {
	t.Helper()
	form := url.Values{"grant_type": {"password"}, "username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/cookie/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func do(s *Server, method, path string, cookie *http.Cookie, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{AdminPassword: "x"})
	assert.Error(t, err)
	_, err = New(Config{AdminEmail: "a@b.c"})
	assert.Error(t, err)
	_, err = New(Config{AdminEmail: "a@b.c", AdminPassword: "x", Seed: true})
	assert.Error(t, err)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newSeeded(t)
	form := url.Values{"username": {"admin@example.com"}, "password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/cookie/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"LOGIN_BAD_CREDENTIALS"}`, rec.Body.String())
}

func TestRoleEnforcement(t *testing.T) {
	s := newSeeded(t)
	user := login(t, s, "user@example.com", "userpw")
	admin := login(t, s, "admin@example.com", "adminpw")

	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/tickets/my", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, do(s, http.MethodGet, "/tickets/", user, "").Code)
	assert.Equal(t, http.StatusForbidden, do(s, http.MethodGet, "/teams/", user, "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/tickets/", admin, "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/tickets/my", user, "").Code)
}

func TestUsersMe(t *testing.T) {
	s := newSeeded(t)
	user := login(t, s, "USER@example.com", "userpw")

	rec := do(s, http.MethodGet, "/users/me", user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got userRead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "user@example.com", got.Email)
	assert.Equal(t, "USER", string(got.Role))

	id, ok := s.AccountID("user@example.com")
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	s := newSeeded(t)
	user := login(t, s, "user@example.com", "userpw")

	assert.Equal(t, http.StatusNoContent, do(s, http.MethodPost, "/auth/cookie/logout", user, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/users/me", user, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodPost, "/auth/cookie/logout", user, "").Code)
}

func TestCreateTicket_Ownership(t *testing.T) {
	s := newSeeded(t)
	admin := login(t, s, "admin@example.com", "adminpw")

	rec := do(s, http.MethodPost, "/auth/register", nil, `{"email":"other@example.com","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	other := login(t, s, "other@example.com", "pw1")

	var all []model.Equipment
	require.NoError(t, json.Unmarshal(do(s, http.MethodGet, "/equipment/", admin, "").Body.Bytes(), &all))
	require.NotEmpty(t, all)
	var press model.Equipment
	for _, e := range all {
		if !e.IsScrapped {
			press = e
		}
	}

	rec = do(s, http.MethodPost, "/tickets/", other, `{"subject":"x","equipment_id":"`+press.ID+`"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(s, http.MethodPost, "/tickets/", admin, `{"subject":"x","equipment_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTicket_ScrapMarksEquipment(t *testing.T) {
	s := newSeeded(t)
	admin := login(t, s, "admin@example.com", "adminpw")

	var tickets []model.Ticket
	require.NoError(t, json.Unmarshal(do(s, http.MethodGet, "/tickets/", admin, "").Body.Bytes(), &tickets))
	require.Len(t, tickets, 1)

	rec := do(s, http.MethodPut, "/tickets/"+tickets[0].ID, admin, `{"status":"SCRAP"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var all []model.Equipment
	require.NoError(t, json.Unmarshal(do(s, http.MethodGet, "/equipment/", admin, "").Body.Bytes(), &all))
	for _, e := range all {
		if e.ID == tickets[0].EquipmentID {
			assert.True(t, e.IsScrapped)
			assert.NotNil(t, e.ScrapDate)
		}
	}

	user := login(t, s, "user@example.com", "userpw")
	var mine []model.Equipment
	require.NoError(t, json.Unmarshal(do(s, http.MethodGet, "/equipment/my/list", user, "").Body.Bytes(), &mine))
	assert.Empty(t, mine)
}

func TestCreateTeam_DuplicateName(t *testing.T) {
	s := newSeeded(t)
	admin := login(t, s, "admin@example.com", "adminpw")

	rec := do(s, http.MethodPost, "/teams/", admin, `{"name":"mechanics"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Team name already exists"}`, rec.Body.String())

	rec = do(s, http.MethodPost, "/teams/", admin, `{"name":"Electricians"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestFailAndRequests(t *testing.T) {
	s := newSeeded(t)
	s.Fail(http.MethodGet, "/users/me", http.StatusServiceUnavailable, `{"detail":"maintenance window"}`)

	rec := do(s, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.Recover()
	rec = do(s, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, []string{"GET /users/me", "GET /users/me"}, s.Requests())
}
