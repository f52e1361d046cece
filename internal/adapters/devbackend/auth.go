package devbackend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
)

const minPasswordLen = 3

type userRead struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Role        domainauth.Role `json:"role"`
	IsActive    bool            `json:"is_active"`
	IsVerified  bool            `json:"is_verified"`
	IsSuperuser bool            `json:"is_superuser"`
}

func readAccount(a *account) userRead {
	return userRead{ID: a.id, Email: a.email, Role: a.role, IsActive: true}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeValidation(w, "username", "invalid form body")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeValidation(w, "username", "Field required")
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[normalizeEmail(username)]
	if !ok || !a.checkPassword(password) {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "LOGIN_BAD_CREDENTIALS")
		return
	}
	token := uuid.NewString()
	s.sessions[token] = session{accountID: a.id, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("dev backend login", "email", a.email, "role", a.role)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(CookieName)
	if err != nil || s.currentAccount(r) == nil {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.mu.Lock()
	delete(s.sessions, c.Value)
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeValidation(w, "body", "invalid JSON body")
		return
	}
	email := strings.TrimSpace(in.Email)
	if !strings.Contains(email, "@") {
		writeValidation(w, "email", "value is not a valid email address")
		return
	}
	if len(in.Password) < minPasswordLen {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"detail": map[string]string{
				"code":   "REGISTER_INVALID_PASSWORD",
				"reason": "Password should be at least 3 characters",
			},
		})
		return
	}
	role := domainauth.RoleUser
	if in.Role != "" {
		parsed, err := domainauth.ParseRole(in.Role)
		if err != nil {
			writeValidation(w, "role", "Input should be 'ADMIN' or 'USER'")
			return
		}
		role = parsed
	}

	s.mu.Lock()
	if _, exists := s.accounts[normalizeEmail(email)]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "REGISTER_USER_ALREADY_EXISTS")
		return
	}
	a := s.addAccount(email, in.Password, role)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, readAccount(a))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	a := s.currentAccount(r)
	if a == nil {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, readAccount(a))
}
