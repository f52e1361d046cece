// Package devbackend provides an in-memory implementation of the maintenance
// backend's REST API for local development and tests.
package devbackend

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/domain/model"
)

// CookieName is the session cookie the backend sets on login.
const CookieName = "fastapiusersauth"

// Config controls the dev backend.
// AdminEmail and AdminPassword are required; the USER account is optional.
type Config struct {
	AdminEmail    string
	AdminPassword string
	UserEmail     string
	UserPassword  string
	// Seed adds a demo team, equipment and ticket owned by the USER account.
	Seed       bool
	SessionTTL time.Duration // default 1h when zero
	Logger     *slog.Logger
}

type account struct {
	id       string
	email    string
	role     domainauth.Role
	password [32]byte
}

type failure struct {
	status int
	body   string
}

// Server implements the backend API over in-memory state.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	accounts  map[string]*account // by lower-cased email
	sessions  map[string]session  // by token
	teams     []model.Team
	equipment []model.Equipment
	tickets   []model.Ticket
	requests  []string
	failures  map[string]failure // by "METHOD /path"
}

type session struct {
	accountID string
	expiresAt time.Time
}

// New builds a dev backend from cfg.
func New(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.AdminEmail) == "" {
		return nil, errors.New("dev backend: AdminEmail is required")
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("dev backend: AdminPassword is required")
	}
	if cfg.Seed && strings.TrimSpace(cfg.UserEmail) == "" {
		return nil, errors.New("dev backend: UserEmail is required to seed data")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:   logger.With("component", "dev_backend"),
		ttl:      ttl,
		now:      time.Now,
		accounts: make(map[string]*account),
		sessions: make(map[string]session),
		failures: make(map[string]failure),
	}
	admin := s.addAccount(cfg.AdminEmail, cfg.AdminPassword, domainauth.RoleAdmin)
	if strings.TrimSpace(cfg.UserEmail) != "" {
		user := s.addAccount(cfg.UserEmail, cfg.UserPassword, domainauth.RoleUser)
		if cfg.Seed {
			s.seed(admin, user)
		}
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/cookie/login", s.handleLogin)
	mux.HandleFunc("POST /auth/cookie/logout", s.handleLogout)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("GET /users/me", s.handleMe)

	mux.HandleFunc("GET /teams/", s.admin(s.handleListTeams))
	mux.HandleFunc("POST /teams/", s.admin(s.handleCreateTeam))

	mux.HandleFunc("GET /equipment/", s.admin(s.handleListEquipment))
	mux.HandleFunc("GET /equipment/my/list", s.authenticated(s.handleMyEquipment))
	mux.HandleFunc("POST /equipment/", s.admin(s.handleCreateEquipment))

	mux.HandleFunc("GET /tickets/", s.admin(s.handleListTickets))
	mux.HandleFunc("GET /tickets/my", s.authenticated(s.handleMyTickets))
	mux.HandleFunc("POST /tickets/", s.authenticated(s.handleCreateTicket))
	mux.HandleFunc("PUT /tickets/{id}", s.admin(s.handleUpdateTicket))
	s.mux = mux
}

// ServeHTTP records the request, applies injected failures and dispatches.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, key)
	f, failing := s.failures[key]
	s.mu.Unlock()

	if failing {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
		return
	}
	s.mux.ServeHTTP(w, r)
}

// Requests returns the "METHOD /path" of every request served so far.
func (s *Server) Requests() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.requests...)
}

// Fail makes method+path answer status with body until Recover is called.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Recover clears every injected failure.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failures)
}

// AccountID returns the id of the account registered under email.
func (s *Server) AccountID(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		return "", false
	}
	return a.id, true
}

func (s *Server) addAccount(email, password string, role domainauth.Role) *account {
	a := &account{
		id:       uuid.NewString(),
		email:    strings.TrimSpace(email),
		role:     role,
		password: sha256.Sum256([]byte(password)),
	}
	s.accounts[normalizeEmail(email)] = a
	return a
}

func (s *Server) accountByID(id string) *account {
	for _, a := range s.accounts {
		if a.id == id {
			return a
		}
	}
	return nil
}

func (a *account) checkPassword(password string) bool {
	sum := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(sum[:], a.password[:]) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Server) seed(admin, user *account) {
	now := model.NewTimestamp(s.now())
	desc := "Plant floor mechanics"
	team := model.Team{ID: uuid.NewString(), Name: "Mechanics", Description: &desc, CreatedAt: now}
	s.teams = append(s.teams, team)

	company := "Acme Manufacturing"
	location := "Line 1"
	press := model.Equipment{
		ID:                  uuid.NewString(),
		Name:                "Hydraulic Press",
		Category:            "Presses",
		Company:             &company,
		UsedByType:          model.UsedByEmployee,
		UsedByUserID:        user.id,
		UsedInLocation:      &location,
		MaintenanceTeamID:   team.ID,
		DefaultTechnicianID: admin.id,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	scrapped := press
	scrapped.ID = uuid.NewString()
	scrapped.Name = "Old Drill"
	scrapped.Category = "Drills"
	scrapped.IsScrapped = true
	s.equipment = append(s.equipment, press, scrapped)

	assigned := admin.id
	s.tickets = append(s.tickets, model.Ticket{
		ID:                uuid.NewString(),
		Subject:           "Oil leak under press",
		EquipmentID:       press.ID,
		MaintenanceTeamID: team.ID,
		AssignedUserID:    &assigned,
		RequestType:       model.RequestCorrective,
		Status:            model.StatusNew,
		Company:           &company,
		CreatedBy:         user.id,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
}

type handlerWithAccount func(w http.ResponseWriter, r *http.Request, a *account)

// authenticated resolves the session cookie, answering 401 without one.
func (s *Server) authenticated(next handlerWithAccount) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := s.currentAccount(r)
		if a == nil {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, a)
	}
}

// admin additionally requires the ADMIN role, answering 403 otherwise.
func (s *Server) admin(next handlerWithAccount) http.HandlerFunc {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, a *account) {
		if a.role != domainauth.RoleAdmin {
			writeDetail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r, a)
	})
}

func (s *Server) currentAccount(r *http.Request) *account {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[c.Value]
	if !ok {
		return nil
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, c.Value)
		return nil
	}
	return s.accountByID(sess.accountID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeValidation answers 422 in the backend's list-of-errors shape.
func writeValidation(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{
			"loc":  []string{"body", field},
			"msg":  msg,
			"type": "value_error",
		}},
	})
}
