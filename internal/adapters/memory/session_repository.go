// Package memory provides in-process adapters for single-instance deployments and tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/ports"
)

// SessionRepository keeps browser session records in a map.
// Expired records are dropped lazily on Get and on Save.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	now      func() time.Time
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates an empty repository. now may be nil.
func NewSessionRepository(now func() time.Time) *SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &SessionRepository{
		sessions: make(map[string]domainauth.Session),
		now:      now,
	}
}

func (m *SessionRepository) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	now := m.now()
	if sess.Expired(now) {
		return errors.New("session is expired")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(now)
	m.sessions[sess.ID] = copySession(sess)
	return nil
}

func (m *SessionRepository) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if sess.Expired(m.now()) {
		delete(m.sessions, id)
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return copySession(sess), nil
}

func (m *SessionRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many records are held, expired or not.
func (m *SessionRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionRepository) sweepLocked(now time.Time) {
	for id, sess := range m.sessions {
		if sess.Expired(now) {
			delete(m.sessions, id)
		}
	}
}

func copySession(s domainauth.Session) domainauth.Session {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	s.BackendCookies = append([]domainauth.Cookie(nil), s.BackendCookies...)
	return s
}
