package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
)

func newTestGuard(t *testing.T, s *Store, req domainauth.Requirement, onChange func(domainauth.Decision)) *Guard {
	t.Helper()
	g, err := NewGuard(GuardOptions{Store: s, Requirement: req, OnChange: onChange})
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func TestNewGuard_RequiresStore(t *testing.T) {
	_, err := NewGuard(GuardOptions{})
	require.ErrorIs(t, err, ErrStoreRequired)
}

func TestGuard_PendingWhileLoading(t *testing.T) {
	s := NewStore()
	g := newTestGuard(t, s, domainauth.RequireAdmin, nil)
	assert.Equal(t, domainauth.Pending(), g.Decision())

	s.SetIdentity(&domainauth.Identity{ID: "u1", Role: domainauth.RoleUser})
	assert.Equal(t, domainauth.Pending(), g.Decision())
}

func TestGuard_Transitions(t *testing.T) {
	tests := []struct {
		name     string
		req      domainauth.Requirement
		identity *domainauth.Identity
		want     domainauth.Decision
	}{
		{"logged out on protected page", domainauth.RequireAuthenticated, nil, domainauth.Redirect("/login")},
		{"user on admin page", domainauth.RequireAdmin, &domainauth.Identity{ID: "u", Role: domainauth.RoleUser}, domainauth.Redirect("/dashboard")},
		{"admin on admin page", domainauth.RequireAdmin, &domainauth.Identity{ID: "a", Role: domainauth.RoleAdmin}, domainauth.Allow()},
		{"logged out on public page", domainauth.RequireNone, nil, domainauth.Allow()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			var changes []domainauth.Decision
			g := newTestGuard(t, s, tt.req, func(d domainauth.Decision) { changes = append(changes, d) })

			s.Resolve(tt.identity)

			assert.Equal(t, tt.want, g.Decision())
			assert.Equal(t, []domainauth.Decision{tt.want}, changes)
		})
	}
}

func TestGuard_ReportsOnlyChanges(t *testing.T) {
	s := NewStore()
	var changes []domainauth.Decision
	newTestGuard(t, s, domainauth.RequireAuthenticated, func(d domainauth.Decision) { changes = append(changes, d) })

	user := &domainauth.Identity{ID: "u1", Role: domainauth.RoleUser}
	s.Resolve(user)
	s.SetIdentity(user)
	s.Resolve(nil)

	assert.Equal(t, []domainauth.Decision{domainauth.Allow(), domainauth.Redirect("/login")}, changes)
}

func TestGuard_EvaluatesResolvedStoreImmediately(t *testing.T) {
	s := NewStore()
	s.Resolve(nil)
	g := newTestGuard(t, s, domainauth.RequireAuthenticated, nil)
	assert.Equal(t, domainauth.Redirect("/login"), g.Decision())
}

func TestGuard_WaitUnblocksOnResolution(t *testing.T) {
	s := NewStore()
	g := newTestGuard(t, s, domainauth.RequireAuthenticated, nil)

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Resolve(&domainauth.Identity{ID: "u1", Role: domainauth.RoleUser})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d, err := g.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainauth.Allow(), d)
}

func TestGuard_WaitHonorsContext(t *testing.T) {
	g := newTestGuard(t, NewStore(), domainauth.RequireAuthenticated, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d, err := g.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domainauth.Pending(), d)
}

func TestGuard_CloseStopsObserving(t *testing.T) {
	s := NewStore()
	g := newTestGuard(t, s, domainauth.RequireAuthenticated, nil)
	g.Close()

	s.Resolve(nil)
	assert.Equal(t, domainauth.Pending(), g.Decision())
}

func TestGuard_CustomDestinations(t *testing.T) {
	s := NewStore()
	g, err := NewGuard(GuardOptions{
		Store:        s,
		Requirement:  domainauth.RequireAdmin,
		Destinations: domainauth.Destinations{Landing: "/tickets"},
	})
	require.NoError(t, err)
	defer g.Close()

	s.Resolve(&domainauth.Identity{ID: "u", Role: domainauth.RoleUser})
	assert.Equal(t, domainauth.Redirect("/tickets"), g.Decision())
}
