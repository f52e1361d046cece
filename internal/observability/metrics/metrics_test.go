package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/maintdesk/internal/domain/auth"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/observability/statsd"
)

func TestGate_NilIsNoop(t *testing.T) {
	var g *Gate
	assert.Nil(t, NewGate(nil))
	g.GuardDecision(domainauth.RequireAdmin, domainauth.Allow())
	g.Login(nil)
}

func TestGate_GuardDecision(t *testing.T) {
	rec := &statsd.Recorder{}
	g := NewGate(rec)

	g.GuardDecision(domainauth.RequireAuthenticated, domainauth.Allow())
	g.GuardDecision(domainauth.RequireAdmin, domainauth.Redirect("/login?next=%2Fteams"))

	got := rec.Named(MetricGuardDecision)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{"requirement": "authenticated", "decision": "allow"}, got[0].Tags)
	assert.Equal(t, map[string]string{
		"requirement": "authenticated_admin",
		"decision":    "redirect",
		"target":      "/login",
	}, got[1].Tags)
}

func TestGate_Login(t *testing.T) {
	rec := &statsd.Recorder{}
	g := NewGate(rec)

	g.Login(nil)
	g.Login(apperrors.FromStatus(http.StatusBadRequest, "LOGIN_BAD_CREDENTIALS"))
	g.Login(apperrors.Network(context.DeadlineExceeded))

	got := rec.Named(MetricLogin)
	require.Len(t, got, 3)
	assert.Equal(t, ResultSuccess, got[0].Tags["result"])
	assert.Equal(t, ResultRejected, got[1].Tags["result"])
	assert.Equal(t, "validation", got[1].Tags["error_class"])
	assert.Equal(t, ResultError, got[2].Tags["result"])
	assert.Equal(t, "timeout", got[2].Tags["error_class"])
}

func TestRouteTag(t *testing.T) {
	tests := map[string]string{
		"":                "/",
		"/":               "/",
		"/tickets/":       "/tickets",
		"/tickets/my":     "/tickets/my",
		"/tickets/42":     "/tickets/{id}",
		"/users/me":       "/users/me",
		"/equipment/e-7/": "/equipment/{id}",
		"/auth/jwt/login": "/auth/jwt/login",
	}
	for in, want := range tests {
		assert.Equal(t, want, RouteTag(in), in)
	}
}

func TestTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/me" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := &statsd.Recorder{}
	client := &http.Client{Transport: Transport(nil, rec)}

	for _, path := range []string{"/tickets/7", "/users/me"} {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
	}

	counts := rec.Named(MetricBackendRequests)
	require.Len(t, counts, 2)
	assert.Equal(t, map[string]string{"method": "GET", "route": "/tickets/{id}", "status": "2xx"}, counts[0].Tags)
	assert.Equal(t, "4xx", counts[1].Tags["status"])
	assert.Len(t, rec.Named(MetricBackendDuration), 2)
}

func TestTransport_TransportError(t *testing.T) {
	rec := &statsd.Recorder{}
	client := &http.Client{Transport: Transport(nil, rec)}

	_, err := client.Get("http://127.0.0.1:1/teams/")
	require.Error(t, err)

	counts := rec.Named(MetricBackendRequests)
	require.Len(t, counts, 1)
	assert.Equal(t, "error", counts[0].Tags["status"])
	assert.Equal(t, "network", counts[0].Tags["error_class"])
}

func TestTransport_NilSink(t *testing.T) {
	assert.Equal(t, http.DefaultTransport, Transport(nil, nil))
}
