package httpx

import (
	"context"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/service"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// SetRequestSession returns a child context that carries the request's browser session.
// If rs is nil, the original ctx is returned unchanged.
func SetRequestSession(ctx context.Context, rs *service.RequestSession) context.Context {
	if rs == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, rs)
}

// RequestSessionFrom returns the browser session attached by WithSession.
func RequestSessionFrom(ctx context.Context) (*service.RequestSession, bool) {
	rs, ok := ctx.Value(sessionKey{}).(*service.RequestSession)
	return rs, ok && rs != nil
}

// CurrentIdentity returns the resolved identity for the request, or nil when
// the visitor is logged out or resolution has not run.
func CurrentIdentity(ctx context.Context) *domainauth.Identity {
	rs, ok := RequestSessionFrom(ctx)
	if !ok {
		return nil
	}
	return rs.Store.Identity()
}
