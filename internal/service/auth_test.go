package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/maintdesk/internal/domain/auth"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/mocks"
	"github.com/target/maintdesk/internal/ports"
	"github.com/target/maintdesk/internal/session"
	"go.uber.org/mock/gomock"
)

var (
	adminIdentity = domainauth.Identity{ID: "u-admin", Email: "admin@example.com", Role: domainauth.RoleAdmin}
	userIdentity  = domainauth.Identity{ID: "u-user", Email: "user@example.com", Role: domainauth.RoleUser}
)

func newAuthGateway(t *testing.T) (*mocks.MockIdentityAPI, *session.Store, *AuthGateway) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	api := mocks.NewMockIdentityAPI(ctrl)
	store := session.NewStore()
	return api, store, NewAuthGateway(AuthGatewayOptions{API: api, Store: store})
}

func TestNewAuthGateway_PanicsWithoutDeps(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewAuthGateway(AuthGatewayOptions{Store: session.NewStore()}) })
	assert.Panics(t, func() {
		NewAuthGateway(AuthGatewayOptions{API: mocks.NewMockIdentityAPI(gomock.NewController(t))})
	})
}

func TestAuthGateway_Login_Success(t *testing.T) {
	t.Parallel()
	api, store, gw := newAuthGateway(t)
	ctx := context.Background()

	gomock.InOrder(
		api.EXPECT().Login(ctx, "admin@example.com", "secret").Return(nil),
		api.EXPECT().CurrentUser(ctx).Return(adminIdentity, nil),
	)

	ok, err := gw.Login(ctx, "  admin@example.com ", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	st := store.Snapshot()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Identity)
	assert.Equal(t, adminIdentity, *st.Identity)
}

func TestAuthGateway_Login_RejectedKeepsState(t *testing.T) {
	t.Parallel()
	api, store, gw := newAuthGateway(t)
	ctx := context.Background()
	store.Resolve(nil)

	api.EXPECT().Login(ctx, "user@example.com", "wrong").
		Return(apperrors.FromStatus(401, "Invalid credentials"))

	ok, err := gw.Login(ctx, "user@example.com", "wrong")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Invalid credentials", apperrors.Message(err))
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, domainauth.State{Identity: nil, Loading: false}, store.Snapshot())
}

func TestAuthGateway_Login_InternalErrorUsesFallback(t *testing.T) {
	t.Parallel()
	api, store, gw := newAuthGateway(t)
	ctx := context.Background()
	store.Resolve(nil)

	cause := errors.New("create backend request: net/url: invalid control character in URL")
	api.EXPECT().Login(ctx, "user@example.com", "pw").Return(cause)

	ok, err := gw.Login(ctx, "user@example.com", "pw")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Login failed", apperrors.Message(err))
	assert.ErrorIs(t, err, cause, "the raw error stays available to logs")
	assert.Equal(t, domainauth.State{Identity: nil, Loading: false}, store.Snapshot())
}

func TestAuthGateway_Login_RejectedBeforeResolution(t *testing.T) {
	t.Parallel()
	api, store, gw := newAuthGateway(t)
	ctx := context.Background()

	api.EXPECT().Login(ctx, gomock.Any(), gomock.Any()).
		Return(apperrors.FromStatus(400, ""))

	_, err := gw.Login(ctx, "user@example.com", "wrong")
	require.Error(t, err)
	assert.NotEmpty(t, apperrors.Message(err))
	assert.True(t, store.Snapshot().Loading, "failed login must not settle the store")
}

func TestAuthGateway_Login_NetworkError(t *testing.T) {
	t.Parallel()
	api, store, gw := newAuthGateway(t)
	ctx := context.Background()
	store.Resolve(nil)

	api.EXPECT().Login(ctx, gomock.Any(), gomock.Any()).
		Return(apperrors.Network(errors.New("connection refused")))

	ok, err := gw.Login(ctx, "user@example.com", "pw")
	assert.False(t, ok)
	assert.True(t, apperrors.IsNetwork(err))
	assert.Nil(t, store.Identity())
}

func TestAuthGateway_Login_RequiresCredentials(t *testing.T) {
	t.Parallel()
	_, _, gw := newAuthGateway(t)

	_, err := gw.Login(context.Background(), " ", "pw")
	assert.True(t, apperrors.IsValidation(err))

	_, err = gw.Login(context.Background(), "user@example.com", "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestAuthGateway_Login_IdentityLookupFails(t *testing.T) {
	t.Parallel()
	api, store, gw := newAuthGateway(t)
	ctx := context.Background()

	api.EXPECT().Login(ctx, gomock.Any(), gomock.Any()).Return(nil)
	api.EXPECT().CurrentUser(ctx).Return(domainauth.Identity{}, apperrors.FromStatus(500, ""))

	ok, err := gw.Login(ctx, "user@example.com", "pw")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, apperrors.IsServer(err))
	assert.Equal(t, domainauth.State{}, store.Snapshot())
}

func TestAuthGateway_Register(t *testing.T) {
	t.Parallel()

	t.Run("success does not log in", func(t *testing.T) {
		t.Parallel()
		api, store, gw := newAuthGateway(t)
		ctx := context.Background()
		in := ports.RegisterInput{Email: "new@example.com", Password: "pw123456"}

		api.EXPECT().Register(ctx, in).
			Return(domainauth.Account{ID: "u-new", Email: in.Email, Role: domainauth.RoleUser, IsActive: true}, nil)

		acct, err := gw.Register(ctx, ports.RegisterInput{Email: " new@example.com ", Password: "pw123456"})
		require.NoError(t, err)
		assert.Equal(t, "u-new", acct.ID)
		assert.True(t, store.Snapshot().Loading)
	})

	t.Run("backend rejection keeps detail", func(t *testing.T) {
		t.Parallel()
		api, _, gw := newAuthGateway(t)
		ctx := context.Background()

		api.EXPECT().Register(ctx, gomock.Any()).
			Return(domainauth.Account{}, apperrors.FromStatus(400, "REGISTER_USER_ALREADY_EXISTS"))

		_, err := gw.Register(ctx, ports.RegisterInput{Email: "dup@example.com", Password: "pw"})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "REGISTER_USER_ALREADY_EXISTS", apperrors.Message(err))
	})

	t.Run("server error becomes validation with fallback", func(t *testing.T) {
		t.Parallel()
		api, _, gw := newAuthGateway(t)
		ctx := context.Background()

		api.EXPECT().Register(ctx, gomock.Any()).
			Return(domainauth.Account{}, errors.New("boom"))

		_, err := gw.Register(ctx, ports.RegisterInput{Email: "x@example.com", Password: "pw"})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "Registration failed", apperrors.Message(err))
	})

	t.Run("local validation", func(t *testing.T) {
		t.Parallel()
		_, _, gw := newAuthGateway(t)

		_, err := gw.Register(context.Background(), ports.RegisterInput{Password: "pw"})
		assert.Equal(t, "email", apperrors.GetField(err))

		_, err = gw.Register(context.Background(), ports.RegisterInput{Email: "a@b.c"})
		assert.Equal(t, "password", apperrors.GetField(err))

		_, err = gw.Register(context.Background(), ports.RegisterInput{Email: "a@b.c", Password: "pw", Role: "ROOT"})
		assert.Equal(t, "role", apperrors.GetField(err))
	})
}

func TestAuthGateway_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   domainauth.Identity
		err  error
		want *domainauth.Identity
	}{
		{name: "user", id: userIdentity, want: &userIdentity},
		{name: "no session", err: apperrors.Unauthenticated("")},
		{name: "network failure", err: apperrors.Network(errors.New("dial tcp"))},
		{name: "server failure", err: apperrors.FromStatus(503, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api, store, gw := newAuthGateway(t)
			api.EXPECT().CurrentUser(gomock.Any()).Return(tt.id, tt.err)

			st := gw.Resolve(context.Background())
			assert.False(t, st.Loading)
			assert.True(t, domainauth.SameIdentity(tt.want, st.Identity))
			assert.Equal(t, st, store.Snapshot())
		})
	}
}

func TestAuthGateway_Apply(t *testing.T) {
	t.Parallel()
	_, store, gw := newAuthGateway(t)

	st := gw.Apply(context.Background(), &adminIdentity, nil)
	assert.True(t, st.Authenticated())

	st = gw.Apply(context.Background(), &adminIdentity, apperrors.Unauthenticated(""))
	assert.Equal(t, domainauth.State{}, st)
	assert.Equal(t, st, store.Snapshot())
}

func TestAuthGateway_Logout_Idempotent(t *testing.T) {
	t.Parallel()
	api, store, gw := newAuthGateway(t)
	ctx := context.Background()
	store.Resolve(&userIdentity)

	gomock.InOrder(
		api.EXPECT().Logout(ctx).Return(nil),
		api.EXPECT().Logout(ctx).Return(apperrors.Unauthenticated("")),
	)

	gw.Logout(ctx)
	assert.Equal(t, domainauth.State{Identity: nil, Loading: false}, store.Snapshot())

	gw.Logout(ctx)
	assert.Equal(t, domainauth.State{Identity: nil, Loading: false}, store.Snapshot())
}

func TestAuthGateway_Logout_NetworkFailureStillLogsOut(t *testing.T) {
	t.Parallel()
	api, store, gw := newAuthGateway(t)
	store.Resolve(&adminIdentity)

	api.EXPECT().Logout(gomock.Any()).Return(apperrors.Network(errors.New("reset")))

	gw.Logout(context.Background())
	assert.Equal(t, domainauth.State{}, store.Snapshot())
}
