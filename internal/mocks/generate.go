// Package mocks provides mock implementations of the ports for testing maintdesk services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the backend and
// session repository interfaces. The mocks are generated using go:generate directives.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockIdentityAPI(ctrl)
//	api.EXPECT().CurrentUser(gomock.Any()).Return(identity, nil)
package mocks

// IdentityAPI: Login, Register, CurrentUser, Logout
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_api_mock.go github.com/target/maintdesk/internal/ports IdentityAPI

// MaintenanceAPI: teams, equipment and tickets list/create/update calls
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=maintenance_api_mock.go github.com/target/maintdesk/internal/ports MaintenanceAPI

// Backend and BackendFactory: per-browser-session backend clients
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/target/maintdesk/internal/ports Backend,BackendFactory

// SessionRepository: Save, Get, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_repository_mock.go github.com/target/maintdesk/internal/ports SessionRepository
