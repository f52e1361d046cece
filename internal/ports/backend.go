package ports

import (
	"context"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/domain/model"
)

// MaintenanceAPI is the backend's resource surface.
type MaintenanceAPI interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, in model.TeamCreate) (model.Team, error)
	// ListEquipment calls the all-records endpoint for ScopeAll and the
	// my-records endpoint for ScopeOwn.
	ListEquipment(ctx context.Context, scope domainauth.Scope) ([]model.Equipment, error)
	CreateEquipment(ctx context.Context, in model.EquipmentCreate) (model.Equipment, error)
	ListTickets(ctx context.Context, scope domainauth.Scope) ([]model.Ticket, error)
	CreateTicket(ctx context.Context, in model.TicketCreate) (model.Ticket, error)
	UpdateTicket(ctx context.Context, id string, in model.TicketUpdate) (model.Ticket, error)
}

// Backend is one browser session's view of the backend: both API surfaces
// sharing a single credential.
type Backend interface {
	IdentityAPI
	MaintenanceAPI
	// Cookies exports the backend session credential for persistence.
	Cookies() []domainauth.Cookie
}

// BackendFactory builds a Backend seeded with previously exported cookies.
type BackendFactory interface {
	ForSession(cookies []domainauth.Cookie) (Backend, error)
}
