package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/domain/model"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/ports"
	"github.com/target/maintdesk/internal/session"
)

// MaintenanceServiceOptions groups dependencies for MaintenanceService.
type MaintenanceServiceOptions struct {
	API    ports.MaintenanceAPI // Required: backend resource endpoints
	Store  *session.Store       // Required: source of the current identity
	Logger *slog.Logger         // Optional: structured logger
}

// MaintenanceService validates and submits writes to teams, equipment and tickets.
// Role checks here mirror the backend's so users get an early, readable error;
// the backend remains the authority.
type MaintenanceService struct {
	api    ports.MaintenanceAPI
	store  *session.Store
	logger *slog.Logger
}

// NewMaintenanceService constructs a new MaintenanceService.
func NewMaintenanceService(opts MaintenanceServiceOptions) *MaintenanceService {
	if opts.API == nil {
		panic("MaintenanceAPI is required")
	}
	if opts.Store == nil {
		panic("session store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MaintenanceService{api: opts.API, store: opts.Store, logger: logger.With("component", "maintenance_service")}
}

// CreateTeam creates a maintenance team. Admin only.
func (s *MaintenanceService) CreateTeam(ctx context.Context, in model.TeamCreate) (model.Team, error) {
	if _, err := s.requireAdmin(); err != nil {
		return model.Team{}, err
	}
	if err := in.Validate(); err != nil {
		return model.Team{}, apperrors.ValidationField("name", err.Error())
	}
	team, err := s.api.CreateTeam(ctx, in)
	if err != nil {
		return model.Team{}, fmt.Errorf("create team: %w", err)
	}
	s.logger.InfoContext(ctx, "team created", "id", team.ID, "name", team.Name)
	return team, nil
}

// CreateEquipment registers equipment. Admin only.
func (s *MaintenanceService) CreateEquipment(ctx context.Context, in model.EquipmentCreate) (model.Equipment, error) {
	if _, err := s.requireAdmin(); err != nil {
		return model.Equipment{}, err
	}
	if err := in.Validate(); err != nil {
		return model.Equipment{}, apperrors.Validation(err.Error())
	}
	eq, err := s.api.CreateEquipment(ctx, in)
	if err != nil {
		return model.Equipment{}, fmt.Errorf("create equipment: %w", err)
	}
	s.logger.InfoContext(ctx, "equipment created", "id", eq.ID, "name", eq.Name)
	return eq, nil
}

// CreateTicket raises a ticket for any signed-in identity. Equipment known to
// be scrapped is rejected before the backend is called.
func (s *MaintenanceService) CreateTicket(ctx context.Context, in model.TicketCreate) (model.Ticket, error) {
	id, err := s.requireIdentity()
	if err != nil {
		return model.Ticket{}, err
	}
	if err := in.Validate(); err != nil {
		return model.Ticket{}, apperrors.Validation(err.Error())
	}
	if s.knownScrapped(ctx, id, in.EquipmentID) {
		return model.Ticket{}, apperrors.ValidationField("equipment_id", "Equipment is scrapped")
	}

	t, err := s.api.CreateTicket(ctx, in)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	s.logger.InfoContext(ctx, "ticket created", "id", t.ID, "equipment_id", t.EquipmentID)
	return t, nil
}

// Ticket returns ticket id if it is visible to the current identity.
func (s *MaintenanceService) Ticket(ctx context.Context, ticketID string) (model.Ticket, error) {
	id, err := s.requireIdentity()
	if err != nil {
		return model.Ticket{}, err
	}
	scope, _ := domainauth.ScopeFor(id)
	tickets, err := s.api.ListTickets(ctx, scope)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("load tickets: %w", err)
	}
	for _, t := range tickets {
		if t.ID == ticketID {
			return t, nil
		}
	}
	return model.Ticket{}, apperrors.NotFoundf("Ticket %s not found", ticketID)
}

// UpdateTicket applies an admin update, refusing status moves the ticket
// lifecycle does not allow.
func (s *MaintenanceService) UpdateTicket(ctx context.Context, ticketID string, in model.TicketUpdate) (model.Ticket, error) {
	if _, err := s.requireAdmin(); err != nil {
		return model.Ticket{}, err
	}
	current, err := s.Ticket(ctx, ticketID)
	if err != nil {
		return model.Ticket{}, err
	}
	if err := in.ValidateAgainst(current); err != nil {
		return model.Ticket{}, apperrors.Validation(err.Error())
	}

	t, err := s.api.UpdateTicket(ctx, ticketID, in)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("update ticket: %w", err)
	}
	s.logger.InfoContext(ctx, "ticket updated", "id", t.ID, "status", t.Status)
	return t, nil
}

func (s *MaintenanceService) requireIdentity() (*domainauth.Identity, error) {
	st := s.store.Snapshot()
	if st.Loading || st.Identity == nil {
		return nil, apperrors.Unauthenticated("Please sign in to continue")
	}
	return st.Identity, nil
}

func (s *MaintenanceService) requireAdmin() (*domainauth.Identity, error) {
	id, err := s.requireIdentity()
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	return id, nil
}

// knownScrapped looks the equipment up in the caller's visible list. Lookup
// failures are not fatal; the backend enforces the same rule.
func (s *MaintenanceService) knownScrapped(ctx context.Context, id *domainauth.Identity, equipmentID string) bool {
	scope, _ := domainauth.ScopeFor(id)
	items, err := s.api.ListEquipment(ctx, scope)
	if err != nil {
		s.logger.DebugContext(ctx, "equipment lookup before ticket create failed", "error", err)
		return false
	}
	for _, e := range items {
		if e.ID == equipmentID {
			return e.IsScrapped
		}
	}
	return false
}
