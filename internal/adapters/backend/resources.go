package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/domain/model"
)

const (
	pathTeams       = "/teams/"
	pathEquipment   = "/equipment/"
	pathMyEquipment = "/equipment/my/list"
	pathTickets     = "/tickets/"
	pathMyTickets   = "/tickets/my"
)

// ListTeams returns every team.
func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	body, err := c.send(ctx, call{method: http.MethodGet, path: pathTeams, fallback: "Failed to fetch teams"})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Team](ResourceTeams, body)
}

// CreateTeam creates a team (admin only on the backend).
func (c *Client) CreateTeam(ctx context.Context, in model.TeamCreate) (model.Team, error) {
	req, err := jsonCall(http.MethodPost, pathTeams, in, "Failed to create team")
	if err != nil {
		return model.Team{}, err
	}
	body, err := c.send(ctx, req)
	if err != nil {
		return model.Team{}, err
	}
	return decodeJSON[model.Team](body, "team")
}

// ListEquipment lists equipment for scope.
func (c *Client) ListEquipment(ctx context.Context, scope domainauth.Scope) ([]model.Equipment, error) {
	path, err := scopedPath(scope, pathEquipment, pathMyEquipment)
	if err != nil {
		return nil, err
	}
	body, err := c.send(ctx, call{method: http.MethodGet, path: path, fallback: "Failed to fetch equipment"})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Equipment](ResourceEquipment, body)
}

// CreateEquipment registers a piece of equipment (admin only on the backend).
func (c *Client) CreateEquipment(ctx context.Context, in model.EquipmentCreate) (model.Equipment, error) {
	req, err := jsonCall(http.MethodPost, pathEquipment, in, "Failed to create equipment")
	if err != nil {
		return model.Equipment{}, err
	}
	body, err := c.send(ctx, req)
	if err != nil {
		return model.Equipment{}, err
	}
	return decodeJSON[model.Equipment](body, "equipment")
}

// ListTickets lists tickets for scope.
func (c *Client) ListTickets(ctx context.Context, scope domainauth.Scope) ([]model.Ticket, error) {
	path, err := scopedPath(scope, pathTickets, pathMyTickets)
	if err != nil {
		return nil, err
	}
	body, err := c.send(ctx, call{method: http.MethodGet, path: path, fallback: "Failed to fetch tickets"})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Ticket](ResourceTickets, body)
}

// CreateTicket raises a ticket. The backend fills team, technician and company from the equipment.
func (c *Client) CreateTicket(ctx context.Context, in model.TicketCreate) (model.Ticket, error) {
	req, err := jsonCall(http.MethodPost, pathTickets, in, "Failed to create ticket")
	if err != nil {
		return model.Ticket{}, err
	}
	body, err := c.send(ctx, req)
	if err != nil {
		return model.Ticket{}, err
	}
	return decodeJSON[model.Ticket](body, "ticket")
}

// UpdateTicket applies an admin update to ticket id.
func (c *Client) UpdateTicket(ctx context.Context, id string, in model.TicketUpdate) (model.Ticket, error) {
	if id == "" {
		return model.Ticket{}, fmt.Errorf("ticket id is required")
	}
	req, err := jsonCall(http.MethodPut, pathTickets+url.PathEscape(id), in, "Failed to update ticket")
	if err != nil {
		return model.Ticket{}, err
	}
	body, err := c.send(ctx, req)
	if err != nil {
		return model.Ticket{}, err
	}
	return decodeJSON[model.Ticket](body, "ticket")
}

func scopedPath(scope domainauth.Scope, all, own string) (string, error) {
	switch scope {
	case domainauth.ScopeAll:
		return all, nil
	case domainauth.ScopeOwn:
		return own, nil
	default:
		return "", fmt.Errorf("unknown list scope %q", scope)
	}
}
