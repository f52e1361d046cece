package devbackend

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/domain/model"
)

func (s *Server) handleListTeams(w http.ResponseWriter, _ *http.Request, _ *account) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, nonNil(s.teams))
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request, _ *account) {
	var in model.TeamCreate
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeValidation(w, "name", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if strings.EqualFold(t.Name, in.Name) {
			writeDetail(w, http.StatusBadRequest, "Team name already exists")
			return
		}
	}
	team := model.Team{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   model.NewTimestamp(s.now()),
	}
	s.teams = append(s.teams, team)
	writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleListEquipment(w http.ResponseWriter, _ *http.Request, _ *account) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, nonNil(s.equipment))
}

// handleMyEquipment lists the caller's non-scrapped equipment.
func (s *Server) handleMyEquipment(w http.ResponseWriter, _ *http.Request, a *account) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Equipment, 0)
	for _, e := range s.equipment {
		if e.UsedByUserID == a.id && !e.IsScrapped {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEquipment(w http.ResponseWriter, r *http.Request, _ *account) {
	var in model.EquipmentCreate
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeValidation(w, "body", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.ContainsFunc(s.teams, func(t model.Team) bool { return t.ID == in.MaintenanceTeamID }) {
		writeDetail(w, http.StatusBadRequest, "Maintenance team "+in.MaintenanceTeamID+" not found")
		return
	}
	now := model.NewTimestamp(s.now())
	e := model.Equipment{
		ID:                  uuid.NewString(),
		Name:                in.Name,
		Category:            in.Category,
		Company:             in.Company,
		Description:         in.Description,
		UsedByType:          in.UsedByType,
		UsedByUserID:        in.UsedByUserID,
		UsedInLocation:      in.UsedInLocation,
		WorkCenter:          in.WorkCenter,
		MaintenanceTeamID:   in.MaintenanceTeamID,
		DefaultTechnicianID: in.DefaultTechnicianID,
		AssignedDate:        in.AssignedDate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.equipment = append(s.equipment, e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListTickets(w http.ResponseWriter, _ *http.Request, _ *account) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, newestFirst(s.tickets))
}

func (s *Server) handleMyTickets(w http.ResponseWriter, _ *http.Request, a *account) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mine := make([]model.Ticket, 0)
	for _, t := range s.tickets {
		if t.CreatedBy == a.id {
			mine = append(mine, t)
		}
	}
	writeJSON(w, http.StatusOK, newestFirst(mine))
}

// handleCreateTicket fills team, technician and company from the equipment.
func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request, a *account) {
	var in model.TicketCreate
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeValidation(w, "body", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.equipment, func(e model.Equipment) bool { return e.ID == in.EquipmentID })
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Equipment not found")
		return
	}
	eq := s.equipment[idx]
	if a.role != domainauth.RoleAdmin && eq.UsedByUserID != a.id {
		writeDetail(w, http.StatusForbidden, "You can only create tickets for equipment assigned to you")
		return
	}
	if eq.IsScrapped {
		writeDetail(w, http.StatusBadRequest, "Equipment is scrapped")
		return
	}
	if eq.MaintenanceTeamID == "" {
		writeDetail(w, http.StatusBadRequest, "Equipment has no maintenance team assigned")
		return
	}

	now := model.NewTimestamp(s.now())
	t := model.Ticket{
		ID:                uuid.NewString(),
		Subject:           in.Subject,
		Description:       in.Description,
		EquipmentID:       eq.ID,
		MaintenanceTeamID: eq.MaintenanceTeamID,
		RequestType:       in.RequestType,
		Status:            model.StatusNew,
		Company:           eq.Company,
		CreatedBy:         a.id,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if eq.DefaultTechnicianID != "" {
		tech := eq.DefaultTechnicianID
		t.AssignedUserID = &tech
	}
	s.tickets = append(s.tickets, t)
	writeJSON(w, http.StatusCreated, t)
}

// handleUpdateTicket applies an admin update. SCRAP marks the equipment
// scrapped; REPAIRED stamps completed_at.
func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request, _ *account) {
	var in model.TicketUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeValidation(w, "body", err.Error())
		return
	}

	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.tickets, func(t model.Ticket) bool { return t.ID == id })
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Ticket not found")
		return
	}
	t := s.tickets[idx]
	now := s.now()

	if in.Subject != nil {
		t.Subject = *in.Subject
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.DurationHours != nil {
		t.DurationHours = in.DurationHours
	}
	if in.AssignedUserID != nil {
		t.AssignedUserID = in.AssignedUserID
	}
	if in.ScheduledDate != nil {
		if ts, err := model.ParseTimestamp(strings.TrimSpace(*in.ScheduledDate)); err == nil {
			t.ScheduledDate = &ts
		}
	}
	if in.Status != nil {
		t.Status = *in.Status
		switch *in.Status {
		case model.StatusScrap:
			s.scrapEquipment(t.EquipmentID, now)
		case model.StatusRepaired:
			if t.CompletedAt == nil {
				done := model.NewTimestamp(now)
				t.CompletedAt = &done
			}
		}
	}
	t.UpdatedAt = model.NewTimestamp(now)
	s.tickets[idx] = t
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) scrapEquipment(id string, now time.Time) {
	for i := range s.equipment {
		if s.equipment[i].ID == id {
			date := now.UTC().Format(time.DateOnly)
			s.equipment[i].IsScrapped = true
			s.equipment[i].ScrapDate = &date
			s.equipment[i].UpdatedAt = model.NewTimestamp(now)
			return
		}
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeValidation(w, "body", "invalid JSON body")
		return false
	}
	return true
}

func newestFirst(items []model.Ticket) []model.Ticket {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b model.Ticket) int { return b.CreatedAt.Compare(a.CreatedAt.Time) })
	return nonNil(out)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
