//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTicketSubjectLen = 255
	// MaxTicketPriority bounds the priority accepted by the dashboard forms.
	MaxTicketPriority = 3
)

// RequestType distinguishes breakdown repairs from planned maintenance.
type RequestType string

const (
	RequestCorrective RequestType = "CORRECTIVE"
	RequestPreventive RequestType = "PREVENTIVE"
)

// Valid reports whether the request type is supported.
func (t RequestType) Valid() bool {
	switch t {
	case RequestCorrective, RequestPreventive:
		return true
	default:
		return false
	}
}

// TicketStatus is the lifecycle state of a maintenance ticket.
type TicketStatus string

const (
	StatusNew        TicketStatus = "NEW"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusRepaired   TicketStatus = "REPAIRED"
	StatusScrap      TicketStatus = "SCRAP"
)

// ticketTransitions lists the moves offered from each non-terminal status.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	StatusNew:        {StatusInProgress, StatusScrap},
	StatusInProgress: {StatusRepaired, StatusScrap},
	StatusRepaired:   nil,
	StatusScrap:      nil,
}

// Valid reports whether the status is supported.
func (s TicketStatus) Valid() bool {
	_, ok := ticketTransitions[s]
	return ok
}

// Terminal reports whether no further transition is offered from s.
func (s TicketStatus) Terminal() bool {
	return s == StatusRepaired || s == StatusScrap
}

// ParseTicketStatus normalizes s and reports whether it is supported.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	st := TicketStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

// FilterTicketsByStatus returns the tickets in status, keeping their order.
func FilterTicketsByStatus(tickets []Ticket, status TicketStatus) []Ticket {
	out := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Transitions returns the statuses reachable from s in one step.
func Transitions(s TicketStatus) []TicketStatus {
	next := ticketTransitions[s]
	out := make([]TicketStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether a ticket may move from one status to another.
// Keeping the same status is always allowed so other fields can be edited.
func CanTransition(from, to TicketStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range ticketTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Ticket is a maintenance request raised against a piece of equipment.
type Ticket struct {
	ID                string       `json:"id"`
	Subject           string       `json:"subject"`
	Description       *string      `json:"description,omitempty"`
	EquipmentID       string       `json:"equipment_id"`
	MaintenanceTeamID string       `json:"maintenance_team_id"`
	AssignedUserID    *string      `json:"assigned_user_id,omitempty"`
	RequestType       RequestType  `json:"request_type"`
	Status            TicketStatus `json:"status"`
	Priority          int          `json:"priority"`
	ScheduledDate     *Timestamp   `json:"scheduled_date,omitempty"`
	CompletedAt       *Timestamp   `json:"completed_at,omitempty"`
	DurationHours     *float64     `json:"duration_hours,omitempty"`
	Company           *string      `json:"company,omitempty"`
	CreatedBy         string       `json:"created_by"`
	CreatedAt         Timestamp    `json:"created_at"`
	UpdatedAt         Timestamp    `json:"updated_at"`
}

// NextStatuses returns the transitions offered for this ticket.
func (t Ticket) NextStatuses() []TicketStatus { return Transitions(t.Status) }

// TicketCreate is the payload for POST /tickets/.
// The backend fills in team, technician and company from the equipment.
type TicketCreate struct {
	Subject     string      `json:"subject"`
	Description *string     `json:"description,omitempty"`
	EquipmentID string      `json:"equipment_id"`
	RequestType RequestType `json:"request_type,omitempty"`
}

// Validate validates and normalizes TicketCreate.
func (r *TicketCreate) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" {
		return errors.New("subject is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Subject) > maxTicketSubjectLen {
		return errors.New("subject cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.EquipmentID) == "" {
		return errors.New("please select equipment")
	}
	if r.RequestType == "" {
		r.RequestType = RequestCorrective
	}
	if !r.RequestType.Valid() {
		return errors.New("request_type must be CORRECTIVE or PREVENTIVE")
	}
	r.Description = trimOptional(r.Description)
	return nil
}

// TicketUpdate is the admin payload for PUT /tickets/{id}. Nil fields are left unchanged.
type TicketUpdate struct {
	Subject        *string       `json:"subject,omitempty"`
	Description    *string       `json:"description,omitempty"`
	Status         *TicketStatus `json:"status,omitempty"`
	Priority       *int          `json:"priority,omitempty"`
	ScheduledDate  *string       `json:"scheduled_date,omitempty"`
	DurationHours  *float64      `json:"duration_hours,omitempty"`
	AssignedUserID *string       `json:"assigned_user_id,omitempty"`
}

// Validate validates the update in isolation.
func (r *TicketUpdate) Validate() error {
	if r.Subject != nil {
		s := strings.TrimSpace(*r.Subject)
		if s == "" {
			return errors.New("subject cannot be empty")
		}
		r.Subject = &s
	}
	if r.Status != nil && !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", *r.Status)
	}
	if r.Priority != nil && (*r.Priority < 0 || *r.Priority > MaxTicketPriority) {
		return fmt.Errorf("priority must be between 0 and %d", MaxTicketPriority)
	}
	if r.DurationHours != nil && *r.DurationHours < 0 {
		return errors.New("duration_hours cannot be negative")
	}
	if r.ScheduledDate != nil {
		if _, err := ParseTimestamp(strings.TrimSpace(*r.ScheduledDate)); err != nil {
			return errors.New("scheduled_date must be a date or datetime")
		}
	}
	return nil
}

// ValidateAgainst checks the status transition from the ticket's current status.
func (r *TicketUpdate) ValidateAgainst(current Ticket) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Status == nil {
		return nil
	}
	if !CanTransition(current.Status, *r.Status) {
		return fmt.Errorf("cannot move ticket from %s to %s", current.Status, *r.Status)
	}
	return nil
}
