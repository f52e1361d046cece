//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxEquipmentFieldLen = 255

// UsedByType says whether equipment is assigned to a person or a department.
type UsedByType string

const (
	UsedByEmployee   UsedByType = "EMPLOYEE"
	UsedByDepartment UsedByType = "DEPARTMENT"
)

// Valid reports whether the used-by type is supported.
func (t UsedByType) Valid() bool {
	switch t {
	case UsedByEmployee, UsedByDepartment:
		return true
	default:
		return false
	}
}

// Equipment is a tracked asset that tickets are raised against.
type Equipment struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Category            string     `json:"category"`
	Company             *string    `json:"company,omitempty"`
	Description         *string    `json:"description,omitempty"`
	UsedByType          UsedByType `json:"used_by_type,omitempty"`
	UsedByUserID        string     `json:"used_by_user_id,omitempty"`
	UsedInLocation      *string    `json:"used_in_location,omitempty"`
	WorkCenter          *string    `json:"work_center,omitempty"`
	MaintenanceTeamID   string     `json:"maintenance_team_id,omitempty"`
	DefaultTechnicianID string     `json:"default_technician_id,omitempty"`
	AssignedDate        *string    `json:"assigned_date,omitempty"`
	ScrapDate           *string    `json:"scrap_date,omitempty"`
	IsScrapped          bool       `json:"is_scrapped"`
	CreatedAt           Timestamp  `json:"created_at"`
	UpdatedAt           Timestamp  `json:"updated_at"`
}

// Selectable reports whether the equipment may be offered in new-ticket flows.
func (e Equipment) Selectable() bool { return !e.IsScrapped }

// SelectableEquipment returns the equipment that may be offered in new-ticket flows.
// The result is never nil.
func SelectableEquipment(items []Equipment) []Equipment {
	out := make([]Equipment, 0, len(items))
	for _, e := range items {
		if e.Selectable() {
			out = append(out, e)
		}
	}
	return out
}

// EquipmentCreate is the admin payload for POST /equipment/.
type EquipmentCreate struct {
	Name                string     `json:"name"`
	Category            string     `json:"category"`
	Company             *string    `json:"company,omitempty"`
	Description         *string    `json:"description,omitempty"`
	UsedByType          UsedByType `json:"used_by_type,omitempty"`
	UsedByUserID        string     `json:"used_by_user_id"`
	MaintenanceTeamID   string     `json:"maintenance_team_id"`
	DefaultTechnicianID string     `json:"default_technician_id"`
	UsedInLocation      *string    `json:"used_in_location,omitempty"`
	WorkCenter          *string    `json:"work_center,omitempty"`
	AssignedDate        *string    `json:"assigned_date,omitempty"`
}

// Validate validates and normalizes EquipmentCreate.
func (r *EquipmentCreate) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	if r.Name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Name) > maxEquipmentFieldLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if r.Category == "" {
		return errors.New("category is required")
	}
	if r.UsedByType == "" {
		r.UsedByType = UsedByEmployee
	}
	if !r.UsedByType.Valid() {
		return errors.New("used_by_type must be EMPLOYEE or DEPARTMENT")
	}
	required := []struct{ field, value string }{
		{"used_by_user_id", r.UsedByUserID},
		{"maintenance_team_id", r.MaintenanceTeamID},
		{"default_technician_id", r.DefaultTechnicianID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return errors.New(f.field + " is required")
		}
	}
	if r.AssignedDate != nil {
		if _, err := ParseTimestamp(strings.TrimSpace(*r.AssignedDate)); err != nil {
			return errors.New("assigned_date must be a date (YYYY-MM-DD)")
		}
	}
	r.Company = trimOptional(r.Company)
	r.Description = trimOptional(r.Description)
	r.UsedInLocation = trimOptional(r.UsedInLocation)
	r.WorkCenter = trimOptional(r.WorkCenter)
	r.AssignedDate = trimOptional(r.AssignedDate)
	return nil
}
