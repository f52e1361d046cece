//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxTeamNameLen = 255

// Team is a maintenance team that equipment and tickets are routed to.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

// TeamCreate is the admin payload for POST /teams/.
type TeamCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Validate validates and normalizes TeamCreate.
func (r *TeamCreate) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Name) > maxTeamNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	r.Description = trimOptional(r.Description)
	return nil
}

// trimOptional trims v and returns nil when nothing is left.
func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
