package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/target/maintdesk/internal/domain/model"
	"github.com/target/maintdesk/internal/http/validation"
)

// EquipmentRow is one line of the equipment table.
type EquipmentRow struct {
	model.Equipment
	TeamName string
}

func equipmentMeta() PageMeta {
	return PageMeta{Title: "Equipment", PageTitle: "Equipment", CurrentPage: PageEquipment}
}

func equipmentFormMeta() PageMeta {
	return PageMeta{Title: "New equipment", PageTitle: "New equipment", CurrentPage: PageEquipmentForm}
}

// Equipment lists the equipment visible to the signed-in identity.
// Admins see every record, users only their own.
// GET /equipment.
func (h *UIHandlers) Equipment(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	equipment := rs.Fetcher.Equipment(r.Context())
	teams := rs.Fetcher.Teams(r.Context())

	names := teamNames(teams.Items)
	rows := make([]EquipmentRow, 0, len(equipment.Items))
	for _, e := range equipment.Items {
		rows = append(rows, EquipmentRow{Equipment: e, TeamName: names[e.MaintenanceTeamID]})
	}

	data := NewTemplateData(r, equipmentMeta()).
		WithBanner(fetchBanner("equipment", equipment.Err)).
		With("Equipment", rows).
		With("Scope", equipment.Scope).
		Build()
	h.renderPage(w, r, data)
}

// EquipmentNew renders the equipment form. Admin only.
// GET /equipment/new.
func (h *UIHandlers) EquipmentNew(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	teams := rs.Fetcher.Teams(r.Context())
	data := NewTemplateData(r, equipmentFormMeta()).
		WithBanner(fetchBanner("teams", teams.Err)).
		With("Teams", teams.Items).
		With("UsedByTypes", []model.UsedByType{model.UsedByEmployee, model.UsedByDepartment}).
		With("FormData", model.EquipmentCreate{UsedByType: model.UsedByEmployee}).
		Build()
	h.renderPage(w, r, data)
}

// EquipmentCreate registers equipment. Admin only.
// POST /equipment.
func (h *UIHandlers) EquipmentCreate(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	HandleForm(FormHandlerOpts[model.EquipmentCreate]{
		W:      w,
		R:      r,
		Parser: parseEquipmentForm,
		Submit: func(ctx context.Context, _ string, in model.EquipmentCreate) error {
			_, err := rs.Maintenance.CreateEquipment(ctx, in)
			return err
		},
		Renderer: func(w http.ResponseWriter, r *http.Request, data map[string]any) {
			data["Teams"] = rs.Fetcher.Teams(r.Context()).Items
			data["UsedByTypes"] = []model.UsedByType{model.UsedByEmployee, model.UsedByDepartment}
			h.renderPage(w, r, data)
		},
		SuccessURL: "/equipment",
		PageMeta:   equipmentFormMeta(),
	})
}

func parseEquipmentForm(r *http.Request) (model.EquipmentCreate, map[string]string) {
	in := model.EquipmentCreate{
		Name:                strings.TrimSpace(r.PostFormValue("name")),
		Category:            strings.TrimSpace(r.PostFormValue("category")),
		Company:             optionalFormValue(r, "company"),
		Description:         optionalFormValue(r, "description"),
		UsedByType:          model.UsedByType(strings.ToUpper(strings.TrimSpace(r.PostFormValue("used_by_type")))),
		UsedByUserID:        strings.TrimSpace(r.PostFormValue("used_by_user_id")),
		MaintenanceTeamID:   strings.TrimSpace(r.PostFormValue("maintenance_team_id")),
		DefaultTechnicianID: strings.TrimSpace(r.PostFormValue("default_technician_id")),
		UsedInLocation:      optionalFormValue(r, "used_in_location"),
		WorkCenter:          optionalFormValue(r, "work_center"),
		AssignedDate:        optionalFormValue(r, "assigned_date"),
	}

	errs := validation.New().
		Validate("name", in.Name, validation.Required("Name", maxNameLen)).
		Validate("category", in.Category, validation.Required("Category", maxNameLen)).
		Validate("company", r.PostFormValue("company"), validation.Optional("Company", maxNameLen)).
		Validate("used_by_user_id", in.UsedByUserID, validation.Required("Used by", maxNameLen)).
		Validate("maintenance_team_id", in.MaintenanceTeamID, validation.Required("Maintenance team", maxNameLen)).
		Validate("default_technician_id", in.DefaultTechnicianID, validation.Required("Default technician", maxNameLen)).
		Validate("assigned_date", r.PostFormValue("assigned_date"), validation.Date("Assigned date")).
		Validate("description", r.PostFormValue("description"), validation.Optional("Description", maxTextLen)).
		Check("used_by_type", in.UsedByType == "" || in.UsedByType.Valid(), "Choose employee or department.").
		Errors()
	return in, errs
}

func teamNames(teams []model.Team) map[string]string {
	out := make(map[string]string, len(teams))
	for _, t := range teams {
		out[t.ID] = t.Name
	}
	return out
}
