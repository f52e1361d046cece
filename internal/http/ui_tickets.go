package httpx

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/target/maintdesk/internal/domain/model"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/http/validation"
	"github.com/target/maintdesk/internal/service"
	"golang.org/x/sync/errgroup"
)

// TicketRow is a ticket with the names of what it refers to.
type TicketRow struct {
	model.Ticket
	EquipmentName string
	TeamName      string
}

func ticketsMeta() PageMeta {
	return PageMeta{Title: "Tickets", PageTitle: "Maintenance requests", CurrentPage: PageTickets}
}

func ticketFormMeta() PageMeta {
	return PageMeta{Title: "New ticket", PageTitle: "New maintenance request", CurrentPage: PageTicketForm}
}

func ticketMeta(t model.Ticket) PageMeta {
	title := "Ticket"
	if t.Subject != "" {
		title = t.Subject
	}
	return PageMeta{Title: title, PageTitle: title, CurrentPage: PageTicket}
}

// ticketRows joins tickets with equipment and team names. Unknown references stay blank.
func ticketRows(tickets []model.Ticket, equipment []model.Equipment, teams []model.Team) []TicketRow {
	eqNames := make(map[string]string, len(equipment))
	for _, e := range equipment {
		eqNames[e.ID] = e.Name
	}
	tNames := teamNames(teams)
	rows := make([]TicketRow, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, TicketRow{Ticket: t, EquipmentName: eqNames[t.EquipmentID], TeamName: tNames[t.MaintenanceTeamID]})
	}
	return rows
}

// Tickets lists tickets visible to the signed-in identity, optionally filtered by status.
// GET /tickets?status=NEW.
func (h *UIHandlers) Tickets(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}

	var (
		tickets   service.FetchResult[model.Ticket]
		equipment service.FetchResult[model.Equipment]
		teams     service.FetchResult[model.Team]
	)
	var g errgroup.Group
	g.Go(func() error { tickets = rs.Fetcher.Tickets(r.Context()); return nil })
	g.Go(func() error { equipment = rs.Fetcher.Equipment(r.Context()); return nil })
	g.Go(func() error { teams = rs.Fetcher.Teams(r.Context()); return nil })
	_ = g.Wait()

	items := tickets.Items
	filter, _ := model.ParseTicketStatus(r.URL.Query().Get("status"))
	if filter.Valid() {
		items = model.FilterTicketsByStatus(items, filter)
	} else {
		filter = ""
	}

	data := NewTemplateData(r, ticketsMeta()).
		WithBanner(fetchBanner("tickets", tickets.Err)).
		With("Tickets", ticketRows(items, equipment.Items, teams.Items)).
		With("Statuses", []model.TicketStatus{model.StatusNew, model.StatusInProgress, model.StatusRepaired, model.StatusScrap}).
		With("StatusFilter", filter).
		With("Scope", tickets.Scope).
		Build()
	h.renderPage(w, r, data)
}

// TicketNew renders the new-ticket form with the equipment that can still
// receive tickets.
// GET /tickets/new.
func (h *UIHandlers) TicketNew(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	equipment := rs.Fetcher.SelectableEquipment(r.Context())
	form := model.TicketCreate{
		EquipmentID: r.URL.Query().Get("equipment_id"),
		RequestType: model.RequestCorrective,
	}
	data := NewTemplateData(r, ticketFormMeta()).
		WithBanner(fetchBanner("equipment", equipment.Err)).
		With("Equipment", equipment.Items).
		With("RequestTypes", []model.RequestType{model.RequestCorrective, model.RequestPreventive}).
		With("FormData", form).
		Build()
	h.renderPage(w, r, data)
}

// TicketCreate raises a ticket for any signed-in identity.
// POST /tickets.
func (h *UIHandlers) TicketCreate(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	HandleForm(FormHandlerOpts[model.TicketCreate]{
		W:      w,
		R:      r,
		Parser: parseTicketForm,
		Submit: func(ctx context.Context, _ string, in model.TicketCreate) error {
			_, err := rs.Maintenance.CreateTicket(ctx, in)
			return err
		},
		Renderer: func(w http.ResponseWriter, r *http.Request, data map[string]any) {
			data["Equipment"] = rs.Fetcher.SelectableEquipment(r.Context()).Items
			data["RequestTypes"] = []model.RequestType{model.RequestCorrective, model.RequestPreventive}
			h.renderPage(w, r, data)
		},
		SuccessURL: "/tickets",
		PageMeta:   ticketFormMeta(),
	})
}

func parseTicketForm(r *http.Request) (model.TicketCreate, map[string]string) {
	in := model.TicketCreate{
		Subject:     strings.TrimSpace(r.PostFormValue("subject")),
		Description: optionalFormValue(r, "description"),
		EquipmentID: strings.TrimSpace(r.PostFormValue("equipment_id")),
		RequestType: model.RequestType(strings.ToUpper(strings.TrimSpace(r.PostFormValue("request_type")))),
	}
	errs := validation.New().
		Validate("subject", in.Subject, validation.Required("Subject", maxNameLen)).
		Validate("equipment_id", in.EquipmentID, validation.Required("Equipment", maxNameLen)).
		Validate("description", r.PostFormValue("description"), validation.Optional("Description", maxTextLen)).
		Check("request_type", in.RequestType == "" || in.RequestType.Valid(), "Choose corrective or preventive.").
		Errors()
	return in, errs
}

// Ticket shows one ticket. Admins also get the update form.
// GET /tickets/{id}.
func (h *UIHandlers) Ticket(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	t, err := rs.Maintenance.Ticket(r.Context(), r.PathValue("id"))
	if err != nil {
		h.ticketLoadFailed(w, r, err)
		return
	}
	data := NewTemplateData(r, ticketMeta(t)).Build()
	h.hydrateTicket(r, rs, data, t)
	data["FormData"] = ticketUpdateForm{Priority: strconv.Itoa(t.Priority)}
	h.renderPage(w, r, data)
}

// ticketUpdateForm keeps the raw update inputs for re-rendering.
type ticketUpdateForm struct {
	Status         string
	Priority       string
	ScheduledDate  string
	DurationHours  string
	AssignedUserID string
}

// ticketUpdateInput is what the update form parses into.
type ticketUpdateInput struct {
	Update model.TicketUpdate
	Raw    ticketUpdateForm
}

// TicketUpdate applies an admin update to a ticket.
// POST /tickets/{id}.
func (h *UIHandlers) TicketUpdate(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	current, err := rs.Maintenance.Ticket(r.Context(), id)
	if err != nil {
		h.ticketLoadFailed(w, r, err)
		return
	}

	HandleForm(FormHandlerOpts[ticketUpdateInput]{
		W:      w,
		R:      r,
		Mode:   FormModeEdit,
		Parser: parseTicketUpdateForm,
		Submit: func(ctx context.Context, id string, in ticketUpdateInput) error {
			_, err := rs.Maintenance.UpdateTicket(ctx, id, in.Update)
			return err
		},
		Renderer: func(w http.ResponseWriter, r *http.Request, data map[string]any) {
			if in, ok := data["FormData"].(ticketUpdateInput); ok {
				data["FormData"] = in.Raw
			}
			h.hydrateTicket(r, rs, data, current)
			h.renderPage(w, r, data)
		},
		SuccessURL: "/tickets/" + id,
		PageMeta:   ticketMeta(current),
	})
}

func parseTicketUpdateForm(r *http.Request) (ticketUpdateInput, map[string]string) {
	raw := ticketUpdateForm{
		Status:         strings.TrimSpace(r.PostFormValue("status")),
		Priority:       strings.TrimSpace(r.PostFormValue("priority")),
		ScheduledDate:  strings.TrimSpace(r.PostFormValue("scheduled_date")),
		DurationHours:  strings.TrimSpace(r.PostFormValue("duration_hours")),
		AssignedUserID: strings.TrimSpace(r.PostFormValue("assigned_user_id")),
	}
	in := ticketUpdateInput{Raw: raw}
	statuses := []string{
		string(model.StatusNew), string(model.StatusInProgress), string(model.StatusRepaired), string(model.StatusScrap),
	}
	v := validation.New()
	if raw.Status != "" {
		v.Validate("status", raw.Status, validation.OneOf("Status", statuses))
		st, _ := model.ParseTicketStatus(raw.Status)
		in.Update.Status = &st
	}
	if raw.Priority != "" {
		v.Validate("priority", raw.Priority, validation.IntRange("Priority", 0, model.MaxTicketPriority))
		p, _ := strconv.Atoi(raw.Priority)
		in.Update.Priority = &p
	}
	if raw.ScheduledDate != "" {
		v.Validate("scheduled_date", raw.ScheduledDate, validation.Date("Scheduled date"))
		in.Update.ScheduledDate = &raw.ScheduledDate
	}
	if raw.DurationHours != "" {
		v.Validate("duration_hours", raw.DurationHours, validation.NonNegativeNumber("Duration"))
		d, _ := strconv.ParseFloat(raw.DurationHours, 64)
		in.Update.DurationHours = &d
	}
	if raw.AssignedUserID != "" {
		in.Update.AssignedUserID = &raw.AssignedUserID
	}
	errs := v.Errors()
	return in, errs
}

// hydrateTicket adds the ticket, its equipment name and the offered transitions.
func (h *UIHandlers) hydrateTicket(r *http.Request, rs *service.RequestSession, data map[string]any, t model.Ticket) {
	equipment := rs.Fetcher.Equipment(r.Context())
	teams := rs.Fetcher.Teams(r.Context())
	rows := ticketRows([]model.Ticket{t}, equipment.Items, teams.Items)
	data["Ticket"] = rows[0]
	data["NextStatuses"] = t.NextStatuses()
	data["Priorities"] = []int{0, 1, 2, model.MaxTicketPriority}
}

func (h *UIHandlers) ticketLoadFailed(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.IsNotFound(err) {
		h.NotFound(w, r)
		return
	}
	h.logger().WarnContext(r.Context(), "load ticket failed", "id", r.PathValue("id"), "error", err)
	data := NewTemplateData(r, ticketsMeta()).
		WithBanner(fetchBanner("the ticket", err)).
		With("Tickets", []TicketRow{}).
		Build()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(apperrors.HTTPStatus(err))
	h.renderPage(w, r, data)
}
