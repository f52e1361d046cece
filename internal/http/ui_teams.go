package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/target/maintdesk/internal/domain/model"
	"github.com/target/maintdesk/internal/http/validation"
)

// Form limits mirror the backend's column sizes.
const (
	maxNameLen = 255
	maxTextLen = 2000
)

func teamsMeta() PageMeta {
	return PageMeta{Title: "Teams", PageTitle: "Maintenance teams", CurrentPage: PageTeams}
}

// Teams lists maintenance teams with an inline create form. Admin only.
// GET /teams.
func (h *UIHandlers) Teams(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	teams := rs.Fetcher.Teams(r.Context())
	data := NewTemplateData(r, teamsMeta()).
		WithBanner(fetchBanner("teams", teams.Err)).
		With("Teams", teams.Items).
		With("FormData", model.TeamCreate{}).
		Build()
	h.renderPage(w, r, data)
}

// TeamCreate creates a team and returns to the list. Admin only.
// POST /teams.
func (h *UIHandlers) TeamCreate(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	HandleForm(FormHandlerOpts[model.TeamCreate]{
		W:      w,
		R:      r,
		Parser: parseTeamForm,
		Submit: func(ctx context.Context, _ string, in model.TeamCreate) error {
			_, err := rs.Maintenance.CreateTeam(ctx, in)
			return err
		},
		Renderer: func(w http.ResponseWriter, r *http.Request, data map[string]any) {
			teams := rs.Fetcher.Teams(r.Context())
			data["Teams"] = teams.Items
			h.renderPage(w, r, data)
		},
		SuccessURL: "/teams",
		PageMeta:   teamsMeta(),
	})
}

func parseTeamForm(r *http.Request) (model.TeamCreate, map[string]string) {
	in := model.TeamCreate{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: optionalFormValue(r, "description"),
	}
	errs := validation.New().
		Validate("name", in.Name, validation.Required("Name", maxNameLen)).
		Validate("description", r.PostFormValue("description"), validation.Optional("Description", maxTextLen)).
		Errors()
	return in, errs
}

// optionalFormValue returns the trimmed form value, or nil when blank.
func optionalFormValue(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" {
		return nil
	}
	return &v
}
