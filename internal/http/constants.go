package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageDashboard = "dashboard"
	PageLogin     = "login"
	PageRegister  = "register"
	PageNotFound  = "not-found"

	PageTeams = "teams"

	PageEquipment     = "equipment"
	PageEquipmentForm = "equipment-form"

	PageTickets    = "tickets"
	PageTicketForm = "ticket-form"
	PageTicket     = "ticket" // detail + admin update
)

// SessionCookieName is the browser cookie that carries the maintdesk session ID.
const SessionCookieName = "session_id"

// Content templates are defined once and reused to avoid per-call allocations.
//
//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageDashboard:     "dashboard-content",
	PageLogin:         "login-content",
	PageRegister:      "register-content",
	PageNotFound:      "not-found-content",
	PageTeams:         "teams-content",
	PageEquipment:     "equipment-content",
	PageEquipmentForm: "equipment-form-content",
	PageTickets:       "tickets-content",
	PageTicketForm:    "ticket-form-content",
	PageTicket:        "ticket-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}
