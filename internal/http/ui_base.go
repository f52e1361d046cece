package httpx

import (
	"html"
	"log/slog"
	"net/http"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/http/ui/viewmodel"
	"github.com/target/maintdesk/internal/service"
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T     *TemplateRenderer
	Gate  *SessionGate
	IsDev bool // Development mode flag for enhanced error reporting
	// Logger is optional; slog.Default() is used when nil
	Logger *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// buildLayout constructs shared layout metadata from the request's resolved identity.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
	}

	if csrfToken := GetCSRFToken(r); csrfToken != "" {
		layout.CSRFToken = csrfToken
	}

	if id := CurrentIdentity(r.Context()); id != nil {
		layout.User = &viewmodel.User{
			ID:    id.ID,
			Email: id.Email,
			Role:  string(id.Role),
		}
		layout.IsAuthenticated = true
		layout.IsAdmin = id.IsAdmin()
	}

	return layout
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"IsAdmin":         layout.IsAdmin,
	}

	if layout.CSRFToken != "" {
		data["CSRFToken"] = layout.CSRFToken
	}
	if layout.User != nil {
		data["User"] = layout.User
	}

	return data
}

// requestSession returns the request's browser session. Routes behind
// WithSession always have one; a missing session is a wiring bug.
func (h *UIHandlers) requestSession(w http.ResponseWriter, r *http.Request) (*service.RequestSession, bool) {
	rs, ok := RequestSessionFrom(r.Context())
	if !ok {
		h.logger().ErrorContext(r.Context(), "request session missing", "path", r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
	return rs, ok
}

func (h *UIHandlers) destinations() domainauth.Destinations {
	if h.Gate == nil {
		return domainauth.DefaultDestinations()
	}
	return h.Gate.Destinations()
}

// renderPage renders a page with HTMX partial support.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	layout := layoutFromMap(data)

	// For HTMX requests, render the content plus out-of-band header updates
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})

	// <title> so htmx updates document.title on partial swaps
	safeDocTitle := html.EscapeString(layout.Title)
	if _, err := w.Write([]byte(`<title>` + safeDocTitle + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}

	safeTitle := html.EscapeString(layout.PageTitle)
	if _, err := w.Write([]byte(`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` + safeTitle + `</h1>`)); err != nil {
		h.logger().Error("failed to write partial header title", "error", err)
		return
	}

	if err := h.T.RenderContent(w, ContentTemplateFor(layout.CurrentPage), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
		return
	}
}

func layoutFromMap(m map[string]any) viewmodel.Layout {
	layout := viewmodel.Layout{}
	if v, ok := m["Title"].(string); ok {
		layout.Title = v
	}
	if v, ok := m["PageTitle"].(string); ok {
		layout.PageTitle = v
	}
	if v, ok := m["CurrentPage"].(string); ok {
		layout.CurrentPage = v
	}
	return layout
}

// NotFound renders the not-found page with a 404 status.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := basePageData(r, PageMeta{Title: "Not found", PageTitle: "Not found", CurrentPage: PageNotFound})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	h.renderPage(w, r, data)
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		errHTML := html.EscapeString(err.Error())
		pathHTML := html.EscapeString(r.URL.Path)
		contextHTML := html.EscapeString(context)
		if _, writeErr := w.Write([]byte(`<div class="template-error">` +
			`<h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + contextHTML + `</p>` +
			`<p><strong>Path:</strong> ` + pathHTML + `</p>` +
			`<pre>` + errHTML + `</pre></div>`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
