package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_LoadTemplates(t *testing.T) {
	tr := requireTemplateRenderer(t)
	require.NotNil(t, tr.t)

	expected := []string{"layout", "nav", "banners", "form-error", "csrf", "ticket-table"}
	for _, name := range ContentTemplateMap() {
		expected = append(expected, name)
	}
	for _, name := range expected {
		assert.NotNil(t, tr.t.Lookup(name), "template %s should be defined", name)
	}
}

func TestTemplateRenderer_RequiresFS(t *testing.T) {
	_, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.Error(t, err)
}

func TestTemplateRenderer_ParseError(t *testing.T) {
	_, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fstest.MapFS{
		"layout.tmpl":         {Data: []byte(`{{define "layout"}}{{end}}`)},
		"pages/broken.tmpl":   {Data: []byte(`{{define "broken"}}{{if}}{{end}}`)},
		"partials/empty.tmpl": {Data: []byte(``)},
	}})
	require.Error(t, err)
}

// Ensures sectionTmpl maps known pages to their content templates and defaults for unknown.
func TestTemplateHelpers_SectionTmpl_Mapping(t *testing.T) {
	tr := requireTemplateRenderer(t)
	cloned, err := tr.t.Clone()
	require.NoError(t, err)
	cloned, err = cloned.Parse(`{{define "probe"}}{{ sectionTmpl . }}{{end}}`)
	require.NoError(t, err)

	cases := map[string]string{
		PageDashboard:  "dashboard-content",
		PageTickets:    "tickets-content",
		PageTicket:     "ticket-content",
		PageEquipment:  "equipment-content",
		PageTeams:      "teams-content",
		PageLogin:      "login-content",
		"unknown-page": "dashboard-content",
	}
	for page, want := range cases {
		var buf bytes.Buffer
		require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", page))
		assert.Equal(t, want, buf.String(), "sectionTmpl(%s)", page)
	}
}

func TestTemplateHelpers_RenderSection(t *testing.T) {
	tr := requireTemplateRenderer(t)
	cloned, err := tr.t.Clone()
	require.NoError(t, err)
	cloned, err = cloned.Parse(`{{define "probe"}}{{ renderSection .Page .Data }}{{end}}`)
	require.NoError(t, err)

	t.Run("not found page", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", map[string]any{
			"Page": PageNotFound,
			"Data": map[string]any{},
		}))
		assert.Contains(t, buf.String(), "does not exist or is not visible to you")
	})

	t.Run("login form escapes input", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", map[string]any{
			"Page": PageLogin,
			"Data": map[string]any{
				"FormData":  loginForm{Email: `"><script>alert(1)</script>`, Next: "/tickets"},
				"CSRFToken": "tok",
			},
		}))
		html := buf.String()
		assert.NotContains(t, html, "<script>alert(1)</script>")
		assert.Contains(t, html, `name="next" value="/tickets"`)
		assert.Contains(t, html, `name="csrf_token" value="tok"`)
	})
}

func TestTemplateRenderer_RenderFull(t *testing.T) {
	tr := requireTemplateRenderer(t)
	r := httptest.NewRequest(http.MethodGet, "/missing", nil)
	data := basePageData(r, PageMeta{Title: "Not found", PageTitle: "Not found", CurrentPage: PageNotFound})

	w := httptest.NewRecorder()
	require.NoError(t, tr.RenderFull(w, r, data))

	html := w.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, html, `<main id="main"`)
	assert.Contains(t, html, "does not exist or is not visible to you")
	assert.Contains(t, html, "Sign in", "anonymous visitors see the sign-in link")
	assert.NotContains(t, html, `href="/teams"`)
}

func TestTemplateRenderer_RenderContentUnknownTemplate(t *testing.T) {
	tr := requireTemplateRenderer(t)
	w := httptest.NewRecorder()
	require.Error(t, tr.RenderContent(w, "no-such-template", nil))
	assert.Empty(t, w.Body.String(), "failed renders write nothing")
}
