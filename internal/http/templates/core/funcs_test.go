package core

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/target/maintdesk/internal/domain/model"
)

func TestStatusHelpers(t *testing.T) {
	assert.Equal(t, "badge-warning", StatusClass(model.StatusInProgress))
	assert.Equal(t, "badge-light", StatusClass("BOGUS"))
	assert.Equal(t, "In progress", StatusLabel(model.StatusInProgress))
	assert.Equal(t, "New", StatusLabel(model.StatusNew))
	assert.Empty(t, StatusLabel(""))
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "Low", PriorityLabel(0))
	assert.Equal(t, "Urgent", PriorityLabel(model.MaxTicketPriority))
	assert.Equal(t, "P7", PriorityLabel(7))
}

func TestDeref(t *testing.T) {
	s := "HQ"
	h := 1.5
	var nilStr *string
	assert.Equal(t, "HQ", Deref(&s))
	assert.Empty(t, Deref(nilStr))
	assert.Equal(t, "1.5", Deref(&h))
	assert.Empty(t, Deref(42))
}

func TestFieldError(t *testing.T) {
	errs := map[string]string{"name": "Name is required."}
	assert.Equal(t, "Name is required.", FieldError(errs, "name"))
	assert.Empty(t, FieldError(errs, "email"))
	assert.Empty(t, FieldError(nil, "name"))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "abc", TruncateText("abc", 5))
	assert.Equal(t, "ab…", TruncateText("abcdef", 3))
	assert.Equal(t, "abcdef", TruncateText("abcdef", "x"))
}

func TestTimeFuncs_AcceptTimestamp(t *testing.T) {
	ts := model.NewTimestamp(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	assert.NotEmpty(t, friendlyTime(ts))
	assert.NotEmpty(t, friendlyTime(&ts))
	assert.Empty(t, friendlyTime((*model.Timestamp)(nil)))
	assert.Empty(t, friendlyTime("2024-05-01"))

	tag := string(timeTag(ts))
	assert.True(t, strings.HasPrefix(tag, `<time datetime="2024-05-01T12:00:00Z"`), tag)
}

func TestRenderSection(t *testing.T) {
	var tmpl *template.Template
	funcs := Funcs(Deps{
		Template:           &tmpl,
		ContentTemplateFor: func(page string) string { return page + "-content" },
	})
	tmpl = template.Must(template.New("root").Funcs(funcs).Parse(
		`{{define "teams-content"}}<p>{{.}}</p>{{end}}{{define "page"}}{{renderSection "teams" .}}{{end}}`,
	))

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, "page", "<b>"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	assert.Equal(t, "<p>&lt;b&gt;</p>", b.String())
}
