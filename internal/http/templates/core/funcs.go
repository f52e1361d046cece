package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/target/maintdesk/internal/domain/model"
	"github.com/target/maintdesk/internal/http/uiutil"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":   deps.ContentTemplateFor,
		"friendlyTime":  friendlyTime,
		"relativeTime":  relativeTime,
		"timeTag":       timeTag,
		"add":           func(a, b int) int { return a + b },
		"contains":      strings.Contains,
		"statusClass":   StatusClass,
		"statusLabel":   StatusLabel,
		"priorityLabel": PriorityLabel,
		"deref":         Deref,
		"truncateText":  TruncateText,
		"fieldError":    FieldError,
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template set; values were escaped during ExecuteTemplate.
		return template.HTML(buf.String()), nil
	}

	funcs["toJSON"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// toTime accepts the time shapes that reach templates.
func toTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case model.Timestamp:
		return v.Time
	case *model.Timestamp:
		if v != nil {
			return v.Time
		}
	}
	return time.Time{}
}

func friendlyTime(ts any) string {
	t0 := toTime(ts)
	if t0.IsZero() {
		return ""
	}
	return uiutil.FormatFriendlyDateTime(t0)
}

func relativeTime(ts any) string {
	t0 := toTime(ts)
	if t0.IsZero() {
		return ""
	}
	return uiutil.FriendlyRelativeTime(t0)
}

func timeTag(ts any) template.HTML {
	t0 := toTime(ts)
	if t0.IsZero() {
		return ""
	}
	friendly := uiutil.FormatFriendlyDateTime(t0)
	dt := t0.UTC().Format(time.RFC3339)
	title := t0.Local().Format(time.RFC1123)
	// #nosec G203 - constructed from escaped values only
	return template.HTML(
		fmt.Sprintf(
			"<time datetime=\"%s\" title=\"%s\">%s</time>",
			dt,
			template.HTMLEscapeString(title),
			template.HTMLEscapeString(friendly),
		),
	)
}

// StatusClass maps a ticket status to its badge class.
func StatusClass(status model.TicketStatus) string {
	switch status {
	case model.StatusNew:
		return "badge-info"
	case model.StatusInProgress:
		return "badge-warning"
	case model.StatusRepaired:
		return "badge-success"
	case model.StatusScrap:
		return "badge-danger"
	default:
		return "badge-light"
	}
}

// StatusLabel renders a ticket status for humans, e.g. IN_PROGRESS → "In progress".
func StatusLabel(status model.TicketStatus) string {
	s := strings.ToLower(strings.ReplaceAll(string(status), "_", " "))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// PriorityLabel names a ticket priority.
func PriorityLabel(p int) string {
	switch p {
	case 0:
		return "Low"
	case 1:
		return "Normal"
	case 2:
		return "High"
	case model.MaxTicketPriority:
		return "Urgent"
	default:
		return fmt.Sprintf("P%d", p)
	}
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(v any) string {
	switch p := v.(type) {
	case *string:
		if p != nil {
			return *p
		}
	case string:
		return p
	case *float64:
		if p != nil {
			return fmt.Sprintf("%g", *p)
		}
	}
	return ""
}

// FieldError returns the message for field from a form's error map, if any.
func FieldError(errs any, field string) string {
	m, ok := errs.(map[string]string)
	if !ok {
		return ""
	}
	return m[field]
}

// TruncateText truncates a string to a maximum number of runes (not bytes).
// The maxLen parameter can be any numeric type for template flexibility.
func TruncateText(s string, maxLen any) string {
	n, ok := toIntSafe(maxLen)
	if !ok || n <= 0 {
		return s
	}
	return uiutil.TruncateWithEllipsis(s, n)
}

func toIntSafe(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	default:
		return 0, false
	}
}
