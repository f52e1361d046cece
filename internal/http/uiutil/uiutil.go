// Package uiutil holds display formatting shared by templates and handlers.
package uiutil

import (
	"strconv"
	"strings"
	"time"
)

// FriendlyDateTimeLayout is how ticket and equipment dates are shown.
const FriendlyDateTimeLayout = "Jan 2, 2006 3:04 PM"

// relativeUnits are tried in order; past a week the absolute date is shown.
//
//nolint:gochecknoglobals // static read-only table
var relativeUnits = []struct {
	limit time.Duration
	size  time.Duration
	name  string
}{
	{limit: time.Hour, size: time.Minute, name: "minute"},
	{limit: 24 * time.Hour, size: time.Hour, name: "hour"},
	{limit: 7 * 24 * time.Hour, size: 24 * time.Hour, name: "day"},
}

// FriendlyRelativeTime describes t relative to the current time.
func FriendlyRelativeTime(t time.Time) string {
	return RelativeTo(t, time.Now())
}

// RelativeTo describes t relative to now ("3 hours ago"). Future times and
// anything under a minute read "just now".
func RelativeTo(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < time.Minute {
		return "just now"
	}
	for _, u := range relativeUnits {
		if diff >= u.limit {
			continue
		}
		n := int(diff / u.size)
		if n == 1 {
			return "1 " + u.name + " ago"
		}
		return strconv.Itoa(n) + " " + u.name + "s ago"
	}
	return FormatFriendlyDateTime(t)
}

// FormatFriendlyDateTime formats t in local time; the zero time is "".
func FormatFriendlyDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(FriendlyDateTimeLayout)
}

// TruncateWithEllipsis cuts text to limit runes including the ellipsis.
func TruncateWithEllipsis(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
