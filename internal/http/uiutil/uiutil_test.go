package uiutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTo(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{ago: -time.Hour, want: "just now"},
		{ago: 30 * time.Second, want: "just now"},
		{ago: time.Minute, want: "1 minute ago"},
		{ago: 45 * time.Minute, want: "45 minutes ago"},
		{ago: time.Hour, want: "1 hour ago"},
		{ago: 23 * time.Hour, want: "23 hours ago"},
		{ago: 24 * time.Hour, want: "1 day ago"},
		{ago: 6 * 24 * time.Hour, want: "6 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeTo(now.Add(-tt.ago), now), tt.ago.String())
	}

	old := now.Add(-30 * 24 * time.Hour)
	assert.Equal(t, FormatFriendlyDateTime(old), RelativeTo(old, now))
}

func TestFormatFriendlyDateTime(t *testing.T) {
	assert.Empty(t, FormatFriendlyDateTime(time.Time{}))
	ts := time.Date(2024, 5, 1, 15, 4, 0, 0, time.Local)
	assert.Equal(t, "May 1, 2024 3:04 PM", FormatFriendlyDateTime(ts))
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "Oil leak", TruncateWithEllipsis("Oil leak", 8))
	assert.Equal(t, "Oil…", TruncateWithEllipsis("Oil leak under press", 5))
	assert.Equal(t, "…", TruncateWithEllipsis("Hydraulic Press", 1))
	assert.Equal(t, "Prüf…", TruncateWithEllipsis("Prüfstand", 5))
}
