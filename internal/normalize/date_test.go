package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

func TestDateRelative(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"2 days ago", now.Add(-48 * time.Hour)},
		{"1 day ago", now.Add(-24 * time.Hour)},
		{"3 hours ago", now.Add(-3 * time.Hour)},
		{"45 minutes ago", now.Add(-45 * time.Minute)},
		{"30 seconds ago", now.Add(-30 * time.Second)},
		{"1 week ago", now.Add(-7 * 24 * time.Hour)},
		{"2 months ago", now.Add(-60 * 24 * time.Hour)},
		{"1 year ago", now.Add(-365 * 24 * time.Hour)},
		{"yesterday", now.Add(-24 * time.Hour)},
		{"Today", now},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := DateOK(tt.text, now)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateAbsolute(t *testing.T) {
	want := time.Date(2025, 9, 11, 0, 0, 0, 0, time.UTC)

	tests := []string{
		"September 11, 2025",
		"Sep 11, 2025",
		"2025-09-11",
		"September 11th 2025",
		"11/09/2025",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			got, ok := DateOK(text, now)
			assert.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestDateFallback(t *testing.T) {
	for _, text := range []string{"", "soon", "???", "next thursday-ish"} {
		got, ok := DateOK(text, now)
		assert.False(t, ok, "text %q should fall back", text)
		assert.Equal(t, now, got)
	}

	// Date never fails; it just returns the reference clock.
	assert.Equal(t, now, Date("garbage", now))
}

func TestDateDeterministic(t *testing.T) {
	a := Date("2 weeks ago", now)
	b := Date("2 weeks ago", now)
	assert.Equal(t, a, b)
}
