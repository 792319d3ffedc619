package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	relativeRe = regexp.MustCompile(`(?i)(\d+)\s*(second|minute|hour|day|week|month|year)s?\s+ago`)
	ordinalRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
)

// Absolute formats seen on the supported sites. Day-first before
// month-first for the slash forms, matching what the sites publish.
var dateLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"02/01/2006",
	"01/02/2006",
}

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// Date turns raw site date text into an absolute timestamp. now is
// passed explicitly so the function stays deterministic and testable.
// Unparseable input falls back to now: a missing or odd date must never
// abort chapter discovery.
func Date(text string, now time.Time) time.Time {
	t, _ := DateOK(text, now)
	return t
}

// DateOK is Date plus a flag reporting whether the text was actually
// parsed (false means the now fallback was used).
func DateOK(text string, now time.Time) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return now, false
	}
	lower := strings.ToLower(trimmed)

	if m := relativeRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			switch m[2] {
			case "second":
				return now.Add(-time.Duration(n) * time.Second), true
			case "minute":
				return now.Add(-time.Duration(n) * time.Minute), true
			case "hour":
				return now.Add(-time.Duration(n) * time.Hour), true
			case "day":
				return now.Add(-time.Duration(n) * day), true
			case "week":
				return now.Add(-time.Duration(n) * week), true
			case "month":
				return now.Add(-time.Duration(n) * month), true
			case "year":
				return now.Add(-time.Duration(n) * year), true
			}
		}
	}

	if strings.Contains(lower, "yesterday") {
		return now.Add(-day), true
	}
	if strings.Contains(lower, "today") || strings.Contains(lower, "just now") {
		return now, true
	}

	// "January 2nd 2026" -> "January 2 2026"
	cleaned := ordinalRe.ReplaceAllString(trimmed, "$1")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}

	return now, false
}
