package adapter

import (
	"regexp"
	"strings"
)

var wsRe = regexp.MustCompile(`\s+`)

func collapseWS(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// looseDateRe pulls the date fragment out of mixed chapter-row text
// ("Chapter 12 January 3rd 2026", "Chapter 12 2 days ago", ...).
var looseDateRe = regexp.MustCompile(`(?i)` +
	`(?:january|february|march|april|may|june|july|august|september|october|november|december|` +
	`jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}` +
	`|\d+\s+(?:second|minute|hour|day|week|month|year)s?\s+ago` +
	`|yesterday|today`)

func extractDateText(s string) string {
	return looseDateRe.FindString(s)
}
