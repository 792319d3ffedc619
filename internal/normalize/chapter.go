// Package normalize holds the pure normalization rules shared by all
// site adapters: chapter labels -> canonical chapter keys, and raw date
// text -> absolute timestamps.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Prefixes seen across scanlator sites: "Chapter 42", "Ch. 42",
	// "Cap. 42", "Episode 100". Longer alternatives first.
	chapterPrefix = regexp.MustCompile(`(?i)\b(chapter|episode|cap|ch|ep)\b\.?[\s:.\-]*`)

	numericToken = regexp.MustCompile(`\d+(?:\.\d+)?`)
	numericKey   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// ChapterKey reduces a raw chapter label to its canonical key.
//
//	"Chapter 42"           -> "42"
//	"Ch. 42.5"             -> "42.5"
//	"Chapter 42: The End"  -> "42"
//	"First Chapter"        -> "1"
//	"One-shot"             -> "One-shot" (non-numeric fallback key)
//
// The numeric substring is returned verbatim, so "042" is not collapsed
// to "42". Labels with no numeric token fall back to the trimmed
// original text; that is a valid key, not an error.
func ChapterKey(label string) string {
	clean := strings.TrimSpace(chapterPrefix.ReplaceAllString(label, " "))

	if strings.EqualFold(clean, "first") {
		return "1"
	}

	if m := numericToken.FindString(clean); m != "" {
		return m
	}

	return strings.TrimSpace(label)
}

// KeyValue parses a chapter key as a number. ok is false for
// non-numeric fallback keys.
func KeyValue(key string) (v float64, ok bool) {
	if !numericKey.MatchString(key) {
		return 0, false
	}
	v, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// KeyLess orders chapter keys: numeric keys compare by value, and every
// numeric key sorts before every non-numeric one. Non-numeric keys
// compare by their original text.
func KeyLess(a, b string) bool {
	av, aok := KeyValue(a)
	bv, bok := KeyValue(b)

	switch {
	case aok && bok:
		return av < bv
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}
