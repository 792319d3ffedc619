package models

import "time"

// RawChapter is what a site adapter extracts from one chapter row on a
// source page, before any normalization. It only lives for the duration
// of a single tracking invocation.
type RawChapter struct {
	Label    string `json:"label"`     // e.g. "Chapter 42.5: The Battle"
	Title    string `json:"title"`     // display title, often same as Label
	URL      string `json:"url"`       // absolute chapter URL
	DateText string `json:"date_text"` // raw date text, e.g. "2 days ago"
}

// CanonicalChapter is the normalized, persistence-ready form of a chapter.
//
// Key preserves the numeric substring verbatim ("042" stays "042");
// comparison is numeric where possible, see normalize.KeyLess.
type CanonicalChapter struct {
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Published  *time.Time `json:"published,omitempty"`
	DetectedAt time.Time  `json:"detected_at"`
}

// PersistedChapter is a CanonicalChapter as stored, bound to its tracked
// pair. (PairID, Key) is unique in the store.
type PersistedChapter struct {
	ID         int64      `json:"id"`
	PairID     int64      `json:"pair_id"`
	ItemID     string     `json:"item_id,omitempty"`
	Adapter    string     `json:"adapter,omitempty"`
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Published  *time.Time `json:"published,omitempty"`
	DetectedAt time.Time  `json:"detected_at"`
	Read       bool       `json:"read"`
}

// SearchResult is one hit from an adapter's site search.
type SearchResult struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	CoverURL string `json:"cover_url,omitempty"`
}
