package models

// Item is a piece of serialized content being tracked (the canonical
// record; per-site bindings live in TrackedPair).
type Item struct {
	ID       string `json:"id"` // slug
	Title    string `json:"title"`
	CoverURL string `json:"cover_url,omitempty"`
}

// TrackedPair binds one item to one site adapter and source URL.
// Tracking only runs for pairs that are both verified and active.
type TrackedPair struct {
	ID        int64  `json:"id"`
	ItemID    string `json:"item_id"`
	Adapter   string `json:"adapter"`
	SourceURL string `json:"source_url"`
	Verified  bool   `json:"verified"`
	Active    bool   `json:"active"`
}
