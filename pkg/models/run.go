package models

import "time"

// Error kinds recorded on a tracking run.
const (
	ErrKindUnknownAdapter = "unknown_adapter"
	ErrKindFetch          = "fetch"
	ErrKindStore          = "store"
)

// RunError is one pair-scoped failure captured during a run.
type RunError struct {
	PairID  int64  `json:"pair_id"`
	ItemID  string `json:"item_id"`
	Adapter string `json:"adapter"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PairOutcome is the per-pair result of one tracking run.
type PairOutcome struct {
	PairID      int64  `json:"pair_id"`
	ItemID      string `json:"item_id"`
	Adapter     string `json:"adapter"`
	NewChapters int    `json:"new_chapters"`
	Failed      bool   `json:"failed"`
}

// RunResult aggregates a whole tracking run. Individual pair failures
// never fail the run; they show up in Errors instead.
type RunResult struct {
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	PairsAttempted int           `json:"pairs_attempted"`
	PairsSkipped   int           `json:"pairs_skipped"`
	NewChapters    int           `json:"new_chapters"`
	Outcomes       []PairOutcome `json:"outcomes"`
	Errors         []RunError    `json:"errors"`

	// Chapters discovered this run, for the notification collaborator.
	Discovered []PersistedChapter `json:"discovered,omitempty"`
}
