package tracking

import "time"

// Event types published by the engine.
const (
	EventRunStarted  = "run.started"
	EventChapterNew  = "chapter.new"
	EventPairDone    = "pair.done"
	EventRunFinished = "run.finished"
)

type TrackingEvent struct {
	Type        string    `json:"type"`
	PairID      int64     `json:"pair_id,omitempty"`
	ItemID      string    `json:"item_id,omitempty"`
	Adapter     string    `json:"adapter,omitempty"`
	ChapterKey  string    `json:"chapter_key,omitempty"`
	ChapterURL  string    `json:"chapter_url,omitempty"`
	Pairs       int       `json:"pairs,omitempty"`
	NewChapters int       `json:"new_chapters,omitempty"`
	Failed      bool      `json:"failed,omitempty"`
	At          time.Time `json:"at"`
}

// EventSink receives engine events. Implementations must not block for
// long; the engine publishes from its worker goroutines.
type EventSink interface {
	Publish(ev TrackingEvent)
}

// MultiSink fans one event out to several sinks.
type MultiSink []EventSink

func (m MultiSink) Publish(ev TrackingEvent) {
	for _, s := range m {
		s.Publish(ev)
	}
}
