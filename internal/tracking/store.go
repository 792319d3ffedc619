package tracking

import (
	"context"
	"errors"

	"scantrack/pkg/models"
)

// ErrDuplicateKey reports an insert that lost the race for a
// (pair, chapter key) slot. The engine treats it as "already exists,
// skip" — it is an expected condition, not a failure.
var ErrDuplicateKey = errors.New("duplicate chapter key")

// PairFilter narrows which tracked pairs a run covers.
type PairFilter struct {
	ItemID       string
	Adapter      string
	OnlyVerified bool
	OnlyActive   bool
	Limit        int
}

// Store is the persistence boundary the engine consumes. The chapter
// store must enforce (pair, chapter key) uniqueness itself;
// InsertChapter returns ErrDuplicateKey instead of corrupting state
// when two inserts race.
type Store interface {
	FindTrackedPairs(ctx context.Context, f PairFilter) ([]models.TrackedPair, error)
	ChapterExists(ctx context.Context, pairID int64, key string) (bool, error)
	InsertChapter(ctx context.Context, pairID int64, ch models.CanonicalChapter) (int64, error)
}
