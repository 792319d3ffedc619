// Package adapter defines the site-adapter contract and the concrete
// adapters for the supported scanlator sites. Each adapter knows one
// site's page structure; everything it returns is already deduplicated
// and sorted oldest -> newest.
package adapter

import (
	"context"
	"fmt"
	"sort"
	"time"

	"scantrack/internal/normalize"
	"scantrack/pkg/models"
)

// SiteAdapter is implemented once per external site. Implementations
// are stateless apart from the injected browsing session, whose
// lifecycle belongs to the caller.
type SiteAdapter interface {
	Name() string

	// Search looks up items by title. An empty result is not an error;
	// a *FetchError means the site could not be reached or read.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)

	// ListChapters returns the complete chapter list for one item page,
	// oldest -> newest, deduplicated by normalized chapter key. The
	// adapter drives any pagination itself.
	ListChapters(ctx context.Context, itemURL string) ([]models.RawChapter, error)
}

// FetchError marks a navigation, timeout, or page-structure failure.
// It is pair-scoped and recoverable: the tracking engine records it and
// moves on.
type FetchError struct {
	Site string
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Site, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// finishChapters applies the shared post-extraction rules: entries
// sharing a normalized chapter key collapse to the first occurrence,
// and the result sorts oldest -> newest (numeric keys by value,
// non-numeric keys after them lexicographically, ties by published
// date).
func finishChapters(entries []models.RawChapter, now time.Time) []models.RawChapter {
	type keyed struct {
		entry     models.RawChapter
		key       string
		published time.Time
	}

	seen := make(map[string]struct{}, len(entries))
	ks := make([]keyed, 0, len(entries))

	for _, e := range entries {
		key := normalize.ChapterKey(e.Label)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ks = append(ks, keyed{
			entry:     e,
			key:       key,
			published: normalize.Date(e.DateText, now),
		})
	}

	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if normalize.KeyLess(a.key, b.key) {
			return true
		}
		if normalize.KeyLess(b.key, a.key) {
			return false
		}
		return a.published.Before(b.published)
	})

	out := make([]models.RawChapter, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.entry)
	}
	return out
}
