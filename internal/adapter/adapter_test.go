package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scantrack/pkg/models"
)

var testNow = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

func TestFinishChaptersNumericSort(t *testing.T) {
	entries := []models.RawChapter{
		{Label: "Chapter 10", URL: "u10"},
		{Label: "Chapter 1", URL: "u1"},
		{Label: "Chapter 2", URL: "u2"},
	}

	got := finishChapters(entries, testNow)

	labels := make([]string, 0, len(got))
	for _, e := range got {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"Chapter 1", "Chapter 2", "Chapter 10"}, labels)
}

func TestFinishChaptersDedupeByKey(t *testing.T) {
	entries := []models.RawChapter{
		{Label: "Chapter 2", URL: "first", DateText: "2 days ago"},
		{Label: "Ch. 2", URL: "repeat", DateText: "2 days ago"},
		{Label: "Chapter 1", URL: "u1", DateText: "3 days ago"},
	}

	got := finishChapters(entries, testNow)

	assert.Len(t, got, 2)
	assert.Equal(t, "Chapter 1", got[0].Label)
	// first occurrence of key "2" wins
	assert.Equal(t, "first", got[1].URL)
}

func TestFinishChaptersNonNumericAfterNumeric(t *testing.T) {
	entries := []models.RawChapter{
		{Label: "Extra", DateText: "1 day ago"},
		{Label: "Chapter 3"},
		{Label: "One-shot", DateText: "5 days ago"},
		{Label: "Chapter 1.5"},
	}

	got := finishChapters(entries, testNow)

	assert.Equal(t, "Chapter 1.5", got[0].Label)
	assert.Equal(t, "Chapter 3", got[1].Label)
	// non-numeric keys sort after, lexicographically
	assert.Equal(t, "Extra", got[2].Label)
	assert.Equal(t, "One-shot", got[3].Label)
}

func TestFinishChaptersTieBreakByDate(t *testing.T) {
	// "042" and "42" are distinct keys with equal numeric value; the
	// published date decides their order.
	entries := []models.RawChapter{
		{Label: "Chapter 42", DateText: "1 day ago"},
		{Label: "Chapter 042", DateText: "3 days ago"},
	}

	got := finishChapters(entries, testNow)

	assert.Len(t, got, 2)
	assert.Equal(t, "Chapter 042", got[0].Label)
	assert.Equal(t, "Chapter 42", got[1].Label)
}
