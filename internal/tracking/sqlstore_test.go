package tracking

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scantrack/pkg/database"
	"scantrack/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedPair(t *testing.T, db *sql.DB, itemID, adapterName string, verified, active bool) int64 {
	t.Helper()

	_, err := db.Exec(
		`INSERT OR IGNORE INTO items (id, title) VALUES (?, ?)`,
		itemID, itemID,
	)
	require.NoError(t, err)

	res, err := db.Exec(
		`INSERT INTO tracked_pairs (item_id, adapter, source_url, verified, active)
		 VALUES (?, ?, ?, ?, ?)`,
		itemID, adapterName, "https://example.org/"+itemID, verified, active,
	)
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestSQLStoreFindTrackedPairs(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	seedPair(t, db, "solo-max", "ravenscans", true, true)
	seedPair(t, db, "solo-max", "asurascans", false, true)
	seedPair(t, db, "iron-crown", "ravenscans", true, false)

	t.Run("all", func(t *testing.T) {
		pairs, err := store.FindTrackedPairs(ctx, PairFilter{})
		require.NoError(t, err)
		assert.Len(t, pairs, 3)
	})

	t.Run("by item", func(t *testing.T) {
		pairs, err := store.FindTrackedPairs(ctx, PairFilter{ItemID: "solo-max"})
		require.NoError(t, err)
		require.Len(t, pairs, 2)
		assert.Equal(t, "asurascans", pairs[0].Adapter)
		assert.Equal(t, "ravenscans", pairs[1].Adapter)
	})

	t.Run("verified and active", func(t *testing.T) {
		pairs, err := store.FindTrackedPairs(ctx, PairFilter{OnlyVerified: true, OnlyActive: true})
		require.NoError(t, err)
		require.Len(t, pairs, 1)
		assert.Equal(t, "solo-max", pairs[0].ItemID)
		assert.True(t, pairs[0].Verified)
	})

	t.Run("limit", func(t *testing.T) {
		pairs, err := store.FindTrackedPairs(ctx, PairFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, pairs, 1)
	})
}

func TestSQLStoreInsertAndExists(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	pairID := seedPair(t, db, "solo-max", "ravenscans", true, true)

	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	published := now.Add(-48 * time.Hour)

	exists, err := store.ChapterExists(ctx, pairID, "147")
	require.NoError(t, err)
	assert.False(t, exists)

	id, err := store.InsertChapter(ctx, pairID, models.CanonicalChapter{
		Key:        "147",
		Title:      "The Last Dungeon",
		URL:        "https://example.org/solo-max/chapter-147",
		Published:  &published,
		DetectedAt: now,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	exists, err = store.ChapterExists(ctx, pairID, "147")
	require.NoError(t, err)
	assert.True(t, exists)

	// same key again hits the unique constraint
	_, err = store.InsertChapter(ctx, pairID, models.CanonicalChapter{
		Key: "147", URL: "elsewhere", DetectedAt: now,
	})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// same key under a different pair is fine
	otherPair := seedPair(t, db, "solo-max", "asurascans", true, true)
	_, err = store.InsertChapter(ctx, otherPair, models.CanonicalChapter{
		Key: "147", URL: "mirror", DetectedAt: now,
	})
	require.NoError(t, err)
}

func TestSQLStoreInsertForMissingPairIsNotDuplicate(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLStore(db)

	// a pair removed while a run is in flight trips the foreign key;
	// that must not be mistaken for an already-seen chapter
	_, err := store.InsertChapter(context.Background(), 999, models.CanonicalChapter{
		Key:        "1",
		URL:        "https://example.org/gone/chapter-1",
		DetectedAt: time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateKey)
}

func TestSQLStoreUnreadAndRead(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	pairID := seedPair(t, db, "solo-max", "ravenscans", true, true)

	base := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	var lastID int64
	for i, key := range []string{"1", "2", "3"} {
		id, err := store.InsertChapter(ctx, pairID, models.CanonicalChapter{
			Key:        key,
			URL:        "https://example.org/solo-max/chapter-" + key,
			DetectedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		lastID = id
	}

	unread, err := store.ListUnread(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, unread, 3)
	// newest detection first
	assert.Equal(t, "3", unread[0].Key)
	assert.Equal(t, "solo-max", unread[0].ItemID)
	assert.Equal(t, "ravenscans", unread[0].Adapter)
	assert.Nil(t, unread[0].Published)

	ok, err := store.SetRead(ctx, lastID, true)
	require.NoError(t, err)
	assert.True(t, ok)

	unread, err = store.ListUnread(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "2", unread[0].Key)

	ok, err = store.SetRead(ctx, lastID, false)
	require.NoError(t, err)
	assert.True(t, ok)

	unread, err = store.ListUnread(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 3)

	ok, err = store.SetRead(ctx, 99999, true)
	require.NoError(t, err)
	assert.False(t, ok)
}
