package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"scantrack/pkg/models"
)

// SQLStore implements Store over the sqlite schema in pkg/database.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) FindTrackedPairs(ctx context.Context, f PairFilter) ([]models.TrackedPair, error) {
	var where []string
	var args []any

	if f.ItemID != "" {
		where = append(where, "item_id = ?")
		args = append(args, f.ItemID)
	}
	if f.Adapter != "" {
		where = append(where, "adapter = ?")
		args = append(args, f.Adapter)
	}
	if f.OnlyVerified {
		where = append(where, "verified = 1")
	}
	if f.OnlyActive {
		where = append(where, "active = 1")
	}

	sqlStr := `SELECT id, item_id, adapter, source_url, verified, active FROM tracked_pairs`
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	sqlStr += " ORDER BY item_id, adapter"
	if f.Limit > 0 {
		sqlStr += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("find pairs query: %w", err)
	}
	defer rows.Close()

	var out []models.TrackedPair
	for rows.Next() {
		var p models.TrackedPair
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Adapter, &p.SourceURL, &p.Verified, &p.Active); err != nil {
			return nil, fmt.Errorf("find pairs scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find pairs rows: %w", err)
	}
	return out, nil
}

func (s *SQLStore) ChapterExists(ctx context.Context, pairID int64, key string) (bool, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT 1 FROM chapters WHERE pair_id = ? AND chapter_key = ? LIMIT 1
	`, pairID, key)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("chapter exists scan: %w", err)
	}
	return true, nil
}

func (s *SQLStore) InsertChapter(ctx context.Context, pairID int64, ch models.CanonicalChapter) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO chapters (pair_id, chapter_key, title, url, published_at, detected_at, read)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, pairID, ch.Key, ch.Title, ch.URL, ch.Published, ch.DetectedAt)
	if err != nil {
		// Only the (pair_id, chapter_key) uniqueness violation is a
		// duplicate; other constraint failures (a pair deleted mid-run
		// trips the foreign key) must surface as real errors.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert chapter: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert chapter id: %w", err)
	}
	return id, nil
}

// ListUnread returns unread chapters across all pairs, newest
// discoveries first, numerically-highest chapters first within a batch.
func (s *SQLStore) ListUnread(ctx context.Context, limit, offset int) ([]models.PersistedChapter, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.id, c.pair_id, p.item_id, p.adapter, c.chapter_key, c.title, c.url,
		       c.published_at, c.detected_at, c.read
		FROM chapters c
		JOIN tracked_pairs p ON p.id = c.pair_id
		WHERE c.read = 0
		ORDER BY c.detected_at DESC, CAST(c.chapter_key AS REAL) DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list unread query: %w", err)
	}
	defer rows.Close()

	var out []models.PersistedChapter
	for rows.Next() {
		var (
			c         models.PersistedChapter
			title     sql.NullString
			published sql.NullTime
		)
		if err := rows.Scan(
			&c.ID, &c.PairID, &c.ItemID, &c.Adapter, &c.Key, &title, &c.URL,
			&published, &c.DetectedAt, &c.Read,
		); err != nil {
			return nil, fmt.Errorf("list unread scan: %w", err)
		}
		c.Title = title.String
		if published.Valid {
			t := published.Time
			c.Published = &t
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unread rows: %w", err)
	}
	return out, nil
}

// SetRead flips a chapter's read flag. Returns false when the chapter
// does not exist.
func (s *SQLStore) SetRead(ctx context.Context, chapterID int64, read bool) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `UPDATE chapters SET read = ? WHERE id = ?`, read, chapterID)
	if err != nil {
		return false, fmt.Errorf("set read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set read affected: %w", err)
	}
	return n > 0, nil
}
