// Package catalog manages the tracked items and their (item, adapter)
// pairs. Pairs start unverified; the tracking engine only ever touches
// pairs a user has verified.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"scantrack/pkg/models"
)

var (
	ErrItemMissing = errors.New("item does not exist")
	ErrPairExists  = errors.New("pair already exists for this item and adapter")
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Q      string // keyword search in title
	Limit  int
	Offset int
}

func (r *Repo) UpsertItem(ctx context.Context, item models.Item) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO items (id, title, cover_url)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, cover_url = excluded.cover_url
	`, item.ID, item.Title, item.CoverURL)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

func (r *Repo) GetItem(ctx context.Context, id string) (*models.Item, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, cover_url FROM items WHERE id = ?
	`, id)

	var (
		it       models.Item
		coverURL sql.NullString
	)
	if err := row.Scan(&it.ID, &it.Title, &coverURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item scan: %w", err)
	}
	it.CoverURL = coverURL.String
	return &it, nil
}

func (r *Repo) CountItems(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildItemsSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count items scan: %w", err)
	}
	return total, nil
}

func (r *Repo) ListItems(ctx context.Context, q ListQuery) ([]models.Item, error) {
	sqlStr, args := buildItemsSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list items query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Item, 0, q.Limit)
	for rows.Next() {
		var (
			it       models.Item
			coverURL sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Title, &coverURL); err != nil {
			return nil, fmt.Errorf("list items scan: %w", err)
		}
		it.CoverURL = coverURL.String
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items rows: %w", err)
	}
	return out, nil
}

func buildItemsSQL(q ListQuery, countOnly bool) (string, []any) {
	sqlStr := `SELECT id, title, cover_url FROM items`
	if countOnly {
		sqlStr = `SELECT COUNT(*) FROM items`
	}

	var args []any
	if kw := strings.TrimSpace(q.Q); kw != "" {
		sqlStr += " WHERE LOWER(title) LIKE ?"
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}

	if !countOnly {
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		sqlStr += " ORDER BY title ASC LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}
	return sqlStr, args
}

// CreatePair registers a new (item, adapter) pair. New pairs are
// unverified and active.
func (r *Repo) CreatePair(ctx context.Context, itemID, adapterName, sourceURL string) (*models.TrackedPair, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO tracked_pairs (item_id, adapter, source_url, verified, active)
		VALUES (?, ?, ?, 0, 1)
	`, itemID, adapterName, sourceURL)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) {
			switch sqliteErr.ExtendedCode {
			case sqlite3.ErrConstraintUnique:
				return nil, ErrPairExists
			case sqlite3.ErrConstraintForeignKey:
				return nil, ErrItemMissing
			}
		}
		return nil, fmt.Errorf("create pair: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create pair id: %w", err)
	}
	return &models.TrackedPair{
		ID:        id,
		ItemID:    itemID,
		Adapter:   adapterName,
		SourceURL: sourceURL,
		Verified:  false,
		Active:    true,
	}, nil
}

func (r *Repo) GetPair(ctx context.Context, id int64) (*models.TrackedPair, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, item_id, adapter, source_url, verified, active
		FROM tracked_pairs WHERE id = ?
	`, id)

	var p models.TrackedPair
	if err := row.Scan(&p.ID, &p.ItemID, &p.Adapter, &p.SourceURL, &p.Verified, &p.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pair scan: %w", err)
	}
	return &p, nil
}

func (r *Repo) ListPairs(ctx context.Context, itemID string) ([]models.TrackedPair, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, item_id, adapter, source_url, verified, active
		FROM tracked_pairs
		WHERE item_id = ?
		ORDER BY adapter
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list pairs query: %w", err)
	}
	defer rows.Close()

	var out []models.TrackedPair
	for rows.Next() {
		var p models.TrackedPair
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Adapter, &p.SourceURL, &p.Verified, &p.Active); err != nil {
			return nil, fmt.Errorf("list pairs scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pairs rows: %w", err)
	}
	return out, nil
}

func (r *Repo) SetPairVerified(ctx context.Context, id int64, verified bool) (bool, error) {
	return r.setPairFlag(ctx, "verified", id, verified)
}

func (r *Repo) SetPairActive(ctx context.Context, id int64, active bool) (bool, error) {
	return r.setPairFlag(ctx, "active", id, active)
}

func (r *Repo) setPairFlag(ctx context.Context, column string, id int64, value bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tracked_pairs SET `+column+` = ? WHERE id = ?`, value, id)
	if err != nil {
		return false, fmt.Errorf("set pair %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set pair %s affected: %w", column, err)
	}
	return n > 0, nil
}

// DeletePair removes a pair and, through the schema's cascade, its
// chapters.
func (r *Repo) DeletePair(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tracked_pairs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete pair: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete pair affected: %w", err)
	}
	return n > 0, nil
}
