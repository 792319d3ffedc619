// export-chapters dumps the chapter archive to CSV, one row per
// discovered chapter with its pair context.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"scantrack/pkg/database"
)

func main() {
	var (
		out    = flag.String("out", "data/chapters.csv", "output CSV path")
		itemID = flag.String("item", "", "only export chapters of this item")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportChapters(ctx, db, *out, *itemID); err != nil {
		log.Fatalf("export chapters failed: %v", err)
	}

	log.Printf("exported chapters to %s", *out)
}

func exportChapters(ctx context.Context, db *sql.DB, outPath, itemID string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"item_id", "adapter", "chapter_key", "title", "url", "published_at", "detected_at", "read",
	}); err != nil {
		return err
	}

	query := `
        SELECT p.item_id, p.adapter, c.chapter_key, c.title, c.url,
               c.published_at, c.detected_at, c.read
        FROM chapters c
        JOIN tracked_pairs p ON p.id = c.pair_id
    `
	var args []any
	if itemID != "" {
		query += " WHERE p.item_id = ?"
		args = append(args, itemID)
	}
	query += " ORDER BY p.item_id, p.adapter, c.detected_at"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item        string
			adapterName string
			key         string
			title       sql.NullString
			url         string
			publishedAt sql.NullTime
			detectedAt  time.Time
			read        bool
		)

		if err := rows.Scan(&item, &adapterName, &key, &title, &url, &publishedAt, &detectedAt, &read); err != nil {
			return err
		}

		published := ""
		if publishedAt.Valid {
			published = publishedAt.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{
			item,
			adapterName,
			key,
			title.String,
			url,
			published,
			detectedAt.Format(time.RFC3339),
			strconv.FormatBool(read),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
