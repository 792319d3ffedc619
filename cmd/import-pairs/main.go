// import-pairs bulk-loads items and tracked pairs from CSV files so a
// library can be seeded without clicking through the API.
//
// items CSV columns: id, title, cover_url
// pairs CSV columns: item_id, adapter, source_url, verified, active
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"scantrack/pkg/database"
)

func main() {
	var (
		itemsIn = flag.String("items", "data/items.csv", "input CSV path for items")
		pairsIn = flag.String("pairs", "data/pairs.csv", "input CSV path for tracked pairs")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importItems(ctx, db, *itemsIn); err != nil {
		log.Fatalf("import items failed: %v", err)
	}
	if err := importPairs(ctx, db, *pairsIn); err != nil {
		log.Fatalf("import pairs failed: %v", err)
	}

	log.Printf("imported items from %s and pairs from %s", *itemsIn, *pairsIn)
}

func importItems(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO items (id, title, cover_url)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  cover_url = excluded.cover_url
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		title := valueAt(header, row, "title")
		if id == "" || title == "" {
			continue
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			title,
			nullString(valueAt(header, row, "cover_url")),
		); err != nil {
			return err
		}
	}

	return nil
}

func importPairs(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO tracked_pairs (item_id, adapter, source_url, verified, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(item_id, adapter) DO UPDATE SET
			source_url = excluded.source_url,
			verified = excluded.verified,
			active = excluded.active
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		itemID := valueAt(header, row, "item_id")
		adapterName := strings.ToLower(valueAt(header, row, "adapter"))
		sourceURL := valueAt(header, row, "source_url")
		if itemID == "" || adapterName == "" || sourceURL == "" {
			continue
		}

		verified, err := parseBool(valueAt(header, row, "verified"), false)
		if err != nil {
			return fmt.Errorf("parse verified for %s/%s: %w", itemID, adapterName, err)
		}
		active, err := parseBool(valueAt(header, row, "active"), true)
		if err != nil {
			return fmt.Errorf("parse active for %s/%s: %w", itemID, adapterName, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			itemID,
			adapterName,
			sourceURL,
			verified,
			active,
		); err != nil {
			return err
		}
	}

	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseBool(raw string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
