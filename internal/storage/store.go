// Package storage is a SQLite-backed table store. Each spreadsheet holds named
// worksheets whose rows are kept as JSON arrays of entered cell values.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"jizhang/internal/sheets"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

type spreadsheet struct {
	s     *Store
	id    string
	title string
}

type worksheet struct {
	s    *Store
	id   int64
	name string
}

var (
	_ sheets.Client      = (*Store)(nil)
	_ sheets.Spreadsheet = (*spreadsheet)(nil)
	_ sheets.Table       = (*worksheet)(nil)
)

// Open opens (creating if needed) the database at dbPath and migrates it.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	version, err := migrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("sqlite store ready", "path", dbPath, "schema_version", version)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// EnsureSpreadsheet registers a spreadsheet if no spreadsheet with that id exists.
func (s *Store) EnsureSpreadsheet(ctx context.Context, id, title string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO spreadsheets (id, title) VALUES (?, ?)`, id, title)
	if err != nil {
		return fmt.Errorf("create spreadsheet %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.InfoContext(ctx, "created local spreadsheet", "id", id, "title", title)
	}
	return nil
}

func (s *Store) OpenByID(ctx context.Context, id string) (sheets.Spreadsheet, error) {
	var title string
	err := s.db.QueryRowContext(ctx, `SELECT title FROM spreadsheets WHERE id = ?`, id).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spreadsheet %s: %w", id, sheets.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", id, err)
	}
	return &spreadsheet{s: s, id: id, title: title}, nil
}

func (s *Store) OpenByName(ctx context.Context, name string) (sheets.Spreadsheet, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM spreadsheets WHERE title = ? ORDER BY created_at, id LIMIT 1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spreadsheet named %q: %w", name, sheets.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("search spreadsheet %q: %w", name, err)
	}
	return &spreadsheet{s: s, id: id, title: name}, nil
}

func (ss *spreadsheet) ID() string    { return ss.id }
func (ss *spreadsheet) Title() string { return ss.title }

func (ss *spreadsheet) Table(ctx context.Context, name string) (sheets.Table, bool, error) {
	var id int64
	err := ss.s.db.QueryRowContext(ctx,
		`SELECT id FROM worksheets WHERE spreadsheet_id = ? AND name = ?`, ss.id, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup worksheet %s: %w", name, err)
	}
	return &worksheet{s: ss.s, id: id, name: name}, true, nil
}

func (ss *spreadsheet) AddTable(ctx context.Context, name string, rows, cols int) (sheets.Table, error) {
	res, err := ss.s.db.ExecContext(ctx,
		`INSERT INTO worksheets (spreadsheet_id, name, row_count, col_count) VALUES (?, ?, ?, ?)`,
		ss.id, name, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("add worksheet %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("add worksheet %s: %w", name, err)
	}
	return &worksheet{s: ss.s, id: id, name: name}, nil
}

func (w *worksheet) Name() string { return w.name }

func (w *worksheet) AppendRow(ctx context.Context, values []any) error {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = sheets.EnteredValue(v)
	}
	raw, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if _, err := w.s.db.ExecContext(ctx,
		`INSERT INTO worksheet_rows (worksheet_id, cells) VALUES (?, ?)`, w.id, string(raw)); err != nil {
		return fmt.Errorf("append to %s: %w", w.name, err)
	}
	return nil
}

func (w *worksheet) Values(ctx context.Context) ([][]string, error) {
	rows, err := w.s.db.QueryContext(ctx,
		`SELECT cells FROM worksheet_rows WHERE worksheet_id = ? ORDER BY id`, w.id)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", w.name, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", w.name, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decode row of %s: %w", w.name, err)
		}
		end := len(cells)
		for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
			end--
		}
		out = append(out, cells[:end])
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", w.name, err)
	}
	return out, nil
}
