// Package memory is a process-local table store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"jizhang/internal/sheets"
)

// Store holds spreadsheets keyed by id. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	sheets map[string]*spreadsheet
	adds   int
}

type spreadsheet struct {
	store  *Store
	id     string
	title  string
	order  []string
	tables map[string]*table
}

type table struct {
	ss   *spreadsheet
	name string
	rows [][]string
}

var (
	_ sheets.Client      = (*Store)(nil)
	_ sheets.Spreadsheet = (*spreadsheet)(nil)
	_ sheets.Table       = (*table)(nil)
)

func New() *Store {
	return &Store{sheets: map[string]*spreadsheet{}}
}

// Create registers an empty spreadsheet and returns it.
func (s *Store) Create(id, title string) sheets.Spreadsheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss := &spreadsheet{store: s, id: id, title: title, tables: map[string]*table{}}
	s.sheets[id] = ss
	return ss
}

// Seed replaces the content of a table, creating it if needed. Rows are stored
// as given, which lets tests build ragged or malformed tables.
func (s *Store) Seed(id, name string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sheets[id]
	if !ok {
		return fmt.Errorf("spreadsheet %s: %w", id, sheets.ErrNotFound)
	}
	t, ok := ss.tables[name]
	if !ok {
		t = &table{ss: ss, name: name}
		ss.tables[name] = t
		ss.order = append(ss.order, name)
	}
	t.rows = make([][]string, len(rows))
	for i, r := range rows {
		t.rows[i] = append([]string(nil), r...)
	}
	return nil
}

// TablesAdded returns how many tables have been created through AddTable.
func (s *Store) TablesAdded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adds
}

func (s *Store) OpenByID(_ context.Context, id string) (sheets.Spreadsheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss, ok := s.sheets[id]; ok {
		return ss, nil
	}
	return nil, fmt.Errorf("spreadsheet %s: %w", id, sheets.ErrNotFound)
}

func (s *Store) OpenByName(_ context.Context, name string) (sheets.Spreadsheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ss := range s.sheets {
		if ss.title == name {
			return ss, nil
		}
	}
	return nil, fmt.Errorf("spreadsheet named %q: %w", name, sheets.ErrNotFound)
}

func (ss *spreadsheet) ID() string    { return ss.id }
func (ss *spreadsheet) Title() string { return ss.title }

func (ss *spreadsheet) Table(_ context.Context, name string) (sheets.Table, bool, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	t, ok := ss.tables[name]
	if !ok {
		return nil, false, nil
	}
	return t, true, nil
}

func (ss *spreadsheet) AddTable(_ context.Context, name string, rows, cols int) (sheets.Table, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	if _, exists := ss.tables[name]; exists {
		return nil, fmt.Errorf("table %q already exists", name)
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid table size %dx%d", rows, cols)
	}
	t := &table{ss: ss, name: name}
	ss.tables[name] = t
	ss.order = append(ss.order, name)
	ss.store.adds++
	return t, nil
}

func (t *table) Name() string { return t.name }

func (t *table) AppendRow(_ context.Context, values []any) error {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = sheets.EnteredValue(v)
	}
	t.ss.store.mu.Lock()
	defer t.ss.store.mu.Unlock()
	t.rows = append(t.rows, row)
	return nil
}

// Values returns a copy of the table with trailing empty cells trimmed from
// each row, as the remote service does.
func (t *table) Values(_ context.Context) ([][]string, error) {
	t.ss.store.mu.Lock()
	defer t.ss.store.mu.Unlock()
	out := make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		end := len(r)
		for end > 0 && strings.TrimSpace(r[end-1]) == "" {
			end--
		}
		out = append(out, append([]string(nil), r[:end]...))
	}
	return out, nil
}
