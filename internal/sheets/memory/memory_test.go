package memory

import (
	"context"
	"errors"
	"testing"

	"jizhang/internal/sheets"
)

func TestAppendAndValues(t *testing.T) {
	ctx := context.Background()
	s := New()
	ss := s.Create("sid", "Family_Expenses")
	tbl, err := ss.AddTable(ctx, "data", 2000, 10)
	if err != nil {
		t.Fatalf("AddTable: %v", err)
	}
	if err := tbl.AppendRow(ctx, []any{"a", "b", "c"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := tbl.AppendRow(ctx, []any{"2024-05-01", "120.50", "", ""}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	got, err := tbl.Values(ctx)
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if len(got[1]) != 2 {
		t.Errorf("trailing empties should be trimmed, got %q", got[1])
	}
	if got[1][1] != "120.5" {
		t.Errorf("numeric text should be normalised, got %q", got[1][1])
	}
	if s.TablesAdded() != 1 {
		t.Errorf("TablesAdded = %d", s.TablesAdded())
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Create("sid", "Family_Expenses")

	if _, err := s.OpenByID(ctx, "sid"); err != nil {
		t.Fatalf("OpenByID: %v", err)
	}
	if _, err := s.OpenByID(ctx, "other"); !errors.Is(err, sheets.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	ss, err := s.OpenByName(ctx, "Family_Expenses")
	if err != nil || ss.ID() != "sid" {
		t.Fatalf("OpenByName = %v, %v", ss, err)
	}
	if _, err := s.OpenByName(ctx, "nope"); !errors.Is(err, sheets.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTableLookup(t *testing.T) {
	ctx := context.Background()
	s := New()
	ss := s.Create("sid", "x")
	if _, ok, err := ss.Table(ctx, "data"); ok || err != nil {
		t.Fatalf("expected not found without error, got ok=%v err=%v", ok, err)
	}
	if err := s.Seed("sid", "list", [][]string{{"h"}, {"v"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	tbl, ok, err := ss.Table(ctx, "list")
	if !ok || err != nil {
		t.Fatalf("expected list table, got ok=%v err=%v", ok, err)
	}
	if tbl.Name() != "list" {
		t.Errorf("Name() = %q", tbl.Name())
	}
	if _, err := ss.AddTable(ctx, "list", 10, 10); err == nil {
		t.Error("adding a duplicate table should fail")
	}
	if err := s.Seed("missing", "list", nil); !errors.Is(err, sheets.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
