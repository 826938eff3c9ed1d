package sheets_test

import (
	"context"
	"errors"
	"testing"

	"jizhang/internal/sheets"
	"jizhang/internal/sheets/memory"

	"github.com/shopspring/decimal"
)

var header = []string{"日期", "金額", "分類", "付款方式", "備註", "使用人", "建立時間"}

func TestOpen_FallsBackToName(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Create("real-id", "Family_Expenses")

	ss, err := sheets.Open(ctx, store, "stale-id", "Family_Expenses")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ss.ID() != "real-id" {
		t.Errorf("ID() = %q", ss.ID())
	}

	ss, err = sheets.Open(ctx, store, "real-id", "")
	if err != nil || ss.Title() != "Family_Expenses" {
		t.Fatalf("Open by id: %v", err)
	}
}

func TestOpen_NotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, err := sheets.Open(ctx, store, "a", "b")
	var nf *sheets.SpreadsheetNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected SpreadsheetNotFoundError, got %v", err)
	}
	if nf.ID != "a" || nf.Name != "b" {
		t.Errorf("unexpected error fields %+v", nf)
	}
	if !errors.Is(err, sheets.ErrNotFound) {
		t.Error("underlying adapter errors should be wrapped")
	}

	if _, err := sheets.Open(ctx, store, " ", ""); !errors.As(err, &nf) {
		t.Fatalf("expected SpreadsheetNotFoundError for blank identifiers, got %v", err)
	}
}

func TestEnsureTable_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ss := store.Create("sid", "Family_Expenses")

	first, err := sheets.EnsureTable(ctx, ss, "data", header)
	if err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if err := first.AppendRow(ctx, []any{"2024-05-01", "100", "餐飲", "現金", "", "Rick", "2024-05-01"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	second, err := sheets.EnsureTable(ctx, ss, "data", header)
	if err != nil {
		t.Fatalf("EnsureTable again: %v", err)
	}
	if store.TablesAdded() != 1 {
		t.Errorf("expected exactly one table created, got %d", store.TablesAdded())
	}
	rows, err := second.Values(ctx)
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}
	for i, h := range header {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
}

func TestEnsureTable_TrustsExistingHeader(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ss := store.Create("sid", "x")
	if err := store.Seed("sid", "data", [][]string{{"legacy"}}); err != nil {
		t.Fatal(err)
	}
	tbl, err := sheets.EnsureTable(ctx, ss, "data", header)
	if err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	rows, _ := tbl.Values(ctx)
	if len(rows) != 1 || rows[0][0] != "legacy" {
		t.Errorf("existing header must not be rewritten, got %v", rows)
	}
}

func TestEnteredValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"120", "120"},
		{"120.50", "120.5"},
		{" 42 ", "42"},
		{"abc", "abc"},
		{"2024-05-01", "2024-05-01"},
		{"1e3", "1e3"},
		{"'007", "007"},
		{nil, ""},
		{12, "12"},
		{decimal.RequireFromString("3.10"), "3.1"},
	}
	for _, tc := range cases {
		if got := sheets.EnteredValue(tc.in); got != tc.want {
			t.Errorf("EnteredValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
