package ledger

import (
	"context"
	"errors"
	"testing"

	"jizhang/internal/core"
	"jizhang/internal/frame"
	"jizhang/internal/sheets"
	"jizhang/internal/sheets/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingTable rejects every write and read.
type failingTable struct{ err error }

func (f failingTable) Name() string { return "data" }

func (f failingTable) AppendRow(context.Context, []any) error { return f.err }

func (f failingTable) Values(context.Context) ([][]string, error) { return nil, f.err }

func newDataTable(t *testing.T) (sheets.Table, *memory.Store) {
	t.Helper()
	store := memory.New()
	ss := store.Create("sid", "Family_Expenses")
	tbl, err := sheets.EnsureTable(context.Background(), ss, core.TableExpenses, core.ExpenseHeader)
	require.NoError(t, err)
	return tbl, store
}

func record(day int, amount, category, user string) core.ExpenseRecord {
	return core.ExpenseRecord{
		Date:          core.NewDate(2024, 5, day),
		Amount:        decimal.RequireFromString(amount),
		Category:      category,
		PaymentMethod: "現金",
		User:          user,
		CreatedAt:     core.NewDate(2024, 5, day),
	}
}

func TestAppendThenReadAll(t *testing.T) {
	ctx := context.Background()
	tbl, _ := newDataTable(t)

	require.NoError(t, Append(ctx, tbl, record(1, "100", "餐飲", "Rick")))
	rec := record(2, "45.5", "交通", " Karen ")
	rec.Note = " bus "
	require.NoError(t, Append(ctx, tbl, rec))

	f, err := ReadAll(ctx, tbl)
	require.NoError(t, err)
	assert.Equal(t, core.ExpenseHeader, f.Columns)
	require.Equal(t, 2, f.Len())

	last := f.Rows[1]
	require.Len(t, last, 7)
	want := []string{"2024-05-02", "45.5", "交通", "現金", "bus", "Karen", "2024-05-02"}
	for i, w := range want {
		assert.Equal(t, w, last[i].Raw, "column %s", f.Columns[i])
		assert.Equal(t, frame.Text, last[i].Kind, "ReadAll does not coerce")
	}
}

func TestFetchRecent_Bounds(t *testing.T) {
	ctx := context.Background()
	tbl, _ := newDataTable(t)
	for d := 1; d <= 5; d++ {
		require.NoError(t, Append(ctx, tbl, record(d, "10", "生活", "Max")))
	}

	f, err := FetchRecent(ctx, tbl, 3)
	require.NoError(t, err)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, "2024-05-03", f.Rows[0][0].Raw)
	assert.Equal(t, "2024-05-05", f.Rows[2][0].Raw)
	amount, _ := f.Cell(0, core.ColAmount)
	assert.Equal(t, frame.Number, amount.Kind)

	f, err = FetchRecent(ctx, tbl, 30)
	require.NoError(t, err)
	assert.Equal(t, 5, f.Len(), "fewer rows than the limit returns all of them in order")

	f, err = FetchRecent(ctx, tbl, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, core.ExpenseHeader, f.Columns)
}

func TestFetchRecent_NonNumericAmount(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Create("sid", "x")
	require.NoError(t, store.Seed("sid", "data", [][]string{
		core.ExpenseHeader,
		{"2024-05-01", "abc", "餐飲", "現金", "", "Rick", "2024-05-01"},
		{"2024-05-01", "20", "餐飲", "現金", "", "Rick", "2024-05-01"},
	}))
	ss, _ := store.OpenByID(ctx, "sid")
	tbl, _, _ := ss.Table(ctx, "data")

	f, err := FetchRecent(ctx, tbl, 30)
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())
	c, _ := f.Cell(0, core.ColAmount)
	assert.True(t, c.IsMissing(), "row kept, amount missing")

	entries := Entries(f)
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Amount.Valid)
	assert.True(t, entries[1].Amount.Valid)
	assert.True(t, entries[1].Amount.Decimal.Equal(decimal.NewFromInt(20)))
}

func TestFetchRecent_EmptyShapes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ss := store.Create("sid", "x")

	tbl, err := ss.AddTable(ctx, "blank", 10, 10)
	require.NoError(t, err)
	f, err := FetchRecent(ctx, tbl, 30)
	require.NoError(t, err)
	assert.Empty(t, f.Columns)
	assert.True(t, f.Empty())

	tbl, err = sheets.EnsureTable(ctx, ss, "data", core.ExpenseHeader)
	require.NoError(t, err)
	f, err = FetchRecent(ctx, tbl, 30)
	require.NoError(t, err)
	assert.Equal(t, core.ExpenseHeader, f.Columns)
	assert.True(t, f.Empty())
}

func TestAppend_WriteError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")
	err := Append(ctx, failingTable{err: boom}, record(1, "1", "餐飲", "Rick"))

	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "data", we.Table)
	assert.True(t, errors.Is(err, boom))

	_, err = FetchRecent(ctx, failingTable{err: boom}, 10)
	assert.True(t, errors.Is(err, boom))
}

func TestEntries_ExtraColumns(t *testing.T) {
	f := frame.FromValues([][]string{
		{"日期", "金額", "分類", "付款方式", "備註", "使用人", "建立時間", "標籤"},
		{"2024-05-01", "1,200", "教育", "轉帳", "books", "Mic", "2024-05-01", "school"},
		{"2024-05-02", "5"},
	})
	entries := Entries(f)
	require.Len(t, entries, 2)
	assert.Equal(t, "Mic", entries[0].User)
	assert.True(t, entries[0].Amount.Decimal.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, map[string]string{"標籤": "school"}, entries[0].Extra)
	assert.Nil(t, entries[1].Extra, "missing extra cells are not recorded")
	assert.Equal(t, "", entries[1].User)
}

func TestTrades_Decode(t *testing.T) {
	f := frame.FromValues([][]string{
		core.StockHeader,
		{"2330", "100", "Max", "58000", "2024-03-04", "買"},
	})
	trades := Trades(f)
	require.Len(t, trades, 1)
	assert.Equal(t, "2330", trades[0].Symbol)
	assert.Equal(t, "買", trades[0].Side)
	assert.True(t, trades[0].Shares.Valid)
	assert.Equal(t, "", trades[0].Note)
}
