// Package ledger writes expense and trade records to store tables and reads
// them back as frames. The functions here keep no state between calls; every
// read re-fetches the table.
package ledger

import (
	"context"
	"fmt"
	"slices"

	"jizhang/internal/core"
	"jizhang/internal/frame"
	"jizhang/internal/sheets"

	"github.com/shopspring/decimal"
)

// WriteError reports a failed append. The row may or may not have landed.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write to %s failed: %v", e.Table, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Append writes rec as one row of t. The caller is responsible for
// validation and for stamping CreatedAt.
func Append(ctx context.Context, t sheets.Table, rec core.ExpenseRecord) error {
	if err := t.AppendRow(ctx, rec.Row()); err != nil {
		return &WriteError{Table: t.Name(), Err: err}
	}
	return nil
}

// AppendTrade writes trade as one row of t.
func AppendTrade(ctx context.Context, t sheets.Table, trade core.StockTrade) error {
	if err := t.AppendRow(ctx, trade.Row()); err != nil {
		return &WriteError{Table: t.Name(), Err: err}
	}
	return nil
}

// ReadAll returns the whole table with cells as text.
func ReadAll(ctx context.Context, t sheets.Table) (frame.Frame, error) {
	values, err := t.Values(ctx)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("read %s: %w", t.Name(), err)
	}
	return frame.FromValues(values), nil
}

// FetchRecent returns the last limit rows of t with the amount column
// coerced to numbers. A table with only a header yields a frame with
// columns and no rows; an entirely empty table yields no columns at all.
func FetchRecent(ctx context.Context, t sheets.Table, limit int) (frame.Frame, error) {
	f, err := ReadAll(ctx, t)
	if err != nil {
		return frame.Frame{}, err
	}
	return f.CoerceNumeric(core.ColAmount).Tail(limit), nil
}

// Entries decodes expense rows. Cells of unknown columns end up in Extra.
func Entries(f frame.Frame) []core.Entry {
	known := core.ExpenseHeader
	out := make([]core.Entry, 0, f.Len())
	for i := range f.Rows {
		get := textOf(f, i)
		e := core.Entry{
			Date:          get(core.ColDate),
			Amount:        numberOf(f, i, core.ColAmount),
			Category:      get(core.ColCategory),
			PaymentMethod: get(core.ColPayment),
			Note:          get(core.ColNote),
			User:          get(core.ColUser),
			CreatedAt:     get(core.ColCreatedAt),
			Extra:         extra(f, i, known),
		}
		out = append(out, e)
	}
	return out
}

// Trades decodes stock rows.
func Trades(f frame.Frame) []core.Trade {
	known := core.StockHeader
	out := make([]core.Trade, 0, f.Len())
	for i := range f.Rows {
		get := textOf(f, i)
		out = append(out, core.Trade{
			Symbol:    get(core.ColSymbol),
			Shares:    numberOf(f, i, core.ColShares),
			Holder:    get(core.ColHolder),
			Amount:    numberOf(f, i, core.ColTradeAmount),
			TradeDate: get(core.ColTradeDate),
			Side:      get(core.ColSide),
			Note:      get(core.ColTradeNote),
			Extra:     extra(f, i, known),
		})
	}
	return out
}

func textOf(f frame.Frame, row int) func(col string) string {
	return func(col string) string {
		c, ok := f.Cell(row, col)
		if !ok {
			return ""
		}
		return c.String()
	}
}

func numberOf(f frame.Frame, row int, col string) decimal.NullDecimal {
	c, ok := f.Cell(row, col)
	if !ok {
		return decimal.NullDecimal{}
	}
	c = frame.Coerce(c)
	if c.IsMissing() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: c.Num, Valid: true}
}

func extra(f frame.Frame, row int, known []string) map[string]string {
	var m map[string]string
	for j, col := range f.Columns {
		if slices.Contains(known, col) || f.Index(col) != j {
			continue
		}
		c := f.Rows[row][j]
		if c.IsMissing() {
			continue
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[col] = c.Raw
	}
	return m
}
