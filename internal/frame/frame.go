// Package frame holds an in-memory snapshot of a store table: a header row
// naming the columns and data rows addressed by column name.
package frame

import (
	"jizhang/internal/core"

	"github.com/shopspring/decimal"
)

// Kind tells how a cell's value should be read.
type Kind int

const (
	// Text is a raw string as returned by the store. An empty cell is Text with "".
	Text Kind = iota
	// Number is a cell coerced to a decimal.
	Number
	// Missing marks a padded cell or a failed numeric coercion.
	Missing
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "missing"
	}
}

// Cell is one value of a row. Raw keeps the store text even after coercion.
type Cell struct {
	Kind Kind
	Raw  string
	Num  decimal.Decimal
}

// TextCell wraps a raw store string.
func TextCell(s string) Cell { return Cell{Kind: Text, Raw: s} }

// NumberCell wraps a decimal.
func NumberCell(d decimal.Decimal) Cell { return Cell{Kind: Number, Raw: d.String(), Num: d} }

// MissingCell returns a missing value that remembers the original text.
func MissingCell(raw string) Cell { return Cell{Kind: Missing, Raw: raw} }

// IsMissing reports whether the cell carries no usable value.
func (c Cell) IsMissing() bool { return c.Kind == Missing }

// String renders the cell for display: missing cells render empty.
func (c Cell) String() string {
	switch c.Kind {
	case Missing:
		return ""
	case Number:
		return c.Num.String()
	default:
		return c.Raw
	}
}

// Frame is a header-keyed table snapshot. Every row has exactly len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]Cell
}

// FromValues builds a frame from the store's raw grid, first row being the
// header. Short rows are padded with Missing cells; cells past the header
// width have no column name and are dropped.
func FromValues(values [][]string) Frame {
	if len(values) == 0 {
		return Frame{}
	}
	cols := append([]string(nil), values[0]...)
	rows := make([][]Cell, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make([]Cell, len(cols))
		for i := range cols {
			if i < len(raw) {
				row[i] = TextCell(raw[i])
			} else {
				row[i] = MissingCell("")
			}
		}
		rows = append(rows, row)
	}
	return Frame{Columns: cols, Rows: rows}
}

// Index returns the position of the first column named name, or -1.
func (f Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the frame has a column named name.
func (f Frame) Has(name string) bool { return f.Index(name) >= 0 }

// Len returns the number of data rows.
func (f Frame) Len() int { return len(f.Rows) }

// Empty reports whether the frame has no data rows.
func (f Frame) Empty() bool { return len(f.Rows) == 0 }

// Cell returns the cell of row i in column name. ok is false when the column is absent.
func (f Frame) Cell(i int, name string) (Cell, bool) {
	idx := f.Index(name)
	if idx < 0 || i < 0 || i >= len(f.Rows) {
		return Cell{}, false
	}
	return f.Rows[i][idx], true
}

// Column returns every cell of the named column, or nil when it is absent.
func (f Frame) Column(name string) []Cell {
	idx := f.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]Cell, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r[idx]
	}
	return out
}

// Tail returns a frame with the last n rows in their original order.
// n <= 0 keeps the columns and drops every row.
func (f Frame) Tail(n int) Frame {
	if n <= 0 {
		return Frame{Columns: f.Columns, Rows: [][]Cell{}}
	}
	if n >= len(f.Rows) {
		return f
	}
	return Frame{Columns: f.Columns, Rows: f.Rows[len(f.Rows)-n:]}
}

// Filter returns a frame with the rows for which keep returns true.
func (f Frame) Filter(keep func(row []Cell) bool) Frame {
	rows := make([][]Cell, 0, len(f.Rows))
	for _, r := range f.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return Frame{Columns: f.Columns, Rows: rows}
}

// CoerceNumeric returns a copy of the frame in which every cell of column name
// is a Number, or Missing when it does not parse. An absent column is a no-op.
func (f Frame) CoerceNumeric(name string) Frame {
	idx := f.Index(name)
	if idx < 0 {
		return f
	}
	rows := make([][]Cell, len(f.Rows))
	for i, r := range f.Rows {
		row := append([]Cell(nil), r...)
		row[idx] = Coerce(row[idx])
		rows[i] = row
	}
	return Frame{Columns: f.Columns, Rows: rows}
}

// Coerce converts a single cell to a Number, or Missing when it cannot.
func Coerce(c Cell) Cell {
	switch c.Kind {
	case Number, Missing:
		return c
	}
	d, ok := core.ParseNumber(c.Raw)
	if !ok {
		return MissingCell(c.Raw)
	}
	return Cell{Kind: Number, Raw: c.Raw, Num: d}
}

// Strings renders the frame back to a grid of display strings, header first.
func (f Frame) Strings() [][]string {
	if f.Columns == nil {
		return nil
	}
	out := make([][]string, 0, len(f.Rows)+1)
	out = append(out, append([]string(nil), f.Columns...))
	for _, r := range f.Rows {
		line := make([]string, len(r))
		for i, c := range r {
			line[i] = c.String()
		}
		out = append(out, line)
	}
	return out
}
