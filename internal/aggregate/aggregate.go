// Package aggregate filters frames and sums amounts per group.
package aggregate

import (
	"fmt"

	"jizhang/internal/frame"

	"github.com/shopspring/decimal"
)

// MissingColumnError is returned by GroupSum when a named column is absent.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// Group is one key of an aggregation with the sum of its amounts.
type Group struct {
	Key string
	Sum decimal.Decimal
}

// Result lists groups in the order their key first appeared.
type Result []Group

// Get returns the sum for key.
func (r Result) Get(key string) (decimal.Decimal, bool) {
	for _, g := range r {
		if g.Key == key {
			return g.Sum, true
		}
	}
	return decimal.Zero, false
}

// Map returns the result keyed by group.
func (r Result) Map() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(r))
	for _, g := range r {
		m[g.Key] = g.Sum
	}
	return m
}

// Total sums every group.
func (r Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, g := range r {
		total = total.Add(g.Sum)
	}
	return total
}

// FilterBy keeps the rows whose field cell equals value exactly. Missing cells
// never match. When field is not a column of f, every row is kept.
func FilterBy(f frame.Frame, field, value string) frame.Frame {
	idx := f.Index(field)
	if idx < 0 {
		return f
	}
	return f.Filter(func(row []frame.Cell) bool {
		c := row[idx]
		return !c.IsMissing() && c.Raw == value
	})
}

// GroupSum sums amountField per distinct groupField value. Both columns must
// exist. Rows with a missing group cell are skipped; amounts that are missing
// or not numeric contribute nothing, though their group still appears.
func GroupSum(f frame.Frame, groupField, amountField string) (Result, error) {
	gi := f.Index(groupField)
	if gi < 0 {
		return nil, &MissingColumnError{Column: groupField}
	}
	ai := f.Index(amountField)
	if ai < 0 {
		return nil, &MissingColumnError{Column: amountField}
	}

	result := Result{}
	pos := make(map[string]int)
	for _, row := range f.Rows {
		key := row[gi]
		if key.IsMissing() {
			continue
		}
		i, seen := pos[key.Raw]
		if !seen {
			i = len(result)
			pos[key.Raw] = i
			result = append(result, Group{Key: key.Raw, Sum: decimal.Zero})
		}
		amount := frame.Coerce(row[ai])
		if amount.IsMissing() {
			continue
		}
		result[i].Sum = result[i].Sum.Add(amount.Num)
	}
	return result, nil
}
