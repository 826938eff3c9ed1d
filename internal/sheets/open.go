package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// Open resolves the spreadsheet by id first and falls back to name. Either
// may be blank, in which case that attempt is skipped.
func Open(ctx context.Context, c Client, id, name string) (Spreadsheet, error) {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	var errs []error
	if id != "" {
		ss, err := c.OpenByID(ctx, id)
		if err == nil {
			return ss, nil
		}
		slog.WarnContext(ctx, "open spreadsheet by id failed, trying name", "id", id, "error", err)
		errs = append(errs, fmt.Errorf("by id: %w", err))
	}
	if name != "" {
		ss, err := c.OpenByName(ctx, name)
		if err == nil {
			return ss, nil
		}
		errs = append(errs, fmt.Errorf("by name: %w", err))
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no spreadsheet id or name configured"))
	}
	return nil, &SpreadsheetNotFoundError{ID: id, Name: name, Err: errors.Join(errs...)}
}

// EnsureTable returns the table called name, creating it with header as its
// first row when it does not exist. An existing table is returned untouched.
func EnsureTable(ctx context.Context, ss Spreadsheet, name string, header []string) (Table, error) {
	t, ok, err := ss.Table(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup table %s: %w", name, err)
	}
	if ok {
		return t, nil
	}

	t, err = ss.AddTable(ctx, name, InitialRows, max(InitialCols, len(header)))
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := t.AppendRow(ctx, row); err != nil {
		return nil, fmt.Errorf("write header of %s: %w", name, err)
	}
	slog.InfoContext(ctx, "created table", "table", name, "columns", len(header))
	return t, nil
}

// EnteredValue renders v the way a spreadsheet shows a value typed by a user:
// numeric text is normalised to its canonical number form, a leading
// apostrophe forces literal text, anything else is kept as is.
func EnteredValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if strings.HasPrefix(x, "'") {
			return x[1:]
		}
		s := strings.TrimSpace(x)
		if d, err := decimal.NewFromString(s); err == nil && looksNumeric(s) {
			return d.String()
		}
		return x
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// looksNumeric rejects forms decimal accepts but a spreadsheet keeps as text,
// such as exponents.
func looksNumeric(s string) bool {
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return s != ""
}
