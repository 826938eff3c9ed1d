// Package sheets defines the table-store ports the ledger writes to and reads
// from, plus the store-independent operations built on them.
package sheets

import "context"

// Size of a freshly created table.
const (
	InitialRows = 2000
	InitialCols = 10
)

// Ports for outbound adapters.
type (
	// Client opens a spreadsheet by identifier or by display name.
	Client interface {
		OpenByID(ctx context.Context, id string) (Spreadsheet, error)
		OpenByName(ctx context.Context, name string) (Spreadsheet, error)
	}

	// Spreadsheet is a named collection of tables.
	Spreadsheet interface {
		ID() string
		Title() string
		// Table looks a table up by exact name. ok is false when it does not
		// exist; err is reserved for store failures.
		Table(ctx context.Context, name string) (t Table, ok bool, err error)
		AddTable(ctx context.Context, name string, rows, cols int) (Table, error)
	}

	// Table is a grid whose first row is the header.
	Table interface {
		Name() string
		// AppendRow adds a row after the last non-empty row. Values are
		// interpreted as if typed by a user, so numeric text becomes a number.
		AppendRow(ctx context.Context, values []any) error
		// Values returns every row, header first, in a single round trip.
		// Trailing empty cells may be omitted, so rows can be ragged.
		Values(ctx context.Context) ([][]string, error)
	}
)
