// Package backend assembles a ledger.Book on top of the configured table store.
package backend

import (
	"context"

	"jizhang/internal/ledger"
	"jizhang/internal/sheets"
	gsheet "jizhang/internal/sheets/google"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the assembled book and the resources behind it.
type Result struct {
	Book        *ledger.Book
	Spreadsheet sheets.Spreadsheet
	Cleanup     CleanupFunc
}

// Close runs Cleanup when one is set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SpreadsheetID   string
	SpreadsheetName string
	StockEnabled    bool

	// Google Sheets specific
	Credentials gsheet.CredentialSource

	// SQLite specific
	SQLiteDBPath string

	// Append notifications, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
