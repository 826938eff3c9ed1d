package sheets

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by adapters when a spreadsheet does not exist.
var ErrNotFound = errors.New("not found")

// AuthenticationError reports that no credential source produced a usable
// service-account identity.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// SpreadsheetNotFoundError reports that neither the configured identifier nor
// the configured name resolved to a spreadsheet.
type SpreadsheetNotFoundError struct {
	ID   string
	Name string
	Err  error
}

func (e *SpreadsheetNotFoundError) Error() string {
	return fmt.Sprintf("spreadsheet not found (id=%q, name=%q): %v", e.ID, e.Name, e.Err)
}

func (e *SpreadsheetNotFoundError) Unwrap() error { return e.Err }
