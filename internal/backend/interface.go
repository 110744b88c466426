// Package backend selects the spreadsheet adapter used for export and
// import from the application configuration.
package backend

import (
	"context"

	"feeledger/internal/sheets"
)

// Type names a spreadsheet backend.
type Type string

const (
	FileBackend   Type = "file"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Persistent reports whether rows written through the backend outlive the
// process. The memory backend is empty on every start.
func (t Type) Persistent() bool {
	return t == FileBackend || t == SheetsBackend
}

// Factory creates row stores based on configuration
type Factory interface {
	CreateRowStore(ctx context.Context, config Config) (sheets.RowStore, error)
}

// Config holds what the factory needs to build a RowStore.
type Config struct {
	Type Type

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Local workbook
	FilePath  string
	FileSheet string
}
