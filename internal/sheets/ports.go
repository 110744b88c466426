package sheets

import (
	"context"
)

// Ports for outbound spreadsheet adapters.
type (
	// RowWriter replaces the target sheet with header followed by rows.
	RowWriter interface {
		WriteRows(ctx context.Context, header []string, rows [][]string) (ref string, err error)
	}

	// RowReader returns the data rows of the source sheet without its
	// header row.
	RowReader interface {
		ReadRows(ctx context.Context) ([][]string, error)
	}

	// RowStore is implemented by adapters that can both export and import.
	RowStore interface {
		RowWriter
		RowReader
	}
)
