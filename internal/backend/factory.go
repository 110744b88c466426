package backend

import (
	"context"
	"fmt"

	"feeledger/internal/log"
	"feeledger/internal/sheets"
	gsheet "feeledger/internal/sheets/google"
	"feeledger/internal/sheets/memory"
	"feeledger/internal/sheets/xlsx"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory. A nil logger means the one
// carried by the context passed to CreateRowStore.
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{logger: logger}
}

// CreateRowStore implements Factory.CreateRowStore
func (f *DefaultFactory) CreateRowStore(ctx context.Context, config Config) (sheets.RowStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		return f.createFileBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileBackend(ctx context.Context, config Config) (sheets.RowStore, error) {
	store, err := xlsx.New(config.FilePath, config.FileSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize workbook backend: %w", err)
	}

	f.log(ctx).InfoContext(ctx, "Initialized workbook backend",
		log.FieldPath, config.FilePath,
		"sheet", config.FileSheet)
	return store, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (sheets.RowStore, error) {
	cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.log(ctx).InfoContext(ctx, "Initialized Google Sheets backend", "sheet", config.GoogleSheetName)
	return cli, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (sheets.RowStore, error) {
	f.log(ctx).WarnContext(ctx, "Initialized memory backend, rows are lost on exit")
	return memory.New(), nil
}

func (f *DefaultFactory) log(ctx context.Context) *log.Logger {
	if f.logger != nil {
		return f.logger
	}
	return log.FromContext(ctx).WithComponent(log.ComponentSheets)
}
