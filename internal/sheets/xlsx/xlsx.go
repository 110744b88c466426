// Package xlsx stores the fee sheet in a local Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"feeledger/internal/log"
	ports "feeledger/internal/sheets"
)

var ErrSheetNotFound = errors.New("sheet not found in workbook")

var _ ports.RowStore = (*Store)(nil)

// Store reads and writes one sheet of a workbook on disk. Other sheets of
// the workbook are left untouched.
type Store struct {
	path      string
	sheetName string
}

func New(path, sheetName string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("missing workbook path")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		return nil, errors.New("missing sheet name")
	}
	return &Store{path: path, sheetName: sheetName}, nil
}

// Path returns the workbook file path.
func (s *Store) Path() string { return s.path }

// ReadRows returns the data rows of the sheet. The first row is the header
// and is dropped; rows are padded to the header width and blank rows are
// skipped.
func (s *Store) ReadRows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(s.sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%s in %s: %w", s.sheetName, s.path, ErrSheetNotFound)
	}

	values, err := f.GetRows(s.sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.sheetName, err)
	}

	rows := dataRows(values)
	slog.InfoContext(ctx, "Read rows from workbook",
		log.FieldComponent, log.ComponentSheets,
		log.FieldOperation, log.OpImport,
		log.FieldPath, s.path,
		log.FieldRows, len(rows))
	return rows, nil
}

// WriteRows replaces the sheet contents with header followed by rows,
// creating the workbook or the sheet when missing.
func (s *Store) WriteRows(ctx context.Context, header []string, rows [][]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := s.openOrCreate()
	if err != nil {
		return "", err
	}
	defer f.Close()

	width := len(header)
	for i, row := range append([][]string{header}, rows...) {
		width = max(width, len(row))
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(s.sheetName, cell, &values); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return "", fmt.Errorf("create workbook directory: %w", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(max(width, 1), len(rows)+1)
	if err != nil {
		return "", err
	}
	ref := fmt.Sprintf("%s!A1:%s", s.sheetName, last)
	slog.InfoContext(ctx, "Wrote rows to workbook",
		log.FieldComponent, log.ComponentSheets,
		log.FieldOperation, log.OpExport,
		log.FieldPath, s.path,
		log.FieldRows, len(rows),
		log.FieldSheetsRef, ref)
	return ref, nil
}

// openOrCreate opens the workbook with the target sheet emptied.
func (s *Store) openOrCreate() (*excelize.File, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), s.sheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("name sheet: %w", err)
		}
		return f, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}

	idx, err := f.GetSheetIndex(s.sheetName)
	if err != nil {
		f.Close()
		return nil, err
	}
	if idx < 0 {
		if _, err := f.NewSheet(s.sheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet: %w", err)
		}
		return f, nil
	}

	existing, err := f.GetRows(s.sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read sheet %s: %w", s.sheetName, err)
	}
	for r := len(existing); r >= 1; r-- {
		if err := f.RemoveRow(s.sheetName, r); err != nil {
			f.Close()
			return nil, fmt.Errorf("clear row %d: %w", r, err)
		}
	}
	return f, nil
}

// dataRows drops the header row, pads rows to the header width and skips
// blank rows. Excel omits trailing empty cells.
func dataRows(values [][]string) [][]string {
	if len(values) == 0 {
		return nil
	}
	width := len(values[0])

	var out [][]string
	for _, raw := range values[1:] {
		row := make([]string, 0, max(width, len(raw)))
		blank := true
		for _, v := range raw {
			v = strings.TrimSpace(v)
			if v != "" {
				blank = false
			}
			row = append(row, v)
		}
		if blank {
			continue
		}
		for len(row) < width {
			row = append(row, "")
		}
		out = append(out, row)
	}
	return out
}
