package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column layout of the fee table, left to right.
const (
	ColSeq = iota
	ColDepartment
	ColAmount
	ColMonth
	ColYear
	ColDueDate

	ColumnCount
)

// Headers are the column titles shown in the editor and written to the
// exported spreadsheet.
var Headers = []string{"Seq", "Department", "Amount", "Month", "Year", "Due Date"}

type (
	Money struct {
		Cents int64
	}

	// FeeRecord is one department's membership fee for a month.
	FeeRecord struct {
		Seq        int
		Department string
		Amount     Money
		Month      int
		Year       int
		DueDate    string // free text printed on the receipt, e.g. "2024-05-31"
	}

	// SkippedRow describes a table row that could not be turned into a
	// FeeRecord.
	SkippedRow struct {
		Index  int // 0-based row index in the table
		Reason error
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidYear       = errors.New("invalid year")
	ErrInvalidSeq        = errors.New("invalid sequence number")
	ErrEmptyDepartment   = errors.New("empty department")
	ErrEmptyDueDate      = errors.New("empty due date")
	ErrShortRow          = errors.New("row has fewer columns than required")
	ErrEmptyCell         = errors.New("row has an empty cell")
	ErrDepartmentTooLong = errors.New("department too long (max 100 characters)")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r FeeRecord) Validate() error {
	if r.Seq < 1 {
		return ErrInvalidSeq
	}
	if strings.TrimSpace(r.Department) == "" {
		return ErrEmptyDepartment
	}
	if len([]rune(r.Department)) > 100 {
		return ErrDepartmentTooLong
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.Month < 1 || r.Month > 12 {
		return ErrInvalidMonth
	}
	if r.Year < 1900 || r.Year > 9999 {
		return ErrInvalidYear
	}
	if strings.TrimSpace(r.DueDate) == "" {
		return ErrEmptyDueDate
	}
	return nil
}

// Row returns the record as table cells in column order.
func (r FeeRecord) Row() []string {
	row := make([]string, ColumnCount)
	row[ColSeq] = strconv.Itoa(r.Seq)
	row[ColDepartment] = r.Department
	row[ColAmount] = r.Amount.String()
	row[ColMonth] = strconv.Itoa(r.Month)
	row[ColYear] = strconv.Itoa(r.Year)
	row[ColDueDate] = r.DueDate
	return row
}

// RecordFromRow parses table cells into a FeeRecord. Extra trailing
// columns are ignored.
func RecordFromRow(row []string) (FeeRecord, error) {
	if len(row) < ColumnCount {
		return FeeRecord{}, ErrShortRow
	}
	for _, cell := range row[:ColumnCount] {
		if strings.TrimSpace(cell) == "" {
			return FeeRecord{}, ErrEmptyCell
		}
	}

	seq, err := strconv.Atoi(strings.TrimSpace(row[ColSeq]))
	if err != nil {
		return FeeRecord{}, fmt.Errorf("%w: %q", ErrInvalidSeq, row[ColSeq])
	}
	cents, err := ParseDecimalToCents(row[ColAmount])
	if err != nil {
		return FeeRecord{}, fmt.Errorf("%w: %q", err, row[ColAmount])
	}
	month, err := strconv.Atoi(strings.TrimSpace(row[ColMonth]))
	if err != nil {
		return FeeRecord{}, fmt.Errorf("%w: %q", ErrInvalidMonth, row[ColMonth])
	}
	year, err := strconv.Atoi(strings.TrimSpace(row[ColYear]))
	if err != nil {
		return FeeRecord{}, fmt.Errorf("%w: %q", ErrInvalidYear, row[ColYear])
	}

	rec := FeeRecord{
		Seq:        seq,
		Department: strings.TrimSpace(row[ColDepartment]),
		Amount:     Money{Cents: cents},
		Month:      month,
		Year:       year,
		DueDate:    strings.TrimSpace(row[ColDueDate]),
	}
	if err := rec.Validate(); err != nil {
		return FeeRecord{}, err
	}
	return rec, nil
}

// ParseRows converts every row it can and reports the rest as skipped.
// A bad row never aborts the whole table.
func ParseRows(rows [][]string) ([]FeeRecord, []SkippedRow) {
	var (
		records []FeeRecord
		skipped []SkippedRow
	)
	for i, row := range rows {
		rec, err := RecordFromRow(row)
		if err != nil {
			skipped = append(skipped, SkippedRow{Index: i, Reason: err})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
