package core

import (
	"errors"
	"testing"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestFeeRecordValidate(t *testing.T) {
	good := FeeRecord{
		Seq:        1,
		Department: "School of Physics",
		Amount:     Money{Cents: 12000},
		Month:      5,
		Year:       2024,
		DueDate:    "2024-05-31",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		mutate func(*FeeRecord)
		want   error
	}{
		{func(r *FeeRecord) { r.Seq = 0 }, ErrInvalidSeq},
		{func(r *FeeRecord) { r.Department = "  " }, ErrEmptyDepartment},
		{func(r *FeeRecord) { r.Amount = Money{} }, ErrInvalidAmount},
		{func(r *FeeRecord) { r.Month = 13 }, ErrInvalidMonth},
		{func(r *FeeRecord) { r.Year = 20 }, ErrInvalidYear},
		{func(r *FeeRecord) { r.DueDate = "" }, ErrEmptyDueDate},
	}
	for i, tc := range bads {
		r := good
		tc.mutate(&r)
		if err := r.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestRecordFromRow(t *testing.T) {
	rec, err := RecordFromRow([]string{"3", " Chemistry ", "88,5", "4", "2024", "2024-04-30", "extra"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FeeRecord{Seq: 3, Department: "Chemistry", Amount: Money{Cents: 8850}, Month: 4, Year: 2024, DueDate: "2024-04-30"}
	if rec != want {
		t.Fatalf("got %+v, want %+v", rec, want)
	}

	row := rec.Row()
	if len(row) != ColumnCount || row[ColAmount] != "88.50" || row[ColDepartment] != "Chemistry" {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestRecordFromRowErrors(t *testing.T) {
	cases := []struct {
		row  []string
		want error
	}{
		{[]string{"1", "A", "10", "1"}, ErrShortRow},
		{[]string{"1", "", "10", "1", "2024", "x"}, ErrEmptyCell},
		{[]string{"one", "A", "10", "1", "2024", "x"}, ErrInvalidSeq},
		{[]string{"1", "A", "ten", "1", "2024", "x"}, ErrInvalidAmount},
		{[]string{"1", "A", "10", "May", "2024", "x"}, ErrInvalidMonth},
		{[]string{"1", "A", "10", "5", "24y", "x"}, ErrInvalidYear},
	}
	for i, tc := range cases {
		if _, err := RecordFromRow(tc.row); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestParseRowsSkipsBadRows(t *testing.T) {
	rows := [][]string{
		{"1", "Physics", "10", "1", "2024", "2024-01-31"},
		{"2", "Chemistry", "20"},
		{"3", "Biology", "30", "1", "2024", ""},
		{"4", "Physics", "15.5", "1", "2024", "2024-01-31"},
	}
	records, skipped := ParseRows(rows)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if len(skipped) != 2 || skipped[0].Index != 1 || skipped[1].Index != 2 {
		t.Fatalf("unexpected skipped rows: %+v", skipped)
	}

	s := Summarize(records)
	if s.Total.Cents != 2550 || s.Records != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if len(s.ByDepartment) != 1 || s.ByDepartment[0].Department != "Physics" || s.ByDepartment[0].Records != 2 {
		t.Fatalf("unexpected department totals: %+v", s.ByDepartment)
	}
}
