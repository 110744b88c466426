package xlsx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

var header = []string{"seq", "department", "amount", "month", "year", "due_date"}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fees.xlsx")
	store, err := New(path, "Fees")
	if err != nil {
		t.Fatal(err)
	}

	rows := [][]string{
		{"1", "Physics", "120.00", "5", "2024", "2024-05-31"},
		{"2", "Chemistry", "80.50", "5", "2024", ""},
	}
	ref, err := store.WriteRows(ctx, header, rows)
	if err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	if ref != "Fees!A1:F3" {
		t.Errorf("ref = %q, want Fees!A1:F3", ref)
	}

	got, err := store.ReadRows(ctx)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("rows = %v, want %v", got, rows)
	}
}

func TestWriteReplacesSheetAndKeepsOthers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fees.xlsx")

	f := excelize.NewFile()
	if _, err := f.NewSheet("Notes"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Notes", "A1", "keep me"); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	store, _ := New(path, "Fees")
	if _, err := store.WriteRows(ctx, header, [][]string{{"1", "A"}, {"2", "B"}, {"3", "C"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.WriteRows(ctx, header, [][]string{{"9", "Z"}}); err != nil {
		t.Fatal(err)
	}

	got, err := store.ReadRows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"9", "Z", "", "", "", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}

	f, err = excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Notes", "A1"); v != "keep me" {
		t.Fatalf("other sheet changed: %q", v)
	}
}

func TestReadRowsSkipsBlankRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fees.xlsx")

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Fees")
	f.SetSheetRow("Fees", "A1", &[]interface{}{"seq", "department", "amount"})
	f.SetSheetRow("Fees", "A2", &[]interface{}{"1", "Physics"})
	f.SetSheetRow("Fees", "A4", &[]interface{}{"2", "Math", "10"})
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	store, _ := New(path, "Fees")
	got, err := store.ReadRows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"1", "Physics", ""}, {"2", "Math", "10"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
}

func TestReadRowsErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing, _ := New(filepath.Join(dir, "missing.xlsx"), "Fees")
	if _, err := missing.ReadRows(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing workbook: got %v, want os.ErrNotExist", err)
	}

	path := filepath.Join(dir, "other.xlsx")
	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()
	wrongSheet, _ := New(path, "Fees")
	if _, err := wrongSheet.ReadRows(ctx); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("missing sheet: got %v, want ErrSheetNotFound", err)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(" ", "Fees"); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := New("fees.xlsx", ""); err == nil {
		t.Error("expected error for empty sheet name")
	}
}
