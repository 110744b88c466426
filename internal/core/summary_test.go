package core

import "testing"

func TestSummarize(t *testing.T) {
	records := []FeeRecord{
		{Seq: 1, Department: "Physics", Amount: Money{Cents: 12000}, Year: 2024, Month: 5},
		{Seq: 2, Department: "Math", Amount: Money{Cents: 1050}, Year: 2024, Month: 5},
		{Seq: 3, Department: "Physics", Amount: Money{Cents: 50}, Year: 2024, Month: 5},
	}

	s := Summarize(records)
	if s.Records != 3 || s.Total.Cents != 13100 {
		t.Fatalf("totals = %d records, %d cents", s.Records, s.Total.Cents)
	}
	if len(s.ByDepartment) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(s.ByDepartment))
	}

	want := []DepartmentTotal{
		{Department: "Physics", Records: 2, Amount: Money{Cents: 12050}},
		{Department: "Math", Records: 1, Amount: Money{Cents: 1050}},
	}
	for i, w := range want {
		if s.ByDepartment[i] != w {
			t.Errorf("ByDepartment[%d] = %+v, want %+v", i, s.ByDepartment[i], w)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Records != 0 || s.Total.Cents != 0 || len(s.ByDepartment) != 0 {
		t.Fatalf("Summarize(nil) = %+v", s)
	}
}
