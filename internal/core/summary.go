package core

// DepartmentTotal is the sum of fees recorded for one department.
type DepartmentTotal struct {
	Department string
	Records    int
	Amount     Money
}

// Summary aggregates a set of fee records.
type Summary struct {
	Total        Money
	Records      int
	ByDepartment []DepartmentTotal // in order of first appearance
}

// Summarize totals records per department.
func Summarize(records []FeeRecord) Summary {
	var s Summary
	index := map[string]int{}
	for _, r := range records {
		s.Total = s.Total.Add(r.Amount)
		s.Records++
		i, ok := index[r.Department]
		if !ok {
			i = len(s.ByDepartment)
			index[r.Department] = i
			s.ByDepartment = append(s.ByDepartment, DepartmentTotal{Department: r.Department})
		}
		s.ByDepartment[i].Records++
		s.ByDepartment[i].Amount = s.ByDepartment[i].Amount.Add(r.Amount)
	}
	return s
}
