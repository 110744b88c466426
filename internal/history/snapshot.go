package history

// Snapshot is a copy of every cell of the table at one instant, row by row.
type Snapshot [][]string

// Capture copies the current contents of s.
func Capture(s Surface) Snapshot {
	return Snapshot(s.Rows()).Clone()
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for i, row := range s {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Equal reports whether both snapshots hold the same cells.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if len(s[i]) != len(other[i]) {
			return false
		}
		for j := range s[i] {
			if s[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}
