// Package table holds the in-memory fee table that the editor mutates and
// the Editor that records undo checkpoints around every mutation.
package table

// ChangeKind identifies what kind of edit a Change describes.
type ChangeKind int

const (
	CellChanged ChangeKind = iota
	RowInserted
	RowRemoved
	// Batched is sent once at the end of a Batch in place of the
	// individual edits made inside it.
	Batched
)

// Change is a content-changed notification.
type Change struct {
	Kind ChangeKind
	Row  int
	Col  int
}

// Table is a grid of cell strings with a fixed set of columns. It is not
// safe for concurrent use; the editor drives it from a single goroutine.
type Table struct {
	headers []string
	rows    [][]string

	cursorRow int
	cursorCol int

	subscribers []func(Change)
	batchDepth  int
	batchDirty  bool
}

// New creates an empty table with the given column headers.
func New(headers []string) *Table {
	return &Table{headers: append([]string(nil), headers...)}
}

// Headers returns a copy of the column headers.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

func (t *Table) RowCount() int    { return len(t.rows) }
func (t *Table) ColumnCount() int { return len(t.headers) }

// Cell returns the text at row, col or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if !t.inRange(row, col) {
		return ""
	}
	return t.rows[row][col]
}

// SetCell writes value at row, col. Out of range writes are ignored.
func (t *Table) SetCell(row, col int, value string) {
	if !t.inRange(row, col) || t.rows[row][col] == value {
		return
	}
	t.rows[row][col] = value
	t.emit(Change{Kind: CellChanged, Row: row, Col: col})
}

// InsertRow inserts an empty row before index at. at is clamped to
// [0, RowCount].
func (t *Table) InsertRow(at int) {
	at = max(0, min(at, len(t.rows)))
	t.rows = append(t.rows, nil)
	copy(t.rows[at+1:], t.rows[at:])
	t.rows[at] = make([]string, len(t.headers))
	t.emit(Change{Kind: RowInserted, Row: at})
}

// RemoveRow deletes the row at index at. Out of range indexes are ignored.
func (t *Table) RemoveRow(at int) {
	if at < 0 || at >= len(t.rows) {
		return
	}
	t.rows = append(t.rows[:at], t.rows[at+1:]...)
	t.emit(Change{Kind: RowRemoved, Row: at})
	t.clampCursor()
}

// Row returns a copy of one row, nil when out of range.
func (t *Table) Row(row int) []string {
	if row < 0 || row >= len(t.rows) {
		return nil
	}
	return append([]string(nil), t.rows[row]...)
}

// Rows returns a deep copy of the table contents.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Cursor returns the focused cell.
func (t *Table) Cursor() (row, col int) {
	return t.cursorRow, t.cursorCol
}

// SetCursor focuses a cell, clamped to the table bounds.
func (t *Table) SetCursor(row, col int) {
	t.cursorRow, t.cursorCol = row, col
	t.clampCursor()
}

func (t *Table) clampCursor() {
	t.cursorRow = max(0, min(t.cursorRow, len(t.rows)-1))
	t.cursorCol = max(0, min(t.cursorCol, len(t.headers)-1))
}

// Subscribe registers fn to receive content-changed notifications.
func (t *Table) Subscribe(fn func(Change)) {
	t.subscribers = append(t.subscribers, fn)
}

// Batch runs fn and delivers a single Batched notification afterwards if
// anything changed. Batches nest; only the outermost one notifies.
func (t *Table) Batch(fn func()) {
	t.batchDepth++
	defer func() {
		t.batchDepth--
		if t.batchDepth == 0 && t.batchDirty {
			t.batchDirty = false
			t.publish(Change{Kind: Batched})
		}
	}()
	fn()
}

func (t *Table) emit(c Change) {
	if t.batchDepth > 0 {
		t.batchDirty = true
		return
	}
	t.publish(c)
}

func (t *Table) publish(c Change) {
	for _, fn := range t.subscribers {
		fn(c)
	}
}

func (t *Table) inRange(row, col int) bool {
	return row >= 0 && row < len(t.rows) && col >= 0 && col < len(t.headers)
}
