package table

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"

	"feeledger/internal/core"
	"feeledger/internal/history"
	"feeledger/internal/log"
)

var ErrClipboardEmpty = errors.New("clipboard is empty")

// Pos addresses a single cell.
type Pos struct {
	Row int
	Col int
}

// Options configures an Editor.
type Options struct {
	// HistoryCapacity bounds the number of undo checkpoints.
	HistoryCapacity int
	// Clipboard defaults to an in-process buffer.
	Clipboard Clipboard
}

// Editor applies user edits to a Table and keeps its undo history.
//
// Every mutating method records a checkpoint of the table before touching
// it, runs the edit as one batch, and the batch notification records the
// resulting state. Undo therefore always steps back exactly one edit.
type Editor struct {
	table   *Table
	history *history.History
	clip    Clipboard
}

// NewEditor wraps t. The current contents become the first checkpoint, so
// the first edit can be undone back to them.
func NewEditor(t *Table, opts Options) *Editor {
	if opts.Clipboard == nil {
		opts.Clipboard = &MemoryClipboard{}
	}
	e := &Editor{
		table:   t,
		history: history.New(t, opts.HistoryCapacity),
		clip:    opts.Clipboard,
	}
	t.Subscribe(func(Change) {
		// No-op while a restore is running.
		e.history.Checkpoint()
	})
	e.history.Checkpoint()
	return e
}

// Table returns the live table.
func (e *Editor) Table() *Table { return e.table }

// History exposes the undo history, mainly for status display.
func (e *Editor) History() *history.History { return e.history }

// OnUndoAvailable registers fn to be told whether undo is possible every
// time that may have changed.
func (e *Editor) OnUndoAvailable(fn func(bool)) {
	e.history.OnChange(fn)
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// Undo rolls the table back one edit. history.ErrNothingToUndo is returned
// when there is nothing left to roll back.
func (e *Editor) Undo() error {
	if err := e.history.Undo(); err != nil {
		return err
	}
	slog.Debug("Undo applied", log.FieldComponent, log.ComponentEditor, log.FieldOperation, log.OpUndo, "remaining", e.history.Len())
	return nil
}

func (e *Editor) mutate(op string, fn func()) {
	// Normally a no-op: the previous edit's notification already recorded
	// the live state.
	e.history.Checkpoint()
	e.table.Batch(fn)
	slog.Debug("Table edited", log.FieldComponent, log.ComponentEditor, log.FieldOperation, op, log.FieldRows, e.table.RowCount())
}

// SetCell replaces the text of one cell.
func (e *Editor) SetCell(row, col int, value string) {
	if e.table.Cell(row, col) == value {
		return
	}
	e.mutate("edit", func() { e.table.SetCell(row, col, value) })
}

// AddRow inserts an empty row at index at with the next sequence number.
func (e *Editor) AddRow(at int) int {
	at = max(0, min(at, e.table.RowCount()))
	e.mutate("add_row", func() {
		e.table.InsertRow(at)
		e.table.SetCell(at, core.ColSeq, strconv.Itoa(e.nextSeq()))
	})
	return at
}

func (e *Editor) nextSeq() int {
	highest := 0
	for r := 0; r < e.table.RowCount(); r++ {
		if n, err := strconv.Atoi(e.table.Cell(r, core.ColSeq)); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

// DeleteRows removes the given rows. Invalid and duplicate indexes are
// ignored.
func (e *Editor) DeleteRows(rows ...int) int {
	rows = e.validRows(rows)
	if len(rows) == 0 {
		return 0
	}
	e.mutate("delete_rows", func() {
		for i := len(rows) - 1; i >= 0; i-- {
			e.table.RemoveRow(rows[i])
		}
	})
	return len(rows)
}

// Copy puts the given rows on the clipboard as tab separated text.
func (e *Editor) Copy(rows ...int) (int, error) {
	rows = e.validRows(rows)
	if len(rows) == 0 {
		return 0, nil
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = e.table.Row(r)
	}
	if err := e.clip.WriteAll(EncodeTSV(data)); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Cut copies the given rows to the clipboard and removes them.
func (e *Editor) Cut(rows ...int) (int, error) {
	n, err := e.Copy(rows...)
	if err != nil || n == 0 {
		return n, err
	}
	rows = e.validRows(rows)
	e.mutate("cut", func() {
		for i := len(rows) - 1; i >= 0; i-- {
			e.table.RemoveRow(rows[i])
		}
	})
	return n, nil
}

// Paste inserts the clipboard rows before index at. Cells beyond the
// table's columns are dropped.
func (e *Editor) Paste(at int) (int, error) {
	text, err := e.clip.ReadAll()
	if err != nil {
		return 0, err
	}
	rows := DecodeTSV(text)
	if len(rows) == 0 {
		return 0, ErrClipboardEmpty
	}
	at = max(0, min(at, e.table.RowCount()))
	e.mutate("paste", func() {
		for i, cells := range rows {
			e.table.InsertRow(at + i)
			for c, v := range cells {
				e.table.SetCell(at+i, c, v)
			}
		}
	})
	return len(rows), nil
}

// ClearCells blanks the given cells.
func (e *Editor) ClearCells(cells ...Pos) int {
	var targets []Pos
	for _, p := range cells {
		if e.table.Cell(p.Row, p.Col) != "" {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return 0
	}
	e.mutate("clear", func() {
		for _, p := range targets {
			e.table.SetCell(p.Row, p.Col, "")
		}
	})
	return len(targets)
}

// Import replaces the whole table with rows.
func (e *Editor) Import(rows [][]string) {
	e.mutate("import", func() {
		for e.table.RowCount() > 0 {
			e.table.RemoveRow(e.table.RowCount() - 1)
		}
		for i, cells := range rows {
			e.table.InsertRow(i)
			for c, v := range cells {
				e.table.SetCell(i, c, v)
			}
		}
	})
	e.table.SetCursor(0, 0)
}

// Renumber rewrites the sequence column as 1..n in row order.
func (e *Editor) Renumber() {
	e.mutate("renumber", func() {
		for r := 0; r < e.table.RowCount(); r++ {
			e.table.SetCell(r, core.ColSeq, strconv.Itoa(r+1))
		}
	})
}

// Records parses the table into fee records, reporting rows that could not
// be parsed.
func (e *Editor) Records() ([]core.FeeRecord, []core.SkippedRow) {
	return core.ParseRows(e.table.Rows())
}

func (e *Editor) validRows(rows []int) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		if r >= 0 && r < e.table.RowCount() {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
