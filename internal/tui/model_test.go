package tui

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"feeledger/internal/core"
	"feeledger/internal/table"
)

type memSaver struct {
	name string
	rows [][]string
	err  error
}

func (s *memSaver) SaveProgress(_ context.Context, name string, rows [][]string) error {
	s.name, s.rows = name, rows
	return s.err
}

func newTestModel(t *testing.T, rows ...[]string) (Model, *table.Editor) {
	t.Helper()
	tbl := table.New(core.Headers)
	for i, r := range rows {
		tbl.InsertRow(i)
		for c, v := range r {
			tbl.SetCell(i, c, v)
		}
	}
	e := table.NewEditor(tbl, table.Options{HistoryCapacity: 10})
	m := NewModel(e, nil, "test")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	return updated.(Model), e
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEditCellThenUndo(t *testing.T) {
	m, e := newTestModel(t, []string{"1", "Physics", "120.00", "5", "2024", "2024-05-31"})

	// move to Department, open editor, replace the text
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Editing() {
		t.Fatal("enter should start editing")
	}
	m.input.SetValue("")
	m = press(t, m, runes("Chemistry"), tea.KeyMsg{Type: tea.KeyEnter})

	if m.Editing() {
		t.Fatal("enter should commit the edit")
	}
	if got := e.Table().Cell(0, core.ColDepartment); got != "Chemistry" {
		t.Fatalf("department = %q, want Chemistry", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if got := e.Table().Cell(0, core.ColDepartment); got != "Physics" {
		t.Fatalf("after undo department = %q, want Physics", got)
	}
	if m.Status() != "undone" {
		t.Fatalf("status = %q", m.Status())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if m.Status() != "nothing to undo" {
		t.Fatalf("status = %q, want nothing to undo", m.Status())
	}
}

func TestEscCancelsEdit(t *testing.T) {
	m, e := newTestModel(t, []string{"1", "Physics"})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("9"), tea.KeyMsg{Type: tea.KeyEsc})

	if m.Editing() {
		t.Fatal("esc should leave edit mode")
	}
	if got := e.Table().Cell(0, 0); got != "1" {
		t.Fatalf("cell = %q, cancelled edit must not apply", got)
	}
	if e.CanUndo() {
		t.Fatal("cancelled edit should not be undoable")
	}
}

func TestAddDeleteAndUndoRows(t *testing.T) {
	m, e := newTestModel(t, []string{"1", "Physics"})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if e.Table().RowCount() != 2 {
		t.Fatalf("rows = %d after ctrl+n", e.Table().RowCount())
	}
	if got := e.Table().Cell(1, core.ColSeq); got != "2" {
		t.Fatalf("new row seq = %q, want 2", got)
	}
	if row, col := e.Table().Cursor(); row != 1 || col != core.ColDepartment {
		t.Fatalf("cursor = (%d,%d), want new row department", row, col)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if e.Table().RowCount() != 1 {
		t.Fatalf("rows = %d after ctrl+d", e.Table().RowCount())
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if e.Table().RowCount() != 2 {
		t.Fatalf("rows = %d after undoing delete, want 2", e.Table().RowCount())
	}
}

func TestCutPasteAndClear(t *testing.T) {
	m, e := newTestModel(t,
		[]string{"1", "Physics"},
		[]string{"2", "Chemistry"},
	)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if e.Table().RowCount() != 1 || e.Table().Cell(0, 1) != "Chemistry" {
		t.Fatalf("after cut: %v", e.Table().Rows())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyCtrlV})
	if m.Status() != "pasted 1 rows" {
		t.Fatalf("status = %q", m.Status())
	}
	if got := e.Table().Cell(0, 1); got != "Physics" {
		t.Fatalf("pasted row at top = %q, want Physics", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyDelete})
	if got := e.Table().Cell(0, 1); got != "" {
		t.Fatalf("cell after clear = %q", got)
	}
}

func TestPasteEmptyClipboardStatus(t *testing.T) {
	m, _ := newTestModel(t, []string{"1"})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlV})
	if m.Status() != "clipboard is empty" {
		t.Fatalf("status = %q", m.Status())
	}
}

func TestSaveCommand(t *testing.T) {
	tbl := table.New(core.Headers)
	tbl.InsertRow(0)
	tbl.SetCell(0, 1, "Physics")
	saver := &memSaver{}
	m := NewModel(table.NewEditor(tbl, table.Options{}), saver, "may")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("ctrl+s should return a save command")
	}

	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if saver.name != "may" || !reflect.DeepEqual(saver.rows, tbl.Rows()) {
		t.Fatalf("saved %q %v", saver.name, saver.rows)
	}
	if m.Status() != `saved 1 rows to "may"` {
		t.Fatalf("status = %q", m.Status())
	}

	saver.err = errors.New("disk full")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	updated, _ = m.Update(cmd())
	if got := updated.(Model).Status(); got != "save failed: disk full" {
		t.Fatalf("status = %q", got)
	}
}

func TestSaveWithoutSaver(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.Status() != "saving is not configured" {
		t.Fatalf("status = %q", m.Status())
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestViewShowsRowsAndUndoHint(t *testing.T) {
	m, _ := newTestModel(t, []string{"1", "Physics", "120.00", "5", "2024", "2024-05-31"})

	view := m.View()
	for _, want := range []string{"Department", "Physics", "120.00", "ctrl+z undo"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestScrollFollowsCursor(t *testing.T) {
	var rows [][]string
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{"x"})
	}
	m, _ := newTestModel(t, rows...)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = updated.(Model)

	for i := 0; i < 20; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.offset == 0 {
		t.Fatal("offset should follow the cursor down")
	}
	row, _ := m.tbl().Cursor()
	if row < m.offset || row >= m.offset+m.visibleRows() {
		t.Fatalf("cursor row %d outside window [%d,%d)", row, m.offset, m.offset+m.visibleRows())
	}
}

func TestPadTruncates(t *testing.T) {
	if got := pad("abc", 5); got != "abc  " {
		t.Fatalf("pad = %q", got)
	}
	if got := pad("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("pad = %q", got)
	}
}
