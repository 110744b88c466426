// Package tui is the terminal table editor for fee records.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"feeledger/internal/core"
	"feeledger/internal/history"
	"feeledger/internal/log"
	"feeledger/internal/table"
)

// Saver persists the table rows under a session name.
type Saver interface {
	SaveProgress(ctx context.Context, name string, rows [][]string) error
}

type savedMsg struct {
	rows int
	err  error
}

const (
	minColumnWidth = 4
	maxColumnWidth = 28
	chromeLines    = 5 // title, header, separator, status, help
	saveTimeout    = 10 * time.Second
)

// Model is the bubbletea model of the editor. The cursor lives in the
// table so that undo restores it together with the cells.
type Model struct {
	editor  *table.Editor
	saver   Saver
	session string
	keys    KeyMap
	styles  styles

	input   textinput.Model
	editing bool

	status string
	width  int
	height int
	offset int
}

// NewModel builds an editor UI over e. saver may be nil, in which case
// ctrl+s reports that saving is unavailable.
func NewModel(e *table.Editor, saver Saver, session string) Model {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 200

	return Model{
		editor:  e,
		saver:   saver,
		session: session,
		keys:    DefaultKeyMap,
		styles:  defaultStyles(),
		input:   input,
		status:  "ready",
		width:   100,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Status returns the last status line message.
func (m Model) Status() string {
	return m.status
}

// Editing reports whether a cell is being edited.
func (m Model) Editing() bool {
	return m.editing
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scrollToCursor()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("saved %d rows to %q", msg.rows, m.session)
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Commit):
		row, col := m.tbl().Cursor()
		m.editor.SetCell(row, col, strings.TrimSpace(m.input.Value()))
		m.editing = false
		m.input.Blur()
		m.status = fmt.Sprintf("%s updated", core.Headers[col])
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.input.Blur()
		m.status = "edit cancelled"
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.tbl()
	row, col := t.Cursor()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		t.SetCursor(row-1, col)
	case key.Matches(msg, m.keys.Down):
		t.SetCursor(row+1, col)
	case key.Matches(msg, m.keys.Left):
		t.SetCursor(row, col-1)
	case key.Matches(msg, m.keys.Right):
		t.SetCursor(row, col+1)

	case key.Matches(msg, m.keys.Edit):
		if t.RowCount() == 0 {
			m.status = "no rows: press ctrl+n to add one"
			break
		}
		m.editing = true
		m.input.SetValue(t.Cell(row, col))
		m.input.CursorEnd()
		m.input.Focus()
		m.status = "editing " + core.Headers[col]

	case key.Matches(msg, m.keys.AddRow):
		at := 0
		if t.RowCount() > 0 {
			at = row + 1
		}
		at = m.editor.AddRow(at)
		t.SetCursor(at, core.ColDepartment)
		m.status = fmt.Sprintf("row %d added", at+1)

	case key.Matches(msg, m.keys.DelRow):
		if m.editor.DeleteRows(row) == 0 {
			m.status = "no row to delete"
		} else {
			m.status = fmt.Sprintf("row %d deleted", row+1)
		}

	case key.Matches(msg, m.keys.Copy):
		m.status = m.clipboardStatus("copied", func() (int, error) { return m.editor.Copy(row) })

	case key.Matches(msg, m.keys.Cut):
		m.status = m.clipboardStatus("cut", func() (int, error) { return m.editor.Cut(row) })

	case key.Matches(msg, m.keys.Paste):
		at := min(row, t.RowCount())
		n, err := m.editor.Paste(at)
		switch {
		case errors.Is(err, table.ErrClipboardEmpty):
			m.status = "clipboard is empty"
		case err != nil:
			m.status = "paste failed: " + err.Error()
		default:
			m.status = fmt.Sprintf("pasted %d rows", n)
		}

	case key.Matches(msg, m.keys.Clear):
		if m.editor.ClearCells(table.Pos{Row: row, Col: col}) > 0 {
			m.status = "cell cleared"
		}

	case key.Matches(msg, m.keys.Renumber):
		m.editor.Renumber()
		m.status = "rows renumbered"

	case key.Matches(msg, m.keys.Undo):
		if err := m.editor.Undo(); err != nil {
			if errors.Is(err, history.ErrNothingToUndo) {
				m.status = "nothing to undo"
			} else {
				m.status = "undo failed: " + err.Error()
			}
		} else {
			m.status = "undone"
		}

	case key.Matches(msg, m.keys.Save):
		if m.saver == nil {
			m.status = "saving is not configured"
			break
		}
		m.status = "saving..."
		return m, m.saveCmd()
	}

	m.scrollToCursor()
	return m, nil
}

func (m Model) clipboardStatus(verb string, fn func() (int, error)) string {
	n, err := fn()
	if err != nil {
		return verb + " failed: " + err.Error()
	}
	if n == 0 {
		return "no row selected"
	}
	return fmt.Sprintf("%s %d row", verb, n)
}

func (m Model) saveCmd() tea.Cmd {
	rows := m.tbl().Rows()
	saver, session := m.saver, m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		err := saver.SaveProgress(ctx, session, rows)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to save progress",
				log.FieldComponent, log.ComponentTUI,
				log.FieldSession, session,
				log.FieldError, err)
		}
		return savedMsg{rows: len(rows), err: err}
	}
}

func (m Model) tbl() *table.Table {
	return m.editor.Table()
}

func (m *Model) visibleRows() int {
	return max(1, m.height-chromeLines)
}

func (m *Model) scrollToCursor() {
	row, _ := m.tbl().Cursor()
	visible := m.visibleRows()
	if row < m.offset {
		m.offset = row
	}
	if row >= m.offset+visible {
		m.offset = row - visible + 1
	}
	m.offset = max(0, m.offset)
}
