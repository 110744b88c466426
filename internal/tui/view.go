package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	cursor   lipgloss.Style
	editing  lipgloss.Style
	status   lipgloss.Style
	help     lipgloss.Style
	disabled lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		header:   lipgloss.NewStyle().Bold(true).Underline(true),
		cell:     lipgloss.NewStyle(),
		cursor:   lipgloss.NewStyle().Reverse(true),
		editing:  lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Strikethrough(true),
	}
}

func (m Model) View() string {
	t := m.tbl()
	headers := t.Headers()
	widths := m.columnWidths()
	curRow, curCol := t.Cursor()

	var b strings.Builder

	title := fmt.Sprintf("feeledger · %s · %d rows", m.session, t.RowCount())
	b.WriteString(m.styles.title.Render(title))
	b.WriteByte('\n')

	cells := make([]string, len(headers))
	for c, h := range headers {
		cells[c] = m.styles.header.Render(pad(h, widths[c]))
	}
	b.WriteString(strings.Join(cells, " "))
	b.WriteByte('\n')

	end := min(t.RowCount(), m.offset+m.visibleRows())
	for r := m.offset; r < end; r++ {
		for c := range headers {
			text := t.Cell(r, c)
			style := m.styles.cell
			if r == curRow && c == curCol {
				style = m.styles.cursor
				if m.editing {
					text = m.input.View()
					style = m.styles.editing
				}
			}
			cells[c] = style.Render(pad(text, widths[c]))
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteByte('\n')
	}
	if t.RowCount() == 0 {
		b.WriteString(m.styles.help.Render("(empty: ctrl+n adds a row)"))
		b.WriteByte('\n')
	}

	b.WriteString(m.styles.status.Render(m.status))
	b.WriteByte('\n')
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) helpLine() string {
	var parts []string
	for _, binding := range m.keys.helpBindings() {
		h := binding.Help()
		text := h.Key + " " + h.Desc
		if binding.Help() == m.keys.Undo.Help() && !m.editor.CanUndo() {
			parts = append(parts, m.styles.disabled.Render(text))
			continue
		}
		parts = append(parts, m.styles.help.Render(text))
	}
	return strings.Join(parts, m.styles.help.Render(" · "))
}

func (m Model) columnWidths() []int {
	t := m.tbl()
	widths := make([]int, t.ColumnCount())
	for c, h := range t.Headers() {
		widths[c] = max(minColumnWidth, lipgloss.Width(h))
	}
	for r := 0; r < t.RowCount(); r++ {
		for c := range widths {
			widths[c] = max(widths[c], lipgloss.Width(t.Cell(r, c)))
		}
	}
	for c := range widths {
		widths[c] = min(widths[c], maxColumnWidth)
	}
	return widths
}

// pad fits s into exactly width display cells.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
