package table

import (
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"

	"feeledger/internal/log"
)

// Clipboard moves text in and out of the editor for cut and paste.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// MemoryClipboard keeps clipboard text inside the process.
type MemoryClipboard struct {
	text string
}

func (c *MemoryClipboard) ReadAll() (string, error) { return c.text, nil }

func (c *MemoryClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

// SystemClipboard uses the desktop clipboard and falls back to an
// in-process buffer when none is available (headless sessions, missing
// xclip/xsel). Reads come from wherever the last write landed, so a failed
// system write never pastes stale desktop text.
type SystemClipboard struct {
	fallback MemoryClipboard
	// local is set when the last write only reached the fallback buffer.
	local bool

	read  func() (string, error)
	write func(string) error
}

func NewSystemClipboard() *SystemClipboard {
	c := &SystemClipboard{read: clipboard.ReadAll, write: clipboard.WriteAll}
	if clipboard.Unsupported {
		c.read, c.write = nil, nil
	}
	return c
}

func (c *SystemClipboard) ReadAll() (string, error) {
	if c.read == nil || c.local {
		return c.fallback.ReadAll()
	}
	text, err := c.read()
	if err != nil {
		slog.Debug("System clipboard read failed, using local buffer", log.FieldComponent, log.ComponentEditor, log.FieldError, err)
		return c.fallback.ReadAll()
	}
	return text, nil
}

func (c *SystemClipboard) WriteAll(text string) error {
	_ = c.fallback.WriteAll(text)
	if c.write == nil {
		c.local = true
		return nil
	}
	if err := c.write(text); err != nil {
		slog.Debug("System clipboard write failed, using local buffer", log.FieldComponent, log.ComponentEditor, log.FieldError, err)
		c.local = true
		return nil
	}
	c.local = false
	return nil
}

// EncodeTSV joins rows as tab separated lines, the format spreadsheets put
// on the clipboard.
func EncodeTSV(rows [][]string) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(r))
		for j, c := range r {
			cells[j] = strings.NewReplacer("\t", " ", "\r", "", "\n", " ").Replace(c)
		}
		lines[i] = strings.Join(cells, "\t")
	}
	return strings.Join(lines, "\n")
}

// DecodeTSV splits clipboard text into rows of cells. Blank lines are
// dropped.
func DecodeTSV(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	return rows
}
