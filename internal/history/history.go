// Package history keeps a bounded list of table snapshots for the fee
// editor and rolls the live table back to an earlier one on undo.
//
// A History never touches the table on its own: it reads and writes the
// live contents through a Surface. While a snapshot is being written back
// the History is in the Restoring state and every Save call is ignored, so
// change notifications raised by the restore cannot record themselves as
// new checkpoints.
package history

import (
	"errors"
	"log/slog"

	"feeledger/internal/log"
)

// DefaultCapacity is the number of snapshots kept when no capacity is given.
const DefaultCapacity = 60

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrRestoring     = errors.New("restore already in progress")
)

// State tells whether the History is currently writing a snapshot back.
type State int

const (
	Idle State = iota
	Restoring
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Restoring:
		return "restoring"
	default:
		return "unknown"
	}
}

// Surface is the live table a History captures and restores.
type Surface interface {
	Rows() [][]string
	RowCount() int
	ColumnCount() int
	InsertRow(at int)
	RemoveRow(at int)
	SetCell(row, col int, value string)
	Cursor() (row, col int)
	SetCursor(row, col int)
}

// Batcher is implemented by surfaces that can coalesce a group of edits
// into a single change notification. Restores run inside a batch when the
// surface supports it.
type Batcher interface {
	Batch(fn func())
}

// History is a bounded FIFO of snapshots, oldest first.
type History struct {
	surface  Surface
	entries  []Snapshot
	capacity int
	state    State
	onChange func(canUndo bool)
}

// New creates an empty History over surface. A capacity below one falls
// back to DefaultCapacity.
func New(surface Surface, capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{
		surface:  surface,
		capacity: capacity,
		entries:  make([]Snapshot, 0, capacity),
	}
}

// OnChange registers fn to be called with the current CanUndo value every
// time the history grows or shrinks.
func (h *History) OnChange(fn func(canUndo bool)) {
	h.onChange = fn
}

// Save captures the live table and appends it. The oldest snapshot is
// dropped when the history is full. Calls made while restoring are ignored.
func (h *History) Save() {
	if h.state == Restoring {
		return
	}
	h.push(Capture(h.surface))
}

// Checkpoint saves the live table unless it already equals the newest
// snapshot.
func (h *History) Checkpoint() bool {
	if h.state == Restoring {
		return false
	}
	live := Capture(h.surface)
	if n := len(h.entries); n > 0 && h.entries[n-1].Equal(live) {
		return false
	}
	h.push(live)
	return true
}

func (h *History) push(s Snapshot) {
	if len(h.entries) >= h.capacity {
		evicted := len(h.entries) - h.capacity + 1
		h.entries = append(h.entries[:0], h.entries[evicted:]...)
		slog.Debug("History capacity reached, dropped oldest snapshot",
			log.FieldComponent, log.ComponentHistory,
			"capacity", h.capacity,
			"evicted", evicted)
	}
	h.entries = append(h.entries, s)
	h.notify()
}

// Undo drops the newest snapshot and writes the one before it back into
// the live table. It returns ErrNothingToUndo when fewer than two
// snapshots are held.
func (h *History) Undo() error {
	if h.state == Restoring {
		return ErrRestoring
	}
	n := len(h.entries)
	if n <= 1 {
		return ErrNothingToUndo
	}

	h.entries[n-1] = nil
	h.entries = h.entries[:n-1]
	previous := h.entries[n-2]

	h.state = Restoring
	defer func() { h.state = Idle }()

	if b, ok := h.surface.(Batcher); ok {
		b.Batch(func() { h.restore(previous) })
	} else {
		h.restore(previous)
	}

	h.notify()
	return nil
}

func (h *History) restore(s Snapshot) {
	cursorRow, cursorCol := h.surface.Cursor()

	for h.surface.RowCount() < len(s) {
		h.surface.InsertRow(h.surface.RowCount())
	}
	for h.surface.RowCount() > len(s) {
		h.surface.RemoveRow(h.surface.RowCount() - 1)
	}

	cols := h.surface.ColumnCount()
	for r, cells := range s {
		// Snapshot rows narrower or wider than the live table are clamped.
		for c := 0; c < min(len(cells), cols); c++ {
			h.surface.SetCell(r, c, cells[c])
		}
	}

	h.surface.SetCursor(clamp(cursorRow, h.surface.RowCount()), clamp(cursorCol, cols))
}

func clamp(v, size int) int {
	if v >= size {
		v = size - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// CanUndo reports whether Undo would restore anything.
func (h *History) CanUndo() bool {
	return len(h.entries) > 1
}

// Len returns the number of snapshots held.
func (h *History) Len() int {
	return len(h.entries)
}

// Capacity returns the maximum number of snapshots held.
func (h *History) Capacity() int {
	return h.capacity
}

// State returns whether a restore is in progress.
func (h *History) State() State {
	return h.state
}

// Latest returns a copy of the newest snapshot.
func (h *History) Latest() (Snapshot, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[len(h.entries)-1].Clone(), true
}

// Reset drops every snapshot.
func (h *History) Reset() {
	clear(h.entries)
	h.entries = h.entries[:0]
	h.notify()
}

func (h *History) notify() {
	if h.onChange != nil {
		h.onChange(h.CanUndo())
	}
}
