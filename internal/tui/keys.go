package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the table editor.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	Edit     key.Binding
	Commit   key.Binding
	Cancel   key.Binding
	AddRow   key.Binding
	DelRow   key.Binding
	Copy     key.Binding
	Cut      key.Binding
	Paste    key.Binding
	Clear    key.Binding
	Renumber key.Binding
	Undo     key.Binding
	Save     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:  key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "left")),
	Right: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "right")),

	Edit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
	Commit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	AddRow:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add row")),
	DelRow:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete row")),
	Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy row")),
	Cut:      key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cut row")),
	Paste:    key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),
	Clear:    key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "clear cell")),
	Renumber: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "renumber")),
	Undo:     key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
	Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpBindings are shown in the footer, in order.
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Edit, k.AddRow, k.DelRow, k.Cut, k.Paste, k.Clear, k.Undo, k.Save, k.Quit}
}
