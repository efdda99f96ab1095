package response

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// ReadOnlyEntry looks like a normal entry, so text can be selected and
// copied, but ignores every edit.
type ReadOnlyEntry struct {
	widget.Entry
}

// NewReadOnlyMultiLineEntry creates a wrapped, monospace read-only entry.
func NewReadOnlyMultiLineEntry() *ReadOnlyEntry {
	e := &ReadOnlyEntry{}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.TextStyle = fyne.TextStyle{Monospace: true}
	e.ExtendBaseWidget(e)
	return e
}

func (e *ReadOnlyEntry) TypedRune(_ rune) {}

// TypedKey keeps navigation keys only.
func (e *ReadOnlyEntry) TypedKey(key *fyne.KeyEvent) {
	switch key.Name {
	case fyne.KeyLeft, fyne.KeyRight, fyne.KeyUp, fyne.KeyDown,
		fyne.KeyHome, fyne.KeyEnd, fyne.KeyPageUp, fyne.KeyPageDown:
		e.Entry.TypedKey(key)
	}
}

// TypedShortcut keeps copy and select-all only.
func (e *ReadOnlyEntry) TypedShortcut(shortcut fyne.Shortcut) {
	switch shortcut.(type) {
	case *fyne.ShortcutCopy, *fyne.ShortcutSelectAll:
		e.Entry.TypedShortcut(shortcut)
	}
}
