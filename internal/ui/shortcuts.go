package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// setupKeyboardShortcuts configures all keyboard shortcuts for the main window
func (w *MainWindow) setupKeyboardShortcuts() {
	canvas := w.window.Canvas()

	// Cmd+Enter: Send request
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyReturn,
		Modifier: fyne.KeyModifierSuper, // Cmd on macOS, Win on Windows
	}, func(shortcut fyne.Shortcut) {
		w.logger.Debug("keyboard shortcut: send request")
		w.requestPanel.TriggerSend()
	})

	// Cmd+S: Save request
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyS,
		Modifier: fyne.KeyModifierSuper,
	}, func(shortcut fyne.Shortcut) {
		w.logger.Debug("keyboard shortcut: save request")
		w.requestPanel.TriggerSave()
	})

	// Cmd+N: New request
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyN,
		Modifier: fyne.KeyModifierSuper,
	}, func(shortcut fyne.Shortcut) {
		w.logger.Debug("keyboard shortcut: new request")
		w.showCreateDialog()
	})

	// Cmd+W: Close tab
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyW,
		Modifier: fyne.KeyModifierSuper,
	}, func(shortcut fyne.Shortcut) {
		w.logger.Debug("keyboard shortcut: close tab")
		if id, ok := w.store.Workspace.ActiveID(); ok {
			w.store.Close(id)
		}
	})

	// Cmd+] / Cmd+[: Next and previous tab
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyRightBracket,
		Modifier: fyne.KeyModifierSuper,
	}, func(shortcut fyne.Shortcut) {
		w.logger.Debug("keyboard shortcut: next tab")
		w.cycleTab(1)
	})
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyLeftBracket,
		Modifier: fyne.KeyModifierSuper,
	}, func(shortcut fyne.Shortcut) {
		w.logger.Debug("keyboard shortcut: previous tab")
		w.cycleTab(-1)
	})

	// Cmd+R: Refresh collection
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyR,
		Modifier: fyne.KeyModifierSuper,
	}, func(shortcut fyne.Shortcut) {
		w.logger.Debug("keyboard shortcut: refresh")
		w.refresh()
	})

	w.logger.Info("keyboard shortcuts configured")
}

// cycleTab activates the neighbouring tab and makes sure its session is
// loaded.
func (w *MainWindow) cycleTab(step int) {
	if step > 0 {
		w.store.Workspace.Next()
	} else {
		w.store.Workspace.Prev()
	}
	if id, ok := w.store.Workspace.ActiveID(); ok {
		w.open(id)
	}
}
