package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/ui/settings"
)

// Version is set at build time via ldflags:
//
//	go build -ldflags "-X github.com/shhac/impulse/internal/ui.Version=1.2.3"
var Version = "dev"

// ShowAboutDialog displays information about the Impulse application.
func ShowAboutDialog(parent fyne.Window) {
	content := container.NewVBox(
		widget.NewLabelWithStyle("Impulse", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabel("A multi-protocol request workbench"),
		widget.NewLabel("HTTP, SQL, gRPC, jq, Redis and Markdown notes"),
		widget.NewLabel("Version "+Version),
		widget.NewSeparator(),
		widget.NewLabel("Built with Fyne and Go"),
	)
	dialog.ShowCustom("About Impulse", "Close", content, parent)
}

// shortcutList is the reference shown by ShowShortcutDialog.
var shortcutList = []struct{ action, key string }{
	{"Send Request", "⌘ Return"},
	{"Save Request", "⌘ S"},
	{"New Request", "⌘ N"},
	{"Close Tab", "⌘ W"},
	{"Next Tab", "⌘ ]"},
	{"Previous Tab", "⌘ ["},
	{"Refresh Collection", "⌘ R"},
}

// ShowShortcutDialog displays a reference of all keyboard shortcuts.
func ShowShortcutDialog(parent fyne.Window) {
	grid := container.NewGridWithColumns(2)
	for _, s := range shortcutList {
		grid.Add(widget.NewLabel(s.action))
		grid.Add(widget.NewLabelWithStyle(s.key, fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}))
	}

	dialog.ShowCustom("Keyboard Shortcuts", "Close", container.NewVScroll(grid), parent)
}

// setupMainMenu installs the application menu.
func (w *MainWindow) setupMainMenu() {
	fyneApp := fyne.CurrentApp()

	file := fyne.NewMenu("File",
		fyne.NewMenuItem("New Request…", w.showCreateDialog),
		fyne.NewMenuItem("Refresh Collection", w.refresh),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences…", func() {
			settings.ShowPreferencesDialog(fyneApp, w.window, settings.PreferencesCallbacks{
				OnThemeChange: func(mode string) { ApplyTheme(fyneApp, mode) },
			})
		}),
	)
	help := fyne.NewMenu("Help",
		fyne.NewMenuItem("Keyboard Shortcuts", func() { ShowShortcutDialog(w.window) }),
		fyne.NewMenuItem("About Impulse", func() { ShowAboutDialog(w.window) }),
	)
	w.window.SetMainMenu(fyne.NewMainMenu(file, help))
}
