// Package settings holds the preferences dialog and the keys it stores.
package settings

import (
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Preference keys (must match the constants used elsewhere in the app).
const (
	PrefRequestTimeout = "requestTimeout"
	PrefTheme          = "appTheme"
)

// Theme modes and their labels in the selector, in display order.
var themeModes = []struct{ mode, label string }{
	{"system", "System Default"},
	{"light", "Light"},
	{"dark", "Dark"},
}

// ThemeLabel returns the selector label for mode; unknown modes mean system.
func ThemeLabel(mode string) string {
	for _, m := range themeModes {
		if m.mode == mode {
			return m.label
		}
	}
	return themeModes[0].label
}

// ThemeMode returns the mode for a selector label.
func ThemeMode(label string) string {
	for _, m := range themeModes {
		if m.label == label {
			return m.mode
		}
	}
	return themeModes[0].mode
}

func themeLabels() []string {
	out := make([]string, len(themeModes))
	for i, m := range themeModes {
		out[i] = m.label
	}
	return out
}

// RequestTimeout returns the saved backend timeout, fallback when unset or
// not positive.
func RequestTimeout(prefs fyne.Preferences, fallback time.Duration) time.Duration {
	secs := prefs.FloatWithFallback(PrefRequestTimeout, 0)
	if secs <= 0 {
		return fallback
	}
	return time.Duration(secs * float64(time.Second))
}

// PreferencesCallbacks provides hooks for the preferences dialog to apply changes.
type PreferencesCallbacks struct {
	OnThemeChange func(mode string) // Called with "system", "dark", or "light"
}

// ShowPreferencesDialog displays the preferences dialog with General and Appearance tabs.
func ShowPreferencesDialog(a fyne.App, window fyne.Window, callbacks PreferencesCallbacks) {
	prefs := a.Preferences()

	// --- General tab ---

	timeoutEntry := widget.NewEntry()
	if secs := prefs.FloatWithFallback(PrefRequestTimeout, 0); secs > 0 {
		timeoutEntry.SetText(strconv.FormatFloat(secs, 'f', -1, 64))
	}
	timeoutEntry.SetPlaceHolder("from config")

	generalTab := container.NewTabItem("General", container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Backend Timeout (seconds)", timeoutEntry),
		),
		widget.NewLabel("Bounds every backend call. Applies on next start."),
	))

	// --- Appearance tab ---

	themeSelector := widget.NewSelect(themeLabels(), nil)
	themeSelector.SetSelected(ThemeLabel(prefs.StringWithFallback(PrefTheme, "system")))

	appearanceTab := container.NewTabItem("Appearance", container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Theme", themeSelector),
		),
	))

	// --- Build dialog ---

	tabs := container.NewAppTabs(generalTab, appearanceTab)

	dlg := dialog.NewCustomConfirm("Preferences", "Save", "Cancel", tabs, func(save bool) {
		if !save {
			return
		}

		if timeoutEntry.Text == "" {
			prefs.RemoveValue(PrefRequestTimeout)
		} else if val, err := strconv.ParseFloat(timeoutEntry.Text, 64); err == nil && val > 0 {
			prefs.SetFloat(PrefRequestTimeout, val)
		}

		mode := ThemeMode(themeSelector.Selected)
		prefs.SetString(PrefTheme, mode)
		if callbacks.OnThemeChange != nil {
			callbacks.OnThemeChange(mode)
		}
	}, window)

	dlg.Resize(fyne.NewSize(500, 350))
	dlg.Show()
}
