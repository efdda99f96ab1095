package browser

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// treeTheme overrides the tree chevrons and tightens row padding so deep
// collections stay readable. Everything else comes from the parent theme.
type treeTheme struct {
	parent fyne.Theme
}

func newTreeTheme(parent fyne.Theme) fyne.Theme {
	if parent == nil {
		parent = theme.DefaultTheme()
	}
	return &treeTheme{parent: parent}
}

func (t *treeTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return t.parent.Color(name, variant)
}

func (t *treeTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.parent.Font(style)
}

func (t *treeTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	switch name {
	case theme.IconNameNavigateNext:
		return theme.NavigateNextIcon()
	case theme.IconNameMoveDown:
		// Clearer downward chevron for open directories
		return theme.MenuDropDownIcon()
	default:
		return t.parent.Icon(name)
	}
}

func (t *treeTheme) Size(name fyne.ThemeSizeName) float32 {
	size := t.parent.Size(name)
	if name == theme.SizeNameInnerPadding {
		return size / 2
	}
	return size
}
