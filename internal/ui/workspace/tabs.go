// Package workspace renders the open request tabs.
package workspace

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/domain"
)

// TabBar is a strip of the open tabs, in workspace order, with the active
// one highlighted. It follows the Tabs and Active bindings.
type TabBar struct {
	widget.BaseWidget

	tabs   binding.StringList
	active binding.Int

	ids     []string
	buttons []*widget.Button
	box     *fyne.Container
	empty   *widget.Label

	onSelect func(id string)
	onClose  func(id string)

	content fyne.CanvasObject
}

// NewTabBar creates a tab bar over the workspace bindings.
func NewTabBar(tabs binding.StringList, active binding.Int) *TabBar {
	b := &TabBar{tabs: tabs, active: active}

	b.empty = widget.NewLabel("No open requests")
	b.empty.Importance = widget.LowImportance
	b.box = container.NewHBox(b.empty)
	b.content = container.NewHScroll(b.box)

	listener := binding.NewDataListener(b.rebuild)
	tabs.AddListener(listener)
	active.AddListener(listener)

	b.ExtendBaseWidget(b)
	return b
}

// SetOnSelect sets the callback for clicking a tab.
func (b *TabBar) SetOnSelect(fn func(id string)) {
	b.onSelect = fn
}

// SetOnClose sets the callback for a tab's close button.
func (b *TabBar) SetOnClose(fn func(id string)) {
	b.onClose = fn
}

// IDs returns the tabs currently shown.
func (b *TabBar) IDs() []string {
	return append([]string(nil), b.ids...)
}

func (b *TabBar) rebuild() {
	ids, err := b.tabs.Get()
	if err != nil {
		return
	}
	active, _ := b.active.Get()

	b.ids = append([]string(nil), ids...)
	b.buttons = b.buttons[:0]
	objects := make([]fyne.CanvasObject, 0, len(ids)*2)
	for i, id := range ids {
		tab := widget.NewButton(domain.Basename(id), func() {
			if b.onSelect != nil {
				b.onSelect(id)
			}
		})
		if i == active {
			tab.Importance = widget.HighImportance
		} else {
			tab.Importance = widget.LowImportance
		}
		closeBtn := widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
			if b.onClose != nil {
				b.onClose(id)
			}
		})
		closeBtn.Importance = widget.LowImportance
		b.buttons = append(b.buttons, tab)
		objects = append(objects, container.NewHBox(tab, closeBtn))
	}
	if len(objects) == 0 {
		objects = append(objects, b.empty)
	}

	b.box.Objects = objects
	b.box.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (b *TabBar) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.content)
}
