package browser

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/model"
	"github.com/shhac/impulse/internal/ui/components"
)

const endpointMaxRunes = 36

// BackendBar shows which backend the client talks to and lets the user
// refetch the collection. It sits at the top of the browser panel.
type BackendBar struct {
	widget.BaseWidget

	endpoint   *components.HintLabel
	refreshBtn *widget.Button
	state      *model.ConnectionUIState

	onRefresh func()

	container *fyne.Container
}

// NewBackendBar creates a backend bar for endpoint.
func NewBackendBar(endpoint string, state *model.ConnectionUIState) *BackendBar {
	c := &BackendBar{state: state}

	c.endpoint = components.NewHintLabel(endpoint, endpointMaxRunes)

	c.refreshBtn = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		if c.onRefresh != nil {
			c.onRefresh()
		}
	})

	c.container = container.NewBorder(nil, nil, nil, c.refreshBtn, c.endpoint)

	state.State.AddListener(binding.NewDataListener(func() {
		c.updateButton()
	}))

	c.ExtendBaseWidget(c)
	return c
}

// SetOnRefresh sets the callback for the refresh button.
func (c *BackendBar) SetOnRefresh(fn func()) {
	c.onRefresh = fn
}

// CreateRenderer creates the renderer for this widget
func (c *BackendBar) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.container)
}

// updateButton highlights the refresh button while the backend is failing.
func (c *BackendBar) updateButton() {
	state, err := c.state.State.Get()
	if err != nil {
		return
	}

	switch state {
	case "connecting":
		c.refreshBtn.Disable()
	case "error":
		c.refreshBtn.Importance = widget.DangerImportance
		c.refreshBtn.Enable()
	default:
		c.refreshBtn.Importance = widget.MediumImportance
		c.refreshBtn.Enable()
	}
	c.refreshBtn.Refresh()
}
