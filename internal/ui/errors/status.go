package errors

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/model"
)

// statusLook is the icon and fallback text for one connection state. Each
// state uses a distinct icon shape so the indicator is not color-only.
type statusLook struct {
	icon     fyne.Resource
	fallback string
}

var statusLooks = map[string]statusLook{
	"disconnected": {theme.RadioButtonIcon(), "Backend not contacted yet"},
	"connecting":   {theme.ViewRefreshIcon(), "Connecting..."},
	"connected":    {theme.ConfirmIcon(), "Connected"},
	"error":        {theme.ErrorIcon(), "Backend unavailable"},
}

// StatusBar displays the backend connection status and a busy indicator
// while the active request has a call in flight.
type StatusBar struct {
	widget.BaseWidget

	state       *model.ConnectionUIState
	statusLabel *widget.Label
	indicator   *widget.Icon
	loading     *widget.ProgressBarInfinite
}

// NewStatusBar creates a new status bar bound to the given connection
// state. loading, when non-nil, drives a busy indicator.
func NewStatusBar(state *model.ConnectionUIState, loading binding.Bool) *StatusBar {
	label := widget.NewLabel("")
	label.Truncation = fyne.TextTruncateEllipsis

	s := &StatusBar{
		state:       state,
		statusLabel: label,
		indicator:   widget.NewIcon(theme.RadioButtonIcon()),
		loading:     widget.NewProgressBarInfinite(),
	}
	s.loading.Hide()
	s.ExtendBaseWidget(s)

	state.State.AddListener(binding.NewDataListener(s.updateStatus))
	state.Message.AddListener(binding.NewDataListener(s.updateStatus))
	if loading != nil {
		loading.AddListener(binding.NewDataListener(func() {
			busy, _ := loading.Get()
			if busy {
				s.loading.Start()
				s.loading.Show()
			} else {
				s.loading.Stop()
				s.loading.Hide()
			}
		}))
	}

	s.updateStatus()
	return s
}

// updateStatus refreshes the status bar based on current state.
func (s *StatusBar) updateStatus() {
	stateStr, _ := s.state.State.Get()
	message, _ := s.state.Message.Get()

	look, ok := statusLooks[stateStr]
	if !ok {
		s.indicator.SetResource(theme.RadioButtonIcon())
		s.statusLabel.SetText("Unknown state")
		return
	}
	s.indicator.SetResource(look.icon)
	if message == "" {
		message = look.fallback
	}
	s.statusLabel.SetText(message)
}

// Text returns the status line currently shown.
func (s *StatusBar) Text() string {
	return s.statusLabel.Text
}

// CreateRenderer implements fyne.Widget.
func (s *StatusBar) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(
		nil, nil,
		container.NewHBox(s.indicator, s.statusLabel),
		nil,
		container.NewPadded(s.loading),
	))
}
