package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// Compile-time interface check.
var _ desktop.Hoverable = (*HintLabel)(nil)

// HintLabel displays text cut to a rune budget with "…" and shows the full
// text in a popup on hover.
type HintLabel struct {
	widget.BaseWidget

	fullText string
	max      int
	label    *widget.Label
	popup    *widget.PopUp
}

// NewHintLabel creates a label that truncates text longer than max runes and
// reveals the full text on mouse hover.
func NewHintLabel(text string, max int) *HintLabel {
	h := &HintLabel{max: max}
	h.label = widget.NewLabel("")
	h.ExtendBaseWidget(h)
	h.SetText(text)
	return h
}

// SetText replaces the full text.
func (h *HintLabel) SetText(text string) {
	h.fullText = text
	h.label.SetText(truncateRunes(text, h.max))
}

// Text returns the displayed, possibly truncated, text.
func (h *HintLabel) Text() string {
	return h.label.Text
}

// FullText returns the text before truncation.
func (h *HintLabel) FullText() string {
	return h.fullText
}

// SetImportance styles the label.
func (h *HintLabel) SetImportance(i widget.Importance) {
	h.label.Importance = i
	h.label.Refresh()
}

// truncateRunes returns s unchanged if it has at most max runes,
// otherwise truncates to max-1 runes and appends "…".
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// MouseIn shows a tooltip popup with the full text when the hint is truncated.
func (h *HintLabel) MouseIn(_ *desktop.MouseEvent) {
	if !h.needsTooltip() {
		return
	}
	c := fyne.CurrentApp().Driver().CanvasForObject(h)
	if c == nil {
		return
	}
	tip := widget.NewLabel(h.fullText)
	h.popup = widget.NewPopUp(tip, c)
	h.popup.ShowAtRelativePosition(fyne.NewPos(0, h.Size().Height), h)
}

// MouseMoved is required by desktop.Hoverable but needs no action.
func (h *HintLabel) MouseMoved(_ *desktop.MouseEvent) {}

// MouseOut hides and discards the tooltip popup.
func (h *HintLabel) MouseOut() {
	if h.popup != nil {
		h.popup.Hide()
		h.popup = nil
	}
}

func (h *HintLabel) needsTooltip() bool {
	return h.label.Text != h.fullText
}

// CreateRenderer implements fyne.Widget.
func (h *HintLabel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(h.label)
}
