package errors

import (
	stderrors "errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	apperrors "github.com/shhac/impulse/internal/errors"
)

// ShowError displays a classified error dialog with recovery suggestions
// and technical details. onRetry, when non-nil, is offered for errors whose
// classification includes a Retry action.
func ShowError(err error, window fyne.Window, onRetry func()) {
	if err == nil {
		return
	}

	uiErr := apperrors.ClassifyError(err)
	if uiErr == nil {
		dialog.ShowError(err, window)
		return
	}

	content := dialogContent(uiErr)

	if onRetry != nil && hasRetry(uiErr) {
		d := dialog.NewCustomConfirm(
			uiErr.Title,
			"Retry",
			"Close",
			content,
			func(retry bool) {
				if retry {
					onRetry()
				}
			},
			window,
		)
		d.Resize(fyne.NewSize(500, 400))
		d.Show()
		return
	}

	d := dialog.NewCustom(uiErr.Title, "Close", content, window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// dialogContent builds word-wrapping labels so long messages don't widen
// the window.
func dialogContent(uiErr *apperrors.UIError) *fyne.Container {
	msgLabel := widget.NewLabel(uiErr.Message)
	msgLabel.Wrapping = fyne.TextWrapWord
	content := container.NewVBox(msgLabel)

	if len(uiErr.Recovery) > 0 {
		content.Add(widget.NewSeparator())
		content.Add(widget.NewLabel("You can:"))
		for _, suggestion := range uiErr.Recovery {
			lbl := widget.NewLabel("• " + suggestion)
			lbl.Wrapping = fyne.TextWrapWord
			content.Add(lbl)
		}
	}

	if uiErr.Details != "" {
		detailsLabel := widget.NewLabel(uiErr.Details)
		detailsLabel.Wrapping = fyne.TextWrapWord
		content.Add(widget.NewAccordion(
			widget.NewAccordionItem("Technical Details", detailsLabel),
		))
	}
	return content
}

func hasRetry(uiErr *apperrors.UIError) bool {
	for _, action := range uiErr.Actions {
		if action.Label == "Retry" {
			return true
		}
	}
	return false
}

// DialogSink shows every reported failure as an error dialog on window.
// Reports may come from any goroutine.
type DialogSink struct {
	Window fyne.Window
	Logger *slog.Logger

	// Retry, when set, is offered on failures that can be retried.
	Retry func(err error) func()
}

func (s DialogSink) Report(err error) {
	if err == nil || s.Window == nil {
		return
	}
	if s.Logger != nil {
		var opErr *apperrors.OpError
		if stderrors.As(err, &opErr) {
			s.Logger.Debug("showing error dialog", slog.String("op", opErr.Op), slog.String("request_id", opErr.ID))
		}
	}
	var retry func()
	if s.Retry != nil {
		retry = s.Retry(err)
	}
	fyne.Do(func() {
		ShowError(err, s.Window, retry)
	})
}
