package request

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/session"
)

// RequestPanel edits the payload of the active request.
//
// Edits stay local until Save or Send: the panel hands the whole form to the
// caller as one patch, so a save never races keystrokes. While a session is
// loading the buttons are disabled; edits made meanwhile are kept and go out
// with the next Save.
type RequestPanel struct {
	widget.BaseWidget

	title       *widget.Label
	badge       *widget.Label
	placeholder *widget.Label
	body        *fyne.Container
	saveBtn     *widget.Button
	sendBtn     *widget.Button

	id      string
	kind    domain.Kind
	form    kindForm
	dirty   bool
	loading bool // suppresses change tracking while a form is filled
	hooks   formHooks

	logger *slog.Logger

	onSave func(id string, patch domain.Patch)
	onSend func(id string, patch domain.Patch)
}

// NewRequestPanel creates a new request panel
func NewRequestPanel(logger *slog.Logger) *RequestPanel {
	p := &RequestPanel{logger: logger}

	p.title = widget.NewLabel("No request selected")
	p.title.TextStyle = fyne.TextStyle{Bold: true}
	p.title.Truncation = fyne.TextTruncateEllipsis
	p.badge = widget.NewLabel("")
	p.badge.Importance = widget.LowImportance

	p.placeholder = widget.NewLabel("Select a request in the collection")
	p.placeholder.Alignment = fyne.TextAlignCenter
	p.body = container.NewStack(container.NewCenter(p.placeholder))

	p.saveBtn = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), p.handleSave)
	p.sendBtn = widget.NewButtonWithIcon("Send", theme.MailSendIcon(), p.handleSend)
	p.sendBtn.Importance = widget.HighImportance
	p.setButtons(false)

	p.ExtendBaseWidget(p)
	return p
}

// SetOnSave sets the callback for Save. patch is nil when nothing changed.
func (p *RequestPanel) SetOnSave(fn func(id string, patch domain.Patch)) {
	p.onSave = fn
}

// SetOnSend sets the callback for Send. patch is nil when nothing changed.
func (p *RequestPanel) SetOnSend(fn func(id string, patch domain.Patch)) {
	p.onSend = fn
}

// SetMethodLister lets the gRPC form offer the methods of its target. fn
// runs off the UI goroutine and must call done on it.
func (p *RequestPanel) SetMethodLister(fn func(target string, done func(methods []string))) {
	p.hooks.listMethods = fn
}

// SetJQEvaluator lets the jq form try a query before saving. fn runs off the
// UI goroutine and must call done on it.
func (p *RequestPanel) SetJQEvaluator(fn func(json, query string, done func(out []string, ok bool))) {
	p.hooks.evalJQ = fn
}

// ID returns the id of the request being edited, "" when none.
func (p *RequestPanel) ID() string {
	return p.id
}

// Dirty reports whether the form holds unsaved edits.
func (p *RequestPanel) Dirty() bool {
	return p.dirty
}

// Display shows snap. A different request replaces the form; the same
// request refreshes it unless the user has unsaved edits.
func (p *RequestPanel) Display(snap session.Snapshot) {
	if snap.ID == "" {
		p.clear("Select a request in the collection")
		return
	}

	p.title.SetText(snap.ID)
	if snap.Request == nil {
		p.id = snap.ID
		p.kind = ""
		p.form = nil
		p.dirty = false
		p.badge.SetText("")
		p.showPlaceholder("Loading…")
		p.setButtons(false)
		return
	}

	data := snap.Request.Data
	switch {
	case snap.ID != p.id || data.Kind() != p.kind || p.form == nil:
		p.id = snap.ID
		p.kind = data.Kind()
		p.dirty = false
		p.form = newKindForm(p.kind, p.changed, p.hooks)
		if p.form == nil {
			p.logger.Warn("no editor for request kind", slog.String("kind", string(p.kind)))
			p.showPlaceholder("Unsupported request kind")
			p.setButtons(false)
			return
		}
		p.fill(data)
		p.body.Objects = []fyne.CanvasObject{p.form.object()}
		p.body.Refresh()
	case !p.dirty:
		p.fill(data)
	}

	p.badge.SetText(domain.Preview{Kind: data.Kind(), SubKind: domain.SubKind(data)}.Badge())
	p.setButtons(!snap.IsLoading)
}

func (p *RequestPanel) fill(data domain.RequestData) {
	p.loading = true
	defer func() { p.loading = false }()
	p.form.load(data)
}

func (p *RequestPanel) clear(message string) {
	p.id = ""
	p.kind = ""
	p.form = nil
	p.dirty = false
	p.title.SetText("No request selected")
	p.badge.SetText("")
	p.showPlaceholder(message)
	p.setButtons(false)
}

func (p *RequestPanel) showPlaceholder(message string) {
	p.placeholder.SetText(message)
	p.body.Objects = []fyne.CanvasObject{container.NewCenter(p.placeholder)}
	p.body.Refresh()
}

func (p *RequestPanel) setButtons(enabled bool) {
	if enabled {
		p.saveBtn.Enable()
		p.sendBtn.Enable()
	} else {
		p.saveBtn.Disable()
		p.sendBtn.Disable()
	}
}

func (p *RequestPanel) changed() {
	if p.loading {
		return
	}
	p.dirty = true
}

// Patch returns the pending edits, nil when there are none.
func (p *RequestPanel) Patch() domain.Patch {
	if p.form == nil || !p.dirty {
		return nil
	}
	return p.form.patch()
}

// MarkSaved clears the dirty flag after the caller persisted the patch.
func (p *RequestPanel) MarkSaved() {
	p.dirty = false
}

func (p *RequestPanel) handleSave() {
	if p.onSave == nil || p.id == "" || p.saveBtn.Disabled() {
		return
	}
	p.onSave(p.id, p.Patch())
}

func (p *RequestPanel) handleSend() {
	if p.onSend == nil || p.id == "" || p.sendBtn.Disabled() {
		return
	}
	p.onSend(p.id, p.Patch())
}

// TriggerSave programmatically triggers Save (for keyboard shortcut)
func (p *RequestPanel) TriggerSave() {
	p.handleSave()
}

// TriggerSend programmatically triggers Send (for keyboard shortcut)
func (p *RequestPanel) TriggerSend() {
	p.handleSend()
}

// CreateRenderer returns the widget renderer
func (p *RequestPanel) CreateRenderer() fyne.WidgetRenderer {
	header := container.NewBorder(nil, nil, nil, p.badge, p.title)
	buttons := container.NewHBox(layout.NewSpacer(), p.saveBtn, p.sendBtn)

	content := container.NewBorder(
		container.NewVBox(header, widget.NewSeparator()),
		container.NewVBox(widget.NewSeparator(), buttons),
		nil, nil,
		p.body,
	)
	return widget.NewSimpleRenderer(content)
}
