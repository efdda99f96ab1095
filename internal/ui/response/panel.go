package response

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"google.golang.org/grpc/codes"

	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/session"
	"github.com/shhac/impulse/internal/ui/metadata"
)

// ResponsePanel displays the latest response of the active request.
type ResponsePanel struct {
	widget.BaseWidget

	statusLabel   *widget.Label
	durationLabel *widget.Label
	loadingBar    *widget.ProgressBarInfinite
	placeholder   *widget.Label

	contentContainer *fyne.Container
}

// NewResponsePanel creates an empty response panel.
func NewResponsePanel() *ResponsePanel {
	p := &ResponsePanel{}
	p.ExtendBaseWidget(p)

	p.statusLabel = widget.NewLabel("")
	p.statusLabel.TextStyle = fyne.TextStyle{Bold: true}
	p.durationLabel = widget.NewLabel("")
	p.durationLabel.Importance = widget.LowImportance

	p.loadingBar = widget.NewProgressBarInfinite()
	p.loadingBar.Stop()
	p.loadingBar.Hide()

	p.placeholder = widget.NewLabel("Send the request to see a response")
	p.placeholder.Alignment = fyne.TextAlignCenter
	p.contentContainer = container.NewStack(container.NewCenter(p.placeholder))
	return p
}

// Display renders the response and loading state of snap.
func (p *ResponsePanel) Display(snap session.Snapshot) {
	p.SetLoading(snap.IsLoading)

	p.durationLabel.SetText("")
	if len(snap.History) > 0 {
		p.durationLabel.SetText(formatDuration(snap.History[0]))
	}

	if snap.Response == nil {
		p.statusLabel.SetText("")
		p.setContent(container.NewCenter(p.placeholder))
		return
	}

	status, content := render(snap.Response)
	p.statusLabel.SetText(status)
	p.setContent(content)
}

// Status returns the summary line of the displayed response.
func (p *ResponsePanel) Status() string {
	return p.statusLabel.Text
}

// SetLoading shows or hides the loading indicator.
func (p *ResponsePanel) SetLoading(loading bool) {
	if loading {
		p.loadingBar.Start()
		p.loadingBar.Show()
	} else {
		p.loadingBar.Stop()
		p.loadingBar.Hide()
	}
}

func (p *ResponsePanel) setContent(obj fyne.CanvasObject) {
	p.contentContainer.Objects = []fyne.CanvasObject{obj}
	p.contentContainer.Refresh()
}

// render builds the status line and body view for one response kind.
func render(resp domain.ResponseData) (string, fyne.CanvasObject) {
	switch r := resp.(type) {
	case domain.HTTPResponse:
		headers := metadata.NewKVView("No headers")
		headers.Set(r.Headers)
		return httpStatus(r.Code), container.NewAppTabs(
			container.NewTabItem("Body", richBody(r.Body)),
			container.NewTabItem(fmt.Sprintf("Headers (%d)", len(r.Headers)), headers),
		)
	case domain.SQLResponse:
		return fmt.Sprintf("%d rows", len(r.Rows)), newResultTable(r)
	case domain.GRPCResponse:
		md := metadata.NewKVView("No metadata")
		md.Set(r.Metadata)
		return grpcStatus(r.Code), container.NewAppTabs(
			container.NewTabItem("Response", richBody(r.Response)),
			container.NewTabItem(fmt.Sprintf("Metadata (%d)", len(r.Metadata)), md),
		)
	case domain.JQResponse:
		return fmt.Sprintf("%d results", len(r.Response)), richBody(strings.Join(r.Response, "\n"))
	case domain.RedisResponse:
		text := NewReadOnlyMultiLineEntry()
		text.SetText(r.Response)
		return "", text
	case domain.MarkdownResponse:
		md := widget.NewRichTextFromMarkdown(r.Data)
		md.Wrapping = fyne.TextWrapWord
		return "", container.NewVScroll(md)
	default:
		return "", widget.NewLabel(fmt.Sprintf("Unsupported response kind %q", resp.Kind()))
	}
}

func richBody(body string) fyne.CanvasObject {
	rt := widget.NewRichText(bodySegments(body)...)
	rt.Wrapping = fyne.TextWrapWord
	return container.NewScroll(rt)
}

func httpStatus(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return strconv.Itoa(code)
}

func grpcStatus(code int) string {
	return fmt.Sprintf("%d %s", code, codes.Code(uint32(code)).String())
}

func formatDuration(e domain.HistoryEntry) string {
	d := e.Duration()
	if d <= 0 {
		return ""
	}
	return "Duration: " + d.Round(time.Millisecond).String()
}

// CreateRenderer implements fyne.Widget.
func (p *ResponsePanel) CreateRenderer() fyne.WidgetRenderer {
	header := container.NewBorder(nil, nil, nil, p.durationLabel, p.statusLabel)
	content := container.NewBorder(
		container.NewVBox(header, widget.NewSeparator()),
		p.loadingBar,
		nil, nil,
		p.contentContainer,
	)
	return widget.NewSimpleRenderer(content)
}

// MinSize implements fyne.Widget (optional, provides reasonable defaults).
func (p *ResponsePanel) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}
