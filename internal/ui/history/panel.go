package history

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/domain"
)

// Scopes offered by the scope selector.
const (
	ScopeAll     = "All requests"
	ScopeRequest = "This request"
)

// HistoryPanel lists past executions, newest first, either for the whole
// collection or for the active request.
type HistoryPanel struct {
	widget.BaseWidget

	logger *slog.Logger

	all binding.Item[[]domain.HistoryEntry] // collection history

	// UI components
	listWidget  *widget.List
	statusLabel *widget.Label
	filterEntry *widget.Entry
	scopeSelect *widget.Select

	mu          sync.Mutex
	scope       string
	filterQuery string
	request     []domain.HistoryEntry // active request's history
	shown       []domain.HistoryEntry

	onSelect func(entry domain.HistoryEntry)

	content *fyne.Container
}

// NewHistoryPanel creates a history panel over the collection history.
func NewHistoryPanel(all binding.Item[[]domain.HistoryEntry], logger *slog.Logger) *HistoryPanel {
	p := &HistoryPanel{
		logger: logger,
		all:    all,
		scope:  ScopeAll,
	}

	p.ExtendBaseWidget(p)
	p.buildUI()
	all.AddListener(binding.NewDataListener(p.applyFilter))
	return p
}

func (p *HistoryPanel) buildUI() {
	p.statusLabel = widget.NewLabel("History (0)")

	p.filterEntry = widget.NewEntry()
	p.filterEntry.SetPlaceHolder("Filter by request...")
	p.filterEntry.OnChanged = func(query string) {
		p.mu.Lock()
		p.filterQuery = strings.ToLower(query)
		p.mu.Unlock()
		p.applyFilter()
	}

	p.scopeSelect = widget.NewSelect([]string{ScopeAll, ScopeRequest}, func(selected string) {
		p.SetScope(selected)
	})

	p.listWidget = widget.NewList(
		func() int {
			p.mu.Lock()
			defer p.mu.Unlock()
			return len(p.shown)
		},
		func() fyne.CanvasObject {
			timeLabel := widget.NewLabel("")
			badgeLabel := widget.NewLabel("")
			badgeLabel.Importance = widget.LowImportance
			summaryLabel := widget.NewLabel("")
			durationLabel := widget.NewLabel("")
			idLabel := widget.NewLabel("")
			idLabel.TextStyle = fyne.TextStyle{Bold: true}
			idLabel.Truncation = fyne.TextTruncateEllipsis

			return container.NewVBox(
				container.NewHBox(timeLabel, badgeLabel, summaryLabel, durationLabel),
				idLabel,
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			entry, ok := p.entry(id)
			if !ok {
				return
			}
			box := obj.(*fyne.Container)
			top := box.Objects[0].(*fyne.Container)
			top.Objects[0].(*widget.Label).SetText(entry.SentAt.Local().Format("15:04:05"))
			top.Objects[1].(*widget.Label).SetText(badge(entry))
			top.Objects[2].(*widget.Label).SetText(Summary(entry.Response))
			top.Objects[3].(*widget.Label).SetText(fmt.Sprintf("%dms", entry.Duration().Milliseconds()))
			box.Objects[1].(*widget.Label).SetText(entry.RequestID)
		},
	)

	// Click-to-open: tapping a row opens the request it belongs to
	p.listWidget.OnSelected = func(id widget.ListItemID) {
		entry, ok := p.entry(id)
		if ok && p.onSelect != nil {
			p.onSelect(entry)
		}
		// Deselect so the same item can be tapped again
		p.listWidget.UnselectAll()
	}

	p.scopeSelect.SetSelected(ScopeAll)

	header := container.NewVBox(
		p.statusLabel,
		container.NewBorder(nil, nil, nil, p.scopeSelect, p.filterEntry),
	)
	p.content = container.NewBorder(header, nil, nil, nil, p.listWidget)
}

// CreateRenderer implements the fyne.Widget interface
func (p *HistoryPanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.content)
}

// SetOnSelect sets the callback when the user clicks a history item.
func (p *HistoryPanel) SetOnSelect(fn func(entry domain.HistoryEntry)) {
	p.onSelect = fn
}

// SetScope switches between the collection and the active request.
func (p *HistoryPanel) SetScope(scope string) {
	p.mu.Lock()
	p.scope = scope
	p.mu.Unlock()
	p.applyFilter()
}

// SetRequestHistory replaces the history of the active request.
func (p *HistoryPanel) SetRequestHistory(entries []domain.HistoryEntry) {
	p.mu.Lock()
	p.request = append([]domain.HistoryEntry(nil), entries...)
	p.mu.Unlock()
	p.applyFilter()
}

// Shown returns the entries currently listed.
func (p *HistoryPanel) Shown() []domain.HistoryEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.HistoryEntry(nil), p.shown...)
}

func (p *HistoryPanel) entry(id int) (domain.HistoryEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id < 0 || id >= len(p.shown) {
		return domain.HistoryEntry{}, false
	}
	return p.shown[id], true
}

func (p *HistoryPanel) collection() []domain.HistoryEntry {
	items, err := p.all.Get()
	if err != nil {
		p.logger.Error("failed to read history", slog.Any("error", err))
		return nil
	}
	return items
}

// applyFilter rebuilds the shown list from the current scope and filter.
func (p *HistoryPanel) applyFilter() {
	collection := p.collection()

	p.mu.Lock()
	source := collection
	if p.scope == ScopeRequest {
		source = p.request
	}
	filtered := make([]domain.HistoryEntry, 0, len(source))
	for _, e := range source {
		if p.filterQuery != "" && !strings.Contains(strings.ToLower(e.RequestID), p.filterQuery) {
			continue
		}
		filtered = append(filtered, e)
	}
	p.shown = filtered
	text := fmt.Sprintf("History (%d)", len(source))
	if p.filterQuery != "" {
		text = fmt.Sprintf("History (%d of %d)", len(filtered), len(source))
	}
	p.mu.Unlock()

	fyne.Do(func() {
		p.statusLabel.SetText(text)
		p.listWidget.Refresh()
	})
}

func badge(e domain.HistoryEntry) string {
	if e.Request == nil {
		return ""
	}
	return domain.Preview{Kind: e.Request.Kind(), SubKind: domain.SubKind(e.Request)}.Badge()
}

// Summary is a one-word outcome of a response for list rows.
func Summary(resp domain.ResponseData) string {
	switch r := resp.(type) {
	case domain.HTTPResponse:
		return fmt.Sprintf("%d", r.Code)
	case domain.GRPCResponse:
		if r.Code == 0 {
			return "OK"
		}
		return fmt.Sprintf("code %d", r.Code)
	case domain.SQLResponse:
		return fmt.Sprintf("%d rows", len(r.Rows))
	case domain.JQResponse:
		return fmt.Sprintf("%d results", len(r.Response))
	case nil:
		return "-"
	default:
		return "done"
	}
}
