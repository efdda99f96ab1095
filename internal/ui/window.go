package ui

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/collection"
	"github.com/shhac/impulse/internal/domain"
	apperrors "github.com/shhac/impulse/internal/errors"
	"github.com/shhac/impulse/internal/model"
	"github.com/shhac/impulse/internal/notify"
	"github.com/shhac/impulse/internal/session"
	"github.com/shhac/impulse/internal/store"
	"github.com/shhac/impulse/internal/ui/browser"
	uierrors "github.com/shhac/impulse/internal/ui/errors"
	"github.com/shhac/impulse/internal/ui/history"
	"github.com/shhac/impulse/internal/ui/request"
	"github.com/shhac/impulse/internal/ui/response"
	"github.com/shhac/impulse/internal/ui/workspace"
)

// rootFolder is the move target meaning "top level".
const rootFolder = "(top level)"

// AppController defines the interface for app-level operations needed by the UI
type AppController interface {
	Store() *store.Store
	State() *model.ApplicationState
	Logger() *slog.Logger
	Endpoint() string
	SetSink(sink notify.Sink)
}

// MainWindow manages the main application window and its layout.
type MainWindow struct {
	window fyne.Window
	state  *model.ApplicationState
	store  *store.Store
	logger *slog.Logger
	app    AppController
	ctx    context.Context

	// Panel widgets
	backendBar     *browser.BackendBar
	requestBrowser *browser.RequestBrowser
	toolbar        *widget.Toolbar
	tabBar         *workspace.TabBar
	requestPanel   *request.RequestPanel
	responsePanel  *response.ResponsePanel
	historyPanel   *history.HistoryPanel
	statusBar      *uierrors.StatusBar

	mainSplit   *container.Split
	editorSplit *container.Split
}

// windowLayout is the part of the window arrangement kept in the workspace.
type windowLayout struct {
	Main   float64 `json:"main"`
	Editor float64 `json:"editor"`
}

// NewMainWindow creates a new main window with the application layout.
// The window is split horizontally with:
//   - Left side: backend bar, collection tree and history
//   - Right side: open tabs, request editor (top), response (bottom), status bar
func NewMainWindow(fyneApp fyne.App, app AppController) *MainWindow {
	window := fyneApp.NewWindow("Impulse")

	mw := &MainWindow{
		window: window,
		state:  app.State(),
		store:  app.Store(),
		logger: app.Logger(),
		app:    app,
		ctx:    context.Background(),
	}

	mw.backendBar = browser.NewBackendBar(app.Endpoint(), mw.state.Connection)
	mw.requestBrowser = browser.NewRequestBrowser(mw.state.Tree, mw.state.Previews)
	mw.toolbar = mw.buildToolbar()
	mw.tabBar = workspace.NewTabBar(mw.state.Tabs, mw.state.Active)
	mw.requestPanel = request.NewRequestPanel(mw.logger)
	mw.responsePanel = response.NewResponsePanel()
	mw.historyPanel = history.NewHistoryPanel(mw.state.History, mw.logger)
	mw.statusBar = uierrors.NewStatusBar(mw.state.Connection, mw.state.Loading)

	app.SetSink(uierrors.DialogSink{
		Window: window,
		Logger: mw.logger,
		Retry:  mw.retryFor,
	})

	mw.wireCallbacks()
	mw.SetContent()
	mw.setupKeyboardShortcuts()
	mw.setupMainMenu()

	window.Resize(fyne.NewSize(1280, 820))
	return mw
}

// wireCallbacks sets up all the event handlers and connects components
func (w *MainWindow) wireCallbacks() {
	w.backendBar.SetOnRefresh(w.refresh)
	w.requestBrowser.SetOnSelect(w.open)
	w.historyPanel.SetOnSelect(func(entry domain.HistoryEntry) {
		w.open(entry.RequestID)
	})

	w.tabBar.SetOnSelect(w.open)
	w.tabBar.SetOnClose(func(id string) {
		w.store.Close(id)
	})

	w.requestPanel.SetOnSave(w.handleSave)
	w.requestPanel.SetOnSend(w.handleSend)
	w.requestPanel.SetMethodLister(w.listMethods)
	w.requestPanel.SetJQEvaluator(w.evalJQ)

	w.state.Session.AddListener(binding.NewDataListener(func() {
		snap := w.state.ActiveSession()
		w.requestPanel.Display(snap)
		w.responsePanel.Display(snap)
		w.historyPanel.SetRequestHistory(snap.History)
	}))
	w.state.ActiveID.AddListener(binding.NewDataListener(func() {
		id, _ := w.state.ActiveID.Get()
		if id != "" {
			w.requestBrowser.Reveal(id)
		}
	}))
}

// SetContent builds the window layout.
func (w *MainWindow) SetContent() {
	left := container.NewBorder(
		container.NewVBox(w.backendBar, w.toolbar, widget.NewSeparator()),
		nil, nil, nil,
		container.NewVSplit(w.requestBrowser, w.historyPanel),
	)

	w.editorSplit = container.NewVSplit(w.requestPanel, w.responsePanel)
	w.editorSplit.SetOffset(0.45)

	right := container.NewBorder(
		container.NewVBox(w.tabBar, widget.NewSeparator()),
		w.statusBar,
		nil, nil,
		w.editorSplit,
	)

	w.mainSplit = container.NewHSplit(left, right)
	w.mainSplit.SetOffset(0.28)
	w.window.SetContent(w.mainSplit)
	w.window.SetOnClosed(w.saveLayout)
}

// RestoreLayout applies the split offsets saved in the workspace.
func (w *MainWindow) RestoreLayout() {
	raw := w.store.Workspace.Layout()
	if len(raw) == 0 {
		return
	}
	var l windowLayout
	if err := json.Unmarshal(raw, &l); err != nil {
		w.logger.Warn("ignoring unreadable window layout", slog.Any("error", err))
		return
	}
	if l.Main > 0 && l.Main < 1 {
		w.mainSplit.SetOffset(l.Main)
	}
	if l.Editor > 0 && l.Editor < 1 {
		w.editorSplit.SetOffset(l.Editor)
	}
}

func (w *MainWindow) saveLayout() {
	raw, err := json.Marshal(windowLayout{Main: w.mainSplit.Offset, Editor: w.editorSplit.Offset})
	if err != nil {
		return
	}
	w.store.Workspace.SetLayout(raw)
}

func (w *MainWindow) buildToolbar() *widget.Toolbar {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentAddIcon(), w.showCreateDialog),
		widget.NewToolbarAction(theme.ContentCopyIcon(), w.duplicateSelected),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), w.showRenameDialog),
		widget.NewToolbarAction(theme.FolderOpenIcon(), w.showMoveDialog),
		widget.NewToolbarAction(theme.DeleteIcon(), w.confirmDelete),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), w.refresh),
	)
}

// Window returns the underlying Fyne window.
func (w *MainWindow) Window() fyne.Window {
	return w.window
}

// open activates the tab for id, loading its session when needed.
func (w *MainWindow) open(id string) {
	go w.store.Select(w.ctx, id)
}

// refresh refetches the collection and the active session.
func (w *MainWindow) refresh() {
	go func() {
		if !w.store.Collection.Fetch(w.ctx) {
			return
		}
		if id, ok := w.store.Workspace.ActiveID(); ok {
			w.store.Sessions.Reload(w.ctx, id)
		}
	}()
}

// retryFor returns the action behind the Retry button of a failure dialog.
func (w *MainWindow) retryFor(err error) func() {
	var opErr *apperrors.OpError
	if !stderrors.As(err, &opErr) {
		return w.refresh
	}
	switch opErr.Op {
	case collection.OpFetch:
		return func() { go w.store.Collection.Fetch(w.ctx) }
	case session.OpLoad:
		id := opErr.ID
		return func() { w.open(id) }
	case session.OpReload:
		id := opErr.ID
		return func() { go w.store.Sessions.Reload(w.ctx, id) }
	default:
		return w.refresh
	}
}

// handleSave runs on the UI goroutine. The form stops being dirty before
// the update starts, so both the optimistic change and a rollback refill it.
func (w *MainWindow) handleSave(id string, patch domain.Patch) {
	if patch == nil {
		return
	}
	w.requestPanel.MarkSaved()
	go func() {
		if !w.store.UpdateRequest(w.ctx, id, patch) {
			fyne.Do(w.revert(id))
		}
	}()
}

func (w *MainWindow) handleSend(id string, patch domain.Patch) {
	if patch != nil {
		w.requestPanel.MarkSaved()
	}
	go func() {
		if patch != nil && !w.store.UpdateRequest(w.ctx, id, patch) {
			fyne.Do(w.revert(id))
			return
		}
		w.store.Send(w.ctx, id)
	}()
}

// revert refills the editor from the session after an update was dropped,
// so the form never shows an edit the store does not hold.
func (w *MainWindow) revert(id string) func() {
	return func() {
		if w.requestPanel.ID() == id {
			w.requestPanel.Display(w.state.ActiveSession())
		}
	}
}

func (w *MainWindow) listMethods(target string, done func(methods []string)) {
	go func() {
		services, _ := w.store.Methods(w.ctx, target)
		var methods []string
		for _, svc := range services {
			methods = append(methods, svc.FullMethods()...)
		}
		fyne.Do(func() { done(methods) })
	}()
}

func (w *MainWindow) evalJQ(json, query string, done func(out []string, ok bool)) {
	go func() {
		out, ok := w.store.JQ(w.ctx, json, query)
		fyne.Do(func() { done(out, ok) })
	}()
}

// selectedID is the request the collection actions apply to: the tree
// selection, or the active tab when nothing is selected.
func (w *MainWindow) selectedID() (string, bool) {
	if id := w.requestBrowser.Selected(); id != "" {
		return id, true
	}
	return w.store.Workspace.ActiveID()
}

func (w *MainWindow) showCreateDialog() {
	name := widget.NewEntry()
	name.SetPlaceHolder("folder/name")
	if dir := w.requestBrowser.SelectedDir(); dir != "" {
		name.SetText(dir + domain.PathSeparator)
	}

	labels := make([]string, len(domain.AllKinds))
	byLabel := make(map[string]domain.Kind, len(domain.AllKinds))
	for i, k := range domain.AllKinds {
		labels[i] = k.Label()
		byLabel[labels[i]] = k
	}
	kind := widget.NewSelect(labels, nil)
	kind.SetSelected(labels[0])

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Kind", kind),
	}
	dialog.ShowForm("New Request", "Create", "Cancel", items, func(ok bool) {
		n := strings.TrimSpace(name.Text)
		if !ok || n == "" {
			return
		}
		k := byLabel[kind.Selected]
		go w.store.Create(w.ctx, n, k)
	}, w.window)
}

func (w *MainWindow) duplicateSelected() {
	id, ok := w.selectedID()
	if !ok {
		return
	}
	go w.store.Duplicate(w.ctx, id)
}

func (w *MainWindow) showRenameDialog() {
	id, ok := w.selectedID()
	if !ok {
		return
	}
	entry := widget.NewEntry()
	entry.SetText(id)
	dialog.ShowForm("Rename "+id, "Rename", "Cancel", []*widget.FormItem{
		widget.NewFormItem("New id", entry),
	}, func(ok bool) {
		newID := strings.TrimSpace(entry.Text)
		if !ok || newID == "" || newID == id {
			return
		}
		go w.store.Rename(w.ctx, id, newID)
	}, w.window)
}

func (w *MainWindow) showMoveDialog() {
	id, ok := w.selectedID()
	if !ok {
		return
	}
	options := append([]string{rootFolder}, w.state.CurrentTree().DirPaths()...)
	folder := widget.NewSelect(options, nil)
	folder.SetSelected(rootFolder)
	if dir := domain.Dirname(id); dir != "" {
		folder.SetSelected(dir)
	}

	dialog.ShowForm("Move "+id, "Move", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Folder", folder),
	}, func(ok bool) {
		if !ok {
			return
		}
		target := folder.Selected
		if target == rootFolder {
			target = ""
		}
		go w.store.Move(w.ctx, id, target, domain.DropInside)
	}, w.window)
}

func (w *MainWindow) confirmDelete() {
	id, ok := w.selectedID()
	if !ok {
		return
	}
	dialog.ShowConfirm("Delete Request", "Delete "+id+"? This cannot be undone.", func(ok bool) {
		if ok {
			go w.store.Delete(w.ctx, id)
		}
	}, w.window)
}

// Show displays the window.
func (w *MainWindow) Show() {
	w.window.Show()
}

// ShowAndRun displays the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}
