package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/impulse/internal/app"
	"github.com/shhac/impulse/internal/domain"
	apperrors "github.com/shhac/impulse/internal/errors"
	"github.com/shhac/impulse/internal/logging"
	"github.com/shhac/impulse/internal/session"
	"github.com/shhac/impulse/internal/storage"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch body["ROUTE"] {
		case "/list":
			_, _ = w.Write([]byte(`{"requests": {"notes/readme": {"kind": "md"}, "api/users": {"kind": "http", "sub_kind": "get"}}, "history": []}`))
		case "/read":
			_, _ = w.Write([]byte(`{"id": "notes/readme", "kind": "md", "request": {"data": "# hi"}, "history": []}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "unsupported"}`))
		}
	}))
	t.Cleanup(srv.Close)

	cfg := app.DefaultConfig()
	cfg.StoragePath = t.TempDir()
	cfg.StorageDriver = storage.DriverMemory
	cfg.BackendURL = srv.URL

	a, err := app.NewWithLogger(test.NewApp(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestMainWindow_ShowsActiveRequest(t *testing.T) {
	a := newTestApp(t)
	w := NewMainWindow(a.FyneApp(), a)

	a.Start(context.Background(), "#notes/readme")

	assert.Eventually(t, func() bool {
		return w.requestPanel.ID() == "notes/readme"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		ids := w.tabBar.IDs()
		return len(ids) == 1 && ids[0] == "notes/readme"
	}, 2*time.Second, 10*time.Millisecond)

	id, ok := w.selectedID()
	require.True(t, ok)
	assert.Equal(t, "notes/readme", id)

	a.Store().Close("notes/readme")
	assert.Eventually(t, func() bool {
		return len(w.tabBar.IDs()) == 0 && w.requestPanel.ID() == ""
	}, 2*time.Second, 10*time.Millisecond)
}

// findEntry returns the first text entry under obj.
func findEntry(obj fyne.CanvasObject) *widget.Entry {
	switch o := obj.(type) {
	case *widget.Entry:
		return o
	case *fyne.Container:
		for _, child := range o.Objects {
			if e := findEntry(child); e != nil {
				return e
			}
		}
	case fyne.Widget:
		for _, child := range test.WidgetRenderer(o).Objects() {
			if e := findEntry(child); e != nil {
				return e
			}
		}
	}
	return nil
}

func TestMainWindow_FailedSaveRevertsEditor(t *testing.T) {
	a := newTestApp(t)
	w := NewMainWindow(a.FyneApp(), a)

	a.Start(context.Background(), "#notes/readme")
	assert.Eventually(t, func() bool {
		return w.state.ActiveSession().State() == session.StateReady && w.requestPanel.ID() == "notes/readme"
	}, 2*time.Second, 10*time.Millisecond)

	entry := findEntry(w.requestPanel)
	require.NotNil(t, entry)
	require.Equal(t, "# hi", entry.Text)

	entry.SetText("# edited")
	require.True(t, w.requestPanel.Dirty())
	patch := w.requestPanel.Patch()
	require.NotNil(t, patch)

	// The backend rejects every update.
	w.handleSave("notes/readme", patch)

	assert.Eventually(t, func() bool {
		snap := w.state.ActiveSession()
		return !snap.IsLoading && entry.Text == "# hi"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.MarkdownRequest{Data: "# hi"}, w.state.ActiveSession().Request.Data)
	assert.False(t, w.requestPanel.Dirty())
}

func TestMainWindow_RetryFor(t *testing.T) {
	a := newTestApp(t)
	w := NewMainWindow(a.FyneApp(), a)

	tests := []error{
		errors.New("plain"),
		&apperrors.OpError{Op: "fetch", Err: apperrors.ErrBackendUnavailable},
		&apperrors.OpError{Op: "load", ID: "notes/readme", Err: apperrors.ErrBackendUnavailable},
		&apperrors.OpError{Op: "reload", ID: "notes/readme", Err: apperrors.ErrBackendUnavailable},
		&apperrors.OpError{Op: "send", ID: "notes/readme", Err: apperrors.ErrBackendUnavailable},
	}
	for _, err := range tests {
		assert.NotNil(t, w.retryFor(err), err.Error())
	}
}

func TestMainWindow_Layout(t *testing.T) {
	a := newTestApp(t)
	w := NewMainWindow(a.FyneApp(), a)

	w.mainSplit.SetOffset(0.4)
	w.editorSplit.SetOffset(0.6)
	w.saveLayout()
	assert.JSONEq(t, `{"main": 0.4, "editor": 0.6}`, string(a.Store().Workspace.Layout()))

	w.mainSplit.SetOffset(0.1)
	w.RestoreLayout()
	assert.InDelta(t, 0.4, w.mainSplit.Offset, 1e-9)
	assert.InDelta(t, 0.6, w.editorSplit.Offset, 1e-9)
}
