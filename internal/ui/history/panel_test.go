package history

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/logging"
)

func entries(ids ...string) []domain.HistoryEntry {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]domain.HistoryEntry, len(ids))
	for i, id := range ids {
		sent := base.Add(-time.Duration(i) * time.Minute)
		out[i] = domain.HistoryEntry{
			RequestID:  id,
			SentAt:     sent,
			ReceivedAt: sent.Add(20 * time.Millisecond),
			Request:    domain.HTTPRequest{Method: "GET"},
			Response:   domain.HTTPResponse{Code: 200},
		}
	}
	return out
}

func newHistoryBinding() binding.Item[[]domain.HistoryEntry] {
	return binding.NewItem(func(_, _ []domain.HistoryEntry) bool { return false })
}

func ids(es []domain.HistoryEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.RequestID
	}
	return out
}

func TestHistoryPanel_ShowsCollection(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	all := newHistoryBinding()
	require.NoError(t, all.Set(entries("users/list", "users/get", "db/count")))

	p := NewHistoryPanel(all, logging.NewNopLogger())
	p.applyFilter()
	assert.Equal(t, []string{"users/list", "users/get", "db/count"}, ids(p.Shown()))
	assert.Equal(t, "History (3)", p.statusLabel.Text)
}

func TestHistoryPanel_Filter(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	all := newHistoryBinding()
	require.NoError(t, all.Set(entries("users/list", "users/get", "db/count")))
	p := NewHistoryPanel(all, logging.NewNopLogger())

	test.Type(p.filterEntry, "USERS")
	assert.Equal(t, []string{"users/list", "users/get"}, ids(p.Shown()))
	assert.Equal(t, "History (2 of 3)", p.statusLabel.Text)
}

func TestHistoryPanel_RequestScope(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	all := newHistoryBinding()
	require.NoError(t, all.Set(entries("a", "b")))
	p := NewHistoryPanel(all, logging.NewNopLogger())

	mine := entries("b")
	p.SetRequestHistory(mine)
	p.scopeSelect.SetSelected(ScopeRequest)
	assert.Equal(t, []string{"b"}, ids(p.Shown()))

	p.scopeSelect.SetSelected(ScopeAll)
	assert.Equal(t, []string{"a", "b"}, ids(p.Shown()))
}

func TestHistoryPanel_Select(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	all := newHistoryBinding()
	require.NoError(t, all.Set(entries("a", "b")))
	p := NewHistoryPanel(all, logging.NewNopLogger())
	p.applyFilter()

	var got []string
	p.SetOnSelect(func(e domain.HistoryEntry) { got = append(got, e.RequestID) })
	p.listWidget.Select(1)
	p.listWidget.Select(1)
	assert.Equal(t, []string{"b", "b"}, got, "rows can be tapped again")
}

func TestHistoryPanel_FollowsBinding(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	all := newHistoryBinding()
	require.NoError(t, all.Set(entries("a", "b")))
	p := NewHistoryPanel(all, logging.NewNopLogger())

	// Same length, different entries: the list must still notice.
	require.NoError(t, all.Set(entries("c", "d")))
	assert.Eventually(t, func() bool {
		shown := ids(p.Shown())
		return len(shown) == 2 && shown[0] == "c"
	}, time.Second, 10*time.Millisecond)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		resp domain.ResponseData
		want string
	}{
		{domain.HTTPResponse{Code: 404}, "404"},
		{domain.GRPCResponse{}, "OK"},
		{domain.GRPCResponse{Code: 14}, "code 14"},
		{domain.SQLResponse{Rows: [][]any{{1}, {2}}}, "2 rows"},
		{domain.JQResponse{Response: []string{"1"}}, "1 results"},
		{domain.MarkdownResponse{}, "done"},
		{nil, "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Summary(tt.resp))
	}
}
