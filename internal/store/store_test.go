package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/logging"
	"github.com/shhac/impulse/internal/notify"
	"github.com/shhac/impulse/internal/session"
	"github.com/shhac/impulse/internal/storage"
)

func newStore(t *testing.T, b *memBackend, kv storage.Store) (*Store, *notify.Recorder) {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemoryStore()
	}
	sink := &notify.Recorder{}
	return New(b, kv, sink, logging.NewNopLogger()), sink
}

func TestSelect_OpensTabAndLoadsSession(t *testing.T) {
	b := newMemBackend("a", "b")
	s, _ := newStore(t, b, nil)
	s.Start(context.Background(), "")

	snap := s.Select(context.Background(), "a")
	assert.Equal(t, session.StateReady, snap.State())
	assert.Equal(t, domain.HTTPRequest{URL: "http://a", Method: "GET"}, snap.Request.Data)

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "a", active.ID)

	s.Select(context.Background(), "a")
	assert.Equal(t, 1, b.count("get"), "an open session is not refetched")
}

func TestScenario_CreateThenRename(t *testing.T) {
	b := newMemBackend("a/d")
	s, sink := newStore(t, b, nil)
	s.Start(context.Background(), "")

	id, ok := s.Create(context.Background(), "a/b", domain.KindHTTP)
	require.True(t, ok)
	assert.Equal(t, "a/b", id)
	dir, found := s.Collection.Tree().Subtree("a")
	require.True(t, found)
	assert.Equal(t, []string{"a/b", "a/d"}, dir.IDs)

	renamesBefore := b.count("update")
	require.True(t, s.Rename(context.Background(), "a/b", "a/c"))
	assert.Equal(t, renamesBefore+1, b.count("update"), "exactly one rename call")
	assert.False(t, s.Collection.Tree().Contains("a/b"))
	assert.True(t, s.Collection.Tree().Contains("a/c"))
	assert.Equal(t, []string{"a/c"}, s.Workspace.Snapshot().Tabs, "the created tab follows the rename")
	assert.Zero(t, sink.Len())
}

func TestRename_RekeysTabAndSession(t *testing.T) {
	b := newMemBackend("a/b", "other")
	s, sink := newStore(t, b, nil)
	s.Start(context.Background(), "")
	s.Select(context.Background(), "a/b")
	s.Select(context.Background(), "other")

	require.True(t, s.Rename(context.Background(), "a/b", "a/c"))

	ws := s.Workspace.Snapshot()
	assert.Equal(t, []string{"a/c", "other"}, ws.Tabs, "tab keeps its position")
	_, ok := s.Sessions.Get("a/b")
	assert.False(t, ok)
	snap, ok := s.Sessions.Get("a/c")
	require.True(t, ok)
	assert.Equal(t, "a/c", snap.Request.ID)
	assert.Zero(t, sink.Len())
}

func TestMove_Inside(t *testing.T) {
	b := newMemBackend("dir/x", "leaf")
	s, _ := newStore(t, b, nil)
	s.Start(context.Background(), "")
	s.Select(context.Background(), "leaf")

	newID, ok := s.Move(context.Background(), "leaf", "dir", domain.DropInside)
	require.True(t, ok)
	assert.Equal(t, "dir/leaf", newID)
	assert.Equal(t, []string{"dir/leaf"}, s.Workspace.Snapshot().Tabs)
	assert.True(t, s.Collection.Tree().Contains("dir/leaf"))
}

func TestDelete_PrunesTabAndSession(t *testing.T) {
	b := newMemBackend("a", "b", "c")
	s, _ := newStore(t, b, nil)
	s.Start(context.Background(), "")
	for _, id := range []string{"a", "b", "c"} {
		s.Select(context.Background(), id)
	}

	require.True(t, s.Delete(context.Background(), "b"))

	ws := s.Workspace.Snapshot()
	assert.Equal(t, []string{"a", "c"}, ws.Tabs)
	id, _ := ws.ActiveID()
	assert.Equal(t, "c", id)
	_, ok := s.Sessions.Get("b")
	assert.False(t, ok)
}

func TestExternalRemovalIsPruned(t *testing.T) {
	b := newMemBackend("a", "b")
	s, _ := newStore(t, b, nil)
	s.Start(context.Background(), "")
	s.Select(context.Background(), "a")
	s.Select(context.Background(), "b")

	b.remove("a")
	require.True(t, s.Collection.Fetch(context.Background()))

	assert.Equal(t, []string{"b"}, s.Workspace.Snapshot().Tabs)
}

func TestClose(t *testing.T) {
	b := newMemBackend("a", "b")
	s, _ := newStore(t, b, nil)
	s.Start(context.Background(), "")
	s.Select(context.Background(), "a")
	s.Select(context.Background(), "b")

	s.Close("b")
	assert.Equal(t, []string{"a"}, s.Workspace.Snapshot().Tabs)
	_, ok := s.Sessions.Get("b")
	assert.False(t, ok)

	s.Close("a")
	_, ok = s.Active()
	assert.False(t, ok)
}

func TestStart_RestoresTabsAndDeepLink(t *testing.T) {
	b := newMemBackend("a", "b", "gone", "deep")
	kv := storage.NewMemoryStore()
	first, _ := newStore(t, b, kv)
	first.Start(context.Background(), "")
	for _, id := range []string{"a", "gone", "b"} {
		first.Select(context.Background(), id)
	}
	b.remove("gone")

	second, _ := newStore(t, b, kv)
	frag := second.Start(context.Background(), "#deep")

	assert.Equal(t, "deep", frag)
	ws := second.Workspace.Snapshot()
	assert.Equal(t, []string{"a", "b", "deep"}, ws.Tabs)
	for _, id := range ws.Tabs {
		snap, ok := second.Sessions.Get(id)
		require.True(t, ok, id)
		assert.Equal(t, session.StateReady, snap.State(), id)
	}
}

func TestStart_UnknownDeepLinkCleared(t *testing.T) {
	b := newMemBackend("a")
	s, _ := newStore(t, b, nil)
	assert.Empty(t, s.Start(context.Background(), "missing"))
	assert.Empty(t, s.Workspace.Snapshot().Tabs)
}

func TestStart_BackendDownKeepsPersistedTabs(t *testing.T) {
	b := newMemBackend("a", "b")
	kv := storage.NewMemoryStore()
	first, _ := newStore(t, b, kv)
	first.Start(context.Background(), "")
	first.Select(context.Background(), "a")
	first.Select(context.Background(), "b")

	b.setDown(true)
	second, sink := newStore(t, b, kv)
	second.Start(context.Background(), "")

	assert.Equal(t, []string{"a", "b"}, second.Workspace.Snapshot().Tabs)
	snap, _ := second.Sessions.Get("a")
	assert.Equal(t, session.StateLoading, snap.State(), "failed loads show a placeholder")
	assert.Contains(t, sink.Ops(), "fetch")

	b.setDown(false)
	b.remove("a")
	require.True(t, second.Collection.Fetch(context.Background()))
	assert.Equal(t, []string{"b"}, second.Workspace.Snapshot().Tabs)
}

func TestStart_BackendDownClearsDeepLink(t *testing.T) {
	b := newMemBackend("a")
	kv := storage.NewMemoryStore()
	first, _ := newStore(t, b, kv)
	first.Start(context.Background(), "")
	first.Select(context.Background(), "a")

	b.setDown(true)
	second, _ := newStore(t, b, kv)
	frag := second.Start(context.Background(), "#does/not/exist")

	assert.Empty(t, frag)
	assert.Equal(t, []string{"a"}, second.Workspace.Snapshot().Tabs)
	_, ok := second.Sessions.Get("does/not/exist")
	assert.False(t, ok)
}

func TestSendAndUpdate(t *testing.T) {
	b := newMemBackend("a")
	s, _ := newStore(t, b, nil)
	s.Start(context.Background(), "")
	s.Select(context.Background(), "a")

	require.True(t, s.UpdateRequest(context.Background(), "a", domain.HTTPPatch{Method: domain.Ptr("POST")}))
	require.True(t, s.Send(context.Background(), "a"))

	snap, _ := s.Sessions.Get("a")
	assert.Equal(t, "POST", snap.Request.Data.(domain.HTTPRequest).Method)
	require.Len(t, snap.History, 1)
	assert.Equal(t, domain.HTTPResponse{Code: 200, Body: "ok"}, snap.Response)
}

func TestHelpers(t *testing.T) {
	b := newMemBackend()
	s, sink := newStore(t, b, nil)

	out, ok := s.JQ(context.Background(), `{}`, ".")
	require.True(t, ok)
	assert.Equal(t, []string{". {}"}, out)

	services, ok := s.Methods(context.Background(), "pkg")
	require.True(t, ok)
	assert.Equal(t, []string{"pkg.Svc/Call"}, services[0].FullMethods())

	b.setDown(true)
	_, ok = s.JQ(context.Background(), `{}`, ".")
	assert.False(t, ok)
	_, ok = s.Methods(context.Background(), "pkg")
	assert.False(t, ok)
	assert.Equal(t, []string{OpJQ, OpGRPCMethods}, sink.Ops())
}
