package workspace

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/logging"
	"github.com/shhac/impulse/internal/storage"
)

func newController(t *testing.T) (*Controller, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewController(store, logging.NewNopLogger()), store
}

func open(c *Controller, ids ...string) {
	for _, id := range ids {
		c.Select(id)
	}
}

func persisted(t *testing.T, store *storage.MemoryStore) domain.Workspace {
	t.Helper()
	data, err := store.Get(StorageKey)
	require.NoError(t, err)
	var ws domain.Workspace
	require.NoError(t, json.Unmarshal(data, &ws))
	return ws
}

func TestSelect(t *testing.T) {
	c, _ := newController(t)

	assert.Equal(t, -1, c.Snapshot().Active)
	_, ok := c.ActiveID()
	assert.False(t, ok)

	c.Select("a")
	assert.Equal(t, domain.Workspace{Tabs: []string{"a"}, Active: 0}, c.Snapshot())

	open(c, "b", "c")
	assert.Equal(t, []string{"a", "b", "c"}, c.Snapshot().Tabs)
	assert.Equal(t, 2, c.Snapshot().Active)

	c.Select("a")
	assert.Equal(t, []string{"a", "b", "c"}, c.Snapshot().Tabs, "no reordering")
	assert.Equal(t, 0, c.Snapshot().Active)
}

func TestSelect_Idempotent(t *testing.T) {
	c, store := newController(t)
	open(c, "a", "b")

	c.Select("b")
	first := c.Snapshot()
	puts := store.Puts()
	c.Select("b")

	assert.Equal(t, first, c.Snapshot())
	assert.Equal(t, puts, store.Puts(), "no-op selects are not persisted")
}

func TestClose(t *testing.T) {
	tests := []struct {
		name       string
		tabs       []string
		active     string
		close      string
		wantTabs   []string
		wantActive int
	}{
		{"sole tab empties", []string{"a"}, "a", "a", nil, -1},
		{"before active", []string{"a", "b", "c"}, "c", "a", []string{"b", "c"}, 1},
		{"active itself", []string{"a", "b", "c"}, "b", "b", []string{"a", "c"}, 0},
		{"first while active clamps", []string{"a", "b"}, "a", "a", []string{"b"}, 0},
		{"after active", []string{"a", "b", "c"}, "a", "c", []string{"a", "b"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t)
			open(c, tt.tabs...)
			c.Select(tt.active)

			assert.True(t, c.Close(tt.close))
			ws := c.Snapshot()
			assert.Equal(t, tt.wantTabs, ws.Tabs)
			assert.Equal(t, tt.wantActive, ws.Active)
		})
	}
}

func TestClose_Unknown(t *testing.T) {
	c, _ := newController(t)
	open(c, "a")
	assert.False(t, c.Close("zzz"))
	assert.Equal(t, []string{"a"}, c.Snapshot().Tabs)
}

func TestPrune(t *testing.T) {
	c, _ := newController(t)
	open(c, "a", "b", "c", "d", "e")
	c.Select("d")

	present := map[string]bool{"a": true, "c": true, "d": true}
	pruned := c.Prune(func(id string) bool { return present[id] })

	assert.Equal(t, []string{"b", "e"}, pruned)
	ws := c.Snapshot()
	assert.Equal(t, []string{"a", "c", "d"}, ws.Tabs, "survivors keep their order")
	active, _ := ws.ActiveID()
	assert.Equal(t, "d", active)
}

func TestPrune_Everything(t *testing.T) {
	c, _ := newController(t)
	open(c, "a", "b")
	c.Prune(func(string) bool { return false })
	assert.Equal(t, domain.Workspace{Active: -1}, c.Snapshot())
}

func TestPrune_NothingMissing(t *testing.T) {
	c, store := newController(t)
	open(c, "a")
	puts := store.Puts()
	assert.Empty(t, c.Prune(func(string) bool { return true }))
	assert.Equal(t, puts, store.Puts())
}

func TestNextPrev(t *testing.T) {
	c, _ := newController(t)
	open(c, "a", "b", "c")

	c.Next()
	id, _ := c.ActiveID()
	assert.Equal(t, "a", id, "wraps forward")

	c.Prev()
	id, _ = c.ActiveID()
	assert.Equal(t, "c", id, "wraps backward")

	c.Prev()
	id, _ = c.ActiveID()
	assert.Equal(t, "b", id)
}

func TestMove(t *testing.T) {
	c, _ := newController(t)
	open(c, "a", "b", "c")

	c.Move("a", 1)
	assert.Equal(t, []string{"b", "a", "c"}, c.Snapshot().Tabs)
	id, _ := c.ActiveID()
	assert.Equal(t, "a", id)

	c.Move("c", -10)
	assert.Equal(t, []string{"c", "b", "a"}, c.Snapshot().Tabs)
	assert.Equal(t, 0, c.Snapshot().Active)
}

func TestRename(t *testing.T) {
	c, _ := newController(t)
	open(c, "a/b", "x")

	c.Rename("a/b", "a/c")
	assert.Equal(t, []string{"a/c", "x"}, c.Snapshot().Tabs)

	c.Select("a/c")
	c.Rename("a/c", "x")
	ws := c.Snapshot()
	assert.Equal(t, []string{"x"}, ws.Tabs)
	assert.Equal(t, 0, ws.Active)
}

func TestPersistence_EveryChange(t *testing.T) {
	c, store := newController(t)
	open(c, "a", "b")
	c.Close("a")

	assert.Equal(t, 3, store.Puts())
	ws := persisted(t, store)
	assert.Equal(t, []string{"b"}, ws.Tabs)
	assert.Equal(t, 0, ws.Active)

	c.Close("b")
	assert.Equal(t, []string{}, persisted(t, store).Tabs)
}

func TestPersistence_FailureIsNotSurfaced(t *testing.T) {
	store := storage.NewMemoryStore()
	store.PutErr = errors.New("disk full")
	c := NewController(store, logging.NewNopLogger())

	c.Select("a")
	assert.Equal(t, []string{"a"}, c.Snapshot().Tabs)
	assert.Equal(t, 1, store.Puts())
}

func TestRestore_RoundTrip(t *testing.T) {
	c, store := newController(t)
	open(c, "a", "b", "c")
	c.Select("b")
	c.SetLayout(json.RawMessage(`{"split":0.3}`))

	fresh := NewController(store, logging.NewNopLogger())
	known := map[string]bool{"a": true, "b": true, "c": true}
	frag := fresh.Restore(func(id string) bool { return known[id] }, "")

	assert.Empty(t, frag)
	ws := fresh.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, ws.Tabs)
	assert.Equal(t, 1, ws.Active)
	assert.JSONEq(t, `{"split":0.3}`, string(ws.Layout))
}

func TestRestore_DropsUnknownIDs(t *testing.T) {
	c, store := newController(t)
	open(c, "a", "gone", "c")

	fresh := NewController(store, logging.NewNopLogger())
	fresh.Restore(func(id string) bool { return id != "gone" }, "")

	ws := fresh.Snapshot()
	assert.Equal(t, []string{"a", "c"}, ws.Tabs)
	id, _ := ws.ActiveID()
	assert.Equal(t, "c", id)
}

func TestRestore_ActiveGoneFallsBackToReplay(t *testing.T) {
	c, store := newController(t)
	open(c, "a", "b", "c")
	c.Select("b")

	fresh := NewController(store, logging.NewNopLogger())
	fresh.Restore(func(id string) bool { return id != "b" }, "")

	id, _ := fresh.ActiveID()
	assert.Equal(t, "c", id)
}

func TestRestore_DeepLink(t *testing.T) {
	c, store := newController(t)
	open(c, "a")

	known := map[string]bool{"a": true, "b/c": true}
	fresh := NewController(store, logging.NewNopLogger())
	frag := fresh.Restore(func(id string) bool { return known[id] }, "#b/c")

	assert.Equal(t, "b/c", frag)
	ws := fresh.Snapshot()
	assert.Equal(t, []string{"a", "b/c"}, ws.Tabs)
	assert.Equal(t, 1, ws.Active)
}

func TestRestore_UnknownDeepLinkIsCleared(t *testing.T) {
	c, _ := newController(t)
	frag := c.Restore(func(string) bool { return false }, "nope")
	assert.Empty(t, frag)
	assert.Empty(t, c.Snapshot().Tabs)
}

func TestOpenLink(t *testing.T) {
	c, _ := newController(t)
	known := func(id string) bool { return id == "a/b" }

	assert.Empty(t, c.OpenLink(known, ""))
	assert.Empty(t, c.OpenLink(known, " # "))
	assert.Empty(t, c.OpenLink(known, "#x"))
	assert.Empty(t, c.Snapshot().Tabs)

	assert.Equal(t, "a/b", c.OpenLink(known, "#a/b"))
	id, ok := c.Snapshot().ActiveID()
	require.True(t, ok)
	assert.Equal(t, "a/b", id)
}

func TestRestore_CorruptBlob(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(StorageKey, []byte("{not json")))
	c := NewController(store, logging.NewNopLogger())

	c.Restore(func(string) bool { return true }, "")
	assert.Equal(t, -1, c.Snapshot().Active)
}

func TestOnChange(t *testing.T) {
	c, _ := newController(t)
	var seen []domain.Workspace
	c.OnChange(func(ws domain.Workspace) { seen = append(seen, ws) })

	open(c, "a", "b")
	c.Select("b")
	c.Close("a")

	require.Len(t, seen, 3)
	assert.Equal(t, []string{"b"}, seen[2].Tabs)
}
