// Package workspace tracks which requests are open as tabs, in what order,
// and which one is active. The tab set survives restarts through a storage
// blob.
package workspace

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/storage"
)

// StorageKey is the key the workspace blob is persisted under.
const StorageKey = "tabs"

// Controller owns the ordered set of open request ids and the active index.
// Active is -1 exactly when no tabs are open.
type Controller struct {
	store  storage.Store
	logger *slog.Logger

	mu     sync.Mutex
	tabs   []string
	active int
	layout json.RawMessage

	listenerMu sync.RWMutex
	listeners  []func(domain.Workspace)
}

// NewController creates an empty workspace backed by store. A nil store keeps
// the workspace in memory only.
func NewController(store storage.Store, logger *slog.Logger) *Controller {
	return &Controller{
		store:  store,
		logger: logger,
		active: -1,
	}
}

// OnChange registers fn to run after every structural change with the new
// workspace state.
func (c *Controller) OnChange(fn func(domain.Workspace)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns a copy of the current workspace.
func (c *Controller) Snapshot() domain.Workspace {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() domain.Workspace {
	return domain.Workspace{
		Tabs:   slices.Clone(c.tabs),
		Active: c.active,
		Layout: slices.Clone(c.layout),
	}
}

// ActiveID returns the id of the active tab.
func (c *Controller) ActiveID() (string, bool) {
	return c.Snapshot().ActiveID()
}

// IsOpen reports whether id has a tab.
func (c *Controller) IsOpen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.tabs, id)
}

// Layout returns the opaque layout blob last set by the front end.
func (c *Controller) Layout() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.layout)
}

// Select opens id as the active tab. An id that is already open is activated
// without reordering; a new id is appended.
func (c *Controller) Select(id string) {
	c.mutate(func() bool {
		if i := slices.Index(c.tabs, id); i >= 0 {
			if c.active == i {
				return false
			}
			c.active = i
			return true
		}
		c.tabs = append(c.tabs, id)
		c.active = len(c.tabs) - 1
		return true
	})
}

// Close removes the tab for id. It returns false when id was not open.
func (c *Controller) Close(id string) bool {
	var closed bool
	c.mutate(func() bool {
		i := slices.Index(c.tabs, id)
		if i < 0 {
			return false
		}
		c.removeAt(i)
		closed = true
		return true
	})
	return closed
}

// removeAt drops the tab at i. Closing at or before the active tab moves
// the active index back by one, clamped at zero; closing the last tab
// empties the workspace. Caller holds c.mu.
func (c *Controller) removeAt(i int) {
	c.tabs = slices.Delete(c.tabs, i, i+1)
	switch {
	case len(c.tabs) == 0:
		c.tabs = nil
		c.active = -1
	case i <= c.active:
		c.active = max(c.active-1, 0)
	}
}

// Prune closes every tab whose id fails keep and returns the closed ids in
// tab order. The remaining tabs keep their relative order.
func (c *Controller) Prune(keep func(id string) bool) []string {
	var pruned []string
	c.mutate(func() bool {
		for i := len(c.tabs) - 1; i >= 0; i-- {
			if keep(c.tabs[i]) {
				continue
			}
			pruned = append(pruned, c.tabs[i])
			c.removeAt(i)
		}
		slices.Reverse(pruned)
		return len(pruned) > 0
	})
	return pruned
}

// Next activates the tab after the active one, wrapping around.
func (c *Controller) Next() { c.cycle(1) }

// Prev activates the tab before the active one, wrapping around.
func (c *Controller) Prev() { c.cycle(-1) }

func (c *Controller) cycle(step int) {
	c.mutate(func() bool {
		n := len(c.tabs)
		if n < 2 {
			return false
		}
		c.active = ((c.active+step)%n + n) % n
		return true
	})
}

// Move shifts the tab for id by delta positions, clamped to the tab bar,
// and makes it active.
func (c *Controller) Move(id string, delta int) {
	c.mutate(func() bool {
		i := slices.Index(c.tabs, id)
		if i < 0 {
			return false
		}
		j := min(max(i+delta, 0), len(c.tabs)-1)
		if j == i {
			if c.active == i {
				return false
			}
			c.active = i
			return true
		}
		c.tabs = slices.Insert(slices.Delete(c.tabs, i, i+1), j, id)
		c.active = j
		return true
	})
}

// Rename re-keys the tab for oldID in place. If newID is already open the
// old tab is closed instead, and the active tab follows to newID when oldID
// was active.
func (c *Controller) Rename(oldID, newID string) {
	if oldID == newID {
		return
	}
	c.mutate(func() bool {
		i := slices.Index(c.tabs, oldID)
		if i < 0 {
			return false
		}
		j := slices.Index(c.tabs, newID)
		if j < 0 {
			c.tabs[i] = newID
			return true
		}
		wasActive := c.active == i
		c.removeAt(i)
		if wasActive {
			c.active = slices.Index(c.tabs, newID)
		}
		return true
	})
}

// SetLayout stores the front end's layout blob alongside the tabs.
func (c *Controller) SetLayout(layout json.RawMessage) {
	c.mutate(func() bool {
		if string(layout) == string(c.layout) {
			return false
		}
		c.layout = slices.Clone(layout)
		return true
	})
}

// Restore rebuilds the workspace from storage. Each persisted id for which
// known returns true is reopened in order, then the persisted active tab is
// reactivated if it survived. fragment is a deep link: when it names a known
// request it is opened as well and returned; otherwise the empty string is
// returned and the caller should clear it.
func (c *Controller) Restore(known func(id string) bool, fragment string) string {
	saved, ok := c.load()
	if ok {
		for _, id := range saved.Tabs {
			if known(id) {
				c.Select(id)
			} else {
				c.logger.Debug("dropping unknown persisted tab", slog.String("request_id", id))
			}
		}
		if id, ok := saved.ActiveID(); ok && known(id) {
			c.Select(id)
		}
		if len(saved.Layout) > 0 {
			c.SetLayout(saved.Layout)
		}
	}

	return c.OpenLink(known, fragment)
}

// OpenLink opens the request named by a deep link fragment, with or without
// its leading "#", and returns the id. It returns "" when the fragment is
// empty or known reports the id as missing.
func (c *Controller) OpenLink(known func(id string) bool, fragment string) string {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	if fragment == "" {
		return ""
	}
	if !known(fragment) {
		c.logger.Info("clearing unknown deep link", slog.String("request_id", fragment))
		return ""
	}
	c.Select(fragment)
	return fragment
}

func (c *Controller) load() (domain.Workspace, bool) {
	if c.store == nil {
		return domain.Workspace{}, false
	}
	data, err := c.store.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("could not read workspace", slog.Any("error", err))
		}
		return domain.Workspace{}, false
	}
	var ws domain.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		c.logger.Warn("discarding corrupt workspace", slog.Any("error", err))
		return domain.Workspace{}, false
	}
	return ws, true
}

// mutate runs fn under the lock and, if it reports a change, persists the
// workspace and notifies listeners.
func (c *Controller) mutate(fn func() bool) {
	c.mu.Lock()
	if !fn() {
		c.mu.Unlock()
		return
	}
	ws := c.snapshotLocked()
	c.persist(ws)
	c.mu.Unlock()

	c.listenerMu.RLock()
	listeners := slices.Clone(c.listeners)
	c.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(ws)
	}
}

// persist writes ws to storage. Failures are logged and otherwise ignored;
// the backend remains the source of truth. Caller holds c.mu so writes land
// in change order.
func (c *Controller) persist(ws domain.Workspace) {
	if c.store == nil {
		return
	}
	if ws.Tabs == nil {
		ws.Tabs = []string{}
	}
	data, err := json.Marshal(ws)
	if err != nil {
		c.logger.Warn("could not encode workspace", slog.Any("error", err))
		return
	}
	if err := c.store.Put(StorageKey, data); err != nil {
		c.logger.Warn("could not persist workspace", slog.Any("error", err))
	}
}
