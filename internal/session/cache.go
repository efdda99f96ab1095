package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/shhac/impulse/internal/backend"
	"github.com/shhac/impulse/internal/domain"
	apperrors "github.com/shhac/impulse/internal/errors"
	"github.com/shhac/impulse/internal/notify"
	"github.com/shhac/impulse/internal/result"
)

// Operation names used when reporting failures.
const (
	OpLoad   = "load"
	OpUpdate = "update"
	OpSend   = "send"
	OpReload = "reload"
)

// Gateway is the slice of the backend the cache needs.
type Gateway interface {
	Get(ctx context.Context, id string) result.Result[backend.Loaded]
	Update(ctx context.Context, id string, data domain.RequestData, newName *string) result.Result[struct{}]
	Perform(ctx context.Context, id string) result.Result[domain.HistoryEntry]
}

// Cache owns one session per open request id.
//
// At most one mutating call (load, update, send, reload) is outstanding per
// session. A call that finds the session busy is dropped, not queued. Backend
// calls run without the lock held, so different sessions proceed in parallel.
type Cache struct {
	gateway Gateway
	sink    notify.Sink
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry

	listenerMu sync.RWMutex
	listeners  []func(id string)
}

// NewCache creates an empty cache.
func NewCache(gateway Gateway, sink notify.Sink, logger *slog.Logger) *Cache {
	if sink == nil {
		sink = notify.Discard
	}
	return &Cache{
		gateway:  gateway,
		sink:     sink,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
}

// OnChange registers fn to run after any session changes. fn runs on the
// goroutine that made the change, without the cache lock held.
func (c *Cache) OnChange(fn func(id string)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Cache) changed(id string) {
	c.listenerMu.RLock()
	listeners := slices.Clone(c.listeners)
	c.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(id)
	}
}

// Get returns the session for id without loading it.
func (c *Cache) Get(id string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[id]
	if !ok {
		return Snapshot{}, false
	}
	return e.snapshot(), true
}

// IDs returns the ids of every cached session.
func (c *Cache) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids
}

// current reports whether e is still the live session (not removed).
// Caller holds c.mu.
func (c *Cache) current(e *entry) bool {
	return c.sessions[e.id] == e
}

// GetOrCreate returns the session for id, loading it from the backend first
// when it does not exist yet. A session whose earlier load failed is loaded
// again. On failure the error is reported and Request stays nil.
func (c *Cache) GetOrCreate(ctx context.Context, id string) Snapshot {
	c.mu.Lock()
	e, ok := c.sessions[id]
	if ok && (e.request != nil || e.loading) {
		snap := e.snapshot()
		c.mu.Unlock()
		return snap
	}
	if !ok {
		e = &entry{id: id}
		c.sessions[id] = e
	}
	e.loading = true
	c.mu.Unlock()
	c.changed(id)

	c.logger.Debug("loading session", slog.String("request_id", id))
	res := c.gateway.Get(ctx, id)

	c.mu.Lock()
	if !c.current(e) {
		c.mu.Unlock()
		c.logger.Debug("dropping load for removed session", slog.String("request_id", id))
		return Snapshot{}
	}
	e.loading = false
	if res.IsOk() {
		c.apply(e, res.Value())
	}
	snap := e.snapshot()
	c.mu.Unlock()

	if !res.IsOk() {
		notify.Op(c.sink, OpLoad, id, res.Cause())
	}
	c.changed(snap.ID)
	return snap
}

// apply replaces the session contents with a fresh load. Caller holds c.mu.
func (c *Cache) apply(e *entry, loaded backend.Loaded) {
	req := loaded.Request
	req.ID = e.id
	e.request = &req
	e.history = loaded.History
	e.response = domain.LatestResponse(loaded.History)
}

// UpdateRequest applies patch to the loaded request immediately and then
// saves it. If the save fails the request is restored to exactly its value
// before the call. It returns false without doing anything when the session
// is not loaded or is busy; a patch that fails validation is reported and
// also returns false.
func (c *Cache) UpdateRequest(ctx context.Context, id string, patch domain.Patch) bool {
	c.mu.Lock()
	e, ok := c.sessions[id]
	if !ok || !e.mutable() {
		c.mu.Unlock()
		c.logger.Debug("update dropped", slog.String("request_id", id))
		return false
	}
	previous := e.request
	data, err := patch.Apply(previous.Data)
	if err != nil {
		c.mu.Unlock()
		c.sink.Report(&apperrors.OpError{Op: OpUpdate, ID: id, Err: err})
		return false
	}
	e.request = &domain.Request{ID: previous.ID, Data: data}
	e.loading = true
	c.mu.Unlock()
	c.changed(id)

	res := c.gateway.Update(ctx, id, data, nil)

	c.mu.Lock()
	if !c.current(e) {
		c.mu.Unlock()
		return true
	}
	e.loading = false
	if !res.IsOk() {
		e.request = &domain.Request{ID: e.id, Data: previous.Data}
	}
	currentID := e.id
	c.mu.Unlock()

	if !res.IsOk() {
		c.logger.Warn("update rolled back", slog.String("request_id", id), slog.String("error", res.Error()))
		notify.Op(c.sink, OpUpdate, id, res.Cause())
	}
	c.changed(currentID)
	return true
}

// Send performs the request. On success the new history entry becomes the
// newest entry and its response the current response. It returns false when
// the session is not loaded or is busy.
func (c *Cache) Send(ctx context.Context, id string) bool {
	c.mu.Lock()
	e, ok := c.sessions[id]
	if !ok || !e.mutable() {
		c.mu.Unlock()
		c.logger.Debug("send dropped", slog.String("request_id", id))
		return false
	}
	e.loading = true
	c.mu.Unlock()
	c.changed(id)

	res := c.gateway.Perform(ctx, id)

	c.mu.Lock()
	if !c.current(e) {
		c.mu.Unlock()
		return true
	}
	e.loading = false
	if res.IsOk() {
		entry := res.Value()
		e.history = append([]domain.HistoryEntry{entry}, e.history...)
		e.response = entry.Response
	}
	currentID := e.id
	c.mu.Unlock()

	if !res.IsOk() {
		notify.Op(c.sink, OpSend, id, res.Cause())
	}
	c.changed(currentID)
	return true
}

// Reload refetches a loaded session from the backend under the same
// one-at-a-time rule as the mutations. On failure the previous state is kept.
func (c *Cache) Reload(ctx context.Context, id string) bool {
	c.mu.Lock()
	e, ok := c.sessions[id]
	if !ok || e.loading {
		c.mu.Unlock()
		return false
	}
	e.loading = true
	c.mu.Unlock()
	c.changed(id)

	res := c.gateway.Get(ctx, id)

	c.mu.Lock()
	if !c.current(e) {
		c.mu.Unlock()
		return true
	}
	e.loading = false
	if res.IsOk() {
		c.apply(e, res.Value())
	}
	currentID := e.id
	c.mu.Unlock()

	if !res.IsOk() {
		notify.Op(c.sink, OpReload, id, res.Cause())
	}
	c.changed(currentID)
	return true
}

// Remove drops the session for id. An in-flight call for it completes
// without effect.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	_, ok := c.sessions[id]
	delete(c.sessions, id)
	c.mu.Unlock()
	if ok {
		c.changed(id)
	}
}

// Rename re-keys the session of oldID under newID, replacing any session
// already at newID. An in-flight call still completes on the renamed
// session.
func (c *Cache) Rename(oldID, newID string) {
	if oldID == newID {
		return
	}
	c.mu.Lock()
	e, ok := c.sessions[oldID]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.sessions, oldID)
	e.id = newID
	if e.request != nil {
		req := *e.request
		req.ID = newID
		e.request = &req
	}
	c.sessions[newID] = e
	c.mu.Unlock()

	c.changed(oldID)
	c.changed(newID)
}
