// Package collection holds the request tree and the preview map, refreshed
// from the backend on demand.
package collection

import (
	"context"
	"log/slog"
	"maps"
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
	OpFetch     = "fetch"
	OpCreate    = "create"
	OpDuplicate = "duplicate"
	OpDelete    = "delete"
	OpRename    = "rename"
	OpMove      = "move"
)

// Gateway is the slice of the backend the collection needs.
type Gateway interface {
	List(ctx context.Context) result.Result[backend.Listing]
	Create(ctx context.Context, name string, kind domain.Kind) result.Result[string]
	Duplicate(ctx context.Context, id string) result.Result[struct{}]
	Rename(ctx context.Context, id, newID string) result.Result[struct{}]
	Delete(ctx context.Context, id string) result.Result[struct{}]
}

// Change describes what a successful fetch altered.
type Change struct {
	// PreviewsChanged is set when an id was added or removed or a preview
	// value changed.
	PreviewsChanged bool
}

// Option configures a Store.
type Option func(*Store)

// WithActive tells the store which request is being edited. Fetch keeps the
// local preview of that id instead of taking the server's copy.
func WithActive(active func() (string, bool)) Option {
	return func(s *Store) { s.active = active }
}

// Store is the client copy of the collection. Fetch is the only writer of
// the preview map; structural operations go to the backend and then fetch.
type Store struct {
	gateway Gateway
	sink    notify.Sink
	logger  *slog.Logger
	active  func() (string, bool)

	mu       sync.RWMutex
	tree     domain.Tree
	previews map[string]domain.Preview
	history  []domain.HistoryEntry
	fetched  bool

	listenerMu sync.RWMutex
	listeners  []func(Change)
	renamed    []func(oldID, newID string)
}

// NewStore creates an empty store. Call Fetch to populate it.
func NewStore(gateway Gateway, sink notify.Sink, logger *slog.Logger, opts ...Option) *Store {
	if sink == nil {
		sink = notify.Discard
	}
	s := &Store{
		gateway:  gateway,
		sink:     sink,
		logger:   logger,
		active:   func() (string, bool) { return "", false },
		previews: make(map[string]domain.Preview),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to run after every successful fetch.
func (s *Store) OnChange(fn func(Change)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// OnRenamed registers fn to run after the backend confirms a rename and
// before the follow-up fetch.
func (s *Store) OnRenamed(fn func(oldID, newID string)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.renamed = append(s.renamed, fn)
}

// Tree returns the latest tree.
func (s *Store) Tree() domain.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Previews returns a copy of the preview map.
func (s *Store) Previews() map[string]domain.Preview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.previews)
}

// Preview returns the preview for id.
func (s *Store) Preview(id string) (domain.Preview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.previews[id]
	return p, ok
}

// Has reports whether id is a known request.
func (s *Store) Has(id string) bool {
	_, ok := s.Preview(id)
	return ok
}

// IDs returns every known request id, sorted.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.previews))
}

// History returns the collection-wide history, newest first.
func (s *Store) History() []domain.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// Fetched reports whether a fetch has succeeded at least once.
func (s *Store) Fetched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetched
}

// Fetch refreshes the store from the backend. The tree and history are
// replaced. Previews are merged, except that a locally known preview of the
// active request is kept, and ids missing from the response are dropped.
// On failure the error is reported and the previous state is kept.
func (s *Store) Fetch(ctx context.Context) bool {
	res := s.gateway.List(ctx)
	if !res.IsOk() {
		notify.Op(s.sink, OpFetch, "", res.Cause())
		return false
	}
	listing := res.Value()
	activeID, hasActive := s.active()

	s.mu.Lock()
	changed := false
	for id, p := range listing.Previews {
		old, exists := s.previews[id]
		if exists && hasActive && id == activeID {
			continue
		}
		if !exists || old != p {
			s.previews[id] = p
			changed = true
		}
	}
	for id := range s.previews {
		if _, ok := listing.Previews[id]; !ok {
			delete(s.previews, id)
			changed = true
		}
	}
	s.tree = listing.Tree
	s.history = listing.History
	s.fetched = true
	s.mu.Unlock()

	s.logger.Debug("collection fetched",
		slog.Int("requests", len(listing.Previews)),
		slog.Bool("previews_changed", changed),
	)

	s.listenerMu.RLock()
	listeners := slices.Clone(s.listeners)
	s.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(Change{PreviewsChanged: changed})
	}
	return true
}

// Create makes a new request of kind named name and refetches. It returns
// the id the backend assigned.
func (s *Store) Create(ctx context.Context, name string, kind domain.Kind) (string, bool) {
	res := s.gateway.Create(ctx, name, kind)
	if !res.IsOk() {
		notify.Op(s.sink, OpCreate, name, res.Cause())
		return "", false
	}
	s.Fetch(ctx)
	return res.Value(), true
}

// Duplicate copies id on the backend and refetches.
func (s *Store) Duplicate(ctx context.Context, id string) bool {
	return s.structural(ctx, OpDuplicate, id, s.gateway.Duplicate(ctx, id))
}

// Delete removes id on the backend and refetches.
func (s *Store) Delete(ctx context.Context, id string) bool {
	return s.structural(ctx, OpDelete, id, s.gateway.Delete(ctx, id))
}

// Rename moves id to newID on the backend, notifies rename listeners and
// refetches. Nothing local changes when the backend refuses.
func (s *Store) Rename(ctx context.Context, id, newID string) bool {
	if id == newID {
		return true
	}
	res := s.gateway.Rename(ctx, id, newID)
	if !res.IsOk() {
		notify.Op(s.sink, OpRename, id, res.Cause())
		return false
	}

	s.listenerMu.RLock()
	renamed := slices.Clone(s.renamed)
	s.listenerMu.RUnlock()
	for _, fn := range renamed {
		fn(id, newID)
	}

	s.Fetch(ctx)
	return true
}

// Move reparents dragID relative to targetID with a single rename. It
// returns the new id.
func (s *Store) Move(ctx context.Context, dragID, targetID string, pos domain.DropPosition) (string, bool) {
	newID, err := domain.ReparentTarget(dragID, targetID, pos)
	if err != nil {
		s.sink.Report(&apperrors.OpError{Op: OpMove, ID: dragID, Err: err})
		return "", false
	}
	if !s.Rename(ctx, dragID, newID) {
		return "", false
	}
	return newID, true
}

func (s *Store) structural(ctx context.Context, op, id string, res result.Result[struct{}]) bool {
	if !res.IsOk() {
		notify.Op(s.sink, op, id, res.Cause())
		return false
	}
	s.Fetch(ctx)
	return true
}
