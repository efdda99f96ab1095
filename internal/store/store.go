// Package store is the composition root of the client core. It owns the
// collection, the session cache and the workspace, and keeps them consistent
// with each other.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shhac/impulse/internal/collection"
	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/logging"
	"github.com/shhac/impulse/internal/notify"
	"github.com/shhac/impulse/internal/result"
	"github.com/shhac/impulse/internal/session"
	"github.com/shhac/impulse/internal/storage"
	"github.com/shhac/impulse/internal/workspace"
)

// Operation names used when reporting failures of the helper calls.
const (
	OpJQ          = "jq"
	OpGRPCMethods = "grpc_methods"
)

// Gateway is everything the core asks of the backend.
type Gateway interface {
	session.Gateway
	collection.Gateway
	JQ(ctx context.Context, json, query string) result.Result[[]string]
	GRPCMethods(ctx context.Context, target string) result.Result[[]domain.Service]
}

// Store wires the three core components together. Consumers read state from
// the components directly and mutate through Store methods so that tabs and
// sessions follow structural changes.
type Store struct {
	Collection *collection.Store
	Sessions   *session.Cache
	Workspace  *workspace.Controller

	gateway Gateway
	sink    notify.Sink
	logger  *slog.Logger
}

// New builds the core over gateway. kv persists the workspace; sink receives
// every failure.
func New(gateway Gateway, kv storage.Store, sink notify.Sink, logger *slog.Logger) *Store {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ws := workspace.NewController(kv, logging.Component(logger, "workspace"))
	s := &Store{
		Workspace:  ws,
		Collection: collection.NewStore(gateway, sink, logging.Component(logger, "collection"), collection.WithActive(ws.ActiveID)),
		Sessions:   session.NewCache(gateway, sink, logging.Component(logger, "session")),
		gateway:    gateway,
		sink:       sink,
		logger:     logger,
	}

	s.Collection.OnChange(func(c collection.Change) {
		if c.PreviewsChanged {
			s.prune()
		}
	})
	s.Collection.OnRenamed(func(oldID, newID string) {
		s.Workspace.Rename(oldID, newID)
		s.Sessions.Rename(oldID, newID)
	})
	return s
}

// prune closes tabs and drops sessions of requests that no longer exist.
func (s *Store) prune() {
	for _, id := range s.Workspace.Prune(s.Collection.Has) {
		s.logger.Info("closing tab of removed request", slog.String("request_id", id))
		s.Sessions.Remove(id)
	}
}

// Start fetches the collection, restores the persisted tabs and applies the
// deep link fragment. It returns the fragment to keep, empty when it should
// be cleared. Sessions of restored tabs load concurrently.
func (s *Store) Start(ctx context.Context, fragment string) string {
	if s.Collection.Fetch(ctx) {
		fragment = s.Workspace.Restore(s.Collection.Has, fragment)
	} else {
		// Keep persisted tabs while the backend is unreachable; the first
		// successful fetch prunes the dead ones. A deep link is only opened
		// for a request that is known to exist.
		s.Workspace.Restore(func(string) bool { return true }, "")
		fragment = s.Workspace.OpenLink(s.Collection.Has, fragment)
	}

	var wg sync.WaitGroup
	for _, id := range s.Workspace.Snapshot().Tabs {
		wg.Go(func() { s.Sessions.GetOrCreate(ctx, id) })
	}
	wg.Wait()
	return fragment
}

// Select opens id as the active tab and makes sure its session is loaded.
func (s *Store) Select(ctx context.Context, id string) session.Snapshot {
	s.Workspace.Select(id)
	return s.Sessions.GetOrCreate(ctx, id)
}

// Active returns the session of the active tab.
func (s *Store) Active() (session.Snapshot, bool) {
	id, ok := s.Workspace.ActiveID()
	if !ok {
		return session.Snapshot{}, false
	}
	return s.Sessions.Get(id)
}

// Close closes the tab for id and drops its session.
func (s *Store) Close(id string) {
	if s.Workspace.Close(id) {
		s.Sessions.Remove(id)
	}
}

// Create makes a new request and opens it.
func (s *Store) Create(ctx context.Context, name string, kind domain.Kind) (string, bool) {
	id, ok := s.Collection.Create(ctx, name, kind)
	if !ok {
		return "", false
	}
	s.Select(ctx, id)
	return id, true
}

// Duplicate copies id on the backend.
func (s *Store) Duplicate(ctx context.Context, id string) bool {
	return s.Collection.Duplicate(ctx, id)
}

// Delete removes id. Its tab and session go away with the refetch.
func (s *Store) Delete(ctx context.Context, id string) bool {
	return s.Collection.Delete(ctx, id)
}

// Rename renames id on the backend, re-keys its tab and session, then
// refetches.
func (s *Store) Rename(ctx context.Context, id, newID string) bool {
	return s.Collection.Rename(ctx, id, newID)
}

// Move reparents dragID relative to targetID.
func (s *Store) Move(ctx context.Context, dragID, targetID string, pos domain.DropPosition) (string, bool) {
	return s.Collection.Move(ctx, dragID, targetID, pos)
}

// UpdateRequest applies patch to the session of id optimistically.
func (s *Store) UpdateRequest(ctx context.Context, id string, patch domain.Patch) bool {
	return s.Sessions.UpdateRequest(ctx, id, patch)
}

// Send performs the request id.
func (s *Store) Send(ctx context.Context, id string) bool {
	return s.Sessions.Send(ctx, id)
}

// JQ evaluates query over json on the backend.
func (s *Store) JQ(ctx context.Context, json, query string) ([]string, bool) {
	res := s.gateway.JQ(ctx, json, query)
	if !res.IsOk() {
		notify.Op(s.sink, OpJQ, "", res.Cause())
		return nil, false
	}
	return res.Value(), true
}

// Methods lists the gRPC services offered by target.
func (s *Store) Methods(ctx context.Context, target string) ([]domain.Service, bool) {
	res := s.gateway.GRPCMethods(ctx, target)
	if !res.IsOk() {
		notify.Op(s.sink, OpGRPCMethods, target, res.Cause())
		return nil, false
	}
	return res.Value(), true
}
