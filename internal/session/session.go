// Package session caches the state of every request open for editing: its
// payload, history, latest response and loading flag. Payload edits are
// applied optimistically and rolled back when the backend rejects them.
package session

import (
	"github.com/shhac/impulse/internal/domain"
)

// State is the lifecycle position of a session as the UI sees it.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of one session. Mutating it does not affect the cache.
type Snapshot struct {
	ID string
	// Request is nil until the first successful load.
	Request   *domain.Request
	History   []domain.HistoryEntry
	Response  domain.ResponseData
	IsLoading bool
}

// State derives the lifecycle state. A session whose load failed stays in
// StateLoading: the UI keeps showing a placeholder rather than an error.
func (s Snapshot) State() State {
	switch {
	case s.ID == "":
		return StateUninitialized
	case s.Request == nil || s.IsLoading:
		return StateLoading
	default:
		return StateReady
	}
}

// Kind returns the request kind, or "" before the first load.
func (s Snapshot) Kind() domain.Kind {
	if s.Request == nil || s.Request.Data == nil {
		return ""
	}
	return s.Request.Data.Kind()
}

// entry is the mutable session owned by Cache. Fields are guarded by
// Cache.mu.
type entry struct {
	id       string
	request  *domain.Request
	history  []domain.HistoryEntry
	response domain.ResponseData
	loading  bool
}

func (e *entry) snapshot() Snapshot {
	s := Snapshot{
		ID:        e.id,
		History:   append([]domain.HistoryEntry(nil), e.history...),
		Response:  e.response,
		IsLoading: e.loading,
	}
	if e.request != nil {
		req := domain.Request{ID: e.request.ID, Data: domain.Clone(e.request.Data)}
		s.Request = &req
	}
	return s
}

// mutable reports whether a mutation may start: the payload is loaded and
// nothing else is in flight.
func (e *entry) mutable() bool {
	return e.request != nil && !e.loading
}
