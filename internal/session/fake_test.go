package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shhac/impulse/internal/backend"
	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/result"
)

// fakeGateway is an in-memory backend. When gated, every call announces
// itself on started and waits for a value on release.
type fakeGateway struct {
	mu       sync.Mutex
	requests map[string]domain.RequestData
	history  map[string][]domain.HistoryEntry

	failGet     error
	failUpdate  error
	failPerform error

	gated   bool
	started chan string
	release chan struct{}

	updates  []domain.RequestData
	performs int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		requests: map[string]domain.RequestData{},
		history:  map[string][]domain.HistoryEntry{},
		started:  make(chan string, 16),
		release:  make(chan struct{}),
	}
}

func (f *fakeGateway) gate(op string) {
	f.mu.Lock()
	gated := f.gated
	f.mu.Unlock()
	if !gated {
		return
	}
	f.started <- op
	<-f.release
}

func (f *fakeGateway) setGated(v bool) {
	f.mu.Lock()
	f.gated = v
	f.mu.Unlock()
}

func (f *fakeGateway) Get(_ context.Context, id string) result.Result[backend.Loaded] {
	f.gate("get")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return result.Err[backend.Loaded](f.failGet.Error())
	}
	data, ok := f.requests[id]
	if !ok {
		return result.Err[backend.Loaded]("not found")
	}
	return result.Ok(backend.Loaded{
		Request: domain.Request{ID: id, Data: data},
		History: append([]domain.HistoryEntry(nil), f.history[id]...),
	})
}

func (f *fakeGateway) Update(_ context.Context, id string, data domain.RequestData, _ *string) result.Result[struct{}] {
	f.gate("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, data)
	if f.failUpdate != nil {
		return result.Err[struct{}](f.failUpdate.Error())
	}
	f.requests[id] = data
	return result.Ok(struct{}{})
}

func (f *fakeGateway) Perform(_ context.Context, id string) result.Result[domain.HistoryEntry] {
	f.gate("perform")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.performs++
	if f.failPerform != nil {
		return result.Err[domain.HistoryEntry](f.failPerform.Error())
	}
	sent := time.Date(2024, 1, 1, 0, 0, f.performs, 0, time.UTC)
	entry := domain.HistoryEntry{
		RequestID:  id,
		SentAt:     sent,
		ReceivedAt: sent.Add(time.Millisecond),
		Request:    f.requests[id],
		Response:   domain.HTTPResponse{Code: 200 + f.performs},
	}
	f.history[id] = append([]domain.HistoryEntry{entry}, f.history[id]...)
	return result.Ok(entry)
}

func (f *fakeGateway) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

var errBackendDown = errors.New("backend down")
