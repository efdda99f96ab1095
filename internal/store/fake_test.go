package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shhac/impulse/internal/backend"
	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/result"
)

// memBackend is an in-memory backend holding full requests and history.
type memBackend struct {
	mu       sync.Mutex
	requests map[string]domain.RequestData
	history  map[string][]domain.HistoryEntry
	down     bool
	failOps  map[string]bool
	calls    []string
}

func newMemBackend(ids ...string) *memBackend {
	b := &memBackend{
		requests: map[string]domain.RequestData{},
		history:  map[string][]domain.HistoryEntry{},
		failOps:  map[string]bool{},
	}
	for _, id := range ids {
		b.requests[id] = domain.HTTPRequest{URL: "http://" + id, Method: "GET"}
	}
	return b
}

func (b *memBackend) record(op string) error {
	b.calls = append(b.calls, op)
	if b.down {
		return fmt.Errorf("backend unavailable")
	}
	if b.failOps[op] {
		return fmt.Errorf("%s refused", op)
	}
	return nil
}

func (b *memBackend) setDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

func (b *memBackend) fail(op string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOps[op] = true
}

func (b *memBackend) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.requests, id)
}

func (b *memBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (b *memBackend) List(context.Context) result.Result[backend.Listing] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("list"); err != nil {
		return result.Err[backend.Listing](err.Error())
	}
	previews := map[string]domain.Preview{}
	ids := []string{}
	for id, data := range b.requests {
		previews[id] = domain.Preview{Kind: data.Kind(), SubKind: domain.SubKind(data)}
		ids = append(ids, id)
	}
	return result.Ok(backend.Listing{Tree: domain.BuildTree(ids), Previews: previews})
}

func (b *memBackend) Get(_ context.Context, id string) result.Result[backend.Loaded] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("get"); err != nil {
		return result.Err[backend.Loaded](err.Error())
	}
	data, ok := b.requests[id]
	if !ok {
		return result.Err[backend.Loaded]("not found")
	}
	return result.Ok(backend.Loaded{
		Request: domain.Request{ID: id, Data: data},
		History: append([]domain.HistoryEntry(nil), b.history[id]...),
	})
}

func (b *memBackend) Create(_ context.Context, name string, kind domain.Kind) result.Result[string] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("create"); err != nil {
		return result.Err[string](err.Error())
	}
	if _, ok := b.requests[name]; ok {
		return result.Err[string]("already exists")
	}
	data, err := domain.DefaultRequest(kind)
	if err != nil {
		return result.Err[string](err.Error())
	}
	b.requests[name] = data
	return result.Ok(name)
}

func (b *memBackend) Duplicate(_ context.Context, id string) result.Result[struct{}] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("duplicate"); err != nil {
		return result.Err[struct{}](err.Error())
	}
	b.requests[id+"-copy"] = b.requests[id]
	return result.Ok(struct{}{})
}

func (b *memBackend) Update(_ context.Context, id string, data domain.RequestData, newName *string) result.Result[struct{}] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("update"); err != nil {
		return result.Err[struct{}](err.Error())
	}
	target := id
	if newName != nil {
		target = *newName
		delete(b.requests, id)
	}
	b.requests[target] = data
	return result.Ok(struct{}{})
}

func (b *memBackend) Rename(ctx context.Context, id, newID string) result.Result[struct{}] {
	b.mu.Lock()
	data, ok := b.requests[id]
	b.mu.Unlock()
	if !ok {
		return result.Err[struct{}]("not found")
	}
	return b.Update(ctx, id, data, &newID)
}

func (b *memBackend) Perform(_ context.Context, id string) result.Result[domain.HistoryEntry] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("perform"); err != nil {
		return result.Err[domain.HistoryEntry](err.Error())
	}
	now := time.Now()
	entry := domain.HistoryEntry{
		RequestID:  id,
		SentAt:     now,
		ReceivedAt: now.Add(time.Millisecond),
		Request:    b.requests[id],
		Response:   domain.HTTPResponse{Code: 200, Body: "ok"},
	}
	b.history[id] = append([]domain.HistoryEntry{entry}, b.history[id]...)
	return result.Ok(entry)
}

func (b *memBackend) Delete(_ context.Context, id string) result.Result[struct{}] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("delete"); err != nil {
		return result.Err[struct{}](err.Error())
	}
	delete(b.requests, id)
	return result.Ok(struct{}{})
}

func (b *memBackend) JQ(_ context.Context, json, query string) result.Result[[]string] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("jq"); err != nil {
		return result.Err[[]string](err.Error())
	}
	return result.Ok([]string{query + " " + json})
}

func (b *memBackend) GRPCMethods(_ context.Context, target string) result.Result[[]domain.Service] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("grpc_methods"); err != nil {
		return result.Err[[]domain.Service](err.Error())
	}
	return result.Ok([]domain.Service{{Service: target + ".Svc", Methods: []string{"Call"}}})
}
