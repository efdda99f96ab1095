package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/result"
)

// DefaultTimeout bounds every gateway call unless overridden.
const DefaultTimeout = 30 * time.Second

// Listing is the full collection snapshot returned by List.
type Listing struct {
	Tree     domain.Tree
	Previews map[string]domain.Preview
	History  []domain.HistoryEntry
}

// Loaded is one request with its history, newest first.
type Loaded struct {
	Request domain.Request
	History []domain.HistoryEntry
}

// MethodLister resolves gRPC services on a target without the backend.
type MethodLister interface {
	ListMethods(ctx context.Context, target string) ([]domain.Service, error)
}

// Gateway turns client intents into backend calls. No method returns a Go
// error or panics: every failure lands in the error branch of the Result.
type Gateway struct {
	transport Transport
	logger    *slog.Logger
	timeout   time.Duration
	methods   MethodLister
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithMethodLister answers GRPCMethods locally instead of asking the backend.
func WithMethodLister(l MethodLister) Option {
	return func(g *Gateway) { g.methods = l }
}

// NewGateway creates a gateway over transport.
func NewGateway(transport Transport, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{transport: transport, logger: logger, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Transport returns the underlying transport.
func (g *Gateway) Transport() Transport { return g.transport }

// call runs fn with a correlation id and the configured timeout, converting
// errors and panics into the error branch.
func call[T any](ctx context.Context, g *Gateway, op string, attrs []any, fn func(ctx context.Context) (T, error)) result.Result[T] {
	callID := uuid.NewString()
	ctx = WithCallID(ctx, callID)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	res := result.Catch(func() (T, error) { return fn(ctx) })

	attrs = append(attrs,
		slog.String("op", op),
		slog.String("call_id", callID),
		slog.Duration("duration", time.Since(start)),
	)
	if res.IsOk() {
		g.logger.Debug("backend call succeeded", attrs...)
	} else {
		g.logger.Warn("backend call failed", append(attrs, slog.String("error", res.Error()))...)
	}
	return res
}

// List returns the collection snapshot with history sorted newest first.
func (g *Gateway) List(ctx context.Context) result.Result[Listing] {
	return call(ctx, g, "list", nil, func(ctx context.Context) (Listing, error) {
		var wl wireListing
		if err := g.transport.Call(ctx, RouteList, nil, &wl); err != nil {
			return Listing{}, err
		}
		history, err := decodeHistory(wl.History, "")
		if err != nil {
			return Listing{}, err
		}
		previews := wl.Requests
		if previews == nil {
			previews = map[string]domain.Preview{}
		}
		return Listing{
			Tree:     domain.BuildTree(sortedKeys(previews)),
			Previews: previews,
			History:  history,
		}, nil
	})
}

// Get loads one request and its history, newest first.
func (g *Gateway) Get(ctx context.Context, id string) result.Result[Loaded] {
	return call(ctx, g, "read", []any{slog.String("request_id", id)}, func(ctx context.Context) (Loaded, error) {
		var wr wireRequest
		if err := g.transport.Call(ctx, RouteRead, Params{"id": id}, &wr); err != nil {
			return Loaded{}, err
		}
		kind, err := domain.ParseKind(wr.Kind)
		if err != nil {
			return Loaded{}, err
		}
		data, err := decodeRequestData(kind, wr.Request)
		if err != nil {
			return Loaded{}, err
		}
		history, err := decodeHistory(wr.History, id)
		if err != nil {
			return Loaded{}, err
		}
		if wr.ID == "" {
			wr.ID = id
		}
		return Loaded{Request: domain.Request{ID: wr.ID, Data: data}, History: history}, nil
	})
}

// Create makes a new request of kind named name and returns its id. Name
// collisions are reported by the backend.
func (g *Gateway) Create(ctx context.Context, name string, kind domain.Kind) result.Result[string] {
	return call(ctx, g, "create", []any{slog.String("request_id", name)}, func(ctx context.Context) (string, error) {
		var out struct {
			ID string `json:"id"`
		}
		if err := g.transport.Call(ctx, RouteCreate, Params{"id": name, "kind": kind}, &out); err != nil {
			return "", err
		}
		if out.ID == "" {
			out.ID = name
		}
		return out.ID, nil
	})
}

// Duplicate copies a request under a backend-chosen id.
func (g *Gateway) Duplicate(ctx context.Context, id string) result.Result[struct{}] {
	return g.void(ctx, "duplicate", id, RouteDuplicate, Params{"id": id})
}

// Update saves data for id. A non-nil newName renames the request as well.
func (g *Gateway) Update(ctx context.Context, id string, data domain.RequestData, newName *string) result.Result[struct{}] {
	name := id
	if newName != nil {
		name = *newName
	}
	params := Params{"id": id, "name": name}
	if data != nil {
		params["kind"] = data.Kind()
		params["request"] = data
	}
	return g.void(ctx, "update", id, RouteUpdate, params)
}

// Rename moves id to newID, keeping its saved payload. It reads the current
// payload first because the update route needs one.
func (g *Gateway) Rename(ctx context.Context, id, newID string) result.Result[struct{}] {
	loaded := g.Get(ctx, id)
	if !loaded.IsOk() {
		return result.Fail[struct{}](loaded.Cause())
	}
	return g.Update(ctx, id, loaded.Value().Request.Data, &newID)
}

// Perform executes the saved request and returns the new history entry.
func (g *Gateway) Perform(ctx context.Context, id string) result.Result[domain.HistoryEntry] {
	return call(ctx, g, "perform", []any{slog.String("request_id", id)}, func(ctx context.Context) (domain.HistoryEntry, error) {
		var wh wireHistory
		if err := g.transport.Call(ctx, RoutePerform, Params{"id": id}, &wh); err != nil {
			return domain.HistoryEntry{}, err
		}
		if wh.RequestID == "" {
			wh.RequestID = id
		}
		return wh.decode()
	})
}

// Delete removes a request.
func (g *Gateway) Delete(ctx context.Context, id string) result.Result[struct{}] {
	return g.void(ctx, "delete", id, RouteDelete, Params{"id": id})
}

// JQ evaluates query against json on the backend.
func (g *Gateway) JQ(ctx context.Context, json, query string) result.Result[[]string] {
	return call(ctx, g, "jq", nil, func(ctx context.Context) ([]string, error) {
		out := []string{}
		err := g.transport.Call(ctx, RouteJQ, Params{"json": json, "query": query}, &out)
		return out, err
	})
}

// GRPCMethods lists the services and methods exposed by target.
func (g *Gateway) GRPCMethods(ctx context.Context, target string) result.Result[[]domain.Service] {
	return call(ctx, g, "grpc_methods", []any{slog.String("target", target)}, func(ctx context.Context) ([]domain.Service, error) {
		if g.methods != nil {
			return g.methods.ListMethods(ctx, target)
		}
		out := []domain.Service{}
		err := g.transport.Call(ctx, RouteGRPCMethods, Params{"target": target}, &out)
		return out, err
	})
}

func (g *Gateway) void(ctx context.Context, op, id string, route Route, params Params) result.Result[struct{}] {
	return call(ctx, g, op, []any{slog.String("request_id", id)}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.transport.Call(ctx, route, params, nil)
	})
}
