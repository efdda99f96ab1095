// Package backend is the client's only way to reach the backend service. The
// Gateway turns each client intent into one Transport call and normalizes the
// outcome into a result.Result.
package backend

import (
	"context"
	"log/slog"
	"sync"
)

// Route names the backend operation. The HTTP transport sends it as the
// ROUTE field; the gRPC transport maps it to a method name.
type Route string

const (
	RouteList        Route = "/list"
	RouteRead        Route = "/read"
	RouteCreate      Route = "/create"
	RouteDuplicate   Route = "/duplicate"
	RouteUpdate      Route = "/update"
	RoutePerform     Route = "/perform"
	RouteDelete      Route = "/delete"
	RouteJQ          Route = "/jq"
	RouteGRPCMethods Route = "/grpc/methods"
)

// Routes lists every route the gateway uses.
var Routes = []Route{
	RouteList, RouteRead, RouteCreate, RouteDuplicate, RouteUpdate,
	RoutePerform, RouteDelete, RouteJQ, RouteGRPCMethods,
}

// Params are the JSON-compatible arguments of a call.
type Params map[string]any

// Transport performs one backend call, decoding the JSON response into out
// (which may be nil for operations with no payload).
type Transport interface {
	Call(ctx context.Context, route Route, params Params, out any) error
	State() ConnectionState
	SetStateCallback(fn func(state ConnectionState, message string))
	Close() error
}

// ConnectionState represents the last known reachability of the backend.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// stateTracker is shared by the transports to publish connection state.
type stateTracker struct {
	mu            sync.RWMutex
	state         ConnectionState
	logger        *slog.Logger
	onStateChange func(state ConnectionState, message string)
}

func (t *stateTracker) State() ConnectionState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// SetStateCallback registers fn to be called on every state change.
func (t *stateTracker) SetStateCallback(fn func(state ConnectionState, message string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStateChange = fn
}

// updateState records state and notifies the callback when it changed. It
// must not be called with t.mu held.
func (t *stateTracker) updateState(state ConnectionState, message string) {
	t.mu.Lock()
	changed := t.state != state
	t.state = state
	callback := t.onStateChange
	t.mu.Unlock()

	if !changed {
		return
	}
	t.logger.Debug("connection state changed",
		slog.String("state", state.String()),
		slog.String("message", message),
	)
	if callback != nil {
		callback(state, message)
	}
}

type callIDKey struct{}

// WithCallID attaches a correlation id that transports forward to the backend.
func WithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDKey{}, id)
}

// CallIDFrom returns the correlation id attached by WithCallID.
func CallIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}
