package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/shhac/impulse/internal/logging"
)

// fakeBackend answers routes from a handler table and records every call.
type fakeBackend struct {
	mu       sync.Mutex
	handlers map[Route]func(params map[string]any) (any, error)
	calls    []recordedCall
}

type recordedCall struct {
	Route  Route
	Params map[string]any
	CallID string
}

var errNotFound = errors.New("request not found")

func newFakeBackend() *fakeBackend {
	return &fakeBackend{handlers: map[Route]func(map[string]any) (any, error){}}
}

func (b *fakeBackend) on(route Route, fn func(params map[string]any) (any, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[route] = fn
}

func (b *fakeBackend) dispatch(route Route, params map[string]any, callID string) (any, error) {
	b.mu.Lock()
	b.calls = append(b.calls, recordedCall{Route: route, Params: params, CallID: callID})
	fn := b.handlers[route]
	b.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no handler for %s", route)
	}
	return fn(params)
}

func (b *fakeBackend) recorded() []recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedCall(nil), b.calls...)
}

// ServeHTTP implements the JSON-over-POST contract.
func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	route, _ := params["ROUTE"].(string)
	delete(params, "ROUTE")

	out, err := b.dispatch(Route(route), params, r.Header.Get(RequestIDHeader))
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, errNotFound) {
			code = http.StatusNotFound
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"message": "handler failed", "error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(out)
}

// grpcHandler serves impulse.v1.Backend without generated stubs.
func (b *fakeBackend) grpcHandler(_ any, stream grpc.ServerStream) error {
	fullMethod, _ := grpc.MethodFromServerStream(stream)
	route, ok := RouteForMethod(fullMethod)
	if !ok {
		return status.Errorf(codes.Unimplemented, "unknown method %s", fullMethod)
	}
	req := &structpb.Struct{}
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	var callID string
	if md, ok := metadata.FromIncomingContext(stream.Context()); ok {
		if ids := md.Get(RequestIDMetadata); len(ids) > 0 {
			callID = ids[0]
		}
	}

	out, err := b.dispatch(route, req.AsMap(), callID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return status.Error(codes.NotFound, err.Error())
		}
		return status.Error(codes.Internal, err.Error())
	}

	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	resp := &structpb.Value{}
	if err := protojson.Unmarshal(data, resp); err != nil {
		return err
	}
	return stream.SendMsg(resp)
}

func newHTTPGateway(t *testing.T, b *fakeBackend, opts ...Option) *Gateway {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	transport := NewHTTPTransport(srv.URL, srv.Client(), logging.NewNopLogger())
	return NewGateway(transport, logging.NewNopLogger(), opts...)
}

func newGRPCGateway(t *testing.T, b *fakeBackend, opts ...Option) *Gateway {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpc.NewServer(grpc.UnknownServiceHandler(b.grpcHandler))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conns := NewConnectionManager(logging.NewNopLogger())
	require.NoError(t, conns.Connect(context.Background(), lis.Addr().String(), DialOptions{}))
	transport := NewGRPCTransport(conns)
	t.Cleanup(func() { transport.Close() })
	return NewGateway(transport, logging.NewNopLogger(), opts...)
}

// eachTransport runs fn against the same fake backend over both transports.
func eachTransport(t *testing.T, setup func(b *fakeBackend), fn func(t *testing.T, g *Gateway, b *fakeBackend)) {
	for name, build := range map[string]func(*testing.T, *fakeBackend, ...Option) *Gateway{
		"http": newHTTPGateway,
		"grpc": newGRPCGateway,
	} {
		t.Run(name, func(t *testing.T) {
			b := newFakeBackend()
			setup(b)
			fn(t, build(t, b), b)
		})
	}
}

func newPlainServer(t *testing.T, h http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}
