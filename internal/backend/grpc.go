package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/shhac/impulse/internal/errors"
)

// GRPCServiceName is the service the gRPC transport calls on the backend.
const GRPCServiceName = "impulse.v1.Backend"

// RequestIDMetadata carries the per-call correlation id.
const RequestIDMetadata = "x-request-id"

var routeMethods = map[Route]string{
	RouteList:        "List",
	RouteRead:        "Read",
	RouteCreate:      "Create",
	RouteDuplicate:   "Duplicate",
	RouteUpdate:      "Update",
	RoutePerform:     "Perform",
	RouteDelete:      "Delete",
	RouteJQ:          "JQ",
	RouteGRPCMethods: "GRPCMethods",
}

// FullMethod returns the gRPC method path for route.
func FullMethod(route Route) (string, bool) {
	name, ok := routeMethods[route]
	if !ok {
		return "", false
	}
	return "/" + GRPCServiceName + "/" + name, true
}

// RouteForMethod is the inverse of FullMethod.
func RouteForMethod(fullMethod string) (Route, bool) {
	name := fullMethod[strings.LastIndex(fullMethod, "/")+1:]
	for route, method := range routeMethods {
		if method == name {
			return route, true
		}
	}
	return "", false
}

// GRPCTransport sends calls as unary RPCs carrying a google.protobuf.Struct
// request and a google.protobuf.Value response.
type GRPCTransport struct {
	conns *ConnectionManager
}

// NewGRPCTransport sends calls over the connection held by conns.
func NewGRPCTransport(conns *ConnectionManager) *GRPCTransport {
	return &GRPCTransport{conns: conns}
}

func (t *GRPCTransport) Call(ctx context.Context, route Route, params Params, out any) error {
	method, ok := FullMethod(route)
	if !ok {
		return fmt.Errorf("unknown route %q", route)
	}
	conn := t.conns.Conn()
	if conn == nil {
		return fmt.Errorf("%w: not connected", apperrors.ErrBackendUnavailable)
	}

	req, err := toStruct(params)
	if err != nil {
		return fmt.Errorf("encode %s: %w", route, err)
	}
	if id := CallIDFrom(ctx); id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDMetadata, id)
	}

	resp := &structpb.Value{}
	if err := conn.Invoke(ctx, method, req, resp); err != nil {
		if status.Code(err) == codes.Unavailable {
			t.conns.updateState(StateError, status.Convert(err).Message())
		}
		return apperrors.FromGRPCStatus(err)
	}
	t.conns.updateState(StateConnected, "Connected to "+t.conns.Address())

	if out == nil {
		return nil
	}
	data, err := protojson.Marshal(resp)
	if err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}
	return nil
}

func (t *GRPCTransport) State() ConnectionState { return t.conns.State() }

func (t *GRPCTransport) SetStateCallback(fn func(state ConnectionState, message string)) {
	t.conns.SetStateCallback(fn)
}

// Close disconnects the underlying connection.
func (t *GRPCTransport) Close() error { return t.conns.Disconnect() }

// toStruct round-trips params through JSON so typed payloads become the
// plain maps structpb accepts.
func toStruct(params Params) (*structpb.Struct, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var plain map[string]any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	return structpb.NewStruct(plain)
}
