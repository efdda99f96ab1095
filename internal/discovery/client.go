// Package discovery lists the services and methods of a gRPC target through
// server reflection, so gRPC requests can offer method completion without a
// round trip through the backend.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/grpcreflect"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/shhac/impulse/internal/backend"
	"github.com/shhac/impulse/internal/domain"
)

var reflectionServices = map[string]bool{
	"grpc.reflection.v1alpha.ServerReflection": true,
	"grpc.reflection.v1.ServerReflection":      true,
}

// Client resolves services on arbitrary targets. It implements
// backend.MethodLister.
type Client struct {
	dial   backend.DialOptions
	logger *slog.Logger
}

// NewClient creates a discovery client that dials targets with opts.
func NewClient(opts backend.DialOptions, logger *slog.Logger) *Client {
	return &Client{dial: opts, logger: logger}
}

// ListMethods dials target and lists its services via reflection.
func (c *Client) ListMethods(ctx context.Context, target string) ([]domain.Service, error) {
	conn, err := backend.Dial(target, c.dial, c.logger)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	defer conn.Close()

	return c.ListOnConn(ctx, conn)
}

// ListOnConn lists services over an existing connection. Services whose
// descriptors cannot be resolved are logged and skipped.
func (c *Client) ListOnConn(ctx context.Context, conn grpc.ClientConnInterface) ([]domain.Service, error) {
	refClient := grpcreflect.NewClientAuto(ctx, conn)
	defer refClient.Reset()

	// Servers often omit well-known imports; resolve those locally.
	refClient.AllowFallbackResolver(protoregistry.GlobalFiles, protoregistry.GlobalTypes)
	refClient.AllowMissingFileDescriptors()

	names, err := refClient.ListServices()
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	sort.Strings(names)

	services := []domain.Service{}
	for _, name := range names {
		if reflectionServices[name] {
			continue
		}
		sd, err := refClient.ResolveService(name)
		if err != nil {
			c.logger.Warn("failed to resolve service", slog.String("service", name), slog.Any("error", err))
			continue
		}
		services = append(services, toService(sd))
	}

	c.logger.Info("discovered services", slog.Int("count", len(services)))
	return services, nil
}

func toService(sd *desc.ServiceDescriptor) domain.Service {
	svc := domain.Service{Service: sd.GetFullyQualifiedName(), Methods: []string{}}
	for _, md := range sd.GetMethods() {
		svc.Methods = append(svc.Methods, md.GetName())
	}
	return svc
}
