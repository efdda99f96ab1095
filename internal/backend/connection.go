package backend

import (
	"context"
	"crypto/tls"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// DialOptions configures a gRPC connection to the backend or to a target
// being inspected.
type DialOptions struct {
	UseTLS   bool
	Insecure bool // skip certificate verification when UseTLS is set
}

// ConnectionManager owns the lifecycle of one gRPC client connection.
type ConnectionManager struct {
	stateTracker
	connMu  sync.RWMutex
	conn    *grpc.ClientConn
	address string
}

// NewConnectionManager creates a manager in the Disconnected state.
func NewConnectionManager(logger *slog.Logger) *ConnectionManager {
	return &ConnectionManager{stateTracker: stateTracker{logger: logger}}
}

// Connect creates a client for address, replacing any previous connection.
// The connection itself is established lazily by gRPC on first use.
func (m *ConnectionManager) Connect(ctx context.Context, address string, opts DialOptions) error {
	m.updateState(StateConnecting, "Connecting to "+address)

	conn, err := grpc.NewClient(address, dialOptions(opts, m.logger)...)
	if err != nil {
		m.logger.Error("failed to create gRPC client",
			slog.String("address", address),
			slog.Any("error", err),
		)
		m.updateState(StateError, "Failed to connect: "+err.Error())
		return err
	}

	m.connMu.Lock()
	if m.conn != nil {
		oldConn := m.conn
		go func() {
			if err := oldConn.Close(); err != nil {
				m.logger.Warn("failed to close old connection", slog.Any("error", err))
			}
		}()
	}
	m.conn = conn
	m.address = address
	m.connMu.Unlock()

	m.logger.Info("gRPC client created",
		slog.String("address", address),
		slog.Bool("tls", opts.UseTLS),
	)
	m.updateState(StateConnected, "Connected to "+address)
	return nil
}

// Disconnect closes the connection.
func (m *ConnectionManager) Disconnect() error {
	m.connMu.Lock()
	conn, addr := m.conn, m.address
	m.conn, m.address = nil, ""
	m.connMu.Unlock()

	if conn == nil {
		m.updateState(StateDisconnected, "Already disconnected")
		return nil
	}

	if err := conn.Close(); err != nil {
		m.logger.Error("failed to close connection",
			slog.String("address", addr),
			slog.Any("error", err),
		)
		m.updateState(StateError, "Failed to disconnect: "+err.Error())
		return err
	}

	m.logger.Info("gRPC connection closed", slog.String("address", addr))
	m.updateState(StateDisconnected, "Disconnected")
	return nil
}

// Conn returns the current client connection, or nil when disconnected.
func (m *ConnectionManager) Conn() *grpc.ClientConn {
	m.connMu.RLock()
	defer m.connMu.RUnlock()
	return m.conn
}

// Address returns the address of the current connection.
func (m *ConnectionManager) Address() string {
	m.connMu.RLock()
	defer m.connMu.RUnlock()
	return m.address
}

// Dial opens a standalone client connection with the same options the
// manager uses. The caller closes it.
func Dial(address string, opts DialOptions, logger *slog.Logger) (*grpc.ClientConn, error) {
	return grpc.NewClient(address, dialOptions(opts, logger)...)
}

func dialOptions(opts DialOptions, logger *slog.Logger) []grpc.DialOption {
	dialOpts := []grpc.DialOption{
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             3 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	if opts.UseTLS {
		cfg := &tls.Config{}
		if opts.Insecure {
			cfg.InsecureSkipVerify = true
			logger.Warn("using insecure TLS connection (skipping certificate verification)")
		}
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(cfg)))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	return dialOpts
}
