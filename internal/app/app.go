package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"fyne.io/fyne/v2"

	"github.com/shhac/impulse/internal/backend"
	"github.com/shhac/impulse/internal/collection"
	"github.com/shhac/impulse/internal/discovery"
	"github.com/shhac/impulse/internal/logging"
	"github.com/shhac/impulse/internal/model"
	"github.com/shhac/impulse/internal/notify"
	"github.com/shhac/impulse/internal/storage"
	"github.com/shhac/impulse/internal/store"
)

// App is the main application coordinator, responsible for wiring
// together all components and managing their lifecycle.
type App struct {
	fyneApp fyne.App
	config  *Config
	logger  *slog.Logger

	kv      storage.Store
	conns   *backend.ConnectionManager // nil on the http transport
	gateway *backend.Gateway
	sink    *notify.Swap
	store   *store.Store
	state   *model.ApplicationState

	watcher *collection.Watcher
	cancel  context.CancelFunc
}

// New creates a new App instance with the given configuration.
// This performs all dependency injection and wiring.
func New(fyneApp fyne.App, cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.InitLogger("impulse", cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("initializing Impulse application",
		slog.Bool("debug", cfg.Debug),
		slog.String("storage_path", cfg.StoragePath),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.String("transport", cfg.Transport),
	)

	return NewWithLogger(fyneApp, cfg, logger)
}

// NewWithLogger is New with a caller-provided logger.
func NewWithLogger(fyneApp fyne.App, cfg *Config, logger *slog.Logger) (*App, error) {
	kv, err := storage.Open(cfg.StorageDriver, cfg.StoragePath, logging.Component(logger, "storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	gateway, conns := NewGateway(cfg, logger)

	sink := &notify.Swap{}
	sink.Set(notify.LogSink{Logger: logger})

	st := store.New(gateway, kv, sink, logger)

	state := model.NewApplicationState()
	state.Bind(st)
	gateway.Transport().SetStateCallback(state.Connection.Update)

	logger.Info("application initialized successfully")

	return &App{
		fyneApp: fyneApp,
		config:  cfg,
		logger:  logger,
		kv:      kv,
		conns:   conns,
		gateway: gateway,
		sink:    sink,
		store:   st,
		state:   state,
	}, nil
}

// NewGateway builds the backend gateway selected by cfg. The connection
// manager is returned for the grpc transport so the caller can connect it.
func NewGateway(cfg *Config, logger *slog.Logger) (*backend.Gateway, *backend.ConnectionManager) {
	var (
		transport backend.Transport
		conns     *backend.ConnectionManager
	)
	switch cfg.Transport {
	case TransportGRPC:
		conns = backend.NewConnectionManager(logging.Component(logger, "grpc"))
		transport = backend.NewGRPCTransport(conns)
	default:
		transport = backend.NewHTTPTransport(cfg.BackendURL, &http.Client{}, logging.Component(logger, "http"))
	}

	opts := []backend.Option{backend.WithTimeout(cfg.Timeout)}
	if cfg.LocalReflection {
		opts = append(opts, backend.WithMethodLister(discovery.NewClient(backend.DialOptions{}, logging.Component(logger, "discovery"))))
	}
	return backend.NewGateway(transport, logging.Component(logger, "gateway"), opts...), conns
}

// Start connects to the backend, loads the collection and restores the
// workspace. It returns the deep link fragment to keep in the address, empty
// when it should be cleared.
func (a *App) Start(ctx context.Context, fragment string) string {
	ctx, a.cancel = context.WithCancel(ctx)

	if a.conns != nil {
		if err := a.conns.Connect(ctx, a.config.BackendAddress, backend.DialOptions{}); err != nil {
			a.logger.Error("failed to connect to backend",
				slog.String("address", a.config.BackendAddress),
				slog.Any("error", err),
			)
		}
	}

	fragment = a.store.Start(ctx, fragment)

	if a.config.WatchDir != "" {
		w, err := collection.NewWatcher(a.config.WatchDir, collection.DefaultDebounce, func(ctx context.Context) {
			a.store.Collection.Fetch(ctx)
		}, logging.Component(a.logger, "watcher"))
		if err != nil {
			a.logger.Warn("collection watcher disabled",
				slog.String("dir", a.config.WatchDir),
				slog.Any("error", err),
			)
		} else {
			a.watcher = w
			go w.Run(ctx)
		}
	}
	return fragment
}

// Close stops background work and releases the backend connection and the
// local storage.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Warn("failed to close watcher", slog.Any("error", err))
		}
	}
	if err := a.gateway.Transport().Close(); err != nil {
		a.logger.Warn("failed to close transport", slog.Any("error", err))
	}
	return a.kv.Close()
}

// SetSink routes failures to sink in addition to the log.
func (a *App) SetSink(sink notify.Sink) {
	a.sink.Set(notify.Multi(notify.LogSink{Logger: a.logger}, sink))
}

// Run displays window and runs the Fyne event loop until it is closed.
func (a *App) Run(window fyne.Window) {
	a.logger.Info("starting application")
	window.ShowAndRun()
}

// Store returns the client core.
func (a *App) Store() *store.Store {
	return a.store
}

// State returns the application state for use by UI components.
func (a *App) State() *model.ApplicationState {
	return a.state
}

// Config returns the configuration the app was built with.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// FyneApp returns the underlying Fyne application instance.
func (a *App) FyneApp() fyne.App {
	return a.fyneApp
}

// Endpoint describes the backend the app talks to.
func (a *App) Endpoint() string {
	if a.config.Transport == TransportGRPC {
		return "grpc://" + a.config.BackendAddress
	}
	return a.config.BackendURL
}
