package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	impulseApp "github.com/shhac/impulse/internal/app"
	"github.com/shhac/impulse/internal/ui"
	"github.com/shhac/impulse/internal/ui/settings"
)

func main() {
	root, _ := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// flags are the command line overrides shared by every command.
type flags struct {
	debug     bool
	storage   string
	driver    string
	transport string
	backend   string
	open      string
}

func newRootCmd() (*cobra.Command, *flags) {
	f := &flags{}
	root := &cobra.Command{
		Use:           "impulse",
		Short:         "A multi-protocol request workbench",
		Long:          "Impulse edits and sends HTTP, SQL, gRPC, jq and Redis requests kept in a shared collection.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			return runApp(cfg, f.open)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&f.debug, "debug", false, "enable debug logging")
	pf.StringVar(&f.storage, "storage", "", "directory holding the workspace and settings")
	pf.StringVar(&f.driver, "storage-driver", "", "local storage driver (json, sqlite or memory)")
	pf.StringVar(&f.transport, "transport", "", "backend transport (http or grpc)")
	pf.StringVar(&f.backend, "backend", "", "backend URL for http, address for grpc")
	root.Flags().StringVar(&f.open, "open", "", "request id to open, as in a #fragment deep link")

	root.AddCommand(newListCmd(f), newTabsCmd(f))
	return root, f
}

// config loads the configuration and applies the flags the user set.
func (f *flags) config(cmd *cobra.Command) (*impulseApp.Config, error) {
	cfg, err := impulseApp.LoadConfig(f.storage)
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("debug") {
		cfg.Debug = f.debug
	}
	if changed("storage-driver") {
		cfg.StorageDriver = f.driver
	}
	if changed("transport") {
		cfg.Transport = f.transport
	}
	if changed("backend") {
		if cfg.Transport == impulseApp.TransportGRPC {
			cfg.BackendAddress = f.backend
		} else {
			cfg.BackendURL = f.backend
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runApp is the main application entry point with panic recovery.
func runApp(cfg *impulseApp.Config, open string) (err error) {
	// Create a temporary stdout logger for bootstrap errors
	tempLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			tempLogger.Error("panic recovered",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	tempLogger.Info("starting Impulse")

	fyneApp := app.NewWithID("com.impulse.client")
	ui.LoadThemePreference(fyneApp)
	cfg.Timeout = settings.RequestTimeout(fyneApp.Preferences(), cfg.Timeout)

	a, err := impulseApp.New(fyneApp, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.Logger().Warn("failed to close application", slog.Any("error", cerr))
		}
	}()

	mainWindow := ui.NewMainWindow(a.FyneApp(), a)

	fragment := deepLink(open)
	go func() {
		if kept := a.Start(context.Background(), fragment); fragment != "" && kept == "" {
			a.Logger().Warn("deep link does not name a request", slog.String("link", open))
		}
		fyne.Do(mainWindow.RestoreLayout)
	}()

	// Run the application (blocking)
	a.Run(mainWindow.Window())

	a.Logger().Info("application shutdown complete")
	return nil
}

// deepLink turns --open into a fragment. It takes a bare id or anything
// carrying one after "#", such as impulse://open#api/users.
func deepLink(open string) string {
	open = strings.TrimSpace(open)
	if open == "" {
		return ""
	}
	if i := strings.LastIndex(open, "#"); i >= 0 {
		open = open[i+1:]
	}
	if open == "" {
		return ""
	}
	return "#" + open
}
