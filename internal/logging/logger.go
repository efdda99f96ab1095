package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// maxLogSize is the size at which impulse.log is rotated (5 MB).
	maxLogSize = 5 * 1024 * 1024
	// maxLogBackups is how many rotated files are kept next to the live log.
	maxLogBackups = 3
)

// InitLogger returns a JSON logger writing to the platform log file for
// appName:
//   - macOS:   ~/Library/Logs/<app>/<app>.log
//   - Linux:   ~/.local/state/<app>/<app>.log
//   - Windows: %LOCALAPPDATA%\<app>\Logs\<app>.log
//
// Debug switches the level to DEBUG and adds source locations.
func InitLogger(appName string, debug bool) (*slog.Logger, error) {
	logPath, err := LogFilePath(appName)
	if err != nil {
		return nil, fmt.Errorf("failed to get log file path: %w", err)
	}
	return InitFileLogger(logPath, debug)
}

// InitFileLogger is InitLogger with an explicit file location.
func InitFileLogger(logPath string, debug bool) (*slog.Logger, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	if err := rotateIfNeeded(logPath); err != nil {
		return nil, fmt.Errorf("failed to rotate log file: %w", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	return slog.New(slog.NewJSONHandler(logFile, handlerOptions(debug))), nil
}

// NewConsoleLogger writes human-readable text logs to w. The CLI subcommands
// use it, as does main before the file logger is available.
func NewConsoleLogger(w io.Writer, debug bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, handlerOptions(debug)))
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

// Component tags a logger with the subsystem that owns it.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = NewNopLogger()
	}
	return logger.With(slog.String("component", name))
}

func handlerOptions(debug bool) *slog.HandlerOptions {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level, AddSource: debug}
}

// rotateIfNeeded shifts log -> log.1 -> log.2 ... once the live file passes
// maxLogSize, dropping the oldest backup.
func rotateIfNeeded(logPath string) error {
	info, err := os.Stat(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() < maxLogSize {
		return nil
	}

	os.Remove(fmt.Sprintf("%s.%d", logPath, maxLogBackups))
	for i := maxLogBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", logPath, i), fmt.Sprintf("%s.%d", logPath, i+1))
	}

	if err := os.Rename(logPath, logPath+".1"); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return nil
}

// LogFilePath returns the platform-specific log file path for appName.
func LogFilePath(appName string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Logs", appName, appName+".log"), nil
	case "linux", "freebsd", "openbsd":
		if state := os.Getenv("XDG_STATE_HOME"); state != "" {
			return filepath.Join(state, appName, appName+".log"), nil
		}
		return filepath.Join(homeDir, ".local", "state", appName, appName+".log"), nil
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, appName, "Logs", appName+".log"), nil
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
