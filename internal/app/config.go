package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/shhac/impulse/internal/backend"
	"github.com/shhac/impulse/internal/storage"
)

// Transport names accepted by Config.Transport.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds application-wide configuration.
type Config struct {
	// Debug enables debug logging and additional diagnostics
	Debug bool

	// StoragePath is the directory where the workspace and settings are stored
	StoragePath string

	// StorageDriver selects the local storage backend (json or sqlite)
	StorageDriver string

	// Transport selects how the backend is reached (http or grpc)
	Transport string

	// BackendURL is the HTTP endpoint of the backend
	BackendURL string

	// BackendAddress is the gRPC target of the backend
	BackendAddress string

	// Timeout bounds every backend call
	Timeout time.Duration

	// WatchDir, when set, is watched for changes made behind the client's back
	WatchDir string

	// LocalReflection lists gRPC methods in-process instead of asking the backend
	LocalReflection bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:          false,
		StoragePath:    "", // Will use DefaultStoragePath() from storage package
		StorageDriver:  storage.DriverJSON,
		Transport:      TransportHTTP,
		BackendURL:     "http://localhost:8090/api",
		BackendAddress: "localhost:8091",
		Timeout:        backend.DefaultTimeout,
	}
}

// settingsFile is the on-disk shape of settings.toml / settings.json. Unset
// fields leave the configuration alone.
type settingsFile struct {
	Debug           *bool   `json:"debug"            toml:"debug"`
	StorageDriver   *string `json:"storage_driver"   toml:"storage_driver"`
	Transport       *string `json:"transport"        toml:"transport"`
	BackendURL      *string `json:"backend_url"      toml:"backend_url"`
	BackendAddress  *string `json:"backend_address"  toml:"backend_address"`
	Timeout         *string `json:"timeout"          toml:"timeout"`
	WatchDir        *string `json:"watch_dir"        toml:"watch_dir"`
	LocalReflection *bool   `json:"local_reflection" toml:"local_reflection"`
}

// LoadConfig builds the configuration from defaults, the settings file in
// the storage directory and the environment, in increasing precedence.
// storagePath overrides both the default and IMPULSE_STORAGE_PATH when set.
func LoadConfig(storagePath string) (*Config, error) {
	cfg := DefaultConfig()

	dir := storagePath
	if dir == "" {
		dir = os.Getenv("IMPULSE_STORAGE_PATH")
	}
	if dir == "" {
		var err error
		dir, err = storage.DefaultStoragePath()
		if err != nil {
			return nil, fmt.Errorf("failed to determine storage path: %w", err)
		}
	}
	cfg.StoragePath = dir

	if err := cfg.loadSettings(dir); err != nil {
		return nil, err
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.StoragePath = dir
	return cfg, nil
}

// ConfigFromEnv creates a configuration from defaults and environment
// variables only.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.applyEnv(os.LookupEnv)
	return cfg
}

// loadSettings tries settings.toml first, then settings.json. A missing file
// is skipped; a file that does not parse fails.
func (c *Config) loadSettings(dir string) error {
	candidates := []struct {
		name string
		toml bool
	}{
		{"settings.toml", true},
		{"settings.json", false},
	}
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate.name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read settings %q: %w", path, err)
		}

		var s settingsFile
		if candidate.toml {
			err = toml.Unmarshal(data, &s)
		} else {
			decoder := json.NewDecoder(bytes.NewReader(data))
			decoder.DisallowUnknownFields()
			err = decoder.Decode(&s)
		}
		if err != nil {
			return fmt.Errorf("parse settings %q: %w", path, err)
		}
		c.applySettings(s)
		return nil
	}
	return nil
}

func (c *Config) applySettings(s settingsFile) {
	if s.Debug != nil {
		c.Debug = *s.Debug
	}
	if s.StorageDriver != nil {
		c.StorageDriver = *s.StorageDriver
	}
	if s.Transport != nil {
		c.Transport = *s.Transport
	}
	if s.BackendURL != nil {
		c.BackendURL = *s.BackendURL
	}
	if s.BackendAddress != nil {
		c.BackendAddress = *s.BackendAddress
	}
	if s.Timeout != nil {
		if d, err := time.ParseDuration(*s.Timeout); err == nil && d >= 0 {
			c.Timeout = d
		}
	}
	if s.WatchDir != nil {
		c.WatchDir = *s.WatchDir
	}
	if s.LocalReflection != nil {
		c.LocalReflection = *s.LocalReflection
	}
}

// applyEnv reads IMPULSE_* variables. Values that do not parse are ignored.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	boolean("IMPULSE_DEBUG", &c.Debug)
	str("IMPULSE_STORAGE_PATH", &c.StoragePath)
	str("IMPULSE_STORAGE_DRIVER", &c.StorageDriver)
	str("IMPULSE_TRANSPORT", &c.Transport)
	str("IMPULSE_BACKEND_URL", &c.BackendURL)
	str("IMPULSE_BACKEND_ADDRESS", &c.BackendAddress)
	str("IMPULSE_WATCH_DIR", &c.WatchDir)
	boolean("IMPULSE_LOCAL_REFLECTION", &c.LocalReflection)

	if v, ok := lookup("IMPULSE_TIMEOUT"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Timeout = d
		}
	}
}

// Validate rejects unknown transport and storage driver names.
func (c *Config) Validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))

	switch c.Transport {
	case TransportHTTP:
		if c.BackendURL == "" {
			return errors.New("backend URL is required for the http transport")
		}
	case TransportGRPC:
		if c.BackendAddress == "" {
			return errors.New("backend address is required for the grpc transport")
		}
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportHTTP, TransportGRPC)
	}

	switch c.StorageDriver {
	case storage.DriverJSON, storage.DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q (want %s or %s)", c.StorageDriver, storage.DriverJSON, storage.DriverSQLite)
	}
	return nil
}
