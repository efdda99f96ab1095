package storage

import (
	"os"
	"path/filepath"
)

const dirName = ".impulse"

// DefaultStoragePath returns the default storage location:
//   - macOS/Linux: ~/.impulse
//   - Windows: %USERPROFILE%\.impulse
func DefaultStoragePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}
