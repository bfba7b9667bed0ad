// Package filex holds small filesystem helpers for the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// Seams for tests.
var (
	getwd         = os.Getwd
	userConfigDir = os.UserConfigDir
)

// EnsureDir creates dir and its parents with owner-only permissions and
// returns the absolute path. A relative dir is resolved from the working
// directory.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// EnsureUserDir is EnsureDir for name inside the user's configuration
// directory (e.g. ~/.config/name).
func EnsureUserDir(name string) (string, error) {
	base, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return EnsureDir(filepath.Join(base, name))
}
