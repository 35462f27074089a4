// Package config manages sleuth configuration and its filesystem paths.
//
// Configuration lives under a per-user root, ~/.sleuth by default, which
// holds an optional config.yaml and the sleuth log file. Everything sleuth
// writes into an OpenCart tree (backups, install state) is located relative to
// that tree instead and is resolved by the opencart and engine packages.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the per-user filesystem paths used by sleuth.
type Paths struct {
	// Root is the base directory for sleuth's own data (default: ~/.sleuth)
	Root string

	// Config is the path to the YAML config file
	Config string

	// Log is the path of the structured log file, used when file logging is on
	Log string
}

// DefaultPaths returns the default paths for sleuth.
// Paths can be overridden with environment variables:
// - SLEUTH_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("SLEUTH_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".sleuth")
	}

	return &Paths{
		Root:   root,
		Config: filepath.Join(root, "config.yaml"),
		Log:    filepath.Join(root, "sleuth.log"),
	}, nil
}

// EnsureDirectories creates the root directory if it doesn't exist.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.Root, err)
	}
	return nil
}
