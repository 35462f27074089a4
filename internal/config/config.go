package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SupportedEditors lists the editor keys the debug page can link to.
var SupportedEditors = []string{"phpstorm", "vscode", "cursor", "sublimetext", "zed", "windsurf"}

// Config holds all sleuth configuration.
type Config struct {
	// Editor settings, injected into config/default.php on install
	Editor EditorConfig `yaml:"editor"`

	// SupportedMajorVersions are the OpenCart major versions install accepts
	SupportedMajorVersions []int `yaml:"supported_major_versions"`

	// BackupDir is the backup root, relative to OpenCart's system directory
	BackupDir string `yaml:"backup_dir"`

	// SearchDepth bounds how many parent directories are searched for the
	// OpenCart root when --root is not given
	SearchDepth int `yaml:"search_depth"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// EditorConfig configures "open in editor" links on the debug page.
type EditorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Default string `yaml:"default"`

	// PathFrom and PathTo map container paths to host paths (Docker setups).
	// Both empty means paths are used as-is.
	PathFrom string `yaml:"path_from"`
	PathTo   string `yaml:"path_to"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  bool   `yaml:"file"`  // also write to Paths.Log
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			Enabled: true,
			Default: "phpstorm",
		},
		SupportedMajorVersions: []int{3, 4},
		BackupDir:              filepath.Join("storage", "backup", "cartwryte-sleuth"),
		SearchDepth:            5,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if editor := os.Getenv("SLEUTH_EDITOR"); editor != "" {
		c.Editor.Default = editor
	}
	if dir := os.Getenv("SLEUTH_BACKUP_DIR"); dir != "" {
		c.BackupDir = dir
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(SupportedEditors, c.Editor.Default) {
		return fmt.Errorf("invalid config: unknown editor %q (supported: %v)", c.Editor.Default, SupportedEditors)
	}
	if len(c.SupportedMajorVersions) == 0 {
		return fmt.Errorf("invalid config: supported_major_versions must not be empty")
	}
	if c.BackupDir == "" || filepath.IsAbs(c.BackupDir) {
		return fmt.Errorf("invalid config: backup_dir must be a relative path, got %q", c.BackupDir)
	}
	if dir := filepath.Clean(c.BackupDir); dir == "." || dir == ".." || strings.HasPrefix(dir, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid config: backup_dir must name a directory below system/, got %q", c.BackupDir)
	}
	if c.SearchDepth < 0 {
		return fmt.Errorf("invalid config: search_depth must not be negative")
	}
	return nil
}

// SupportsMajorVersion reports whether install accepts an OpenCart major version.
func (c *Config) SupportsMajorVersion(major int) bool {
	return slices.Contains(c.SupportedMajorVersions, major)
}
