// Package opencart locates an OpenCart installation and resolves the paths of
// the files sleuth patches.
//
// The Detector is the path resolver every other package queries: callers ask
// it for Paths and never rebuild OpenCart's layout themselves.
package opencart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNotDetected indicates the root is not an OpenCart public directory.
	ErrNotDetected = errors.New("opencart installation not detected")

	// ErrVersionNotFound indicates index.php carries no VERSION constant.
	ErrVersionNotFound = errors.New("opencart version not found")
)

// versionScanLimit caps how much of index.php is read looking for VERSION.
const versionScanLimit = 32 * 1024

var versionPattern = regexp.MustCompile(`define\s*\(\s*['"]VERSION['"]\s*,\s*['"]([^'"]+)['"]\s*\)`)

// Paths maps OpenCart's logical locations to absolute paths.
type Paths struct {
	// Root is the public directory containing index.php
	Root string `json:"root"`

	// System is Root/system
	System string `json:"system"`

	// Config is the directory holding default.php, catalog.php and admin.php
	Config string `json:"config"`

	// Framework is system/framework.php, where the stock handlers are set
	Framework string `json:"framework"`

	// Loader is system/vendor.php, OpenCart's autoloader registration file
	Loader string `json:"loader"`

	// Vendor is system/storage/vendor, where composer packages are installed
	Vendor string `json:"vendor"`
}

// DefaultConfig returns config/default.php.
func (p Paths) DefaultConfig() string {
	return filepath.Join(p.Config, "default.php")
}

// ActionConfig returns config/<kind>.php, where kind is "catalog" or "admin".
func (p Paths) ActionConfig(kind string) string {
	return filepath.Join(p.Config, kind+".php")
}

// PathResolver resolves OpenCart's file layout and version.
type PathResolver interface {
	// Paths returns the absolute paths of the installation.
	Paths() Paths

	// IsOpenCart reports whether the root looks like an OpenCart public dir.
	IsOpenCart() bool

	// Version returns the full version string, e.g. "4.0.2.3".
	Version() (string, error)

	// MajorVersion returns the first component of Version.
	MajorVersion() (int, error)
}

// Detector implements PathResolver for a public OpenCart directory.
type Detector struct {
	root    string
	version string
}

// NewDetector creates a Detector for the given public directory.
// The root is cleaned; relative roots are resolved against the process cwd.
func NewDetector(root string) (*Detector, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	return &Detector{root: filepath.Clean(abs)}, nil
}

// Paths returns the absolute paths of the installation.
func (d *Detector) Paths() Paths {
	system := filepath.Join(d.root, "system")
	return Paths{
		Root:      d.root,
		System:    system,
		Config:    filepath.Join(system, "config"),
		Framework: filepath.Join(system, "framework.php"),
		Loader:    filepath.Join(system, "vendor.php"),
		Vendor:    filepath.Join(system, "storage", "vendor"),
	}
}

// IsOpenCart reports whether framework.php and config/default.php exist.
func (d *Detector) IsOpenCart() bool {
	paths := d.Paths()
	return isFile(paths.Framework) && isFile(paths.DefaultConfig())
}

// Version parses the VERSION constant from index.php. The result is cached.
func (d *Detector) Version() (string, error) {
	if d.version != "" {
		return d.version, nil
	}

	indexFile := filepath.Join(d.root, "index.php")
	f, err := os.Open(indexFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: index.php not found at %s", ErrNotDetected, indexFile)
		}
		return "", fmt.Errorf("failed to open %s: %w", indexFile, err)
	}
	defer func() {
		_ = f.Close()
	}()

	head, err := io.ReadAll(io.LimitReader(f, versionScanLimit))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", indexFile, err)
	}

	version, err := ParseVersion(string(head))
	if err != nil {
		return "", fmt.Errorf("could not parse version from %s: %w", indexFile, err)
	}

	d.version = version
	return version, nil
}

// MajorVersion returns the first dotted component of Version.
func (d *Detector) MajorVersion() (int, error) {
	version, err := d.Version()
	if err != nil {
		return 0, err
	}
	return MajorOf(version)
}

// ParseVersion extracts the VERSION constant from PHP source.
func ParseVersion(src string) (string, error) {
	m := versionPattern.FindStringSubmatch(src)
	if m == nil {
		return "", ErrVersionNotFound
	}
	return m[1], nil
}

// MajorOf returns the leading integer of a dotted version string.
func MajorOf(version string) (int, error) {
	head, _, _ := strings.Cut(version, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", version, err)
	}
	return major, nil
}

// FindRoot walks up from start, at most maxDepth levels, to the first
// directory holding both index.php and system/framework.php.
func FindRoot(start string, maxDepth int) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", start, err)
	}

	for i := 0; i <= maxDepth; i++ {
		if isFile(filepath.Join(dir, "index.php")) && isFile(filepath.Join(dir, "system", "framework.php")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: no OpenCart root above %s", ErrNotDetected, start)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
