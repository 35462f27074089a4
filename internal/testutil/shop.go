// Package testutil builds fake OpenCart trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Stock file contents, shaped like OpenCart 4's.
const (
	Framework = `<?php
// Registry
$registry = new \Opencart\System\Engine\Registry();

// Error Handler
set_error_handler(function(int $code, string $message, string $file, int $line) use ($log, $config) {
	if (!(error_reporting() & $code)) {
		return false;
	}

	$log->write('PHP ' . $message . ' in ' . $file . ' on line ' . $line);

	return true;
});

// Exception Handler
set_exception_handler(function(\Throwable $e) use ($log, $config): void {
	$log->write($e->getMessage());
});

// Event
$event = new \Opencart\System\Engine\Event($registry);
`

	DefaultConfig = `<?php
// Site
$_['site_url']             = '';

// Error
$_['error_display']        = true;
`

	CatalogConfig = `<?php
// Action Pre Action
$_['action_pre_action']    = [
	'startup/setting',
	'startup/language',
	'startup/error',
	'startup/event',
];
`

	AdminConfig = `<?php
// Action Pre Action
$_['action_pre_action']    = [
	'startup/setting',
	'startup/error',
	'startup/login',
];
`

	Vendor = `<?php
// Autoloader
$autoloader->register('Twig', DIR_STORAGE . 'vendor/twig/twig/src/', true);
`
)

// Index returns an index.php declaring version.
func Index(version string) string {
	return "<?php\n// Version\ndefine('VERSION', '" + version + "');\n"
}

// StockFiles maps paths relative to the public root to their stock content.
func StockFiles(version string) map[string]string {
	return map[string]string{
		"index.php":                 Index(version),
		"system/framework.php":      Framework,
		"system/config/default.php": DefaultConfig,
		"system/config/catalog.php": CatalogConfig,
		"system/config/admin.php":   AdminConfig,
		"system/vendor.php":         Vendor,
	}
}

// NewShop writes a stock OpenCart tree of the given version into a temp dir
// and returns its public root.
func NewShop(t *testing.T, version string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range StockFiles(version) {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
	return root
}

// WriteFile writes content, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// AssertStock fails the test for every stock file that no longer matches its
// original content.
func AssertStock(t *testing.T, root, version string) {
	t.Helper()
	for rel, want := range StockFiles(version) {
		got := ReadFile(t, filepath.Join(root, filepath.FromSlash(rel)))
		if got != want {
			t.Errorf("%s differs from stock:\n got: %q\nwant: %q", rel, got, want)
		}
	}
}
