package opencart

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func newShop(t *testing.T, version string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.php"), "<?php\n// Version\ndefine('VERSION', '"+version+"');\n")
	writeFile(t, filepath.Join(root, "system", "framework.php"), "<?php\n")
	writeFile(t, filepath.Join(root, "system", "config", "default.php"), "<?php\n")
	return root
}

func TestDetector_Paths(t *testing.T) {
	root := t.TempDir()
	d, err := NewDetector(root + string(filepath.Separator))
	if err != nil {
		t.Fatal(err)
	}

	paths := d.Paths()
	want := map[string]string{
		"root":      root,
		"system":    filepath.Join(root, "system"),
		"config":    filepath.Join(root, "system", "config"),
		"framework": filepath.Join(root, "system", "framework.php"),
		"loader":    filepath.Join(root, "system", "vendor.php"),
		"vendor":    filepath.Join(root, "system", "storage", "vendor"),
		"default":   filepath.Join(root, "system", "config", "default.php"),
		"catalog":   filepath.Join(root, "system", "config", "catalog.php"),
	}
	got := map[string]string{
		"root":      paths.Root,
		"system":    paths.System,
		"config":    paths.Config,
		"framework": paths.Framework,
		"loader":    paths.Loader,
		"vendor":    paths.Vendor,
		"default":   paths.DefaultConfig(),
		"catalog":   paths.ActionConfig("catalog"),
	}
	for key, w := range want {
		if got[key] != w {
			t.Errorf("%s = %s, want %s", key, got[key], w)
		}
	}
}

func TestDetector_IsOpenCart(t *testing.T) {
	t.Run("complete tree", func(t *testing.T) {
		d, _ := NewDetector(newShop(t, "4.0.2.3"))
		if !d.IsOpenCart() {
			t.Error("expected OpenCart to be detected")
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "system", "framework.php"), "<?php\n")
		d, _ := NewDetector(root)
		if d.IsOpenCart() {
			t.Error("expected detection to fail without config/default.php")
		}
	})
}

func TestDetector_Version(t *testing.T) {
	d, _ := NewDetector(newShop(t, "4.0.2.3"))

	version, err := d.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != "4.0.2.3" {
		t.Errorf("Version = %s, want 4.0.2.3", version)
	}

	major, err := d.MajorVersion()
	if err != nil {
		t.Fatalf("MajorVersion failed: %v", err)
	}
	if major != 4 {
		t.Errorf("MajorVersion = %d, want 4", major)
	}
}

func TestDetector_VersionMissingIndex(t *testing.T) {
	d, _ := NewDetector(t.TempDir())

	_, err := d.Version()
	if !errors.Is(err, ErrNotDetected) {
		t.Errorf("expected ErrNotDetected, got %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    string
		wantErr bool
	}{
		{"single quotes", "define('VERSION', '3.0.3.8');", "3.0.3.8", false},
		{"double quotes and spacing", "define ( \"VERSION\" , \"4.1.0.0\" );", "4.1.0.0", false},
		{"other constant", "define('DIR_SYSTEM', '/var/www');", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVersion = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMajorOf(t *testing.T) {
	if major, err := MajorOf("3.0.3.8"); err != nil || major != 3 {
		t.Errorf("MajorOf(3.0.3.8) = %d, %v", major, err)
	}
	if _, err := MajorOf("dev"); err == nil {
		t.Error("expected error for non-numeric version")
	}
}

func TestFindRoot(t *testing.T) {
	root := newShop(t, "4.0.2.3")
	deep := filepath.Join(root, "system", "storage", "vendor", "cartwryte")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindRoot(deep, 5)
	if err != nil {
		t.Fatalf("FindRoot failed: %v", err)
	}
	if found != root {
		t.Errorf("FindRoot = %s, want %s", found, root)
	}

	if _, err := FindRoot(deep, 1); !errors.Is(err, ErrNotDetected) {
		t.Errorf("expected ErrNotDetected with shallow depth, got %v", err)
	}
}
