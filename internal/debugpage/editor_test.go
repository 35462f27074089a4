package debugpage

import (
	"testing"

	"github.com/cartwryte/sleuth/internal/config"
)

func TestEditorURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.EditorConfig
		file string
		want string
	}{
		{
			name: "phpstorm",
			cfg:  config.EditorConfig{Enabled: true, Default: "phpstorm"},
			file: "/var/www/html/index.php",
			want: "phpstorm://open?file=%2Fvar%2Fwww%2Fhtml%2Findex.php&line=12",
		},
		{
			name: "vscode",
			cfg:  config.EditorConfig{Enabled: true, Default: "vscode"},
			file: "/srv/shop/index.php",
			want: "vscode://file/%2Fsrv%2Fshop%2Findex.php:12",
		},
		{
			name: "sublime",
			cfg:  config.EditorConfig{Enabled: true, Default: "sublimetext"},
			file: "/a.php",
			want: "subl://open?url=file://%2Fa.php&line=12",
		},
		{
			name: "path mapping",
			cfg: config.EditorConfig{
				Enabled: true, Default: "zed",
				PathFrom: "/var/www/html", PathTo: "/Users/dev/shop",
			},
			file: "/var/www/html/system/framework.php",
			want: "zed://file/%2FUsers%2Fdev%2Fshop%2Fsystem%2Fframework.php:12",
		},
		{
			name: "disabled",
			cfg:  config.EditorConfig{Enabled: false, Default: "phpstorm"},
			file: "/a.php",
			want: "#",
		},
		{
			name: "unknown editor",
			cfg:  config.EditorConfig{Enabled: true, Default: "notepad"},
			file: "/a.php",
			want: "#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EditorURL(tt.cfg, tt.file, 12); got != tt.want {
				t.Errorf("EditorURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEditors_CoverSupportedEditors(t *testing.T) {
	for _, key := range config.SupportedEditors {
		if _, ok := Editors[key]; !ok {
			t.Errorf("no URL template for supported editor %q", key)
		}
	}
}

func TestMapPath(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		path string
		want string
	}{
		{"mapped", "/var/www", "/home/dev", "/var/www/a.php", "/home/dev/a.php"},
		{"outside prefix", "/var/www", "/home/dev", "/opt/var/www/a.php", "/opt/var/www/a.php"},
		{"only from", "/var/www", "", "/var/www/a.php", "/var/www/a.php"},
		{"only to", "", "/home/dev", "/var/www/a.php", "/var/www/a.php"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.EditorConfig{PathFrom: tt.from, PathTo: tt.to}
			if got := MapPath(cfg, tt.path); got != tt.want {
				t.Errorf("MapPath = %q, want %q", got, tt.want)
			}
		})
	}
}
