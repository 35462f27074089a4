package debugpage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cartwryte/sleuth/internal/clock"
	"github.com/cartwryte/sleuth/internal/config"
)

// stubSource serves file contents from memory.
type stubSource map[string]string

func (s stubSource) ReadFile(path string) ([]byte, error) {
	content, ok := s[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

type wrappedErr struct {
	err error
}

func (w *wrappedErr) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrappedErr) Unwrap() error { return w.err }

func TestCapture_ErrorChain(t *testing.T) {
	root := errors.New("connection refused")
	err := fmt.Errorf("load settings: %w", &wrappedErr{err: root})

	rep := Capture(err, 0)

	if rep.Message != "load settings: wrapped: connection refused" {
		t.Errorf("Message = %q", rep.Message)
	}
	if rep.Class != "*fmt.wrapError" {
		t.Errorf("Class = %q", rep.Class)
	}
	wantClasses := []string{"*fmt.wrapError", "*debugpage.wrappedErr", "*errors.errorString"}
	if len(rep.Chain) != len(wantClasses) {
		t.Fatalf("chain length = %d, want %d", len(rep.Chain), len(wantClasses))
	}
	for i, want := range wantClasses {
		if rep.Chain[i].Class != want {
			t.Errorf("chain[%d].Class = %q, want %q", i, rep.Chain[i].Class, want)
		}
	}
}

func TestCapture_FramesAndContext(t *testing.T) {
	c := NewCapturer(config.EditorConfig{})
	c.Clock = clock.NewFakeClock(time.Date(2024, 3, 2, 14, 5, 9, 0, time.UTC))
	c.Version = "4.0.2.3"

	rep := c.Capture(errors.New("boom"), 0)

	if len(rep.Frames) == 0 || len(rep.Frames) > MaxFrames {
		t.Fatalf("frame count %d out of range", len(rep.Frames))
	}
	first := rep.Frames[0]
	if !strings.HasSuffix(first.Function, "TestCapture_FramesAndContext") {
		t.Errorf("first frame = %s", first.Function)
	}
	if !first.Open || first.Vendor || first.ID != "frame-0" {
		t.Errorf("first frame flags: %+v", first)
	}
	if rep.File != first.File || rep.Line != first.Line {
		t.Errorf("error location %s:%d does not match first frame", rep.File, rep.Line)
	}

	// This test file is long enough for a full window
	if len(first.Code) != 2*ContextLines+1 {
		t.Errorf("context lines = %d, want %d", len(first.Code), 2*ContextLines+1)
	}
	errorLines := 0
	for _, line := range first.Code {
		if line.IsError {
			errorLines++
			if line.Number != first.Line || !strings.Contains(line.Text, "c.Capture(") {
				t.Errorf("error line = %d %q", line.Number, line.Text)
			}
		}
		if line.EditorURL != "#" {
			t.Errorf("links are disabled, got %q", line.EditorURL)
		}
	}
	if errorLines != 1 {
		t.Errorf("expected one error line, got %d", errorLines)
	}

	// testing.tRunner is standard library
	last := rep.Frames[len(rep.Frames)-1]
	if !last.Vendor {
		t.Errorf("expected %s to be a vendor frame", last.Function)
	}

	if rep.TechInfo.ErrorTime != "2024-03-02 14:05:09" || rep.TechInfo.OpenCartVersion != "4.0.2.3" {
		t.Errorf("tech info = %+v", rep.TechInfo)
	}
	if rep.TechInfo.RequestMethod != "Unknown" {
		t.Errorf("RequestMethod = %q", rep.TechInfo.RequestMethod)
	}
}

func TestCapture_RelativePaths(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	c := NewCapturer(config.EditorConfig{})
	c.Root = filepath.Dir(wd)

	rep := c.Capture(errors.New("boom"), 0)

	if rep.Frames[0].File != "debugpage/capture_test.go" {
		t.Errorf("File = %q", rep.Frames[0].File)
	}
	if !filepath.IsAbs(rep.Frames[0].FullPath) {
		t.Errorf("FullPath should stay absolute: %q", rep.Frames[0].FullPath)
	}
}

func TestCodeContext(t *testing.T) {
	var lines []string
	for i := 1; i <= 20; i++ {
		lines = append(lines, fmt.Sprintf("line %d  ", i))
	}
	src := stubSource{"/app/main.go": strings.Join(lines, "\n") + "\n"}
	c := &Capturer{Source: src}

	tests := []struct {
		name      string
		line      int
		wantFirst int
		wantLast  int
	}{
		{"middle", 10, 3, 17},
		{"near start", 2, 1, 9},
		{"near end", 19, 12, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := c.codeContext("/app/main.go", tt.line)
			if code[0].Number != tt.wantFirst || code[len(code)-1].Number != tt.wantLast {
				t.Errorf("window = %d..%d, want %d..%d",
					code[0].Number, code[len(code)-1].Number, tt.wantFirst, tt.wantLast)
			}
			for _, l := range code {
				if strings.HasSuffix(l.Text, " ") {
					t.Errorf("line %d not right-trimmed: %q", l.Number, l.Text)
				}
				if l.IsError != (l.Number == tt.line) {
					t.Errorf("line %d IsError = %v", l.Number, l.IsError)
				}
			}
		})
	}

	t.Run("unreadable", func(t *testing.T) {
		code := c.codeContext("/app/missing.go", 42)
		if len(code) != 1 || code[0].Text != "File not readable" || code[0].Number != 42 || !code[0].IsError {
			t.Errorf("unexpected placeholder: %+v", code)
		}
	})

	t.Run("line past end", func(t *testing.T) {
		code := c.codeContext("/app/main.go", 100)
		if len(code) != 1 || code[0].Text != "File not readable" {
			t.Errorf("unexpected context: %+v", code)
		}
	})
}

func TestIsVendorFrame(t *testing.T) {
	tests := []struct {
		function string
		file     string
		want     bool
	}{
		{"main.main", "/src/app/main.go", false},
		{"github.com/cartwryte/sleuth/internal/engine.(*Engine).Install", "/src/internal/engine/install.go", false},
		{"runtime.gopanic", "/usr/local/go/src/runtime/panic.go", true},
		{"net/http.(*conn).serve", "/usr/local/go/src/net/http/server.go", true},
		{"github.com/spf13/cobra.(*Command).execute", "/home/u/go/pkg/mod/github.com/spf13/cobra@v1.10.2/command.go", true},
		{"github.com/acme/shop.Handler", "/src/shop/vendor/github.com/acme/shop/h.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			if got := isVendorFrame(tt.function, tt.file); got != tt.want {
				t.Errorf("isVendorFrame(%q) = %v, want %v", tt.function, got, tt.want)
			}
		})
	}
}
