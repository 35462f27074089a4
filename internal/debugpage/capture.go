package debugpage

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cartwryte/sleuth/internal/clock"
	"github.com/cartwryte/sleuth/internal/config"
	"github.com/cartwryte/sleuth/internal/fsops"
)

const (
	// MaxFrames caps how many stack frames a report carries.
	MaxFrames = 15

	// ContextLines is how many lines are shown on each side of a frame's line.
	ContextLines = 7

	unreadable = "File not readable"
)

// SourceReader reads source files for code context. fsops.FS satisfies it.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}

// Capturer turns errors into reports.
type Capturer struct {
	// Root is stripped from frame paths when they lie below it
	Root string

	// Version is reported as the OpenCart version
	Version string

	Editor config.EditorConfig
	Source SourceReader
	Clock  clock.Clock
}

// NewCapturer returns a Capturer reading sources from disk.
func NewCapturer(editor config.EditorConfig) *Capturer {
	return &Capturer{
		Editor: editor,
		Source: fsops.NewRealFS(),
		Clock:  clock.RealClock{},
	}
}

// Capture builds a report for err with the stack of its caller. skip drops
// that many additional frames above the caller.
func Capture(err error, skip int) *Report {
	return NewCapturer(config.EditorConfig{}).capture(err, skip)
}

// Capture builds a report for err with the stack of its caller.
func (c *Capturer) Capture(err error, skip int) *Report {
	return c.capture(err, skip)
}

// capture must be called directly from an exported entry point; skip counts
// from that entry point's caller.
func (c *Capturer) capture(err error, skip int) *Report {
	if err == nil {
		err = errors.New("nil error")
	}

	rep := &Report{
		Class:   className(err),
		Message: err.Error(),
		Chain:   chain(err),
		Frames:  []Frame{},
	}

	pcs := make([]uintptr, MaxFrames)
	// runtime.Callers, capture and the exported entry point
	n := runtime.Callers(skip+3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	errorIdx := -1
	for {
		f, more := frames.Next()
		if f.File != "" {
			frame := Frame{
				ID:       fmt.Sprintf("frame-%d", len(rep.Frames)),
				File:     c.relative(f.File),
				FullPath: f.File,
				Line:     f.Line,
				Function: f.Function,
				Vendor:   isVendorFrame(f.Function, f.File),
			}
			if errorIdx < 0 && !frame.Vendor {
				errorIdx = len(rep.Frames)
			}
			rep.Frames = append(rep.Frames, frame)
		}
		if !more {
			break
		}
	}

	if errorIdx < 0 && len(rep.Frames) > 0 {
		errorIdx = 0
	}
	if errorIdx >= 0 {
		rep.Frames[errorIdx].Open = true
		rep.File = rep.Frames[errorIdx].File
		rep.Line = rep.Frames[errorIdx].Line
	} else {
		rep.File = unknown
	}

	for i := range rep.Frames {
		rep.Frames[i].Code = c.codeContext(rep.Frames[i].FullPath, rep.Frames[i].Line)
	}

	rep.TechInfo = c.techInfo()
	return rep
}

// codeContext returns up to ContextLines lines around line. An unreadable
// file yields one placeholder line.
func (c *Capturer) codeContext(path string, line int) []CodeLine {
	if c.Source == nil {
		return []CodeLine{c.codeLine(path, line, unreadable, line)}
	}
	data, err := c.Source.ReadFile(path)
	if err != nil {
		return []CodeLine{c.codeLine(path, line, unreadable, line)}
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	start := max(1, line-ContextLines)
	end := min(len(lines), line+ContextLines)
	if end < start {
		return []CodeLine{c.codeLine(path, line, unreadable, line)}
	}

	code := make([]CodeLine, 0, end-start+1)
	for n := start; n <= end; n++ {
		text := strings.TrimRight(lines[n-1], " \t\r")
		code = append(code, c.codeLine(path, n, text, line))
	}
	return code
}

func (c *Capturer) codeLine(path string, number int, text string, errLine int) CodeLine {
	return CodeLine{
		Number:    number,
		Text:      text,
		IsError:   number == errLine,
		EditorURL: EditorURL(c.Editor, path, number),
	}
}

func (c *Capturer) relative(path string) string {
	if c.Root == "" {
		return path
	}
	rel, err := filepath.Rel(c.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func (c *Capturer) techInfo() TechInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	clk := c.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	version := c.Version
	if version == "" {
		version = unknown
	}

	return TechInfo{
		GoVersion:       runtime.Version(),
		OpenCartVersion: version,
		ErrorTime:       formatTime(clk.Now()),
		Memory:          fmt.Sprintf("%.2f MB / %.2f MB", megabytes(mem.HeapAlloc), megabytes(mem.Sys)),
		RequestMethod:   unknown,
		RequestURI:      unknown,
		ServerSoftware:  "Go " + runtime.Version(),
	}
}

func megabytes(b uint64) float64 {
	return float64(b) / 1024 / 1024
}

func className(err error) string {
	return fmt.Sprintf("%T", err)
}

// chain follows errors.Unwrap from err to the innermost cause.
func chain(err error) []ErrorInfo {
	var out []ErrorInfo
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, ErrorInfo{Class: className(e), Message: e.Error()})
	}
	return out
}

// isVendorFrame reports whether a frame belongs to the runtime, the standard
// library or a dependency rather than the application.
func isVendorFrame(function, file string) bool {
	slashed := filepath.ToSlash(file)
	if strings.Contains(slashed, "/pkg/mod/") || strings.Contains(slashed, "/vendor/") {
		return true
	}

	pkg := funcPackage(function)
	if pkg == "main" {
		return false
	}
	// Standard library import paths have no dot in their first element
	first, _, _ := strings.Cut(pkg, "/")
	return !strings.Contains(first, ".")
}

// funcPackage extracts the import path from a qualified function name such
// as "github.com/a/b.(*T).M".
func funcPackage(function string) string {
	lastSlash := strings.LastIndex(function, "/")
	dot := strings.Index(function[lastSlash+1:], ".")
	if dot < 0 {
		return function
	}
	return function[:lastSlash+1+dot]
}
