package debugpage

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Renderer writes a report in one output format.
type Renderer interface {
	// ContentType is the HTTP Content-Type of the output.
	ContentType() string

	// Render writes rep to w.
	Render(w io.Writer, rep *Report) error
}

// RendererFor returns the renderer for a response type. HTML pages are not
// rendered; they fall back to plain text.
func RendererFor(responseType string) Renderer {
	if responseType == ResponseJSON {
		return JSONRenderer{}
	}
	return TextRenderer{}
}

// JSONRenderer renders the payload AJAX callers receive.
type JSONRenderer struct{}

type jsonFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

type jsonPayload struct {
	Error      bool        `json:"error"`
	Message    string      `json:"message"`
	Type       string      `json:"type"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	Exceptions []ErrorInfo `json:"exceptions"`
	Trace      []jsonFrame `json:"trace"`
	TechInfo   TechInfo    `json:"tech_info"`
}

// ContentType implements Renderer.
func (JSONRenderer) ContentType() string {
	return "application/json"
}

// Render implements Renderer.
func (JSONRenderer) Render(w io.Writer, rep *Report) error {
	payload := jsonPayload{
		Error:      true,
		Message:    rep.Message,
		Type:       rep.Heading(),
		File:       rep.File,
		Line:       rep.Line,
		Exceptions: rep.Chain,
		Trace:      make([]jsonFrame, 0, len(rep.Frames)),
		TechInfo:   rep.TechInfo,
	}
	for _, f := range rep.Frames {
		payload.Trace = append(payload.Trace, jsonFrame{File: f.File, Line: f.Line, Function: f.Function})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// TextRenderer renders a plain-text page with the source of the error frame.
type TextRenderer struct {
	// AllFrames includes source context for every frame, not only the
	// error location
	AllFrames bool
}

// ContentType implements Renderer.
func (TextRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render implements Renderer.
func (t TextRenderer) Render(w io.Writer, rep *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", rep.Heading())
	fmt.Fprintf(&b, "%s\n", rep.Message)

	if len(rep.Chain) > 1 {
		b.WriteString("\nCaused by:\n")
		for _, e := range rep.Chain[1:] {
			fmt.Fprintf(&b, "  %s: %s\n", e.Class, e.Message)
		}
	}

	b.WriteString("\nStack Trace:\n")
	for _, f := range rep.Frames {
		marker := " "
		if f.Open {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %s\n      %s:%d\n", marker, f.Function, f.File, f.Line)
		if f.Open || t.AllFrames {
			writeCode(&b, f.Code)
		}
	}

	b.WriteString("\nEnvironment:\n")
	for _, kv := range [][2]string{
		{"Go Version", rep.TechInfo.GoVersion},
		{"OpenCart Version", rep.TechInfo.OpenCartVersion},
		{"Error Time", rep.TechInfo.ErrorTime},
		{"Memory", rep.TechInfo.Memory},
		{"Request Method", rep.TechInfo.RequestMethod},
		{"Request URI", rep.TechInfo.RequestURI},
		{"Server Software", rep.TechInfo.ServerSoftware},
	} {
		fmt.Fprintf(&b, "  %-17s %s\n", kv[0]+":", kv[1])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCode(b *strings.Builder, code []CodeLine) {
	width := 1
	if len(code) > 0 {
		width = len(fmt.Sprint(code[len(code)-1].Number))
	}
	for _, line := range code {
		marker := " "
		if line.IsError {
			marker = ">"
		}
		fmt.Fprintf(b, "      %s %*d | %s\n", marker, width, line.Number, line.Text)
	}
}
