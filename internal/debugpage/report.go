package debugpage

import (
	"fmt"
	"net/http"
	"time"
)

// Report is everything the error page shows about one failure.
type Report struct {
	// Class is the Go type of the outermost error
	Class string `json:"class"`

	Message string `json:"message"`

	// File and Line locate the failure in user code
	File string `json:"file"`
	Line int    `json:"line"`

	// Chain is the error followed by everything it wraps
	Chain []ErrorInfo `json:"chain"`

	Frames []Frame `json:"frames"`

	TechInfo TechInfo `json:"techInfo"`
}

// Heading is the one-line title of the page.
func (r *Report) Heading() string {
	return fmt.Sprintf("%s in %s on line %d", r.Class, r.File, r.Line)
}

// ErrorInfo is one link of the error chain.
type ErrorInfo struct {
	Class   string `json:"class"`
	Message string `json:"message"`
}

// Frame is one stack frame with the source around it.
type Frame struct {
	// ID is "frame-N", used as an anchor by renderers
	ID string `json:"id"`

	// File is relative to the capture root when it lies below it
	File string `json:"file"`

	// FullPath is the absolute source path
	FullPath string `json:"fullPath"`

	Line     int    `json:"line"`
	Function string `json:"function"`

	// Open marks the frame shown expanded, the error location
	Open bool `json:"open"`

	// Vendor marks runtime, standard library and module cache frames
	Vendor bool `json:"vendor"`

	Code []CodeLine `json:"code"`
}

// CodeLine is one line of source context.
type CodeLine struct {
	Number    int    `json:"number"`
	Text      string `json:"text"`
	IsError   bool   `json:"isError"`
	EditorURL string `json:"editorUrl"`
}

// TechInfo describes the environment the failure happened in.
type TechInfo struct {
	GoVersion       string `json:"goVersion"`
	OpenCartVersion string `json:"openCartVersion"`
	ErrorTime       string `json:"errorTime"`
	Memory          string `json:"memory"`
	RequestMethod   string `json:"requestMethod"`
	RequestURI      string `json:"requestUri"`
	ServerSoftware  string `json:"serverSoftware"`
}

const unknown = "Unknown"

const timeLayout = "2006-01-02 15:04:05"

// WithRequest fills the request fields of the tech info.
func (r *Report) WithRequest(req *http.Request) *Report {
	if req == nil {
		return r
	}
	r.TechInfo.RequestMethod = req.Method
	r.TechInfo.RequestURI = req.RequestURI
	if r.TechInfo.RequestURI == "" && req.URL != nil {
		r.TechInfo.RequestURI = req.URL.RequestURI()
	}
	return r
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}
