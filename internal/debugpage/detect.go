package debugpage

import (
	"net/http"
	"strings"
)

// Response types returned by DetectResponseType.
const (
	ResponseJSON = "json"
	ResponseHTML = "html"
)

// DetectResponseType decides whether the client expects JSON or a page.
//
// JSON wins for XMLHttpRequest calls, JSON request bodies, and Accept headers
// that list application/json without text/html or ahead of it.
func DetectResponseType(r *http.Request) string {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return ResponseJSON
	}

	if strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ResponseJSON
	}

	accept := strings.ToLower(r.Header.Get("Accept"))
	if accept == "" {
		return ResponseHTML
	}

	jsonPos := strings.Index(accept, "application/json")
	htmlPos := strings.Index(accept, "text/html")
	switch {
	case jsonPos >= 0 && htmlPos < 0:
		return ResponseJSON
	case jsonPos >= 0 && jsonPos < htmlPos:
		return ResponseJSON
	}
	return ResponseHTML
}
