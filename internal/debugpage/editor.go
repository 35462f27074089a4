package debugpage

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cartwryte/sleuth/internal/config"
)

// noLink is the href used when no editor link can be built.
const noLink = "#"

// Editor is an IDE that can be opened through a URL scheme.
type Editor struct {
	Name string `json:"name"`

	// URL holds {file} and {line} placeholders
	URL string `json:"url"`
}

// Editors maps editor keys to their URL templates.
var Editors = map[string]Editor{
	"phpstorm":    {Name: "PhpStorm", URL: "phpstorm://open?file={file}&line={line}"},
	"vscode":      {Name: "Visual Studio Code", URL: "vscode://file/{file}:{line}"},
	"cursor":      {Name: "Cursor", URL: "cursor://file/{file}:{line}"},
	"sublimetext": {Name: "Sublime Text", URL: "subl://open?url=file://{file}&line={line}"},
	"zed":         {Name: "Zed", URL: "zed://file/{file}:{line}"},
	"windsurf":    {Name: "Windsurf", URL: "windsurf://file/{file}:{line}"},
}

// EditorURL builds a link that opens file at line in the configured editor.
// It returns "#" when links are disabled or the editor is unknown.
func EditorURL(cfg config.EditorConfig, file string, line int) string {
	if !cfg.Enabled {
		return noLink
	}
	editor, ok := Editors[cfg.Default]
	if !ok {
		return noLink
	}

	r := strings.NewReplacer(
		"{file}", url.QueryEscape(MapPath(cfg, file)),
		"{line}", strconv.Itoa(line),
	)
	return r.Replace(editor.URL)
}

// MapPath rewrites a container path to its host location. The mapping only
// applies when both ends are configured and path starts with PathFrom.
func MapPath(cfg config.EditorConfig, path string) string {
	if cfg.PathFrom == "" || cfg.PathTo == "" {
		return path
	}
	if rest, ok := strings.CutPrefix(path, cfg.PathFrom); ok {
		return cfg.PathTo + rest
	}
	return path
}
