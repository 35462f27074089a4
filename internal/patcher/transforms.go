package patcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cartwryte/sleuth/internal/config"
	"github.com/cartwryte/sleuth/internal/textpatch"
)

// Sentinels embedded in patched files. They are part of the on-disk format
// and must match byte for byte.
const (
	// AutoloadSentinel precedes the namespace registration in vendor.php.
	AutoloadSentinel = "// Cartwryte Sleuth"

	// DevConfigSentinel opens the block injected into config/default.php.
	DevConfigSentinel = "// Development (added by Cartwryte Sleuth)"

	// StartupErrorSentinel marks a startup/error action commented out by hand.
	StartupErrorSentinel = "//'startup/error',"

	// StartupErrorDisabled is the trailing marker on the line sleuth disables.
	StartupErrorDisabled = "// Cartwryte Sleuth disabled"

	// RegistrationLine registers the Cartwryte\Sleuth namespace with
	// OpenCart's autoloader.
	RegistrationLine = `$autoloader->register('Cartwryte\\Sleuth', DIR_STORAGE . 'vendor/cartwryte/sleuth/src/', true);`
)

var (
	handlerCalls = []string{"set_error_handler", "set_exception_handler"}

	startupErrorLine    = regexp.MustCompile(`(?m)^(\s*)'startup/error',`)
	startupErrorPatched = regexp.MustCompile(`(?m)^(\s*)//\s*'startup/error',\s*//\s*Cartwryte Sleuth disabled`)

	devBlockBody = `\n// Development \(added by Cartwryte Sleuth\)\n(?:\$_\['cartwryte_editor_[^\n]*\n)*`
	devBlockTag  = regexp.MustCompile(devBlockBody + `\n\?>`)
	devBlockEOF  = regexp.MustCompile(devBlockBody)
)

// DisableErrorHandlers comments out the set_error_handler and
// set_exception_handler registrations in framework.php.
func DisableErrorHandlers(content string) (string, bool) {
	lines := textpatch.Split(content)
	changed := false
	for _, name := range handlerCalls {
		res := textpatch.CommentOutCall(lines, name)
		lines = res.Lines
		changed = changed || res.Changed
	}
	if !changed {
		return content, false
	}
	return textpatch.Join(lines), true
}

// RestoreErrorHandlers uncomments handler registrations commented out by
// DisableErrorHandlers.
func RestoreErrorHandlers(content string) (string, bool) {
	lines := textpatch.Split(content)
	changed := false
	for _, name := range handlerCalls {
		res := textpatch.UncommentBlock(lines, textpatch.CallStart(name), textpatch.CallTerminator)
		lines = res.Lines
		changed = changed || res.Changed
	}
	if !changed {
		return content, false
	}
	return textpatch.Join(lines), true
}

// DevConfigBlock renders the settings block injected into default.php.
func DevConfigBlock(editor config.EditorConfig) string {
	var b strings.Builder
	b.WriteString("\n" + DevConfigSentinel + "\n")
	fmt.Fprintf(&b, "$_['cartwryte_editor_enabled']   = %t;\n", editor.Enabled)
	fmt.Fprintf(&b, "$_['cartwryte_editor_default']   = '%s'; // %s\n",
		phpQuote(editor.Default), strings.Join(config.SupportedEditors, ", "))
	fmt.Fprintf(&b, "$_['cartwryte_editor_path_from'] = '%s'; // Docker container path - leave empty for local development\n",
		phpQuote(editor.PathFrom))
	fmt.Fprintf(&b, "$_['cartwryte_editor_path_to']   = '%s'; // Host filesystem path - leave empty for local development\n",
		phpQuote(editor.PathTo))
	return b.String()
}

// InjectDevConfig adds the settings block before the closing "?>" tag, or at
// the end of the file when there is none.
func InjectDevConfig(content string, editor config.EditorConfig) (string, bool) {
	if strings.Contains(content, DevConfigSentinel) {
		return content, false
	}

	block := DevConfigBlock(editor)
	if i := strings.LastIndex(content, "?>"); i >= 0 {
		return content[:i] + block + "\n" + content[i:], true
	}
	return content + block, true
}

// RemoveDevConfig strips a block added by InjectDevConfig, whatever editor
// values it was rendered with.
func RemoveDevConfig(content string) (string, bool) {
	out := devBlockTag.ReplaceAllString(content, "?>")
	if out == content {
		out = devBlockEOF.ReplaceAllString(content, "")
	}
	return out, out != content
}

// DisableStartupError comments out the 'startup/error' pre-action in
// config/catalog.php or config/admin.php.
func DisableStartupError(content string) (string, bool) {
	if strings.Contains(content, StartupErrorSentinel) || startupErrorPatched.MatchString(content) {
		return content, false
	}
	out := startupErrorLine.ReplaceAllString(content, "${1}// 'startup/error', "+StartupErrorDisabled)
	return out, out != content
}

// EnableStartupError reverts DisableStartupError. Lines commented out by
// anything other than sleuth are left alone.
func EnableStartupError(content string) (string, bool) {
	out := startupErrorPatched.ReplaceAllString(content, "${1}'startup/error',")
	return out, out != content
}

// RegisterAutoload appends the namespace registration to vendor.php.
func RegisterAutoload(content string) (string, bool) {
	if strings.Contains(content, AutoloadSentinel) {
		return content, false
	}
	lines := textpatch.Split(content)
	lines = append(lines, "", AutoloadSentinel, RegistrationLine)
	return textpatch.Join(lines), true
}

// UnregisterAutoload removes the sentinel line, the registration call that
// follows it (single or multi-line) and the blank line RegisterAutoload put
// in front. A sentinel without a complete registration after it is removed
// alone, so IsInstalled reports false afterwards.
func UnregisterAutoload(content string) (string, bool) {
	lines := textpatch.Split(content)

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == AutoloadSentinel {
			start = i
			break
		}
	}
	if start < 0 {
		return content, false
	}

	// A sentinel left without its registration is dropped on its own.
	end := start
	if start+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[start+1]), "$autoloader->register(") {
		for i := start + 1; i < len(lines); i++ {
			if strings.Contains(lines[i], ");") {
				end = i
				break
			}
		}
	}

	if start > 0 && strings.TrimSpace(lines[start-1]) == "" {
		start--
	}
	out := append(lines[:start:start], lines[end+1:]...)
	return textpatch.Join(out), true
}

func phpQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
