// Package lint holds helpers shared by line-oriented checks.
package lint

import (
	"regexp"
	"strings"
)

// noqaPattern matches "# noqa" optionally followed by ": CODE[, CODE...]".
var noqaPattern = regexp.MustCompile(`(?i)#\s*noqa(?::\s*([A-Z]+[0-9]+(?:[\s,]+[A-Z]+[0-9]+)*))?`)

// IgnoreHandler answers per-line suppression queries for a single file.
type IgnoreHandler struct {
	// line number (1-based) -> suppressed codes; nil set means every code
	lines map[int]map[string]bool
}

// NewIgnoreHandler scans lines for noqa comments.
func NewIgnoreHandler(lines []string) *IgnoreHandler {
	h := &IgnoreHandler{lines: make(map[int]map[string]bool)}
	for i, line := range lines {
		if !strings.Contains(line, "#") {
			continue
		}
		m := noqaPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[1] == "" {
			h.lines[i+1] = nil
			continue
		}
		codes := make(map[string]bool)
		for _, code := range strings.FieldsFunc(m[1], func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			codes[strings.ToUpper(code)] = true
		}
		h.lines[i+1] = codes
	}
	return h
}

// FromSource splits source into lines and builds a handler.
func FromSource(source []byte) *IgnoreHandler {
	return NewIgnoreHandler(strings.Split(string(source), "\n"))
}

// ShouldIgnore reports whether code is suppressed on the given 1-based line.
func (h *IgnoreHandler) ShouldIgnore(line int, code string) bool {
	if h == nil {
		return false
	}
	codes, ok := h.lines[line]
	if !ok {
		return false
	}
	return codes == nil || codes[strings.ToUpper(code)]
}

