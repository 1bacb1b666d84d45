package mermaid

import (
	"fmt"
	"strings"

	"archscope/internal/errors"
)

var knownHeaders = []string{
	"classDiagram",
	"stateDiagram-v2",
	"stateDiagram",
	"graph LR",
	"graph TD",
	"flowchart LR",
	"flowchart TD",
	"erDiagram",
}

// Format normalizes hand-edited diagram markup: consistent four-space
// indentation, class-style assignments (:::) gathered at the end, and
// blank-line noise removed. It fails when the markup has no
// recognizable diagram header.
func Format(markup string) (string, error) {
	lines := strings.Split(markup, "\n")

	var out []string
	var assignments []string
	headerSeen := false
	depth := 0

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// Init directives and comments stay at column zero.
		if strings.HasPrefix(line, "%%") {
			out = append(out, line)
			continue
		}

		if !headerSeen && isHeader(line) {
			headerSeen = true
			out = append(out, line)
			continue
		}

		if strings.Contains(line, ":::") {
			assignments = append(assignments, indent(1)+line)
			continue
		}

		switch {
		case strings.HasSuffix(line, "{"):
			out = append(out, indent(1+depth)+line)
			depth++
		case line == "}":
			if depth > 0 {
				depth--
			}
			out = append(out, indent(1+depth)+line)
		default:
			out = append(out, indent(1+depth)+line)
		}
	}

	if !headerSeen {
		return "", errors.New(errors.RenderMarkup,
			fmt.Sprintf("no diagram header found (expected one of %s)", strings.Join(knownHeaders, ", ")), nil)
	}

	out = append(out, assignments...)
	return strings.Join(out, "\n") + "\n", nil
}

func isHeader(line string) bool {
	for _, h := range knownHeaders {
		if line == h || strings.HasPrefix(line, h+" ") {
			return true
		}
	}
	return false
}

func indent(level int) string {
	return strings.Repeat("    ", level)
}
