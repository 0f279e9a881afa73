// Package errors formats diagnostics produced by every stage of the
// pipeline (lexing, parsing, resolving, running) in a single shared
// layout, the way the teacher's internal/errors package formats
// CompilerError values.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/jvcmarcenes/wisp/internal/token"
)

// Stage identifies which pipeline phase raised a Diagnostic.
type Stage string

const (
	Lex     Stage = "lex"
	Parse   Stage = "parse"
	Resolve Stage = "resolve"
	Run     Stage = "run"
)

// Diagnostic is a single reported error: a stage, a position, a message,
// and enough source context to render a caret under the offending column.
type Diagnostic struct {
	Stage   Stage
	Pos     token.Position
	Message string
	Source  string
	File    string
}

// New builds a Diagnostic for the given stage.
func New(stage Stage, pos token.Position, message, source, file string) *Diagnostic {
	return &Diagnostic{Stage: stage, Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface with uncolored output.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

func (d *Diagnostic) sourceLine() string {
	if d.Source == "" {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if d.Pos.Line < 1 || d.Pos.Line > len(lines) {
		return ""
	}
	return lines[d.Pos.Line-1]
}

// Format renders the diagnostic in the canonical layout:
//
//	<stage> error [<path>:<line>:<col>]: <message>
//	  <line> | <source line>
//	         | ^
func (d *Diagnostic) Format(useColor bool) string {
	var sb strings.Builder

	header := fmt.Sprintf("%s error [%s:%d:%d]: %s", d.Stage, d.File, d.Pos.Line, d.Pos.Col, d.Message)
	if useColor {
		header = color.New(color.FgRed, color.Bold).Sprint(header)
	}
	sb.WriteString(header)
	sb.WriteString("\n")

	line := d.sourceLine()
	if line == "" {
		return sb.String()
	}

	gutter := fmt.Sprintf("  %d | ", d.Pos.Line)
	sb.WriteString(gutter)
	sb.WriteString(line)
	sb.WriteString("\n")

	pad := strings.Repeat(" ", len(fmt.Sprintf("  %d ", d.Pos.Line)))
	caret := "^"
	if useColor {
		caret = color.New(color.FgRed, color.Bold).Sprint(caret)
	}
	sb.WriteString(pad)
	sb.WriteString("| ")
	if d.Pos.Col > 1 {
		sb.WriteString(strings.Repeat(" ", d.Pos.Col-1))
	}
	sb.WriteString(caret)

	return sb.String()
}

// List collects every Diagnostic raised during a single pipeline stage.
// Lexing and parsing both try to keep going after an error so that a
// single run surfaces as many problems as it can; List is how callers
// check that and format the lot.
type List struct {
	Diagnostics []*Diagnostic
}

// Add appends a diagnostic to the list.
func (l *List) Add(d *Diagnostic) {
	l.Diagnostics = append(l.Diagnostics, d)
}

// HasErrors reports whether any diagnostic was recorded.
func (l *List) HasErrors() bool {
	return len(l.Diagnostics) > 0
}

// Error implements the error interface, joining every diagnostic with a
// blank line between them.
func (l *List) Error() string {
	return l.Format(false)
}

// Format renders every diagnostic in the list, separated by blank lines.
func (l *List) Format(useColor bool) string {
	parts := make([]string, len(l.Diagnostics))
	for i, d := range l.Diagnostics {
		parts[i] = d.Format(useColor)
	}
	return strings.Join(parts, "\n\n")
}
