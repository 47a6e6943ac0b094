package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"zamuza/internal/ast"
)

// Reporter renders diagnostics against a source file in the style of
// rustc: a coloured header, a file locus, a gutter-bar excerpt with a
// marker line, then notes and help text.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter for one source file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders a single diagnostic.
func (r *Reporter) Format(err CompilerError) string {
	var sb strings.Builder

	levelColor := levelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	// Header: error[E0001]: message
	if err.Code != "" {
		fmt.Fprintf(&sb, "%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message)
	} else {
		fmt.Fprintf(&sb, "%s: %s\n", levelColor(string(err.Level)), err.Message)
	}

	width := lineNumberWidth(err.Position.Line)
	if err.Secondary != nil && err.Secondary.Position.Line > err.Position.Line {
		width = lineNumberWidth(err.Secondary.Position.Line)
	}
	indent := strings.Repeat(" ", width)

	// Locus: --> filename:line:column
	fmt.Fprintf(&sb, "%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, err.Position.Line, err.Position.Column)
	fmt.Fprintf(&sb, "%s %s\n", indent, dim("│"))

	r.writeSpan(&sb, width, err.Position, err.Length, err.Label, err.Level, bold, dim)

	if err.Secondary != nil {
		fmt.Fprintf(&sb, "%s %s\n", indent, dim("│"))
		r.writeSpan(&sb, width, err.Secondary.Position, err.Secondary.Length, err.Secondary.Message, Note, bold, dim)
	}

	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		fmt.Fprintf(&sb, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}

	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&sb, "%s %s %s %s\n", indent, dim("│"), helpColor("help:"), err.HelpText)
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatAll renders a batch of diagnostics.
func (r *Reporter) FormatAll(errs []CompilerError) string {
	var sb strings.Builder
	for _, err := range errs {
		sb.WriteString(r.Format(err))
	}
	return sb.String()
}

// writeSpan prints one source line with its marker underneath.
func (r *Reporter) writeSpan(sb *strings.Builder, width int, pos ast.Position, length int, label string, level ErrorLevel, bold, dim func(...interface{}) string) {
	if pos.Line <= 0 || pos.Line > len(r.lines) {
		return
	}

	lineContent := r.lines[pos.Line-1]
	fmt.Fprintf(sb, "%s %s %s\n", bold(fmt.Sprintf("%*d", width, pos.Line)), dim("│"), lineContent)

	marker := makeMarker(pos.Column, length, level)
	if label != "" {
		marker += " " + levelColor(level)(label)
	}
	fmt.Fprintf(sb, "%s %s %s\n", strings.Repeat(" ", width), dim("│"), marker)
}

func levelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func makeMarker(column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}
	if column < 1 {
		column = 1
	}

	markerChar := "^"
	if level == Note {
		markerChar = "-"
	}

	spaces := strings.Repeat(" ", column-1)
	return spaces + levelColor(level)(strings.Repeat(markerChar, length))
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}
