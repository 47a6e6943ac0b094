package errors

import (
	"zamuza/internal/ast"
)

// ErrorLevel represents the severity of a diagnostic.
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// CompilerError is a structured diagnostic with source location, optional
// secondary span, notes and help text.
type CompilerError struct {
	Level     ErrorLevel
	Code      string       // Error code like E0001
	Message   string       // Primary error message
	Position  ast.Position // Location in source
	Length    int          // Length of the problematic region
	Label     string       // Marker label under the primary span
	Secondary *Span        // Optional second span (e.g. the other rule of an overlap)
	Notes     []string     // Additional context notes
	HelpText  string       // Help text for the error
}

// Span is a labelled secondary source region attached to a diagnostic.
type Span struct {
	Message  string
	Position ast.Position
	Length   int
}

// Builder provides a fluent interface for assembling diagnostics.
type Builder struct {
	err CompilerError
}

// NewError starts a new error-level diagnostic.
func NewError(code, message string, pos ast.Position) *Builder {
	return &Builder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// WithLength sets the length of the primary span.
func (b *Builder) WithLength(length int) *Builder {
	if length > 0 {
		b.err.Length = length
	}
	return b
}

// WithSpan sets the primary span from a node's start and end positions.
func (b *Builder) WithSpan(pos, end ast.Position) *Builder {
	b.err.Position = pos
	return b.WithLength(end.Offset - pos.Offset)
}

// WithLabel sets the marker label rendered under the primary span.
func (b *Builder) WithLabel(label string) *Builder {
	b.err.Label = label
	return b
}

// WithSecondary attaches a labelled secondary span.
func (b *Builder) WithSecondary(message string, pos, end ast.Position) *Builder {
	b.err.Secondary = &Span{
		Message:  message,
		Position: pos,
		Length:   end.Offset - pos.Offset,
	}
	return b
}

// WithNote adds a context note.
func (b *Builder) WithNote(note string) *Builder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp sets the help text.
func (b *Builder) WithHelp(help string) *Builder {
	b.err.HelpText = help
	return b
}

// Build returns the completed diagnostic.
func (b *Builder) Build() CompilerError {
	return b.err
}
