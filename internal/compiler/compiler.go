package compiler

import (
	stderrors "errors"

	"github.com/alecthomas/participle/v2"

	"zamuza/internal/ast"
	"zamuza/internal/errors"
	"zamuza/internal/ir"
	"zamuza/internal/parser"
	"zamuza/internal/semantic"
)

// Source is one input to a compilation.
type Source struct {
	Filename string
	Text     string
}

// Compile runs the front half of the pipeline over every source: parse,
// check, lower, optimise. All sources feed one agent interner, so agents
// intern across files by symbol name.
//
// A non-empty diagnostics slice means compilation failed; the returned
// program is nil in that case. The error return is reserved for internal
// failures that are not source diagnostics.
func Compile(sources []Source) (*ir.Program, []errors.CompilerError, error) {
	var diags []errors.CompilerError
	modules := make([]*ast.Module, 0, len(sources))

	for _, source := range sources {
		module, err := parser.ParseSource(source.Filename, source.Text)
		if err != nil {
			diags = append(diags, syntaxError(err))
			continue
		}
		modules = append(modules, module)
	}

	// The semantic laws span the whole compilation: rule overlap and the
	// entry point are checked across files, not per file. Nothing is
	// checked while parse errors are pending.
	if len(diags) == 0 {
		diags = semantic.CheckModules(modules)
	}
	if len(diags) > 0 {
		return nil, diags, nil
	}

	builder := ir.NewBuilder()
	for _, module := range modules {
		if err := builder.Module(module); err != nil {
			if diag, ok := builderDiagnostic(err); ok {
				return nil, []errors.CompilerError{diag}, nil
			}
			return nil, nil, err
		}
	}

	program, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}

	ir.Optimize(program)
	return program, nil, nil
}

// syntaxError converts a parse failure into a diagnostic, keeping the
// parser's position when it is a participle error.
func syntaxError(err error) errors.CompilerError {
	var perr participle.Error
	if stderrors.As(err, &perr) {
		return errors.NewError(errors.ErrorSyntax, perr.Message(), perr.Position()).
			WithLabel("syntax error").
			Build()
	}
	return errors.NewError(errors.ErrorSyntax, err.Error(), ast.Position{}).Build()
}

// builderDiagnostic maps the builder's typed errors onto diagnostics.
func builderDiagnostic(err error) (errors.CompilerError, bool) {
	var arity *ir.ArityConflictError
	if stderrors.As(err, &arity) {
		return errors.NewError(errors.ErrorAgentArityConflict, arity.Error(), arity.Pos).
			WithSpan(arity.Pos, arity.End).
			WithLabel("conflicting arity").
			WithNote("an agent symbol has one global arity across the whole compilation").
			Build(), true
	}

	var dup *ir.DuplicateMainError
	if stderrors.As(err, &dup) {
		return errors.NewError(errors.ErrorDuplicateMain, "entry point already exists", dup.Pos).
			WithSpan(dup.Pos, dup.End).
			WithLabel("second net named Main").
			Build(), true
	}

	return errors.CompilerError{}, false
}
