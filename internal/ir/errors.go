package ir

import (
	"fmt"

	"zamuza/internal/ast"
)

// ArityConflictError reports an agent symbol interned twice with different
// arities. Pos points at the later, conflicting use.
type ArityConflictError struct {
	Name  string
	Have  int
	Given int
	Pos   ast.Position
	End   ast.Position
}

func (e *ArityConflictError) Error() string {
	return fmt.Sprintf("agent `%s` has arity %d, but %d is given", e.Name, e.Have, e.Given)
}

// DuplicateMainError reports a second net named Main.
type DuplicateMainError struct {
	Pos ast.Position
	End ast.Position
}

func (e *DuplicateMainError) Error() string {
	return "entry point already exists"
}

// NoEntryPointError reports a build with no Main net. The checker catches
// this first in normal compilation; the builder still guards against it.
type NoEntryPointError struct{}

func (e *NoEntryPointError) Error() string {
	return "entry point not found"
}
