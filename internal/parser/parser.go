package parser

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"

	"zamuza/internal/ast"
)

var moduleParser = buildParser()

func buildParser() *participle.Parser[ast.Module] {
	// Rules and nets both start with an Ident; they diverge on the second
	// token ("(", "><", "<>" versus "<|"), so a few tokens of lookahead
	// pick the branch.
	p, err := participle.Build[ast.Module](
		participle.Lexer(ZamuzaLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment"),
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build parser: %w", err))
	}

	return p
}

// ParseFile reads and parses a single source file.
func ParseFile(path string) (*ast.Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseSource(path, string(source))
}

// ParseSource parses source text into a normalised module. The returned
// module only contains "><" rule pairs and "=" equations; mirrored source
// forms ("<>", "<-", "->") are rewritten here so downstream passes never
// see them.
func ParseSource(sourceName string, source string) (*ast.Module, error) {
	module, err := moduleParser.ParseString(sourceName, source)
	if err != nil {
		return nil, err
	}

	normalizeModule(module)
	return module, nil
}
