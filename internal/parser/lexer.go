package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ZamuzaLexer tokenises net-language source. Order matters: polarised
// names must win over bare punctuation, and the two-character operators
// must win over "<" and "=".
var ZamuzaLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
	{Name: "LineComment", Pattern: `//[^\n]*`},

	// Polarised names: "#x" is an input, "@x" an output
	{Name: "NameIn", Pattern: `#[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "NameOut", Pattern: `@[a-zA-Z_][a-zA-Z0-9_]*`},

	// Agent symbols and net names are letter-leading
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_]*`},

	// "_" stands for an empty equation list
	{Name: "Wildcard", Pattern: `_`},

	// Interaction, arrows and interface brackets
	{Name: "Operator", Pattern: `><|<>|=>|<\||\|>|<-|->|=`},

	// Punctuation
	{Name: "Punct", Pattern: `[(),{}]`},

	// Whitespace
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
