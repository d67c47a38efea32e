package qdimacs

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// QDimacsLexer tokenizes the QDIMACS format. Rules are tried in order,
// but no two patterns can match at the same position: each token kind
// starts with its own character ('p', 'e', 'a', 'c', '-' or 1-9, '0',
// whitespace), and NonZero consumes a whole multi-digit number, zeros
// included.
var QDimacsLexer = lexer.MustSimple([]lexer.SimpleRule{
	{"PCNF", `p[ \t]+cnf`},
	{"Exists", `e\b`},
	{"Forall", `a\b`},
	{"Comment", `c[^\n]*`},
	{"NonZero", `-?[1-9][0-9]*`},
	{"Zero", `0`},
	{"Whitespace", `[ \t\r\n]+`},
})
