package qdimacs

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is the raw parse tree of a QDIMACS input: preamble, then scope
// lines, then clause lines. Comments and whitespace are elided by the
// lexer configuration.
type File struct {
	Pos lexer.Position

	NumVars    int           `PCNF @(NonZero | Zero)`
	NumClauses int           `@(NonZero | Zero)`
	Scopes     []*ScopeDecl  `@@*`
	Clauses    []*ClauseDecl `@@*`
}

// ScopeDecl is a quantifier line: 'e v1 v2 ... 0' or 'a v1 v2 ... 0'.
type ScopeDecl struct {
	Pos lexer.Position

	Forall bool  `( @Forall`
	Exists bool  `| @Exists )`
	Vars   []int `@NonZero* Zero`
}

// ClauseDecl is a clause line: 'l1 l2 ... 0'. An empty clause is a bare 0.
type ClauseDecl struct {
	Pos lexer.Position

	Lits []int `@NonZero* Zero`
}
