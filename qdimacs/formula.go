package qdimacs

// Quantifier distinguishes the two scope types.
type Quantifier uint8

const (
	Existential Quantifier = iota
	Universal
)

func (q Quantifier) String() string {
	if q == Universal {
		return "a"
	}
	return "e"
}

// Scope is one quantifier block in prefix order (outermost first).
type Scope struct {
	Quant Quantifier
	Vars  []int
}

// Formula is the validated result of parsing a QDIMACS input. Clauses
// hold nonzero literals; variables are 1..NumVars. FreeVars lists the
// variables that occur in clauses but in no scope; they are treated as
// outermost existential by the solver.
type Formula struct {
	NumVars    int
	NumClauses int
	Scopes     []Scope
	Clauses    [][]int
	FreeVars   []int
}

// IsQBF reports whether the input declared any quantifier scope.
func (f *Formula) IsQBF() bool {
	return len(f.Scopes) > 0
}

// HasUniversals reports whether any scope is universal.
func (f *Formula) HasUniversals() bool {
	for _, s := range f.Scopes {
		if s.Quant == Universal {
			return true
		}
	}
	return false
}
