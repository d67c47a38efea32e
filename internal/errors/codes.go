package errors

// Error codes for the QDIMACS front end.
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// Q0100-Q0199: input format errors
// W0100-W0199: input warnings

const (
	// Q0101: malformed preamble (negative variable or clause count); an
	// input without a preamble is reported as a syntax error (Q0107)
	ErrorMalformedPreamble = "Q0101"

	// Q0102: literal or scope variable out of the declared bounds
	ErrorLiteralOutOfBounds = "Q0102"

	// Q0103: unclosed scope or clause (missing terminating zero)
	ErrorUnterminatedLine = "Q0103"

	// Q0104: variable quantified in more than one scope
	ErrorQuantifiedTwice = "Q0104"

	// Q0105: negative variable in a scope line
	ErrorQuantifiedNegatively = "Q0105"

	// Q0106: more clauses than the preamble declares
	ErrorTooManyClauses = "Q0106"

	// Q0107: general syntax error (unexpected token)
	ErrorSyntax = "Q0107"

	// W0101: free variables on QBF input (treated as outermost existential)
	WarningFreeVariables = "W0101"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	descriptions := map[string]string{
		ErrorMalformedPreamble:    "The input must start with a 'p cnf <vars> <clauses>' preamble",
		ErrorLiteralOutOfBounds:   "Literals must reference variables between 1 and the declared maximum",
		ErrorUnterminatedLine:     "Scope and clause lines must be terminated by a 0",
		ErrorQuantifiedTwice:      "A variable may appear in at most one quantifier scope",
		ErrorQuantifiedNegatively: "Quantifier scopes list plain variables, not literals",
		ErrorTooManyClauses:       "The clause section exceeds the count declared in the preamble",
		ErrorSyntax:               "The input does not conform to the QDIMACS grammar",
		WarningFreeVariables:      "Unquantified variables are treated as outermost existential",
	}

	if desc, ok := descriptions[code]; ok {
		return desc
	}
	return "Unknown error code"
}
