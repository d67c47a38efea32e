package errors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	// keep assertions free of ANSI escapes
	color.NoColor = true
}

func TestFormatWithCode(t *testing.T) {
	source := "p cnf 2 1\ne 1 2 0\n1 -3 0"
	r := NewReporter("test.qdimacs", source)

	out := r.Format(&InputError{
		Level:    Error,
		Code:     ErrorLiteralOutOfBounds,
		Message:  "literal -3 exceeds declared maximum 2",
		Position: Position{Line: 3, Column: 3},
		Length:   2,
	})

	assert.Contains(t, out, "error[Q0102]: literal -3 exceeds declared maximum 2")
	assert.Contains(t, out, "test.qdimacs:3:3")
	assert.Contains(t, out, "1 -3 0")
	assert.Contains(t, out, "^^")
}

func TestFormatWarningWithNotes(t *testing.T) {
	source := "p cnf 2 1\na 1 0\n1 2 0"
	r := NewReporter("in.qdimacs", source)

	out := r.Format(&InputError{
		Level:    Warning,
		Code:     WarningFreeVariables,
		Message:  "variable 2 is free",
		Position: Position{Line: 3, Column: 3},
		Notes:    []string{"free variables are treated as outermost existential"},
	})

	assert.Contains(t, out, "warning[W0101]")
	assert.Contains(t, out, "note:")
	assert.Contains(t, out, "outermost existential")
}

func TestInputErrorImplementsError(t *testing.T) {
	var err error = &InputError{
		Level:    Error,
		Code:     ErrorMalformedPreamble,
		Message:  "missing preamble",
		Position: Position{Line: 1, Column: 1},
	}
	assert.True(t, strings.Contains(err.Error(), "Q0101"))
}

func TestGetErrorDescription(t *testing.T) {
	assert.NotEqual(t, "Unknown error code", GetErrorDescription(ErrorQuantifiedTwice))
	assert.Equal(t, "Unknown error code", GetErrorDescription("Q9999"))
}
