package qdimacs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "qbfex/internal/errors"
)

func TestParsePlainCNF(t *testing.T) {
	source := `c a comment
p cnf 3 2
1 -2 0
2 3 0`

	f, warnings, err := ParseSource("test.cnf", source)
	require.NoError(t, err)
	assert.Empty(t, warnings, "plain CNF has no QBF warnings")

	want := &Formula{
		NumVars:    3,
		NumClauses: 2,
		Clauses:    [][]int{{1, -2}, {2, 3}},
		FreeVars:   []int{1, 2, 3},
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("formula mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, f.IsQBF())
}

func TestParseQBF(t *testing.T) {
	source := `p cnf 2 2
a 1 0
e 2 0
1 2 0
-1 2 0`

	f, warnings, err := ParseSource("test.qdimacs", source)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, f.Scopes, 2)
	assert.Equal(t, Universal, f.Scopes[0].Quant)
	assert.Equal(t, []int{1}, f.Scopes[0].Vars)
	assert.Equal(t, Existential, f.Scopes[1].Quant)
	assert.True(t, f.IsQBF())
	assert.True(t, f.HasUniversals())
}

func TestParseEmptyClause(t *testing.T) {
	source := `p cnf 1 1
0`

	f, _, err := ParseSource("test.cnf", source)
	require.NoError(t, err)
	require.Len(t, f.Clauses, 1)
	assert.Empty(t, f.Clauses[0])
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	source := `c header
p cnf 2 1

c between

1 -2 0
c trailing`

	f, _, err := ParseSource("test.cnf", source)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, -2}}, f.Clauses)
}

func TestParseFreeVariableWarning(t *testing.T) {
	source := `p cnf 2 1
a 1 0
1 2 0`

	f, warnings, err := ParseSource("test.qdimacs", source)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, f.FreeVars)
	require.Len(t, warnings, 1)
	assert.Equal(t, ierrors.WarningFreeVariables, warnings[0].Code)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{"missing preamble", "1 2 0", ierrors.ErrorSyntax},
		{"unterminated clause", "p cnf 2 1\n1 2", ierrors.ErrorUnterminatedLine},
		{"literal out of bounds", "p cnf 2 1\n1 -3 0", ierrors.ErrorLiteralOutOfBounds},
		{"scope var out of bounds", "p cnf 2 1\ne 5 0\n1 2 0", ierrors.ErrorLiteralOutOfBounds},
		{"quantified twice", "p cnf 2 1\ne 1 0\na 1 0\n1 2 0", ierrors.ErrorQuantifiedTwice},
		{"quantified negatively", "p cnf 2 1\ne -1 0\n1 2 0", ierrors.ErrorQuantifiedNegatively},
		{"too many clauses", "p cnf 2 1\n1 0\n2 0", ierrors.ErrorTooManyClauses},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseSource("test.qdimacs", tc.source)
			require.Error(t, err)
			ie, ok := err.(*ierrors.InputError)
			require.True(t, ok, "expected an InputError, got %T: %v", err, err)
			assert.Equal(t, tc.code, ie.Code)
		})
	}
}

func TestParseFileGzip(t *testing.T) {
	source := `p cnf 2 2
1 2 0
-1 -2 0`

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(source))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "input.cnf.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	f, _, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, f.NumVars)
	assert.Equal(t, [][]int{{1, 2}, {-1, -2}}, f.Clauses)
}

func TestParseFileMissing(t *testing.T) {
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "nope.cnf"))
	assert.Error(t, err)
}
