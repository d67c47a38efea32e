package nnf

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qbfex/internal/sat"
	"qbfex/qdimacs"
)

func emit(t *testing.T, source, generator string, positive bool) *sat.Problem {
	t.Helper()
	e := buildEngine(t, source, DefaultOptions())
	require.NotNil(t, e.Root, "formula decided during construction")
	return e.EmitCNF(generator, positive)
}

func TestTseitinEquisatisfiable(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   sat.Status
	}{
		{"satisfiable", "p cnf 2 2\n1 2 0\n-1 -2 0", sat.Sat},
		{"contradiction", "p cnf 2 3\n1 2 0\n-1 2 0\n-2 0", sat.Unsat},
		{"single literal", "p cnf 1 1\n1 0", sat.Sat},
	}
	for _, tc := range tests {
		for _, gen := range []string{GeneratorTseitin, GeneratorTseitinRevised} {
			t.Run(tc.name+"/"+gen, func(t *testing.T) {
				p := emit(t, tc.source, gen, true)
				assert.Equal(t, tc.want, sat.New(p).Solve())
			})
		}
	}
}

func TestNegativePolarityChecksValidity(t *testing.T) {
	// (x or y) is not valid: the negation must be satisfiable
	p := emit(t, "p cnf 2 1\n1 2 0", GeneratorTseitin, false)
	assert.Equal(t, sat.Sat, sat.New(p).Solve())
}

func TestRevisedTseitinFusesFlatClauses(t *testing.T) {
	source := "p cnf 3 2\n1 2 0\n-2 3 0"
	plain := emit(t, source, GeneratorTseitin, true)
	revised := emit(t, source, GeneratorTseitinRevised, true)

	// both clauses are flat, so the revised form needs no auxiliaries
	assert.Equal(t, 2, len(revised.Clauses))
	assert.Less(t, len(revised.Clauses), len(plain.Clauses))
	assert.Equal(t, sat.New(plain).Solve(), sat.New(revised).Solve())
}

func TestEmittersAgreeOnRandomFormulas(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for round := 0; round < 100; round++ {
		nVars := 1 + rng.Intn(5)
		nClauses := 1 + rng.Intn(8)
		var b strings.Builder
		fmt.Fprintf(&b, "p cnf %d %d\n", nVars, nClauses)
		for i := 0; i < nClauses; i++ {
			width := 1 + rng.Intn(3)
			for k := 0; k < width; k++ {
				lit := 1 + rng.Intn(nVars)
				if rng.Intn(2) == 0 {
					lit = -lit
				}
				fmt.Fprintf(&b, "%d ", lit)
			}
			b.WriteString("0\n")
		}
		src := b.String()

		f, _, err := qdimacs.ParseSource("rand", src)
		require.NoError(t, err)
		want := sat.Unsat
		if qbfEval(f) {
			want = sat.Sat
		}

		e := NewEngine(f, DefaultOptions())
		if e.Root == nil {
			continue // decided during construction
		}
		for _, gen := range []string{GeneratorTseitin, GeneratorTseitinRevised} {
			p := e.EmitCNF(gen, true)
			require.Equal(t, want, sat.New(p).Solve(), "generator %s on:\n%s", gen, src)
		}
	}
}

func TestWriteDIMACSRoundTrips(t *testing.T) {
	p := emit(t, "p cnf 2 2\n1 2 0\n-1 -2 0", GeneratorTseitin, true)

	var buf bytes.Buffer
	require.NoError(t, WriteDIMACS(&buf, p))

	parsed, _, err := qdimacs.ParseSource("dump", buf.String())
	require.NoError(t, err)
	assert.Equal(t, p.NumVars, parsed.NumVars)
	assert.Len(t, parsed.Clauses, len(p.Clauses))
}
