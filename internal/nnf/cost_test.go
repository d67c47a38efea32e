package nnf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refresh(e *Engine, v *Var) {
	e.computeVarLCA(v)
	v.LCAUpdateMark = false
	v.Costs.Inc = e.incScore(v)
	v.Costs.Dec = e.decScore(v)
	v.Costs.Score = v.Costs.Inc - v.Costs.Dec
}

func TestIncScoreExistentialAndRoot(t *testing.T) {
	// var 1 occurs in every clause: full coverage at the AND root
	e := buildEngine(t, "p cnf 3 3\n1 2 0\n1 3 0\n-1 2 3 0", DefaultOptions())
	v := e.Vars[0]
	refresh(e, v)

	require.Equal(t, e.Root, v.Costs.LCA.LCA)
	require.Len(t, v.Costs.LCA.Children, 3)
	// whole tree is copied, plus one split-OR hosted above the root
	assert.Equal(t, e.Root.Size+1, v.Costs.Inc)
}

func TestIncScoreExistentialAndPartial(t *testing.T) {
	// var 1 occurs in two of three clauses
	e := buildEngine(t, "p cnf 3 3\n1 2 0\n1 3 0\n2 3 0", DefaultOptions())
	v := e.Vars[0]
	refresh(e, v)

	require.Len(t, v.Costs.LCA.Children, 2)
	sum := 0
	for _, c := range v.Costs.LCA.Children {
		sum += c.Size
	}
	assert.Equal(t, sum+3, v.Costs.Inc, "split-OR plus two fresh ANDs")
}

func TestIncScoreUniversalAndFull(t *testing.T) {
	e := buildEngine(t, "p cnf 3 2\na 1 0\ne 2 3 0\n1 2 0\n-1 3 0", DefaultOptions())
	v := e.Vars[0]
	refresh(e, v)

	require.Equal(t, e.Root, v.Costs.LCA.LCA)
	sum := 0
	for _, c := range v.Costs.LCA.Children {
		sum += c.Size
	}
	// universal at an AND copies only the relevant children
	assert.Equal(t, sum, v.Costs.Inc)
}

func TestIncScoreContainedLiteralIsFree(t *testing.T) {
	// var 1 occurs as a unit directly under the root and deeper
	e := buildEngine(t, "p cnf 2 2\n1 0\n-1 2 0", DefaultOptions())
	v := e.Vars[0]
	refresh(e, v)

	assert.Zero(t, v.Costs.Inc, "a literal LCA-child resolves preemptively")
}

func TestDecScoreCountsDeletedRegions(t *testing.T) {
	e := buildEngine(t, "p cnf 2 2\n1 2 0\n-1 2 0", DefaultOptions())
	v1 := e.Vars[0]
	refresh(e, v1)

	// true deletes the first clause (3 nodes) and the literal in the
	// second (1); false the mirror image
	assert.Equal(t, 8, v1.Costs.Dec)

	v2 := e.Vars[1]
	refresh(e, v2)
	// true deletes both clauses, false both literals
	assert.Equal(t, 8, v2.Costs.Dec)
}

func TestDecScoreNoDoubleCountingNestedRegions(t *testing.T) {
	// drive an expansion first so occurrences sit at different depths
	opts := DefaultOptions()
	opts.FullExpansion = true
	e := buildEngine(t, "p cnf 4 4\ne 1 2 3 4 0\n1 2 0\n-1 3 0\n2 3 4 0\n-2 -4 0", opts)

	for i := 0; i < 2; i++ {
		if _, done := stepOnce(e); done {
			break
		}
	}
	if e.Root == nil {
		t.Skip("formula collapsed before depth appeared")
	}
	for _, v := range e.Vars {
		if v.Eliminated || v.OccCnt() == 0 {
			continue
		}
		e.computeVarLCA(v)
		v.LCAUpdateMark = false
		dec := e.decScore(v)
		assert.LessOrEqual(t, dec, 2*e.Root.Size,
			"dec score of var %d cannot exceed both halves of the tree", v.ID)
		assert.GreaterOrEqual(t, dec, 0)
	}
}

// Property: the tree after a structural expansion is bounded by
// size + inc - dec. Preemptive resolutions (inc == 0) assign a single
// polarity and are excluded, as are lifted universals whose inc was
// computed before region unification.
func TestScoreBoundsExpansionGrowth(t *testing.T) {
	sources := []string{
		"p cnf 4 4\ne 1 2 3 4 0\n1 2 0\n-1 3 0\n2 3 4 0\n-2 -4 0",
		"p cnf 5 5\ne 1 2 0\na 3 0\ne 4 5 0\n1 3 4 0\n-1 -3 5 0\n2 -4 0\n-2 4 -5 0\n3 5 0",
		"p cnf 3 3\na 1 2 0\ne 3 0\n1 2 3 0\n-1 3 0\n-2 3 0",
	}
	for _, src := range sources {
		opts := DefaultOptions()
		opts.FullExpansion = true
		opts.NoOptimizations = true
		e := buildEngine(t, src, opts)

		for step := 0; step < 100; step++ {
			e.simplifyPass()
			if e.Result != ResultUnknown || e.Root == nil {
				break
			}
			e.mergeScopes()
			e.refreshScores()
			v, _ := e.selectVariable()
			if v == nil {
				break
			}
			inc, dec := v.Costs.Inc, v.Costs.Dec
			before := e.TreeSize()
			lifted := v.Scope.Kind == Universal && e.innermostScope() != v.Scope
			e.expandVar(v)
			if inc > 0 && !lifted {
				require.LessOrEqual(t, e.TreeSize(), before+inc-dec,
					"growth bound for var %d in %s", v.ID, src)
			}
		}
	}
}

func TestRefreshScoresRepairsHeapOrder(t *testing.T) {
	e := buildEngine(t, "p cnf 3 3\n1 2 0\n1 3 0\n2 3 0", DefaultOptions())
	e.refreshScores()

	s := e.Scopes[0]
	require.Positive(t, s.PQ.Len())
	min := s.PQ.Min()
	for i := 0; i < s.PQ.Len(); i++ {
		assert.False(t, varLess(s.PQ.At(i), min), "heap min is not minimal")
	}
}
