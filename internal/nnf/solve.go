package nnf

import (
	"qbfex/internal/sat"
)

// Solve runs the elimination loop: simplify, merge scopes, pick the
// cheapest variable of the innermost scope (or a non-innermost universal
// when the trigger fired), expand, and re-establish the bookkeeping —
// until propagation decides the formula, the prefix becomes homogeneous,
// or a cutoff fires. The remainder is discharged to the SAT oracle.
func (e *Engine) Solve() Result {
	e.simplifyPass()

	for e.Result == ResultUnknown && e.Root != nil && !e.stopExpansion {
		e.simplifyPass()
		if e.Result != ResultUnknown || e.Root == nil {
			break
		}

		e.mergeScopes()
		if !e.Opts.FullExpansion && e.prefixHomogeneous() {
			break
		}
		if e.Opts.MaxExpansions > 0 && e.Stats.Expansions >= e.Opts.MaxExpansions {
			e.stopExpansion = true
			break
		}

		e.maybeOptimize()
		e.refreshScores()

		v, universal := e.selectVariable()
		if v == nil {
			break
		}
		if e.Opts.CostCutoffSet && v.Costs.Score > e.Opts.CostCutoff {
			e.stopExpansion = true
			break
		}

		before := e.TreeSize()
		e.expandVar(v)
		after := e.TreeSize()

		if universal {
			e.univTrigger += e.Opts.UnivDelta
			e.liftRequested = false
		} else if e.Opts.UnivTriggerAbs {
			e.liftRequested = after > e.univTrigger
		} else {
			e.liftRequested = after-before > e.univTrigger
		}

		if e.Opts.ShowProgress {
			e.log.Infof("expanded %d (%s), tree %d -> %d, score %d",
				v.ID, v.Scope.Kind, before, after, v.Costs.Score)
		} else if e.Opts.ShowGraphSize {
			e.log.Infof("graph size %d", after)
		}

		if e.Opts.SizeCutoffSet && sizeCutoffExceeded(before, after, e.Opts.SizeCutoff) {
			e.stopExpansion = true
		}
	}

	e.finishWithOracle()
	return e.Result
}

// innermostScope is the deepest scope that still has variables.
func (e *Engine) innermostScope() *Scope {
	for i := len(e.Scopes) - 1; i >= 0; i-- {
		if e.Scopes[i].RemainingVarCnt > 0 {
			return e.Scopes[i]
		}
	}
	return nil
}

// liftScope is the universal scope nearest outside the innermost
// existential scope, the only legal source for non-innermost expansion.
func (e *Engine) liftScope() *Scope {
	inner := e.innermostScope()
	if inner == nil || inner.Kind == Universal {
		return nil
	}
	for i := len(e.Scopes) - 1; i >= 0; i-- {
		s := e.Scopes[i]
		if s.RemainingVarCnt == 0 || s == inner {
			continue
		}
		if s.Nesting < inner.Nesting && s.Kind == Universal {
			return s
		}
	}
	return nil
}

// mergeScopes folds adjacent same-type scopes together once the
// separating scope has emptied; the inner one's variables move outward.
func (e *Engine) mergeScopes() {
	var last *Scope
	for _, s := range e.Scopes {
		if s.RemainingVarCnt == 0 {
			continue
		}
		if last == nil || last.Kind != s.Kind {
			last = s
			continue
		}
		for _, v := range s.Vars {
			if v.Eliminated || v.Scope != s {
				continue
			}
			if v.heapPos >= 0 {
				s.PQ.DeleteElem(v.heapPos)
			}
			v.Scope = last
			last.Vars = append(last.Vars, v)
			last.RemainingVarCnt++
			last.PQ.Push(v)
		}
		s.RemainingVarCnt = 0
		s.IsEmpty = true
	}
}

// prefixHomogeneous reports whether at most one quantifier type remains.
func (e *Engine) prefixHomogeneous() bool {
	seen := -1
	for _, s := range e.Scopes {
		if s.RemainingVarCnt == 0 {
			continue
		}
		if seen >= 0 && ScopeKind(seen) != s.Kind {
			return false
		}
		seen = int(s.Kind)
	}
	return true
}

// remainingKind reports the quantifier type of the leftover prefix; ok is
// false when the prefix is still mixed.
func (e *Engine) remainingKind() (ScopeKind, bool) {
	seen := -1
	for _, s := range e.Scopes {
		if s.RemainingVarCnt == 0 {
			continue
		}
		if seen >= 0 && ScopeKind(seen) != s.Kind {
			return Existential, false
		}
		seen = int(s.Kind)
	}
	if seen < 0 {
		return Existential, true
	}
	return ScopeKind(seen), true
}

func (e *Engine) selectVariable() (v *Var, universal bool) {
	if e.liftRequested {
		if s := e.liftScope(); s != nil && s.PQ.Len() > 0 {
			return s.PQ.Min(), true
		}
	}
	s := e.innermostScope()
	if s == nil || s.PQ.Len() == 0 {
		return nil, false
	}
	return s.PQ.Min(), s.Kind == Universal
}

func sizeCutoffExceeded(before, after int, cutoff float64) bool {
	if cutoff == float64(int(cutoff)) {
		return after > before+int(cutoff)
	}
	return float64(after) > float64(before)*(1+cutoff)
}

func (e *Engine) maybeOptimize() {
	if e.optimizer == nil || e.changed.LCA == nil {
		return
	}
	e.shrinkChangedTo(e.Opts.OptSubgraphLimit)
	if e.changed.LCA == nil {
		return
	}
	if e.Opts.ShowOptInfo {
		e.log.Infof("optimizer %s over %d nodes", e.optimizer.Name(), e.changed.LCA.Size)
	}
	e.Stats.OptimizerRuns++
	e.optimizer.Optimize(e, &e.changed)
	e.resetChanged()
}

// finishWithOracle emits the remaining matrix as CNF and consults the SAT
// solver. A purely existential remainder is asserted positively; a purely
// universal one is refuted by asserting the negated root, so the oracle's
// UNSAT means the formula is true.
func (e *Engine) finishWithOracle() {
	if e.Result != ResultUnknown || e.Root == nil {
		return
	}

	kind, homogeneous := e.remainingKind()
	if !homogeneous {
		return
	}
	tautologyMode := kind == Universal

	problem := e.EmitCNF(e.Opts.CNFGenerator, !tautologyMode)
	if e.Opts.DumpCNF && e.Opts.CNFWriter != nil {
		WriteDIMACS(e.Opts.CNFWriter, problem)
	}
	if e.Opts.NoSATSolving {
		return
	}

	solver := sat.New(problem)
	if e.Opts.OracleDecisionBudget > 0 {
		solver.SetDecisionBudget(e.Opts.OracleDecisionBudget)
	}
	status := solver.Solve()
	e.Stats.OracleCalls++
	e.Stats.OracleTime += solver.Stats().TimeElapsed

	switch status {
	case sat.Sat:
		if tautologyMode {
			e.setResult(ResultFalse)
		} else {
			e.setResult(ResultTrue)
		}
	case sat.Unsat:
		if tautologyMode {
			e.setResult(ResultTrue)
		} else {
			e.setResult(ResultFalse)
		}
	}
}
