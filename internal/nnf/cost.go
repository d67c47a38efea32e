package nnf

import (
	"sort"

	"qbfex/internal/container"
)

// The expansion cost model: inc predicts nodes added by expanding a
// variable at its LCA, dec estimates nodes deleted by the subsequent
// propagation of both truth values. score = inc - dec drives selection.

// refreshScores drains the update stack. Only variables of a currently
// selectable scope are recomputed; the rest keep their dirty flags and
// are re-queued for when their scope comes up.
func (e *Engine) refreshScores() {
	if e.varsMarkedForUpdate.Empty() {
		return
	}
	// swap the stack out: deferred variables re-collect into the fresh one
	pending := e.varsMarkedForUpdate
	e.varsMarkedForUpdate = container.Stack[*Var]{}

	for i := 0; i < pending.Len(); i++ {
		v := pending.At(i)
		v.CollectedForUpdate = false
		if v.Eliminated {
			continue
		}
		if !e.scopeRefreshable(v.Scope) {
			e.collectForUpdate(v)
			continue
		}
		e.refreshVar(v)
	}
}

func (e *Engine) scopeRefreshable(s *Scope) bool {
	if s == e.innermostScope() {
		return true
	}
	return s.Kind == Universal && s.RemainingVarCnt > 0
}

func (e *Engine) refreshVar(v *Var) {
	if v.LCAUpdateMark {
		e.computeVarLCA(v)
		v.LCAUpdateMark = false
		v.IncScoreUpdateMark = true
		v.DecScoreUpdateMark = true
	}
	if v.IncScoreUpdateMark {
		v.Costs.Inc = e.incScore(v)
		v.IncScoreUpdateMark = false
	}
	if v.DecScoreUpdateMark {
		v.Costs.Dec = e.decScore(v)
		v.DecScoreUpdateMark = false
	}

	score := v.Costs.Inc - v.Costs.Dec
	if score != v.Costs.Score || v.heapPos < 0 {
		v.Costs.Score = score
		if v.heapPos >= 0 {
			v.Scope.PQ.Fix(v.heapPos)
		} else {
			v.Scope.PQ.Push(v)
		}
	}
}

// incScore implements the case table: quantifier type x LCA kind x child
// coverage, with the root hosting a fresh split node when the whole LCA
// is duplicated. An LCA-child that is a literal of the variable itself
// (or a literal LCA) resolves preemptively and costs nothing.
func (e *Engine) incScore(v *Var) int {
	obj := &v.Costs.LCA
	L := obj.LCA
	if L == nil || L.Kind == LiteralNode {
		return 0
	}
	for _, c := range obj.Children {
		if c.Kind == LiteralNode && c.Lit.Var == v {
			return 0
		}
	}

	exist := v.Scope.Kind == Existential
	full := len(obj.Children) == L.NumChildren
	sum := 0
	for _, c := range obj.Children {
		sum += c.Size
	}
	rootBonus := 0
	if L == e.Root {
		rootBonus = 1
	}

	switch {
	case exist && L.Kind == And && full:
		return L.Size + rootBonus
	case exist && L.Kind == And:
		return sum + 3
	case exist && L.Kind == Or:
		return sum
	case !exist && L.Kind == Or && full:
		return L.Size + rootBonus
	case !exist && L.Kind == Or:
		return sum + 3
	default: // universal at an AND
		return sum
	}
}

// decScore runs one mark-and-count pass per truth value. Each occurrence
// contributes the subtree that propagation would delete outright: the OR
// parent of a literal that became true, the AND parent of one that became
// false, or just the literal itself. Marks suppress counting a region
// that is already inside a counted ancestor; the result is an estimate,
// post-expansion merging may delete more.
func (e *Engine) decScore(v *Var) int {
	total := 0
	for _, val := range []bool{true, false} {
		mark := markDecTrue
		if !val {
			mark = markDecFalse
		}

		var cands []*Node
		for _, l := range v.Lits {
			litVal := val != l.Negated
			for o := l.OccHead; o != nil; o = o.NextOcc {
				cand := o
				if p := o.Parent; p != nil && ((litVal && p.Kind == Or) || (!litVal && p.Kind == And)) {
					cand = p
				}
				cands = append(cands, cand)
			}
		}

		// shallowest first, so a region nested inside an already-counted
		// one is always caught by the climb
		sort.Slice(cands, func(i, j int) bool { return cands[i].Level < cands[j].Level })

		var marked []*Node
		for _, cand := range cands {
			counted := false
			for m := cand; m != nil; m = m.Parent {
				if m.marked(mark) {
					counted = true
					break
				}
			}
			if counted {
				continue
			}
			cand.setMark(mark)
			marked = append(marked, cand)
			total += cand.Size
		}

		for _, m := range marked {
			m.clearMark(mark)
		}
	}
	return total
}
