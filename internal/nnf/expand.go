package nnf

import "sort"

// The expansion operator. Existential expansion of v at LCA L with
// relevant children C rewrites the subtree to L[v=true] OR L[v=false];
// universal expansion is the structural dual with AND. The four cases per
// quantifier follow from L's kind and whether C covers all of L's
// children; literal LCA-children short-circuit the whole operation.
func (e *Engine) expandVar(v *Var) {
	e.CurExpandedVar = v
	if v.LCAUpdateMark || v.Costs.LCA.LCA == nil {
		e.computeVarLCA(v)
		v.LCAUpdateMark = false
	}

	exist := v.Scope.Kind == Existential
	e.Stats.Expansions++
	if exist {
		e.Stats.ExistentialExpansions++
	} else {
		e.Stats.UniversalExpansions++
	}

	if !exist && e.innermostScope() != v.Scope {
		e.Stats.NonInnermostUnivExpansions++
		e.prepareUniversalLift(v)
	}

	L := v.Costs.LCA.LCA
	children := append([]*Node(nil), v.Costs.LCA.Children...)

	if !e.expandShortCircuit(v, L, children, exist) {
		e.expandStructural(v, L, children, exist)
		e.propagateExpandedLiterals(v)
		e.postExpansionFlattening()
	}

	e.finishUniversalLift()
	e.CurExpandedVar = nil
	e.markEliminated(v)
	e.existentialSplitOr = nil
}

// expandShortCircuit handles the non-increasing cases: a literal LCA
// (single occurrence) and a literal of v directly under the LCA. An
// existential resolves the literal in its favour — satisfying it under an
// AND, turning the whole OR true otherwise; a universal resolves against
// it.
func (e *Engine) expandShortCircuit(v *Var, L *Node, children []*Node, exist bool) bool {
	if L == nil {
		return true // no occurrences left; nothing to expand
	}
	if L.Kind == LiteralNode {
		val := !L.Lit.Negated
		if !exist {
			val = L.Lit.Negated
		}
		e.assignVar(v, val)
		return true
	}
	for _, c := range children {
		if c.Kind != LiteralNode || c.Lit.Var != v {
			continue
		}
		switch {
		case exist && L.Kind == Or:
			e.propagateConstant(L, true)
		case exist:
			e.assignVar(v, !c.Lit.Negated)
		case L.Kind == And:
			e.propagateConstant(L, false)
		default:
			e.assignVar(v, c.Lit.Negated)
		}
		return true
	}
	return false
}

func (e *Engine) expandStructural(v *Var, L *Node, children []*Node, exist bool) {
	dupKind, splitKind := And, Or
	if !exist {
		dupKind, splitKind = Or, And
	}
	full := len(children) == L.NumChildren

	switch {
	case L.Kind == dupKind && full:
		// duplicate L beside itself under its splitKind parent, creating
		// a fresh root when L is the root
		if L.Parent == nil {
			newRoot := e.newOperator(splitKind)
			e.Root = newRoot
			cp := e.copySubtree(L, v)
			linkChild(newRoot, L)
			linkChild(newRoot, cp)
			newRoot.Size = 1 + L.Size + cp.Size
			updateLevel(newRoot, 0)
			e.mergeChanged(newRoot)
		} else {
			parent := L.Parent
			cp := e.copySubtree(L, v)
			linkChild(parent, cp)
			e.updateSizeSubformula(parent, cp.Size)
			updateLevel(cp, parent.Level+1)
			e.mergeChanged(parent)
		}

	case L.Kind == dupKind:
		// partial coverage: pull C under a fresh dupKind node and pair it
		// with its copy beneath a splitKind node kept inside L
		inner := e.newOperator(dupKind)
		moved := 0
		for _, c := range children {
			unlinkChild(c)
			e.collectAffectedVars(c)
			linkChild(inner, c)
			inner.Size += c.Size
			moved += c.Size
		}
		cp := e.copySubtree(inner, v)
		split := e.newOperator(splitKind)
		linkChild(split, inner)
		linkChild(split, cp)
		split.Size = 1 + inner.Size + cp.Size
		linkChild(L, split)
		e.updateSizeSubformula(L, split.Size-moved)
		updateLevel(split, L.Level+1)
		if exist && e.Opts.PostExpansionFlattening {
			e.existentialSplitOr = split
		}
		e.mergeChanged(L)

	default:
		// L has the splitKind: duplicate each relevant child in place
		for _, c := range children {
			cp := e.copySubtree(c, v)
			linkChild(L, cp)
			e.updateSizeSubformula(L, cp.Size)
			updateLevel(cp, L.Level+1)
		}
		e.mergeChanged(L)
	}

	if size := e.TreeSize(); size > e.Stats.PeakTreeSize {
		e.Stats.PeakTreeSize = size
	}
}

// copySubtree duplicates a region for expansion. Literals of v in the
// copy are marked as the false half; literals of a variable with a
// Copied twin are redirected to the twin.
func (e *Engine) copySubtree(orig *Node, v *Var) *Node {
	if orig.Kind == LiteralNode {
		l := orig.Lit
		if tw := l.Var.Copied; tw != nil {
			l = tw.LitFor(l.Negated)
		}
		cp := e.newLiteralNode(l)
		e.addOccurrence(cp)
		if l.Var == v {
			cp.setMark(markCopy)
		} else {
			e.markVarForUpdate(l.Var)
		}
		return cp
	}
	cp := e.newOperator(orig.Kind)
	for c := orig.ChildHead; c != nil; c = c.Next {
		ccp := e.copySubtree(c, v)
		linkChildTail(cp, ccp)
		cp.Size += ccp.Size
	}
	return cp
}

// propagateExpandedLiterals assigns both truth values: original
// occurrences take true, marked copies take false.
func (e *Engine) propagateExpandedLiterals(v *Var) {
	var occs []*Node
	for _, l := range v.Lits {
		for o := l.OccHead; o != nil; o = o.NextOcc {
			occs = append(occs, o)
		}
	}
	for _, o := range occs {
		if o.marked(markFreed) {
			continue
		}
		val := !o.marked(markCopy)
		e.propagateLiteralNode(o, val != o.Lit.Negated)
		if e.Result != ResultUnknown {
			return
		}
	}
}

// postExpansionFlattening distributes the armed split-OR over its AND
// operands when the subgraph is CNF-shaped, multiplying clauses out as in
// resolution and dropping trivial and duplicate ones.
func (e *Engine) postExpansionFlattening() {
	split := e.existentialSplitOr
	e.existentialSplitOr = nil
	if split == nil || split.marked(markFreed) || split.Kind != Or {
		return
	}
	if depthBelow(split) > 3 {
		return
	}
	parent := split.Parent
	if parent == nil || parent.Kind != And {
		return
	}

	litOf := make(map[int]*Lit)
	operands := make([][][]int, 0, split.NumChildren)
	for c := split.ChildHead; c != nil; c = c.Next {
		cnf, ok := toClauses(c, litOf)
		if !ok {
			return
		}
		operands = append(operands, cnf)
	}
	if len(operands) == 0 {
		return
	}

	product := operands[0]
	for _, next := range operands[1:] {
		if len(product)*len(next) > flatteningClauseLimit {
			return
		}
		product = crossClauses(product, next)
	}

	e.Stats.PostExpansionFlattenings++
	for _, clause := range product {
		if len(clause) == 1 {
			n := e.newLiteralNode(litOf[clause[0]])
			linkChild(parent, n)
			e.updateSizeSubformula(parent, 1)
			n.Level = parent.Level + 1
			e.addOccurrence(n)
			e.markVarForUpdate(n.Lit.Var)
			continue
		}
		or := e.newOperator(Or)
		linkChild(parent, or)
		e.updateSizeSubformula(parent, 1)
		or.Level = parent.Level + 1
		for _, key := range clause {
			n := e.newLiteralNode(litOf[key])
			linkChild(or, n)
			e.updateSizeSubformula(or, 1)
			n.Level = or.Level + 1
			e.addOccurrence(n)
			e.markVarForUpdate(n.Lit.Var)
		}
	}
	e.mergeChanged(parent)
	e.removeAndFreeSubformula(split)
	if !parent.marked(markFreed) {
		e.simplifyOneLevel(parent)
	}
}

const flatteningClauseLimit = 4096

// toClauses views a split operand as a clause list: a literal is a unit
// clause, an OR of literals one clause, an AND a list of both. Clause
// keys are signed variable ids.
func toClauses(n *Node, litOf map[int]*Lit) ([][]int, bool) {
	switch n.Kind {
	case LiteralNode:
		return [][]int{{litKey(n.Lit, litOf)}}, true
	case Or:
		clause := make([]int, 0, n.NumChildren)
		for c := n.ChildHead; c != nil; c = c.Next {
			if c.Kind != LiteralNode {
				return nil, false
			}
			clause = append(clause, litKey(c.Lit, litOf))
		}
		return [][]int{clause}, true
	default: // And
		var cnf [][]int
		for c := n.ChildHead; c != nil; c = c.Next {
			sub, ok := toClauses(c, litOf)
			if !ok || len(sub) != 1 {
				return nil, false
			}
			cnf = append(cnf, sub[0])
		}
		return cnf, true
	}
}

func litKey(l *Lit, litOf map[int]*Lit) int {
	key := l.Var.ID
	if l.Negated {
		key = -key
	}
	litOf[key] = l
	return key
}

// crossClauses resolves two clause lists pairwise, dropping tautological
// unions and duplicates.
func crossClauses(a, b [][]int) [][]int {
	seen := make(map[string]bool)
	var out [][]int
	for _, c1 := range a {
		for _, c2 := range b {
			union, trivial := unionClause(c1, c2)
			if trivial {
				continue
			}
			key := clauseKey(union)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, union)
		}
	}
	return out
}

func unionClause(a, b []int) (clause []int, trivial bool) {
	set := make(map[int]bool, len(a)+len(b))
	for _, l := range a {
		set[l] = true
	}
	for _, l := range b {
		set[l] = true
	}
	for l := range set {
		if set[-l] {
			return nil, true
		}
	}
	clause = make([]int, 0, len(set))
	for l := range set {
		clause = append(clause, l)
	}
	sort.Ints(clause)
	return clause, false
}

func clauseKey(clause []int) string {
	key := make([]byte, 0, len(clause)*3)
	for _, l := range clause {
		key = append(key, byte(l), byte(l>>8), byte(l>>16))
	}
	return string(key)
}

func depthBelow(n *Node) int {
	if n.Kind == LiteralNode {
		return 0
	}
	max := 0
	for c := n.ChildHead; c != nil; c = c.Next {
		if d := depthBelow(c) + 1; d > max {
			max = d
		}
	}
	return max
}
