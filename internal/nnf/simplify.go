package nnf

// Truth propagation and the three simplifications: unit elimination at
// the root, unate elimination, and one-level Boolean simplification.

// propagateConstant replaces n's subtree by the constant val: climb while
// the parent collapses to the same constant (an OR with a true child, an
// AND with a false one), then remove the highest collapsing node. When
// the climb reaches the root the whole matrix is decided.
func (e *Engine) propagateConstant(n *Node, val bool) {
	for n.Parent != nil {
		p := n.Parent
		if (val && p.Kind == Or) || (!val && p.Kind == And) {
			n = p
			continue
		}
		break
	}
	if n.Parent == nil {
		e.removeAndFreeSubformula(n)
		if val {
			e.setResult(ResultTrue)
		} else {
			e.setResult(ResultFalse)
		}
		return
	}
	e.removeAndFreeSubformula(n)
}

// propagateLiteralNode applies one occurrence's truth value.
func (e *Engine) propagateLiteralNode(o *Node, litVal bool) {
	if o.Parent == nil {
		// the literal is the whole matrix
		e.removeAndFreeSubformula(o)
		if litVal {
			e.setResult(ResultTrue)
		} else {
			e.setResult(ResultFalse)
		}
		return
	}
	e.propagateConstant(o, litVal)
}

// assignVar substitutes a truth value for every occurrence of v and
// retires it. Propagation may cascade into merges and further collection.
func (e *Engine) assignVar(v *Var, val bool) {
	prev := e.CurExpandedVar
	e.CurExpandedVar = v

	var occs []*Node
	for _, l := range v.Lits {
		for o := l.OccHead; o != nil; o = o.NextOcc {
			occs = append(occs, o)
		}
	}
	for _, o := range occs {
		if o.marked(markFreed) {
			// an earlier propagation deleted the region holding it
			continue
		}
		litVal := val != o.Lit.Negated
		e.propagateLiteralNode(o, litVal)
		if e.Result != ResultUnknown {
			break
		}
	}

	e.CurExpandedVar = prev
	e.markEliminated(v)
}

// drainUnits eliminates literal children of an AND root. An existential
// (or free) unit is assigned its satisfying value; a universal unit
// falsifies the formula outright. A literal root is resolved by its
// quantifier.
func (e *Engine) drainUnits() bool {
	did := false
	for e.Result == ResultUnknown && e.Root != nil {
		if e.Root.Kind == LiteralNode {
			e.resolveLiteralRoot()
			did = true
			continue
		}
		if e.Root.Kind != And {
			break
		}
		c := e.Root.ChildHead
		if c == nil || c.Kind != LiteralNode {
			break
		}
		v := c.Lit.Var
		e.Stats.Units++
		did = true
		if v.Scope.Kind == Universal {
			e.setResult(ResultFalse)
			break
		}
		e.assignVar(v, !c.Lit.Negated)
	}
	return did
}

func (e *Engine) resolveLiteralRoot() {
	v := e.Root.Lit.Var
	r := ResultTrue
	if v.Scope.Kind == Universal {
		r = ResultFalse
	}
	e.removeAndFreeSubformula(e.Root)
	e.setResult(r)
}

// drainUnates eliminates variables whose occurrences are one-sided: an
// existential takes the polarity that satisfies them, a universal the one
// that falsifies them. Variables with no occurrences left are no-ops.
func (e *Engine) drainUnates() bool {
	did := false
	for !e.unates.Empty() && e.Result == ResultUnknown {
		v := e.unates.Pop()
		v.CollectedAsUnate = false
		if v.Eliminated || v == e.CurExpandedVar {
			continue
		}
		pos := v.Pos().OccCnt
		neg := v.Neg().OccCnt
		if pos > 0 && neg > 0 {
			// stale entry
			continue
		}
		did = true
		e.Stats.Unates++
		if pos == 0 && neg == 0 {
			e.markEliminated(v)
			continue
		}
		occursPositively := neg == 0
		val := occursPositively
		if v.Scope.Kind == Universal {
			val = !occursPositively
		}
		e.assignVar(v, val)
	}
	return did
}

// simplifyPass drains units and unates to fixed point.
func (e *Engine) simplifyPass() {
	for e.Result == ResultUnknown {
		did := e.drainUnits()
		if e.drainUnates() {
			did = true
		}
		if !did {
			return
		}
	}
}

// simplifyOneLevel scans an operator's literal children (contiguous at
// the head): duplicate literals are dropped, complementary ones
// annihilate the operator. The variable under expansion is exempt; its
// literals are about to be propagated anyway.
func (e *Engine) simplifyOneLevel(p *Node) {
	if p == nil || p.marked(markFreed) || !p.IsOperator() {
		return
	}

	seen := make(map[*Var]*Node)
	var dups []*Node
	for c := p.ChildHead; c != nil && c.Kind == LiteralNode; c = c.Next {
		v := c.Lit.Var
		if v == e.CurExpandedVar {
			continue
		}
		prior, ok := seen[v]
		if !ok {
			seen[v] = c
			continue
		}
		if prior.Lit == c.Lit {
			dups = append(dups, c)
			continue
		}
		// complementary pair: AND is false, OR is true
		e.Stats.OneLevelSimplifications++
		e.propagateConstant(p, p.Kind == Or)
		return
	}

	for _, c := range dups {
		e.Stats.OneLevelSimplifications++
		e.removeAndFreeSubformula(c)
		if p.marked(markFreed) {
			return
		}
	}
}
