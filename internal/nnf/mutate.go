package nnf

// Child-list and occurrence-list surgery. Everything here is O(1) except
// the explicit ancestor/subtree walks (updateSizeSubformula, updateLevel).
// Invariants may be violated inside a primitive but must hold again when
// it returns to the main loop.

import "qbfex/internal/container"

// linkChild inserts c into p's child list: literals at the head so that
// one-level simplification can stop at the first operator child,
// operators at the tail.
func linkChild(p, c *Node) {
	c.Parent = p
	if c.Kind == LiteralNode {
		c.Prev = nil
		c.Next = p.ChildHead
		if p.ChildHead != nil {
			p.ChildHead.Prev = c
		} else {
			p.ChildTail = c
		}
		p.ChildHead = c
	} else {
		c.Next = nil
		c.Prev = p.ChildTail
		if p.ChildTail != nil {
			p.ChildTail.Next = c
		} else {
			p.ChildHead = c
		}
		p.ChildTail = c
	}
	p.NumChildren++
}

// linkChildBefore inserts c directly before sibling.
func linkChildBefore(sibling, c *Node) {
	p := sibling.Parent
	c.Parent = p
	c.Next = sibling
	c.Prev = sibling.Prev
	if sibling.Prev != nil {
		sibling.Prev.Next = c
	} else {
		p.ChildHead = c
	}
	sibling.Prev = c
	p.NumChildren++
}

// linkChildTail appends at the tail unconditionally. Used when copying a
// child list whose head-literal layout is already correct.
func linkChildTail(p, c *Node) {
	c.Parent = p
	c.Next = nil
	c.Prev = p.ChildTail
	if p.ChildTail != nil {
		p.ChildTail.Next = c
	} else {
		p.ChildHead = c
	}
	p.ChildTail = c
	p.NumChildren++
}

// unlinkChild removes c from its parent's child list in O(1).
func unlinkChild(c *Node) {
	p := c.Parent
	if c.Prev != nil {
		c.Prev.Next = c.Next
	} else {
		p.ChildHead = c.Next
	}
	if c.Next != nil {
		c.Next.Prev = c.Prev
	} else {
		p.ChildTail = c.Prev
	}
	p.NumChildren--
	c.Parent, c.Prev, c.Next = nil, nil, nil
}

// addOccurrence appends a literal node to its literal's occurrence list.
func (e *Engine) addOccurrence(n *Node) {
	l := n.Lit
	n.PrevOcc = l.OccTail
	n.NextOcc = nil
	if l.OccTail != nil {
		l.OccTail.NextOcc = n
	} else {
		l.OccHead = n
	}
	l.OccTail = n
	l.OccCnt++
}

// removeOccurrence unlinks a literal node from its occurrence list and
// flags the variable: its LCA and scores are stale, and a polarity whose
// count reached zero makes it a unate (or a no-op when both are zero).
func (e *Engine) removeOccurrence(n *Node) {
	l := n.Lit
	if n.PrevOcc != nil {
		n.PrevOcc.NextOcc = n.NextOcc
	} else {
		l.OccHead = n.NextOcc
	}
	if n.NextOcc != nil {
		n.NextOcc.PrevOcc = n.PrevOcc
	} else {
		l.OccTail = n.PrevOcc
	}
	n.PrevOcc, n.NextOcc = nil, nil
	l.OccCnt--

	v := l.Var
	if v.Eliminated || v == e.CurExpandedVar {
		return
	}
	e.markVarForUpdate(v)
	if l.OccCnt == 0 {
		e.collectUnate(v)
	}
}

// updateSizeSubformula adds delta to n and every ancestor. A variable
// whose LCA object references a node on the path has size-dependent
// scores; it is flagged for a score-only refresh.
func (e *Engine) updateSizeSubformula(n *Node, delta int) {
	for m := n; m != nil; m = m.Parent {
		m.Size += delta
		for v := m.VarLCAHead; v != nil; v = v.NextLCAVar {
			if v != e.CurExpandedVar {
				e.markVarScoresForUpdate(v)
			}
		}
		for _, v := range m.LCAChildOccs {
			if v != e.CurExpandedVar {
				e.markVarScoresForUpdate(v)
			}
		}
	}
}

// updateLevel rewrites levels of n's subtree, rooting n at level.
func updateLevel(n *Node, level int) {
	n.Level = level
	var stack container.Stack[*Node]
	stack.Push(n)
	for !stack.Empty() {
		m := stack.Pop()
		for c := m.ChildHead; c != nil; c = c.Next {
			c.Level = m.Level + 1
			if c.IsOperator() {
				stack.Push(c)
			}
		}
	}
}

// collectAffectedVars resets and re-flags every variable whose LCA object
// references n, reading them off the var list and the back-index. The
// variable currently being expanded manages its own object and is only
// detached, never re-queued.
func (e *Engine) collectAffectedVars(n *Node) {
	for n.VarLCAHead != nil {
		v := n.VarLCAHead
		e.resetVarLCA(v)
		if v != e.CurExpandedVar {
			e.markVarForUpdate(v)
		}
	}
	for len(n.LCAChildOccs) > 0 {
		v := n.LCAChildOccs[len(n.LCAChildOccs)-1]
		e.resetVarLCA(v)
		if v != e.CurExpandedVar {
			e.markVarForUpdate(v)
		}
	}
}

// mergeParent eliminates an operator left with exactly one child. A lone
// literal is hoisted to the grandparent; a lone operator (which has the
// grandparent's kind, by alternation) donates its children to the
// grandparent. At the root the lone child simply becomes the root.
func (e *Engine) mergeParent(p *Node) {
	e.Stats.ParentMerges++
	c := p.ChildHead
	g := p.Parent

	if g == nil {
		unlinkChild(c)
		c.Parent = nil
		e.collectAffectedVars(p)
		e.freeNode(p)
		e.Root = c
		updateLevel(c, 0)
		if c.IsOperator() {
			e.mergeChanged(c)
		}
		return
	}

	if c.Kind == LiteralNode {
		unlinkChild(c)
		unlinkChild(p)
		linkChild(g, c)
		c.Level = g.Level + 1
		e.updateSizeSubformula(g, -1)
		e.collectAffectedVars(p)
		e.freeNode(p)
		if !c.Lit.Var.Eliminated && c.Lit.Var != e.CurExpandedVar {
			e.markVarForUpdate(c.Lit.Var)
		}
		e.mergeChanged(g)
		e.simplifyOneLevel(g)
		return
	}

	for c.ChildHead != nil {
		ch := c.ChildHead
		unlinkChild(ch)
		linkChild(g, ch)
		updateLevel(ch, g.Level+1)
		e.collectAffectedVars(ch)
	}
	unlinkChild(p)
	e.updateSizeSubformula(g, -2)
	e.collectAffectedVars(p)
	e.collectAffectedVars(c)
	e.freeNode(p)
	e.freeNode(c)
	e.mergeChanged(g)
	e.simplifyOneLevel(g)
}

// removeAndFreeSubformula unlinks n from its parent and frees the whole
// subtree, maintaining sizes, occurrence lists, LCA back-indices, and the
// changed subformula. A parent left with one child is merged; a parent
// left with none collapses to its neutral constant.
func (e *Engine) removeAndFreeSubformula(n *Node) {
	p := n.Parent
	if p != nil {
		unlinkChild(n)
		e.updateSizeSubformula(p, -n.Size)
	} else if e.Root == n {
		e.Root = nil
	}

	var stack container.Stack[*Node]
	stack.Push(n)
	for !stack.Empty() {
		m := stack.Pop()
		for c := m.ChildHead; c != nil; c = c.Next {
			stack.Push(c)
		}
		if m.Kind == LiteralNode {
			e.removeOccurrence(m)
		}
		e.collectAffectedVars(m)
		e.freeNode(m)
	}

	if p == nil {
		return
	}
	e.mergeChanged(p)
	switch p.NumChildren {
	case 0:
		e.propagateConstant(p, p.Kind == And)
	case 1:
		e.mergeParent(p)
	}
}
