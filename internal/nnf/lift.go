package nnf

import "qbfex/internal/container"

// Non-innermost universal expansion. Variables quantified inside the
// universal's scope that occur in the expansion region depend on it: the
// two halves of the expansion must bind them independently, so each gets
// a fresh twin and the region is grown to cover every occurrence of every
// depending variable, iterating until no new dependency appears.

// prepareUniversalLift extends u's LCA object to a self-contained region
// and creates the twins consulted by copySubtree.
func (e *Engine) prepareUniversalLift(u *Var) {
	obj := &u.Costs.LCA
	hooks := varLCAHooks(obj)

	// re-arm duplicate detection over the current children
	for _, c := range obj.Children {
		if c.IsOperator() {
			c.setMark(markLCAChild)
		}
	}

	// the back-index and var-list link are rebuilt once the region is
	// final; unification may move the LCA itself
	e.detachVarChildIndex(u)
	if obj.LCA != nil {
		e.unlinkVarFromLCAList(u, obj.LCA)
	}

	processed := 0
	for {
		e.scanRegionForDepending(obj, u)
		if processed == e.dependingVars.Len() {
			break
		}
		for ; processed < e.dependingVars.Len(); processed++ {
			d := e.dependingVars.At(processed)
			for _, l := range d.Lits {
				for o := l.OccHead; o != nil; o = o.NextOcc {
					mergeLCA(obj, o, hooks)
				}
			}
		}
	}

	for _, c := range obj.Children {
		c.clearMark(markLCAChild)
	}
	if obj.LCA != nil {
		e.linkVarToLCAList(u, obj.LCA)
	}
	e.attachVarChildIndex(u)

	for i := 0; i < e.dependingVars.Len(); i++ {
		e.dependingVars.At(i).Copied = e.newVarLike(e.dependingVars.At(i))
	}
}

// finishUniversalLift clears the transient twin links and queues both
// originals and twins for a full refresh. A twin that received no
// occurrences (its original's region vanished during propagation) is a
// no-op.
func (e *Engine) finishUniversalLift() {
	for i := 0; i < e.dependingVars.Len(); i++ {
		d := e.dependingVars.At(i)
		d.CollectedAsDepending = false
		tw := d.Copied
		d.Copied = nil
		if tw != nil {
			if tw.OccCnt() == 0 {
				e.markEliminated(tw)
			} else {
				e.markVarForUpdate(tw)
				if tw.Pos().OccCnt == 0 || tw.Neg().OccCnt == 0 {
					e.collectUnate(tw)
				}
			}
		}
		if !d.Eliminated {
			e.markVarForUpdate(d)
		}
	}
	e.dependingVars.Reset()
}

// scanRegionForDepending walks the current region and collects variables
// from scopes nested inside u's.
func (e *Engine) scanRegionForDepending(obj *LCAObject, u *Var) {
	roots := obj.Children
	if len(roots) == 0 && obj.LCA != nil {
		roots = []*Node{obj.LCA}
	}
	var stack container.Stack[*Node]
	for _, r := range roots {
		stack.Push(r)
		for !stack.Empty() {
			n := stack.Pop()
			if n.Kind == LiteralNode {
				d := n.Lit.Var
				if d != u && !d.Eliminated && !d.CollectedAsDepending &&
					d.Scope.Nesting > u.Scope.Nesting {
					d.CollectedAsDepending = true
					e.dependingVars.Push(d)
				}
				continue
			}
			for c := n.ChildHead; c != nil; c = c.Next {
				stack.Push(c)
			}
		}
	}
}

// detachVarChildIndex removes u's entries from the back-index stacks
// without touching the object itself; attachVarChildIndex rebuilds them
// for the final region.
func (e *Engine) detachVarChildIndex(u *Var) {
	obj := &u.Costs.LCA
	for i, c := range obj.Children {
		pos := u.PosInLCAChildListOccs[i]
		last := len(c.LCAChildOccs) - 1
		moved := c.LCAChildOccs[last]
		movedIdx := c.PosInLCAChildren[last]
		c.LCAChildOccs[pos] = moved
		c.PosInLCAChildren[pos] = movedIdx
		moved.PosInLCAChildListOccs[movedIdx] = pos
		c.LCAChildOccs = c.LCAChildOccs[:last]
		c.PosInLCAChildren = c.PosInLCAChildren[:last]
	}
	u.PosInLCAChildListOccs = u.PosInLCAChildListOccs[:0]
}

func (e *Engine) attachVarChildIndex(u *Var) {
	obj := &u.Costs.LCA
	for i, c := range obj.Children {
		u.PosInLCAChildListOccs = append(u.PosInLCAChildListOccs, len(c.LCAChildOccs))
		c.LCAChildOccs = append(c.LCAChildOccs, u)
		c.PosInLCAChildren = append(c.PosInLCAChildren, i)
	}
}
