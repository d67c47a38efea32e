package nnf

// The least-common-ancestor machinery. Every variable with occurrences
// owns an LCAObject: the unique lowest node whose subtree contains all of
// its occurrences, plus the LCA's children that contain at least one
// occurrence. The same two-pointer merge also maintains the changed
// subformula and unifies regions during universal lifting.

// lcaHooks parameterize child bookkeeping: variable objects dedup via a
// mark bit, the changed subformula via stored positions.
type lcaHooks struct {
	addChild      func(c *Node)
	clearChildren func()
}

// mergeLCA folds the tree position n into the running object with a
// level-balanced climb: raise the deeper endpoint to the shallower one's
// level, then either one contains the other, or both climb in lockstep to
// their meet, which becomes the new LCA with the two last-visited
// children.
func mergeLCA(obj *LCAObject, n *Node, h lcaHooks) {
	if obj.LCA == nil {
		obj.LCA = n
		return
	}

	a, b := obj.LCA, n
	var aPrev, bPrev *Node
	for b.Level > a.Level {
		bPrev, b = b, b.Parent
	}
	for a.Level > b.Level {
		aPrev, a = a, a.Parent
	}

	if a == b {
		if aPrev == nil {
			// the old LCA contains n (or n is the old LCA itself)
			if bPrev != nil {
				h.addChild(bPrev)
			}
			return
		}
		// n contains the old LCA
		obj.LCA = a
		h.clearChildren()
		h.addChild(aPrev)
		return
	}

	for a != b {
		aPrev, bPrev = a, b
		a, b = a.Parent, b.Parent
	}
	obj.LCA = a
	h.clearChildren()
	h.addChild(aPrev)
	h.addChild(bPrev)
}

// varLCAHooks builds the standard hooks for a variable's object: operator
// children are marked to suppress duplicates, literal children cannot
// duplicate and stay unmarked.
func varLCAHooks(obj *LCAObject) lcaHooks {
	return lcaHooks{
		addChild: func(c *Node) {
			if c.IsOperator() {
				if c.marked(markLCAChild) {
					return
				}
				c.setMark(markLCAChild)
			}
			obj.Children = append(obj.Children, c)
		},
		clearChildren: func() {
			for _, c := range obj.Children {
				c.clearMark(markLCAChild)
			}
			obj.Children = obj.Children[:0]
		},
	}
}

// computeVarLCA recomputes v's object from scratch over both occurrence
// lists and rebuilds the bidirectional child index.
func (e *Engine) computeVarLCA(v *Var) {
	e.resetVarLCA(v)
	obj := &v.Costs.LCA
	hooks := varLCAHooks(obj)

	for _, l := range v.Lits {
		for o := l.OccHead; o != nil; o = o.NextOcc {
			mergeLCA(obj, o, hooks)
		}
	}

	// the dedup marks are live only during the computation
	for _, c := range obj.Children {
		c.clearMark(markLCAChild)
	}

	if obj.LCA == nil {
		return
	}
	e.linkVarToLCAList(v, obj.LCA)
	for i, c := range obj.Children {
		v.PosInLCAChildListOccs = append(v.PosInLCAChildListOccs, len(c.LCAChildOccs))
		c.LCAChildOccs = append(c.LCAChildOccs, v)
		c.PosInLCAChildren = append(c.PosInLCAChildren, i)
	}
}

// resetVarLCA detaches v from its LCA's var list and removes its entries
// from every child's back-index stack by swap-delete, fixing the moved
// variable's position pointer.
func (e *Engine) resetVarLCA(v *Var) {
	obj := &v.Costs.LCA
	if obj.LCA != nil {
		e.unlinkVarFromLCAList(v, obj.LCA)
	}
	for i, c := range obj.Children {
		pos := v.PosInLCAChildListOccs[i]
		last := len(c.LCAChildOccs) - 1
		moved := c.LCAChildOccs[last]
		movedIdx := c.PosInLCAChildren[last]
		c.LCAChildOccs[pos] = moved
		c.PosInLCAChildren[pos] = movedIdx
		moved.PosInLCAChildListOccs[movedIdx] = pos
		c.LCAChildOccs = c.LCAChildOccs[:last]
		c.PosInLCAChildren = c.PosInLCAChildren[:last]
		if last == 0 {
			// drop empty stacks
			c.LCAChildOccs = nil
			c.PosInLCAChildren = nil
		}
	}
	obj.LCA = nil
	obj.Children = obj.Children[:0]
	v.PosInLCAChildListOccs = v.PosInLCAChildListOccs[:0]
}

func (e *Engine) linkVarToLCAList(v *Var, n *Node) {
	v.PrevLCAVar = n.VarLCATail
	v.NextLCAVar = nil
	if n.VarLCATail != nil {
		n.VarLCATail.NextLCAVar = v
	} else {
		n.VarLCAHead = v
	}
	n.VarLCATail = v
	v.inLCAList = true
}

// unlinkVarFromLCAList tolerates a variable that is already detached;
// this can happen transiently during relinking.
func (e *Engine) unlinkVarFromLCAList(v *Var, n *Node) {
	if !v.inLCAList {
		return
	}
	if v.PrevLCAVar != nil {
		v.PrevLCAVar.NextLCAVar = v.NextLCAVar
	} else {
		n.VarLCAHead = v.NextLCAVar
	}
	if v.NextLCAVar != nil {
		v.NextLCAVar.PrevLCAVar = v.PrevLCAVar
	} else {
		n.VarLCATail = v.PrevLCAVar
	}
	v.PrevLCAVar, v.NextLCAVar = nil, nil
	v.inLCAList = false
}
