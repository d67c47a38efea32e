package nnf

// The changed subformula: one process-wide LCAObject recording the
// smallest subtree containing every mutation since the optimizer last
// ran. An empty child list means the whole LCA subtree is the region.

// mergeChanged folds a mutation site into the changed subformula.
// Literal sites are promoted to their parent so the LCA stays an
// operator.
func (e *Engine) mergeChanged(n *Node) {
	if e.Opts.NoOptimizations || n == nil || n.marked(markFreed) {
		return
	}
	if n.Kind == LiteralNode {
		n = n.Parent
		if n == nil {
			return
		}
	}

	obj := &e.changed
	mergeLCA(obj, n, lcaHooks{
		addChild: func(c *Node) {
			if c.ChangedChPos >= 0 {
				return
			}
			c.ChangedChPos = len(obj.Children)
			obj.Children = append(obj.Children, c)
		},
		clearChildren: func() {
			for _, c := range obj.Children {
				c.ChangedChPos = -1
			}
			obj.Children = obj.Children[:0]
		},
	})

	// a single changed child is a smaller region in its own right
	if len(obj.Children) == 1 {
		c := obj.Children[0]
		c.ChangedChPos = -1
		obj.Children = obj.Children[:0]
		if c.IsOperator() {
			obj.LCA = c
		}
	}
}

func (e *Engine) resetChanged() {
	for _, c := range e.changed.Children {
		c.ChangedChPos = -1
	}
	e.changed.Children = e.changed.Children[:0]
	e.changed.LCA = nil
}

// removeChangedChild drops a freed node from the child array by
// swap-delete.
func (e *Engine) removeChangedChild(n *Node) {
	obj := &e.changed
	pos := n.ChangedChPos
	last := len(obj.Children) - 1
	moved := obj.Children[last]
	obj.Children[pos] = moved
	moved.ChangedChPos = pos
	obj.Children = obj.Children[:last]
	n.ChangedChPos = -1
}

// shrinkChangedTo bounds the optimizer's working set: while the region
// exceeds the limit, descend into the largest operator child. Changes
// outside the surviving region are dropped; the optimizer is best-effort.
func (e *Engine) shrinkChangedTo(limit int) {
	obj := &e.changed
	if obj.LCA == nil || limit <= 0 || obj.LCA.Size <= limit {
		return
	}

	cur := obj.LCA
	for cur.Size > limit {
		var best *Node
		for c := cur.ChildHead; c != nil; c = c.Next {
			if c.IsOperator() && (best == nil || c.Size > best.Size) {
				best = c
			}
		}
		if best == nil {
			break
		}
		cur = best
	}

	for _, c := range obj.Children {
		c.ChangedChPos = -1
	}
	obj.Children = obj.Children[:0]
	if cur.Size > limit || !cur.IsOperator() {
		obj.LCA = nil
		return
	}
	obj.LCA = cur
}
