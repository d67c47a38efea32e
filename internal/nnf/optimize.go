package nnf

import "qbfex/internal/container"

// Optimizer is the pluggable redundancy-removal hook. It consumes the
// changed-subformula view exported by the engine; the engine clears the
// view afterwards. Implementations are best-effort and must leave every
// engine invariant intact.
type Optimizer interface {
	Name() string
	Optimize(e *Engine, region *LCAObject)
}

// resimplifier is the built-in optimizer: it re-runs one-level
// simplification bottom-up over the changed region, letting the merges it
// triggers cascade. The propagation limit bounds the nodes visited.
type resimplifier struct{}

func (r *resimplifier) Name() string { return "resimplify" }

func (r *resimplifier) Optimize(e *Engine, region *LCAObject) {
	roots := region.Children
	if len(roots) == 0 && region.LCA != nil {
		roots = []*Node{region.LCA}
	}

	var operators []*Node
	var stack container.Stack[*Node]
	visited := 0
	limit := e.Opts.PropagationLimit
	for _, root := range roots {
		stack.Push(root)
		for !stack.Empty() {
			n := stack.Pop()
			visited++
			if limit > 0 && visited > limit {
				stack.Reset()
				break
			}
			if !n.IsOperator() {
				continue
			}
			operators = append(operators, n)
			for c := n.ChildHead; c != nil; c = c.Next {
				stack.Push(c)
			}
		}
	}

	// deepest first, so merges higher up see already-clean children
	for i := len(operators) - 1; i >= 0; i-- {
		n := operators[i]
		if n.marked(markFreed) {
			continue
		}
		e.simplifyOneLevel(n)
		if e.Result != ResultUnknown {
			return
		}
	}
}
