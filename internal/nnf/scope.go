package nnf

import (
	"qbfex/internal/container"
)

// ScopeKind distinguishes existential from universal scopes.
type ScopeKind uint8

const (
	Existential ScopeKind = iota
	Universal
)

func (k ScopeKind) String() string {
	if k == Universal {
		return "forall"
	}
	return "exists"
}

// Scope is one quantifier block. Scopes are ordered by nesting, outermost
// first; the default scope at nesting 0 is existential and catches free
// variables.
type Scope struct {
	Kind    ScopeKind
	Nesting int
	Vars    []*Var

	// priority queue over the scope's live variables keyed by score
	PQ *container.Heap[*Var]

	RemainingVarCnt int
	IsEmpty         bool // sticky latch
}

func newScope(kind ScopeKind, nesting int) *Scope {
	return &Scope{
		Kind:    kind,
		Nesting: nesting,
		PQ:      container.NewHeap(varLess),
	}
}

// addVar appends a variable in declaration order and registers it with
// the priority queue.
func (s *Scope) addVar(v *Var) {
	v.Scope = s
	s.Vars = append(s.Vars, v)
	s.RemainingVarCnt++
	s.IsEmpty = false
	s.PQ.Push(v)
}

// dropVar removes an eliminated variable from the queue and the remaining
// count. The latch flips once the count reaches zero.
func (s *Scope) dropVar(v *Var) {
	if v.heapPos >= 0 {
		s.PQ.DeleteElem(v.heapPos)
	}
	s.RemainingVarCnt--
	if s.RemainingVarCnt <= 0 {
		s.IsEmpty = true
	}
}
