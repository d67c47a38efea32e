package nnf

import (
	"github.com/tliron/commonlog"

	"qbfex/internal/container"
	"qbfex/qdimacs"
)

// Engine owns the whole solver state: the NNF tree, the scope prefix, the
// deferred-work stacks, the changed-subformula view, and the verdict.
// All operations are synchronous and single-threaded.
type Engine struct {
	Root   *Node
	Scopes []*Scope // outermost first; Scopes[0] is the default scope
	Vars   []*Var   // originals first, lift copies appended

	numOrigVars    int
	numOrigClauses int

	nodeCnt  int
	varIDCnt int

	unates              container.Stack[*Var]
	dependingVars       container.Stack[*Var]
	varsMarkedForUpdate container.Stack[*Var]

	changed            LCAObject
	CurExpandedVar     *Var
	existentialSplitOr *Node

	univTrigger   int
	liftRequested bool

	stopExpansion bool // a cutoff fired; skip further expansion

	Result Result
	Opts   Options
	Stats  Stats

	optimizer Optimizer

	log commonlog.Logger
}

// NewEngine builds the NNF tree for a parsed formula. Clauses become OR
// children of an AND root; unit clauses become literal children kept at
// the head; duplicate literals are dropped and tautological clauses
// skipped. An empty clause decides the formula immediately.
func NewEngine(f *qdimacs.Formula, opts Options) *Engine {
	e := &Engine{
		Result:         ResultUnknown,
		Opts:           opts,
		numOrigVars:    f.NumVars,
		numOrigClauses: f.NumClauses,
		univTrigger:    opts.UnivTrigger,
		log:            commonlog.GetLogger("qbfex.engine"),
	}
	if !opts.NoOptimizations {
		e.optimizer = &resimplifier{}
	}

	def := newScope(Existential, 0)
	e.Scopes = []*Scope{def}

	byID := make([]*Var, f.NumVars+1)
	for i, s := range f.Scopes {
		kind := Existential
		if s.Quant == qdimacs.Universal {
			kind = Universal
		}
		scope := newScope(kind, i+1)
		e.Scopes = append(e.Scopes, scope)
		for _, id := range s.Vars {
			byID[id] = e.newVar(id, scope)
		}
	}
	for id := 1; id <= f.NumVars; id++ {
		if byID[id] == nil {
			byID[id] = e.newVar(id, def)
		}
	}
	e.varIDCnt = f.NumVars

	root := e.newOperator(And)
	e.Root = root

	for _, clause := range f.Clauses {
		if len(clause) == 0 {
			e.setResult(ResultFalse)
			return e
		}
		lits, tautological := normalizeClause(clause)
		if tautological {
			continue
		}
		if len(lits) == 1 {
			e.addLiteralChild(root, byID, lits[0])
			continue
		}
		or := e.newOperator(Or)
		linkChild(root, or)
		e.updateSizeSubformula(root, or.Size)
		or.Level = 1
		for _, l := range lits {
			e.addLiteralChild(or, byID, l)
		}
	}

	switch root.NumChildren {
	case 0:
		// every clause was tautological (or there were none)
		e.setResult(ResultTrue)
		return e
	case 1:
		if c := root.ChildHead; c.IsOperator() {
			unlinkChild(c)
			c.Parent = nil
			e.Root = c
			e.freeNode(root)
			updateLevel(c, 0)
		}
	}

	for _, v := range e.Vars {
		if v.OccCnt() == 0 {
			e.markEliminated(v)
			continue
		}
		e.markVarForUpdate(v)
		if v.Neg().OccCnt == 0 || v.Pos().OccCnt == 0 {
			e.collectUnate(v)
		}
	}

	return e
}

func normalizeClause(clause []int) (lits []int, tautological bool) {
	seen := make(map[int]bool, len(clause))
	for _, l := range clause {
		if seen[-l] {
			return nil, true
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		lits = append(lits, l)
	}
	return lits, false
}

func (e *Engine) addLiteralChild(parent *Node, byID []*Var, lit int) {
	v := byID[abs(lit)]
	n := e.newLiteralNode(v.LitFor(lit < 0))
	linkChild(parent, n)
	e.updateSizeSubformula(parent, n.Size)
	n.Level = parent.Level + 1
	e.addOccurrence(n)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (e *Engine) newOperator(kind Kind) *Node {
	e.nodeCnt++
	e.Stats.NodesCreated++
	return &Node{ID: e.nodeCnt, Kind: kind, Size: 1, ChangedChPos: -1}
}

func (e *Engine) newLiteralNode(l *Lit) *Node {
	e.nodeCnt++
	e.Stats.NodesCreated++
	return &Node{ID: e.nodeCnt, Kind: LiteralNode, Lit: l, Size: 1, ChangedChPos: -1}
}

func (e *Engine) newVar(id int, s *Scope) *Var {
	v := &Var{ID: id, heapPos: -1}
	v.Lits[0] = &Lit{Var: v, Negated: true}
	v.Lits[1] = &Lit{Var: v}
	s.addVar(v)
	e.Vars = append(e.Vars, v)
	return v
}

// newVarLike creates a fresh variable in the same scope as the original,
// used for depending-variable copies during universal lifting.
func (e *Engine) newVarLike(orig *Var) *Var {
	e.varIDCnt++
	return e.newVar(e.varIDCnt, orig.Scope)
}

// markVarForUpdate flags a full refresh: LCA and both scores.
func (e *Engine) markVarForUpdate(v *Var) {
	v.LCAUpdateMark = true
	v.IncScoreUpdateMark = true
	v.DecScoreUpdateMark = true
	e.collectForUpdate(v)
}

// markVarScoresForUpdate flags a score-only refresh.
func (e *Engine) markVarScoresForUpdate(v *Var) {
	v.IncScoreUpdateMark = true
	v.DecScoreUpdateMark = true
	e.collectForUpdate(v)
}

func (e *Engine) collectForUpdate(v *Var) {
	if v.CollectedForUpdate || v.Eliminated || v == e.CurExpandedVar {
		return
	}
	v.CollectedForUpdate = true
	e.varsMarkedForUpdate.Push(v)
}

func (e *Engine) collectUnate(v *Var) {
	if v.CollectedAsUnate || v.Eliminated || v == e.CurExpandedVar {
		return
	}
	v.CollectedAsUnate = true
	e.unates.Push(v)
}

// markEliminated retires a variable after expansion or unate removal.
// Eliminated variables are never resurrected.
func (e *Engine) markEliminated(v *Var) {
	if v.Eliminated {
		return
	}
	e.resetVarLCA(v)
	v.Eliminated = true
	v.Scope.dropVar(v)
}

func (e *Engine) setResult(r Result) {
	if e.Result != ResultUnknown {
		return
	}
	e.Result = r
	e.Root = nil
}

// TreeSize is the current node count of the matrix.
func (e *Engine) TreeSize() int {
	if e.Root == nil {
		return 0
	}
	return e.Root.Size
}

// NumOrigVars and NumOrigClauses echo the input header for the answer line.
func (e *Engine) NumOrigVars() int    { return e.numOrigVars }
func (e *Engine) NumOrigClauses() int { return e.numOrigClauses }

// freeNode retires a node from every process-wide structure. Callers are
// responsible for the child list, occurrence list, and LCA back-index.
func (e *Engine) freeNode(n *Node) {
	if n.ChangedChPos >= 0 {
		e.removeChangedChild(n)
	}
	if e.changed.LCA == n {
		e.resetChanged()
	}
	if e.existentialSplitOr == n {
		e.existentialSplitOr = nil
	}
	n.setMark(markFreed)
	e.Stats.NodesFreed++
}
