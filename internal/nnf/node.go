// Package nnf implements the expansion-based QBF engine: an AND/OR tree
// with literal leaves, per-variable least-common-ancestor bookkeeping, an
// expansion cost model, and the main elimination loop.
package nnf

import (
	"fmt"
	"strings"
)

// Kind tags the three node variants.
type Kind uint8

const (
	And Kind = iota
	Or
	LiteralNode
)

func (k Kind) String() string {
	switch k {
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return "LIT"
	}
}

// Mark bits. They are reused across unrelated traversals; every user is
// responsible for clearing the bits it set.
const (
	markLCAChild uint8 = 1 << iota // child dedup during LCA computation
	markCopy                       // literal copy belonging to the false half of an expansion
	markDependency                 // unused: depending-variable collection tracks visits with Var.CollectedAsDepending
	markDecTrue                    // dec-score pass for the true polarity
	markDecFalse                   // dec-score pass for the false polarity
	markFreed                      // node left the tree
)

// Node is one vertex of the NNF tree. Operator nodes carry a doubly
// linked child list whose literal children are kept contiguously at the
// head; literal nodes carry their Lit reference and occurrence links.
type Node struct {
	ID    int
	Kind  Kind
	Level int
	Size  int // nodes in the subtree including self

	Parent *Node
	Prev   *Node // previous sibling
	Next   *Node // next sibling

	ChildHead   *Node
	ChildTail   *Node
	NumChildren int

	Lit     *Lit
	PrevOcc *Node
	NextOcc *Node

	marks uint8

	// head/tail of the list of variables whose LCA is exactly this node
	VarLCAHead *Var
	VarLCATail *Var

	// back-index: variables for which this node is an LCA-child, and the
	// node's position in each such variable's child array; either both
	// slices are present or both are nil
	LCAChildOccs     []*Var
	PosInLCAChildren []int

	// position in the changed-subformula child array, -1 when absent
	ChangedChPos int
}

func (n *Node) marked(bit uint8) bool { return n.marks&bit != 0 }
func (n *Node) setMark(bit uint8)     { n.marks |= bit }
func (n *Node) clearMark(bit uint8)   { n.marks &^= bit }

// IsOperator reports whether the node is an AND or OR.
func (n *Node) IsOperator() bool { return n.Kind != LiteralNode }

// Lit is one polarity of a variable together with its occurrence list.
type Lit struct {
	Var     *Var
	Negated bool
	OccCnt  int
	OccHead *Node
	OccTail *Node
}

func (l *Lit) String() string {
	if l.Negated {
		return fmt.Sprintf("-%d", l.Var.ID)
	}
	return fmt.Sprintf("%d", l.Var.ID)
}

// LCAObject is the least common ancestor of a set of tree positions plus
// the LCA's children whose subtrees contain at least one of them.
type LCAObject struct {
	LCA      *Node
	Children []*Node
}

func (o *LCAObject) NumChildren() int { return len(o.Children) }

// ExpCosts caches a variable's expansion cost prediction.
type ExpCosts struct {
	LCA   LCAObject
	Inc   int // nodes the expansion adds
	Dec   int // nodes post-expansion propagation deletes
	Score int // Inc - Dec
}

// Var is a quantified (or free) variable.
type Var struct {
	ID    int
	Scope *Scope
	Lits  [2]*Lit // [0] negated, [1] positive

	Costs ExpCosts

	// dirty flags consumed by the score-refresh pass
	LCAUpdateMark      bool
	IncScoreUpdateMark bool
	DecScoreUpdateMark bool

	CollectedForUpdate   bool
	CollectedAsUnate     bool
	CollectedAsDepending bool

	heapPos int

	// membership in the LCA node's var list
	PrevLCAVar *Var
	NextLCAVar *Var
	inLCAList  bool

	// parallels Costs.LCA.Children: our position in each child's
	// LCAChildOccs stack
	PosInLCAChildListOccs []int

	// transient twin during non-innermost universal expansion
	Copied *Var

	Eliminated bool
}

// HeapPos and SetHeapPos let the scope priority queue track positions.
func (v *Var) HeapPos() int     { return v.heapPos }
func (v *Var) SetHeapPos(p int) { v.heapPos = p }

// Neg returns the negative literal, Pos the positive one.
func (v *Var) Neg() *Lit { return v.Lits[0] }
func (v *Var) Pos() *Lit { return v.Lits[1] }

// LitFor returns the literal of the given sign.
func (v *Var) LitFor(negated bool) *Lit {
	if negated {
		return v.Lits[0]
	}
	return v.Lits[1]
}

// OccCnt is the total number of occurrences over both polarities.
func (v *Var) OccCnt() int {
	return v.Lits[0].OccCnt + v.Lits[1].OccCnt
}

func varLess(a, b *Var) bool {
	if a.Costs.Score != b.Costs.Score {
		return a.Costs.Score < b.Costs.Score
	}
	return a.ID < b.ID
}

// String renders the subtree in prefix form, literals as signed ids.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n.Kind == LiteralNode {
		b.WriteString(n.Lit.String())
		return
	}
	if n.Kind == And {
		b.WriteString("(and")
	} else {
		b.WriteString("(or")
	}
	for c := n.ChildHead; c != nil; c = c.Next {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}
