package nnf

import (
	"bufio"
	"fmt"
	"io"

	"qbfex/internal/sat"
)

// CNF emission. Variables still in the tree keep dense fresh ids;
// operator nodes get auxiliary ids above them. The plain Tseitin
// generator emits full biconditionals per operator, which stays sound
// when the top-level assertion is negative (tautology mode). The revised
// generator fuses the top two levels: each flat clause under an AND root
// is emitted directly, without an auxiliary variable. Its precondition —
// alternating kinds across the top two levels — is checked per child, not
// assumed; non-conforming children fall back to the plain encoding.

type cnfEmitter struct {
	e       *Engine
	varIDs  map[*Var]int
	nodeIDs map[*Node]int
	next    int
	clauses [][]int
}

// EmitCNF encodes the current matrix. The root is asserted positively
// when positive is true, negated otherwise.
func (e *Engine) EmitCNF(generator string, positive bool) *sat.Problem {
	em := &cnfEmitter{
		e:       e,
		varIDs:  make(map[*Var]int),
		nodeIDs: make(map[*Node]int),
	}
	root := e.Root
	em.numberVars(root)

	if generator == GeneratorTseitinRevised && positive && root.Kind == And {
		em.emitRevisedTop(root)
	} else {
		top := em.encode(root)
		if !positive {
			top = -top
		}
		em.clauses = append(em.clauses, []int{top})
	}

	e.Stats.ClausesEmitted = len(em.clauses)
	e.Stats.AuxVarsEmitted = em.next - len(em.varIDs)
	return &sat.Problem{NumVars: em.next, Clauses: em.clauses}
}

func (em *cnfEmitter) numberVars(n *Node) {
	if n.Kind == LiteralNode {
		if _, ok := em.varIDs[n.Lit.Var]; !ok {
			em.next++
			em.varIDs[n.Lit.Var] = em.next
		}
		return
	}
	for c := n.ChildHead; c != nil; c = c.Next {
		em.numberVars(c)
	}
}

// encode returns the signed id standing for n's subformula, emitting the
// biconditional clauses for operator nodes on the way.
func (em *cnfEmitter) encode(n *Node) int {
	if n.Kind == LiteralNode {
		id := em.varIDs[n.Lit.Var]
		if n.Lit.Negated {
			return -id
		}
		return id
	}
	if id, ok := em.nodeIDs[n]; ok {
		return id
	}

	em.next++
	id := em.next
	em.nodeIDs[n] = id

	kids := make([]int, 0, n.NumChildren)
	for c := n.ChildHead; c != nil; c = c.Next {
		kids = append(kids, em.encode(c))
	}

	if n.Kind == And {
		long := make([]int, 0, len(kids)+1)
		long = append(long, id)
		for _, k := range kids {
			em.clauses = append(em.clauses, []int{-id, k})
			long = append(long, -k)
		}
		em.clauses = append(em.clauses, long)
	} else {
		long := make([]int, 0, len(kids)+1)
		long = append(long, -id)
		for _, k := range kids {
			em.clauses = append(em.clauses, []int{id, -k})
			long = append(long, k)
		}
		em.clauses = append(em.clauses, long)
	}
	return id
}

// emitRevisedTop fuses the top two levels: each OR child of the AND root
// becomes a single clause over its children's encodings, with no
// auxiliary variable for the OR itself. The alternation precondition is
// checked per child; a non-conforming child is asserted through its
// auxiliary variable instead.
func (em *cnfEmitter) emitRevisedTop(root *Node) {
	for c := root.ChildHead; c != nil; c = c.Next {
		switch c.Kind {
		case LiteralNode:
			em.clauses = append(em.clauses, []int{em.encode(c)})
		case Or:
			clause := make([]int, 0, c.NumChildren)
			for ch := c.ChildHead; ch != nil; ch = ch.Next {
				clause = append(clause, em.encode(ch))
			}
			em.clauses = append(em.clauses, clause)
		default:
			em.clauses = append(em.clauses, []int{em.encode(c)})
		}
	}
}

// WriteDIMACS writes a problem in standard DIMACS form.
func WriteDIMACS(w io.Writer, p *sat.Problem) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", p.NumVars, len(p.Clauses)); err != nil {
		return err
	}
	for _, clause := range p.Clauses {
		for _, lit := range clause {
			if _, err := fmt.Fprintf(bw, "%d ", lit); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw, "0"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
