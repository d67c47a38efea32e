package nnf

import (
	"io"
	"time"
)

// Result is the solver verdict, matching the QDIMACS answer line values.
type Result int

const (
	ResultUnknown Result = -1
	ResultFalse   Result = 0
	ResultTrue    Result = 1
)

func (r Result) String() string {
	switch r {
	case ResultTrue:
		return "TRUE"
	case ResultFalse:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// CNF generator selection.
const (
	GeneratorTseitin        = "tseitin"
	GeneratorTseitinRevised = "tseitin_revised"
)

// Options controls the engine. DefaultOptions returns the values the CLI
// starts from.
type Options struct {
	// MaxExpansions caps the number of expansions; 0 means unlimited.
	MaxExpansions int

	// FullExpansion keeps expanding after the prefix becomes homogeneous.
	FullExpansion bool

	// SizeCutoff aborts expansion when the tree grows past
	// old*(1+SizeCutoff) for fractional values, old+SizeCutoff for
	// integral ones. Active only when SizeCutoffSet.
	SizeCutoff    float64
	SizeCutoffSet bool

	// CostCutoff aborts expansion when the cheapest variable's score
	// exceeds it. Active only when CostCutoffSet.
	CostCutoff    int
	CostCutoffSet bool

	// UnivTrigger interrupts innermost existential expansion with a
	// non-innermost universal one after the previous expansion grew the
	// tree by more than the trigger; in absolute mode the trigger fires
	// once the tree size crosses it.
	UnivTrigger    int
	UnivTriggerAbs bool

	// UnivDelta is added to the trigger after each universal expansion.
	UnivDelta int

	NoSATSolving bool
	DumpCNF      bool
	CNFGenerator string

	// CNFWriter receives the DIMACS dump when DumpCNF is set.
	CNFWriter io.Writer

	NoOptimizations  bool
	OptSubgraphLimit int
	PropagationLimit int

	PostExpansionFlattening bool

	ShowProgress  bool
	ShowGraphSize bool
	ShowOptInfo   bool

	// OracleDecisionBudget bounds the SAT oracle; 0 means unlimited.
	OracleDecisionBudget int64
}

func DefaultOptions() Options {
	return Options{
		UnivTrigger:      10,
		UnivDelta:        10,
		CNFGenerator:     GeneratorTseitin,
		OptSubgraphLimit: 500,
	}
}

// Stats counts engine activity for the verbose report.
type Stats struct {
	Expansions                 int
	ExistentialExpansions      int
	UniversalExpansions        int
	NonInnermostUnivExpansions int
	Units                      int
	Unates                     int
	OneLevelSimplifications    int
	ParentMerges               int
	PostExpansionFlattenings   int
	OptimizerRuns              int
	PeakTreeSize               int
	NodesCreated               int
	NodesFreed                 int
	ClausesEmitted             int
	AuxVarsEmitted             int
	OracleCalls                int
	OracleTime                 time.Duration
}
