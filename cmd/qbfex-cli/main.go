package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	ierrors "qbfex/internal/errors"
	"qbfex/internal/nnf"
	"qbfex/qdimacs"
)

const version = "0.1.0"

func main() {
	opts := nnf.DefaultOptions()

	numExpansions := flag.Int("n", 0, "hard cap on the number of expansions (0 = unlimited)")
	flag.BoolVar(&opts.FullExpansion, "full-expansion", false,
		"keep expanding after the prefix becomes purely existential or universal")
	sizeCutoff := flag.String("size-cutoff", "", "abort when the tree grows past old*(1+X) (fractional X) or old+X (integral X)")
	costCutoff := flag.String("cost-cutoff", "", "abort when the cheapest expansion score exceeds N")
	univTrigger := flag.String("univ-trigger", "10",
		"growth threshold N that triggers non-innermost universal expansion, or abs:N for an absolute tree size")
	flag.IntVar(&opts.UnivDelta, "univ-delta", opts.UnivDelta, "trigger increase after each universal expansion")
	flag.BoolVar(&opts.NoSATSolving, "no-sat-solving", false, "skip the SAT oracle")
	flag.BoolVar(&opts.DumpCNF, "dump-cnf", false, "print the emitted CNF to stdout")
	flag.StringVar(&opts.CNFGenerator, "cnf-generator", opts.CNFGenerator, "tseitin or tseitin_revised")
	flag.BoolVar(&opts.NoOptimizations, "no-optimizations", false, "disable the changed-subformula optimizer")
	noATPG := flag.Bool("no-atpg", false, "disable ATPG-based redundancy removal")
	noGlobalFlow := flag.Bool("no-global-flow", false, "disable global-flow redundancy removal")
	flag.IntVar(&opts.OptSubgraphLimit, "opt-subgraph-limit", opts.OptSubgraphLimit,
		"largest changed subformula handed to the optimizer")
	flag.IntVar(&opts.PropagationLimit, "propagation-limit", 0, "node budget per optimizer run (0 = unlimited)")
	flag.BoolVar(&opts.PostExpansionFlattening, "post-expansion-flattening", false,
		"distribute freshly split subgraphs back into clause shape")
	flag.BoolVar(&opts.ShowProgress, "show-progress", false, "log each expansion")
	flag.BoolVar(&opts.ShowGraphSize, "show-graph-size", false, "log the tree size after each expansion")
	flag.BoolVar(&opts.ShowOptInfo, "show-opt-info", false, "log optimizer activity")
	verbose := flag.Bool("v", false, "verbose statistics on stderr")
	timeLimit := flag.Int("t", 0, "time limit in seconds (0 = none)")
	showVersion := flag.Bool("version", false, "print the version and exit")

	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println("qbfex", version)
		return
	}
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	if *verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	opts.MaxExpansions = *numExpansions
	if *sizeCutoff != "" {
		x, err := strconv.ParseFloat(*sizeCutoff, 64)
		if err != nil {
			fatalf("invalid --size-cutoff value %q", *sizeCutoff)
		}
		opts.SizeCutoff = x
		opts.SizeCutoffSet = true
	}
	if *costCutoff != "" {
		n, err := strconv.Atoi(*costCutoff)
		if err != nil {
			fatalf("invalid --cost-cutoff value %q", *costCutoff)
		}
		opts.CostCutoff = n
		opts.CostCutoffSet = true
	}
	parseUnivTrigger(*univTrigger, &opts)
	if opts.CNFGenerator != nnf.GeneratorTseitin && opts.CNFGenerator != nnf.GeneratorTseitinRevised {
		fatalf("unknown --cnf-generator %q", opts.CNFGenerator)
	}
	if *noATPG && *noGlobalFlow {
		// only the built-in optimizer is present; disabling both of its
		// upstream modes disables it entirely
		opts.NoOptimizations = true
	}
	if opts.DumpCNF {
		opts.CNFWriter = os.Stdout
	}

	if *timeLimit > 0 {
		time.AfterFunc(time.Duration(*timeLimit)*time.Second, func() {
			color.Red("time limit of %ds exceeded", *timeLimit)
			os.Exit(1)
		})
	}

	path := flag.Arg(0)
	source, err := qdimacs.ReadSource(path)
	if err != nil {
		fatalf("%s", err)
	}

	reporter := ierrors.NewReporter(path, source)
	formula, warnings, err := qdimacs.ParseSource(path, source)
	if err != nil {
		if ie, ok := err.(*ierrors.InputError); ok {
			fmt.Fprint(os.Stderr, reporter.Format(ie))
		} else {
			color.Red("%s", err)
		}
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Fprint(os.Stderr, reporter.Format(w))
	}

	engine := nnf.NewEngine(formula, opts)
	start := time.Now()
	result := engine.Solve()
	elapsed := time.Since(start)

	if *verbose {
		printStats(engine, elapsed)
	}

	fmt.Printf("s cnf %d %d %d\n", int(result), engine.NumOrigVars(), engine.NumOrigClauses())
}

func parseUnivTrigger(value string, opts *nnf.Options) {
	if rest, ok := strings.CutPrefix(value, "abs:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			fatalf("invalid --univ-trigger value %q", value)
		}
		opts.UnivTrigger = n
		opts.UnivTriggerAbs = true
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		fatalf("invalid --univ-trigger value %q", value)
	}
	opts.UnivTrigger = n
}

func printStats(e *nnf.Engine, elapsed time.Duration) {
	s := e.Stats
	fmt.Fprintf(os.Stderr, "c result:                  %s\n", e.Result)
	fmt.Fprintf(os.Stderr, "c time:                    %v\n", elapsed)
	fmt.Fprintf(os.Stderr, "c expansions:              %d (%d existential, %d universal, %d non-innermost)\n",
		s.Expansions, s.ExistentialExpansions, s.UniversalExpansions, s.NonInnermostUnivExpansions)
	fmt.Fprintf(os.Stderr, "c units / unates:          %d / %d\n", s.Units, s.Unates)
	fmt.Fprintf(os.Stderr, "c one-level simplified:    %d\n", s.OneLevelSimplifications)
	fmt.Fprintf(os.Stderr, "c parent merges:           %d\n", s.ParentMerges)
	fmt.Fprintf(os.Stderr, "c flattenings:             %d\n", s.PostExpansionFlattenings)
	fmt.Fprintf(os.Stderr, "c optimizer runs:          %d\n", s.OptimizerRuns)
	fmt.Fprintf(os.Stderr, "c nodes created / freed:   %d / %d\n", s.NodesCreated, s.NodesFreed)
	fmt.Fprintf(os.Stderr, "c peak tree size:          %d\n", s.PeakTreeSize)
	if s.OracleCalls > 0 {
		fmt.Fprintf(os.Stderr, "c cnf clauses (aux vars):  %d (%d)\n", s.ClausesEmitted, s.AuxVarsEmitted)
		fmt.Fprintf(os.Stderr, "c oracle calls / time:     %d / %v\n", s.OracleCalls, s.OracleTime)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: qbfex [options] <file[.gz]>\n\n")
	fmt.Fprintf(os.Stderr, "Decides a QBF in QDIMACS format by quantifier expansion.\n")
	fmt.Fprintf(os.Stderr, "Prints 's cnf R V C' with R = 1 (true), 0 (false) or -1 (unknown).\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func fatalf(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}
