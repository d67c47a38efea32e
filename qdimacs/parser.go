package qdimacs

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/klauspost/compress/gzip"

	ierrors "qbfex/internal/errors"
)

var parser = buildParser()

func buildParser() *participle.Parser[File] {
	p, err := participle.Build[File](
		participle.Lexer(QDimacsLexer),
		participle.Elide("Whitespace", "Comment"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build parser: %w", err))
	}

	return p
}

// ReadSource reads a QDIMACS file's text. Files ending in .gz are
// decompressed transparently.
func ReadSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	source, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(source), nil
}

// ParseFile reads and parses a QDIMACS file.
func ParseFile(path string) (*Formula, []*ierrors.InputError, error) {
	source, err := ReadSource(path)
	if err != nil {
		return nil, nil, err
	}
	return ParseSource(path, source)
}

// ParseSource parses and validates QDIMACS text. It returns the formula,
// any non-fatal warnings, and the first fatal error encountered.
func ParseSource(sourceName, source string) (*Formula, []*ierrors.InputError, error) {
	file, err := parser.ParseString(sourceName, source)
	if err != nil {
		return nil, nil, syntaxError(err)
	}

	return validate(file)
}

func syntaxError(err error) error {
	pe, ok := err.(participle.Error)
	if !ok {
		return err
	}

	code := ierrors.ErrorSyntax
	if strings.Contains(pe.Message(), "<EOF>") {
		code = ierrors.ErrorUnterminatedLine
	}
	return &ierrors.InputError{
		Level:    ierrors.Error,
		Code:     code,
		Message:  pe.Message(),
		Position: toPosition(pe.Position()),
	}
}

func toPosition(pos lexer.Position) ierrors.Position {
	return ierrors.Position{Line: pos.Line, Column: pos.Column}
}

func validate(file *File) (*Formula, []*ierrors.InputError, error) {
	if file.NumVars < 0 || file.NumClauses < 0 {
		return nil, nil, &ierrors.InputError{
			Level:    ierrors.Error,
			Code:     ierrors.ErrorMalformedPreamble,
			Message:  fmt.Sprintf("preamble declares %d variables and %d clauses", file.NumVars, file.NumClauses),
			Position: toPosition(file.Pos),
		}
	}

	formula := &Formula{
		NumVars:    file.NumVars,
		NumClauses: file.NumClauses,
	}

	quantified := make(map[int]bool, file.NumVars)
	for _, decl := range file.Scopes {
		quant := Existential
		if decl.Forall {
			quant = Universal
		}
		scope := Scope{Quant: quant}
		for _, v := range decl.Vars {
			if v < 0 {
				return nil, nil, &ierrors.InputError{
					Level:    ierrors.Error,
					Code:     ierrors.ErrorQuantifiedNegatively,
					Message:  fmt.Sprintf("negative variable %d in scope line", v),
					Position: toPosition(decl.Pos),
				}
			}
			if v > file.NumVars {
				return nil, nil, &ierrors.InputError{
					Level:    ierrors.Error,
					Code:     ierrors.ErrorLiteralOutOfBounds,
					Message:  fmt.Sprintf("scope variable %d exceeds declared maximum %d", v, file.NumVars),
					Position: toPosition(decl.Pos),
				}
			}
			if quantified[v] {
				return nil, nil, &ierrors.InputError{
					Level:    ierrors.Error,
					Code:     ierrors.ErrorQuantifiedTwice,
					Message:  fmt.Sprintf("variable %d is quantified twice", v),
					Position: toPosition(decl.Pos),
				}
			}
			quantified[v] = true
			scope.Vars = append(scope.Vars, v)
		}
		formula.Scopes = append(formula.Scopes, scope)
	}

	if len(file.Clauses) > file.NumClauses {
		return nil, nil, &ierrors.InputError{
			Level:    ierrors.Error,
			Code:     ierrors.ErrorTooManyClauses,
			Message:  fmt.Sprintf("%d clauses exceed the declared %d", len(file.Clauses), file.NumClauses),
			Position: toPosition(file.Clauses[file.NumClauses].Pos),
		}
	}

	free := make(map[int]bool)
	for _, decl := range file.Clauses {
		clause := make([]int, 0, len(decl.Lits))
		for _, lit := range decl.Lits {
			v := lit
			if v < 0 {
				v = -v
			}
			if v > file.NumVars {
				return nil, nil, &ierrors.InputError{
					Level:    ierrors.Error,
					Code:     ierrors.ErrorLiteralOutOfBounds,
					Message:  fmt.Sprintf("literal %d exceeds declared maximum %d", lit, file.NumVars),
					Position: toPosition(decl.Pos),
				}
			}
			if !quantified[v] {
				free[v] = true
			}
			clause = append(clause, lit)
		}
		formula.Clauses = append(formula.Clauses, clause)
	}

	var warnings []*ierrors.InputError
	if len(free) > 0 {
		for v := range free {
			formula.FreeVars = append(formula.FreeVars, v)
		}
		sort.Ints(formula.FreeVars)
		if formula.IsQBF() {
			warnings = append(warnings, &ierrors.InputError{
				Level:    ierrors.Warning,
				Code:     ierrors.WarningFreeVariables,
				Message:  fmt.Sprintf("%d unquantified variables on QBF input", len(free)),
				Position: toPosition(file.Pos),
				Notes:    []string{ierrors.GetErrorDescription(ierrors.WarningFreeVariables)},
			})
		}
	}

	return formula, warnings, nil
}
