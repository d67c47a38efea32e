package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a diagnostic
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
)

// Position is a location in the input file.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
}

// InputError is a structured front-end diagnostic with code and context
type InputError struct {
	Level    ErrorLevel
	Code     string // error code like Q0101
	Message  string // primary error message
	Position Position
	Length   int      // length of the problematic region
	Notes    []string // additional context notes
}

// Error implements the error interface so an InputError can travel through
// ordinary error returns.
func (ie *InputError) Error() string {
	if ie.Code != "" {
		return fmt.Sprintf("%s[%s]: %s (line %d, column %d)",
			ie.Level, ie.Code, ie.Message, ie.Position.Line, ie.Position.Column)
	}
	return fmt.Sprintf("%s: %s (line %d, column %d)",
		ie.Level, ie.Message, ie.Position.Line, ie.Position.Column)
}

// Reporter handles consistent diagnostic formatting for one input file
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter for a file's source text.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders a diagnostic with caret styling.
func (r *Reporter) Format(err *InputError) string {
	var result strings.Builder

	levelColor := r.getLevelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	// Header: error[Q0101]: message
	if err.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n",
			levelColor(string(err.Level)), err.Code, err.Message))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n",
			levelColor(string(err.Level)), err.Message))
	}

	// Location line: --> filename:line:column
	lineNumberWidth := numberWidth(err.Position.Line)
	indent := strings.Repeat(" ", lineNumberWidth)

	result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n",
		indent, dim("-->"), r.filename, err.Position.Line, err.Position.Column))

	// Offending line with caret underneath
	if err.Position.Line > 0 && err.Position.Line <= len(r.lines) {
		lineContent := r.lines[err.Position.Line-1]
		result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", lineNumberWidth, err.Position.Line)),
			dim("│"),
			lineContent))

		caretLen := err.Length
		if caretLen < 1 {
			caretLen = 1
		}
		col := err.Position.Column
		if col < 1 {
			col = 1
		}
		result.WriteString(fmt.Sprintf("%s %s %s%s\n",
			indent, dim("│"),
			strings.Repeat(" ", col-1),
			levelColor(strings.Repeat("^", caretLen))))
	}

	for _, note := range err.Notes {
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("= note:"), note))
	}

	return result.String()
}

func (r *Reporter) getLevelColor(level ErrorLevel) func(a ...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgCyan).SprintFunc()
	}
}

func numberWidth(n int) int {
	width := 1
	for n >= 10 {
		n /= 10
		width++
	}
	return width
}
