package script

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("syntax error")
	// ErrExtract is matched by every *ExtractError.
	ErrExtract = errors.New("extract error")
)

// SyntaxError reports a token sequence that matches no grammar production.
// It aborts parsing of the file it occurred in.
type SyntaxError struct {
	Filename string
	Line     int
	Column   int
	Found    string
	Expected string
}

func (e *SyntaxError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.Filename != "" {
		loc = e.Filename + ":" + loc
	}
	return fmt.Sprintf("%s: syntax error: expected %s, found %s", loc, e.Expected, e.Found)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Diagnostic converts the error to a fatal parser diagnostic.
func (e *SyntaxError) Diagnostic() Diagnostic {
	return Diagnostic{
		Severity: SeverityFatal,
		Code:     "parse-error",
		Phase:    "parser",
		Message:  fmt.Sprintf("expected %s, found %s", e.Expected, e.Found),
		File:     e.Filename,
		Line:     e.Line,
		Column:   e.Column,
	}
}

// ExtractError reports that an extractor could not produce any usable
// record from a document.
type ExtractError struct {
	Filename string
	Kind     string // record kind, e.g. "state"
	Reason   string
}

func (e *ExtractError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s: extract %s: %s", e.Filename, e.Kind, e.Reason)
	}
	return fmt.Sprintf("extract %s: %s", e.Kind, e.Reason)
}

// Is reports whether target is ErrExtract.
func (e *ExtractError) Is(target error) bool {
	return target == ErrExtract
}
