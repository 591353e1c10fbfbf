// errors.go: per-stage error types and caret-snippet rendering.
//
// Each pipeline stage has a small error struct carrying a 1-based Line and a
// 0-based Col. The solve orchestrator accumulates their Error() strings into
// the result; one bad line never blocks the rest of the document.
// WrapErrorWithSource renders a recognized error as a multi-line snippet with
// a caret pointing at the offending column:
//
//	PARSE ERROR at 3:12: unexpected token ')'
//
//	   2 | Width w: 4
//	   3 | Area = w * )
//	     |            ^
//	   4 | Area->
package mathpad

import (
	"fmt"
	"strings"
)

// ParseError is an expression syntax failure. It aborts parsing of the one
// expression that contained it; callers defer the line to a later solving
// pass rather than treating it as fatal.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// EvalError is an evaluation failure (undefined name, division by zero). It
// aborts that evaluation only.
type EvalError struct {
	Line int
	Col  int
	Msg  string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("EVAL ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
	}
	return fmt.Sprintf("EVAL ERROR: %s", e.Msg)
}

// SolveError is a per-equation solving failure (no root, degenerate
// equation). Recorded; other equations keep being processed.
type SolveError struct {
	Line int
	Msg  string
}

func (e *SolveError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("SOLVE ERROR at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("SOLVE ERROR: %s", e.Msg)
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes *ParseError and *EvalError
// and leaves other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	switch e := err.(type) {
	case *ParseError:
		return fmt.Errorf("%s", caretSnippet(src, "PARSE ERROR", e.Line, e.Col+1, e.Msg))
	case *EvalError:
		if e.Line > 0 {
			return fmt.Errorf("%s", caretSnippet(src, "EVAL ERROR", e.Line, e.Col+1, e.Msg))
		}
		return err
	default:
		return err
	}
}

// caretSnippet builds a snippet with a header and a caret. It shows at most
// one previous and one next line. Coordinates are 1-based and clamped to the
// source bounds.
func caretSnippet(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
