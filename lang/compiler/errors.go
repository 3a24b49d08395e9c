// Package compiler implements wisp's single-pass Pratt-precedence compiler:
// it drives a lang/scanner.Scanner and directly emits lang/opcode bytecode
// into a lang/value.Function's Chunk, resolving lexical scope and closure
// up-values as it goes (spec.md §4.1). There is no intermediate AST.
package compiler

import "fmt"

// CompileError describes one compile-time diagnostic: a source line, the
// offending lexeme (or "end" at EOF), and a message, formatted the way
// spec.md §7 requires: "[line L] Error at 'lexeme': message".
type CompileError struct {
	Line    int
	Where   string // "at 'lexeme'" or "at end"
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error %s: %s", e.Line, e.Where, e.Message)
}

// ErrorList accumulates every CompileError reported during a compilation, in
// the order they were detected. Panic-mode suppresses cascaded reports but
// never clears what has already been appended here.
type ErrorList []*CompileError

func (el ErrorList) Error() string {
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%d compile errors, first: %s", len(el), el[0].Error())
}

// Unwrap lets errors.Is/errors.As see through an ErrorList to its members.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}
