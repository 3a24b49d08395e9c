package compiler

import (
	"github.com/mna/wisp/lang/opcode"
	"github.com/mna/wisp/lang/scanner"
	"github.com/mna/wisp/lang/token"
	"github.com/mna/wisp/lang/value"
)

// Compiler is a single-pass Pratt-precedence compiler. One Compiler compiles
// one source string to completion; it is not reusable. Construct one with
// Compile rather than directly.
type Compiler struct {
	scanner  *scanner.Scanner
	interner *value.Interner

	previous token.Token
	current  token.Token

	fs        *funcState
	class     *classState
	errs      ErrorList
	panicMode bool
}

// Compile compiles source into a top-level Function whose Chunk executes the
// program (spec.md §4.1). On any compile error it returns a nil Function and
// a non-nil error satisfying Unwrap() []error (an ErrorList); spec.md §7
// requires that the VM never run a program that failed to compile.
//
// interner is the string pool shared with the VM that will run the result
// (and, in a REPL, with every other Compile call in the session), so that
// string constants compare equal by reference with runtime strings of equal
// content (spec.md §3's string-identity invariant). Pass value.NewInterner()
// for a one-off compile.
func Compile(source string, interner *value.Interner) (*value.Function, error) {
	c := &Compiler{scanner: scanner.New(source), interner: interner}
	c.fs = newFuncState(nil, typeScript, "")

	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "Expect end of expression.")

	fn := c.endFunction()
	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return fn, nil
}

// --- token stream plumbing -------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Scan()
		if c.current.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, message string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- error reporting and panic-mode synchronization -------------------------

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	where := "at '" + tok.Lexeme + "'"
	if tok.Kind == token.EOF {
		where = "at end"
	}
	c.errs = append(c.errs, &CompileError{Line: tok.Line, Where: where, Message: message})
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so that later, independent errors can still be reported (spec.md §4.1.6).
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMI {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE,
			token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- bytecode emission -------------------------------------------------------

func (c *Compiler) chunk() *value.Chunk { return &c.fs.fn.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.chunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op opcode.Op) {
	c.chunk().WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitOpByte(op opcode.Op, arg byte) {
	c.emitOp(op)
	c.emitByte(arg)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(opcode.CONSTANT, c.makeConstant(v))
}

// makeConstant appends v to the current function's constant pool and returns
// its index, reporting an error if the 256-entry limit is exceeded
// (spec.md §4.1.3).
func (c *Compiler) makeConstant(v value.Value) byte {
	if len(c.chunk().Constants) >= value.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(c.chunk().AddConstant(v))
}

// emitJump emits op followed by a two-byte placeholder and returns the
// offset of the placeholder, to be patched later by patchJump
// (spec.md §4.1.3).
func (c *Compiler) emitJump(op opcode.Op) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.chunk().Len() - 2
}

// patchJump backpatches the two-byte placeholder at offset to jump to the
// current end of the chunk's code.
func (c *Compiler) patchJump(offset int) {
	jump := c.chunk().Len() - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

// emitLoop emits a LOOP instruction that jumps back to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(opcode.LOOP)
	offset := c.chunk().Len() - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) emitReturn() {
	if c.fs.typ == typeInitializer {
		c.emitOpByte(opcode.GET_LOCAL, 0)
	} else {
		c.emitOp(opcode.NULL)
	}
	c.emitOp(opcode.RETURN)
}

// endFunction finishes compiling the current function, pops back to the
// enclosing funcState, and returns the finished Function.
func (c *Compiler) endFunction() *value.Function {
	c.emitReturn()
	fn := c.fs.fn
	fn.UpvalueCount = len(c.fs.upvalues)
	c.fs = c.fs.enclosing
	return fn
}

// identifierConstant interns name as a string constant and returns its
// constant-pool index, for use as a GET/SET_GLOBAL/PROPERTY/METHOD operand.
func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(value.Obj(c.interner.Intern(name)))
}
