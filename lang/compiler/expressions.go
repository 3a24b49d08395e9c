package compiler

import (
	"strconv"

	"github.com/mna/wisp/lang/opcode"
	"github.com/mna/wisp/lang/token"
	"github.com/mna/wisp/lang/value"
)

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

// parsePrecedence is the Pratt-parser driver of spec.md §4.1.1: it consumes
// one prefix expression, then folds in infix operators whose precedence
// meets the floor, threading canAssign through both so that only a
// genuinely assignable prefix/infix result accepts a trailing '=' or
// compound-assignment operator.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefixRule := getRule(c.previous.Kind).prefix
	if prefixRule == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefixRule(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infixRule := getRule(c.previous.Kind).infix
		infixRule(c, canAssign)
	}

	if canAssign && isAssignOp(c.current.Kind) {
		c.advance()
		c.error("Invalid assignment target.")
	}
}

func isAssignOp(k token.Kind) bool {
	switch k {
	case token.EQ, token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ,
		token.PERCENT_EQ, token.STARSTAR_EQ:
		return true
	}
	return false
}

// matchCompoundOp consumes and returns the ADD/SUBTRACT/... opcode
// corresponding to a `+=`-style operator at c.current, or ok=false if none
// matches. Compound assignment desugars to a single load-compute-store
// sequence against the already-resolved slot (spec.md's compound-assignment
// semantics, supplemented from original_source/src/compiler.c).
func (c *Compiler) matchCompoundOp() (op opcode.Op, ok bool) {
	switch c.current.Kind {
	case token.PLUS_EQ:
		op = opcode.ADD
	case token.MINUS_EQ:
		op = opcode.SUBTRACT
	case token.STAR_EQ:
		op = opcode.MULTIPLY
	case token.SLASH_EQ:
		op = opcode.DIVIDE
	case token.PERCENT_EQ:
		op = opcode.MODULO
	case token.STARSTAR_EQ:
		op = opcode.EXPONENT
	default:
		return 0, false
	}
	c.advance()
	return op, true
}

func (c *Compiler) number(canAssign bool) {
	n, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(value.Number(n))
}

// stringLit: the scanner already resolved escapes, so Lexeme is the string's
// content with no surrounding quotes (lang/scanner's contract).
func (c *Compiler) stringLit(canAssign bool) {
	c.emitConstant(value.Obj(c.interner.Intern(c.previous.Lexeme)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(opcode.FALSE)
	case token.TRUE:
		c.emitOp(opcode.TRUE)
	case token.NULL:
		c.emitOp(opcode.NULL)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opType {
	case token.BANG:
		c.emitOp(opcode.NOT)
	case token.MINUS:
		c.emitOp(opcode.NEGATE)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Kind
	r := getRule(opType)
	c.parsePrecedence(r.precedence + 1)

	switch opType {
	case token.PLUS:
		c.emitOp(opcode.ADD)
	case token.MINUS:
		c.emitOp(opcode.SUBTRACT)
	case token.STAR:
		c.emitOp(opcode.MULTIPLY)
	case token.SLASH:
		c.emitOp(opcode.DIVIDE)
	case token.PERCENT:
		c.emitOp(opcode.MODULO)
	case token.STARSTAR:
		c.emitOp(opcode.EXPONENT)
	case token.EQ_EQ:
		c.emitOp(opcode.EQUAL)
	case token.BANG_EQ:
		c.emitOp(opcode.EQUAL)
		c.emitOp(opcode.NOT)
	case token.GT:
		c.emitOp(opcode.GREATER)
	case token.GT_EQ:
		c.emitOp(opcode.LESS)
		c.emitOp(opcode.NOT)
	case token.LT:
		c.emitOp(opcode.LESS)
	case token.LT_EQ:
		c.emitOp(opcode.GREATER)
		c.emitOp(opcode.NOT)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(opcode.JUMP_IF_FALSE)
	c.emitOp(opcode.POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(opcode.JUMP_IF_FALSE)
	endJump := c.emitJump(opcode.JUMP)
	c.patchJump(elseJump)
	c.emitOp(opcode.POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOpByte(opcode.CALL, argCount)
}

// argumentList parses a parenthesized, comma-separated expression list up to
// the closing ')' already implied by the call site (the '(' was consumed by
// the caller via match). Capped at 255 per spec.md §4.1.3's one-byte operand.
func (c *Compiler) argumentList() byte {
	var argCount int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argCount == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argCount)
}

func (c *Compiler) indexOf(canAssign bool) {
	c.expression()
	c.consume(token.RBRACK, "Expect ']' after index.")

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOp(opcode.SET_INDEX)
	default:
		c.emitOp(opcode.INDEX_OF)
	}
}

// arrayLiteral compiles a `{e1, e2, ...}` brace literal (spec.md's Open
// Question on array syntax, resolved per SPEC_FULL.md in favor of Cellox's
// brace-literal form so it shares no tokens with block statements in
// expression position). LBRACE was already consumed as the prefix token.
func (c *Compiler) arrayLiteral(canAssign bool) {
	var count int
	if !c.check(token.RBRACE) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 elements in an array literal.")
			}
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RBRACE, "Expect '}' after array literal.")
	c.emitOpByte(opcode.ARRAY, byte(count))
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lexeme)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOpByte(opcode.SET_PROPERTY, name)
	case canAssign:
		if op, ok := c.matchCompoundOp(); ok {
			c.emitOpByte(opcode.GET_PROPERTY, name)
			c.expression()
			c.emitOp(op)
			c.emitOpByte(opcode.SET_PROPERTY, name)
			return
		}
		fallthrough
	default:
		if c.match(token.LPAREN) {
			argCount := c.argumentList()
			c.emitOpByte(opcode.INVOKE, name)
			c.emitByte(argCount)
			return
		}
		c.emitOpByte(opcode.GET_PROPERTY, name)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable resolves name to a local slot, an upvalue, or (failing both)
// a global by name, then compiles a read, a plain assignment, or a compound
// assignment against whichever get/set opcode pair that resolution selected
// (spec.md §4.1.2, §4.2).
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp opcode.Op
	arg := c.resolveLocal(c.fs, name.Lexeme)
	if arg != -1 {
		getOp, setOp = opcode.GET_LOCAL, opcode.SET_LOCAL
	} else if arg = c.resolveUpvalue(c.fs, name.Lexeme); arg != -1 {
		getOp, setOp = opcode.GET_UPVALUE, opcode.SET_UPVALUE
	} else {
		arg = int(c.identifierConstant(name.Lexeme))
		getOp, setOp = opcode.GET_GLOBAL, opcode.SET_GLOBAL
	}

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	case canAssign:
		if op, ok := c.matchCompoundOp(); ok {
			c.emitOpByte(getOp, byte(arg))
			c.expression()
			c.emitOp(op)
			c.emitOpByte(setOp, byte(arg))
			return
		}
		fallthrough
	default:
		c.emitOpByte(getOp, byte(arg))
	}
}

var thisToken = token.Token{Kind: token.IDENT, Lexeme: "this"}
var superToken = token.Token{Kind: token.IDENT, Lexeme: "super"}

func (c *Compiler) this(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable(thisToken, false)
}

// super compiles both `super.method` (GET_SUPER) and the fused
// `super.method(...)` call (SUPER_INVOKE), per spec.md §4.1.5.
func (c *Compiler) super(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable(thisToken, false)
	if c.match(token.LPAREN) {
		argCount := c.argumentList()
		c.namedVariable(superToken, false)
		c.emitOpByte(opcode.SUPER_INVOKE, name)
		c.emitByte(argCount)
		return
	}
	c.namedVariable(superToken, false)
	c.emitOpByte(opcode.GET_SUPER, name)
}
