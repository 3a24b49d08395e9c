package compiler

import (
	"github.com/mna/wisp/lang/opcode"
	"github.com/mna/wisp/lang/token"
	"github.com/mna/wisp/lang/value"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(opcode.NULL)
	}
	c.consume(token.SEMI, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after expression.")
	c.emitOp(opcode.POP)
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after value.")
	c.emitOp(opcode.PRINT)
}

// ifStatement lowers `if (c) T else E` per spec.md §4.1.4: the condition's
// POP is split across both branches so that it always executes exactly
// once, regardless of which branch is taken.
func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(opcode.JUMP_IF_FALSE)
	c.emitOp(opcode.POP)
	c.statement()

	elseJump := c.emitJump(opcode.JUMP)
	c.patchJump(thenJump)
	c.emitOp(opcode.POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

// whileStatement lowers `while (c) B` per spec.md §4.1.4.
func (c *Compiler) whileStatement() {
	loopStart := c.chunk().Len()
	c.fs.loops = append(c.fs.loops, &loop{start: loopStart, scopeDepth: c.fs.scopeDepth})

	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(opcode.JUMP_IF_FALSE)
	c.emitOp(opcode.POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(opcode.POP)

	c.patchLoopBreaks()
}

// forStatement desugars `for (init; cond; incr) B` in its own scope: the
// body jumps over the increment clause on first entry, then falls through to
// the condition, giving the standard one-backward-branch-per-iteration
// semantics (spec.md §4.1.4).
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.chunk().Len()
	c.fs.loops = append(c.fs.loops, &loop{start: loopStart, scopeDepth: c.fs.scopeDepth})
	exitJump := -1

	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = c.emitJump(opcode.JUMP_IF_FALSE)
		c.emitOp(opcode.POP)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(opcode.JUMP)
		incrStart := c.chunk().Len()
		c.expression()
		c.emitOp(opcode.POP)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.fs.currentLoop().start = loopStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(opcode.POP)
	}

	c.patchLoopBreaks()
	c.endScope()
}

// patchLoopBreaks patches every break's placeholder jump, emitted during the
// loop body just compiled, to land here (the loop's end), then pops the loop
// from the enclosing stack.
func (c *Compiler) patchLoopBreaks() {
	lp := c.fs.loops[len(c.fs.loops)-1]
	c.fs.loops = c.fs.loops[:len(c.fs.loops)-1]
	for _, off := range lp.breakJumps {
		c.patchJump(off)
	}
}

func (c *Compiler) breakStatement() {
	lp := c.fs.currentLoop()
	if lp == nil {
		c.error("Can't use 'break' outside of a loop.")
		c.consume(token.SEMI, "Expect ';' after 'break'.")
		return
	}
	c.closeLocalsAbove(lp.scopeDepth)
	jump := c.emitJump(opcode.JUMP)
	lp.breakJumps = append(lp.breakJumps, jump)
	c.consume(token.SEMI, "Expect ';' after 'break'.")
}

func (c *Compiler) continueStatement() {
	lp := c.fs.currentLoop()
	if lp == nil {
		c.error("Can't use 'continue' outside of a loop.")
		c.consume(token.SEMI, "Expect ';' after 'continue'.")
		return
	}
	c.closeLocalsAbove(lp.scopeDepth)
	c.emitLoop(lp.start)
	c.consume(token.SEMI, "Expect ';' after 'continue'.")
}

// closeLocalsAbove emits the POP/CLOSE_UPVALUE cleanup for every local
// declared deeper than depth, without actually removing them from the
// compiler's locals array (the enclosing block is still being compiled).
// Used by break/continue to unwind the stack past the loop body's scope.
func (c *Compiler) closeLocalsAbove(depth int) {
	fs := c.fs
	for i := len(fs.locals) - 1; i >= 0 && fs.locals[i].depth > depth; i-- {
		if fs.locals[i].captured {
			c.emitOp(opcode.CLOSE_UPVALUE)
		} else {
			c.emitOp(opcode.POP)
		}
	}
}

func (c *Compiler) returnStatement() {
	if c.fs.typ == typeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMI) {
		c.emitReturn()
		return
	}
	if c.fs.typ == typeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMI, "Expect ';' after return value.")
	c.emitOp(opcode.RETURN)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

// function compiles the parameter list and body of a function/method literal
// as a nested Compiler state, then emits CLOSURE with one (isLocal, index)
// pair per upvalue the nested function captured (spec.md §4.1.3).
func (c *Compiler) function(typ funcType) {
	name := c.previous.Lexeme
	c.fs = newFuncState(c.fs, typ, name)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fs.fn.Arity++
			if c.fs.fn.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")

	c.block()
	upvalues := c.fs.upvalues // read before endFunction pops back to enclosing
	fn := c.endFunction()

	c.emitOpByte(opcode.CLOSURE, c.makeConstant(value.Obj(fn)))
	for _, up := range upvalues {
		if up.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(up.index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "Expect class name.")
	className := c.previous
	nameConstant := c.identifierConstant(className.Lexeme)
	c.declareVariable()

	c.emitOpByte(opcode.CLASS, nameConstant)
	c.defineVariable(nameConstant)

	cls := &classState{enclosing: c.class}
	c.class = cls

	if c.match(token.DOUBLEDOT) {
		c.consume(token.IDENT, "Expect superclass name.")
		c.variable(false)
		if c.previous.Lexeme == className.Lexeme {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariable(className, false)
		c.emitOp(opcode.INHERIT)
		cls.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(opcode.POP)

	if cls.hasSuperclass {
		c.endScope()
	}
	c.class = cls.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENT, "Expect method name.")
	name := c.previous.Lexeme
	constant := c.identifierConstant(name)

	typ := typeMethod
	if name == "init" {
		typ = typeInitializer
	}
	c.function(typ)
	c.emitOpByte(opcode.METHOD, constant)
}
