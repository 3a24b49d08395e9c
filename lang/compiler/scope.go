package compiler

import (
	"github.com/mna/wisp/lang/opcode"
	"github.com/mna/wisp/lang/token"
)

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

// endScope pops every local declared at the scope being closed. A captured
// local is hoisted to the heap with CLOSE_UPVALUE; an ordinary one is just
// popped (spec.md §4.1.2).
func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	fs := c.fs
	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].depth > fs.scopeDepth {
		if fs.locals[len(fs.locals)-1].captured {
			c.emitOp(opcode.CLOSE_UPVALUE)
		} else {
			c.emitOp(opcode.POP)
		}
		fs.locals = fs.locals[:len(fs.locals)-1]
	}
}

// declareVariable registers the identifier in c.previous as a new local in
// the current scope (a no-op at global scope, where names resolve
// dynamically by string). Shadowing a name already declared at the same
// depth is an error (spec.md §4.1.2).
func (c *Compiler) declareVariable() {
	if c.fs.scopeDepth == 0 {
		return
	}
	name := c.previous.Lexeme
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		l := c.fs.locals[i]
		if l.depth != -1 && l.depth < c.fs.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.fs.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name, depth: -1})
}

// markInitialized sets the most recently declared local's depth to the
// current scope depth, making it visible to name resolution. It is a no-op
// at global scope (globals have no "uninitialized" state).
func (c *Compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

// parseVariable consumes an identifier, declares it as a local if inside a
// scope, and returns the constant-pool index to use for DEFINE_GLOBAL if it
// is a global (0 otherwise, unused).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	c.declareVariable()
	if c.fs.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous.Lexeme)
}

// defineVariable finishes a variable declaration: a local just needs its
// depth marked initialized, a global needs DEFINE_GLOBAL emitted.
func (c *Compiler) defineVariable(global byte) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(opcode.DEFINE_GLOBAL, global)
}

// resolveLocal searches fs's locals, top-down, for name, returning its slot
// or -1 if not found. Reading a local whose depth is still -1 (its own
// initializer) is an error (spec.md §4.1.2).
func (c *Compiler) resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue recursively resolves name as an upvalue: a local in the
// immediately enclosing function, or an upvalue there relayed from further
// out. It marks the captured local's captured flag and deduplicates repeat
// captures within a function (spec.md §4.1.2).
func (c *Compiler) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].captured = true
		return c.addUpvalue(fs, uint8(local), true)
	}
	if up := c.resolveUpvalue(fs.enclosing, name); up != -1 {
		return c.addUpvalue(fs, uint8(up), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *funcState, index uint8, isLocal bool) int {
	for i, up := range fs.upvalues {
		if up.index == index && up.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}
