package compiler

import "github.com/mna/wisp/lang/value"

// funcType distinguishes the kind of function currently being compiled. It
// drives slot-0 naming, the default return value, and whether `return` and
// `return <expr>;` are legal (spec.md §4.1.2, §4.1.5); the legality of
// `this`/`super` is checked against classState instead.
type funcType int

const (
	typeFunction funcType = iota
	typeScript
	typeMethod
	typeInitializer
)

const (
	maxLocals   = 256
	maxUpvalues = 256
)

// local is one entry of a funcState's locals array. depth -1 marks a local
// whose initializer is still being compiled, preventing `var x = x;` from
// resolving to itself (spec.md §4.1.2).
type local struct {
	name     string
	depth    int
	captured bool
}

// upvalueRef records how a captured variable reaches this function: either
// directly from the immediately enclosing function's locals (isLocal=true,
// index is a local slot) or relayed through that function's own upvalue list
// (isLocal=false, index is an upvalue index there).
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// loop records the bookkeeping needed to patch break/continue jumps once a
// while/for loop's body and LOOP instruction have been emitted.
type loop struct {
	start       int // where `continue` jumps to: the condition, or a for loop's increment clause
	scopeDepth  int
	breakJumps  []int // offsets of placeholder operands to patch to the loop's end
}

// funcState holds the compiler's bookkeeping for the function currently
// being compiled: its locals, upvalues, scope depth, and a link to the
// enclosing function's funcState (spec.md §4.1.2).
type funcState struct {
	enclosing *funcState
	fn        *value.Function
	typ       funcType

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int

	loops []*loop
}

func newFuncState(enclosing *funcState, typ funcType, name string) *funcState {
	fs := &funcState{
		enclosing: enclosing,
		typ:       typ,
		fn:        &value.Function{Name: name},
	}
	// Slot 0 is reserved: "this" for methods/initializers, anonymous otherwise.
	slot0 := ""
	if typ == typeMethod || typ == typeInitializer {
		slot0 = "this"
	}
	fs.locals = append(fs.locals, local{name: slot0, depth: 0})
	return fs
}

func (fs *funcState) currentLoop() *loop {
	if len(fs.loops) == 0 {
		return nil
	}
	return fs.loops[len(fs.loops)-1]
}

// classState tracks the class currently being compiled, chained to the
// enclosing class (for nested class bodies), so that `this` and `super` can
// be validated (spec.md §4.1.5).
type classState struct {
	enclosing      *classState
	hasSuperclass  bool
}
