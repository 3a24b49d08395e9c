// Package vm implements the stack-based bytecode virtual machine of spec.md
// §4.2: call frames, closures with open/closed upvalues, method dispatch and
// inheritance, and the mark-sweep garbage collector of spec.md §5.
package vm

import (
	"fmt"
	"io"
	"math"

	"github.com/dolthub/swiss"

	"github.com/mna/wisp/lang/opcode"
	"github.com/mna/wisp/lang/table"
	"github.com/mna/wisp/lang/value"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// callFrame is one activation record: the closure being executed, its
// instruction pointer, and the base stack slot its locals start at
// (spec.md §4.2).
type callFrame struct {
	closure *value.Closure
	ip      int
	slots   int
}

// Machine is one bytecode virtual machine instance. Its zero value is not
// usable; construct one with New. A Machine is not safe for concurrent use.
type Machine struct {
	Stdout io.Writer
	Stderr io.Writer

	stack    [stackMax]value.Value
	stackTop int

	frames     [framesMax]callFrame
	frameCount int

	globals  *table.Table[*value.String, value.Value]
	interner *value.Interner
	natives  *swiss.Map[string, *value.Native]

	openUpvalues *value.Upvalue

	objects        value.Object
	gray           []value.Object
	bytesAllocated int
	nextGC         int
}

// Option configures a Machine at construction time. See WithGCThreshold.
type Option func(*Machine)

// WithGCThreshold overrides the object-count threshold that triggers the
// first garbage collection (see gcGrowFactor/initialGCThreshold), so a host
// program can tune collection frequency without touching VM internals —
// wired from the wisp CLI's WISP_GC_THRESHOLD environment variable.
func WithGCThreshold(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.nextGC = n
		}
	}
}

// New returns a ready-to-run Machine. interner should be the same Interner
// the source was compiled with, so that compiled string constants and
// strings produced at runtime compare equal by reference (spec.md §3).
func New(interner *value.Interner, stdout, stderr io.Writer, opts ...Option) *Machine {
	m := &Machine{
		Stdout:   stdout,
		Stderr:   stderr,
		interner: interner,
		natives:  swiss.NewMap[string, *value.Native](8),
		nextGC:   initialGCThreshold,
	}
	m.globals = table.New[*value.String, value.Value](func(s *value.String) uint32 { return s.Hash() })
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefineNative registers a native function under name, reachable from wisp
// source as a global (spec.md's DOMAIN STACK native-function registry).
func (m *Machine) DefineNative(name string, fn func(argc int, argv []value.Value) (value.Value, error)) {
	native := &value.Native{Name: name, Fn: fn}
	m.natives.Put(name, native)
	key := m.internString(name)
	m.globals.Set(key, value.Obj(native))
}

func (m *Machine) push(v value.Value) {
	m.stack[m.stackTop] = v
	m.stackTop++
}

func (m *Machine) pop() value.Value {
	m.stackTop--
	return m.stack[m.stackTop]
}

func (m *Machine) peek(distance int) value.Value {
	return m.stack[m.stackTop-1-distance]
}

// Interpret runs fn (the top-level script Function produced by
// lang/compiler.Compile) to completion.
func (m *Machine) Interpret(fn *value.Function) (value.Value, error) {
	closure := m.newClosure(fn)
	m.push(value.Obj(closure))
	if err := m.call(closure, 0); err != nil {
		return value.Null, err
	}
	return m.run()
}

func (m *Machine) runtimeError(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	return m.runtimeErr(message)
}

func (m *Machine) runtimeErr(message string) error {
	err := &RuntimeError{Message: message}
	for i := m.frameCount - 1; i >= 0; i-- {
		f := &m.frames[i]
		line := f.closure.Fn.Chunk.LineAt(f.ip - 1)
		err.Trace = append(err.Trace, StackFrame{FuncName: f.closure.Fn.Name, Line: line})
	}
	m.resetStack()
	return err
}

// arrayIndex validates idxVal against spec.md §4.2's indexing rule (a
// non-negative integer) and returns it as an int, or a runtime error for
// anything else: non-numbers, fractional numbers such as 1.5, and negatives
// are rejected here rather than left to Array.Get/Set's bounds check, so the
// error message matches what a non-integer index produces.
func (m *Machine) arrayIndex(idxVal value.Value) (int, error) {
	if !idxVal.IsNumber() {
		return 0, m.runtimeError("Can only index arrays with numbers.")
	}
	n := idxVal.AsNumber()
	if n != math.Trunc(n) || n < 0 {
		return 0, m.runtimeError("Can only index arrays with numbers.")
	}
	return int(n), nil
}

func (m *Machine) resetStack() {
	m.stackTop = 0
	m.frameCount = 0
	m.openUpvalues = nil
}

// run is the VM's dispatch loop. It re-reads the active frame fields after
// any opcode that can push a new frame or pop one (CALL, INVOKE,
// SUPER_INVOKE, RETURN), since those mutate which frame is "current"
// (spec.md §4.2).
func (m *Machine) run() (value.Value, error) {
	frame := &m.frames[m.frameCount-1]
	chunk := &frame.closure.Fn.Chunk

	readByte := func() byte {
		b := chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi, lo := chunk.Code[frame.ip], chunk.Code[frame.ip+1]
		frame.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value { return chunk.Constants[readByte()] }
	readString := func() *value.String { return readConstant().AsObject().(*value.String) }

	for {
		op := opcode.Op(readByte())
		switch op {
		case opcode.CONSTANT:
			m.push(readConstant())
		case opcode.NULL:
			m.push(value.Null)
		case opcode.TRUE:
			m.push(value.Bool(true))
		case opcode.FALSE:
			m.push(value.Bool(false))
		case opcode.POP:
			m.pop()

		case opcode.GET_LOCAL:
			m.push(m.stack[frame.slots+int(readByte())])
		case opcode.SET_LOCAL:
			m.stack[frame.slots+int(readByte())] = m.peek(0)

		case opcode.GET_GLOBAL:
			name := readString()
			v, ok := m.globals.Get(name)
			if !ok {
				return value.Null, m.runtimeError("Undefined variable '%s'.", name.Go())
			}
			m.push(v)
		case opcode.DEFINE_GLOBAL:
			name := readString()
			m.globals.Set(name, m.peek(0))
			m.pop()
		case opcode.SET_GLOBAL:
			name := readString()
			if m.globals.Set(name, m.peek(0)) {
				m.globals.Delete(name)
				return value.Null, m.runtimeError("Undefined variable '%s'.", name.Go())
			}

		case opcode.GET_UPVALUE:
			m.push(*frame.closure.Upvalues[readByte()].Location)
		case opcode.SET_UPVALUE:
			*frame.closure.Upvalues[readByte()].Location = m.peek(0)

		case opcode.GET_PROPERTY:
			if !m.peek(0).IsObject() {
				return value.Null, m.runtimeError("Only instances have properties.")
			}
			inst, ok := m.peek(0).AsObject().(*value.Instance)
			if !ok {
				return value.Null, m.runtimeError("Only instances have properties.")
			}
			name := readString()
			if v, ok := inst.Fields.Get(name); ok {
				m.pop()
				m.push(v)
				break
			}
			if !m.bindMethod(inst.Class, name) {
				return value.Null, m.runtimeError("Undefined property '%s'.", name.Go())
			}
		case opcode.SET_PROPERTY:
			if !m.peek(1).IsObject() {
				return value.Null, m.runtimeError("Only instances have fields.")
			}
			inst, ok := m.peek(1).AsObject().(*value.Instance)
			if !ok {
				return value.Null, m.runtimeError("Only instances have fields.")
			}
			name := readString()
			inst.Fields.Set(name, m.peek(0))
			v := m.pop()
			m.pop()
			m.push(v)
		case opcode.GET_SUPER:
			name := readString()
			superclass := m.pop().AsObject().(*value.Class)
			if !m.bindMethod(superclass, name) {
				return value.Null, m.runtimeError("Undefined property '%s'.", name.Go())
			}

		case opcode.EQUAL:
			b, a := m.pop(), m.pop()
			m.push(value.Bool(value.Equal(a, b)))
		case opcode.GREATER, opcode.LESS:
			if !m.peek(0).IsNumber() || !m.peek(1).IsNumber() {
				return value.Null, m.runtimeError("Operands must be numbers.")
			}
			b, a := m.pop().AsNumber(), m.pop().AsNumber()
			if op == opcode.GREATER {
				m.push(value.Bool(a > b))
			} else {
				m.push(value.Bool(a < b))
			}

		case opcode.ADD:
			if err := m.add(); err != nil {
				return value.Null, err
			}
		case opcode.SUBTRACT, opcode.MULTIPLY, opcode.DIVIDE, opcode.MODULO, opcode.EXPONENT:
			if !m.peek(0).IsNumber() || !m.peek(1).IsNumber() {
				return value.Null, m.runtimeError("Operands must be numbers.")
			}
			b, a := m.pop().AsNumber(), m.pop().AsNumber()
			switch op {
			case opcode.SUBTRACT:
				m.push(value.Number(a - b))
			case opcode.MULTIPLY:
				m.push(value.Number(a * b))
			case opcode.DIVIDE:
				m.push(value.Number(a / b))
			case opcode.MODULO:
				m.push(value.Number(math.Mod(a, b)))
			case opcode.EXPONENT:
				m.push(value.Number(math.Pow(a, b)))
			}

		case opcode.NOT:
			m.push(value.Bool(!m.pop().Truthy()))
		case opcode.NEGATE:
			if !m.peek(0).IsNumber() {
				return value.Null, m.runtimeError("Operand must be a number.")
			}
			m.push(value.Number(-m.pop().AsNumber()))

		case opcode.PRINT:
			fmt.Fprintln(m.Stdout, m.pop().String())

		case opcode.JUMP:
			frame.ip += readShort()
		case opcode.JUMP_IF_FALSE:
			offset := readShort()
			if !m.peek(0).Truthy() {
				frame.ip += offset
			}
		case opcode.LOOP:
			frame.ip -= readShort()

		case opcode.CALL:
			argCount := int(readByte())
			if err := m.callValue(m.peek(argCount), argCount); err != nil {
				return value.Null, err
			}
			frame = &m.frames[m.frameCount-1]
			chunk = &frame.closure.Fn.Chunk

		case opcode.INVOKE:
			name := readString()
			argCount := int(readByte())
			if err := m.invoke(name, argCount); err != nil {
				return value.Null, err
			}
			frame = &m.frames[m.frameCount-1]
			chunk = &frame.closure.Fn.Chunk

		case opcode.SUPER_INVOKE:
			name := readString()
			argCount := int(readByte())
			superclass := m.pop().AsObject().(*value.Class)
			if err := m.invokeFromClass(superclass, name, argCount); err != nil {
				return value.Null, err
			}
			frame = &m.frames[m.frameCount-1]
			chunk = &frame.closure.Fn.Chunk

		case opcode.CLOSURE:
			fn := readConstant().AsObject().(*value.Function)
			closure := m.newClosure(fn)
			m.push(value.Obj(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal == 1 {
					closure.Upvalues[i] = m.captureUpvalue(frame.slots + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
		case opcode.CLOSE_UPVALUE:
			m.closeUpvalues(m.stackTop - 1)
			m.pop()

		case opcode.RETURN:
			result := m.pop()
			m.closeUpvalues(frame.slots)
			m.frameCount--
			if m.frameCount == 0 {
				m.pop()
				return result, nil
			}
			m.stackTop = frame.slots
			m.push(result)
			frame = &m.frames[m.frameCount-1]
			chunk = &frame.closure.Fn.Chunk

		case opcode.CLASS:
			m.push(value.Obj(m.newClass(readString())))
		case opcode.INHERIT:
			superVal := m.peek(1)
			superclass, ok := superVal.AsObject().(*value.Class)
			if !ok {
				return value.Null, m.runtimeError("Superclass must be a class.")
			}
			subclass := m.peek(0).AsObject().(*value.Class)
			superclass.Methods.Each(func(k *value.String, v value.Value) {
				subclass.Methods.Set(k, v)
			})
			m.pop()
		case opcode.METHOD:
			m.defineMethod(readString())

		case opcode.ARRAY:
			count := int(readByte())
			elems := make([]value.Value, count)
			copy(elems, m.stack[m.stackTop-count:m.stackTop])
			m.stackTop -= count
			m.push(value.Obj(m.newArray(elems)))
		case opcode.INDEX_OF:
			idxVal, arrVal := m.pop(), m.pop()
			arr, ok := arrVal.AsObject().(*value.Array)
			if !ok {
				return value.Null, m.runtimeError("Can only index arrays with numbers.")
			}
			idx, err := m.arrayIndex(idxVal)
			if err != nil {
				return value.Null, err
			}
			v, ok := arr.Get(idx)
			if !ok {
				return value.Null, m.runtimeError("Array index out of bounds.")
			}
			m.push(v)
		case opcode.SET_INDEX:
			v, idxVal, arrVal := m.pop(), m.pop(), m.pop()
			arr, ok := arrVal.AsObject().(*value.Array)
			if !ok {
				return value.Null, m.runtimeError("Can only index arrays with numbers.")
			}
			idx, err := m.arrayIndex(idxVal)
			if err != nil {
				return value.Null, err
			}
			if !arr.Set(idx, v) {
				return value.Null, m.runtimeError("Array index out of bounds.")
			}
			m.push(v)

		default:
			return value.Null, m.runtimeError("unknown opcode %s", op)
		}
	}
}

// add implements `+`: numeric addition, or strict string concatenation
// (spec.md's supplemented semantics — no implicit numeric-to-string
// coercion, matching Cellox's concatenate()).
func (m *Machine) add() error {
	b, a := m.peek(0), m.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		bn, an := m.pop().AsNumber(), m.pop().AsNumber()
		m.push(value.Number(an + bn))
	case isString(a) && isString(b):
		bs, as := m.pop().AsObject().(*value.String), m.pop().AsObject().(*value.String)
		m.push(value.Obj(m.internString(as.Go() + bs.Go())))
	default:
		return m.runtimeError("Operands must be two numbers or two strings.")
	}
	return nil
}

func isString(v value.Value) bool {
	if !v.IsObject() {
		return false
	}
	_, ok := v.AsObject().(*value.String)
	return ok
}
