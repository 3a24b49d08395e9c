package vm

import (
	"unsafe"

	"github.com/mna/wisp/lang/value"
)

// addr gives a total order over pointers into m.stack, mirroring clox's raw
// pointer-arithmetic comparisons on Value* (Go pointers support == and !=
// but not ordering operators).
func addr(p *value.Value) uintptr { return uintptr(unsafe.Pointer(p)) }

// callValue dispatches CALL on whatever kind of callable sits in callee,
// per spec.md §4.2: a Closure is called directly, a Native is invoked
// in-process, a Class constructs a new Instance (running "init" if present),
// and a BoundMethod rewrites the callee slot to its receiver before calling
// its underlying Closure.
func (m *Machine) callValue(callee value.Value, argCount int) error {
	if !callee.IsObject() {
		return m.runtimeError("Can only call functions and classes.")
	}

	switch fn := callee.AsObject().(type) {
	case *value.Closure:
		return m.call(fn, argCount)
	case *value.Native:
		argv := m.stack[m.stackTop-argCount : m.stackTop]
		result, err := fn.Fn(argCount, argv)
		if err != nil {
			return m.runtimeError("%s", err.Error())
		}
		m.stackTop -= argCount + 1
		m.push(result)
		return nil
	case *value.Class:
		inst := m.newInstance(fn)
		m.stack[m.stackTop-argCount-1] = value.Obj(inst)
		if initializer, ok := fn.Methods.Get(m.internString("init")); ok {
			return m.call(initializer.AsObject().(*value.Closure), argCount)
		}
		if argCount != 0 {
			return m.runtimeError("Expected 0 arguments but got %d.", argCount)
		}
		return nil
	case *value.BoundMethod:
		m.stack[m.stackTop-argCount-1] = fn.Receiver
		return m.call(fn.Method, argCount)
	default:
		return m.runtimeError("Can only call functions and classes.")
	}
}

// call pushes a new call frame for closure, checking arity and the frame
// depth limit (spec.md §4.2, §7).
func (m *Machine) call(closure *value.Closure, argCount int) error {
	if argCount != closure.Fn.Arity {
		return m.runtimeError("Expected %d arguments but got %d.", closure.Fn.Arity, argCount)
	}
	if m.frameCount == framesMax {
		return m.runtimeError("Stack overflow.")
	}

	frame := &m.frames[m.frameCount]
	m.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = m.stackTop - argCount - 1
	return nil
}

// invoke fuses GET_PROPERTY+CALL for a direct method call on an instance
// (spec.md §4.1.3's INVOKE instruction), avoiding the BoundMethod allocation
// that an unfused `obj.method()` would otherwise require.
func (m *Machine) invoke(name *value.String, argCount int) error {
	receiver := m.peek(argCount)
	if !receiver.IsObject() {
		return m.runtimeError("Only instances have methods.")
	}
	inst, ok := receiver.AsObject().(*value.Instance)
	if !ok {
		return m.runtimeError("Only instances have methods.")
	}

	if v, ok := inst.Fields.Get(name); ok {
		m.stack[m.stackTop-argCount-1] = v
		return m.callValue(v, argCount)
	}
	return m.invokeFromClass(inst.Class, name, argCount)
}

func (m *Machine) invokeFromClass(class *value.Class, name *value.String, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return m.runtimeError("Undefined property '%s'.", name.Go())
	}
	return m.call(method.AsObject().(*value.Closure), argCount)
}

// bindMethod looks up name on class, pushing a BoundMethod wrapping the
// current stack-top receiver if found. Returns false if no such method
// exists, leaving the error message to the caller (spec.md §4.1.5).
func (m *Machine) bindMethod(class *value.Class, name *value.String) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		return false
	}
	bound := m.newBoundMethod(m.peek(0), method.AsObject().(*value.Closure))
	m.pop()
	m.push(value.Obj(bound))
	return true
}

// defineMethod pops the closure just compiled for a method body and
// installs it, under name, on the class now at the top of the stack
// (spec.md §4.1.5).
func (m *Machine) defineMethod(name *value.String) {
	method := m.peek(0)
	class := m.peek(1).AsObject().(*value.Class)
	class.Methods.Set(name, method)
	m.pop()
}

// captureUpvalue returns the open Upvalue for the stack slot at index,
// reusing one already open for that slot if the VM-maintained open-upvalue
// list (ordered by descending stack address) already has one, and inserting
// a new one in the correct position otherwise (spec.md §3, §4.2).
func (m *Machine) captureUpvalue(slot int) *value.Upvalue {
	target := &m.stack[slot]
	var prev *value.Upvalue
	up := m.openUpvalues
	for up != nil && addr(up.Location) > addr(target) {
		prev = up
		up = up.Next
	}
	if up != nil && up.Location == target {
		return up
	}

	created := m.newOpenUpvalue(target)
	created.Next = up
	if prev == nil {
		m.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue pointing at or above stack slot
// last, hoisting their values off the stack (spec.md §4.2).
func (m *Machine) closeUpvalues(last int) {
	target := &m.stack[last]
	for m.openUpvalues != nil && addr(m.openUpvalues.Location) >= addr(target) {
		up := m.openUpvalues
		up.Close()
		m.openUpvalues = up.Next
	}
}
