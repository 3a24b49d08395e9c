package value

import "fmt"

// Function is a compiled function: its arity, the number of upvalues it
// closes over, an optional name (empty for the top-level script), and its
// Chunk. Functions are produced by the compiler and wrapped in a Closure
// before they can be called (spec.md §3).
type Function struct {
	Header
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        Chunk
}

var _ Object = (*Function)(nil)

func (f *Function) Kind() ObjKind { return ObjFunction }

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// Closure pairs a Function with the upvalues it captured at the moment of
// its construction (spec.md §3). UpvalueCount on Fn must equal len(Upvalues).
type Closure struct {
	Header
	Fn       *Function
	Upvalues []*Upvalue
}

var _ Object = (*Closure)(nil)

func (c *Closure) Kind() ObjKind { return ObjClosure }
func (c *Closure) String() string { return c.Fn.String() }

// NewClosure allocates a Closure wrapping fn with fn.UpvalueCount empty
// upvalue slots, ready to be filled in by the CLOSURE instruction.
func NewClosure(fn *Function) *Closure {
	return &Closure{Fn: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}

// Upvalue is either open (Location points at a live VM stack slot) or closed
// (it owns Closed, its own copy of the value). Open upvalues for the same
// stack slot are shared and are additionally linked, by the VM, into a
// single list ordered by descending stack address (spec.md §3, §4.2).
type Upvalue struct {
	Header
	Location *Value // points into the VM stack while open, or &Closed once closed
	Closed   Value
	Next     *Upvalue // VM-maintained open-upvalue list link
}

var _ Object = (*Upvalue)(nil)

func (u *Upvalue) Kind() ObjKind { return ObjUpvalue }
func (u *Upvalue) String() string { return "<upvalue>" }

// NewOpenUpvalue returns an Upvalue whose Location points at slot.
func NewOpenUpvalue(slot *Value) *Upvalue {
	u := &Upvalue{}
	u.Location = slot
	return u
}

// Close hoists the upvalue's current value into its own storage and
// repoints Location at that storage, matching spec.md §4.2's "closing"
// operation.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// Native is a heap reference to a host function of fixed (argc, argv) shape.
// Only the registration/invocation interface is specified; the bodies of any
// natives are host collaborators (spec.md §1, out of scope).
type Native struct {
	Header
	Name string
	Fn   func(argc int, argv []Value) (Value, error)
}

var _ Object = (*Native)(nil)

func (n *Native) Kind() ObjKind  { return ObjNative }
func (n *Native) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }
