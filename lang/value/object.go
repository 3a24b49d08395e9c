package value

// ObjKind discriminates the heap object kinds of spec.md §3.
type ObjKind uint8

const (
	ObjString ObjKind = iota
	ObjFunction
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjNative
	ObjArray
)

var objKindNames = [...]string{
	ObjString:      "string",
	ObjFunction:    "function",
	ObjClosure:     "closure",
	ObjUpvalue:     "upvalue",
	ObjClass:       "class",
	ObjInstance:    "instance",
	ObjBoundMethod: "bound method",
	ObjNative:      "native function",
	ObjArray:       "array",
}

func (k ObjKind) String() string { return objKindNames[k] }

// Object is the common interface implemented by every heap-allocated value.
// Every concrete Object embeds Header, which the garbage collector uses to
// thread every allocation into a single sweep list (spec.md §3, "common
// header: kind, mark bit, next pointer").
type Object interface {
	Kind() ObjKind
	String() string

	// header returns the object's GC bookkeeping header.
	header() *Header
}

// Header is embedded in every Object. It is never read directly outside of
// lang/vm's garbage collector.
type Header struct {
	marked bool
	next   Object
}

func (h *Header) header() *Header { return h }

// Marked reports whether the object's mark bit is set.
func (h *Header) Marked() bool { return h.marked }

// SetMarked sets or clears the object's mark bit.
func (h *Header) SetMarked(m bool) { h.marked = m }

// Next returns the next object in the heap's allocation list.
func (h *Header) Next() Object { return h.next }

// SetNext threads the object into the heap's allocation list.
func (h *Header) SetNext(o Object) { h.next = o }

// HeaderOf exposes o's GC bookkeeping header. It is implemented by every
// concrete Object via the embedded Header field.
func HeaderOf(o Object) *Header { return o.header() }
