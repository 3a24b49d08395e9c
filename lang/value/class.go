package value

import (
	"fmt"
	"strings"

	"github.com/mna/wisp/lang/table"
)

// hashStringKey is the Hash function lang/table.Table needs for *String
// keys; the hash is precomputed at string-construction time.
func hashStringKey(s *String) uint32 { return s.Hash() }

// newStringKeyedTable builds the *String-keyed table.Table used for both
// class method tables and instance field tables; the same table.Table
// implementation also backs the intern pool and globals (spec.md §4.3).
func newStringKeyedTable() *table.Table[*String, Value] {
	return table.New[*String, Value](hashStringKey)
}

// Class is a class: its name and a method table mapping method-name strings
// to Closures (spec.md §3).
type Class struct {
	Header
	Name    *String
	Methods *table.Table[*String, Value]
}

var _ Object = (*Class)(nil)

// NewClass allocates an empty Class named name.
func NewClass(name *String) *Class {
	return &Class{Name: name, Methods: newStringKeyedTable()}
}

func (c *Class) Kind() ObjKind  { return ObjClass }
func (c *Class) String() string { return c.Name.Go() }

// Instance is an instance of a Class: a reference to its class and a field
// table mapping field-name strings to Values (spec.md §3).
type Instance struct {
	Header
	Class  *Class
	Fields *table.Table[*String, Value]
}

var _ Object = (*Instance)(nil)

// NewInstance allocates an Instance of class with an empty field table.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: newStringKeyedTable()}
}

func (in *Instance) Kind() ObjKind { return ObjInstance }

// String renders the instance as "{field: value, ...}", quoting string
// field values, per spec.md §4.2's PRINT semantics. Field order follows the
// underlying open-addressed table's bucket order, which is unspecified.
func (in *Instance) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	in.Fields.Each(func(name *String, v Value) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s: %s", name.Go(), elemString(v))
	})
	sb.WriteByte('}')
	return sb.String()
}

// BoundMethod pairs a receiver Value with the Closure of a method looked up
// on it (spec.md §3): GET_PROPERTY on a method name produces one of these,
// and CALL on a BoundMethod rewrites the callee slot to Receiver before
// invoking Method.
type BoundMethod struct {
	Header
	Receiver Value
	Method   *Closure
}

var _ Object = (*BoundMethod)(nil)

func (bm *BoundMethod) Kind() ObjKind  { return ObjBoundMethod }
func (bm *BoundMethod) String() string { return bm.Method.String() }
