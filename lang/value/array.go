package value

import "strings"

// Array is a dynamic, contiguous sequence of Values (spec.md §3). It backs
// both array literals and the value produced/consumed by INDEX_OF and
// SET_INDEX.
type Array struct {
	Header
	Elems []Value
}

var _ Object = (*Array)(nil)

// NewArray allocates an Array with a copy of elems.
func NewArray(elems []Value) *Array {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return &Array{Elems: cp}
}

func (a *Array) Kind() ObjKind { return ObjArray }

func (a *Array) Len() int { return len(a.Elems) }

// Get returns the element at i and whether i was in bounds.
func (a *Array) Get(i int) (Value, bool) {
	if i < 0 || i >= len(a.Elems) {
		return Value{}, false
	}
	return a.Elems[i], true
}

// Set overwrites the element at i, returning false if i is out of bounds.
func (a *Array) Set(i int, v Value) bool {
	if i < 0 || i >= len(a.Elems) {
		return false
	}
	a.Elems[i] = v
	return true
}

// Append grows the array by one element.
func (a *Array) Append(v Value) { a.Elems = append(a.Elems, v) }

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range a.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(elemString(e))
	}
	sb.WriteByte('}')
	return sb.String()
}

// elemString renders a Value the way it appears nested inside an array or
// instance print: strings are quoted, everything else uses its normal String
// form (spec.md §4.2, PRINT semantics).
func elemString(v Value) string {
	if v.IsObject() {
		if s, ok := v.AsObject().(*String); ok {
			return `"` + s.Go() + `"`
		}
	}
	return v.String()
}
