package value

import "github.com/mna/wisp/lang/table"

// Interner deduplicates String objects by content. It is the shared pool
// spec.md §3 and §4.3 require so that any two syntactic occurrences of an
// equal string literal, field name, or global/identifier name produce
// Strings that compare equal by reference: the same table.Table
// implementation used for globals, method tables, and field tables, keyed
// here directly by Go string content rather than by *String identity.
type Interner struct {
	pool *table.Table[string, *String]
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{pool: table.New[string, *String](HashString)}
}

// Intern returns the canonical *String for s, allocating one on first sight
// of this content and returning the existing one on every subsequent call.
func (in *Interner) Intern(s string) *String {
	if existing, ok := in.pool.Get(s); ok {
		return existing
	}
	str := NewString(s)
	in.pool.Set(s, str)
	return str
}

// Len reports how many distinct strings are currently interned.
func (in *Interner) Len() int { return in.pool.Len() }

// Remove drops s's entry from the pool. Used by the garbage collector's
// weak-reference sweep (spec.md §5): once a String is found unmarked at
// sweep time, its intern entry must not keep it reachable.
func (in *Interner) Remove(s string) { in.pool.Delete(s) }

// Each visits every interned string, in the table's unspecified bucket
// order. Used by the garbage collector's sweep pass to find dead entries.
func (in *Interner) Each(fn func(s string, str *String)) { in.pool.Each(fn) }
