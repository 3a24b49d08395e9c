// Package table implements the open-addressed, linear-probing hash table
// used throughout wisp: the string intern pool, the VM's global-variable
// table, every class's method table, and every instance's field table all
// share this one implementation (spec.md §4.3).
package table

const maxLoadFactor = 0.75

// entry is a single probe-chain slot. A slot with neither occupied nor
// tombstone set is empty; a slot with tombstone set (and occupied cleared) is
// a tombstone, preserving the probe chain across deletion (spec.md §4.3).
type entry[K comparable, V any] struct {
	key       K
	value     V
	occupied  bool // false + tombstone==false means truly empty
	tombstone bool
}

// Table is a generic open-addressing hash map. The zero value is not usable
// (it has no hash function); construct one with New. Hash must return the
// same value for equal keys; it is supplied at
// construction because K may not itself know how to hash (e.g. *String
// caches its hash rather than recomputing it).
type Table[K comparable, V any] struct {
	entries []entry[K, V]
	count   int // occupied slots including tombstones, for load-factor purposes
	hash    func(K) uint32
	zeroKey K
}

// New returns an empty Table that hashes keys with hashFn.
func New[K comparable, V any](hashFn func(K) uint32) *Table[K, V] {
	return &Table[K, V]{hash: hashFn}
}

// Len returns the number of live (non-tombstone) entries.
func (t *Table[K, V]) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.occupied && !e.tombstone {
			n++
		}
	}
	return n
}

// Get returns the value stored under key and whether it was found.
func (t *Table[K, V]) Get(key K) (V, bool) {
	var zero V
	if len(t.entries) == 0 {
		return zero, false
	}
	e := t.find(key)
	if !e.occupied || e.tombstone {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, growing the table if needed. It returns true
// if this inserted a brand new key (as opposed to overwriting one).
func (t *Table[K, V]) Set(key K, value V) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		t.grow()
	}

	idx := t.findIndex(key)
	e := &t.entries[idx]
	isNew := !e.occupied
	if isNew && !e.tombstone {
		t.count++
	}
	e.key = key
	e.value = value
	e.occupied = true
	e.tombstone = false
	return isNew
}

// Delete removes key, leaving a tombstone behind so that probe chains
// through this slot survive for other keys (spec.md §4.3).
func (t *Table[K, V]) Delete(key K) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findIndex(key)
	e := &t.entries[idx]
	if !e.occupied || e.tombstone {
		return false
	}
	e.occupied = false
	e.tombstone = true
	e.key = t.zeroKey
	var zero V
	e.value = zero
	return true
}

// Each calls fn for every live entry, in arbitrary order. fn must not modify
// the table.
func (t *Table[K, V]) Each(fn func(key K, value V)) {
	for _, e := range t.entries {
		if e.occupied && !e.tombstone {
			fn(e.key, e.value)
		}
	}
}

// find locates the entry for key: either the occupied slot holding it, or,
// when key is absent, the first tombstone passed on its probe chain (or the
// empty slot ending the chain if there was none), which is where it would be
// inserted (mirrors Cellox's hash_table_find_entry).
func (t *Table[K, V]) find(key K) *entry[K, V] {
	return &t.entries[t.findIndex(key)]
}

func (t *Table[K, V]) findIndex(key K) int {
	mask := uint32(len(t.entries) - 1)
	idx := t.hash(key) & mask
	var tombstoneIdx int = -1
	for {
		e := &t.entries[idx]
		switch {
		case !e.occupied && !e.tombstone:
			// empty slot: end of probe chain
			if tombstoneIdx != -1 {
				return tombstoneIdx
			}
			return int(idx)
		case !e.occupied && e.tombstone:
			if tombstoneIdx == -1 {
				tombstoneIdx = int(idx)
			}
		case e.occupied && e.key == key:
			return int(idx)
		}
		idx = (idx + 1) & mask
	}
}

func (t *Table[K, V]) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]entry[K, V], newCap)
	t.count = 0
	for _, e := range old {
		if e.occupied && !e.tombstone {
			idx := t.findIndex(e.key)
			t.entries[idx] = entry[K, V]{key: e.key, value: e.value, occupied: true}
			t.count++
		}
	}
}
