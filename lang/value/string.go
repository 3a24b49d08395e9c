package value

// String is an immutable, interned byte sequence. Strings are created and
// deduplicated through the Interner (backed by a lang/table.Table); two
// Strings obtained from the same Interner with equal content are the same
// object (spec.md §3, §4.3).
type String struct {
	Header
	chars string
	hash  uint32
}

var _ Object = (*String)(nil)

// NewString constructs an unlinked, unmarked String object. Callers other
// than the Interner should not normally call this directly: use the Interner
// so that content-equal strings share identity.
func NewString(s string) *String {
	return &String{chars: s, hash: HashString(s)}
}

func (s *String) Kind() ObjKind { return ObjString }
func (s *String) String() string { return s.chars }
func (s *String) Go() string     { return s.chars }
func (s *String) Len() int       { return len(s.chars) }
func (s *String) Hash() uint32   { return s.hash }

// HashString computes the 32-bit FNV-1a hash of s, matching the hash used by
// Cellox's object_string_t (src/language-models/object.c).
func HashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
