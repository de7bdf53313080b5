package estring

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether s and o hold the same content, regardless of how
// each one stores it.
func (s String) Equal(o String) bool {
	return bytes.Equal(s.content(), o.content())
}

// Compare orders strings by content, byte by byte. For valid UTF-8 this is
// code point order. The result is -1, 0 or +1.
func (s String) Compare(o String) int {
	return bytes.Compare(s.content(), o.content())
}

// Less reports whether s sorts before o.
func (s String) Less(o String) bool {
	return s.Compare(o) < 0
}

// Hash returns a 64-bit hash of the content.
func (s String) Hash() uint64 {
	return xxhash.Sum64(s.content())
}

// Compare is a comparison function for slices.SortFunc and friends.
func Compare(a, b String) int {
	return a.Compare(b)
}
