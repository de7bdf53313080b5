// Package estring implements the Escadra engine's variable-length string.
//
// # Storage
//
// A String keeps short content inline and moves long content to a heap
// buffer it owns exclusively:
//
//	content length    storage   capacity
//	──────────────────────────────────────
//	0..15             inline    15
//	16..              heap      (16 << k) - 1, smallest that fits
//
// The byte after the last content byte is always zero in either storage,
// because the engine reads these buffers as C strings. A value that has
// gone to the heap stays there: setting short content later reallocates a
// heap buffer of the current capacity class instead of moving back inline.
// This mirrors what the engine does and keeps packed images identical.
//
// Heap buffers are filled once and never written again. Set always
// installs a fresh buffer, so a plain struct copy never observes a later
// change made through another copy. Clone is the explicit deep copy.
//
// # Binary image
//
// Pack and Unpack translate between a String and its 32-byte image:
//
//	offset  size  field
//	───────────────────────────────────────────────
//	0       16    inline bytes, or heap pointer + 8 bytes padding
//	16      8     length   (u64, little-endian)
//	24      8     capacity (u64, little-endian)
//
// The heap pointer is an address in whatever memory receives the image;
// HeapImage returns the capacity+1 bytes that belong there.
//
// # Value semantics
//
// Equal, Compare and Hash look only at content. An inline and a heap value
// holding the same text are equal and hash the same. JSON, YAML and text
// encodings carry only the content as a single scalar.
package estring
