package estring

import (
	"fmt"
	"unicode/utf8"
	"unsafe"

	"github.com/fleetmod/escadra/errors"
)

const (
	// InlineCap is the longest content kept inside the value itself.
	InlineCap = 15

	// MaxCapacity bounds heap growth; larger requests fail with an
	// allocation error instead of exhausting the process.
	MaxCapacity = 1<<30 - 1

	inlineSize = InlineCap + 1
)

// String is a UTF-8 string stored inline when it fits in 15 bytes and in an
// exclusively owned heap buffer otherwise. The zero value is an empty string.
type String struct {
	inline [inlineSize]byte
	heap   []byte // nil while inline; len(heap) == capacity+1
	length int
}

// New returns an empty inline string.
func New() String {
	return String{}
}

// From returns a string holding s.
func From(s string) (String, error) {
	var v String
	if err := v.Set(s); err != nil {
		return String{}, err
	}
	return v, nil
}

// MustFrom is like From but panics on invalid input. Intended for literals.
func MustFrom(s string) String {
	v, err := From(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Set replaces the content with s. Invalid UTF-8 is rejected and leaves the
// value untouched.
func (s *String) Set(v string) error {
	if !utf8.ValidString(v) {
		return errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(v))
	}
	// store only reads from the slice
	return s.store(unsafe.Slice(unsafe.StringData(v), len(v)))
}

// SetBytes replaces the content with a copy of b.
func (s *String) SetBytes(b []byte) error {
	if !utf8.Valid(b) {
		return errors.InvalidUTF8(errors.PhaseEncode, nil, b)
	}
	return s.store(b)
}

func (s *String) store(b []byte) error {
	n := len(b)
	if s.heap != nil || n > InlineCap {
		c, err := growCapacity(uint64(s.Cap()), uint64(n))
		if err != nil {
			return err
		}
		buf := make([]byte, c+1)
		copy(buf, b)
		s.heap = buf
		s.length = n
		return nil
	}

	s.inline = [inlineSize]byte{}
	copy(s.inline[:], b)
	s.length = n
	return nil
}

// Get returns the content. A DecodeError means the stored bytes are not
// valid UTF-8, which only happens if the representation was corrupted.
func (s String) Get() (string, error) {
	b := s.content()
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, nil, b)
	}
	return string(b), nil
}

// String implements fmt.Stringer. Corrupt content renders as "".
func (s String) String() string {
	v, err := s.Get()
	if err != nil {
		return ""
	}
	return v
}

// GoString renders the content together with length and capacity for %#v.
func (s String) GoString() string {
	return fmt.Sprintf("estring.String{%q, len=%d, cap=%d}", s.String(), s.length, s.Cap())
}

// Bytes returns a copy of the content.
func (s String) Bytes() []byte {
	b := s.content()
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Len returns the content length in bytes, excluding the terminator.
func (s String) Len() int {
	return s.length
}

// Cap returns the longest content the current storage holds without
// reallocating.
func (s String) Cap() int {
	if s.heap == nil {
		return InlineCap
	}
	return len(s.heap) - 1
}

// IsInline reports whether the content lives inside the value.
func (s String) IsInline() bool {
	return s.heap == nil
}

// Storage returns a copy of the active storage: the 16 inline bytes, or the
// capacity+1 heap bytes. The byte at Len() is always zero.
func (s String) Storage() []byte {
	if s.heap == nil {
		out := make([]byte, inlineSize)
		copy(out, s.inline[:])
		return out
	}
	out := make([]byte, len(s.heap))
	copy(out, s.heap)
	return out
}

// Clone returns an independent string with the same content. The clone's
// capacity is derived from its content, not copied from s.
func (s String) Clone() (String, error) {
	v, err := s.Get()
	if err != nil {
		return String{}, err
	}
	return From(v)
}

// Reset releases any heap storage and makes s empty and inline.
func (s *String) Reset() {
	*s = String{}
}

func (s *String) content() []byte {
	if s.heap != nil {
		return s.heap[:s.length]
	}
	return s.inline[:s.length]
}
