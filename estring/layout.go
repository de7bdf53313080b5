package estring

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/fleetmod/escadra/errors"
)

// Image geometry of a packed String.
const (
	Size           = 32
	Align          = 8
	UnionSize      = 16
	OffsetLength   = 16
	OffsetCapacity = 24
)

// Header is the raw 32-byte image of a String.
type Header struct {
	Union    [UnionSize]byte
	Length   uint64
	Capacity uint64
}

// Fetcher reads size bytes at ptr from the memory a heap pointer refers to.
type Fetcher func(ptr, size uint64) ([]byte, error)

// ParseHeader decodes the first Size bytes of src and checks that length and
// capacity are consistent.
func ParseHeader(src []byte) (Header, error) {
	var h Header
	if len(src) < Size {
		return h, errors.OutOfBounds(errors.PhaseDecode, nil, Size-1, len(src))
	}
	copy(h.Union[:], src[:UnionSize])
	h.Length = binary.LittleEndian.Uint64(src[OffsetLength:])
	h.Capacity = binary.LittleEndian.Uint64(src[OffsetCapacity:])

	switch {
	case h.Capacity < InlineCap:
		return h, errors.InvalidData(errors.PhaseDecode, nil, "capacity below inline capacity")
	case h.Capacity > MaxCapacity:
		return h, errors.CapacityExceeded(errors.PhaseDecode, nil, h.Capacity, MaxCapacity)
	case h.Length > h.Capacity:
		return h, errors.InvalidData(errors.PhaseDecode, nil, "length exceeds capacity")
	}
	return h, nil
}

// IsInline reports whether the union holds the content itself.
func (h Header) IsInline() bool {
	return h.Capacity == InlineCap
}

// Pointer returns the heap address stored in the union.
func (h Header) Pointer() uint64 {
	return binary.LittleEndian.Uint64(h.Union[:8])
}

// Put writes the image into dst, which must hold at least Size bytes.
func (h Header) Put(dst []byte) {
	_ = dst[Size-1]
	copy(dst[:UnionSize], h.Union[:])
	binary.LittleEndian.PutUint64(dst[OffsetLength:], h.Length)
	binary.LittleEndian.PutUint64(dst[OffsetCapacity:], h.Capacity)
}

// Header builds the image of s. ptr is the address HeapImage was stored at
// and is ignored for inline strings.
func (s String) Header(ptr uint64) Header {
	h := Header{
		Length:   uint64(s.length),
		Capacity: uint64(s.Cap()),
	}
	if s.heap == nil {
		h.Union = s.inline
	} else {
		binary.LittleEndian.PutUint64(h.Union[:8], ptr)
	}
	return h
}

// Pack writes the 32-byte image of s into dst. Heap-backed strings need the
// non-zero address their HeapImage was written to.
func (s String) Pack(dst []byte, ptr uint64) error {
	if len(dst) < Size {
		return errors.OutOfBounds(errors.PhaseEncode, nil, Size-1, len(dst))
	}
	if s.heap != nil && ptr == 0 {
		return errors.NilPointer(errors.PhaseEncode, nil, "heap pointer")
	}
	s.Header(ptr).Put(dst)
	return nil
}

// PackInline writes the image of an inline string.
func (s String) PackInline(dst []byte) error {
	if s.heap != nil {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Detail("string with capacity %d needs a heap pointer", s.Cap()).
			Build()
	}
	return s.Pack(dst, 0)
}

// HeapImage returns a copy of the heap buffer (capacity+1 bytes) or nil for
// inline strings.
func (s String) HeapImage() []byte {
	if s.heap == nil {
		return nil
	}
	out := make([]byte, len(s.heap))
	copy(out, s.heap)
	return out
}

// Unpack rebuilds a String from its 32-byte image. Inline images keep all 16
// union bytes so packing the result reproduces src exactly. Heap images are
// read through fetch, which may be nil when src is known to be inline.
func Unpack(src []byte, fetch Fetcher) (String, error) {
	h, err := ParseHeader(src)
	if err != nil {
		return String{}, err
	}

	if h.IsInline() {
		if h.Union[h.Length] != 0 {
			return String{}, errors.InvalidData(errors.PhaseDecode, nil, "inline content not terminated")
		}
		if !utf8.Valid(h.Union[:h.Length]) {
			return String{}, errors.InvalidUTF8(errors.PhaseDecode, nil, h.Union[:h.Length])
		}
		return String{inline: h.Union, length: int(h.Length)}, nil
	}

	ptr := h.Pointer()
	if ptr == 0 {
		return String{}, errors.InvalidData(errors.PhaseDecode, nil, "heap string with null pointer")
	}
	if fetch == nil {
		return String{}, errors.NotInitialized(errors.PhaseDecode, "heap fetcher")
	}
	data, err := fetch(ptr, h.Capacity+1)
	if err != nil {
		return String{}, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "read heap buffer")
	}
	if uint64(len(data)) != h.Capacity+1 {
		return String{}, errors.InvalidData(errors.PhaseDecode, nil, "short heap buffer")
	}
	if data[h.Length] != 0 {
		return String{}, errors.InvalidData(errors.PhaseDecode, nil, "heap content not terminated")
	}
	if !utf8.Valid(data[:h.Length]) {
		return String{}, errors.InvalidUTF8(errors.PhaseDecode, nil, data[:h.Length])
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return String{heap: buf, length: int(h.Length)}, nil
}
