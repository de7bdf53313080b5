package estring

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/fleetmod/escadra/errors"
)

// fakeHeap maps addresses to buffers for Unpack.
type fakeHeap map[uint64][]byte

func (h fakeHeap) fetch(ptr, size uint64) ([]byte, error) {
	b, ok := h[ptr]
	if !ok {
		return nil, fmt.Errorf("no buffer at %#x", ptr)
	}
	if uint64(len(b)) < size {
		return b, nil
	}
	return b[:size], nil
}

func image(union []byte, length, capacity uint64) []byte {
	b := make([]byte, Size)
	copy(b, union)
	binary.LittleEndian.PutUint64(b[OffsetLength:], length)
	binary.LittleEndian.PutUint64(b[OffsetCapacity:], capacity)
	return b
}

func TestPackInline(t *testing.T) {
	s := MustFrom(short)
	dst := make([]byte, Size)
	if err := s.PackInline(dst); err != nil {
		t.Fatal(err)
	}

	want := image([]byte("Banana"), 6, 15)
	if !bytes.Equal(dst, want) {
		t.Errorf("image mismatch\n got %x\nwant %x", dst, want)
	}
}

func TestPack_Heap(t *testing.T) {
	s := MustFrom(long)
	dst := bytes.Repeat([]byte{0xaa}, Size)
	if err := s.Pack(dst, 0x12345678); err != nil {
		t.Fatal(err)
	}

	if got := binary.LittleEndian.Uint64(dst[0:8]); got != 0x12345678 {
		t.Errorf("pointer = %#x", got)
	}
	if !bytes.Equal(dst[8:16], make([]byte, 8)) {
		t.Errorf("padding = %x, want zeros", dst[8:16])
	}
	if got := binary.LittleEndian.Uint64(dst[OffsetLength:]); got != 27 {
		t.Errorf("length = %d, want 27", got)
	}
	if got := binary.LittleEndian.Uint64(dst[OffsetCapacity:]); got != 31 {
		t.Errorf("capacity = %d, want 31", got)
	}

	img := s.HeapImage()
	if len(img) != 32 {
		t.Fatalf("heap image size = %d, want 32", len(img))
	}
	if string(img[:27]) != long || img[27] != 0 {
		t.Errorf("heap image = %q", img)
	}
}

func TestPack_Errors(t *testing.T) {
	heap := MustFrom(long)
	if err := heap.Pack(make([]byte, Size), 0); !errors.Is(err, &errors.Error{Kind: errors.KindNilPointer}) {
		t.Errorf("heap Pack with null pointer: %v", err)
	}
	if err := heap.PackInline(make([]byte, Size)); err == nil {
		t.Error("PackInline of heap string should fail")
	}
	if err := MustFrom(short).Pack(make([]byte, Size-1), 0); !errors.Is(err, &errors.Error{Kind: errors.KindOutOfBounds}) {
		t.Errorf("short dst: %v", err)
	}
	if MustFrom(short).HeapImage() != nil {
		t.Error("inline string has no heap image")
	}
}

func TestUnpack_RoundTrip(t *testing.T) {
	h := fakeHeap{}
	next := uint64(0x1000)

	for _, v := range []string{"", short, exact15, exact16, long, "sign_ammo_inc_small"} {
		s := MustFrom(v)
		var ptr uint64
		if !s.IsInline() {
			ptr = next
			h[ptr] = s.HeapImage()
			next += 0x100
		}
		img := make([]byte, Size)
		if err := s.Pack(img, ptr); err != nil {
			t.Fatal(err)
		}

		back, err := Unpack(img, h.fetch)
		if err != nil {
			t.Fatalf("Unpack(%q): %v", v, err)
		}
		if !back.Equal(s) || back.Cap() != s.Cap() || back.IsInline() != s.IsInline() {
			t.Errorf("Unpack(%q) = %#v, want %#v", v, back, s)
		}

		again := make([]byte, Size)
		if err := back.Pack(again, ptr); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(again, img) {
			t.Errorf("repack of %q differs\n got %x\nwant %x", v, again, img)
		}
	}
}

func TestUnpack_KeepsForeignInlineBytes(t *testing.T) {
	union := []byte("Hi\x00leftover_gar")
	img := image(union, 2, 15)

	s, err := Unpack(img, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.String() != "Hi" {
		t.Errorf("content = %q", s.String())
	}

	out := make([]byte, Size)
	if err := s.PackInline(out); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, img) {
		t.Errorf("repack lost foreign bytes\n got %x\nwant %x", out, img)
	}

	// Set replaces the whole inline buffer.
	if err := s.Set("Yo"); err != nil {
		t.Fatal(err)
	}
	if st := s.Storage(); !bytes.Equal(st[2:], make([]byte, 14)) {
		t.Errorf("Set should zero-fill, storage = %q", st)
	}
}

func TestUnpack_Errors(t *testing.T) {
	h := fakeHeap{
		0x2000: append([]byte(long), make([]byte, 5)...),
		0x3000: []byte("short"),
		0x4000: append([]byte("Banana Banana Banana Banana"), 'x', 0, 0, 0, 0),
		0x5000: append([]byte("Banana Banana Banana Banan\xff"), make([]byte, 5)...),
	}
	ptr := func(p uint64) []byte {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, p)
		return b
	}

	tests := []struct {
		name   string
		src    []byte
		decode bool
	}{
		{"truncated", make([]byte, 20), false},
		{"capacity below inline", image(nil, 0, 14), true},
		{"length exceeds capacity", image(nil, 16, 15), true},
		{"inline not terminated", image([]byte("0123456789abcdef"), 15, 15)[:Size], true},
		{"inline invalid utf8", image([]byte("ab\xff"), 3, 15), true},
		{"null heap pointer", image(nil, 27, 31), true},
		{"unmapped heap pointer", image(ptr(0x9999), 27, 31), false},
		{"short heap buffer", image(ptr(0x3000), 27, 31), true},
		{"heap not terminated", image(ptr(0x4000), 27, 31), true},
		{"heap invalid utf8", image(ptr(0x5000), 27, 31), true},
		{"capacity over limit", image(ptr(0x2000), 27, MaxCapacity+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unpack(tt.src, h.fetch)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.IsDecodeError(err); got != tt.decode {
				t.Errorf("IsDecodeError = %v, want %v (err: %v)", got, tt.decode, err)
			}
		})
	}
}

func TestUnpack_HeapWithoutFetcher(t *testing.T) {
	s := MustFrom(long)
	img := make([]byte, Size)
	if err := s.Pack(img, 0x1000); err != nil {
		t.Fatal(err)
	}
	if _, err := Unpack(img, nil); err == nil {
		t.Error("heap image without fetcher should fail")
	}
}

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(image([]byte{0x00, 0x10}, 27, 31))
	if err != nil {
		t.Fatal(err)
	}
	if h.IsInline() {
		t.Error("capacity 31 is not inline")
	}
	if h.Pointer() != 0x1000 {
		t.Errorf("Pointer() = %#x, want 0x1000", h.Pointer())
	}
	if h.Length != 27 || h.Capacity != 31 {
		t.Errorf("header = %+v", h)
	}
}
