package memory

import (
	"bytes"
	"testing"

	"github.com/fleetmod/escadra"
	"github.com/fleetmod/escadra/errors"
)

// exerciseMemory runs the same checks against every backend.
func exerciseMemory(t *testing.T, mem interface {
	escadra.Memory
	escadra.MemorySizer
}) {
	t.Helper()
	size := mem.Size()

	if err := mem.WriteU8(0, 0xab); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteU16(2, 0xbeef); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteU32(4, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteU64(8, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}

	raw, err := mem.Read(0, 16)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0xab, 0x00, 0xef, 0xbe, 0xef, 0xbe, 0xad, 0xde,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	if !bytes.Equal(raw, want) {
		t.Errorf("little-endian image\n got %x\nwant %x", raw, want)
	}

	if v, _ := mem.ReadU8(0); v != 0xab {
		t.Errorf("ReadU8 = %#x", v)
	}
	if v, _ := mem.ReadU16(2); v != 0xbeef {
		t.Errorf("ReadU16 = %#x", v)
	}
	if v, _ := mem.ReadU32(4); v != 0xdeadbeef {
		t.Errorf("ReadU32 = %#x", v)
	}
	if v, _ := mem.ReadU64(8); v != 0x0102030405060708 {
		t.Errorf("ReadU64 = %#x", v)
	}

	if err := mem.Write(size-4, []byte("tail")); err != nil {
		t.Errorf("write at end: %v", err)
	}

	oob := []struct {
		name string
		err  error
	}{
		{"write past end", mem.Write(size-3, []byte("tail"))},
		{"u64 at end", mem.WriteU64(size-7, 1)},
		{"u32 past end", mem.WriteU32(size, 1)},
		{"u16 past end", mem.WriteU16(size-1, 1)},
		{"u8 past end", mem.WriteU8(size, 1)},
	}
	for _, tt := range oob {
		if !errors.Is(tt.err, &errors.Error{Kind: errors.KindOutOfBounds}) {
			t.Errorf("%s: got %v, want out of bounds", tt.name, tt.err)
		}
	}
	if _, err := mem.Read(size, 1); err == nil {
		t.Error("read past end should fail")
	}
	if _, err := mem.ReadU64(size - 4); err == nil {
		t.Error("ReadU64 past end should fail")
	}
}

func TestBuffer(t *testing.T) {
	exerciseMemory(t, NewBuffer(PageSize))
}

func TestBuffer_Wraps(t *testing.T) {
	data := make([]byte, 64)
	b := NewBufferFrom(data)
	if err := b.WriteU32(0, 7); err != nil {
		t.Fatal(err)
	}
	if data[0] != 7 {
		t.Error("NewBufferFrom should not copy")
	}
	if b.Size() != 64 || &b.Bytes()[0] != &data[0] {
		t.Error("Bytes should return the wrapped slice")
	}
}

func TestBuffer_ReadOverflow(t *testing.T) {
	b := NewBuffer(16)
	if _, err := b.Read(8, 1<<32-1); err == nil {
		t.Error("offset+length overflow must not wrap around")
	}
}
