package memory

import (
	"bytes"
	"context"
	"testing"
)

func TestMemoryModule(t *testing.T) {
	want := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x04, 0x01, 0x01, 0x01, 0x02,
		0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	}
	if got := memoryModule(1, 2); !bytes.Equal(got, want) {
		t.Errorf("module bytes\n got %x\nwant %x", got, want)
	}
}

func TestEncodeULEB128(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{65536, []byte{0x80, 0x80, 0x04}},
	}
	for _, tt := range tests {
		if got := encodeULEB128(tt.v); !bytes.Equal(got, tt.want) {
			t.Errorf("encodeULEB128(%d) = %x, want %x", tt.v, got, tt.want)
		}
	}
}

func TestLinear(t *testing.T) {
	ctx := context.Background()
	mem, err := NewLinear(ctx, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer mem.Close(ctx)

	if mem.Pages() != 4 || mem.Size() != 4*PageSize {
		t.Errorf("size = %d pages", mem.Pages())
	}
	if mem.MaxPages() != 256 {
		t.Errorf("max pages = %d", mem.MaxPages())
	}
	exerciseMemory(t, mem)
}

func TestLinear_Grow(t *testing.T) {
	ctx := context.Background()
	mem, err := NewLinear(ctx, Config{InitialPages: 1, MaxPages: 2, HeapBase: 8})
	if err != nil {
		t.Fatal(err)
	}
	defer mem.Close(ctx)

	if prev, ok := mem.Grow(1); !ok || prev != 1 {
		t.Fatalf("Grow(1) = %d, %v", prev, ok)
	}
	if mem.Pages() != 2 {
		t.Errorf("pages = %d, want 2", mem.Pages())
	}
	if _, ok := mem.Grow(1); ok {
		t.Error("growing past max pages should fail")
	}
}

func TestLinear_InvalidConfig(t *testing.T) {
	if _, err := NewLinear(context.Background(), Config{}); err == nil {
		t.Error("zero config should be rejected")
	}
}

func TestLinear_Independent(t *testing.T) {
	ctx := context.Background()
	a, err := NewLinear(ctx, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close(ctx)
	b, err := NewLinear(ctx, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close(ctx)

	if err := a.WriteU32(100, 42); err != nil {
		t.Fatal(err)
	}
	if v, _ := b.ReadU32(100); v != 0 {
		t.Errorf("memories share state: %d", v)
	}
}
