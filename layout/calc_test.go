package layout

import (
	"sync"
	"testing"

	"github.com/fleetmod/escadra/errors"
)

func TestCalculatePrimitives(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		typ   Type
		name  string
		size  uint32
		align uint32
	}{
		{Bool, "bool", 1, 1},
		{U8, "u8", 1, 1},
		{S8, "s8", 1, 1},
		{U16, "u16", 2, 2},
		{S16, "s16", 2, 2},
		{U32, "u32", 4, 4},
		{S32, "s32", 4, 4},
		{U64, "u64", 8, 8},
		{S64, "s64", 8, 8},
		{F32, "f32", 4, 4},
		{F64, "f64", 8, 8},
		{Pointer, "pointer", 8, 8},
		{String, "estring", 32, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := c.Calculate(tc.typ)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != tc.align {
				t.Errorf("align: got %d, want %d", info.Align, tc.align)
			}
		})
	}
}

func TestCalculateStruct(t *testing.T) {
	c := NewCalculator()

	t.Run("empty", func(t *testing.T) {
		info, err := c.Calculate(&Struct{})
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 0 || info.Align != 1 {
			t.Errorf("got size %d align %d, want 0/1", info.Size, info.Align)
		}
	})

	t.Run("mixed_alignment", func(t *testing.T) {
		info := c.MustCalculate(&Struct{Fields: []Field{
			{Name: "a", Type: U8},
			{Name: "b", Type: U32},
			{Name: "c", Type: U8},
		}})

		want := map[string]uint32{"a": 0, "b": 4, "c": 8}
		for name, off := range want {
			if info.FieldOffs[name] != off {
				t.Errorf("field %s offset: got %d, want %d", name, info.FieldOffs[name], off)
			}
		}
		if info.Size != 12 || info.Align != 4 {
			t.Errorf("got size %d align %d, want 12/4", info.Size, info.Align)
		}
		if info.Padding() != 6 {
			t.Errorf("padding: got %d, want 6", info.Padding())
		}
	})

	t.Run("string_after_u32", func(t *testing.T) {
		info := c.MustCalculate(&Struct{Fields: []Field{
			{Name: "id", Type: S32},
			{Name: "name", Type: String},
			{Name: "height", Type: F32},
		}})
		if info.FieldOffs["name"] != 8 {
			t.Errorf("name offset: got %d, want 8", info.FieldOffs["name"])
		}
		if info.FieldOffs["height"] != 40 {
			t.Errorf("height offset: got %d, want 40", info.FieldOffs["height"])
		}
		if info.Size != 48 || info.Align != 8 {
			t.Errorf("got size %d align %d, want 48/8", info.Size, info.Align)
		}
	})

	t.Run("nested", func(t *testing.T) {
		inner := &Struct{Name: "inner", Fields: []Field{
			{Name: "x", Type: U8},
			{Name: "y", Type: U16},
		}}
		info := c.MustCalculate(&Struct{Fields: []Field{
			{Name: "flag", Type: Bool},
			{Name: "inner", Type: inner},
			{Name: "tail", Type: U8},
		}})
		if info.FieldOffs["inner"] != 2 || info.FieldOffs["tail"] != 6 {
			t.Errorf("offsets: %v", info.FieldOffs)
		}
		if info.Size != 8 {
			t.Errorf("size: got %d, want 8", info.Size)
		}
	})
}

func TestCalculateArray(t *testing.T) {
	c := NewCalculator()

	info := c.MustCalculate(&Array{Elem: String, Len: 3})
	if info.Size != 96 || info.Align != 8 {
		t.Errorf("got size %d align %d, want 96/8", info.Size, info.Align)
	}

	info = c.MustCalculate(&Struct{Fields: []Field{
		{Name: "tag", Type: U8},
		{Name: "pad", Type: &Array{Elem: U8, Len: 3}},
		{Name: "v", Type: F32},
	}})
	if info.FieldOffs["pad"] != 1 || info.FieldOffs["v"] != 4 || info.Size != 8 {
		t.Errorf("unexpected layout %+v", info)
	}
}

// The triply linked list node of the game is 0x60 bytes.
func TestCalculateNodeRecord(t *testing.T) {
	node := &Struct{Name: "TLL", Fields: []Field{
		{Name: "a", Type: Pointer},
		{Name: "b", Type: Pointer},
		{Name: "c", Type: Pointer},
		{Name: "end", Type: Bool},
		{Name: "flag", Type: Bool},
		{Name: "padding_1ah", Type: U16},
		{Name: "index", Type: U32},
		{Name: "string", Type: String},
		{Name: "unknown_40h", Type: U32},
		{Name: "padding_44h", Type: U32},
		{Name: "data1", Type: Pointer},
		{Name: "data2", Type: Pointer},
		{Name: "data3", Type: Pointer},
	}}

	info, err := NewCalculator().Calculate(node)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 0x60 {
		t.Errorf("size: got %#x, want 0x60", info.Size)
	}
	want := map[string]uint32{
		"end": 0x18, "flag": 0x19, "index": 0x1c, "string": 0x20,
		"unknown_40h": 0x40, "data1": 0x48, "data3": 0x58,
	}
	for name, off := range want {
		if got := info.FieldOffs[name]; got != off {
			t.Errorf("%s: got %#x, want %#x", name, got, off)
		}
	}
	if info.Padding() != 0 {
		t.Errorf("padding: got %d, want 0", info.Padding())
	}
}

func TestCalculateErrors(t *testing.T) {
	c := NewCalculator()

	t.Run("duplicate_field", func(t *testing.T) {
		_, err := c.Calculate(&Struct{Fields: []Field{{Name: "a", Type: U8}, {Name: "a", Type: U8}}})
		if !errors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("nil_field_type", func(t *testing.T) {
		_, err := c.Calculate(&Struct{Fields: []Field{{Name: "a"}}})
		if !errors.Is(err, &errors.Error{Kind: errors.KindNilPointer}) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("unknown_primitive", func(t *testing.T) {
		_, err := c.Calculate(Primitive(KindStruct))
		if !errors.Is(err, &errors.Error{Kind: errors.KindUnsupported}) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("array_overflow", func(t *testing.T) {
		_, err := c.Calculate(&Array{Elem: String, Len: 1 << 30})
		if !errors.Is(err, &errors.Error{Kind: errors.KindOverflow}) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("struct_overflow", func(t *testing.T) {
		big := &Array{Elem: U8, Len: 1<<32 - 1}
		_, err := c.Calculate(&Struct{Fields: []Field{{Name: "a", Type: U8}, {Name: "b", Type: big}}})
		if !errors.Is(err, &errors.Error{Kind: errors.KindOverflow}) {
			t.Errorf("got %v", err)
		}
	})
}

func TestCalculateCache(t *testing.T) {
	c := NewCalculator()
	s := &Struct{Fields: []Field{{Name: "a", Type: U64}}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if info := c.MustCalculate(s); info.Size != 8 {
				t.Errorf("size: got %d", info.Size)
			}
		}()
	}
	wg.Wait()

	if len(c.cache) != 1 {
		t.Errorf("cache entries: got %d, want 1", len(c.cache))
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{0x19, 4, 0x1c},
		{7, 0, 7},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.offset, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.offset, tt.align, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindString.String() != "estring" || Kind(200).String() != "unknown" {
		t.Error("unexpected kind names")
	}
	if !KindPointer.IsPrimitive() || KindArray.IsPrimitive() {
		t.Error("IsPrimitive mismatch")
	}
}
