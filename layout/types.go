package layout

import "fmt"

type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindPointer
	KindString
	KindArray
	KindStruct
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindU8:      "u8",
	KindS8:      "s8",
	KindU16:     "u16",
	KindS16:     "s16",
	KindU32:     "u32",
	KindS32:     "s32",
	KindU64:     "u64",
	KindS64:     "s64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindPointer: "pointer",
	KindString:  "estring",
	KindArray:   "array",
	KindStruct:  "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsPrimitive() bool {
	return k <= KindPointer
}

// Type is a node of a C type description.
type Type interface {
	Kind() Kind
}

// Primitive is a scalar type, a pointer or the hybrid string.
type Primitive Kind

func (p Primitive) Kind() Kind { return Kind(p) }

func (p Primitive) String() string { return Kind(p).String() }

var (
	Bool    = Primitive(KindBool)
	U8      = Primitive(KindU8)
	S8      = Primitive(KindS8)
	U16     = Primitive(KindU16)
	S16     = Primitive(KindS16)
	U32     = Primitive(KindU32)
	S32     = Primitive(KindS32)
	U64     = Primitive(KindU64)
	S64     = Primitive(KindS64)
	F32     = Primitive(KindF32)
	F64     = Primitive(KindF64)
	Pointer = Primitive(KindPointer)
	String  = Primitive(KindString)
)

// Array is a fixed-length C array.
type Array struct {
	Elem Type
	Len  uint32
}

func (*Array) Kind() Kind { return KindArray }

func (a *Array) String() string { return fmt.Sprintf("%v[%d]", a.Elem, a.Len) }

// Field is a named struct member.
type Field struct {
	Type Type
	Name string
}

// Struct is a C struct. Field names must be unique.
type Struct struct {
	Name   string
	Fields []Field
}

func (*Struct) Kind() Kind { return KindStruct }

func (s *Struct) String() string {
	if s.Name != "" {
		return "struct " + s.Name
	}
	return "struct"
}

// Info is the computed layout of a type.
type Info struct {
	FieldOffs map[string]uint32
	Fields    []FieldInfo
	Size      uint32
	Align     uint32
}

// FieldInfo places one struct field.
type FieldInfo struct {
	Type   Type
	Name   string
	Offset uint32
	Size   uint32
	Align  uint32
}

// End returns the first offset after the field.
func (f FieldInfo) End() uint32 {
	return f.Offset + f.Size
}

// Padding returns the unused bytes of a struct: gaps between fields and the tail
// added to reach the struct alignment.
func (i Info) Padding() uint32 {
	used := uint32(0)
	for _, f := range i.Fields {
		used += f.Size
	}
	return i.Size - used
}
