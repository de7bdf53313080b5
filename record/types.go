package record

import (
	"reflect"

	"github.com/fleetmod/escadra/layout"
)

// Addr is a pointer-sized address in the target process. It is stored as a
// u64 like any other pointer field.
type Addr uint64

type CompiledType struct {
	GoType   reflect.Type
	Layout   layout.Type
	ElemType *CompiledType
	Fields   []Field
	Info     layout.Info
	GoSize   uintptr
	Len      uint32
	Kind     layout.Kind
}

type Field struct {
	Type     *CompiledType
	Name     string
	CName    string
	GoOffset uintptr
	Offset   uint32
}

func (ct *CompiledType) Size() uint32 {
	return ct.Info.Size
}

func (ct *CompiledType) Align() uint32 {
	return ct.Info.Align
}

// HasStrings reports whether encoding may need heap allocations.
func (ct *CompiledType) HasStrings() bool {
	switch ct.Kind {
	case layout.KindString:
		return true
	case layout.KindArray:
		return ct.ElemType.HasStrings()
	case layout.KindStruct:
		for _, f := range ct.Fields {
			if f.Type.HasStrings() {
				return true
			}
		}
	}
	return false
}

// Field returns the field with the given layout name.
func (ct *CompiledType) Field(cname string) (Field, bool) {
	for _, f := range ct.Fields {
		if f.CName == cname {
			return f, true
		}
	}
	return Field{}, false
}
