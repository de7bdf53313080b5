package record

import (
	"math"
	"reflect"
	"unsafe"

	"go.uber.org/zap"

	"github.com/fleetmod/escadra"
	"github.com/fleetmod/escadra/errors"
	"github.com/fleetmod/escadra/estring"
	"github.com/fleetmod/escadra/layout"
	"github.com/fleetmod/escadra/memory"
)

type Encoder struct {
	compiler *Compiler
	scratch  [estring.Size]byte
}

func NewEncoder() *Encoder {
	return &Encoder{
		compiler: NewCompiler(),
	}
}

func NewEncoderWithCompiler(c *Compiler) *Encoder {
	return &Encoder{compiler: c}
}

// Compiler returns the compiler shared by this encoder.
func (e *Encoder) Compiler() *Compiler {
	return e.compiler
}

// EncodeToMemory writes v, a struct or a pointer to one, at addr. The record
// region is cleared first so alignment gaps are zero. Heap-backed strings are
// copied into blocks from alloc and every block is added to list, including
// the ones allocated before a failure.
func (e *Encoder) EncodeToMemory(v any, addr uint32, mem escadra.Memory, alloc escadra.Allocator, list *memory.AllocationList) error {
	ct, ptr, err := e.resolve(v)
	if err != nil {
		return err
	}
	if mem == nil {
		return errors.NotInitialized(errors.PhaseEncode, "memory")
	}
	if ct.Kind != layout.KindStruct {
		return errors.TypeMismatch(errors.PhaseEncode, nil, ct.GoType.String(), "struct")
	}

	if err := mem.Write(addr, make([]byte, ct.Size())); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, "record region")
	}
	return e.encodeFieldToMemory(addr, ct, ptr, mem, alloc, list, nil)
}

func (e *Encoder) resolve(v any) (*CompiledType, unsafe.Pointer, error) {
	if v == nil {
		return nil, nil, errors.NilPointer(errors.PhaseEncode, nil, "nil")
	}
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, nil, errors.NilPointer(errors.PhaseEncode, nil, val.Type().String())
		}
	} else {
		// take an addressable copy
		p := reflect.New(val.Type())
		p.Elem().Set(val)
		val = p
	}

	ct, err := e.compiler.Compile(val.Type())
	if err != nil {
		return nil, nil, err
	}
	return ct, val.UnsafePointer(), nil
}

func (e *Encoder) encodeFieldToMemory(addr uint32, ct *CompiledType, ptr unsafe.Pointer, mem escadra.Memory, alloc escadra.Allocator, list *memory.AllocationList, path []string) error {
	switch ct.Kind {
	case layout.KindBool:
		var b uint8
		if *(*bool)(ptr) {
			b = 1
		}
		return mem.WriteU8(addr, b)

	case layout.KindU8, layout.KindS8:
		return mem.WriteU8(addr, *(*uint8)(ptr))

	case layout.KindU16, layout.KindS16:
		return mem.WriteU16(addr, *(*uint16)(ptr))

	case layout.KindU32, layout.KindS32:
		return mem.WriteU32(addr, *(*uint32)(ptr))

	case layout.KindF32:
		return mem.WriteU32(addr, math.Float32bits(*(*float32)(ptr)))

	case layout.KindU64, layout.KindS64, layout.KindPointer:
		return mem.WriteU64(addr, *(*uint64)(ptr))

	case layout.KindF64:
		return mem.WriteU64(addr, math.Float64bits(*(*float64)(ptr)))

	case layout.KindString:
		return e.encodeStringToMemory(addr, (*estring.String)(ptr), mem, alloc, list, path)

	case layout.KindArray:
		return e.encodeArrayToMemory(addr, ct, ptr, mem, alloc, list, path)

	case layout.KindStruct:
		return e.encodeRecordToMemory(addr, ct, ptr, mem, alloc, list, path)

	default:
		return errors.Unsupported(errors.PhaseEncode, path, "unsupported kind: "+ct.Kind.String())
	}
}

func (e *Encoder) encodeStringToMemory(addr uint32, s *estring.String, mem escadra.Memory, alloc escadra.Allocator, list *memory.AllocationList, path []string) error {
	if s.IsInline() {
		if err := s.PackInline(e.scratch[:]); err != nil {
			return err
		}
		return mem.Write(addr, e.scratch[:])
	}

	if alloc == nil {
		return errors.New(errors.PhaseEncode, errors.KindNotInitialized).
			Path(path...).
			Detail("heap string needs an allocator").
			Build()
	}

	img := s.HeapImage()
	size := uint32(len(img))
	ptr, err := alloc.Alloc(size, 1)
	if err != nil {
		return errors.New(errors.PhaseEncode, errors.KindAllocation).
			Path(path...).
			Detail("string buffer of %d bytes", size).
			Cause(err).
			Build()
	}
	if list != nil {
		list.Add(ptr, size, 1)
	}

	Logger().Debug("string buffer allocated",
		zap.Strings("path", path),
		zap.Uint32("ptr", ptr),
		zap.Uint32("size", size))

	if err := mem.Write(ptr, img); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, "string buffer")
	}
	if err := s.Pack(e.scratch[:], uint64(ptr)); err != nil {
		return err
	}
	return mem.Write(addr, e.scratch[:])
}

func (e *Encoder) encodeArrayToMemory(addr uint32, ct *CompiledType, ptr unsafe.Pointer, mem escadra.Memory, alloc escadra.Allocator, list *memory.AllocationList, path []string) error {
	elem := ct.ElemType
	stride := layout.AlignTo(elem.Size(), elem.Align())
	for i := uint32(0); i < ct.Len; i++ {
		elemPtr := unsafe.Add(ptr, uintptr(i)*elem.GoSize)
		if err := e.encodeFieldToMemory(addr+i*stride, elem, elemPtr, mem, alloc, list, path); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeRecordToMemory(addr uint32, ct *CompiledType, ptr unsafe.Pointer, mem escadra.Memory, alloc escadra.Allocator, list *memory.AllocationList, path []string) error {
	for _, field := range ct.Fields {
		fieldPtr := unsafe.Add(ptr, field.GoOffset)
		fieldPath := append(append([]string{}, path...), field.CName)
		if err := e.encodeFieldToMemory(addr+field.Offset, field.Type, fieldPtr, mem, alloc, list, fieldPath); err != nil {
			return err
		}
	}
	return nil
}
