package record

import (
	"math"
	"reflect"
	"unsafe"

	"github.com/fleetmod/escadra"
	"github.com/fleetmod/escadra/errors"
	"github.com/fleetmod/escadra/estring"
	"github.com/fleetmod/escadra/layout"
)

type Decoder struct {
	compiler *Compiler
}

func NewDecoder() *Decoder {
	return &Decoder{
		compiler: NewCompiler(),
	}
}

func NewDecoderWithCompiler(c *Compiler) *Decoder {
	return &Decoder{compiler: c}
}

// DecodeFromMemory reads the record at addr into out, which must be a
// non-nil pointer to a struct. String fields are replaced by fresh values
// that own copies of their content.
func (d *Decoder) DecodeFromMemory(addr uint32, mem escadra.Memory, out any) error {
	if mem == nil {
		return errors.NotInitialized(errors.PhaseDecode, "memory")
	}
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return errors.NilPointer(errors.PhaseDecode, nil, typeName(out))
	}

	ct, err := d.compiler.Compile(val.Type())
	if err != nil {
		return err
	}
	if ct.Kind != layout.KindStruct {
		return errors.TypeMismatch(errors.PhaseDecode, nil, ct.GoType.String(), "struct")
	}
	if uint64(addr)+uint64(ct.Size()) > math.MaxUint32+1 {
		return errors.OutOfBounds(errors.PhaseDecode, nil, int(addr), math.MaxUint32)
	}

	return d.decodeFieldFromMemory(addr, ct, val.UnsafePointer(), mem, nil)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

func (d *Decoder) decodeFieldFromMemory(addr uint32, ct *CompiledType, ptr unsafe.Pointer, mem escadra.Memory, path []string) error {
	switch ct.Kind {
	case layout.KindBool:
		v, err := mem.ReadU8(addr)
		if err != nil {
			return err
		}
		if v > 1 {
			return errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(path...).
				Value(v).
				Detail("bool byte %d is neither 0 nor 1", v).
				Build()
		}
		*(*bool)(ptr) = v == 1
		return nil

	case layout.KindU8, layout.KindS8:
		v, err := mem.ReadU8(addr)
		if err != nil {
			return err
		}
		*(*uint8)(ptr) = v
		return nil

	case layout.KindU16, layout.KindS16:
		v, err := mem.ReadU16(addr)
		if err != nil {
			return err
		}
		*(*uint16)(ptr) = v
		return nil

	case layout.KindU32, layout.KindS32:
		v, err := mem.ReadU32(addr)
		if err != nil {
			return err
		}
		*(*uint32)(ptr) = v
		return nil

	case layout.KindF32:
		v, err := mem.ReadU32(addr)
		if err != nil {
			return err
		}
		*(*float32)(ptr) = math.Float32frombits(v)
		return nil

	case layout.KindU64, layout.KindS64, layout.KindPointer:
		v, err := mem.ReadU64(addr)
		if err != nil {
			return err
		}
		*(*uint64)(ptr) = v
		return nil

	case layout.KindF64:
		v, err := mem.ReadU64(addr)
		if err != nil {
			return err
		}
		*(*float64)(ptr) = math.Float64frombits(v)
		return nil

	case layout.KindString:
		s, err := LoadString(addr, mem)
		if err != nil {
			return withPath(err, path)
		}
		*(*estring.String)(ptr) = s
		return nil

	case layout.KindArray:
		elem := ct.ElemType
		stride := layout.AlignTo(elem.Size(), elem.Align())
		for i := uint32(0); i < ct.Len; i++ {
			elemPtr := unsafe.Add(ptr, uintptr(i)*elem.GoSize)
			if err := d.decodeFieldFromMemory(addr+i*stride, elem, elemPtr, mem, path); err != nil {
				return err
			}
		}
		return nil

	case layout.KindStruct:
		for _, field := range ct.Fields {
			fieldPtr := unsafe.Add(ptr, field.GoOffset)
			fieldPath := append(append([]string{}, path...), field.CName)
			if err := d.decodeFieldFromMemory(addr+field.Offset, field.Type, fieldPtr, mem, fieldPath); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.Unsupported(errors.PhaseDecode, path, "unsupported kind: "+ct.Kind.String())
	}
}

// LoadString reads the 32-byte string image at addr and, for heap strings,
// the buffer it points to.
func LoadString(addr uint32, mem escadra.Memory) (estring.String, error) {
	img, err := mem.Read(addr, estring.Size)
	if err != nil {
		return estring.String{}, err
	}
	return estring.Unpack(img, MemoryFetcher(mem))
}

// MemoryFetcher adapts a 32-bit linear memory to estring.Fetcher. Pointers
// beyond the 32-bit range are reported as out of bounds.
func MemoryFetcher(mem escadra.Memory) estring.Fetcher {
	return func(ptr, size uint64) ([]byte, error) {
		if ptr+size > math.MaxUint32+1 || size > math.MaxUint32 {
			return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
				Value(ptr).
				Detail("heap buffer %#x+%d outside 32-bit memory", ptr, size).
				Build()
		}
		return mem.Read(uint32(ptr), uint32(size))
	}
}

func withPath(err error, path []string) error {
	var e *errors.Error
	if errors.As(err, &e) && len(e.Path) == 0 && len(path) > 0 {
		cp := *e
		cp.Path = path
		return &cp
	}
	return err
}
