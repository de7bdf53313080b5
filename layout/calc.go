package layout

import (
	"fmt"
	"sync"

	"github.com/fleetmod/escadra/errors"
	"github.com/fleetmod/escadra/estring"
)

// PointerSize is the width of an address in the target process.
const PointerSize = 8

type Calculator struct {
	cache map[*Struct]Info
	mu    sync.Mutex
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*Struct]Info),
	}
}

// Calculate returns the layout of t. Struct layouts are cached by pointer.
func (c *Calculator) Calculate(t Type) (Info, error) {
	return c.calculate(t, nil)
}

// MustCalculate is like Calculate but panics on error. Intended for static
// record definitions.
func (c *Calculator) MustCalculate(t Type) Info {
	info, err := c.Calculate(t)
	if err != nil {
		panic(err)
	}
	return info
}

func (c *Calculator) calculate(t Type, path []string) (Info, error) {
	switch typ := t.(type) {
	case Primitive:
		return primitiveInfo(typ, path)
	case *Array:
		return c.calculateArray(typ, path)
	case *Struct:
		return c.calculateStruct(typ, path)
	case nil:
		return Info{}, errors.NilPointer(errors.PhaseCompile, path, "layout.Type")
	default:
		return Info{}, errors.Unsupported(errors.PhaseCompile, path, fmt.Sprintf("unsupported layout type: %T", t))
	}
}

func primitiveInfo(p Primitive, path []string) (Info, error) {
	switch Kind(p) {
	case KindU8, KindS8, KindBool:
		return Info{Size: 1, Align: 1}, nil
	case KindU16, KindS16:
		return Info{Size: 2, Align: 2}, nil
	case KindU32, KindS32, KindF32:
		return Info{Size: 4, Align: 4}, nil
	case KindU64, KindS64, KindF64:
		return Info{Size: 8, Align: 8}, nil
	case KindPointer:
		return Info{Size: PointerSize, Align: PointerSize}, nil
	case KindString:
		return Info{Size: estring.Size, Align: estring.Align}, nil
	default:
		err := errors.Unsupported(errors.PhaseCompile, path, "not a primitive")
		err.LayoutType = Kind(p).String()
		return Info{}, err
	}
}

func (c *Calculator) calculateArray(a *Array, path []string) (Info, error) {
	elem, err := c.calculate(a.Elem, append(append([]string{}, path...), "[]"))
	if err != nil {
		return Info{}, err
	}
	size, ok := SafeMulU32(AlignTo(elem.Size, elem.Align), a.Len)
	if !ok {
		return Info{}, errors.Overflow(errors.PhaseCompile, path, a.Len, a.String())
	}
	return Info{Size: size, Align: elem.Align}, nil
}

func (c *Calculator) calculateStruct(s *Struct, path []string) (Info, error) {
	c.mu.Lock()
	cached, ok := c.cache[s]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	info := Info{
		Align:     1,
		FieldOffs: make(map[string]uint32, len(s.Fields)),
		Fields:    make([]FieldInfo, 0, len(s.Fields)),
	}
	offset := uint32(0)

	for _, field := range s.Fields {
		fieldPath := append(append([]string{}, path...), field.Name)
		if _, dup := info.FieldOffs[field.Name]; dup {
			return Info{}, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Path(fieldPath...).
				Detail("duplicate field name").
				Build()
		}

		fieldLayout, err := c.calculate(field.Type, fieldPath)
		if err != nil {
			return Info{}, err
		}

		offset = AlignTo(offset, fieldLayout.Align)
		info.FieldOffs[field.Name] = offset
		info.Fields = append(info.Fields, FieldInfo{
			Name:   field.Name,
			Type:   field.Type,
			Offset: offset,
			Size:   fieldLayout.Size,
			Align:  fieldLayout.Align,
		})

		if fieldLayout.Align > info.Align {
			info.Align = fieldLayout.Align
		}

		var fits bool
		if offset, fits = SafeAddU32(offset, fieldLayout.Size); !fits {
			return Info{}, errors.Overflow(errors.PhaseCompile, fieldPath, fieldLayout.Size, s.String())
		}
	}

	info.Size = AlignTo(offset, info.Align)

	c.mu.Lock()
	c.cache[s] = info
	c.mu.Unlock()
	return info, nil
}
