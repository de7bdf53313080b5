package record

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/fleetmod/escadra/errors"
	"github.com/fleetmod/escadra/estring"
	"github.com/fleetmod/escadra/layout"
)

var (
	stringType = reflect.TypeOf(estring.String{})
	addrType   = reflect.TypeOf(Addr(0))
)

type Compiler struct {
	layout *layout.Calculator
	cache  sync.Map // reflect.Type -> *CompiledType
}

func NewCompiler() *Compiler {
	return &Compiler{
		layout: layout.NewCalculator(),
	}
}

// Compile returns the layout of goType. Pointer types are dereferenced.
func (c *Compiler) Compile(goType reflect.Type) (*CompiledType, error) {
	if goType == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}
	if goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}

	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*CompiledType), nil
	}

	ct, err := c.compile(goType, nil)
	if err != nil {
		return nil, err
	}

	actual, _ := c.cache.LoadOrStore(goType, ct)
	return actual.(*CompiledType), nil
}

// CompileValue compiles the type of v.
func (c *Compiler) CompileValue(v any) (*CompiledType, error) {
	return c.Compile(reflect.TypeOf(v))
}

func (c *Compiler) compile(goType reflect.Type, path []string) (*CompiledType, error) {
	switch goType {
	case stringType:
		return c.compileLeaf(goType, layout.String, path)
	case addrType:
		return c.compileLeaf(goType, layout.Pointer, path)
	}

	switch goType.Kind() {
	case reflect.Bool:
		return c.compileLeaf(goType, layout.Bool, path)
	case reflect.Uint8:
		return c.compileLeaf(goType, layout.U8, path)
	case reflect.Int8:
		return c.compileLeaf(goType, layout.S8, path)
	case reflect.Uint16:
		return c.compileLeaf(goType, layout.U16, path)
	case reflect.Int16:
		return c.compileLeaf(goType, layout.S16, path)
	case reflect.Uint32:
		return c.compileLeaf(goType, layout.U32, path)
	case reflect.Int32:
		return c.compileLeaf(goType, layout.S32, path)
	case reflect.Uint64:
		return c.compileLeaf(goType, layout.U64, path)
	case reflect.Int64:
		return c.compileLeaf(goType, layout.S64, path)
	case reflect.Float32:
		return c.compileLeaf(goType, layout.F32, path)
	case reflect.Float64:
		return c.compileLeaf(goType, layout.F64, path)
	case reflect.Array:
		return c.compileArray(goType, path)
	case reflect.Struct:
		return c.compileStruct(goType, path)
	case reflect.String:
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), "estring")
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		err := errors.Unsupported(errors.PhaseCompile, path, "platform-sized integers have no fixed layout; use a sized type")
		err.GoType = goType.String()
		return nil, err
	default:
		err := errors.Unsupported(errors.PhaseCompile, path, "unsupported Go kind: "+goType.Kind().String())
		err.GoType = goType.String()
		return nil, err
	}
}

func (c *Compiler) compileLeaf(goType reflect.Type, p layout.Primitive, path []string) (*CompiledType, error) {
	info, err := c.layout.Calculate(p)
	if err != nil {
		return nil, err
	}
	return &CompiledType{
		GoType: goType,
		GoSize: goType.Size(),
		Layout: p,
		Info:   info,
		Kind:   p.Kind(),
	}, nil
}

func (c *Compiler) compileArray(goType reflect.Type, path []string) (*CompiledType, error) {
	elemPath := append(append([]string{}, path...), "[elem]")
	elem, err := c.compile(goType.Elem(), elemPath)
	if err != nil {
		return nil, err
	}

	n := goType.Len()
	if n > 1<<31 {
		return nil, errors.Overflow(errors.PhaseCompile, path, n, "array length")
	}
	t := &layout.Array{Elem: elem.Layout, Len: uint32(n)}
	info, err := c.layout.Calculate(t)
	if err != nil {
		return nil, err
	}

	return &CompiledType{
		GoType:   goType,
		GoSize:   goType.Size(),
		Layout:   t,
		ElemType: elem,
		Info:     info,
		Len:      uint32(n),
		Kind:     layout.KindArray,
	}, nil
}

func (c *Compiler) compileStruct(goType reflect.Type, path []string) (*CompiledType, error) {
	st := &layout.Struct{Name: goType.Name()}
	fields := make([]Field, 0, goType.NumField())

	for i := 0; i < goType.NumField(); i++ {
		goField := goType.Field(i)
		if !goField.IsExported() {
			continue
		}
		cname := fieldName(goField)
		if cname == "" {
			continue
		}

		fieldPath := append(append([]string{}, path...), cname)
		fieldType, err := c.compile(goField.Type, fieldPath)
		if err != nil {
			return nil, err
		}

		st.Fields = append(st.Fields, layout.Field{Name: cname, Type: fieldType.Layout})
		fields = append(fields, Field{
			Name:     goField.Name,
			CName:    cname,
			GoOffset: goField.Offset,
			Type:     fieldType,
		})
	}

	info, err := c.layout.Calculate(st)
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i].Offset = info.FieldOffs[fields[i].CName]
	}

	return &CompiledType{
		GoType: goType,
		GoSize: goType.Size(),
		Layout: st,
		Fields: fields,
		Info:   info,
		Kind:   layout.KindStruct,
	}, nil
}

// fieldName matches by: 1) layout:"name" tag, 2) json tag, 3) snake_case of
// the Go name. An empty result skips the field.
func fieldName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("layout"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	if tag, ok := f.Tag.Lookup("json"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return toSnakeCase(f.Name)
}

func toSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			afterLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if afterLower || nextLower {
				result.WriteByte('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
