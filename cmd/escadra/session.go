package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/fleetmod/escadra/ammo"
	"github.com/fleetmod/escadra/estring"
	"github.com/fleetmod/escadra/layout"
	"github.com/fleetmod/escadra/memory"
	"github.com/fleetmod/escadra/record"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// session holds one record encoded into a wazero-hosted memory.
type session struct {
	mem  *memory.Linear
	heap *memory.Heap
	list *memory.AllocationList
	enc  *record.Encoder
	dec  *record.Decoder
	rec  ammo.Record
	ct   *record.CompiledType
	addr uint32
}

type fieldRow struct {
	str    *estring.String
	name   string
	value  string
	kind   layout.Kind
	offset uint32
	size   uint32
}

// recordVersion accepts "1.163" as well as "ammo-1.163".
func recordVersion(name string) string {
	return strings.TrimPrefix(name, "ammo-")
}

// loadRecord decodes a JSON or YAML file into a record of the given version.
// An empty format is taken from the file extension.
func loadRecord(path, version, format string) (ammo.Record, error) {
	rec, err := ammo.New(recordVersion(version))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}

	switch format {
	case "json":
		err = json.Unmarshal(data, rec)
	case "yaml":
		err = yaml.Unmarshal(data, rec)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return rec, nil
}

func newSession(ctx context.Context, cfg memory.Config, rec ammo.Record, addr uint32) (*session, error) {
	enc := record.NewEncoder()
	ct, err := enc.Compiler().CompileValue(rec)
	if err != nil {
		return nil, err
	}
	if addr%ct.Align() != 0 {
		return nil, fmt.Errorf("address %#x is not %d-byte aligned", addr, ct.Align())
	}
	if uint64(addr)+uint64(ct.Size()) > uint64(cfg.HeapBase) {
		return nil, fmt.Errorf("record at %#x+%#x overlaps the heap at %#x", addr, ct.Size(), cfg.HeapBase)
	}

	mem, err := memory.NewLinear(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{
		mem:  mem,
		heap: memory.NewHeap(mem, cfg),
		list: memory.NewAllocationList(),
		enc:  enc,
		dec:  record.NewDecoderWithCompiler(enc.Compiler()),
		rec:  rec,
		ct:   ct,
		addr: addr,
	}
	if err := s.encode(); err != nil {
		s.close(ctx)
		return nil, err
	}
	return s, nil
}

// encode frees the previous image's heap blocks and writes the record again.
func (s *session) encode() error {
	s.list.Free(s.heap)
	return s.enc.EncodeToMemory(s.rec, s.addr, s.mem, s.heap, s.list)
}

func (s *session) image() ([]byte, error) {
	return s.mem.Read(s.addr, s.ct.Size())
}

func (s *session) blocks() []memory.Allocation {
	return s.list.Allocations()
}

// decode reads the image back into a fresh record.
func (s *session) decode() (ammo.Record, error) {
	out, err := ammo.New(s.rec.Version())
	if err != nil {
		return nil, err
	}
	if err := s.dec.DecodeFromMemory(s.addr, s.mem, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *session) rows() []fieldRow {
	v := reflect.ValueOf(s.rec).Elem()
	rows := make([]fieldRow, 0, len(s.ct.Fields))
	for _, f := range s.ct.Fields {
		fv := v.FieldByName(f.Name)
		row := fieldRow{
			name:   f.CName,
			kind:   f.Type.Kind,
			offset: f.Offset,
			size:   f.Type.Size(),
		}
		if str, ok := fv.Addr().Interface().(*estring.String); ok {
			row.str = str
			row.value = strconv.Quote(str.String())
		} else {
			row.value = fmt.Sprint(fv.Interface())
		}
		rows = append(rows, row)
	}
	return rows
}

// storage describes where the string of row lives in the current image.
func (s *session) storage(row fieldRow) string {
	if row.str == nil {
		return ""
	}
	if row.str.IsInline() {
		return fmt.Sprintf("inline len=%d cap=%d", row.str.Len(), row.str.Cap())
	}
	where := "?"
	if img, err := s.mem.Read(s.addr+row.offset, estring.Size); err == nil {
		if h, err := estring.ParseHeader(img); err == nil {
			where = fmt.Sprintf("%#x", h.Pointer())
		}
	}
	return fmt.Sprintf("heap len=%d cap=%d @%s", row.str.Len(), row.str.Cap(), where)
}

// setString assigns value to the string field name and re-encodes. If the
// value is rejected or the new image cannot be written, the field and the
// image keep their previous content.
func (s *session) setString(name, value string) error {
	for _, row := range s.rows() {
		if row.name != name {
			continue
		}
		if row.str == nil {
			return fmt.Errorf("field %s is %s, not a string", name, row.kind)
		}
		old, err := row.str.Clone()
		if err != nil {
			return err
		}
		if err := row.str.Set(value); err != nil {
			return err
		}
		if err := s.encode(); err != nil {
			*row.str = old
			if restoreErr := s.encode(); restoreErr != nil {
				return fmt.Errorf("%w (restore failed: %v)", err, restoreErr)
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("no field %s", name)
}

func (s *session) close(ctx context.Context) error {
	s.list.FreeAndRelease(s.heap)
	return s.mem.Close(ctx)
}
