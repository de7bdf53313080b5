// Package record moves Go structs to and from a linear memory using the C
// layout of the game's records.
//
// A Go struct describes the record. Field order is layout order; each field
// is placed at the next offset aligned to its natural alignment, exactly as a
// C compiler would. Supported field types:
//
//	bool                      1 byte
//	uint8, int8               1 byte
//	uint16, int16             2 bytes
//	uint32, int32, float32    4 bytes
//	uint64, int64, float64    8 bytes
//	record.Addr               8-byte pointer into the target process
//	estring.String            32-byte hybrid string
//	[N]T                      fixed array of a supported type
//	struct                    nested record
//
// Fields are named by the `layout` tag, then the `json` tag, then the Go name
// in snake_case. `layout:"-"` and unexported fields are skipped.
//
// # Strings
//
// Inline strings are written into the record image. Heap-backed strings get
// a capacity+1 byte block from the Allocator, the block is filled with the
// string's heap image and the record receives its address. Every block is
// recorded in the AllocationList so the caller can release them together.
//
// # Usage
//
//	enc := record.NewEncoder()
//	list := memory.NewAllocationList()
//	defer list.FreeAndRelease(heap)
//	err := enc.EncodeToMemory(&rec, addr, mem, heap, list)
//
//	dec := record.NewDecoder()
//	var back Rec
//	err = dec.DecodeFromMemory(addr, mem, &back)
package record
