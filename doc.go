// Package escadra reproduces the variable-length string of the Escadra engine
// and the fixed-layout records that embed it.
//
// An Escadra string is 32 bytes: a 16-byte union holding either up to 15
// inline bytes plus a zero terminator or a pointer to a heap buffer, followed
// by the content length and the capacity as little-endian u64 values. Records
// produced by the game embed these strings at fixed offsets, so every image
// written by this module must match the engine byte for byte.
//
// # Architecture Overview
//
//	escadra/          Root package with the Memory and Allocator interfaces
//	├── estring/      The hybrid inline-or-heap string value and its 32-byte image
//	├── layout/       C struct layout (size, alignment, field offsets)
//	├── record/       Go struct <-> linear memory encoder and decoder
//	├── memory/       Linear memory backends, heap allocator, allocation tracking
//	├── ammo/         Ammo records for game versions 1.151 and 1.163
//	├── tll/          Triply linked list nodes, arena storage, diagnostic walks
//	├── errors/       Structured error types
//	└── cmd/escadra/  CLI: packed image dumps, node graphs, interactive inspector
//
// # Quick Start
//
// Build a string and inspect its storage class:
//
//	s, err := estring.From("shell_out_enemy_big")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(s.Len(), s.Cap(), s.IsInline()) // 19 31 false
//
// Pack a record into a linear memory and read it back:
//
//	mem, err := memory.NewLinear(ctx, memory.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mem.Close(ctx)
//
//	heap := memory.NewHeap(mem, memory.DefaultConfig())
//	list := memory.NewAllocationList()
//	defer list.FreeAndRelease(heap)
//
//	enc := record.NewEncoder()
//	if err := enc.EncodeToMemory(&ammo, addr, mem, heap, list); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// A String has a single owner and no internal locking. Encoder and Decoder
// are not thread-safe; the Compiler and memory.Heap are.
package escadra
